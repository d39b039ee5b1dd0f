package repository

import (
	"testing"

	"github.com/irislab/irisgo/internal/model"
)

func TestParseLegacyTemplate(t *testing.T) {
	v, err := parseLegacyTemplate("1,0,0.5, 1")
	if err != nil {
		t.Fatalf("parseLegacyTemplate: %v", err)
	}
	want := []float64{1, 0, 0.5, 1}
	if len(v) != len(want) {
		t.Fatalf("len = %d, want %d", len(v), len(want))
	}
	for i := range want {
		if v[i] != want[i] {
			t.Fatalf("v[%d] = %v, want %v", i, v[i], want[i])
		}
	}
}

func TestParseLegacyTemplateRejectsGarbage(t *testing.T) {
	if _, err := parseLegacyTemplate("1,not-a-number"); err == nil {
		t.Fatalf("expected error for malformed legacy template")
	}
}

func TestTemplatesToJSONRoundTrip(t *testing.T) {
	tmpl := model.NewTemplate()
	tmpl.Code[0] = 1

	data, err := templatesToJSON([]*model.Template{tmpl})
	if err != nil {
		t.Fatalf("templatesToJSON: %v", err)
	}
	if len(data) == 0 {
		t.Fatalf("expected non-empty JSON")
	}
}
