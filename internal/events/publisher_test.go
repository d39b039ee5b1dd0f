package events

import (
	"testing"

	"github.com/irislab/irisgo/internal/capture"
	"github.com/irislab/irisgo/internal/model"
)

func TestDecisionPayloadFromEnrollment(t *testing.T) {
	e := capture.DecisionEvent{Enrolled: &model.SubjectRecord{ID: "s1"}}

	var payload Decision
	if e.Enrolled != nil {
		payload.Enrolled = true
		payload.SubjectID = e.Enrolled.ID
	}

	if !payload.Enrolled || payload.SubjectID != "s1" {
		t.Fatalf("payload = %+v, want Enrolled=true SubjectID=s1", payload)
	}
}

func TestDecisionPayloadFromError(t *testing.T) {
	e := capture.DecisionEvent{Err: capture.ErrQualityTooLow}

	var payload Decision
	if e.Err != nil {
		payload.Error = e.Err.Error()
	}

	if payload.Error == "" {
		t.Fatalf("expected non-empty error string")
	}
}
