package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/irislab/irisgo/internal/capture"
	"github.com/irislab/irisgo/internal/config"
	"github.com/irislab/irisgo/internal/statuspush"
)

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{})   {}
func (nopLogger) Info(string, string, map[string]interface{})    {}
func (nopLogger) Warning(string, string, map[string]interface{}) {}
func (nopLogger) Error(string, error, map[string]interface{})    {}

func newTestServer() *Server {
	log := nopLogger{}
	controller := capture.NewController(config.Default(), log, nil)
	hub := statuspush.NewHub(log)
	go hub.Run()
	return New(config.API{Addr: ":0"}, log, controller, hub)
}

func TestHealthzReturnsOK(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	s.engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestDebugSubmitRejectsMissingImageField(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/debug/submit", nil)
	rec := httptest.NewRecorder()

	s.engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestMetricsEndpointServesPrometheusFormat(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()

	s.engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}
