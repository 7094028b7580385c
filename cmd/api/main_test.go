package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSetupMetricsExposesMetrics(t *testing.T) {
	handler, botMetrics := setupMetrics()
	if handler == nil || botMetrics == nil {
		t.Fatalf("expected non-nil handler and metrics")
	}

	botMetrics.ObserveInbound("greeting")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "whatsapp_inbound_messages_total") {
		t.Fatalf("expected inbound counter to be exported")
	}
}

func TestSetupMetricsUsesIsolatedRegistry(t *testing.T) {
	// Two calls must not panic on duplicate registration.
	setupMetrics()
	setupMetrics()
}
