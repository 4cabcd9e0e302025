package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
)

func TestHealthReportsPaymentsReadiness(t *testing.T) {
	cases := []struct {
		name  string
		ready bool
		want  string
	}{
		{"processor configured", true, "ready"},
		{"processor missing key", false, "unconfigured"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := &App{
				Logger:    zerolog.Nop(),
				Processor: &fakeProcessor{ready: tc.ready},
			}
			rec := httptest.NewRecorder()
			app.Health(rec, httptest.NewRequest("GET", "/v1/healthz", nil))

			if rec.Code != 200 {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
			var body map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body["status"] != "ok" {
				t.Errorf("status field = %q, want ok", body["status"])
			}
			if body["payments"] != tc.want {
				t.Errorf("payments field = %q, want %q", body["payments"], tc.want)
			}
		})
	}
}
