package handlers

import (
	"net/http"
	"strings"
	"testing"
)

func TestGetGateHidesAnswers(t *testing.T) {
	_, router := newTestHandlers(t)

	rec := doJSON(t, router, "GET", "/api/gate", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	body := rec.Body.String()
	for _, secret := range []string{"answerIndex", "answerText", "pizza"} {
		if strings.Contains(body, secret) {
			t.Errorf("gate response leaks %q", secret)
		}
	}

	var resp gateResponse
	decodeBody(t, rec, &resp)
	if len(resp.Questions) != 2 {
		t.Fatalf("got %d questions, want 2", len(resp.Questions))
	}
	if resp.Questions[0].Type != "choice" || len(resp.Questions[0].Choices) != 3 {
		t.Errorf("unexpected first question: %+v", resp.Questions[0])
	}
	if resp.Questions[1].Type != "text" || len(resp.Questions[1].Choices) != 0 {
		t.Errorf("unexpected second question: %+v", resp.Questions[1])
	}
}

func TestVerifyGate(t *testing.T) {
	// Default content: choice answer index 2, text answer "pizza"
	_, router := newTestHandlers(t)

	tests := []struct {
		name    string
		answers []interface{}
		valid   bool
	}{
		{"all correct", []interface{}{2, "pizza"}, true},
		{"case insensitive text", []interface{}{2, "PIZZA"}, true},
		{"whitespace trimmed", []interface{}{2, "  pizza "}, true},
		{"wrong choice", []interface{}{1, "pizza"}, false},
		{"wrong text", []interface{}{2, "pasta"}, false},
		{"wrong answer count", []interface{}{2}, false},
		{"no answers", []interface{}{}, false},
		{"wrong types", []interface{}{"two", 7}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, router, "POST", "/api/gate/verify", map[string]interface{}{"answers": tt.answers})
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
			}

			var resp struct {
				Valid   bool   `json:"valid"`
				Message string `json:"message"`
			}
			decodeBody(t, rec, &resp)
			if resp.Valid != tt.valid {
				t.Errorf("valid = %v, want %v", resp.Valid, tt.valid)
			}
			if !tt.valid && resp.Message == "" {
				t.Error("failed verification should carry the configured message")
			}
		})
	}
}
