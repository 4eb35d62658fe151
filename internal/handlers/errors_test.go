package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Almer24/it-ticketing-system/internal/repository"
	"github.com/Almer24/it-ticketing-system/internal/service"
)

func TestRespondErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"not found", repository.ErrNotFound, http.StatusNotFound},
		{"closed ticket", repository.ErrTicketClosed, http.StatusForbidden},
		{"forbidden", service.ErrForbidden, http.StatusForbidden},
		{"self delete", service.ErrSelfDelete, http.StatusForbidden},
		{"duplicate number", repository.ErrDuplicateNumber, http.StatusConflict},
		{"duplicate user", repository.ErrDuplicate, http.StatusConflict},
		{"wrapped not found", errors.Join(errors.New("ctx"), repository.ErrNotFound), http.StatusNotFound},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			respondError(rec, tt.err)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var body map[string]any
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("body is not JSON: %v", err)
			}
			if body["error"] == "" {
				t.Errorf("missing error message in %v", body)
			}
		})
	}
}

func TestRespondErrorValidationFields(t *testing.T) {
	rec := httptest.NewRecorder()
	respondError(rec, &service.ValidationError{Fields: map[string]string{
		"status": "invalid status",
		"notes":  "too long",
	}})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var body struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if len(body.Fields) != 2 || body.Fields["status"] == "" || body.Fields["notes"] == "" {
		t.Errorf("fields = %v, want both entries", body.Fields)
	}
}

func TestInternalErrorsAreNotLeaked(t *testing.T) {
	rec := httptest.NewRecorder()
	respondError(rec, errors.New("pq: connection refused at 10.0.0.3"))
	var body map[string]string
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body["error"] != "internal error" {
		t.Errorf("error = %q, want generic message", body["error"])
	}
}
