package utils

import (
	"encoding/json"
	"net/http"
)

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, map[string]string{"error": msg})
}

// Fail reports a validation failure with per-field messages.
func Fail(w http.ResponseWriter, msg string, fields map[string]string) {
	JSON(w, http.StatusBadRequest, map[string]any{"error": msg, "fields": fields})
}
