package server

import (
	"encoding/json"
	"log"
	"net/http"
)

// Error messages
const (
	ErrEditModeDisabled = "Edit mode disabled"
	ErrInvalidPayload   = "Invalid payload"
	ErrInternalServer   = "Internal server error"
)

// requireMethod validates that the request uses the specified HTTP method.
func requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

// requireEditMode validates that edit mode is enabled.
func (s *Server) requireEditMode(w http.ResponseWriter) bool {
	if !s.editMode {
		http.Error(w, ErrEditModeDisabled, http.StatusForbidden)
		return false
	}
	return true
}

// writeJSON encodes payload with the given status code.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// writeOK is the standard success response for editor mutations.
func writeOK(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// writeClientError reports a request-validation failure.
func writeClientError(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": msg})
}
