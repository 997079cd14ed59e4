package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"trivia-contest-service/internal/domain"
)

type errorResponse struct {
	Error string `json:"error"`
	// Code identifies the rejection kind so clients do not have to parse the
	// message, e.g. to tell a duplicate from a closed window on a 409.
	Code string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeDomainError maps the error taxonomy onto HTTP statuses. Validation and
// temporal precondition failures are client mistakes; conflicts cover closed
// windows, duplicates and occupied names; anything else is the store acting up.
func writeDomainError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := ""
	switch {
	case errors.Is(err, domain.ErrValidation):
		status, code = http.StatusBadRequest, "validation"
	case errors.Is(err, domain.ErrTimeOrder):
		status, code = http.StatusBadRequest, "time_order"
	case errors.Is(err, domain.ErrQuestionNotFound):
		status, code = http.StatusNotFound, "question_not_found"
	case errors.Is(err, domain.ErrSubmissionNotFound):
		status, code = http.StatusNotFound, "submission_not_found"
	case errors.Is(err, domain.ErrWindowClosed):
		status, code = http.StatusConflict, "window_closed"
	case errors.Is(err, domain.ErrDuplicateSubmission):
		status, code = http.StatusConflict, "duplicate_submission"
	case errors.Is(err, domain.ErrSessionConflict):
		status, code = http.StatusConflict, "session_conflict"
	case errors.Is(err, domain.ErrAlreadyEnded):
		status, code = http.StatusConflict, "already_ended"
	}
	writeJSON(w, status, errorResponse{Error: err.Error(), Code: code})
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
