package http

import (
	"errors"
	"net/http"
	"time"

	"trivia-contest-service/internal/domain"
)

// questionView is the participant-facing shape of a question. The correct
// answer never leaves the server on participant endpoints.
type questionView struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Kind      string    `json:"kind"`
	Options   []string  `json:"options,omitempty"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	Phase     string    `json:"phase"`
}

func (h *Handler) viewOf(q domain.Question) questionView {
	return questionView{
		ID:        q.ID,
		Text:      q.Text,
		Kind:      string(q.Kind),
		Options:   q.Options,
		StartTime: q.StartTime,
		EndTime:   q.EndTime,
		Phase:     domain.Classify(h.now(), q.StartTime, q.EndTime).String(),
	}
}

type loginRequest struct {
	Name      string `json:"name"`
	SessionID string `json:"sessionId,omitempty"` // set on page refresh
}

type loginResponse struct {
	SessionID        string `json:"sessionId"`
	HeartbeatSeconds int    `json:"heartbeatSeconds"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	sessionID, err := h.registry.Login(r.Context(), req.Name, req.SessionID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{
		SessionID:        sessionID,
		HeartbeatSeconds: int(h.registry.LivenessWindow().Seconds()) / 2,
	})
}

type sessionRequest struct {
	SessionID string `json:"sessionId"`
}

func (h *Handler) heartbeat(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.registry.Heartbeat(r.Context(), req.SessionID); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.registry.End(r.Context(), req.SessionID); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type activeResponse struct {
	Question *questionView `json:"question"`
	Now      time.Time     `json:"now"`
}

func (h *Handler) activeQuestion(w http.ResponseWriter, r *http.Request) {
	q, ok, err := h.active.GetActive(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	resp := activeResponse{Now: h.now()}
	if ok {
		view := h.viewOf(q)
		resp.Question = &view
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) schedule(w http.ResponseWriter, r *http.Request) {
	questions, err := h.directory.ListSchedule(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	views := make([]questionView, 0, len(questions))
	for _, q := range questions {
		views = append(views, h.viewOf(q))
	}
	writeJSON(w, http.StatusOK, map[string]any{"questions": views, "now": h.now()})
}

type submitRequest struct {
	Name       string `json:"name"`
	QuestionID string `json:"questionId,omitempty"` // defaults to the active question
	Answer     string `json:"answer"`
}

type submissionView struct {
	ID           string    `json:"id"`
	QuestionID   string    `json:"questionId"`
	DisplayName  string    `json:"displayName"`
	Answer       string    `json:"answer"`
	IsCorrect    bool      `json:"isCorrect"`
	ResultViewed bool      `json:"resultViewed"`
	SubmittedAt  time.Time `json:"submittedAt"`
}

func submissionViewOf(s domain.Submission) submissionView {
	return submissionView{
		ID:           s.ID,
		QuestionID:   s.QuestionID,
		DisplayName:  s.DisplayName,
		Answer:       s.Answer,
		IsCorrect:    s.IsCorrect,
		ResultViewed: s.ResultViewed,
		SubmittedAt:  s.SubmittedAt,
	}
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// Admission is decided against the stored question window, never against
	// the client's belief that the window is still open.
	var (
		q   domain.Question
		err error
	)
	if req.QuestionID != "" {
		q, err = h.directory.Get(r.Context(), req.QuestionID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
	} else {
		var ok bool
		q, ok, err = h.directory.GetActive(r.Context())
		if err != nil {
			writeDomainError(w, err)
			return
		}
		if !ok {
			writeDomainError(w, domain.ErrWindowClosed)
			return
		}
	}

	sub, err := h.ledger.Submit(r.Context(), req.Name, q, req.Answer)
	if errors.Is(err, domain.ErrDuplicateSubmission) {
		// A retry after a flaky round trip already has an accepted answer;
		// return it as a soft success instead of an error.
		if own, ok, ownErr := h.ledger.GetOwn(r.Context(), q.ID, req.Name); ownErr == nil && ok {
			writeJSON(w, http.StatusOK, submissionViewOf(own))
			return
		}
		writeDomainError(w, err)
		return
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, submissionViewOf(sub))
}

func (h *Handler) ownSubmission(w http.ResponseWriter, r *http.Request) {
	questionID := r.URL.Query().Get("questionId")
	name := r.URL.Query().Get("name")
	if questionID == "" || name == "" {
		writeJSONError(w, http.StatusBadRequest, "questionId and name are required")
		return
	}
	sub, ok, err := h.ledger.GetOwn(r.Context(), questionID, name)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !ok {
		writeDomainError(w, domain.ErrSubmissionNotFound)
		return
	}
	writeJSON(w, http.StatusOK, submissionViewOf(sub))
}

func (h *Handler) markViewed(w http.ResponseWriter, r *http.Request) {
	if err := h.ledger.MarkViewed(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) settings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.gate.Get(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}
