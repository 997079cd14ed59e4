package http

import (
	"net/http"
	"time"

	"trivia-contest-service/internal/app"
	"trivia-contest-service/internal/domain"
)

type createQuestionRequest struct {
	Text          string    `json:"text"`
	Kind          string    `json:"kind,omitempty"`
	Options       []string  `json:"options,omitempty"`
	CorrectAnswer string    `json:"correctAnswer"`
	StartTime     time.Time `json:"startTime"`
	EndTime       time.Time `json:"endTime"`
}

func (h *Handler) createQuestion(w http.ResponseWriter, r *http.Request) {
	var req createQuestionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	q, err := h.directory.Create(r.Context(), app.CreateQuestionParams{
		Text:          req.Text,
		Kind:          domain.QuestionKind(req.Kind),
		Options:       req.Options,
		CorrectAnswer: req.CorrectAnswer,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	h.invalidate(r.Context())
	writeJSON(w, http.StatusCreated, q)
}

func (h *Handler) forceEnd(w http.ResponseWriter, r *http.Request) {
	q, err := h.directory.ForceEnd(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	h.invalidate(r.Context())
	writeJSON(w, http.StatusOK, q)
}

type updateWindowRequest struct {
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
}

func (h *Handler) updateWindow(w http.ResponseWriter, r *http.Request) {
	var req updateWindowRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	q, err := h.directory.UpdateWindow(r.Context(), r.PathValue("id"), req.StartTime, req.EndTime)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	h.invalidate(r.Context())
	writeJSON(w, http.StatusOK, q)
}

// adminQuestions returns the full schedule including correct answers.
func (h *Handler) adminQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := h.directory.ListSchedule(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"questions": questions, "now": h.now()})
}

func (h *Handler) adminSubmissions(w http.ResponseWriter, r *http.Request) {
	questionID := r.URL.Query().Get("questionId")
	var (
		subs []domain.Submission
		err  error
	)
	if questionID == "" {
		subs, err = h.ledger.ListAll(r.Context())
	} else {
		subs, err = h.ledger.ListByQuestion(r.Context(), questionID)
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"submissions": subs, "count": len(subs)})
}

type winnerResponse struct {
	Winner *domain.Submission `json:"winner"`
}

// adminWinner derives the winner once the question has ended. Winner
// computation before the window closes is refused; the schedule could still
// change the outcome.
func (h *Handler) adminWinner(w http.ResponseWriter, r *http.Request) {
	questionID := r.URL.Query().Get("questionId")
	if questionID == "" {
		writeJSONError(w, http.StatusBadRequest, "questionId is required")
		return
	}
	q, err := h.directory.Get(r.Context(), questionID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if domain.Classify(h.now(), q.StartTime, q.EndTime) != domain.Ended {
		writeJSONError(w, http.StatusConflict, "question has not ended yet")
		return
	}
	winner, ok, err := h.ledger.Winner(r.Context(), questionID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	resp := winnerResponse{}
	if ok {
		resp.Winner = &winner
	}
	writeJSON(w, http.StatusOK, resp)
}

// toggleReveal flips the reveal gate. Turning it on recomputes the winner of
// the gate's current question and refuses if the question is still open or
// nobody answered correctly.
func (h *Handler) toggleReveal(w http.ResponseWriter, r *http.Request) {
	settings, err := h.gate.Get(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if settings.ShowWinner {
		if _, err := h.gate.Toggle(r.Context(), true, ""); err != nil {
			writeDomainError(w, err)
			return
		}
		settings, _ = h.gate.Get(r.Context())
		writeJSON(w, http.StatusOK, settings)
		return
	}

	if settings.CurrentQuestionID == "" {
		writeJSONError(w, http.StatusConflict, "no current question to reveal")
		return
	}
	q, err := h.directory.Get(r.Context(), settings.CurrentQuestionID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if domain.Classify(h.now(), q.StartTime, q.EndTime) != domain.Ended {
		writeJSONError(w, http.StatusConflict, "question has not ended yet")
		return
	}
	winner, ok, err := h.ledger.Winner(r.Context(), q.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !ok {
		writeJSONError(w, http.StatusConflict, "no correct submission to reveal")
		return
	}
	if _, err := h.gate.Toggle(r.Context(), false, winner.DisplayName); err != nil {
		writeDomainError(w, err)
		return
	}
	settings, _ = h.gate.Get(r.Context())
	writeJSON(w, http.StatusOK, settings)
}
