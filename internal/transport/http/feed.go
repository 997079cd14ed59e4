package http

import (
	"log"
	"net/http"
	"time"

	"trivia-contest-service/internal/domain"
)

// feedInterval is how often the admin feed pushes a fresh snapshot.
const feedInterval = 2 * time.Second

type feedSnapshot struct {
	QuestionID  string              `json:"questionId"`
	Submissions []domain.Submission `json:"submissions"`
	Count       int                 `json:"count"`
	At          time.Time           `json:"at"`
}

// submissionFeed streams submission snapshots for a question over a
// websocket so the operator dashboard does not have to poll by hand. The
// feed is read from the store on an interval; it is a convenience view for
// the operator, not a participant-facing push channel.
func (h *Handler) submissionFeed(w http.ResponseWriter, r *http.Request) {
	questionID := r.URL.Query().Get("questionId")
	if questionID == "" {
		settings, err := h.gate.Get(r.Context())
		if err != nil || settings.CurrentQuestionID == "" {
			writeJSONError(w, http.StatusBadRequest, "no question to follow")
			return
		}
		questionID = settings.CurrentQuestionID
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("feed upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	// Reader goroutine: detects the peer going away.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(feedInterval)
	defer ticker.Stop()

	push := func() bool {
		subs, err := h.ledger.ListByQuestion(r.Context(), questionID)
		if err != nil {
			log.Printf("feed read failed: %v", err)
			return true // transient; next tick self-heals
		}
		snap := feedSnapshot{
			QuestionID:  questionID,
			Submissions: subs,
			Count:       len(subs),
			At:          h.now(),
		}
		if err := conn.WriteJSON(snap); err != nil {
			return false
		}
		return true
	}

	if !push() {
		return
	}
	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if !push() {
				return
			}
		}
	}
}
