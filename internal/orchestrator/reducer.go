// Package orchestrator drives a participant's view of the contest from
// periodic polls and a local clock. The reducer is a pure function over an
// explicit event set, so every transition is testable without timers or a
// network.
package orchestrator

import (
	"time"

	"trivia-contest-service/internal/domain"
)

// Phase is the participant-visible state of the contest.
type Phase string

const (
	// PhaseLoading holds until the first question poll lands.
	PhaseLoading  Phase = "loading"
	PhaseNone     Phase = "none"
	PhaseUpcoming Phase = "upcoming"
	PhaseActive   Phase = "active"
	PhaseEnded    Phase = "ended"
)

// Feedback is the one-time verdict shown after a question ends.
type Feedback string

const (
	FeedbackNone         Feedback = ""
	FeedbackCorrect      Feedback = "correct"
	FeedbackIncorrect    Feedback = "incorrect"
	FeedbackNoSubmission Feedback = "no_submission"
)

// Question carries the window fields the reducer needs; display fields ride
// along for rendering.
type Question struct {
	ID        string
	Text      string
	Kind      string
	Options   []string
	StartTime time.Time
	EndTime   time.Time
}

// State is the full orchestrator state. It is a value: Reduce returns a new
// State and never mutates its input.
type State struct {
	Phase    Phase
	Question *Question
	Now      time.Time

	HasSubmitted  bool
	Feedback      Feedback
	FeedbackShown bool

	ShowWinner bool
	WinnerName string
}

// NewState returns the pre-first-poll state.
func NewState(now time.Time) State {
	return State{Phase: PhaseLoading, Now: now}
}

// Event is one of the closed set of reducer inputs.
type Event interface {
	isEvent()
}

// TickEvent advances the local clock. Ticks fire every second so a window
// boundary is noticed without waiting for the next poll.
type TickEvent struct {
	Now time.Time
}

// QuestionEvent is the result of a question poll. Question is nil when no
// question is active; Now is the server's clock at poll time.
type QuestionEvent struct {
	Question *Question
	Now      time.Time
}

// SettingsEvent is the result of a settings poll.
type SettingsEvent struct {
	ShowWinner bool
	WinnerName string
}

// SubmittedEvent records that this participant's answer was accepted,
// including the soft-success path where a retry found an existing row.
type SubmittedEvent struct{}

// ResultEvent carries the participant's own graded row, fetched after the
// window closes. Found is false when the participant never answered.
type ResultEvent struct {
	Found   bool
	Correct bool
	Viewed  bool
}

// FeedbackShownEvent records that the verdict was displayed, so it is never
// shown again for this question.
type FeedbackShownEvent struct{}

func (TickEvent) isEvent()          {}
func (QuestionEvent) isEvent()      {}
func (SettingsEvent) isEvent()      {}
func (SubmittedEvent) isEvent()     {}
func (ResultEvent) isEvent()        {}
func (FeedbackShownEvent) isEvent() {}

// Reduce applies one event. Phase transitions are monotonic per question: once
// a question is Ended locally it never flips back to Active, even if a later
// poll or tick would classify it as open again.
func Reduce(s State, e Event) State {
	switch ev := e.(type) {
	case TickEvent:
		s.Now = ev.Now
		return reclassify(s)

	case QuestionEvent:
		if !ev.Now.IsZero() {
			s.Now = ev.Now
		}
		if ev.Question == nil {
			// No active question. A locally-ended question keeps its feedback
			// view on screen until something new arrives.
			if s.Phase == PhaseEnded && s.Question != nil {
				return s
			}
			if s.Question == nil {
				s.Phase = PhaseNone
			}
			return s
		}
		q := *ev.Question
		if s.Question != nil && s.Question.ID == q.ID {
			if s.Phase == PhaseEnded {
				// Window edits cannot resurrect a question this participant
				// already saw end.
				return s
			}
			s.Question = &q
			return reclassify(s)
		}
		// Fresh question: per-question state resets, including the ended
		// latch — monotonicity is scoped to a single question instance.
		s.Question = &q
		s.Phase = PhaseLoading
		s.HasSubmitted = false
		s.Feedback = FeedbackNone
		s.FeedbackShown = false
		return reclassify(s)

	case SettingsEvent:
		s.ShowWinner = ev.ShowWinner
		s.WinnerName = ev.WinnerName
		return s

	case SubmittedEvent:
		s.HasSubmitted = true
		return s

	case ResultEvent:
		if ev.Found {
			s.HasSubmitted = true
			if ev.Correct {
				s.Feedback = FeedbackCorrect
			} else {
				s.Feedback = FeedbackIncorrect
			}
			if ev.Viewed {
				s.FeedbackShown = true
			}
			return s
		}
		if s.Phase == PhaseEnded && !s.HasSubmitted {
			s.Feedback = FeedbackNoSubmission
		}
		return s

	case FeedbackShownEvent:
		s.FeedbackShown = true
		return s
	}
	return s
}

func reclassify(s State) State {
	if s.Question == nil {
		if s.Phase == PhaseLoading {
			return s
		}
		s.Phase = PhaseNone
		return s
	}
	if s.Phase == PhaseEnded {
		return s
	}
	switch domain.Classify(s.Now, s.Question.StartTime, s.Question.EndTime) {
	case domain.Upcoming:
		s.Phase = PhaseUpcoming
	case domain.Active:
		s.Phase = PhaseActive
	case domain.Ended:
		s.Phase = PhaseEnded
		if !s.HasSubmitted && s.Feedback == FeedbackNone {
			s.Feedback = FeedbackNoSubmission
		}
	}
	return s
}
