package orchestrator_test

import (
	"testing"
	"time"

	"trivia-contest-service/internal/orchestrator"
)

func testQuestion(start, end time.Time) *orchestrator.Question {
	return &orchestrator.Question{
		ID:        "q-1",
		Text:      "What is the capital of Egypt?",
		Kind:      "free_text",
		StartTime: start,
		EndTime:   end,
	}
}

func TestReduceLifecycle(t *testing.T) {
	base := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	q := testQuestion(base.Add(10*time.Second), base.Add(40*time.Second))

	s := orchestrator.NewState(base)
	if s.Phase != orchestrator.PhaseLoading {
		t.Fatalf("initial phase = %q, want loading", s.Phase)
	}

	s = orchestrator.Reduce(s, orchestrator.QuestionEvent{Question: q, Now: base})
	if s.Phase != orchestrator.PhaseUpcoming {
		t.Fatalf("phase after poll = %q, want upcoming", s.Phase)
	}

	s = orchestrator.Reduce(s, orchestrator.TickEvent{Now: base.Add(10 * time.Second)})
	if s.Phase != orchestrator.PhaseActive {
		t.Fatalf("phase at start instant = %q, want active", s.Phase)
	}

	s = orchestrator.Reduce(s, orchestrator.SubmittedEvent{})
	if !s.HasSubmitted {
		t.Fatal("HasSubmitted should be set after SubmittedEvent")
	}

	s = orchestrator.Reduce(s, orchestrator.TickEvent{Now: base.Add(40 * time.Second)})
	if s.Phase != orchestrator.PhaseEnded {
		t.Fatalf("phase at end instant = %q, want ended", s.Phase)
	}
	if s.Feedback != orchestrator.FeedbackNone {
		t.Fatalf("feedback before result fetch = %q, want none", s.Feedback)
	}

	s = orchestrator.Reduce(s, orchestrator.ResultEvent{Found: true, Correct: true})
	if s.Feedback != orchestrator.FeedbackCorrect {
		t.Fatalf("feedback = %q, want correct", s.Feedback)
	}
	if s.FeedbackShown {
		t.Fatal("feedback should not be marked shown yet")
	}

	s = orchestrator.Reduce(s, orchestrator.FeedbackShownEvent{})
	if !s.FeedbackShown {
		t.Fatal("FeedbackShown should be set")
	}
}

func TestReduceNoSubmissionFeedback(t *testing.T) {
	base := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	q := testQuestion(base, base.Add(30*time.Second))

	s := orchestrator.NewState(base)
	s = orchestrator.Reduce(s, orchestrator.QuestionEvent{Question: q, Now: base})
	s = orchestrator.Reduce(s, orchestrator.TickEvent{Now: base.Add(31 * time.Second)})

	if s.Phase != orchestrator.PhaseEnded {
		t.Fatalf("phase = %q, want ended", s.Phase)
	}
	if s.Feedback != orchestrator.FeedbackNoSubmission {
		t.Fatalf("feedback = %q, want no_submission", s.Feedback)
	}
}

func TestReduceEndedIsMonotonicPerQuestion(t *testing.T) {
	base := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	q := testQuestion(base, base.Add(30*time.Second))

	s := orchestrator.NewState(base)
	s = orchestrator.Reduce(s, orchestrator.QuestionEvent{Question: q, Now: base})
	s = orchestrator.Reduce(s, orchestrator.TickEvent{Now: base.Add(30 * time.Second)})
	if s.Phase != orchestrator.PhaseEnded {
		t.Fatalf("phase = %q, want ended", s.Phase)
	}

	// The operator extends the window after this participant already saw it
	// end. The same question must not come back to life locally.
	extended := testQuestion(base, base.Add(5*time.Minute))
	s = orchestrator.Reduce(s, orchestrator.QuestionEvent{Question: extended, Now: base.Add(31 * time.Second)})
	if s.Phase != orchestrator.PhaseEnded {
		t.Fatalf("phase after extension = %q, want ended (monotonic)", s.Phase)
	}

	// A ticking clock behind the server's doesn't revive it either.
	s = orchestrator.Reduce(s, orchestrator.TickEvent{Now: base.Add(29 * time.Second)})
	if s.Phase != orchestrator.PhaseEnded {
		t.Fatalf("phase after stale tick = %q, want ended", s.Phase)
	}
}

func TestReduceNewQuestionResetsPerQuestionState(t *testing.T) {
	base := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	first := testQuestion(base, base.Add(30*time.Second))

	s := orchestrator.NewState(base)
	s = orchestrator.Reduce(s, orchestrator.QuestionEvent{Question: first, Now: base})
	s = orchestrator.Reduce(s, orchestrator.SubmittedEvent{})
	s = orchestrator.Reduce(s, orchestrator.TickEvent{Now: base.Add(35 * time.Second)})
	s = orchestrator.Reduce(s, orchestrator.ResultEvent{Found: true, Correct: false})
	s = orchestrator.Reduce(s, orchestrator.FeedbackShownEvent{})

	second := &orchestrator.Question{
		ID:        "q-2",
		Text:      "What is the capital of Japan?",
		Kind:      "free_text",
		StartTime: base.Add(1 * time.Minute),
		EndTime:   base.Add(2 * time.Minute),
	}
	s = orchestrator.Reduce(s, orchestrator.QuestionEvent{Question: second, Now: base.Add(90 * time.Second)})

	if s.Phase != orchestrator.PhaseActive {
		t.Fatalf("phase = %q, want active", s.Phase)
	}
	if s.HasSubmitted || s.Feedback != orchestrator.FeedbackNone || s.FeedbackShown {
		t.Fatalf("per-question state not reset: %+v", s)
	}
}

func TestReduceKeepsEndedViewWhenPollGoesEmpty(t *testing.T) {
	base := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	q := testQuestion(base, base.Add(30*time.Second))

	s := orchestrator.NewState(base)
	s = orchestrator.Reduce(s, orchestrator.QuestionEvent{Question: q, Now: base})
	s = orchestrator.Reduce(s, orchestrator.TickEvent{Now: base.Add(31 * time.Second)})

	// Once the window closes the poll returns no active question, but the
	// ended view (with feedback) stays up until a fresh question arrives.
	s = orchestrator.Reduce(s, orchestrator.QuestionEvent{Question: nil, Now: base.Add(1 * time.Minute)})
	if s.Phase != orchestrator.PhaseEnded {
		t.Fatalf("phase = %q, want ended", s.Phase)
	}
	if s.Question == nil || s.Question.ID != "q-1" {
		t.Fatal("ended question should remain visible")
	}
}

func TestReduceEmptyPollWithoutQuestionIsNone(t *testing.T) {
	base := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	s := orchestrator.NewState(base)
	s = orchestrator.Reduce(s, orchestrator.QuestionEvent{Question: nil, Now: base})
	if s.Phase != orchestrator.PhaseNone {
		t.Fatalf("phase = %q, want none", s.Phase)
	}
}

func TestReduceSettingsEvent(t *testing.T) {
	base := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	s := orchestrator.NewState(base)

	s = orchestrator.Reduce(s, orchestrator.SettingsEvent{ShowWinner: true, WinnerName: "sara"})
	if !s.ShowWinner || s.WinnerName != "sara" {
		t.Fatalf("settings not applied: %+v", s)
	}

	s = orchestrator.Reduce(s, orchestrator.SettingsEvent{})
	if s.ShowWinner || s.WinnerName != "" {
		t.Fatalf("settings not cleared: %+v", s)
	}
}

func TestReduceResultEventRestoresStanding(t *testing.T) {
	// A refreshed client that already answered learns its standing from the
	// service, including that the verdict was already seen.
	base := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	q := testQuestion(base, base.Add(30*time.Second))

	s := orchestrator.NewState(base)
	s = orchestrator.Reduce(s, orchestrator.QuestionEvent{Question: q, Now: base.Add(10 * time.Second)})
	s = orchestrator.Reduce(s, orchestrator.ResultEvent{Found: true, Correct: true, Viewed: true})

	if !s.HasSubmitted {
		t.Fatal("HasSubmitted should be restored from the stored row")
	}
	if s.Feedback != orchestrator.FeedbackCorrect || !s.FeedbackShown {
		t.Fatalf("verdict not restored: %+v", s)
	}
}
