package orchestrator

import (
	"context"
	"log"
	"sync"
	"time"
)

// Source is the slice of the contest API the runner polls. *client.Client
// satisfies it through a thin adapter in the caller.
type Source interface {
	ActiveQuestion(ctx context.Context) (*Question, time.Time, error)
	Settings(ctx context.Context) (showWinner bool, winnerName string, err error)
	OwnResult(ctx context.Context, questionID string) (ResultEvent, error)
	MarkResultViewed(ctx context.Context, questionID string) error
}

const (
	DefaultTickInterval         = time.Second
	DefaultQuestionPollInterval = 60 * time.Second
	DefaultSettingsPollInterval = 10 * time.Second
)

// Runner owns the poll loops and feeds the reducer. Poll failures are logged
// and swallowed: stale state is preferable to a crashed participant, and the
// next cycle retries.
type Runner struct {
	src      Source
	mu       sync.RWMutex
	state    State
	events   chan Event
	onChange func(State)

	tickEvery     time.Duration
	questionEvery time.Duration
	settingsEvery time.Duration

	now func() time.Time
}

type RunnerOption func(*Runner)

// WithIntervals overrides the poll cadences; zero values keep the defaults.
func WithIntervals(tick, question, settings time.Duration) RunnerOption {
	return func(r *Runner) {
		if tick > 0 {
			r.tickEvery = tick
		}
		if question > 0 {
			r.questionEvery = question
		}
		if settings > 0 {
			r.settingsEvery = settings
		}
	}
}

// NewRunner builds a runner; onChange fires after every state change.
func NewRunner(src Source, onChange func(State), opts ...RunnerOption) *Runner {
	r := &Runner{
		src:           src,
		events:        make(chan Event, 16),
		onChange:      onChange,
		tickEvery:     DefaultTickInterval,
		questionEvery: DefaultQuestionPollInterval,
		settingsEvery: DefaultSettingsPollInterval,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.state = NewState(r.now())
	return r
}

// Run polls until the context is cancelled. The first question and settings
// polls happen immediately so the participant is not stuck in loading for a
// full poll interval.
func (r *Runner) Run(ctx context.Context) error {
	r.pollQuestion(ctx)
	r.pollSettings(ctx)

	tick := time.NewTicker(r.tickEvery)
	defer tick.Stop()
	question := time.NewTicker(r.questionEvery)
	defer question.Stop()
	settings := time.NewTicker(r.settingsEvery)
	defer settings.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-tick.C:
			r.apply(TickEvent{Now: now})
			r.afterTransition(ctx)
		case <-question.C:
			r.pollQuestion(ctx)
		case <-settings.C:
			r.pollSettings(ctx)
		case e := <-r.events:
			r.apply(e)
			r.afterTransition(ctx)
		}
	}
}

// State returns the latest reduced state. Safe to call from other goroutines.
func (r *Runner) State() State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// Dispatch injects an event from outside the poll loop, e.g. a submission
// accepted by user input. It never blocks; a full queue drops the event,
// which the next poll corrects.
func (r *Runner) Dispatch(e Event) {
	select {
	case r.events <- e:
	default:
	}
}

func (r *Runner) pollQuestion(ctx context.Context) {
	q, serverNow, err := r.src.ActiveQuestion(ctx)
	if err != nil {
		log.Printf("orchestrator: question poll failed: %v", err)
		return
	}
	prevID := ""
	if r.state.Question != nil {
		prevID = r.state.Question.ID
	}
	r.apply(QuestionEvent{Question: q, Now: serverNow})
	if q != nil && q.ID != prevID {
		r.restoreStanding(ctx, q.ID)
	}
	r.afterTransition(ctx)
}

func (r *Runner) pollSettings(ctx context.Context) {
	showWinner, winnerName, err := r.src.Settings(ctx)
	if err != nil {
		log.Printf("orchestrator: settings poll failed: %v", err)
		return
	}
	r.apply(SettingsEvent{ShowWinner: showWinner, WinnerName: winnerName})
}

// afterTransition runs the ended-question followups: fetch the verdict once,
// then mark it viewed once it has been surfaced.
func (r *Runner) afterTransition(ctx context.Context) {
	s := r.state
	if s.Phase != PhaseEnded || s.Question == nil || s.FeedbackShown {
		return
	}
	if s.HasSubmitted && (s.Feedback == FeedbackNone || s.Feedback == FeedbackNoSubmission) {
		r.fetchOwnResult(ctx, s.Question.ID)
		s = r.state
	}
	if s.Feedback == FeedbackNone {
		return
	}
	// The callback already rendered the verdict via onChange; record that so
	// it stays one-time across refreshes.
	r.apply(FeedbackShownEvent{})
	if s.Feedback != FeedbackNoSubmission {
		if err := r.src.MarkResultViewed(ctx, s.Question.ID); err != nil {
			log.Printf("orchestrator: mark result viewed failed: %v", err)
		}
	}
}

// restoreStanding recovers this participant's state for a newly adopted
// question, e.g. after a page refresh with an answer already on record. While
// the window is still open only the submitted flag is restored; the verdict
// stays hidden until the question ends.
func (r *Runner) restoreStanding(ctx context.Context, questionID string) {
	res, err := r.src.OwnResult(ctx, questionID)
	if err != nil {
		log.Printf("orchestrator: own result fetch failed: %v", err)
		return
	}
	if !res.Found {
		return
	}
	if r.state.Phase == PhaseEnded {
		r.apply(res)
		return
	}
	r.apply(SubmittedEvent{})
	if res.Viewed {
		r.apply(FeedbackShownEvent{})
	}
}

func (r *Runner) fetchOwnResult(ctx context.Context, questionID string) {
	res, err := r.src.OwnResult(ctx, questionID)
	if err != nil {
		log.Printf("orchestrator: own result fetch failed: %v", err)
		return
	}
	r.apply(res)
}

func (r *Runner) apply(e Event) {
	r.mu.Lock()
	prev := r.state
	next := Reduce(prev, e)
	r.state = next
	r.mu.Unlock()

	changed := next.Phase != prev.Phase ||
		next.Feedback != prev.Feedback ||
		next.FeedbackShown != prev.FeedbackShown ||
		next.ShowWinner != prev.ShowWinner ||
		next.WinnerName != prev.WinnerName ||
		questionID(next.Question) != questionID(prev.Question)
	if changed && r.onChange != nil {
		r.onChange(next)
	}
}

func questionID(q *Question) string {
	if q == nil {
		return ""
	}
	return q.ID
}
