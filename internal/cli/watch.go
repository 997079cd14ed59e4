package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"trivia-contest-service/internal/client"
	"trivia-contest-service/internal/config"
	"trivia-contest-service/internal/domain"
	"trivia-contest-service/internal/orchestrator"
)

// NewWatchCmd builds the participant client: it logs in under a display name,
// keeps the session alive, polls the contest, and lets the participant answer
// the active question from the terminal.
func NewWatchCmd(configPath *string) *cobra.Command {
	var (
		serverURL string
		name      string
		stateFile string
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Join the contest as a participant",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(name) == "" {
				return fmt.Errorf("--name is required")
			}
			return runWatch(cmd.Context(), *configPath, serverURL, name, stateFile)
		},
	}
	cmd.Flags().StringVar(&serverURL, "server", "http://127.0.0.1:8080", "contest server base URL")
	cmd.Flags().StringVar(&name, "name", "", "display name to join under")
	cmd.Flags().StringVar(&stateFile, "state-file", ".contest-state.json", "local flag cache path")
	return cmd
}

func runWatch(ctx context.Context, configPath, serverURL, name, stateFile string) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Config is optional for the client; flags and server-provided values
	// cover everything, the file just lets an operator tune poll cadences.
	questionEvery := orchestrator.DefaultQuestionPollInterval
	settingsEvery := orchestrator.DefaultSettingsPollInterval
	heartbeatFallback := 15 * time.Second
	if cfg, err := config.Load(configPath); err == nil {
		questionEvery = config.DurationOr(cfg.Contest.QuestionPollInterval, questionEvery)
		settingsEvery = config.DurationOr(cfg.Contest.SettingsPollInterval, settingsEvery)
		heartbeatFallback = config.DurationOr(cfg.Contest.HeartbeatInterval, heartbeatFallback)
	}

	api := client.New(serverURL, nil)

	sessionID, heartbeatEvery, err := api.Login(ctx, name, "")
	if errors.Is(err, domain.ErrSessionConflict) {
		return fmt.Errorf("name %q is already taken by a live session", name)
	}
	if err != nil {
		return err
	}
	if heartbeatEvery <= 0 {
		heartbeatEvery = heartbeatFallback
	}
	log.Printf("joined as %q (heartbeat every %s)", name, heartbeatEvery)

	defer func() {
		logoutCtx, logoutCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer logoutCancel()
		if err := api.Logout(logoutCtx, sessionID); err != nil {
			log.Printf("logout failed: %v", err)
		}
	}()

	go heartbeatLoop(ctx, api, sessionID, heartbeatEvery)

	cache, err := orchestrator.OpenFlagCache(stateFile)
	if err != nil {
		log.Printf("flag cache unavailable, continuing without: %v", err)
		cache = nil
	}

	src := &contestSource{api: api, name: name, cache: cache}
	runner := orchestrator.NewRunner(src, func(s orchestrator.State) {
		render(s)
		if cache != nil && s.Question != nil {
			flags := orchestrator.QuestionFlags{Submitted: s.HasSubmitted, ResultSeen: s.FeedbackShown}
			if err := cache.Set(s.Question.ID, flags); err != nil {
				log.Printf("flag cache write failed: %v", err)
			}
		}
	}, orchestrator.WithIntervals(orchestrator.DefaultTickInterval, questionEvery, settingsEvery))

	go answerLoop(ctx, api, name, runner)

	if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func heartbeatLoop(ctx context.Context, api *client.Client, sessionID string, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := api.Heartbeat(ctx, sessionID); err != nil {
				log.Printf("heartbeat failed: %v", err)
			}
		}
	}
}

// answerLoop reads answers from stdin and submits them against whatever
// question is active when the line arrives. The server re-checks the window,
// so a line typed too late comes back as a rejection, not a stale accept.
func answerLoop(ctx context.Context, api *client.Client, name string, runner *orchestrator.Runner) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		answer := strings.TrimSpace(scanner.Text())
		if answer == "" {
			continue
		}
		state := runner.State()
		if state.Phase != orchestrator.PhaseActive || state.Question == nil {
			fmt.Println("no question is open right now")
			continue
		}
		sub, err := api.Submit(ctx, name, state.Question.ID, answer)
		if errors.Is(err, domain.ErrDuplicateSubmission) {
			fmt.Println("you already have an accepted answer for this question")
			runner.Dispatch(orchestrator.SubmittedEvent{})
			continue
		}
		if errors.Is(err, domain.ErrWindowClosed) {
			fmt.Println("too late, the window closed")
			continue
		}
		if err != nil {
			log.Printf("submit failed: %v", err)
			continue
		}
		runner.Dispatch(orchestrator.SubmittedEvent{})
		fmt.Printf("answer %q locked in at %s\n", sub.Answer, sub.SubmittedAt.Format(time.Kitchen))
	}
}

func render(s orchestrator.State) {
	switch s.Phase {
	case orchestrator.PhaseLoading:
		fmt.Println("connecting...")
	case orchestrator.PhaseNone:
		fmt.Println("no question scheduled, hang tight")
	case orchestrator.PhaseUpcoming:
		fmt.Printf("next question at %s: get ready\n", s.Question.StartTime.Format(time.Kitchen))
	case orchestrator.PhaseActive:
		fmt.Printf("\nQUESTION: %s\n", s.Question.Text)
		if len(s.Question.Options) > 0 {
			for i, opt := range s.Question.Options {
				fmt.Printf("  %d) %s\n", i+1, opt)
			}
		}
		fmt.Printf("closes at %s, type your answer:\n", s.Question.EndTime.Format(time.Kitchen))
	case orchestrator.PhaseEnded:
		if s.Feedback != orchestrator.FeedbackNone && !s.FeedbackShown {
			switch s.Feedback {
			case orchestrator.FeedbackCorrect:
				fmt.Println("time's up: your answer was CORRECT")
			case orchestrator.FeedbackIncorrect:
				fmt.Println("time's up: your answer was incorrect")
			case orchestrator.FeedbackNoSubmission:
				fmt.Println("time's up: you didn't answer this one")
			}
		}
	}
	if s.ShowWinner && s.WinnerName != "" {
		fmt.Printf("winner: %s\n", s.WinnerName)
	}
}

// contestSource adapts the HTTP client to the orchestrator's poll interface.
type contestSource struct {
	api   *client.Client
	name  string
	cache *orchestrator.FlagCache

	// submission IDs seen per question, needed to mark results viewed
	lastSubmissionID map[string]string
}

func (s *contestSource) ActiveQuestion(ctx context.Context) (*orchestrator.Question, time.Time, error) {
	q, now, err := s.api.ActiveQuestion(ctx)
	if err != nil || q == nil {
		return nil, now, err
	}
	return &orchestrator.Question{
		ID:        q.ID,
		Text:      q.Text,
		Kind:      q.Kind,
		Options:   q.Options,
		StartTime: q.StartTime,
		EndTime:   q.EndTime,
	}, now, nil
}

func (s *contestSource) Settings(ctx context.Context) (bool, string, error) {
	settings, err := s.api.Settings(ctx)
	if err != nil {
		return false, "", err
	}
	return settings.ShowWinner, settings.WinnerName, nil
}

func (s *contestSource) OwnResult(ctx context.Context, questionID string) (orchestrator.ResultEvent, error) {
	sub, found, err := s.api.OwnSubmission(ctx, questionID, s.name)
	if err != nil {
		return orchestrator.ResultEvent{}, err
	}
	if !found {
		return orchestrator.ResultEvent{Found: false}, nil
	}
	if s.lastSubmissionID == nil {
		s.lastSubmissionID = make(map[string]string)
	}
	s.lastSubmissionID[questionID] = sub.ID
	viewed := sub.ResultViewed
	if s.cache != nil && s.cache.Get(questionID).ResultSeen {
		viewed = true
	}
	return orchestrator.ResultEvent{Found: true, Correct: sub.IsCorrect, Viewed: viewed}, nil
}

func (s *contestSource) MarkResultViewed(ctx context.Context, questionID string) error {
	id := s.lastSubmissionID[questionID]
	if id == "" {
		sub, found, err := s.api.OwnSubmission(ctx, questionID, s.name)
		if err != nil || !found {
			return err
		}
		id = sub.ID
	}
	return s.api.MarkViewed(ctx, id)
}
