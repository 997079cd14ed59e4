package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"trivia-contest-service/internal/app"
	"trivia-contest-service/internal/config"
	"trivia-contest-service/internal/infra/memory"
	contestpg "trivia-contest-service/internal/infra/postgres"
	contestredis "trivia-contest-service/internal/infra/redis"
	transport "trivia-contest-service/internal/transport/http"
)

// NewServeCmd builds the CLI subcommand to start the server.
func NewServeCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the contest server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	livenessWindow := config.DurationOr(cfg.Contest.LivenessWindow, app.DefaultLivenessWindow)
	cacheTTL := config.DurationOr(cfg.Contest.QuestionCacheTTL, 10*time.Second)

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	var (
		questions   app.QuestionStore
		submissions app.SubmissionStore
		sessions    app.SessionStore
		settings    app.SettingsStore
	)
	if pool != nil {
		questions = contestpg.NewQuestionStore(pool)
		submissions = contestpg.NewSubmissionStore(pool)
		sessions = contestpg.NewSessionStore(pool)
		settings = contestpg.NewSettingsStore(pool)
	} else {
		log.Printf("postgres not configured, using in-memory stores")
		questions = memory.NewQuestionStore()
		submissions = memory.NewSubmissionStore()
		sessions = memory.NewSessionStore()
		settings = memory.NewSettingsStore()
	}

	// Sessions are ephemeral; redis holds them when available so restarts
	// don't log everyone out.
	if redisClient != nil {
		sessions = contestredis.NewSessionStore(redisClient, livenessWindow)
	}

	gate := app.NewRevealGate(settings)
	directory := app.NewDirectory(questions, gate)
	ledger := app.NewLedger(submissions)
	registry := app.NewRegistry(sessions, livenessWindow)

	var opts []transport.Option
	if redisClient != nil {
		cache := contestredis.NewActiveQuestionCache(redisClient, directory, cacheTTL)
		opts = append(opts, transport.WithActiveSource(cache, cache.Invalidate))
	}

	handler := transport.NewHandler(directory, ledger, registry, gate, cfg.Server.AdminToken, opts...)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      handler.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting contest service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
