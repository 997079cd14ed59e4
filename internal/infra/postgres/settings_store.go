package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"trivia-contest-service/internal/domain"
)

// SettingsStore persists the game settings singleton. The table's boolean
// primary key with a CHECK constraint caps it at one row; Get creates that
// row lazily with ON CONFLICT DO NOTHING so concurrent first reads are safe.
type SettingsStore struct {
	pool *pgxpool.Pool
}

func NewSettingsStore(pool *pgxpool.Pool) *SettingsStore {
	return &SettingsStore{pool: pool}
}

func (s *SettingsStore) Get(ctx context.Context) (domain.GameSettings, error) {
	if _, err := s.pool.Exec(ctx, `
		INSERT INTO game_settings (id, show_winner) VALUES (TRUE, FALSE)
		ON CONFLICT (id) DO NOTHING`); err != nil {
		return domain.GameSettings{}, fmt.Errorf("init settings: %w", err)
	}

	var (
		settings   domain.GameSettings
		questionID sql.NullString
		winnerName sql.NullString
	)
	err := s.pool.QueryRow(ctx,
		`SELECT show_winner, current_question_id, winner_name FROM game_settings`).
		Scan(&settings.ShowWinner, &questionID, &winnerName)
	if err != nil {
		return domain.GameSettings{}, fmt.Errorf("get settings: %w", err)
	}
	settings.CurrentQuestionID = questionID.String
	settings.WinnerName = winnerName.String
	return settings, nil
}

func (s *SettingsStore) SetCurrentQuestion(ctx context.Context, questionID string) error {
	if _, err := s.Get(ctx); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx, `
		UPDATE game_settings
		SET current_question_id = $1, show_winner = FALSE, winner_name = NULL`, questionID)
	if err != nil {
		return fmt.Errorf("set current question: %w", err)
	}
	return nil
}

func (s *SettingsStore) SetShowWinner(ctx context.Context, show bool, winnerName string) error {
	if _, err := s.Get(ctx); err != nil {
		return err
	}
	var name sql.NullString
	if show && winnerName != "" {
		name = sql.NullString{String: winnerName, Valid: true}
	}
	_, err := s.pool.Exec(ctx,
		`UPDATE game_settings SET show_winner = $1, winner_name = $2`, show, name)
	if err != nil {
		return fmt.Errorf("set show winner: %w", err)
	}
	return nil
}
