package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"trivia-contest-service/internal/domain"
)

// QuestionStore persists questions in Postgres.
type QuestionStore struct {
	pool *pgxpool.Pool
}

func NewQuestionStore(pool *pgxpool.Pool) *QuestionStore {
	return &QuestionStore{pool: pool}
}

const questionColumns = `id, text, kind, options, correct_answer, start_time, end_time, created_at`

func (s *QuestionStore) Insert(ctx context.Context, q domain.Question) error {
	var options []byte
	if q.Kind == domain.MultipleChoice {
		var err error
		options, err = json.Marshal(q.Options)
		if err != nil {
			return fmt.Errorf("marshal options: %w", err)
		}
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO questions (id, text, kind, options, correct_answer, start_time, end_time, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		q.ID, q.Text, string(q.Kind), options, q.CorrectAnswer, q.StartTime, q.EndTime, q.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert question: %w", err)
	}
	return nil
}

func (s *QuestionStore) Get(ctx context.Context, id string) (domain.Question, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+questionColumns+` FROM questions WHERE id = $1`, id)
	q, err := scanQuestion(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	return q, err
}

func (s *QuestionStore) List(ctx context.Context) ([]domain.Question, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+questionColumns+` FROM questions ORDER BY start_time ASC`)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	var out []domain.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *QuestionStore) ActiveAt(ctx context.Context, now time.Time) (domain.Question, bool, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+questionColumns+` FROM questions
		WHERE start_time <= $1 AND end_time > $1
		ORDER BY start_time DESC
		LIMIT 1`, now)
	q, err := scanQuestion(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Question{}, false, nil
	}
	if err != nil {
		return domain.Question{}, false, err
	}
	return q, true, nil
}

func (s *QuestionStore) UpdateWindow(ctx context.Context, id string, start, end time.Time) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE questions SET start_time = $2, end_time = $3 WHERE id = $1`, id, start, end)
	if err != nil {
		return fmt.Errorf("update window: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrQuestionNotFound
	}
	return nil
}

func scanQuestion(row pgx.Row) (domain.Question, error) {
	var (
		q       domain.Question
		kind    string
		options []byte
	)
	if err := row.Scan(&q.ID, &q.Text, &kind, &options, &q.CorrectAnswer,
		&q.StartTime, &q.EndTime, &q.CreatedAt); err != nil {
		return domain.Question{}, err
	}
	q.Kind = domain.QuestionKind(kind)
	if len(options) > 0 {
		if err := json.Unmarshal(options, &q.Options); err != nil {
			return domain.Question{}, fmt.Errorf("unmarshal options: %w", err)
		}
	}
	return q, nil
}
