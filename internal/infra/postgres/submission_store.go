package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"trivia-contest-service/internal/domain"
)

// pgUniqueViolation is the SQLSTATE for a unique constraint violation.
const pgUniqueViolation = "23505"

// SubmissionStore persists submissions in Postgres. The unique index on
// (question_id, normalized_name) is the final arbiter for racing duplicates.
type SubmissionStore struct {
	pool *pgxpool.Pool
}

func NewSubmissionStore(pool *pgxpool.Pool) *SubmissionStore {
	return &SubmissionStore{pool: pool}
}

const submissionColumns = `id, question_id, name, normalized_name, answer, is_correct, result_viewed, submitted_at`

func (s *SubmissionStore) Insert(ctx context.Context, sub domain.Submission) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO submissions (id, question_id, name, normalized_name, answer, is_correct, result_viewed, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		sub.ID, sub.QuestionID, sub.DisplayName, sub.NormalizedName,
		sub.Answer, sub.IsCorrect, sub.ResultViewed, sub.SubmittedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return domain.ErrDuplicateSubmission
		}
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

func (s *SubmissionStore) GetOwn(ctx context.Context, questionID, identity string) (domain.Submission, bool, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+submissionColumns+` FROM submissions
		WHERE question_id = $1 AND normalized_name = $2`, questionID, identity)
	sub, err := scanSubmission(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Submission{}, false, nil
	}
	if err != nil {
		return domain.Submission{}, false, err
	}
	return sub, true, nil
}

func (s *SubmissionStore) ListByQuestion(ctx context.Context, questionID string) ([]domain.Submission, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+submissionColumns+` FROM submissions
		WHERE question_id = $1 ORDER BY submitted_at ASC`, questionID)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()
	return collectSubmissions(rows)
}

func (s *SubmissionStore) ListAll(ctx context.Context) ([]domain.Submission, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+submissionColumns+` FROM submissions ORDER BY submitted_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list all submissions: %w", err)
	}
	defer rows.Close()
	return collectSubmissions(rows)
}

func (s *SubmissionStore) MarkViewed(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE submissions SET result_viewed = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark viewed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSubmissionNotFound
	}
	return nil
}

func scanSubmission(row pgx.Row) (domain.Submission, error) {
	var sub domain.Submission
	err := row.Scan(&sub.ID, &sub.QuestionID, &sub.DisplayName, &sub.NormalizedName,
		&sub.Answer, &sub.IsCorrect, &sub.ResultViewed, &sub.SubmittedAt)
	return sub, err
}

func collectSubmissions(rows pgx.Rows) ([]domain.Submission, error) {
	var out []domain.Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}
