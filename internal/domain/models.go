package domain

import (
	"strings"
	"time"
)

// QuestionKind distinguishes free-text questions from multiple-choice ones.
type QuestionKind string

const (
	FreeText       QuestionKind = "free_text"
	MultipleChoice QuestionKind = "multiple_choice"
)

// Question is a scheduled trivia item. Its answer window is [StartTime, EndTime).
type Question struct {
	ID            string       `json:"id"`
	Text          string       `json:"text"`
	Kind          QuestionKind `json:"kind"`
	Options       []string     `json:"options,omitempty"` // only for MultipleChoice
	CorrectAnswer string       `json:"correctAnswer"`
	StartTime     time.Time    `json:"startTime"`
	EndTime       time.Time    `json:"endTime"`
	CreatedAt     time.Time    `json:"createdAt"`
}

// Submission is one participant's answer to one question. At most one row may
// exist per (QuestionID, NormalizedName); the store enforces this with a
// unique constraint, the service only pre-checks.
type Submission struct {
	ID             string    `json:"id"`
	QuestionID     string    `json:"questionId"`
	DisplayName    string    `json:"displayName"`
	NormalizedName string    `json:"normalizedName"`
	Answer         string    `json:"answer"`
	IsCorrect      bool      `json:"isCorrect"`
	ResultViewed   bool      `json:"resultViewed"`
	SubmittedAt    time.Time `json:"submittedAt"`
}

// Session marks a display name as occupied by one device. A session is live
// while its LastSeen is within the liveness window; expired rows are garbage
// collected lazily on the next registration for the same identity.
type Session struct {
	Identity  string    `json:"identity"` // normalized display name
	SessionID string    `json:"sessionId"`
	LastSeen  time.Time `json:"lastSeen"`
}

// GameSettings is the single mutable row gating winner visibility. It is
// created lazily on first read.
type GameSettings struct {
	ShowWinner        bool   `json:"showWinner"`
	CurrentQuestionID string `json:"currentQuestionId,omitempty"`
	WinnerName        string `json:"winnerName,omitempty"`
}

// NormalizeIdentity maps a display name to the identity used for uniqueness
// comparisons: trimmed and lower-cased.
func NormalizeIdentity(displayName string) string {
	return strings.ToLower(strings.TrimSpace(displayName))
}

// NormalizeAnswer applies the same folding used when grading answers.
func NormalizeAnswer(answer string) string {
	return strings.ToLower(strings.TrimSpace(answer))
}
