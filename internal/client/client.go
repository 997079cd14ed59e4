// Package client is the HTTP client used by polling participants (the watch
// command and any headless client) against the contest API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"trivia-contest-service/internal/domain"
)

// ErrUnavailable marks transport-level failures: the caller may retry on the
// next poll cycle.
var ErrUnavailable = errors.New("contest service unavailable")

// APIError is a non-2xx response from the service. Code carries the service's
// machine-readable rejection kind when present.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if strings.TrimSpace(e.Message) == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return e.Message
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string, httpClient *http.Client) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = "http://127.0.0.1:8080"
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: baseURL, httpClient: httpClient}
}

// Question is the participant-facing question view; the service never sends
// the correct answer here.
type Question struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Kind      string    `json:"kind"`
	Options   []string  `json:"options,omitempty"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	Phase     string    `json:"phase"`
}

type Submission struct {
	ID           string    `json:"id"`
	QuestionID   string    `json:"questionId"`
	DisplayName  string    `json:"displayName"`
	Answer       string    `json:"answer"`
	IsCorrect    bool      `json:"isCorrect"`
	ResultViewed bool      `json:"resultViewed"`
	SubmittedAt  time.Time `json:"submittedAt"`
}

type Settings struct {
	ShowWinner        bool   `json:"showWinner"`
	CurrentQuestionID string `json:"currentQuestionId,omitempty"`
	WinnerName        string `json:"winnerName,omitempty"`
}

type loginRequest struct {
	Name      string `json:"name"`
	SessionID string `json:"sessionId,omitempty"`
}

type loginResponse struct {
	SessionID        string `json:"sessionId"`
	HeartbeatSeconds int    `json:"heartbeatSeconds"`
}

// Login claims the display name for this device. An occupied name maps to
// domain.ErrSessionConflict.
func (c *Client) Login(ctx context.Context, name, sessionID string) (string, time.Duration, error) {
	var resp loginResponse
	err := c.post(ctx, "/api/login", loginRequest{Name: name, SessionID: sessionID}, &resp)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusConflict {
			return "", 0, domain.ErrSessionConflict
		}
		return "", 0, err
	}
	return resp.SessionID, time.Duration(resp.HeartbeatSeconds) * time.Second, nil
}

type sessionRequest struct {
	SessionID string `json:"sessionId"`
}

func (c *Client) Heartbeat(ctx context.Context, sessionID string) error {
	return c.post(ctx, "/api/heartbeat", sessionRequest{SessionID: sessionID}, nil)
}

func (c *Client) Logout(ctx context.Context, sessionID string) error {
	return c.post(ctx, "/api/logout", sessionRequest{SessionID: sessionID}, nil)
}

type activeResponse struct {
	Question *Question `json:"question"`
	Now      time.Time `json:"now"`
}

// ActiveQuestion returns the active question (nil if none) and the server's
// clock, which the orchestrator prefers over the local one.
func (c *Client) ActiveQuestion(ctx context.Context) (*Question, time.Time, error) {
	var resp activeResponse
	if err := c.get(ctx, "/api/questions/active", &resp); err != nil {
		return nil, time.Time{}, err
	}
	return resp.Question, resp.Now, nil
}

func (c *Client) Settings(ctx context.Context) (Settings, error) {
	var resp Settings
	err := c.get(ctx, "/api/settings", &resp)
	return resp, err
}

type submitRequest struct {
	Name       string `json:"name"`
	QuestionID string `json:"questionId,omitempty"`
	Answer     string `json:"answer"`
}

// Submit sends an answer. A duplicate retry usually comes back as the
// previously accepted row; when the service rejects instead, the conflict
// kind decides between a closed window and an existing answer.
func (c *Client) Submit(ctx context.Context, name, questionID, answer string) (Submission, error) {
	var resp Submission
	err := c.post(ctx, "/api/submissions", submitRequest{Name: name, QuestionID: questionID, Answer: answer}, &resp)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusConflict {
			if apiErr.Code == "duplicate_submission" {
				return Submission{}, domain.ErrDuplicateSubmission
			}
			return Submission{}, domain.ErrWindowClosed
		}
		return Submission{}, err
	}
	return resp, nil
}

// OwnSubmission fetches the caller's row for a question; false when absent.
func (c *Client) OwnSubmission(ctx context.Context, questionID, name string) (Submission, bool, error) {
	path := "/api/submissions/own?questionId=" + url.QueryEscape(questionID) + "&name=" + url.QueryEscape(name)
	var resp Submission
	err := c.get(ctx, path, &resp)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return Submission{}, false, nil
		}
		return Submission{}, false, err
	}
	return resp, true, nil
}

func (c *Client) MarkViewed(ctx context.Context, submissionID string) error {
	return c.post(ctx, "/api/submissions/"+url.PathEscape(submissionID)+"/viewed", nil, nil)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.send(req, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
			Code  string `json:"code"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return &APIError{StatusCode: resp.StatusCode, Code: apiErr.Code, Message: apiErr.Error}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
