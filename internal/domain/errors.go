package domain

import "errors"

var (
	// ErrValidation is returned for malformed or missing input. Wrap it with
	// fmt.Errorf("%w: detail") so callers can match with errors.Is.
	ErrValidation = errors.New("validation failed")
	// ErrTimeOrder is returned when a window edit has endTime <= startTime.
	ErrTimeOrder = errors.New("end time must be after start time")
	// ErrAlreadyEnded is returned when editing a question whose stored window
	// has already closed.
	ErrAlreadyEnded = errors.New("question already ended")
	// ErrWindowClosed is returned for a submission attempted after the window.
	ErrWindowClosed = errors.New("submission window closed")
	// ErrDuplicateSubmission is returned when an identity already answered a
	// question, whether caught by the pre-check or by the store's constraint.
	ErrDuplicateSubmission = errors.New("already submitted for this question")
	// ErrSessionConflict is returned at login when the identity is live on
	// another device.
	ErrSessionConflict = errors.New("name is active on another device")
	// ErrQuestionNotFound indicates an unknown question ID.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrSubmissionNotFound indicates the participant has no row for a question.
	ErrSubmissionNotFound = errors.New("submission not found")
)
