package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation groups user-correctable input problems.
	ErrValidation = errors.New("validation failed")
	// ErrSelectionRequired is returned when advancing past an unanswered question.
	ErrSelectionRequired = fmt.Errorf("%w: selection required", ErrValidation)
	// ErrInvalidEmail is returned when the email fails the syntactic check.
	ErrInvalidEmail = fmt.Errorf("%w: invalid email", ErrValidation)
	// ErrInvalidCategory is returned for a category outside A, B, C.
	ErrInvalidCategory = fmt.Errorf("%w: invalid category", ErrValidation)
	// ErrQuestionNotFound indicates a selected question id is not in the bank.
	ErrQuestionNotFound = fmt.Errorf("%w: question not found", ErrValidation)

	// ErrNotReady is returned when the identity session or store has not finished initializing.
	ErrNotReady = errors.New("backing services not ready")
	// ErrPersistence wraps failures of the external document store.
	ErrPersistence = errors.New("persist submission")

	// ErrSessionNotFound is returned for unknown session ids.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrBankNotFound indicates the question bank could not be loaded.
	ErrBankNotFound = errors.New("question bank not found")
	// ErrInvalidBank indicates loaded bank content is malformed.
	ErrInvalidBank = errors.New("invalid question bank")
	// ErrSubmissionRequired is returned when leaving email capture without submitting.
	ErrSubmissionRequired = errors.New("email capture advances only through submission")
	// ErrQuizCompleted is returned for any transition out of the results stage.
	ErrQuizCompleted = errors.New("quiz already completed")
)

// ErrorCode returns a stable identifier for err suitable for clients.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrSelectionRequired):
		return "selection_required"
	case errors.Is(err, ErrInvalidEmail):
		return "invalid_email"
	case errors.Is(err, ErrInvalidCategory):
		return "invalid_category"
	case errors.Is(err, ErrQuestionNotFound):
		return "question_not_found"
	case errors.Is(err, ErrNotReady):
		return "not_ready"
	case errors.Is(err, ErrPersistence):
		return "persistence_failed"
	case errors.Is(err, ErrSessionNotFound):
		return "session_not_found"
	case errors.Is(err, ErrSubmissionRequired):
		return "submission_required"
	case errors.Is(err, ErrQuizCompleted):
		return "quiz_completed"
	case errors.Is(err, ErrBankNotFound), errors.Is(err, ErrInvalidBank):
		return "bank_unavailable"
	}
	return "internal"
}
