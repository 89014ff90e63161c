package service

import (
	"errors"
	"fmt"
)

// Lookup failures.
var (
	// ErrProjectNotFound indicates the referenced project does not exist.
	ErrProjectNotFound = errors.New("project not found")
	// ErrSubmissionNotFound indicates a submission could not be found.
	ErrSubmissionNotFound = errors.New("submission not found")
	// ErrChallengeNotFound indicates the referenced challenge does not exist.
	ErrChallengeNotFound = errors.New("challenge not found")
	// ErrPaymentNotFound indicates no payment exists for the reference.
	ErrPaymentNotFound = errors.New("payment not found")
	// ErrUserNotFound indicates the acting user is unknown.
	ErrUserNotFound = errors.New("user not found")
)

// Duplicate conditions surfaced from storage uniqueness constraints.
var (
	// ErrAlreadySubmitted indicates the user already has a submission for the
	// project. Resubmission requires an admin reopen.
	ErrAlreadySubmitted = errors.New("a submission already exists for this project")
	// ErrAlreadyRegistered indicates a duplicate challenge registration.
	ErrAlreadyRegistered = errors.New("already registered for this challenge")
	// ErrLateFeeAlreadyPaid indicates a successful payment is already on file.
	ErrLateFeeAlreadyPaid = errors.New("late fee already paid for this project")
)

// ErrPaymentRequired blocks a late submission until a verified late-fee
// payment exists.
var ErrPaymentRequired = errors.New("late fee payment required before submitting overdue project")

// NotEligibleError rejects an operation with the specific first-failing
// reason so callers can present actionable errors.
type NotEligibleError struct {
	Reason string
}

func (e NotEligibleError) Error() string {
	return e.Reason
}

// NotEligible builds a NotEligibleError with a formatted reason.
func NotEligible(format string, args ...interface{}) error {
	return NotEligibleError{Reason: fmt.Sprintf(format, args...)}
}

// ValidationError reports malformed or missing request fields beyond what
// struct tags can express.
type ValidationError struct {
	Reason string
}

func (e ValidationError) Error() string {
	return e.Reason
}

// SimilarityError rejects a submission whose content matched a peer's above
// the screening threshold.
type SimilarityError struct {
	Similarity float64
	Threshold  float64
}

func (e SimilarityError) Error() string {
	return fmt.Sprintf("submission matches an existing submission at %.1f%% similarity (threshold %.0f%%)", e.Similarity, e.Threshold)
}
