package domain

import "errors"

// ErrSessionNotFound is returned by repositories when a session ID is unknown.
// It signals absence, not a failure of the turn.
var ErrSessionNotFound = errors.New("session not found")

// Failure taxonomy. Every failure surfaced by the core wraps exactly one of these.
var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrEmptyMessage         = errors.New("message cannot be empty")
	ErrInvalidIntentLabel   = errors.New("unknown intent")
	ErrConfidenceOutOfRange = errors.New("intent confidence must be in range 0..1")
	ErrLowConfidenceIntent  = errors.New("intent confidence too low to route")
	ErrBlankAction          = errors.New("action must be a non-empty string")
	ErrClassificationFailed = errors.New("intent classification failed")
	ErrPersistenceFailed    = errors.New("session persistence failed")
)

// ErrInvalidSnapshot is returned when a persisted session violates the aggregate invariants.
var ErrInvalidSnapshot = errors.New("invalid session snapshot")

var failureKinds = []struct {
	err  error
	kind string
}{
	{ErrInvalidInput, "InvalidInput"},
	{ErrEmptyMessage, "EmptyMessage"},
	{ErrInvalidIntentLabel, "InvalidIntentLabel"},
	{ErrConfidenceOutOfRange, "ConfidenceOutOfRange"},
	{ErrLowConfidenceIntent, "LowConfidenceIntent"},
	{ErrBlankAction, "BlankAction"},
	{ErrClassificationFailed, "ClassificationFailed"},
	{ErrPersistenceFailed, "PersistenceFailed"},
}

// FailureKind returns the taxonomy label of err ("LowConfidenceIntent", ...).
// It returns "" for nil and "Unknown" for errors outside the taxonomy.
func FailureKind(err error) string {
	if err == nil {
		return ""
	}
	for _, fk := range failureKinds {
		if errors.Is(err, fk.err) {
			return fk.kind
		}
	}
	return "Unknown"
}
