package domain

import (
	"fmt"
	"strings"
)

// IntentLabel is one of the fixed intent labels (see Labels).
type IntentLabel string

func (l IntentLabel) String() string { return string(l) }

// ConversationIntent is a validated classification result.
// It is comparable: two intents with equal label and confidence are interchangeable.
type ConversationIntent struct {
	label      IntentLabel
	confidence float64
}

// NewIntent normalizes rawLabel (trim + lowercase) and validates both label and confidence.
func NewIntent(rawLabel string, confidence float64) (ConversationIntent, error) {
	normalized := IntentLabel(strings.ToLower(strings.TrimSpace(rawLabel)))
	if !isAllowed(normalized) {
		return ConversationIntent{}, fmt.Errorf("%w: %q", ErrInvalidIntentLabel, rawLabel)
	}
	// Written as a negated range check so NaN is rejected too.
	if !(confidence >= 0 && confidence <= 1) {
		return ConversationIntent{}, fmt.Errorf("%w: got %v", ErrConfidenceOutOfRange, confidence)
	}
	return ConversationIntent{label: normalized, confidence: confidence}, nil
}

// Label returns the normalized intent label.
func (i ConversationIntent) Label() IntentLabel { return i.label }

// Confidence returns the classifier confidence in [0,1].
func (i ConversationIntent) Confidence() float64 { return i.confidence }

// IsZero reports whether i is the zero value (no intent).
func (i ConversationIntent) IsZero() bool { return i.label == "" }

func (i ConversationIntent) String() string {
	return fmt.Sprintf("%s(%.2f)", i.label, i.confidence)
}

func isAllowed(label IntentLabel) bool {
	for _, l := range Labels() {
		if l == label {
			return true
		}
	}
	return false
}
