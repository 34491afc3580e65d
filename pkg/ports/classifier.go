package ports

import (
	"context"

	"github.com/aretw0/switchboard/pkg/domain"
)

// IntentClassifier turns raw text into an intent label and a confidence.
// It is an external, potentially slow call that may fail for reasons outside the core.
type IntentClassifier interface {
	Classify(ctx context.Context, text string) (domain.Classification, error)
}

// ClassifierFunc adapts a function to IntentClassifier.
type ClassifierFunc func(ctx context.Context, text string) (domain.Classification, error)

// Classify calls f.
func (f ClassifierFunc) Classify(ctx context.Context, text string) (domain.Classification, error) {
	return f(ctx, text)
}
