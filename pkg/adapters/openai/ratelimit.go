package openai

import (
	"context"
	"fmt"

	"github.com/aretw0/switchboard/pkg/domain"
	"github.com/aretw0/switchboard/pkg/ports"
	"golang.org/x/time/rate"
)

// RateLimited wraps a classifier so calls never exceed the given rate.
// Callers block until a token is available or ctx is done.
type RateLimited struct {
	next    ports.IntentClassifier
	limiter *rate.Limiter
}

// NewRateLimited allows requestsPerSecond sustained calls with the given burst.
func NewRateLimited(next ports.IntentClassifier, requestsPerSecond float64, burst int) *RateLimited {
	if burst < 1 {
		burst = 1
	}
	return &RateLimited{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

// Classify implements ports.IntentClassifier.
func (r *RateLimited) Classify(ctx context.Context, text string) (domain.Classification, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return domain.Classification{}, fmt.Errorf("classifier rate limit: %w", err)
	}
	return r.next.Classify(ctx, text)
}
