package keyword

import (
	"context"
	"math"
	"regexp"
	"strings"

	"github.com/aretw0/switchboard/pkg/domain"
)

// Classifier is an offline, deterministic IntentClassifier.
//
// Each keyword found in the text is a vote for its category. The winner is
// the category with most votes (catalogue order breaks ties). Confidence is
// the winner's share of all votes, damped when the evidence is a single hit:
//
//	confidence = share * min(1, 0.6 + 0.2*hits)
//
// so one unambiguous hit scores 0.8 and an even split between two categories
// falls below the routing threshold.
type Classifier struct {
	catalogue Catalogue
	matchers  [][]*regexp.Regexp
}

// New builds a classifier. An invalid catalogue is rejected.
func New(c Catalogue) (*Classifier, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	matchers := make([][]*regexp.Regexp, len(c.Categories))
	for i, cat := range c.Categories {
		for _, kw := range cat.Keywords {
			pattern := `\b` + regexp.QuoteMeta(strings.ToLower(strings.TrimSpace(kw))) + `\b`
			matchers[i] = append(matchers[i], regexp.MustCompile(pattern))
		}
	}
	return &Classifier{catalogue: c, matchers: matchers}, nil
}

// Classify implements ports.IntentClassifier.
func (c *Classifier) Classify(ctx context.Context, text string) (domain.Classification, error) {
	if err := ctx.Err(); err != nil {
		return domain.Classification{}, err
	}

	lower := strings.ToLower(text)
	best, bestHits, total := -1, 0, 0
	for i, ms := range c.matchers {
		hits := 0
		for _, m := range ms {
			hits += len(m.FindAllStringIndex(lower, -1))
		}
		total += hits
		if hits > bestHits {
			best, bestHits = i, hits
		}
	}

	if best < 0 {
		return domain.Classification{
			Intent:     c.catalogue.Fallback,
			Confidence: c.catalogue.FallbackConfidence,
		}, nil
	}

	share := float64(bestHits) / float64(total)
	confidence := share * math.Min(1, 0.6+0.2*float64(bestHits))
	return domain.Classification{
		Intent:     c.catalogue.Categories[best].Name,
		Confidence: math.Round(confidence*100) / 100,
	}, nil
}
