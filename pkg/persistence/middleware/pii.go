package middleware

import (
	"context"
	"regexp"

	"github.com/aretw0/switchboard/pkg/domain"
	"github.com/aretw0/switchboard/pkg/ports"
)

// Mask replaces every redacted span.
const Mask = "***"

// DefaultPIIPatterns match e-mail addresses, card-like digit runs and phone numbers.
var DefaultPIIPatterns = []string{
	`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`,
	`\b(?:\d[ -]?){13,16}\b`,
	`\+?\d{1,3}[ .-]?\(?\d{2,3}\)?[ .-]?\d{3,5}[ .-]?\d{4}\b`,
}

type piiMiddleware struct {
	passthrough
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks message text matching any pattern
// before it reaches storage. Invalid patterns panic, as with regexp.MustCompile.
func NewPIIMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.ManagedRepository) ports.ManagedRepository {
		return &piiMiddleware{passthrough: passthrough{next: next}, patterns: patterns}
	}
}

func (m *piiMiddleware) Save(ctx context.Context, session *domain.AgentSession) error {
	masked, err := rewriteTexts(session, func(text string) (string, error) {
		return m.mask(text), nil
	})
	if err != nil {
		return err
	}
	return m.next.Save(ctx, masked)
}

func (m *piiMiddleware) FindByID(ctx context.Context, id domain.SessionID) (*domain.AgentSession, error) {
	return m.next.FindByID(ctx, id)
}

func (m *piiMiddleware) mask(text string) string {
	for _, p := range m.patterns {
		text = p.ReplaceAllString(text, Mask)
	}
	return text
}
