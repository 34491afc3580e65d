package keyword_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/switchboard/pkg/adapters/keyword"
	"github.com/aretw0/switchboard/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifier_DefaultCatalogue(t *testing.T) {
	c, err := keyword.New(keyword.DefaultCatalogue())
	require.NoError(t, err)
	ctx := context.Background()

	tests := []struct {
		name       string
		text       string
		intent     string
		confidence float64
	}{
		{"two support hits", "I need help with my billing plan", "support", 1.0},
		{"single sales hit", "What is the price?", "sales", 0.8},
		{"case insensitive", "HELP", "support", 0.8},
		{"whole words only", "helpful pricey", "triage", 0.5},
		{"even split", "help me buy", "support", 0.4},
		{"no keywords", "good morning", "triage", 0.5},
		{"multi-word keyword", "the app is not working", "support", 0.8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Classify(ctx, tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.intent, got.Intent)
			assert.InDelta(t, tt.confidence, got.Confidence, 1e-9)
		})
	}
}

func TestClassifier_Deterministic(t *testing.T) {
	c, err := keyword.New(keyword.DefaultCatalogue())
	require.NoError(t, err)

	first, err := c.Classify(context.Background(), "upgrade my plan, there is an error")
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := c.Classify(context.Background(), "upgrade my plan, there is an error")
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestClassifier_CanceledContext(t *testing.T) {
	c, err := keyword.New(keyword.DefaultCatalogue())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = c.Classify(ctx, "help")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "intents.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
fallback: support
fallback_confidence: 0.6
categories:
  - name: sales
    keywords: [invoice]
`), 0o644))

	cat, err := keyword.Load(path)
	require.NoError(t, err)
	c, err := keyword.New(cat)
	require.NoError(t, err)

	got, err := c.Classify(context.Background(), "send the invoice")
	require.NoError(t, err)
	assert.Equal(t, domain.Classification{Intent: "sales", Confidence: 0.8}, got)

	got, err = c.Classify(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, domain.Classification{Intent: "support", Confidence: 0.6}, got)
}

func TestParse_Invalid(t *testing.T) {
	tests := map[string]string{
		"no categories": `categories: []`,
		"duplicate":     "categories:\n  - name: a\n  - name: A\n",
		"blank keyword": "categories:\n  - name: a\n    keywords: ['  ']\n",
		"bad fallback":  "fallback: a\nfallback_confidence: 2\ncategories:\n  - name: a\n",
		"not yaml":      "categories: [",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := keyword.Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestParse_RequiresFallback(t *testing.T) {
	for name, doc := range map[string]string{
		"missing": "categories:\n  - name: support\n    keywords: [help]\n",
		"blank":   "fallback: '  '\ncategories:\n  - name: support\n    keywords: [help]\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := keyword.Parse([]byte(doc))
			assert.ErrorContains(t, err, "fallback intent cannot be empty")
		})
	}
}
