package tui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, "v1.2.3")

	out := buf.String()
	assert.Contains(t, out, "intent router v1.2.3")
	assert.Equal(t, len(bannerLines)+3, strings.Count(out, "\n"))
}

func TestNewRenderer(t *testing.T) {
	render := NewRenderer(80)
	out, err := render("Handled **support**.")
	require.NoError(t, err)
	assert.Contains(t, out, "support")
}
