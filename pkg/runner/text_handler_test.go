package runner

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/aretw0/switchboard/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextHandler_Input(t *testing.T) {
	var out bytes.Buffer
	h := NewTextHandler(strings.NewReader("  hello  \nlast"), &out)
	ctx := context.Background()

	got, err := h.Input(ctx)
	require.NoError(t, err)
	assert.Equal(t, "hello", got)

	got, err = h.Input(ctx)
	require.NoError(t, err)
	assert.Equal(t, "last", got, "final line without newline is still delivered")

	_, err = h.Input(ctx)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "> > > ", out.String())
}

func TestTextHandler_InputCanceled(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	h := NewTextHandler(pr, io.Discard)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.Input(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTextHandler_Output(t *testing.T) {
	var out bytes.Buffer
	h := NewTextHandler(strings.NewReader(""), &out,
		WithVerbose(true),
		WithTextHandlerRenderer(func(s string) (string, error) { return "**" + s + "**", nil }),
	)
	conf := 0.9
	err := h.Output(context.Background(), domain.TurnState{
		Response:   "hi",
		NextNode:   domain.NodeRespond,
		Intent:     "support",
		Confidence: &conf,
	})
	require.NoError(t, err)
	assert.Equal(t, "**hi**\n  [respond] intent=support confidence=0.90\n", out.String())
}

func TestTextHandler_SystemOutput(t *testing.T) {
	var out bytes.Buffer
	h := NewTextHandler(strings.NewReader(""), &out)
	require.NoError(t, h.SystemOutput(context.Background(), "lock timeout"))
	assert.Equal(t, "[System] lock timeout\n", out.String())
}
