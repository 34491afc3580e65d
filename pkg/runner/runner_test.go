package runner_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aretw0/switchboard/pkg/domain"
	"github.com/aretw0/switchboard/pkg/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEngine struct {
	inputs   []string
	sessions []string
	err      error
}

func (f *fakeEngine) Turn(ctx context.Context, sessionID, input string) (domain.TurnState, error) {
	f.inputs = append(f.inputs, input)
	f.sessions = append(f.sessions, sessionID)
	if f.err != nil {
		return domain.TurnState{}, f.err
	}
	return domain.TurnState{SessionID: sessionID, NextNode: domain.NodeRespond, Response: "echo: " + input}, nil
}

func (f *fakeEngine) Session(ctx context.Context, id domain.SessionID) (domain.SessionSnapshot, error) {
	return domain.SessionSnapshot{}, domain.ErrSessionNotFound
}

func (f *fakeEngine) Inspect() []domain.Node { return nil }

func TestRunner_Conversation(t *testing.T) {
	engine := &fakeEngine{}
	var out bytes.Buffer
	r := runner.New(engine,
		runner.WithSessionID("chat-1"),
		runner.WithHandler(runner.NewTextHandler(strings.NewReader("hello\n\nagain\n/exit\nnever\n"), &out)),
	)

	require.NoError(t, r.Run(context.Background()))

	assert.Equal(t, []string{"hello", "again"}, engine.inputs, "blank lines are skipped, /exit stops the loop")
	assert.Equal(t, []string{"chat-1", "chat-1"}, engine.sessions)
	assert.Contains(t, out.String(), "echo: hello")
	assert.Contains(t, out.String(), "echo: again")
}

func TestRunner_GeneratesSessionID(t *testing.T) {
	r := runner.New(&fakeEngine{}, runner.WithHandler(runner.NewJSONHandler(strings.NewReader(""), &bytes.Buffer{})))
	assert.NotEmpty(t, r.SessionID())
}

func TestRunner_SanitizesInput(t *testing.T) {
	engine := &fakeEngine{}
	r := runner.New(engine,
		runner.WithHandler(runner.NewJSONHandler(strings.NewReader("\"red\\u001b[0m\"\n"), &bytes.Buffer{})),
	)
	require.NoError(t, r.Run(context.Background()))
	assert.Equal(t, []string{"red[0m"}, engine.inputs)
}

func TestRunner_RejectsOversizedInput(t *testing.T) {
	t.Setenv(runner.EnvMaxInputSize, "8")
	engine := &fakeEngine{}
	var out bytes.Buffer
	r := runner.New(engine,
		runner.WithHandler(runner.NewTextHandler(strings.NewReader("this is far too long\nok\n"), &out)),
	)
	require.NoError(t, r.Run(context.Background()))
	assert.Equal(t, []string{"ok"}, engine.inputs)
	assert.Contains(t, out.String(), "[System] Error: input exceeds maximum allowed size")
}

func TestRunner_EngineErrorIsReported(t *testing.T) {
	engine := &fakeEngine{err: errors.New("lock timeout")}
	var out bytes.Buffer
	r := runner.New(engine,
		runner.WithHandler(runner.NewTextHandler(strings.NewReader("hi\n"), &out)),
	)
	require.NoError(t, r.Run(context.Background()))
	assert.Contains(t, out.String(), "[System] lock timeout")
}

func TestRunner_KeepsBlankWhenConfigured(t *testing.T) {
	engine := &fakeEngine{}
	r := runner.New(engine,
		runner.WithSkipBlank(false),
		runner.WithExitCommands("bye"),
		runner.WithHandler(runner.NewTextHandler(strings.NewReader("\nbye\n"), &bytes.Buffer{})),
	)
	require.NoError(t, r.Run(context.Background()))
	assert.Equal(t, []string{""}, engine.inputs)
}
