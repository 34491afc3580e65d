package cli

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/switchboard/pkg/config"
	"github.com/aretw0/switchboard/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_Defaults(t *testing.T) {
	stack, err := Build(config.Default(), nil)
	require.NoError(t, err)
	defer stack.Close()

	state, err := stack.Engine.Turn(context.Background(), "s1", "I want to buy the pro plan, what is the price?")
	require.NoError(t, err)
	assert.Equal(t, domain.NodeToolCall, state.NextNode)
	assert.NotNil(t, stack.Metrics)
}

func TestBuild_FileStoreRedactsThenEncrypts(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Store.Backend = config.BackendFile
	cfg.Store.Path = dir
	cfg.Store.EncryptionKey = base64.StdEncoding.EncodeToString([]byte(strings.Repeat("k", 32)))
	cfg.Redact.Enabled = true

	stack, err := Build(cfg, nil)
	require.NoError(t, err)
	defer stack.Close()

	ctx := context.Background()
	_, err = stack.Engine.Turn(ctx, "s1", "my login is broken, mail me at jane@example.com")
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	raw, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "jane@example.com")
	assert.NotContains(t, string(raw), "login is broken")

	snap, err := stack.Engine.Session(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, snap.History, 1)
	assert.Equal(t, "my login is broken, mail me at ***", snap.History[0].Text)
}

func TestBuild_RedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := config.Default()
	cfg.Store.Backend = config.BackendRedis
	cfg.Store.Addr = mr.Addr()

	stack, err := Build(cfg, nil)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = stack.Engine.Turn(ctx, "s1", "help, the app crashes")
	require.NoError(t, err)

	ids, err := stack.Engine.Sessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.SessionID{"s1"}, ids)
	assert.True(t, mr.Exists(cfg.Store.Prefix+"s1"))

	require.NoError(t, stack.Close())
}

func TestBuild_OpenAIRequiresKey(t *testing.T) {
	cfg := config.Default()
	cfg.Classifier.Kind = config.ClassifierOpenAI
	cfg.Classifier.APIKeyEnv = "SWITCHBOARD_TEST_MISSING_KEY"
	t.Setenv(cfg.Classifier.APIKeyEnv, "")

	_, err := Build(cfg, nil)
	assert.ErrorContains(t, err, "SWITCHBOARD_TEST_MISSING_KEY is not set")
}

func TestBuild_OpenAIWithKey(t *testing.T) {
	cfg := config.Default()
	cfg.Classifier.Kind = config.ClassifierOpenAI
	cfg.Classifier.APIKeyEnv = "SWITCHBOARD_TEST_KEY"
	cfg.Classifier.RateLimit = 1
	t.Setenv(cfg.Classifier.APIKeyEnv, "sk-test")

	stack, err := Build(cfg, nil)
	require.NoError(t, err)
	assert.NotNil(t, stack.Engine)
}

func TestBuild_BadCatalogue(t *testing.T) {
	cfg := config.Default()
	cfg.Classifier.Catalogue = filepath.Join(t.TempDir(), "missing.yaml")

	_, err := Build(cfg, nil)
	assert.ErrorContains(t, err, "failed to read catalogue")
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(config.LogConfig{Level: "debug", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, logger)

	_, err = NewLogger(config.LogConfig{Level: "loud"})
	assert.Error(t, err)
}
