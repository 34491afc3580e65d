package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/switchboard/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSessionRepositoryContract runs a suite of tests to verify that a SessionRepository
// implementation adheres to the defined interface contract.
// Repositories that also implement SessionAdmin get the Delete and List checks.
func RunSessionRepositoryContract(t *testing.T, repo SessionRepository) {
	ctx := context.Background()
	sessionID := domain.SessionID("contract-" + time.Now().Format("20060102150405.000000000"))

	build := func(t *testing.T, id domain.SessionID, texts ...string) *domain.AgentSession {
		t.Helper()
		s := domain.NewSession(id)
		for _, text := range texts {
			require.NoError(t, s.RegisterMessage(domain.NewMessage(text)))
		}
		return s
	}

	t.Run("Save and FindByID round-trip", func(t *testing.T) {
		s := build(t, sessionID, "I need help with my billing plan")
		intent, err := domain.NewIntent("support", 0.92)
		require.NoError(t, err)
		require.NoError(t, s.ResolveIntent(intent))
		require.NoError(t, s.MarkAction("support"))

		require.NoError(t, repo.Save(ctx, s), "Save should not return error")

		loaded, err := repo.FindByID(ctx, sessionID)
		require.NoError(t, err, "FindByID should not return error")
		assertSameState(t, s, loaded)
	})

	t.Run("FindByID non-existent", func(t *testing.T) {
		_, err := repo.FindByID(ctx, "missing-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Save is an idempotent full replacement", func(t *testing.T) {
		id := sessionID + "-idem"
		s := build(t, id, "one")
		require.NoError(t, repo.Save(ctx, s))
		require.NoError(t, repo.Save(ctx, s))

		require.NoError(t, s.RegisterMessage(domain.NewMessage("two")))
		intent, _ := domain.NewIntent("triage", 0.6)
		require.NoError(t, s.ResolveIntent(intent))
		require.NoError(t, repo.Save(ctx, s))
		require.NoError(t, repo.Save(ctx, s))

		loaded, err := repo.FindByID(ctx, id)
		require.NoError(t, err)
		assertSameState(t, s, loaded)
	})

	t.Run("Loaded sessions are isolated from the store", func(t *testing.T) {
		id := sessionID + "-iso"
		require.NoError(t, repo.Save(ctx, build(t, id, "hello")))

		loaded, err := repo.FindByID(ctx, id)
		require.NoError(t, err)
		require.NoError(t, loaded.RegisterMessage(domain.NewMessage("not saved")))

		again, err := repo.FindByID(ctx, id)
		require.NoError(t, err)
		assert.Len(t, again.History(), 1)
	})

	admin, ok := repo.(SessionAdmin)
	if !ok {
		return
	}

	t.Run("Delete", func(t *testing.T) {
		id := sessionID + "-del"
		require.NoError(t, repo.Save(ctx, build(t, id, "bye")))

		require.NoError(t, admin.Delete(ctx, id), "Delete should not return error")

		_, err := repo.FindByID(ctx, id)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "FindByID after Delete should return ErrSessionNotFound")

		assert.NoError(t, admin.Delete(ctx, id), "Deleting an absent session is not an error")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		require.NoError(t, repo.Save(ctx, build(t, id1, "a")))
		require.NoError(t, repo.Save(ctx, build(t, id2, "b")))

		defer func() {
			_ = admin.Delete(ctx, id1)
			_ = admin.Delete(ctx, id2)
		}()

		sessions, err := admin.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}

func assertSameState(t *testing.T, want, got *domain.AgentSession) {
	t.Helper()
	require.NotNil(t, got)
	assert.Equal(t, want.ID(), got.ID())

	wantHistory, gotHistory := want.History(), got.History()
	require.Len(t, gotHistory, len(wantHistory))
	for i := range wantHistory {
		assert.Equal(t, wantHistory[i].ID(), gotHistory[i].ID())
		assert.Equal(t, wantHistory[i].Text(), gotHistory[i].Text())
		assert.True(t, wantHistory[i].CreatedAt().Equal(gotHistory[i].CreatedAt()), "created_at of message %d", i)
	}

	wantIntent, wantOK := want.ResolvedIntent()
	gotIntent, gotOK := got.ResolvedIntent()
	assert.Equal(t, wantOK, gotOK)
	assert.Equal(t, wantIntent, gotIntent)
	assert.Equal(t, want.LastAction(), got.LastAction())
}
