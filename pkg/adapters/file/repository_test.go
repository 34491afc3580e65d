package file_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/aretw0/switchboard/pkg/adapters/file"
	"github.com/aretw0/switchboard/pkg/domain"
	"github.com/aretw0/switchboard/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileRepository_Contract(t *testing.T) {
	ports.RunSessionRepositoryContract(t, file.New(t.TempDir()))
}

func TestFileRepository_UnsafeIDs(t *testing.T) {
	repo := file.New(t.TempDir())
	ctx := context.Background()

	id := domain.SessionID("../tenant/a b?")
	s := domain.NewSession(id)
	require.NoError(t, s.RegisterMessage(domain.NewMessage("hi")))
	require.NoError(t, repo.Save(ctx, s))

	ids, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.SessionID{id}, ids)

	loaded, err := repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, loaded.ID())
}

func TestFileRepository_NoTempLeftovers(t *testing.T) {
	dir := t.TempDir()
	repo := file.New(dir)
	ctx := context.Background()

	s := domain.NewSession("s1")
	require.NoError(t, repo.Save(ctx, s))
	require.NoError(t, repo.Save(ctx, s))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileRepository_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	repo := file.New(dir)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, domain.NewSession("s1")))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, entries[0].Name()), []byte("{not json"), 0o644))

	_, err = repo.FindByID(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrInvalidSnapshot)
}

func TestFileRepository_ListMissingDir(t *testing.T) {
	repo := file.New(filepath.Join(t.TempDir(), "nope"))
	ids, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestFileRepository_OverwriteNeverHidesSession(t *testing.T) {
	repo := file.New(t.TempDir())
	ctx := context.Background()

	s := domain.NewSession("s1")
	require.NoError(t, s.RegisterMessage(domain.NewMessage("hello")))
	require.NoError(t, repo.Save(ctx, s))

	var missing, failed atomic.Int64
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			if _, err := repo.FindByID(ctx, "s1"); err != nil {
				if errors.Is(err, domain.ErrSessionNotFound) {
					missing.Add(1)
				} else {
					failed.Add(1)
				}
			}
		}
	}()

	for i := 0; i < 500; i++ {
		require.NoError(t, repo.Save(ctx, s))
	}
	close(stop)
	wg.Wait()

	assert.Zero(t, missing.Load(), "reads reported ErrSessionNotFound during overwrite")
	assert.Zero(t, failed.Load(), "reads failed during overwrite")
}
