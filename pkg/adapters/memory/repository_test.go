package memory_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/aretw0/switchboard/pkg/adapters/memory"
	"github.com/aretw0/switchboard/pkg/domain"
	"github.com/aretw0/switchboard/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository_Contract(t *testing.T) {
	ports.RunSessionRepositoryContract(t, memory.NewRepository())
}

func TestMemoryRepository_ConcurrentSessions(t *testing.T) {
	repo := memory.NewRepository()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s := domain.NewSession(domain.SessionID(fmt.Sprintf("s-%02d", i)))
			_ = s.RegisterMessage(domain.NewMessage("hello"))
			assert.NoError(t, repo.Save(ctx, s))
		}(i)
	}
	wg.Wait()

	ids, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, ids, 20)
	assert.Equal(t, domain.SessionID("s-00"), ids[0])
}
