package workflow_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/switchboard/pkg/adapters/memory"
	"github.com/aretw0/switchboard/pkg/domain"
	"github.com/aretw0/switchboard/pkg/ports"
	"github.com/aretw0/switchboard/pkg/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// spyRepository wraps the memory repository and counts calls.
type spyRepository struct {
	*memory.Repository
	finds   atomic.Int32
	saves   atomic.Int32
	findErr error
	saveErr error
}

func newSpy() *spyRepository {
	return &spyRepository{Repository: memory.NewRepository()}
}

func (s *spyRepository) FindByID(ctx context.Context, id domain.SessionID) (*domain.AgentSession, error) {
	s.finds.Add(1)
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.Repository.FindByID(ctx, id)
}

func (s *spyRepository) Save(ctx context.Context, session *domain.AgentSession) error {
	s.saves.Add(1)
	if s.saveErr != nil {
		return s.saveErr
	}
	return s.Repository.Save(ctx, session)
}

func fixed(intent string, confidence float64) ports.IntentClassifier {
	return ports.ClassifierFunc(func(ctx context.Context, text string) (domain.Classification, error) {
		return domain.Classification{Intent: intent, Confidence: confidence}, nil
	})
}

func TestExecute_SupportScenario(t *testing.T) {
	repo := newSpy()
	uc := workflow.New(repo, fixed("support", 0.92))

	session, err := uc.Execute(context.Background(), workflow.Input{
		SessionID: "s1",
		UserInput: "I need help with my billing plan",
	})
	require.NoError(t, err)

	intent, ok := session.ResolvedIntent()
	require.True(t, ok)
	assert.Equal(t, domain.IntentSupport, intent.Label())
	assert.Equal(t, 0.92, intent.Confidence())
	assert.Equal(t, "support", session.LastAction())
	require.Len(t, session.History(), 1)
	assert.Equal(t, "I need help with my billing plan", session.History()[0].Text())

	stored, err := repo.Repository.FindByID(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "support", stored.LastAction())
	assert.EqualValues(t, 1, repo.saves.Load())
}

func TestExecute_InvalidInputNeverTouchesRepository(t *testing.T) {
	var classified atomic.Int32
	classifier := ports.ClassifierFunc(func(ctx context.Context, text string) (domain.Classification, error) {
		classified.Add(1)
		return domain.Classification{Intent: "support", Confidence: 1}, nil
	})

	inputs := []workflow.Input{
		{SessionID: "", UserInput: "hello"},
		{SessionID: "   ", UserInput: "hello"},
		{SessionID: "s1", UserInput: ""},
		{SessionID: "s1", UserInput: "\t \n"},
		{},
	}

	for _, in := range inputs {
		repo := newSpy()
		_, err := workflow.New(repo, classifier).Execute(context.Background(), in)

		assert.ErrorIs(t, err, domain.ErrInvalidInput, "input %+v", in)
		assert.Zero(t, repo.finds.Load(), "FindByID called for %+v", in)
		assert.Zero(t, repo.saves.Load(), "Save called for %+v", in)
	}
	assert.Zero(t, classified.Load())
}

func TestExecute_LowConfidenceStopsBeforePersistence(t *testing.T) {
	for _, c := range []float64{0, 0.3, 0.49} {
		repo := newSpy()
		_, err := workflow.New(repo, fixed("sales", c)).Execute(context.Background(), workflow.Input{SessionID: "s1", UserInput: "how much is it"})

		assert.ErrorIs(t, err, domain.ErrLowConfidenceIntent)
		assert.Zero(t, repo.saves.Load(), "confidence %v was persisted", c)
	}
}

func TestExecute_LowConfidenceKeepsPreviousTurn(t *testing.T) {
	repo := newSpy()
	ctx := context.Background()

	_, err := workflow.New(repo, fixed("triage", 0.8)).Execute(ctx, workflow.Input{SessionID: "s1", UserInput: "first"})
	require.NoError(t, err)

	_, err = workflow.New(repo, fixed("sales", 0.3)).Execute(ctx, workflow.Input{SessionID: "s1", UserInput: "second"})
	require.ErrorIs(t, err, domain.ErrLowConfidenceIntent)

	stored, err := repo.Repository.FindByID(ctx, "s1")
	require.NoError(t, err)
	intent, _ := stored.ResolvedIntent()
	assert.Equal(t, domain.IntentTriage, intent.Label())
	assert.Len(t, stored.History(), 1, "rejected turn must not be persisted")
}

func TestExecute_FactoryFailures(t *testing.T) {
	tests := []struct {
		name       string
		intent     string
		confidence float64
		want       error
	}{
		{"unknown label", "unknown", 0.9, domain.ErrInvalidIntentLabel},
		{"confidence above range", "support", 1.5, domain.ErrConfidenceOutOfRange},
		{"negative confidence", "support", -1, domain.ErrConfidenceOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newSpy()
			_, err := workflow.New(repo, fixed(tt.intent, tt.confidence)).Execute(context.Background(), workflow.Input{SessionID: "s1", UserInput: "hi"})
			assert.ErrorIs(t, err, tt.want)
			assert.Zero(t, repo.saves.Load())
		})
	}
}

func TestExecute_ClassifierFailures(t *testing.T) {
	boom := errors.New("model unavailable")

	tests := []struct {
		name       string
		classifier ports.IntentClassifier
		opts       []workflow.Option
	}{
		{
			name: "error",
			classifier: ports.ClassifierFunc(func(ctx context.Context, text string) (domain.Classification, error) {
				return domain.Classification{}, boom
			}),
		},
		{
			name: "panic",
			classifier: ports.ClassifierFunc(func(ctx context.Context, text string) (domain.Classification, error) {
				panic("nil pointer in model client")
			}),
		},
		{
			name: "timeout",
			classifier: ports.ClassifierFunc(func(ctx context.Context, text string) (domain.Classification, error) {
				<-ctx.Done()
				return domain.Classification{}, ctx.Err()
			}),
			opts: []workflow.Option{workflow.WithClassifierTimeout(20 * time.Millisecond)},
		},
		{
			name:       "missing",
			classifier: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newSpy()
			_, err := workflow.New(repo, tt.classifier, tt.opts...).Execute(context.Background(), workflow.Input{SessionID: "s1", UserInput: "hello"})

			assert.ErrorIs(t, err, domain.ErrClassificationFailed)
			assert.Equal(t, "ClassificationFailed", domain.FailureKind(err))
			assert.Zero(t, repo.saves.Load())
		})
	}

	t.Run("cause is preserved", func(t *testing.T) {
		failing := ports.ClassifierFunc(func(ctx context.Context, text string) (domain.Classification, error) {
			return domain.Classification{}, boom
		})
		_, err := workflow.New(newSpy(), failing).Execute(context.Background(), workflow.Input{SessionID: "s1", UserInput: "hello"})
		assert.ErrorIs(t, err, boom)
	})
}

func TestExecute_PersistenceFailures(t *testing.T) {
	disk := errors.New("disk full")

	t.Run("load", func(t *testing.T) {
		repo := newSpy()
		repo.findErr = disk
		_, err := workflow.New(repo, fixed("support", 0.9)).Execute(context.Background(), workflow.Input{SessionID: "s1", UserInput: "hi"})
		assert.ErrorIs(t, err, domain.ErrPersistenceFailed)
		assert.ErrorIs(t, err, disk)
		assert.Zero(t, repo.saves.Load())
	})

	t.Run("save", func(t *testing.T) {
		repo := newSpy()
		repo.saveErr = disk
		session, err := workflow.New(repo, fixed("support", 0.9)).Execute(context.Background(), workflow.Input{SessionID: "s1", UserInput: "hi"})
		assert.Nil(t, session)
		assert.ErrorIs(t, err, domain.ErrPersistenceFailed)
		assert.ErrorIs(t, err, disk)
	})
}

func TestExecute_SequentialTurnsOverwriteIntent(t *testing.T) {
	repo := newSpy()
	ctx := context.Background()

	_, err := workflow.New(repo, fixed("support", 0.9)).Execute(ctx, workflow.Input{SessionID: "s1", UserInput: "my invoice is wrong"})
	require.NoError(t, err)

	session, err := workflow.New(repo, fixed("sales", 0.7)).Execute(ctx, workflow.Input{SessionID: "s1", UserInput: "actually, upgrade me"})
	require.NoError(t, err)

	history := session.History()
	require.Len(t, history, 2)
	assert.Equal(t, "my invoice is wrong", history[0].Text())
	assert.Equal(t, "actually, upgrade me", history[1].Text())

	intent, _ := session.ResolvedIntent()
	assert.Equal(t, domain.IntentSales, intent.Label())
	assert.Equal(t, "sales", session.LastAction())
}

func TestExecute_ClassifierReceivesRawInput(t *testing.T) {
	var got string
	classifier := ports.ClassifierFunc(func(ctx context.Context, text string) (domain.Classification, error) {
		got = text
		return domain.Classification{Intent: "TRIAGE ", Confidence: 0.6}, nil
	})

	session, err := workflow.New(newSpy(), classifier).Execute(context.Background(), workflow.Input{SessionID: "s1", UserInput: "  spaced out  "})
	require.NoError(t, err)

	assert.Equal(t, "  spaced out  ", got)
	assert.Equal(t, "spaced out", session.History()[0].Text())
	assert.Equal(t, "triage", session.LastAction())
}
