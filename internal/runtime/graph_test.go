package runtime_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/switchboard/internal/runtime"
	"github.com/aretw0/switchboard/pkg/adapters/memory"
	"github.com/aretw0/switchboard/pkg/domain"
	"github.com/aretw0/switchboard/pkg/ports"
	"github.com/aretw0/switchboard/pkg/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func classifierReturning(intent string, confidence float64) ports.IntentClassifier {
	return ports.ClassifierFunc(func(ctx context.Context, text string) (domain.Classification, error) {
		return domain.Classification{Intent: intent, Confidence: confidence}, nil
	})
}

func newGraph(c ports.IntentClassifier, opts ...runtime.Option) *runtime.Graph {
	return runtime.NewGraph(workflow.New(memory.NewRepository(), c), opts...)
}

func TestGraph_Branches(t *testing.T) {
	tests := []struct {
		name       string
		intent     string
		confidence float64
		wantBranch domain.NodeID
		wantText   string
	}{
		{"support responds", "support", 0.92, domain.NodeRespond, "Handled 'support' without external retrieval or tools."},
		{"sales calls tools", "sales", 0.8, domain.NodeToolCall, "Invoke external tool(s) for intent 'sales'."},
		{"triage retrieves", "triage", 0.5, domain.NodeRetrieve, "Retrieve documents before composing response for intent 'triage'."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGraph(classifierReturning(tt.intent, tt.confidence))

			state, err := g.Run(context.Background(), domain.NewTurnState("s1", "I need help with my billing plan"))
			require.NoError(t, err)

			assert.Equal(t, tt.wantBranch, state.NextNode)
			assert.Equal(t, tt.intent, state.Intent)
			require.NotNil(t, state.Confidence)
			assert.Equal(t, tt.confidence, *state.Confidence)
			assert.Equal(t, tt.wantText, state.Response)
			assert.Empty(t, state.Error)
			assert.Equal(t, []domain.NodeID{domain.NodeStart, domain.NodeRunDomainWorkflow, tt.wantBranch, domain.NodeEnd}, state.Path)
		})
	}
}

func TestGraph_LowConfidenceFails(t *testing.T) {
	g := newGraph(classifierReturning("sales", 0.3))

	state, err := g.Run(context.Background(), domain.NewTurnState("s1", "maybe buy"))
	require.NoError(t, err, "a turn failure must not abort the graph")

	assert.Equal(t, domain.NodeFail, state.NextNode)
	assert.True(t, state.Failed())
	assert.Equal(t, "LowConfidenceIntent", state.Failure)
	assert.Contains(t, state.Error, "intent confidence too low to route")
	assert.Equal(t, state.Error, state.Response, "fail echoes the captured error")
	assert.Empty(t, state.Intent)
	assert.True(t, state.Visited(domain.NodeFail))
	assert.Equal(t, domain.NodeEnd, state.Path[len(state.Path)-1])
}

func TestGraph_FailureKinds(t *testing.T) {
	tests := []struct {
		name  string
		graph *runtime.Graph
		state domain.TurnState
		kind  string
	}{
		{"unknown label", newGraph(classifierReturning("unknown", 0.9)), domain.NewTurnState("s1", "hi"), "InvalidIntentLabel"},
		{"blank input", newGraph(classifierReturning("support", 0.9)), domain.NewTurnState("s1", "   "), "InvalidInput"},
		{"blank session", newGraph(classifierReturning("support", 0.9)), domain.NewTurnState("", "hi"), "InvalidInput"},
		{"classifier error", newGraph(ports.ClassifierFunc(func(context.Context, string) (domain.Classification, error) {
			return domain.Classification{}, errors.New("503 from model")
		})), domain.NewTurnState("s1", "hi"), "ClassificationFailed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, err := tt.graph.Run(context.Background(), tt.state)
			require.NoError(t, err)
			assert.Equal(t, domain.NodeFail, state.NextNode)
			assert.Equal(t, tt.kind, state.Failure)
			assert.NotEmpty(t, state.Response)
		})
	}
}

type stubWorkflow struct {
	session *domain.AgentSession
	err     error
}

func (s stubWorkflow) Execute(context.Context, workflow.Input) (*domain.AgentSession, error) {
	return s.session, s.err
}

func TestGraph_FallbackRouting(t *testing.T) {
	t.Run("label missing from policy routes to respond", func(t *testing.T) {
		g := newGraph(classifierReturning("triage", 0.9),
			runtime.WithRoutingPolicy(domain.RoutingTable{domain.IntentSupport: domain.NodeRetrieve}))

		state, err := g.Run(context.Background(), domain.NewTurnState("s1", "hi"))
		require.NoError(t, err)
		assert.Equal(t, domain.NodeRespond, state.NextNode)
		assert.Equal(t, "triage", state.Intent)
	})

	t.Run("session without intent routes to respond", func(t *testing.T) {
		g := runtime.NewGraph(stubWorkflow{session: domain.NewSession("s1")})
		state, err := g.Run(context.Background(), domain.NewTurnState("s1", "hi"))
		require.NoError(t, err)
		assert.Equal(t, domain.NodeRespond, state.NextNode)
		assert.Equal(t, "Handled 'unknown' without external retrieval or tools.", state.Response)
	})

	t.Run("failure without message", func(t *testing.T) {
		g := runtime.NewGraph(stubWorkflow{err: errors.New("")})
		state, err := g.Run(context.Background(), domain.NewTurnState("s1", "hi"))
		require.NoError(t, err)
		assert.Equal(t, domain.NodeFail, state.NextNode)
		assert.Equal(t, "Workflow execution failed", state.Response)
		assert.Equal(t, "Unknown", state.Failure)
	})
}

func TestGraph_CustomRoutingPolicy(t *testing.T) {
	policy := domain.RoutingTable{domain.IntentSupport: domain.NodeRetrieve}
	g := newGraph(classifierReturning("support", 0.9), runtime.WithRoutingPolicy(policy))

	state, err := g.Run(context.Background(), domain.NewTurnState("s1", "docs please"))
	require.NoError(t, err)
	assert.Equal(t, domain.NodeRetrieve, state.NextNode)
}

func TestGraph_LifecycleHooks(t *testing.T) {
	var entered, left []domain.NodeID
	var turns []*domain.TurnEvent

	hooks := domain.LifecycleHooks{
		OnNodeEnter: func(ctx context.Context, e *domain.NodeEvent) {
			entered = append(entered, e.NodeID)
		},
		OnNodeLeave: func(ctx context.Context, e *domain.NodeEvent) {
			left = append(left, e.NodeID)
		},
		OnTurnComplete: func(ctx context.Context, e *domain.TurnEvent) {
			turns = append(turns, e)
		},
	}

	g := newGraph(classifierReturning("sales", 0.3), runtime.WithLifecycleHooks(hooks))
	_, err := g.Run(context.Background(), domain.NewTurnState("s1", "hello"))
	require.NoError(t, err)

	want := []domain.NodeID{domain.NodeStart, domain.NodeRunDomainWorkflow, domain.NodeFail, domain.NodeEnd}
	assert.Equal(t, want, entered)
	assert.Equal(t, want, left)

	require.Len(t, turns, 1)
	assert.Equal(t, domain.NodeFail, turns[0].Branch)
	assert.Equal(t, "LowConfidenceIntent", turns[0].Failure)
	assert.Equal(t, "s1", turns[0].SessionID)
}

func TestGraph_Nodes(t *testing.T) {
	g := newGraph(classifierReturning("support", 1))
	nodes := g.Nodes()

	ids := make([]domain.NodeID, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	assert.Equal(t, []domain.NodeID{
		domain.NodeStart, domain.NodeRunDomainWorkflow,
		domain.NodeRespond, domain.NodeRetrieve, domain.NodeToolCall, domain.NodeFail,
		domain.NodeEnd,
	}, ids)

	assert.Len(t, nodes[1].Edges, 4)
	for _, e := range nodes[1].Edges {
		assert.True(t, e.IsConditional())
		assert.Equal(t, e.Branch, e.To)
	}
	assert.True(t, nodes[len(nodes)-1].IsTerminal())

	// Callers cannot alter the graph through the returned slice.
	nodes[0].Edges[0].To = domain.NodeFail
	assert.Equal(t, domain.NodeRunDomainWorkflow, g.Nodes()[0].Edges[0].To)
}

func TestGraph_StatelessAcrossTurns(t *testing.T) {
	repo := memory.NewRepository()
	g := runtime.NewGraph(workflow.New(repo, classifierReturning("support", 0.9)))
	ctx := context.Background()

	first, err := g.Run(ctx, domain.NewTurnState("s1", "one"))
	require.NoError(t, err)
	second, err := g.Run(ctx, domain.NewTurnState("s1", "two"))
	require.NoError(t, err)

	assert.Equal(t, first.Path, second.Path)

	session, err := repo.FindByID(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, session.History(), 2)
}
