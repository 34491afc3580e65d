package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/switchboard/internal/logging"
	"github.com/aretw0/switchboard/pkg/domain"
	"github.com/aretw0/switchboard/pkg/ports"
	"github.com/aretw0/switchboard/pkg/workflow"
)

// Workflow is the domain use case executed by the runDomainWorkflow node.
type Workflow interface {
	Execute(ctx context.Context, in workflow.Input) (*domain.AgentSession, error)
}

// nodeFunc executes a node and returns the patch to merge into the turn state.
type nodeFunc func(ctx context.Context, state domain.TurnState) domain.TurnPatch

type node struct {
	def domain.Node
	run nodeFunc
}

// Graph is the routing state machine of a turn:
//
//	start -> runDomainWorkflow -> {respond | retrieve | tool_call | fail} -> end
//
// It holds no per-turn state; Run may be called concurrently.
type Graph struct {
	workflow Workflow
	policy   ports.RoutingPolicy
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	now      func() time.Time

	nodes map[domain.NodeID]node
	order []domain.NodeID
}

// Option configures the Graph.
type Option func(*Graph)

// WithRoutingPolicy replaces the default routing table.
func WithRoutingPolicy(policy ports.RoutingPolicy) Option {
	return func(g *Graph) {
		if policy != nil {
			g.policy = policy
		}
	}
}

// WithLifecycleHooks registers observability callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(g *Graph) {
		g.hooks = hooks
	}
}

// WithLogger configures a logger for node tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Graph) {
		g.logger = logger
	}
}

// NewGraph builds the routing graph around wf.
func NewGraph(wf Workflow, opts ...Option) *Graph {
	g := &Graph{
		workflow: wf,
		policy:   domain.DefaultRoutingTable(),
		logger:   logging.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}

	g.add(domain.Node{
		ID:          domain.NodeStart,
		Kind:        domain.NodeKindStart,
		Description: "Entry point of a turn",
		Edges:       []domain.Edge{{To: domain.NodeRunDomainWorkflow}},
	}, func(context.Context, domain.TurnState) domain.TurnPatch { return domain.TurnPatch{} })

	g.add(domain.Node{
		ID:          domain.NodeRunDomainWorkflow,
		Kind:        domain.NodeKindWorkflow,
		Description: "Registers the message, resolves the intent and persists the session",
		Edges: []domain.Edge{
			{To: domain.NodeRespond, Branch: domain.NodeRespond},
			{To: domain.NodeRetrieve, Branch: domain.NodeRetrieve},
			{To: domain.NodeToolCall, Branch: domain.NodeToolCall},
			{To: domain.NodeFail, Branch: domain.NodeFail},
		},
	}, g.runDomainWorkflow)

	g.add(responseNode(domain.NodeRespond, "Answers directly"), respond)
	g.add(responseNode(domain.NodeRetrieve, "Retrieves documents before answering"), retrieve)
	g.add(responseNode(domain.NodeToolCall, "Invokes external tools"), toolCall)
	g.add(responseNode(domain.NodeFail, "Reports the captured failure"), fail)

	g.add(domain.Node{
		ID:          domain.NodeEnd,
		Kind:        domain.NodeKindEnd,
		Description: "Sink state",
	}, func(context.Context, domain.TurnState) domain.TurnPatch { return domain.TurnPatch{} })

	return g
}

func responseNode(id domain.NodeID, description string) domain.Node {
	return domain.Node{
		ID:          id,
		Kind:        domain.NodeKindResponse,
		Description: description,
		Edges:       []domain.Edge{{To: domain.NodeEnd}},
	}
}

func (g *Graph) add(def domain.Node, run nodeFunc) {
	if g.nodes == nil {
		g.nodes = make(map[domain.NodeID]node)
	}
	g.nodes[def.ID] = node{def: def, run: run}
	g.order = append(g.order, def.ID)
}

// Nodes returns the graph structure in declaration order.
func (g *Graph) Nodes() []domain.Node {
	out := make([]domain.Node, 0, len(g.order))
	for _, id := range g.order {
		def := g.nodes[id].def
		def.Edges = append([]domain.Edge(nil), def.Edges...)
		out = append(out, def)
	}
	return out
}

// Run processes exactly one turn from start to end.
// Turn failures are carried in the returned state (branch fail); an error is
// only returned if the graph itself is malformed.
func (g *Graph) Run(ctx context.Context, initial domain.TurnState) (domain.TurnState, error) {
	started := g.now()
	state := initial
	state.Path = nil

	current := domain.NodeStart
	// Every node is visited at most once per turn.
	for steps := 0; steps <= len(g.nodes); steps++ {
		n, ok := g.nodes[current]
		if !ok {
			return state, fmt.Errorf("unknown node %q", current)
		}

		g.emitNode(ctx, domain.EventNodeEnter, state.SessionID, n.def)
		state = state.Apply(n.run(ctx, state))
		state.Path = append(state.Path, current)
		g.emitNode(ctx, domain.EventNodeLeave, state.SessionID, n.def)

		if n.def.IsTerminal() {
			g.emitTurn(ctx, state, g.now().Sub(started))
			return state, nil
		}

		next, err := g.next(n.def, state)
		if err != nil {
			return state, err
		}
		g.logger.Debug("transition", "session_id", state.SessionID, "from", current, "to", next)
		current = next
	}
	return state, fmt.Errorf("turn did not reach %q", domain.NodeEnd)
}

// next picks the outgoing edge: a conditional edge matching the branch
// marker wins, otherwise the first unconditional edge is taken.
func (g *Graph) next(n domain.Node, state domain.TurnState) (domain.NodeID, error) {
	branch := selectBranch(state)
	for _, e := range n.Edges {
		if e.IsConditional() && e.Branch == branch {
			return e.To, nil
		}
	}
	for _, e := range n.Edges {
		if !e.IsConditional() {
			return e.To, nil
		}
	}
	return "", fmt.Errorf("node %q has no edge for branch %q", n.ID, branch)
}

// selectBranch normalizes the branch marker: anything that is not fail,
// retrieve or tool_call routes to respond.
func selectBranch(state domain.TurnState) domain.NodeID {
	switch state.NextNode {
	case domain.NodeFail, domain.NodeRetrieve, domain.NodeToolCall:
		return state.NextNode
	}
	return domain.NodeRespond
}

func (g *Graph) emitNode(ctx context.Context, typ domain.EventType, sessionID string, def domain.Node) {
	hook := g.hooks.OnNodeEnter
	if typ == domain.EventNodeLeave {
		hook = g.hooks.OnNodeLeave
	}
	if hook == nil {
		return
	}
	hook(ctx, &domain.NodeEvent{
		EventBase: domain.EventBase{Timestamp: g.now(), Type: typ, SessionID: sessionID},
		NodeID:    def.ID,
		NodeKind:  def.Kind,
	})
}

func (g *Graph) emitTurn(ctx context.Context, state domain.TurnState, d time.Duration) {
	if g.hooks.OnTurnComplete == nil {
		return
	}
	g.hooks.OnTurnComplete(ctx, &domain.TurnEvent{
		EventBase: domain.EventBase{Timestamp: g.now(), Type: domain.EventTurnComplete, SessionID: state.SessionID},
		Branch:    selectBranch(state),
		Intent:    state.Intent,
		Failure:   state.Failure,
		Duration:  d,
	})
}
