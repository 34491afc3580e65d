package domain

// NodeID names a state of the routing graph.
type NodeID string

func (id NodeID) String() string { return string(id) }

// Graph states. Respond, Retrieve, ToolCall and Fail are also the branch
// markers a turn can select after the domain workflow ran.
const (
	NodeStart             NodeID = "start"
	NodeRunDomainWorkflow NodeID = "runDomainWorkflow"
	NodeRespond           NodeID = "respond"
	NodeRetrieve          NodeID = "retrieve"
	NodeToolCall          NodeID = "tool_call"
	NodeFail              NodeID = "fail"
	NodeEnd               NodeID = "end"
)

// NodeKind constants define the control flow behavior.
const (
	// NodeKindStart is the entrypoint; it only forwards.
	NodeKindStart = "start"
	// NodeKindWorkflow executes the domain workflow and selects a branch.
	NodeKindWorkflow = "workflow"
	// NodeKindResponse produces the final response text of a turn.
	NodeKindResponse = "response"
	// NodeKindEnd is the sink state.
	NodeKindEnd = "end"
)

// Node represents a state of the routing graph.
type Node struct {
	ID          NodeID `json:"id"`
	Kind        string `json:"kind"`
	Description string `json:"description,omitempty"`

	// Edges defines the possible paths from this node.
	Edges []Edge `json:"edges,omitempty"`
}

// IsTerminal reports whether the node has no outgoing edges.
func (n Node) IsTerminal() bool { return len(n.Edges) == 0 }
