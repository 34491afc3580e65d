package domain

// TurnState is the turn-scoped context threaded through the routing graph.
// Nodes never write it directly; they return a TurnPatch that is merged.
type TurnState struct {
	SessionID   string   `json:"session_id"`
	LatestInput string   `json:"latest_input"`
	Intent      string   `json:"intent,omitempty"`
	Confidence  *float64 `json:"confidence,omitempty"`
	NextNode    NodeID   `json:"next_node,omitempty"`
	Response    string   `json:"response,omitempty"`
	Error       string   `json:"error,omitempty"`
	Failure     string   `json:"failure,omitempty"` // FailureKind of Error

	// Path lists the nodes visited during the turn, in order.
	Path []NodeID `json:"path,omitempty"`
}

// TurnPatch is a partial update of a TurnState. Nil fields are left untouched.
type TurnPatch struct {
	Intent     *string
	Confidence *float64
	NextNode   *NodeID
	Response   *string
	Error      *string
	Failure    *string
}

// NewTurnState creates the initial context of a turn.
func NewTurnState(sessionID, input string) TurnState {
	return TurnState{SessionID: sessionID, LatestInput: input}
}

// Apply returns a copy of s with the non-nil fields of p merged in.
func (s TurnState) Apply(p TurnPatch) TurnState {
	next := s
	next.Path = append([]NodeID(nil), s.Path...)
	if p.Intent != nil {
		next.Intent = *p.Intent
	}
	if p.Confidence != nil {
		c := *p.Confidence
		next.Confidence = &c
	}
	if p.NextNode != nil {
		next.NextNode = *p.NextNode
	}
	if p.Response != nil {
		next.Response = *p.Response
	}
	if p.Error != nil {
		next.Error = *p.Error
	}
	if p.Failure != nil {
		next.Failure = *p.Failure
	}
	return next
}

// Failed reports whether the turn selected the failure branch.
func (s TurnState) Failed() bool { return s.NextNode == NodeFail }

// Visited returns whether the turn passed through id.
func (s TurnState) Visited(id NodeID) bool {
	for _, n := range s.Path {
		if n == id {
			return true
		}
	}
	return false
}
