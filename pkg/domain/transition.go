package domain

// Edge defines a rule to move from one node to another.
type Edge struct {
	To NodeID `json:"to"`

	// Branch, when set, makes the edge conditional: it is taken only when the
	// turn's next-branch marker equals Branch. Empty means unconditional.
	Branch NodeID `json:"branch,omitempty"`
}

// IsConditional reports whether the edge depends on the branch marker.
func (e Edge) IsConditional() bool { return e.Branch != "" }
