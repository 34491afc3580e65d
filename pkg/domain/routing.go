package domain

// RoutingTable maps intent labels onto response branches.
// It implements ports.RoutingPolicy.
type RoutingTable map[IntentLabel]NodeID

// DefaultRoutingTable returns the fixed routing of the allowed labels.
func DefaultRoutingTable() RoutingTable {
	return RoutingTable{
		IntentSupport: NodeRespond,
		IntentSales:   NodeToolCall,
		IntentTriage:  NodeRetrieve,
	}
}

// Route returns the branch for label, or false if the table has none
// or maps it onto something other than a response branch.
func (t RoutingTable) Route(label IntentLabel) (NodeID, bool) {
	branch, ok := t[label]
	if !ok || !IsResponseBranch(branch) {
		return "", false
	}
	return branch, true
}

// IsResponseBranch reports whether id is one of respond, retrieve or tool_call.
func IsResponseBranch(id NodeID) bool {
	switch id {
	case NodeRespond, NodeRetrieve, NodeToolCall:
		return true
	}
	return false
}
