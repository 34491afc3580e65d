package domain

import "testing"

func TestDefaultRoutingTable(t *testing.T) {
	table := DefaultRoutingTable()
	want := map[IntentLabel]NodeID{
		IntentSupport: NodeRespond,
		IntentSales:   NodeToolCall,
		IntentTriage:  NodeRetrieve,
	}
	for label, branch := range want {
		got, ok := table.Route(label)
		if !ok || got != branch {
			t.Errorf("Route(%q) = %q, %v; want %q", label, got, ok, branch)
		}
	}
	if _, ok := table.Route("unknown"); ok {
		t.Error("Route(unknown) should report no opinion")
	}
}

func TestRoutingTable_RejectsNonResponseBranches(t *testing.T) {
	table := RoutingTable{IntentSales: NodeFail, IntentSupport: NodeEnd}
	if _, ok := table.Route(IntentSales); ok {
		t.Error("policy must not route into fail")
	}
	if _, ok := table.Route(IntentSupport); ok {
		t.Error("policy must not route into end")
	}
}
