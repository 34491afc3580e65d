package ports

import "github.com/aretw0/switchboard/pkg/domain"

// RoutingPolicy maps a resolved intent onto one of the response branches
// (respond, retrieve, tool_call). It returns false when it has no opinion,
// in which case the graph falls back to respond.
type RoutingPolicy interface {
	Route(intent domain.IntentLabel) (domain.NodeID, bool)
}
