package runtime

import (
	"github.com/aretw0/switchboard/pkg/domain"
	"github.com/aretw0/switchboard/pkg/ports"
	"github.com/aretw0/switchboard/pkg/workflow"
)

// toInput maps the turn context onto the use-case input.
func toInput(state domain.TurnState) workflow.Input {
	return workflow.Input{
		SessionID: state.SessionID,
		UserInput: state.LatestInput,
	}
}

// toPatch maps a successfully processed session onto the graph context.
func toPatch(session *domain.AgentSession, policy ports.RoutingPolicy) domain.TurnPatch {
	next := domain.NodeRespond
	intent, ok := session.ResolvedIntent()
	if !ok {
		return domain.TurnPatch{NextNode: &next}
	}

	label := intent.Label().String()
	confidence := intent.Confidence()
	if branch, routed := policy.Route(intent.Label()); routed && domain.IsResponseBranch(branch) {
		next = branch
	}
	return domain.TurnPatch{
		Intent:     &label,
		Confidence: &confidence,
		NextNode:   &next,
	}
}

func failurePatch(err error) domain.TurnPatch {
	msg := err.Error()
	if msg == "" {
		msg = "Workflow execution failed"
	}
	kind := domain.FailureKind(err)
	next := domain.NodeFail
	return domain.TurnPatch{
		NextNode: &next,
		Error:    &msg,
		Failure:  &kind,
	}
}
