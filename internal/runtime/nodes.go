package runtime

import (
	"context"
	"fmt"

	"github.com/aretw0/switchboard/pkg/domain"
)

func (g *Graph) runDomainWorkflow(ctx context.Context, state domain.TurnState) domain.TurnPatch {
	session, err := g.workflow.Execute(ctx, toInput(state))
	if err != nil {
		g.logger.Info("turn failed", "session_id", state.SessionID, "kind", domain.FailureKind(err), "err", err)
		return failurePatch(err)
	}
	return toPatch(session, g.policy)
}

func respond(_ context.Context, state domain.TurnState) domain.TurnPatch {
	return responsePatch(fmt.Sprintf("Handled '%s' without external retrieval or tools.", intentOrUnknown(state)))
}

func retrieve(_ context.Context, state domain.TurnState) domain.TurnPatch {
	return responsePatch(fmt.Sprintf("Retrieve documents before composing response for intent '%s'.", intentOrUnknown(state)))
}

func toolCall(_ context.Context, state domain.TurnState) domain.TurnPatch {
	return responsePatch(fmt.Sprintf("Invoke external tool(s) for intent '%s'.", intentOrUnknown(state)))
}

func fail(_ context.Context, state domain.TurnState) domain.TurnPatch {
	if state.Error == "" {
		return responsePatch("The workflow failed unexpectedly.")
	}
	return responsePatch(state.Error)
}

func responsePatch(text string) domain.TurnPatch {
	return domain.TurnPatch{Response: &text}
}

func intentOrUnknown(state domain.TurnState) string {
	if state.Intent == "" {
		return "unknown"
	}
	return state.Intent
}
