/*
Package switchboard routes conversational turns to handling branches.

Each turn appends the user's message to a persistent session, asks an intent
classifier what the user wants, and dispatches the session to one of a fixed
set of branches through a small explicit state machine:

	start -> runDomainWorkflow -> {respond | retrieve | tool_call | fail} -> end

The session aggregate enforces its own ordering rules (message first, then
intent, then action) and rejects intents whose confidence is below 0.5. Any
rejection routes the turn to the fail branch with a typed failure kind
instead of surfacing as an error.

# Architecture

The module is hexagonal. pkg/domain holds the aggregate and the graph
vocabulary, pkg/ports declares the collaborators (repository, classifier,
locker, routing policy), and pkg/adapters provides implementations: memory,
file and Redis repositories, keyword and OpenAI classifiers, and HTTP and MCP
front-ends. Engine wires them together.

# Usage

	eng, err := switchboard.New(
		switchboard.WithRepository(file.New(".switchboard/sessions")),
	)
	if err != nil {
		log.Fatal(err)
	}

	state, err := eng.Turn(ctx, "user-1", "I need help with my billing plan")
	if err != nil {
		log.Fatal(err) // infrastructure failure (context, lock)
	}
	fmt.Println(state.NextNode, state.Response)

Turns for the same session ID are serialized; turns for different IDs run in
parallel. Configure WithLocker to extend the guarantee across processes.
*/
package switchboard
