/*
Package domain contains the core domain model of the Switchboard router.

It defines the conversational aggregate and the vocabulary of the routing graph.
The package is kept pure and free of I/O or persistence concerns, following
Hexagonal Architecture principles: adapters translate to and from the
Snapshot types defined here.

# Key Entities

  - ConversationIntent: Validated, immutable classification result (value object).
  - UserMessage: A single turn of conversation (entity).
  - AgentSession: Aggregate root owning the history, resolved intent and last action.
  - Node / Edge: The static shape of the routing graph.
  - TurnState: The turn-scoped context threaded through the graph and patched by each node.
*/
package domain
