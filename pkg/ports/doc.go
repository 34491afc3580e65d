/*
Package ports defines the driven ports (interfaces) for the Switchboard core.

These interfaces decouple the routing protocol from external implementations,
allowing the core to work with various storage backends, intent classifiers and
lock providers.

# Key Interfaces

  - SessionRepository: Responsible for persisting and loading AgentSession aggregates.
  - IntentClassifier: Turns raw user text into an intent label and a confidence.
  - RoutingPolicy: Maps a resolved intent onto a response branch.
  - DistributedLocker: Provides distributed locking for handling concurrent turns on one session.
  - TurnEngine: The driving port consumed by inbound adapters (HTTP, MCP, CLI).
*/
package ports
