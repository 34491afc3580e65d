/*
Package session serializes conversational turns per session ID.

A turn reads, mutates and rewrites the AgentSession aggregate, which is not
designed for concurrent mutation. The Manager guarantees one active turn per
session ID, across goroutines through ref-counted local mutexes and, when a
DistributedLocker is configured, across replicas. Turns for different session
IDs proceed in parallel.
*/
package session
