/*
Package observability turns graph lifecycle events into Prometheus metrics
and structured log lines.

Both are exposed as domain.LifecycleHooks, so they can be chained with
domain.ChainHooks and handed to the engine without the graph knowing about
either.
*/
package observability
