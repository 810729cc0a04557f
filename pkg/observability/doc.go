/*
Package observability turns dispatch events into logs and Prometheus metrics.

Both are delivered as domain.Hooks, so they plug into stater.WithHooks and can
be combined with Combine.
*/
package observability
