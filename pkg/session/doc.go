/*
Package session serializes work on one conversation.

A Manager keeps one reference-counted mutex per state key, so updates of the
same chat never run concurrently in a process, and optionally takes a
ports.DistributedLocker lock so they never run concurrently across replicas.
The dispatch core does not lock; callers that run updates in parallel wrap each
dispatch with Manager.Dispatch or Manager.WithLock.
*/
package session
