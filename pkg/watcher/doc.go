/*
Package watcher reaps dead bindings by following the container runtime's
event stream.

The engine inserts process rows; deleting them on exit is the
collaborator's side of the contract, and this watcher is that
collaborator. It subscribes to containerd's task and container events:

	TaskExit / TaskDelete  → drop the pid's process row
	ContainerDelete        → drop the container registration and its
	                         persisted record

Reaping matters for correctness, not just hygiene. Pids recycle; a stale
row would hand a freshly spawned host process a dead container's policy.
Capacity also depends on it: the processes table is fixed-size, and
rows that never leave eventually push real registrations into the
fail-open overflow path.

The watcher is optional at daemon level (hosts running a different
runtime disable it and reap through the control API instead), and its
container-id derivation matches the OCI hook's, so registrations and
cleanups always meet.
*/
package watcher
