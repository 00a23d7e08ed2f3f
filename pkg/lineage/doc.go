/*
Package lineage maintains the processes table as containerized workloads
fork.

The tracker implements one operation: on a new task, inherit the parent's
container binding. A container's init process is registered by the
collaborator; everything the init forks, directly or transitively, is
bound here. Processes with unbound parents are host processes and are
never touched.

# Dual Event Sources

Two independent sources feed the tracker: a fork-event stream and a
task-allocation stream. Either source alone misses some children (clone
flag variants, kernel-thread-like paths); the union covers everything,
and duplicate delivery for the same child is absorbed by the table's
check-and-insert: the second insert fails with ErrExists and the tracker
reports success.

Events for the same child may arrive in either order, on either source,
or on both. The resulting property: eventually, and within microseconds
of creation, a child is bound iff its parent was bound when either event
fired. Handlers that fire on the child inside that window observe a host
process and allow; the collaborator closes the window by registering the
init process before it execs the workload entrypoint.

# Failure Modes

	Parent unbound            → success, no-op (host process)
	Parent's container gone   → ErrInconsistent, child left unbound
	Child already bound       → success (idempotent)
	Processes table full      → tables.ErrFull propagated; child unbound,
	                            operations under it treated as host
*/
package lineage
