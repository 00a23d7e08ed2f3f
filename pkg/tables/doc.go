/*
Package tables provides the fixed-capacity associative tables backing all
of Bastion's shared state.

Every piece of engine state (container registrations, process bindings,
path allowlists and denylists) lives in a Table. Tables are sized at
construction, reject rows beyond their capacity, and offer atomic per-key
insert, update, lookup, and delete. There are no multi-row transactions;
consistency across tables is defended by insertion ordering and by the
resolver's fail-closed lookup-error path.

# Architecture

	┌───────────────────── SHARED STATE ───────────────────────┐
	│                                                           │
	│  ┌─────────────────────────────────────────────┐         │
	│  │              Table[K, V]                     │         │
	│  │  - Fixed capacity, set at construction       │         │
	│  │  - RWMutex-guarded map                       │         │
	│  │  - Insert: check-and-insert, never upsert    │         │
	│  │  - Put: upsert, capacity still enforced      │         │
	│  │  - ForEach: bounded iteration, early stop    │         │
	│  └─────────────────────────────────────────────┘         │
	│                                                           │
	│  Writers                         Readers                  │
	│  - Control API (containers)      - Policy resolver        │
	│  - Config (paths, runtimes)      - Path matcher           │
	│  - Lineage tracker               - Decision handlers      │
	│    (processes, insert-only)      - Metrics collector      │
	└───────────────────────────────────────────────────────────┘

# Insert vs Put

Insert is a compare-and-swap on key presence: if the key exists the call
fails with ErrExists and the stored row is untouched. This is what makes
the lineage tracker idempotent under duplicate event delivery: the
second event's insert loses cleanly. Put exists for owners that are
allowed to replace rows (the collaborator updating a container's policy
level); it still refuses to grow past capacity.

# Capacity Semantics

A full table rejects new rows with ErrFull rather than evicting. Callers
degrade per their own contract: the lineage tracker leaves the child
unbound (operations under it fall through as host operations), the
control API surfaces the error to the collaborator.

# Usage Example

	processes := tables.New[int32, types.Process](types.PIDMaxLimit)

	err := processes.Insert(childPID, types.Process{ContainerID: id})
	switch {
	case errors.Is(err, tables.ErrExists):
		// duplicate delivery, already bound
	case errors.Is(err, tables.ErrFull):
		// leave unbound, surface upward
	}

# Best Practices

 1. Use Insert everywhere the first writer must win; reserve Put for
    owners with replace rights
 2. Treat ErrExists as success when the operation is idempotent
 3. Keep ForEach callbacks free of table mutation; the read lock is held
    for the whole scan
*/
package tables
