/*
Package hooks attaches Bastion's lineage tracking to the host: the event
sources that report new tasks, and the runner that pumps them into the
enforcer.

# Dual Sources

	┌────────────────── LINEAGE SOURCES ───────────────────┐
	│                                                      │
	│  ProcConnector ("fork")                              │
	│    netlink proc connector multicast                  │
	│    every fork/clone, microseconds of latency         │
	│        │                                             │
	│  ProcScanner ("task-alloc")                          │
	│    periodic /proc sweep, seconds of latency          │
	│    catches what the stream loses                     │
	│        │                                             │
	│        ▼                                             │
	│     Runner ──▶ enforcer lineage entry points         │
	│                 (idempotent tracker insert)          │
	└──────────────────────────────────────────────────────┘

Neither source is complete on its own: the stream misses nothing that it
sees but can drop under load (ENOBUFS) and never replays history; the
sweep sees everything alive at tick time but nothing shorter-lived than
its interval. Their union, deduplicated by the tracker's
check-and-insert, is what the binding guarantee rests on.

# Ordering and the Race Window

Events for one child may arrive on either source first, or on both. A
handler firing on the child before any binding lands resolves it as a
host process and allows; that is the documented race window. Collaborators
close it operationally: a container's init pid is registered before the
init execs the workload entrypoint, so by the time workload code runs,
its lineage is rooted.

# Privileges

The proc connector needs CAP_NET_ADMIN; the scanner only needs to read
/proc. A daemon running without the capability degrades to scanner-only
coverage and logs the stream failure rather than refusing to start.
*/
package hooks
