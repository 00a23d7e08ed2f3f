/*
Package enforcer implements Bastion's per-hook decision handlers: mount,
syslog, setuid, and file open, plus the two lineage entry points that
keep the processes table current.

Every handler follows one skeleton: resolve the calling pid to a policy
tier, dispatch on the tier, consult the relevant path tables when the
tier requires it, and fold the result with whatever verdict an earlier
security module already produced for the same hook.

# Architecture

	┌───────────────────── DECISION FLOW ──────────────────────┐
	│                                                           │
	│   hook event (pid, inputs, prev verdict)                  │
	│        │                                                  │
	│        ▼                                                  │
	│   Policy Resolver ── pid → tier                           │
	│        │                                                  │
	│        ├─ lookup-err ──────────────▶ DENY (fail closed)   │
	│        ├─ not-found ───────────────▶ ALLOW (host)         │
	│        ├─ privileged ──────────────▶ ALLOW                │
	│        │                                                  │
	│        ▼ restricted / baseline                            │
	│   hook-specific rule                                      │
	│        │                                                  │
	│        ├─ syslog: deny                                    │
	│        ├─ mount:  bind source vs mount allowlist          │
	│        ├─ setuid: forbid user → root transition           │
	│        └─ open:   denylist, then allowlist, then deny     │
	│        │                                                  │
	│        ▼                                                  │
	│   fold(prev, verdict) ──▶ errno-valued result             │
	└───────────────────────────────────────────────────────────┘

# Execution Model

Handlers run in the calling event's context: no blocking, no sleeping,
no allocation beyond fixed stack buffers, bounded steps. Any number may
run simultaneously; all shared state sits in the tables, which give
atomic per-key operations and nothing more. Strings from outside are
copied into 64-byte (paths) or 5-byte (filesystem type) buffers before
inspection; longer inputs are truncated, never followed.

# Stacking

Fold preserves any prior non-zero verdict, so Bastion composes behind
other security modules: if an earlier module already denied, that denial
passes through untouched regardless of what local policy says.

# Tolerated Anomalies

NULL optional inputs (a mount with no filesystem type) and paths the
resolver cannot render are allowed and counted as anomalies. The engine
shares every hook with unrelated host workloads; breaking those is worse
than missing one decision. The non-optional gaps fail hard instead: a
bind mount with a NULL source is a fault (-EFAULT), and an inconsistent
process/container binding denies (-EPERM).

# Lineage Entry Points

SchedProcessFork and TaskAlloc are the fork-event and task-allocation
feeds for the lineage tracker. They are redundant on purpose, since either
alone misses some children, and the tracker's idempotent insert makes
the overlap harmless. TaskAlloc always allows; registration problems
degrade to an unbound child, never to a blocked clone.

# Extension Point

The runtimes table (hashed init command names) is populated by the
collaborator but consulted by no handler yet; it is reserved for
detecting workloads launched by an unwrapped runtime. A future handler
would compare the current command name's hash against the table before
trusting process lineage.

# Usage Example

	enf := enforcer.New(st, lineage.NewTracker(st), broker)

	verdict := enf.Mount(pid,
		[]byte("/var/lib/containers/img"), // dev_name
		[]byte("/mnt"),                    // target
		[]byte("bind"),                    // type
		0, nil,
		types.VerdictAllow, // previous module's verdict
	)
	if !verdict.Allowed() {
		// -EPERM or -EFAULT
	}
*/
package enforcer
