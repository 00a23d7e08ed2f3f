/*
Package state assembles the shared tables that make up Bastion's policy
state: runtime names, container registrations, process bindings, and the
six path allowlists/denylists.

State is the single meeting point between the collaborator surfaces
(control API, configuration loader, exit reaper) and the engine (lineage
tracker, policy resolver, decision handlers). The collaborator writes;
the engine reads, except for the processes table, which the lineage
tracker inserts into as workloads fork.

# Tables

	Table                            Key                  Value
	─────────────────────────────────────────────────────────────────────
	Runtimes                         u32 hash(comm)       u32 sentinel
	Containers                       u32 container id     policy level
	Processes                        pid                  container id
	AllowedPathsMountRestricted      u32 slot             64B path entry
	AllowedPathsMountBaseline        u32 slot             64B path entry
	AllowedPathsAccessRestricted     u32 slot             64B path entry
	AllowedPathsAccessBaseline       u32 slot             64B path entry
	DeniedPathsAccessRestricted      u32 slot             64B path entry
	DeniedPathsAccessBaseline        u32 slot             64B path entry

Capacities are fixed at load time (DefaultCaps for production;
NewWithCaps for tests and constrained hosts).

# Write Ordering

RegisterContainer must precede BindProcess for any process of that
container. This ordering is what keeps the resolver's invariant (every
process row references a live container row) without multi-table
transactions. A violation surfaces as a lookup error and handlers fail
closed.

# The Runtimes Table

Runtimes holds the additive-sum hashes of runtime init command names
(runc, crun, containerd-shim). It is populated from configuration and
reserved for unwrapped-runtime detection; the current handlers do not
consult it. The hash is deliberately naïve and stays that way: keys must
remain stable for every writer across the collaborator boundary.

# Usage Example

	st := state.New()
	if err := st.RegisterContainer(1, types.PolicyBaseline); err != nil {
		return err
	}
	if err := st.BindProcess(initPID, 1); err != nil {
		return err
	}
	state.ReplacePaths(st.AllowedPathsMountRestricted, []string{
		"/var/lib/containers",
		"/tmp",
	})
*/
package state
