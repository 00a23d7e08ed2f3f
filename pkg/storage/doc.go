/*
Package storage provides the persistent container registry for Bastion.

The registry answers one question across restarts: which containers were
registered, under which policy tier? On startup the daemon replays the
registry into the containers table before attaching any event source, so
a container that outlives a daemon restart keeps its registration and
tier.

Process bindings are deliberately not persisted: pids are meaningless
across a reboot. Replay restores container rows only, and the /proc
lineage scanner binds children of already-bound parents, so it does not
rebuild them. Until a surviving container's processes are bound again
through the control API, they resolve as host processes.

# Architecture

	┌──────────────── REGISTRY ────────────────┐
	│                                          │
	│  BoltDB (bastion.db)                     │
	│  └── containers bucket                   │
	│        key:   u32 container id (BE)      │
	│        value: JSON ContainerRecord       │
	│                                          │
	│  Writers: control API register/          │
	│           unregister, exit reaper        │
	│  Readers: daemon startup replay,         │
	│           status endpoints               │
	└──────────────────────────────────────────┘

# Storage Interface

The Store interface keeps callers independent of BoltDB; tests and
embedded deployments can substitute their own implementation. BoltStore
is the production implementation: single file, single writer,
crash-safe.

# Usage Example

	store, err := storage.NewBoltStore(dataDir)
	if err != nil {
		return err
	}
	defer store.Close()

	recs, err := store.ListContainers()
	for _, rec := range recs {
		st.RegisterContainer(rec.ID, rec.Policy)
	}
*/
package storage
