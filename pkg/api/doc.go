/*
Package api implements Bastion's control surface: the HTTP/JSON
rendition of the table contract, served on a local unix socket.

Out-of-process collaborators reach the engine through here: the OCI
hook registering a fresh container, an operator binding a stray
process or cleaning up, a debugging session dry-running a decision. The
in-process writers (the configuration loader and the exit reaper) write
the shared tables directly. The engine itself never initiates anything
on this surface; it only answers.

# Architecture

	┌────────────────── CONTROL SURFACE ───────────────────┐
	│                                                      │
	│  unix socket (0600, owner-only)                      │
	│        │                                             │
	│        ▼                                             │
	│  gorilla/mux router + metrics middleware             │
	│        │                                             │
	│        ├── POST   /v1/containers        register     │
	│        ├── GET    /v1/containers        list         │
	│        ├── DELETE /v1/containers/{id}   unregister   │
	│        ├── POST   /v1/processes         bind pid     │
	│        ├── DELETE /v1/processes/{pid}   unbind pid   │
	│        ├── GET    /v1/policy/{pid}      resolve      │
	│        ├── POST   /v1/check             dry-run      │
	│        └── GET    /v1/healthz           liveness     │
	│        │                                             │
	│        ▼                                             │
	│  shared state tables + BoltDB registry               │
	└──────────────────────────────────────────────────────┘

# Registration Ordering

Register-container writes the container row before the init-process row,
and bind-process refuses pids whose container is unregistered. Between
the two rules, no reader of the tables ever observes a process bound to
a missing container through this surface; the only way to get there is
an out-of-band unregister racing live children, which the resolver's
fail-closed path absorbs.

# Status Codes

	201  registered / bound
	204  unregistered / unbound (idempotent, absent is fine)
	400  malformed request, unknown policy or hook
	404  binding references an unregistered container
	409  pid already bound (bind: to any container; register: to a
	     different container)
	507  a fixed-capacity table rejected the row

# Security Model

The socket is chmod 0600: control of this API is control of policy, so
it is exactly as privileged as the daemon's owner. There is no network
listener and no authentication layer; local file permissions are the
boundary, the same stance the engine's kernel-side original takes with
its map file descriptors.
*/
package api
