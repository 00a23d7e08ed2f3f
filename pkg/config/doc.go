/*
Package config loads and validates Bastion's policy document.

The document is YAML: runtime init command names, the six path lists
(mount allowlists, access allowlists and denylists, per tier), and
optional capacity overrides for constrained hosts. Everything the engine
enforces flows in through here or through the control API; the engine
itself owns no configuration, no environment variables, no persisted
state.

# Document Shape

	runtimes:
	  - runc
	  - crun

	restricted:
	  mount_allow:
	    - /var/lib/containers
	  access_allow:
	    - /usr
	    - /etc
	  access_deny:
	    - /etc/shadow

	baseline:
	  mount_allow:
	    - /var/lib/containers
	    - /home
	  access_allow:
	    - /usr
	  access_deny:
	    - /etc/shadow

	limits:
	  containers: 65536
	  processes: 65536

# Validation

Paths must be absolute, NUL-free, and at most 63 bytes so the
fixed-width table entry always keeps its terminator. Lists are bounded
by the path tables' capacity; runtime names by the runtimes table's.
A missing file loads the shipped default policy; a malformed file is an
error. Policy never degrades silently.

# Reload Semantics

Apply replaces path tables wholesale (stale slots cleared), so reloading
a trimmed document actually narrows policy. Container and process rows
are untouched: those belong to the collaborator and the lineage tracker.
*/
package config
