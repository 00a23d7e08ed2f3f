package enforcer

import "github.com/cuemby/bastion/pkg/types"

// unprivilegedUIDFloor is the first uid conventionally handed to regular
// users. Transitions from at or above it down to root are what the
// setuid rule forbids.
const unprivilegedUIDFloor = 1000

// Setuid decides a credential change. In restricted and baseline tiers a
// process running as a regular user must not become root; everything
// else, including root shedding privilege, is allowed.
func (e *Enforcer) Setuid(pid int32, newCred, oldCred types.Credentials, flags uint64, prev types.Verdict) types.Verdict {
	_ = flags

	res := e.resolver.Resolve(pid)

	var verdict types.Verdict
	switch res {
	case types.ResolutionLookupErr:
		verdict = types.VerdictDenied
	case types.ResolutionNotFound, types.ResolutionPrivileged:
		verdict = types.VerdictAllow
	case types.ResolutionRestricted, types.ResolutionBaseline:
		if newCred.UID == 0 && oldCred.UID >= unprivilegedUIDFloor {
			verdict = types.VerdictDenied
		} else {
			verdict = types.VerdictAllow
		}
	}

	return e.finish("setuid", pid, res, verdict, prev)
}
