package enforcer

import (
	"github.com/cuemby/bastion/pkg/pathmatch"
	"github.com/cuemby/bastion/pkg/state"
	"github.com/cuemby/bastion/pkg/types"
)

// FileOpen decides a file open. The path is the file's absolute path as
// rendered by the caller's path-resolution helper; nil means resolution
// failed, which is tolerated with an allow so unusual filesystems don't
// get over-blocked.
//
// For restricted and baseline tiers the rule is deny-list first, then
// allow-list, then default deny. The root path "/" is always allowed:
// every entry is a prefix of some path under it, so without the special
// case no prefix scheme behaves sensibly at the root.
func (e *Enforcer) FileOpen(pid int32, path []byte, prev types.Verdict) types.Verdict {
	res := e.resolver.Resolve(pid)
	verdict := e.openDecision(pid, res, path)
	return e.finish("open", pid, res, verdict, prev)
}

func (e *Enforcer) openDecision(pid int32, res types.Resolution, path []byte) types.Verdict {
	switch res {
	case types.ResolutionLookupErr:
		return types.VerdictDenied
	case types.ResolutionNotFound, types.ResolutionPrivileged:
		return types.VerdictAllow
	case types.ResolutionRestricted, types.ResolutionBaseline:
	}

	if path == nil {
		e.anomaly("open", pid, res, "unresolvable path allowed")
		return types.VerdictAllow
	}

	var pathBuf [types.PathLen]byte
	n := copy(pathBuf[:], path)
	probe := pathBuf[:n]

	if n == 1 && probe[0] == '/' {
		return types.VerdictAllow
	}

	var denylist, allowlist *state.PathTable
	if res == types.ResolutionRestricted {
		denylist = e.state.DeniedPathsAccessRestricted
		allowlist = e.state.AllowedPathsAccessRestricted
	} else {
		denylist = e.state.DeniedPathsAccessBaseline
		allowlist = e.state.AllowedPathsAccessBaseline
	}

	if pathmatch.Match(denylist, probe) {
		return types.VerdictDenied
	}
	if pathmatch.Match(allowlist, probe) {
		return types.VerdictAllow
	}
	return types.VerdictDenied
}
