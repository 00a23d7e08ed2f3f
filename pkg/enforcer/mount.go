package enforcer

import (
	"github.com/cuemby/bastion/pkg/pathmatch"
	"github.com/cuemby/bastion/pkg/state"
	"github.com/cuemby/bastion/pkg/types"
)

// fsTypeBufLen bounds the filesystem type read: long enough for "bind"
// and a terminator, and long enough to tell "bind" from any extension of
// it.
const fsTypeBufLen = 5

// Mount decides a mount request. Only bind mounts are policed: they are
// the vehicle for republishing host subtrees inside a container. All
// other mount types, and mounts with no type at all (sandboxing tools
// issue those), pass through.
//
// Inputs mirror the hook: nil slices are NULL pointers, distinct from
// empty strings.
func (e *Enforcer) Mount(pid int32, devName, target, fsType []byte, flags uint64, data []byte, prev types.Verdict) types.Verdict {
	_ = target
	_ = flags
	_ = data

	res := e.resolver.Resolve(pid)
	verdict := e.mountDecision(pid, res, devName, fsType)
	return e.finish("mount", pid, res, verdict, prev)
}

func (e *Enforcer) mountDecision(pid int32, res types.Resolution, devName, fsType []byte) types.Verdict {
	switch res {
	case types.ResolutionLookupErr:
		return types.VerdictDenied
	case types.ResolutionNotFound, types.ResolutionPrivileged:
		return types.VerdictAllow
	case types.ResolutionRestricted, types.ResolutionBaseline:
	}

	if fsType == nil {
		e.anomaly("mount", pid, res, "mount with NULL type allowed")
		return types.VerdictAllow
	}

	var typeBuf [fsTypeBufLen]byte
	n := copy(typeBuf[:], fsType)
	if string(typeBuf[:n]) != "bind" {
		return types.VerdictAllow
	}

	if devName == nil {
		return types.VerdictFault
	}

	var pathBuf [types.PathLen]byte
	n = copy(pathBuf[:], devName)

	var allowlist *state.PathTable
	if res == types.ResolutionRestricted {
		allowlist = e.state.AllowedPathsMountRestricted
	} else {
		allowlist = e.state.AllowedPathsMountBaseline
	}

	if pathmatch.Match(allowlist, pathBuf[:n]) {
		return types.VerdictAllow
	}
	return types.VerdictDenied
}
