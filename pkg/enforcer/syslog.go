package enforcer

import "github.com/cuemby/bastion/pkg/types"

// Syslog decides kernel log access. Container workloads must not read
// the host kernel ring buffer: restricted and baseline tiers deny
// regardless of the access type, privileged passes through.
func (e *Enforcer) Syslog(pid int32, logType int, prev types.Verdict) types.Verdict {
	_ = logType // the access type does not influence the decision

	res := e.resolver.Resolve(pid)

	var verdict types.Verdict
	switch res {
	case types.ResolutionLookupErr:
		verdict = types.VerdictDenied
	case types.ResolutionNotFound, types.ResolutionPrivileged:
		verdict = types.VerdictAllow
	case types.ResolutionRestricted, types.ResolutionBaseline:
		verdict = types.VerdictDenied
	}

	return e.finish("syslog", pid, res, verdict, prev)
}
