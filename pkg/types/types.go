package types

import (
	"fmt"

	"golang.org/x/sys/unix"
)

const (
	// PathLen is the fixed width of a stored path entry. Entries shorter
	// than PathLen are zero-padded; the first NUL byte marks the end.
	PathLen = 64

	// PIDMaxLimit mirrors the kernel's PID_MAX_LIMIT and caps the
	// containers and processes tables.
	PIDMaxLimit = 4194304

	// RuntimesCap caps the runtimes table.
	RuntimesCap = 16

	// PathsCap caps each of the six path tables.
	PathsCap = 128
)

// PolicyLevel is the tier assigned to a container. Every process bound to
// a container inherits the container's level.
type PolicyLevel uint8

const (
	PolicyRestricted PolicyLevel = iota
	PolicyBaseline
	PolicyPrivileged
)

// String returns the canonical lowercase name of the level.
func (l PolicyLevel) String() string {
	switch l {
	case PolicyRestricted:
		return "restricted"
	case PolicyBaseline:
		return "baseline"
	case PolicyPrivileged:
		return "privileged"
	}
	return fmt.Sprintf("policylevel(%d)", uint8(l))
}

// ParsePolicyLevel parses a level name as it appears in configuration and
// container annotations.
func ParsePolicyLevel(s string) (PolicyLevel, error) {
	switch s {
	case "restricted":
		return PolicyRestricted, nil
	case "baseline":
		return PolicyBaseline, nil
	case "privileged":
		return PolicyPrivileged, nil
	}
	return 0, fmt.Errorf("unknown policy level %q", s)
}

// Resolution is the outcome of resolving a pid to a policy tier. The two
// sentinel variants are part of the type so callers cannot ignore them.
type Resolution uint8

const (
	// ResolutionRestricted through ResolutionPrivileged mirror the three
	// policy levels.
	ResolutionRestricted Resolution = iota
	ResolutionBaseline
	ResolutionPrivileged

	// ResolutionNotFound means the pid has no processes row: a host
	// process, untouched by policy.
	ResolutionNotFound

	// ResolutionLookupErr means the pid's processes row references a
	// container id with no containers row. Inconsistent state; callers
	// fail closed.
	ResolutionLookupErr
)

// String returns a short name for logging and the status API.
func (r Resolution) String() string {
	switch r {
	case ResolutionRestricted:
		return "restricted"
	case ResolutionBaseline:
		return "baseline"
	case ResolutionPrivileged:
		return "privileged"
	case ResolutionNotFound:
		return "not-found"
	case ResolutionLookupErr:
		return "lookup-err"
	}
	return fmt.Sprintf("resolution(%d)", uint8(r))
}

// Resolution lifts a policy level into the resolver's result domain.
func (l PolicyLevel) Resolution() Resolution {
	switch l {
	case PolicyRestricted:
		return ResolutionRestricted
	case PolicyBaseline:
		return ResolutionBaseline
	case PolicyPrivileged:
		return ResolutionPrivileged
	}
	return ResolutionLookupErr
}

// Verdict is the errno-valued result of a hook decision. Zero allows the
// operation; a negative value denies it with that error code, matching
// the wire-level hook contract.
type Verdict int

const (
	// VerdictAllow lets the operation proceed.
	VerdictAllow Verdict = 0

	// VerdictDenied rejects the operation as a policy decision.
	VerdictDenied Verdict = -Verdict(unix.EPERM)

	// VerdictFault rejects the operation because a required input could
	// not be read.
	VerdictFault Verdict = -Verdict(unix.EFAULT)
)

// Allowed reports whether the verdict lets the operation proceed.
func (v Verdict) Allowed() bool {
	return v == VerdictAllow
}

// String renders the verdict for logs and the check API.
func (v Verdict) String() string {
	switch v {
	case VerdictAllow:
		return "allow"
	case VerdictDenied:
		return "deny"
	case VerdictFault:
		return "fault"
	}
	return fmt.Sprintf("deny(%d)", int(v))
}

// Container is the value stored in the containers table. Containers are
// registered and unregistered by the collaborator and never mutated from
// inside the engine.
type Container struct {
	Policy PolicyLevel
}

// Process is the value stored in the processes table. It binds a pid to
// the container whose policy it inherits.
type Process struct {
	ContainerID uint32
}

// Credentials carries the uid/gid pair of a task credential as seen by
// the setuid hook.
type Credentials struct {
	UID uint32
	GID uint32
}

// PathEntry is a fixed-width path string as stored in the path tables.
type PathEntry [PathLen]byte

// NewPathEntry builds an entry from a path string, zero-padding to
// PathLen. Paths longer than PathLen are rejected rather than silently
// truncated.
func NewPathEntry(s string) (PathEntry, error) {
	var e PathEntry
	if len(s) > PathLen {
		return e, fmt.Errorf("path %q exceeds %d bytes", s, PathLen)
	}
	copy(e[:], s)
	return e, nil
}

// Len returns the effective length of the entry: the number of bytes
// before the first NUL, bounded by PathLen.
func (e PathEntry) Len() int {
	for i := 0; i < PathLen; i++ {
		if e[i] == 0 {
			return i
		}
	}
	return PathLen
}

// String returns the entry without its zero padding.
func (e PathEntry) String() string {
	return string(e[:e.Len()])
}
