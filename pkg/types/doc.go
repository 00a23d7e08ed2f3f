/*
Package types defines the core data structures used throughout Bastion.

This package contains the fundamental types of Bastion's domain model:
policy levels, resolver results, hook verdicts, table row values, and the
fixed-width path entries shared by the path tables and the path matcher.
Every other package builds on these types for state management, decision
making, and the control API.

# Architecture

The types package is the foundation of Bastion's data model. It defines:

  - Policy tiers (restricted, baseline, privileged)
  - Resolver results, including the two sentinel variants
  - Errno-valued hook verdicts (allow, deny, fault)
  - Table row values (containers, processes, path entries)
  - Table capacities fixed at load time

All types are designed to be:
  - Fixed-size (no growable strings cross into the engine)
  - Serializable (JSON for the control API, YAML for configuration)
  - Self-documenting (string-const parsing helpers for enums)

# Core Types

Policy model:
  - PolicyLevel: Restricted, baseline, or privileged tier
  - Resolution: Resolver result; tiers plus NotFound and LookupErr
  - Verdict: Errno-valued hook result (0, -EPERM, -EFAULT)

Table rows:
  - Container: Policy level keyed by an opaque u32 container id
  - Process: Container binding keyed by pid
  - PathEntry: 64-byte zero-padded path string
  - Credentials: uid/gid pair as seen by the setuid hook

# Resolution Semantics

Resolution lifts the resolver's two failure modes into the type so
callers cannot forget them:

	ResolutionNotFound:  pid has no processes row; a host process,
	                     always allowed
	ResolutionLookupErr: pid references a missing container; state is
	                     inconsistent, handlers fail closed

# Verdict Semantics

Verdicts carry errno values so they line up with the wire-level hook
contract without translation:

	VerdictAllow  = 0
	VerdictDenied = -EPERM  (policy deny, fail-closed paths)
	VerdictFault  = -EFAULT (required input could not be read)

Any other negative value is a verdict produced by another security module
on the same hook and is preserved untouched by the fold step.

# Usage Example

	level, err := types.ParsePolicyLevel("baseline")
	if err != nil {
		return err
	}
	entry, err := types.NewPathEntry("/var/lib/containers")
	if err != nil {
		return err
	}
	fmt.Println(level, entry.Len()) // baseline 19

# Best Practices

 1. Compare verdicts against VerdictAllow, never against literal zero
 2. Handle all five Resolution variants; a missing case is a policy hole
 3. Build PathEntry values through NewPathEntry so over-long paths are
    rejected at the edge instead of truncated in the engine
*/
package types
