/*
Package pathmatch implements the prefix scan used by the mount and open
handlers against the path tables.

The matcher answers one question: is any stored path a byte-prefix of the
probe path? Entries are fixed-width, zero-padded strings; an entry's
effective length runs to its first NUL. Empty entries are skipped so they
never match vacuously, and the policy is symmetric in iteration order:
any match yields the same verdict, so first-match-wins is sound.

The scan is allocation-free and side-effect-free, bounded by the table's
capacity. Probe paths arrive already copied into the handlers' bounded
stack buffers; the matcher never reads beyond the probe slice.

# Prefix Law

	Match(T, P)  iff  ∃ E ∈ T:  len(E) > 0  ∧  P[0:len(E)] == E[0:len(E)]

Note the law is a pure prefix test: an entry "/tmp" matches both "/tmp"
and "/tmpfile". Policy authors who need a directory boundary end the
entry with a trailing slash.
*/
package pathmatch
