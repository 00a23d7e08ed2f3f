/*
Package policy resolves a pid to the policy tier that governs it.

The resolver is the single lookup path every decision handler starts
with: pid → processes row → containers row → tier. Its result type lifts
the two failure modes into first-class variants so handlers must spell
out what happens to host processes (not found ⇒ allow) and to
inconsistent state (lookup error ⇒ fail closed).

# Purity

Resolve performs exactly two table reads and nothing else. Repeated
calls without intervening table writes return the same value, which is
what lets handlers call it once per event and reason locally about the
verdict.
*/
package policy
