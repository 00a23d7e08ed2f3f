package api

import "hash/fnv"

// DeriveContainerID maps a runtime container ID (the OCI state's ID
// string) to the engine's opaque u32 id. Every collaborator (OCI hook,
// exit reaper, CLI) must use this same derivation or registrations and
// cleanups will miss each other.
func DeriveContainerID(name string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(name))
	return h.Sum32()
}
