package policy

import (
	"github.com/cuemby/bastion/pkg/state"
	"github.com/cuemby/bastion/pkg/types"
)

// Resolver maps a pid to its effective policy tier. It is a pure
// read-through over the processes and containers tables: two lookups, no
// side effects.
type Resolver struct {
	state *state.State
}

// NewResolver creates a resolver over the shared state.
func NewResolver(st *state.State) *Resolver {
	return &Resolver{state: st}
}

// Resolve returns the tier governing pid. A pid with no processes row is
// a host process (ResolutionNotFound). A processes row referencing a
// missing container row is inconsistent state (ResolutionLookupErr);
// handlers treat it as a closed door.
func (r *Resolver) Resolve(pid int32) types.Resolution {
	proc, ok := r.state.Processes.Get(pid)
	if !ok {
		return types.ResolutionNotFound
	}
	container, ok := r.state.Containers.Get(proc.ContainerID)
	if !ok {
		return types.ResolutionLookupErr
	}
	return container.Policy.Resolution()
}
