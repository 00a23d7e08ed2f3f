package state

import (
	"fmt"

	"github.com/cuemby/bastion/pkg/tables"
	"github.com/cuemby/bastion/pkg/types"
)

// RuntimePresent is the sentinel value stored for a registered runtime
// init command name.
const RuntimePresent uint32 = 1

// PathTable is a slot-keyed table of fixed-width path entries.
type PathTable = tables.Table[uint32, types.PathEntry]

// Caps fixes the table capacities at load time.
type Caps struct {
	Containers int
	Processes  int
	Runtimes   int
	Paths      int
}

// DefaultCaps returns the production capacities.
func DefaultCaps() Caps {
	return Caps{
		Containers: types.PIDMaxLimit,
		Processes:  types.PIDMaxLimit,
		Runtimes:   types.RuntimesCap,
		Paths:      types.PathsCap,
	}
}

// State bundles the nine shared tables every handler reads. The
// collaborator owns all writes except the processes table, which the
// lineage tracker inserts into.
type State struct {
	Runtimes   *tables.Table[uint32, uint32]
	Containers *tables.Table[uint32, types.Container]
	Processes  *tables.Table[int32, types.Process]

	AllowedPathsMountRestricted  *PathTable
	AllowedPathsMountBaseline    *PathTable
	AllowedPathsAccessRestricted *PathTable
	AllowedPathsAccessBaseline   *PathTable
	DeniedPathsAccessRestricted  *PathTable
	DeniedPathsAccessBaseline    *PathTable
}

// New creates a State with the production capacities.
func New() *State {
	return NewWithCaps(DefaultCaps())
}

// NewWithCaps creates a State with explicit capacities. Tests and
// constrained deployments size down from the defaults.
func NewWithCaps(caps Caps) *State {
	return &State{
		Runtimes:   tables.New[uint32, uint32](caps.Runtimes),
		Containers: tables.New[uint32, types.Container](caps.Containers),
		Processes:  tables.New[int32, types.Process](caps.Processes),

		AllowedPathsMountRestricted:  tables.New[uint32, types.PathEntry](caps.Paths),
		AllowedPathsMountBaseline:    tables.New[uint32, types.PathEntry](caps.Paths),
		AllowedPathsAccessRestricted: tables.New[uint32, types.PathEntry](caps.Paths),
		AllowedPathsAccessBaseline:   tables.New[uint32, types.PathEntry](caps.Paths),
		DeniedPathsAccessRestricted:  tables.New[uint32, types.PathEntry](caps.Paths),
		DeniedPathsAccessBaseline:    tables.New[uint32, types.PathEntry](caps.Paths),
	}
}

// RegisterContainer creates or replaces the container row. The
// collaborator registers the container before binding any of its
// processes; that ordering defends the lineage invariant.
func (s *State) RegisterContainer(id uint32, policy types.PolicyLevel) error {
	if err := s.Containers.Put(id, types.Container{Policy: policy}); err != nil {
		return fmt.Errorf("register container %d: %w", id, err)
	}
	return nil
}

// UnregisterContainer removes the container row and reports whether it
// existed. Process rows under it are the collaborator's to reap.
func (s *State) UnregisterContainer(id uint32) bool {
	return s.Containers.Delete(id)
}

// BindProcess binds a pid to a container. First writer wins; a duplicate
// bind to the same pid fails with tables.ErrExists.
func (s *State) BindProcess(pid int32, containerID uint32) error {
	if err := s.Processes.Insert(pid, types.Process{ContainerID: containerID}); err != nil {
		return fmt.Errorf("bind pid %d: %w", pid, err)
	}
	return nil
}

// UnbindProcess removes the process row on exit and reports whether it
// existed.
func (s *State) UnbindProcess(pid int32) bool {
	return s.Processes.Delete(pid)
}

// RegisterRuntime records a runtime init command name. The table is
// reserved for unwrapped-runtime detection; no handler consults it yet.
func (s *State) RegisterRuntime(name string) error {
	if err := s.Runtimes.Put(HashRuntimeName(name), RuntimePresent); err != nil {
		return fmt.Errorf("register runtime %q: %w", name, err)
	}
	return nil
}

// ReplacePaths repopulates a path table from a list of path strings,
// assigning sequential slots. Existing slots beyond the new list are
// cleared.
func ReplacePaths(t *PathTable, paths []string) error {
	entries := make([]types.PathEntry, 0, len(paths))
	for _, p := range paths {
		e, err := types.NewPathEntry(p)
		if err != nil {
			return err
		}
		entries = append(entries, e)
	}
	if len(entries) > t.Cap() {
		return fmt.Errorf("%d paths exceed table capacity %d", len(entries), t.Cap())
	}

	var stale []uint32
	t.ForEach(func(slot uint32, _ types.PathEntry) bool {
		if int(slot) >= len(entries) {
			stale = append(stale, slot)
		}
		return true
	})
	for _, slot := range stale {
		t.Delete(slot)
	}
	for i, e := range entries {
		if err := t.Put(uint32(i), e); err != nil {
			return err
		}
	}
	return nil
}

// HashRuntimeName is the runtimes table key function: an additive sum
// over the bytes of the command name, truncated at the first NUL.
// Adequate for a 16-entry table; kept as-is so keys stay stable across
// the collaborator boundary.
func HashRuntimeName(name string) uint32 {
	var sum uint32
	for i := 0; i < len(name); i++ {
		if name[i] == 0 {
			break
		}
		sum += uint32(name[i])
	}
	return sum
}
