package lineage

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/cuemby/bastion/pkg/log"
	"github.com/cuemby/bastion/pkg/state"
	"github.com/cuemby/bastion/pkg/tables"
	"github.com/cuemby/bastion/pkg/types"
)

// ErrInconsistent reports a parent process row referencing a container
// with no containers row. The child is left unbound; the caller treats
// this as a diagnostic, not a failure of the child.
var ErrInconsistent = errors.New("parent references missing container")

// Tracker maintains the processes table as workloads fork. It is fed by
// two independent event sources whose streams overlap; the
// check-and-insert below makes replays and duplicate delivery harmless.
type Tracker struct {
	state  *state.State
	logger zerolog.Logger
}

// NewTracker creates a tracker over the shared state.
func NewTracker(st *state.State) *Tracker {
	return &Tracker{
		state:  st,
		logger: log.WithComponent("lineage"),
	}
}

// OnNewTask binds child to the parent's container, if the parent is
// bound. Both lineage event sources call this for every new task, in
// either order and possibly both; the first successful insert wins and
// later deliveries return success without touching the table.
//
// A full processes table propagates tables.ErrFull: the child stays
// unbound and operations under it fall through as host operations.
func (t *Tracker) OnNewTask(parentPID, childPID int32) error {
	parent, ok := t.state.Processes.Get(parentPID)
	if !ok {
		// Host process; nothing to inherit.
		return nil
	}

	if !t.state.Containers.Contains(parent.ContainerID) {
		t.logger.Warn().
			Int32("parent_pid", parentPID).
			Int32("child_pid", childPID).
			Uint32("container_id", parent.ContainerID).
			Msg("Parent bound to unregistered container; child left unbound")
		return ErrInconsistent
	}

	err := t.state.Processes.Insert(childPID, types.Process{ContainerID: parent.ContainerID})
	if errors.Is(err, tables.ErrExists) {
		// Duplicate delivery from the other event source.
		return nil
	}
	if err != nil {
		return fmt.Errorf("bind child %d of %d: %w", childPID, parentPID, err)
	}

	t.logger.Debug().
		Int32("parent_pid", parentPID).
		Int32("child_pid", childPID).
		Uint32("container_id", parent.ContainerID).
		Msg("Bound child to parent's container")
	return nil
}
