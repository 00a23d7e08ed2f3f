package watcher

import (
	"context"
	"fmt"

	"github.com/containerd/containerd"
	apievents "github.com/containerd/containerd/api/events"
	"github.com/containerd/containerd/events"
	"github.com/containerd/typeurl/v2"
	"github.com/rs/zerolog"

	"github.com/cuemby/bastion/pkg/api"
	"github.com/cuemby/bastion/pkg/log"
	"github.com/cuemby/bastion/pkg/state"
	"github.com/cuemby/bastion/pkg/storage"
)

// DefaultSocketPath is the system containerd socket.
const DefaultSocketPath = "/run/containerd/containerd.sock"

// Watcher performs the collaborator's delete-on-exit duty by following
// containerd's event stream: process rows are dropped when their task
// exits, container registrations when the container is deleted. Without
// it, recycled pids would inherit stale bindings.
type Watcher struct {
	state   *state.State
	store   storage.Store
	address string
	logger  zerolog.Logger
}

// New creates a watcher over the shared state. store may be nil.
func New(st *state.State, store storage.Store, address string) *Watcher {
	if address == "" {
		address = DefaultSocketPath
	}
	return &Watcher{
		state:   st,
		store:   store,
		address: address,
		logger:  log.WithComponent("watcher"),
	}
}

// Run subscribes to task and container events until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	client, err := containerd.New(w.address)
	if err != nil {
		return fmt.Errorf("connect to containerd at %s: %w", w.address, err)
	}
	defer client.Close()

	ch, errs := client.EventService().Subscribe(ctx,
		`topic~"/tasks/"`,
		`topic~"/containers/"`,
	)
	w.logger.Info().Str("address", w.address).Msg("Watching container runtime events")

	for {
		select {
		case envelope := <-ch:
			if envelope == nil {
				continue
			}
			w.handle(envelope)
		case err := <-errs:
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("event subscription failed: %w", err)
		case <-ctx.Done():
			return nil
		}
	}
}

func (w *Watcher) handle(envelope *events.Envelope) {
	event, err := typeurl.UnmarshalAny(envelope.Event)
	if err != nil {
		w.logger.Debug().Err(err).Str("topic", envelope.Topic).Msg("Undecodable event skipped")
		return
	}

	switch e := event.(type) {
	case *apievents.TaskExit:
		if w.state.UnbindProcess(int32(e.Pid)) {
			w.logger.Debug().
				Uint32("pid", e.Pid).
				Str("container", e.ContainerID).
				Msg("Process unbound on exit")
		}
	case *apievents.TaskDelete:
		w.state.UnbindProcess(int32(e.Pid))
	case *apievents.ContainerDelete:
		id := api.DeriveContainerID(e.ID)
		if w.state.UnregisterContainer(id) {
			w.logger.Info().
				Str("container", e.ID).
				Uint32("container_id", id).
				Msg("Container unregistered on delete")
		}
		if w.store != nil {
			if err := w.store.DeleteContainer(id); err != nil {
				w.logger.Error().Err(err).Uint32("container_id", id).Msg("Failed to delete registration")
			}
		}
	}
}
