package hooks

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/cuemby/bastion/pkg/enforcer"
	"github.com/cuemby/bastion/pkg/log"
	"github.com/cuemby/bastion/pkg/types"
)

// TaskEvent reports one new task observed by an event source. Alloc
// marks events from the allocation-style source, which enters the
// enforcer through its verdict-bearing entry point.
type TaskEvent struct {
	ParentPID int32
	ChildPID  int32
	Alloc     bool
}

// Source is one lineage event feed. Sources overlap by design: either
// one alone misses some children, and the tracker's idempotent insert
// makes the union safe.
type Source interface {
	// Name labels the source in logs and metrics.
	Name() string

	// Run streams task events into out until ctx is cancelled. A
	// returned error means the source died; the runner logs it and the
	// remaining sources carry the load.
	Run(ctx context.Context, out chan<- TaskEvent) error
}

// Runner drives the event sources and feeds every observed task into the
// enforcer's lineage entry points. A child observed before its binding
// completes resolves as a host process and is allowed. That race
// window is accepted, and closed in practice by registering a container's init
// before the entrypoint execs.
type Runner struct {
	enf     *enforcer.Enforcer
	sources []Source
	logger  zerolog.Logger
}

// NewRunner creates a runner over the given sources.
func NewRunner(enf *enforcer.Enforcer, sources ...Source) *Runner {
	return &Runner{
		enf:     enf,
		sources: sources,
		logger:  log.WithComponent("hooks"),
	}
}

// Run blocks until ctx is cancelled, pumping all sources concurrently.
func (r *Runner) Run(ctx context.Context) error {
	events := make(chan TaskEvent, 512)

	var wg sync.WaitGroup
	for _, src := range r.sources {
		wg.Add(1)
		go func(src Source) {
			defer wg.Done()
			if err := src.Run(ctx, events); err != nil && ctx.Err() == nil {
				r.logger.Error().Err(err).Str("source", src.Name()).Msg("Event source stopped")
			}
		}(src)
	}

	// Close the event channel once every source has stopped so the
	// consumer loop below drains and exits.
	go func() {
		wg.Wait()
		close(events)
	}()

	for ev := range events {
		if ev.Alloc {
			// The allocation path folds a verdict and never fails the
			// task; binding errors surface as traces.
			r.enf.TaskAlloc(ev.ParentPID, ev.ChildPID, 0, types.VerdictAllow)
			continue
		}
		if err := r.enf.SchedProcessFork(ev.ParentPID, ev.ChildPID); err != nil {
			r.logger.Debug().
				Err(err).
				Int32("parent_pid", ev.ParentPID).
				Int32("child_pid", ev.ChildPID).
				Msg("Task left unbound")
		}
	}
	return ctx.Err()
}
