package enforcer

import (
	"github.com/rs/zerolog"

	"github.com/cuemby/bastion/pkg/events"
	"github.com/cuemby/bastion/pkg/lineage"
	"github.com/cuemby/bastion/pkg/log"
	"github.com/cuemby/bastion/pkg/metrics"
	"github.com/cuemby/bastion/pkg/policy"
	"github.com/cuemby/bastion/pkg/state"
	"github.com/cuemby/bastion/pkg/types"
)

// Enforcer composes the policy resolver, the path matcher, and the
// per-hook rules into the four decision handlers. One Enforcer serves
// every hook; handlers share no mutable state beyond the tables and may
// run concurrently on any number of CPUs.
type Enforcer struct {
	resolver *policy.Resolver
	state    *state.State
	tracker  *lineage.Tracker
	broker   *events.Broker
	logger   zerolog.Logger
}

// New creates an enforcer over the shared state. The broker may be nil;
// traces are then dropped.
func New(st *state.State, tracker *lineage.Tracker, broker *events.Broker) *Enforcer {
	return &Enforcer{
		resolver: policy.NewResolver(st),
		state:    st,
		tracker:  tracker,
		broker:   broker,
		logger:   log.WithComponent("enforcer"),
	}
}

// Fold combines the verdict another security module already produced for
// this hook invocation with ours. A prior non-allow verdict always wins;
// zero is the identity, so any number of modules compose associatively.
func Fold(prev, cur types.Verdict) types.Verdict {
	if prev != types.VerdictAllow {
		return prev
	}
	return cur
}

// SchedProcessFork is the fork-event entry point. It has no verdict;
// binding failures are surfaced to the event source for diagnostics.
func (e *Enforcer) SchedProcessFork(parentPID, childPID int32) error {
	return e.newTask("fork", parentPID, childPID)
}

// TaskAlloc is the task-allocation hook entry point, the second of the
// two redundant lineage sources. Registration is fail-open: whatever
// happens to the binding, the task allocation itself is allowed.
func (e *Enforcer) TaskAlloc(parentPID, childPID int32, cloneFlags uint64, prev types.Verdict) types.Verdict {
	_ = cloneFlags // recorded by the hook contract, unused by policy
	if err := e.newTask("task-alloc", parentPID, childPID); err != nil {
		e.logger.Debug().Err(err).Int32("child_pid", childPID).Msg("Task left unbound")
	}
	return Fold(prev, types.VerdictAllow)
}

func (e *Enforcer) newTask(source string, parentPID, childPID int32) error {
	err := e.tracker.OnNewTask(parentPID, childPID)
	outcome := "bound"
	if err != nil {
		outcome = "unbound"
	}
	metrics.LineageEventsTotal.WithLabelValues(source, outcome).Inc()
	if err != nil {
		e.trace(events.TraceLineage, source, childPID, types.ResolutionNotFound, types.VerdictAllow, err.Error())
	}
	return err
}

// finish counts and traces a decision, then folds it with the previous
// verdict.
func (e *Enforcer) finish(hook string, pid int32, res types.Resolution, cur, prev types.Verdict) types.Verdict {
	metrics.DecisionsTotal.WithLabelValues(hook, cur.String()).Inc()
	e.trace(events.TraceDecision, hook, pid, res, cur, "")
	e.logger.Debug().
		Str("hook", hook).
		Int32("pid", pid).
		Str("resolution", res.String()).
		Str("verdict", cur.String()).
		Msg("Decision")
	return Fold(prev, cur)
}

func (e *Enforcer) trace(typ events.TraceType, hook string, pid int32, res types.Resolution, v types.Verdict, msg string) {
	if e.broker == nil {
		return
	}
	e.broker.Publish(&events.Trace{
		Type:       typ,
		Hook:       hook,
		PID:        pid,
		Resolution: res,
		Verdict:    v,
		Message:    msg,
	})
}

// anomaly records a tolerated oddity: an optional input we could not
// inspect, an unresolvable path. The operation is allowed so unrelated
// host workloads never break on our account.
func (e *Enforcer) anomaly(hook string, pid int32, res types.Resolution, msg string) {
	metrics.AnomaliesTotal.WithLabelValues(hook).Inc()
	e.trace(events.TraceAnomaly, hook, pid, res, types.VerdictAllow, msg)
	e.logger.Debug().
		Str("hook", hook).
		Int32("pid", pid).
		Msg(msg)
}
