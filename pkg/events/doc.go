/*
Package events provides the debug trace channel for Bastion's engine.

The broker fans diagnostic traces out to in-process subscribers: the
daemon's debug logger, tests, and nothing else. Traces are the engine's
only output: there is no audit pipeline, no syslog emission, no
persistent log. Anything that matters for enforcement lives in the
verdicts themselves.

# Architecture

	┌─────────────────── TRACE CHANNEL ────────────────────┐
	│                                                       │
	│  Decision handlers ──┐                                │
	│  Lineage tracker   ──┼──▶ Publish (non-blocking)      │
	│  Anomaly checks    ──┘        │                       │
	│                               ▼                       │
	│                      buffered trace channel           │
	│                               │                       │
	│                         broadcast loop                │
	│                          │         │                  │
	│                          ▼         ▼                  │
	│                    subscriber  subscriber             │
	│                    (debug log)   (tests)              │
	└───────────────────────────────────────────────────────┘

# Delivery Guarantees

None, deliberately. Publish never blocks: a full broker buffer drops the
trace, and a full subscriber buffer skips that subscriber. The decision
hot path runs in the event's execution context and cannot wait on a
consumer. Traces are diagnostics; verdicts are the product.

# Trace Types

	TraceDecision  A hook handler produced a verdict
	TraceLineage   A new task was left unbound (parent references a
	               missing container, or the processes table is full)
	TraceAnomaly   A non-critical oddity was tolerated (NULL optional
	               input, unresolvable path)

# Usage Example

	broker := events.NewBroker()
	broker.Start()
	defer broker.Stop()

	sub := broker.Subscribe()
	go func() {
		for trace := range sub {
			logger.Debug().Str("hook", trace.Hook).Msg(trace.Message)
		}
	}()
*/
package events
