package events

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cuemby/bastion/pkg/types"
)

// TraceType classifies a diagnostic trace
type TraceType string

const (
	TraceDecision TraceType = "decision"
	TraceLineage  TraceType = "lineage"
	TraceAnomaly  TraceType = "anomaly"
)

// Trace is a diagnostic event emitted by the engine. Traces are the only
// output channel the engine owns: no syslog emission, no persistent log.
type Trace struct {
	ID         string
	Type       TraceType
	Hook       string
	PID        int32
	Resolution types.Resolution
	Verdict    types.Verdict
	Timestamp  time.Time
	Message    string
}

// Subscriber is a channel that receives traces
type Subscriber chan *Trace

// Broker manages trace subscriptions and distribution
type Broker struct {
	subscribers map[Subscriber]bool
	mu          sync.RWMutex
	traceCh     chan *Trace
	stopCh      chan struct{}
}

// NewBroker creates a new trace broker
func NewBroker() *Broker {
	return &Broker{
		subscribers: make(map[Subscriber]bool),
		traceCh:     make(chan *Trace, 256), // Buffer between the hot path and fanout
		stopCh:      make(chan struct{}),
	}
}

// Start begins the broker's distribution loop
func (b *Broker) Start() {
	go b.run()
}

// Stop stops the broker
func (b *Broker) Stop() {
	close(b.stopCh)
}

// Subscribe creates a new subscription and returns a channel
func (b *Broker) Subscribe() Subscriber {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := make(Subscriber, 64) // Buffer per subscriber
	b.subscribers[sub] = true
	return sub
}

// Unsubscribe removes a subscription
func (b *Broker) Unsubscribe(sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.subscribers, sub)
	close(sub)
}

// Publish hands a trace to the broker. The hot path never blocks: if the
// broker's buffer is full the trace is dropped.
func (b *Broker) Publish(trace *Trace) {
	if trace.ID == "" {
		trace.ID = uuid.New().String()
	}
	if trace.Timestamp.IsZero() {
		trace.Timestamp = time.Now()
	}

	select {
	case b.traceCh <- trace:
	default:
		// Decision handlers must not stall behind slow subscribers
	}
}

func (b *Broker) run() {
	for {
		select {
		case trace := <-b.traceCh:
			b.broadcast(trace)
		case <-b.stopCh:
			return
		}
	}
}

func (b *Broker) broadcast(trace *Trace) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for sub := range b.subscribers {
		select {
		case sub <- trace:
		default:
			// Subscriber buffer full, skip
		}
	}
}

// SubscriberCount returns the number of active subscribers
func (b *Broker) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
