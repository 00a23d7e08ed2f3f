package events

import (
	"testing"
	"time"

	"github.com/cuemby/bastion/pkg/types"
)

func TestPublishReachesSubscribers(t *testing.T) {
	b := NewBroker()
	b.Start()
	defer b.Stop()

	sub := b.Subscribe()
	defer b.Unsubscribe(sub)

	b.Publish(&Trace{
		Type:    TraceDecision,
		Hook:    "mount",
		PID:     100,
		Verdict: types.VerdictDenied,
		Message: "bind source not allowlisted",
	})

	select {
	case trace := <-sub:
		if trace.Hook != "mount" {
			t.Errorf("hook = %q, want mount", trace.Hook)
		}
		if trace.ID == "" {
			t.Error("trace ID not assigned")
		}
		if trace.Timestamp.IsZero() {
			t.Error("trace timestamp not assigned")
		}
	case <-time.After(time.Second):
		t.Fatal("trace not delivered")
	}
}

func TestPublishNeverBlocks(t *testing.T) {
	b := NewBroker()
	// Broker not started: the buffer will fill and further publishes
	// must drop instead of stalling the caller.
	for i := 0; i < 1000; i++ {
		b.Publish(&Trace{Type: TraceAnomaly, Message: "overflow probe"})
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	b := NewBroker()
	b.Start()
	defer b.Stop()

	sub := b.Subscribe()
	if b.SubscriberCount() != 1 {
		t.Fatalf("SubscriberCount = %d, want 1", b.SubscriberCount())
	}

	b.Unsubscribe(sub)
	if b.SubscriberCount() != 0 {
		t.Fatalf("SubscriberCount = %d, want 0", b.SubscriberCount())
	}
	if _, open := <-sub; open {
		t.Error("subscriber channel still open after unsubscribe")
	}
}
