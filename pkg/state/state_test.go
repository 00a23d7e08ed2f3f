package state

import (
	"errors"
	"testing"

	"github.com/cuemby/bastion/pkg/tables"
	"github.com/cuemby/bastion/pkg/types"
)

func TestRegisterBindOrdering(t *testing.T) {
	st := NewWithCaps(Caps{Containers: 8, Processes: 8, Runtimes: 4, Paths: 4})

	if err := st.RegisterContainer(1, types.PolicyBaseline); err != nil {
		t.Fatalf("RegisterContainer failed: %v", err)
	}
	if err := st.BindProcess(100, 1); err != nil {
		t.Fatalf("BindProcess failed: %v", err)
	}

	// Every bound pid must reference a live container row.
	proc, ok := st.Processes.Get(100)
	if !ok {
		t.Fatal("process row missing after bind")
	}
	if _, ok := st.Containers.Get(proc.ContainerID); !ok {
		t.Fatal("bound process references missing container")
	}

	// Duplicate bind loses to the first writer.
	err := st.BindProcess(100, 2)
	if !errors.Is(err, tables.ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
	proc, _ = st.Processes.Get(100)
	if proc.ContainerID != 1 {
		t.Errorf("duplicate bind changed container id to %d", proc.ContainerID)
	}
}

func TestUnregisterAndUnbind(t *testing.T) {
	st := NewWithCaps(Caps{Containers: 8, Processes: 8, Runtimes: 4, Paths: 4})

	if err := st.RegisterContainer(3, types.PolicyRestricted); err != nil {
		t.Fatalf("RegisterContainer failed: %v", err)
	}
	if err := st.BindProcess(300, 3); err != nil {
		t.Fatalf("BindProcess failed: %v", err)
	}

	if !st.UnbindProcess(300) {
		t.Error("UnbindProcess returned false for bound pid")
	}
	if st.UnbindProcess(300) {
		t.Error("UnbindProcess returned true for already-unbound pid")
	}
	if !st.UnregisterContainer(3) {
		t.Error("UnregisterContainer returned false for registered id")
	}
}

func TestReplacePaths(t *testing.T) {
	st := NewWithCaps(Caps{Containers: 2, Processes: 2, Runtimes: 2, Paths: 4})
	tbl := st.AllowedPathsMountRestricted

	if err := ReplacePaths(tbl, []string{"/var/lib/containers", "/tmp", "/home"}); err != nil {
		t.Fatalf("ReplacePaths failed: %v", err)
	}
	if tbl.Len() != 3 {
		t.Fatalf("Len = %d, want 3", tbl.Len())
	}

	// Shrinking the list clears the stale tail slots.
	if err := ReplacePaths(tbl, []string{"/srv"}); err != nil {
		t.Fatalf("ReplacePaths failed: %v", err)
	}
	if tbl.Len() != 1 {
		t.Fatalf("Len after shrink = %d, want 1", tbl.Len())
	}
	e, ok := tbl.Get(0)
	if !ok || e.String() != "/srv" {
		t.Errorf("slot 0 = %q, %v", e.String(), ok)
	}

	// Over capacity is rejected whole.
	err := ReplacePaths(tbl, []string{"/a", "/b", "/c", "/d", "/e"})
	if err == nil {
		t.Fatal("expected capacity error")
	}
}

func TestHashRuntimeName(t *testing.T) {
	tests := []struct {
		name string
		want uint32
	}{
		{"", 0},
		{"a", 97},
		{"runc", 114 + 117 + 110 + 99},
		{"ru\x00nc", 114 + 117}, // truncated at the first NUL
	}
	for _, tt := range tests {
		if got := HashRuntimeName(tt.name); got != tt.want {
			t.Errorf("HashRuntimeName(%q) = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestRegisterRuntime(t *testing.T) {
	st := NewWithCaps(Caps{Containers: 2, Processes: 2, Runtimes: 2, Paths: 2})

	if err := st.RegisterRuntime("runc"); err != nil {
		t.Fatalf("RegisterRuntime failed: %v", err)
	}
	v, ok := st.Runtimes.Get(HashRuntimeName("runc"))
	if !ok || v != RuntimePresent {
		t.Errorf("runtime row = %d, %v", v, ok)
	}

	// Re-registering the same name replaces, it does not overflow.
	if err := st.RegisterRuntime("runc"); err != nil {
		t.Errorf("re-register failed: %v", err)
	}
}
