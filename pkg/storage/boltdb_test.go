package storage

import (
	"errors"
	"testing"
	"time"

	"github.com/cuemby/bastion/pkg/types"
)

func newStore(t *testing.T) *BoltStore {
	t.Helper()
	store, err := NewBoltStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewBoltStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSaveGetContainer(t *testing.T) {
	store := newStore(t)

	rec := &ContainerRecord{
		ID:           42,
		Name:         "b7a1c0ffee",
		Policy:       types.PolicyRestricted,
		InitPID:      1234,
		RegisteredAt: time.Now().UTC(),
	}
	if err := store.SaveContainer(rec); err != nil {
		t.Fatalf("SaveContainer: %v", err)
	}

	got, err := store.GetContainer(42)
	if err != nil {
		t.Fatalf("GetContainer: %v", err)
	}
	if got.Name != rec.Name || got.Policy != rec.Policy || got.InitPID != rec.InitPID {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestGetMissingContainer(t *testing.T) {
	store := newStore(t)

	_, err := store.GetContainer(7)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListAndDelete(t *testing.T) {
	store := newStore(t)

	for id := uint32(1); id <= 3; id++ {
		err := store.SaveContainer(&ContainerRecord{ID: id, Policy: types.PolicyBaseline})
		if err != nil {
			t.Fatalf("SaveContainer: %v", err)
		}
	}

	recs, err := store.ListContainers()
	if err != nil {
		t.Fatalf("ListContainers: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("listed %d records, want 3", len(recs))
	}

	if err := store.DeleteContainer(2); err != nil {
		t.Fatalf("DeleteContainer: %v", err)
	}
	// Idempotent: deleting again is fine.
	if err := store.DeleteContainer(2); err != nil {
		t.Fatalf("second DeleteContainer: %v", err)
	}

	recs, _ = store.ListContainers()
	if len(recs) != 2 {
		t.Errorf("listed %d records after delete, want 2", len(recs))
	}
}

func TestRegistrySurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	store, err := NewBoltStore(dir)
	if err != nil {
		t.Fatalf("NewBoltStore: %v", err)
	}
	err = store.SaveContainer(&ContainerRecord{ID: 9, Policy: types.PolicyPrivileged})
	if err != nil {
		t.Fatalf("SaveContainer: %v", err)
	}
	store.Close()

	reopened, err := NewBoltStore(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	rec, err := reopened.GetContainer(9)
	if err != nil {
		t.Fatalf("GetContainer after reopen: %v", err)
	}
	if rec.Policy != types.PolicyPrivileged {
		t.Errorf("policy = %v, want privileged", rec.Policy)
	}
}
