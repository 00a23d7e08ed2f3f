package storage

import (
	"errors"
	"time"

	"github.com/cuemby/bastion/pkg/types"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// ContainerRecord is a registered container as persisted in the
// registry. Name is the runtime's container ID, kept for operators; the
// engine only ever sees the derived u32 id.
type ContainerRecord struct {
	ID           uint32
	Name         string
	Policy       types.PolicyLevel
	InitPID      int32
	RegisteredAt time.Time
}

// Store defines the interface for registry persistence. The registry
// exists so a daemon restart re-populates the containers table before
// any workload event fires; process bindings are volatile by design and
// are never persisted.
type Store interface {
	// Containers
	SaveContainer(rec *ContainerRecord) error
	GetContainer(id uint32) (*ContainerRecord, error)
	ListContainers() ([]*ContainerRecord, error)
	DeleteContainer(id uint32) error

	Close() error
}
