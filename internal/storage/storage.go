// Package storage defines the persistence contract for item stacks.
package storage

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/itsmeow/SpongeCommon/internal/item"
)

var (
	// ErrNotFound is returned when a stack ID is not stored.
	ErrNotFound = errors.New("stack not found")
	// ErrInvalidStack marks a stack that can never be persisted as is.
	ErrInvalidStack = errors.New("invalid stack")
)

// Backend is the interface all storage implementations must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// SaveStack inserts or replaces the stack with the same ID.
	SaveStack(s *item.Stack) error
	// LoadStack returns ErrNotFound (possibly wrapped) for unknown IDs.
	LoadStack(id uuid.UUID) (*item.Stack, error)
	DeleteStack(id uuid.UUID) error
	// ListStacks returns every stored ID in ascending string order.
	ListStacks() ([]uuid.UUID, error)
}

// BatchSaver is implemented by backends that can persist many stacks in one
// round trip.
type BatchSaver interface {
	SaveStacks(stacks []*item.Stack) error
}

// Exporter is implemented by backends that write a snapshot file on Close.
type Exporter interface {
	ExportedFilePath() string
}

// InvalidStackError reports a stack a backend refused to write because it
// cannot be converted. Retrying the same snapshot will fail again.
type InvalidStackError struct {
	ID  uuid.UUID
	Err error
}

func (e *InvalidStackError) Error() string {
	return fmt.Sprintf("%v %s: %v", ErrInvalidStack, e.ID, e.Err)
}

func (e *InvalidStackError) Unwrap() error { return e.Err }

func (e *InvalidStackError) Is(target error) bool { return target == ErrInvalidStack }

// InvalidStacks walks err, including joined and wrapped errors, and returns
// the IDs reported as invalid plus whether any other failure is present.
func InvalidStacks(err error) (ids map[uuid.UUID]struct{}, other bool) {
	ids = make(map[uuid.UUID]struct{})
	var walk func(error)
	walk = func(e error) {
		if inv, ok := e.(*InvalidStackError); ok {
			ids[inv.ID] = struct{}{}
			return
		}
		if j, ok := e.(interface{ Unwrap() []error }); ok {
			for _, sub := range j.Unwrap() {
				walk(sub)
			}
			return
		}
		if inner := errors.Unwrap(e); inner != nil {
			walk(inner)
			return
		}
		other = true
	}
	if err != nil {
		walk(err)
	}
	return ids, other
}

// SaveAll persists stacks through SaveStacks when the backend supports it and
// one at a time otherwise.
func SaveAll(b Backend, stacks []*item.Stack) error {
	if len(stacks) == 0 {
		return nil
	}
	if bs, ok := b.(BatchSaver); ok {
		return bs.SaveStacks(stacks)
	}
	var errs []error
	for _, s := range stacks {
		if err := b.SaveStack(s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
