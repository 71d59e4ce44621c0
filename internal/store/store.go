// Package store defines the record-store port the registry core talks to,
// plus in-memory and PostgreSQL implementations. The core only ever issues
// filterable queries and single-row mutations; everything richer (dedup
// policy, day windowing) lives in the service layer.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/Renessey/Solaris/internal/model"
)

// ErrNotFound is returned when a mutation or lookup targets an id that does
// not exist.
var ErrNotFound = errors.New("registration not found")

// TransportError wraps a failed store round-trip (unreachable backend,
// timeout, driver failure). Callers decide retry policy; the store itself
// never retries.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Column names usable in Filter predicates and OrderBy.
const (
	FieldBlock       = "block"
	FieldLot         = "lot"
	FieldFullName    = "full_name"
	FieldDocument    = "document"
	FieldMarker      = "marker"
	FieldPlate       = "plate"
	FieldVisitorKind = "visitor_kind"
	FieldNotes       = "notes"
	FieldCheckInAt   = "check_in_at"
	FieldCheckOutAt  = "check_out_at"
	FieldCreatedAt   = "created_at"
)

// Range is an inclusive interval; a nil end leaves that side open.
type Range struct {
	Low  any
	High any
}

// Filter describes a query over the registration collection. All predicate
// groups are ANDed together; within ContainsAny the patterns are ORed.
type Filter struct {
	Equals      map[string]any    // field = value; a nil value means IS NULL
	Ranges      map[string]Range  // inclusive bounds
	Contains    map[string]string // case-insensitive substring, all must match
	ContainsAny map[string]string // case-insensitive substring, any may match
	OrderBy     string            // one of the Field* columns; "" = store default
	Desc        bool
	Limit       int // 0 = no limit
}

// Store is the persistence port for registrations.
type Store interface {
	// Insert persists a new registration, assigns its id, and returns it.
	Insert(ctx context.Context, r *model.Registration) (string, error)
	// UpdateByID overwrites the given columns on one row.
	UpdateByID(ctx context.Context, id string, fields map[string]any) error
	// DeleteByID removes one row.
	DeleteByID(ctx context.Context, id string) error
	// GetByID fetches one row or ErrNotFound.
	GetByID(ctx context.Context, id string) (*model.Registration, error)
	// Select returns all rows matching the filter.
	Select(ctx context.Context, f Filter) ([]model.Registration, error)
	// Count returns the number of rows matching the filter, ignoring Limit.
	Count(ctx context.Context, f Filter) (int, error)
}
