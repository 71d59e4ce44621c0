// Package model defines the core domain types for the gatehouse registry.
package model

import "time"

// Visitor kinds accepted on a registration. The empty string means
// "not informed".
const (
	KindVisitor         = "visitor"
	KindServiceProvider = "service-provider"
	KindCourier         = "courier"
)

// KnownKind reports whether k is one of the accepted visitor kinds.
func KnownKind(k string) bool {
	switch k {
	case "", KindVisitor, KindServiceProvider, KindCourier:
		return true
	}
	return false
}

// Registration is a single gate entry for a person/vehicle. One row per
// check-in; a re-entry of the same document collapses onto the latest row
// (CheckOutAt cleared, timestamps refreshed) rather than stacking a new one.
type Registration struct {
	ID          string     `json:"id"`
	Block       string     `json:"block,omitempty"`
	Lot         *int       `json:"lot,omitempty"`
	FullName    string     `json:"full_name"`
	Document    string     `json:"document"`
	Marker      string     `json:"marker,omitempty"`
	Plate       string     `json:"plate,omitempty"`
	VisitorKind string     `json:"visitor_kind,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	CheckInAt   time.Time  `json:"check_in_at"`
	CheckOutAt  *time.Time `json:"check_out_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Present reports whether the visitor is still on site.
func (r *Registration) Present() bool {
	return r.CheckOutAt == nil
}

// SubmitRequest is the payload for checking a visitor in. FullName and
// Document are required; everything else is descriptive.
type SubmitRequest struct {
	Block       string `json:"block"`
	Lot         *int   `json:"lot"`
	FullName    string `json:"full_name"`
	Document    string `json:"document"`
	Marker      string `json:"marker"`
	Plate       string `json:"plate"`
	VisitorKind string `json:"visitor_kind"`
	Notes       string `json:"notes"`
}

// Suggestion is a compact match returned by the lookup used to prefill a
// new registration from a past one.
type Suggestion struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Document string `json:"document"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}
