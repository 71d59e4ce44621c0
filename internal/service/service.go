// Package service implements the registry's business logic: the
// dedup-upsert rules for check-ins, the daily active listing, checkout
// stamping, and the history/suggestion lookups. Handlers stay thin; the
// store stays dumb.
package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Renessey/Solaris/internal/mask"
	"github.com/Renessey/Solaris/internal/model"
	"github.com/Renessey/Solaris/internal/store"
)

// Outcome tells a caller whether a submission created a fresh row or
// reopened an existing one.
type Outcome string

const (
	OutcomeCreated Outcome = "created"
	OutcomeUpdated Outcome = "updated"
)

// suggestionLimit caps suggestion lookups.
const suggestionLimit = 5

// minQueryLen is the minimum significant length of a suggestion query;
// shorter input short-circuits to an empty result without a store call.
const minQueryLen = 2

// Service orchestrates registry operations against the record store. All
// timestamps are taken in the configured reference zone so the civil-day
// window is reproducible across deployments.
type Service struct {
	store   store.Store
	loc     *time.Location
	timeout time.Duration
	now     func() time.Time
}

// New constructs a Service. timeout bounds each store round-trip; zero
// disables the bound.
func New(st store.Store, loc *time.Location, timeout time.Duration) *Service {
	return &Service{
		store:   st,
		loc:     loc,
		timeout: timeout,
		now:     time.Now,
	}
}

func (s *Service) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *Service) localNow() time.Time {
	return s.now().In(s.loc)
}

// Submit checks a visitor in. The document is the business key: if no row
// exists for it the submission inserts a fresh one; otherwise the most
// recently created row for that document is reopened in place - descriptive
// fields overwritten, departure cleared, check-in and creation time
// refreshed. Older rows for the same document stay untouched as history, so
// a returning visitor never accumulates more than one open row.
//
// The read-then-write sequence is deliberately not transactional; the store
// serializes individual row writes and the rare concurrent double-submit is
// accepted.
func (s *Service) Submit(ctx context.Context, req model.SubmitRequest) (Outcome, *model.Registration, error) {
	name := strings.TrimSpace(req.FullName)
	if name == "" {
		return "", nil, &ValidationError{Field: "full_name", Reason: "is required"}
	}
	doc := mask.NormalizeDocument(req.Document)
	if doc == "" {
		return "", nil, &ValidationError{Field: "document", Reason: "is required"}
	}
	if !model.KnownKind(req.VisitorKind) {
		return "", nil, &ValidationError{Field: "visitor_kind", Reason: "is not a known kind"}
	}
	plate := mask.NormalizePlate(req.Plate)

	qctx, cancel := s.opCtx(ctx)
	defer cancel()
	matches, err := s.store.Select(qctx, store.Filter{
		Equals:  map[string]any{store.FieldDocument: doc},
		OrderBy: store.FieldCreatedAt,
		Desc:    true,
	})
	if err != nil {
		return "", nil, err
	}

	now := s.localNow()

	if len(matches) == 0 {
		reg := &model.Registration{
			Block:       req.Block,
			Lot:         req.Lot,
			FullName:    name,
			Document:    doc,
			Marker:      req.Marker,
			Plate:       plate,
			VisitorKind: req.VisitorKind,
			Notes:       req.Notes,
			CheckInAt:   now,
			CreatedAt:   now,
		}
		ictx, cancel := s.opCtx(ctx)
		defer cancel()
		if _, err := s.store.Insert(ictx, reg); err != nil {
			return "", nil, err
		}
		return OutcomeCreated, reg, nil
	}

	target := latest(matches)

	var lot any
	if req.Lot != nil {
		lot = *req.Lot
	}
	uctx, cancel := s.opCtx(ctx)
	defer cancel()
	err = s.store.UpdateByID(uctx, target.ID, map[string]any{
		store.FieldBlock:       req.Block,
		store.FieldLot:         lot,
		store.FieldFullName:    name,
		store.FieldMarker:      req.Marker,
		store.FieldPlate:       plate,
		store.FieldVisitorKind: req.VisitorKind,
		store.FieldNotes:       req.Notes,
		store.FieldCheckOutAt:  nil,
		store.FieldCheckInAt:   now,
		store.FieldCreatedAt:   now,
	})
	if err != nil {
		return "", nil, err
	}

	upd := target
	upd.Block = req.Block
	upd.Lot = req.Lot
	upd.FullName = name
	upd.Marker = req.Marker
	upd.Plate = plate
	upd.VisitorKind = req.VisitorKind
	upd.Notes = req.Notes
	upd.CheckOutAt = nil
	upd.CheckInAt = now
	upd.CreatedAt = now
	return OutcomeUpdated, &upd, nil
}

// latest picks the most recently created row; equal timestamps fall back to
// the highest id so the choice is deterministic either way.
func latest(rows []model.Registration) model.Registration {
	best := rows[0]
	for _, r := range rows[1:] {
		if r.CreatedAt.After(best.CreatedAt) ||
			(r.CreatedAt.Equal(best.CreatedAt) && r.ID > best.ID) {
			best = r
		}
	}
	return best
}

// ActiveFilter narrows the active listing. All set fields are ANDed.
type ActiveFilter struct {
	Name   string // substring, case-insensitive
	Block  string // exact
	Lot    *int   // exact
	Marker string // exact
}

func (s *Service) activeQuery(f ActiveFilter) store.Filter {
	dayStart, dayEnd := s.dayBounds()
	q := store.Filter{
		Equals: map[string]any{store.FieldCheckOutAt: nil},
		Ranges: map[string]store.Range{
			store.FieldCreatedAt: {Low: dayStart, High: dayEnd},
		},
		OrderBy: store.FieldCreatedAt,
		Desc:    true,
	}
	if f.Name != "" {
		q.Contains = map[string]string{store.FieldFullName: f.Name}
	}
	if f.Block != "" {
		q.Equals[store.FieldBlock] = f.Block
	}
	if f.Lot != nil {
		q.Equals[store.FieldLot] = *f.Lot
	}
	if f.Marker != "" {
		q.Equals[store.FieldMarker] = f.Marker
	}
	return q
}

// dayBounds returns the inclusive bounds of the current civil day in the
// reference zone.
func (s *Service) dayBounds() (time.Time, time.Time) {
	now := s.localNow()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
	return start, start.Add(24*time.Hour - time.Nanosecond)
}

// ListActive returns today's still-present registrations, newest first.
//
// "Today" is windowed on created_at, so presence resets at midnight in the
// reference zone: a visitor who checked in yesterday and never checked out
// drops off this listing once the day rolls over. That is intended
// behavior, not a bug - the registry tracks daily entries, not multi-day
// sessions.
func (s *Service) ListActive(ctx context.Context, f ActiveFilter) ([]model.Registration, error) {
	qctx, cancel := s.opCtx(ctx)
	defer cancel()
	return s.store.Select(qctx, s.activeQuery(f))
}

// CountActive returns the size of the active set under the same predicate
// as ListActive, independent of any listing page limit.
func (s *Service) CountActive(ctx context.Context, f ActiveFilter) (int, error) {
	qctx, cancel := s.opCtx(ctx)
	defer cancel()
	return s.store.Count(qctx, s.activeQuery(f))
}

// CheckOut stamps the departure time on a registration. The stamp is
// unconditional, so a second call just re-stamps a later time; there is no
// "already checked out" error.
func (s *Service) CheckOut(ctx context.Context, id string) error {
	uctx, cancel := s.opCtx(ctx)
	defer cancel()
	return s.store.UpdateByID(uctx, id, map[string]any{
		store.FieldCheckOutAt: s.localNow(),
	})
}

// Get fetches one full registration, used to prefill a new submission from
// a selected suggestion.
func (s *Service) Get(ctx context.Context, id string) (*model.Registration, error) {
	qctx, cancel := s.opCtx(ctx)
	defer cancel()
	return s.store.GetByID(qctx, id)
}

// Search finds up to 5 historical rows whose name or document contains the
// query, for the suggestion dropdown. Queries shorter than 2 significant
// characters return nothing without touching the store. Result order is the
// store default; callers must not depend on it.
func (s *Service) Search(ctx context.Context, query string) ([]model.Suggestion, error) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < minQueryLen {
		return nil, nil
	}

	qctx, cancel := s.opCtx(ctx)
	defer cancel()
	rows, err := s.store.Select(qctx, store.Filter{
		ContainsAny: map[string]string{
			store.FieldFullName: query,
			store.FieldDocument: query,
		},
		Limit: suggestionLimit,
	})
	if err != nil {
		return nil, err
	}

	out := make([]model.Suggestion, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.Suggestion{ID: r.ID, FullName: r.FullName, Document: r.Document})
	}
	return out, nil
}

// History returns every registration ever recorded, newest first, with an
// optional substring search across name, document and block.
func (s *Service) History(ctx context.Context, query string) ([]model.Registration, error) {
	f := store.Filter{OrderBy: store.FieldCreatedAt, Desc: true}
	if q := strings.TrimSpace(query); q != "" {
		f.ContainsAny = map[string]string{
			store.FieldFullName: q,
			store.FieldDocument: q,
			store.FieldBlock:    q,
		}
	}
	qctx, cancel := s.opCtx(ctx)
	defer cancel()
	return s.store.Select(qctx, f)
}

// Purge permanently deletes one registration. Administrative use only; the
// normal flow never deletes rows.
func (s *Service) Purge(ctx context.Context, id string) error {
	dctx, cancel := s.opCtx(ctx)
	defer cancel()
	return s.store.DeleteByID(dctx, id)
}
