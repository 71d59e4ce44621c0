package store

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Renessey/Solaris/internal/model"
)

// Memory is an in-memory Store used by tests and local development. Rows
// are returned in insertion order unless the filter asks otherwise, which
// stands in for the backend's unspecified default ordering.
type Memory struct {
	mu    sync.RWMutex
	rows  map[string]*model.Registration
	order []string
}

// NewMemory constructs an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{rows: make(map[string]*model.Registration)}
}

func (m *Memory) Insert(_ context.Context, r *model.Registration) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := clone(r)
	cp.ID = uuid.New().String()
	m.rows[cp.ID] = cp
	m.order = append(m.order, cp.ID)
	r.ID = cp.ID
	return cp.ID, nil
}

func (m *Memory) UpdateByID(_ context.Context, id string, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	row, ok := m.rows[id]
	if !ok {
		return ErrNotFound
	}
	for col, v := range fields {
		if err := setColumn(row, col, v); err != nil {
			return err
		}
	}
	return nil
}

func (m *Memory) DeleteByID(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.rows[id]; !ok {
		return ErrNotFound
	}
	delete(m.rows, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *Memory) GetByID(_ context.Context, id string) (*model.Registration, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	row, ok := m.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(row), nil
}

func (m *Memory) Select(_ context.Context, f Filter) ([]model.Registration, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []model.Registration
	for _, id := range m.order {
		row := m.rows[id]
		ok, err := matches(row, f)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, *clone(row))
		}
	}

	if f.OrderBy != "" {
		if err := orderRows(out, f.OrderBy, f.Desc); err != nil {
			return nil, err
		}
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (m *Memory) Count(_ context.Context, f Filter) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, row := range m.rows {
		ok, err := matches(row, f)
		if err != nil {
			return 0, err
		}
		if ok {
			n++
		}
	}
	return n, nil
}

func clone(r *model.Registration) *model.Registration {
	cp := *r
	if r.Lot != nil {
		lot := *r.Lot
		cp.Lot = &lot
	}
	if r.CheckOutAt != nil {
		t := *r.CheckOutAt
		cp.CheckOutAt = &t
	}
	return &cp
}

func matches(r *model.Registration, f Filter) (bool, error) {
	for col, want := range f.Equals {
		ok, err := equalsColumn(r, col, want)
		if err != nil || !ok {
			return false, err
		}
	}
	for col, rng := range f.Ranges {
		ok, err := inRange(r, col, rng)
		if err != nil || !ok {
			return false, err
		}
	}
	for col, pat := range f.Contains {
		s, err := textColumn(r, col)
		if err != nil {
			return false, err
		}
		if !strings.Contains(strings.ToLower(s), strings.ToLower(pat)) {
			return false, nil
		}
	}
	if len(f.ContainsAny) > 0 {
		any := false
		for col, pat := range f.ContainsAny {
			s, err := textColumn(r, col)
			if err != nil {
				return false, err
			}
			if strings.Contains(strings.ToLower(s), strings.ToLower(pat)) {
				any = true
				break
			}
		}
		if !any {
			return false, nil
		}
	}
	return true, nil
}

func equalsColumn(r *model.Registration, col string, want any) (bool, error) {
	switch col {
	case FieldLot:
		if want == nil {
			return r.Lot == nil, nil
		}
		n, ok := want.(int)
		if !ok {
			return false, fmt.Errorf("lot predicate must be int, got %T", want)
		}
		return r.Lot != nil && *r.Lot == n, nil
	case FieldCheckOutAt:
		if want == nil {
			return r.CheckOutAt == nil, nil
		}
		t, ok := want.(time.Time)
		if !ok {
			return false, fmt.Errorf("check_out_at predicate must be time.Time, got %T", want)
		}
		return r.CheckOutAt != nil && r.CheckOutAt.Equal(t), nil
	case FieldCheckInAt, FieldCreatedAt:
		t, ok := want.(time.Time)
		if !ok {
			return false, fmt.Errorf("%s predicate must be time.Time, got %T", col, want)
		}
		v, err := timeColumn(r, col)
		if err != nil {
			return false, err
		}
		return v.Equal(t), nil
	default:
		s, err := textColumn(r, col)
		if err != nil {
			return false, err
		}
		if want == nil {
			return s == "", nil
		}
		ws, ok := want.(string)
		if !ok {
			return false, fmt.Errorf("%s predicate must be string, got %T", col, want)
		}
		return s == ws, nil
	}
}

func inRange(r *model.Registration, col string, rng Range) (bool, error) {
	v, err := timeColumn(r, col)
	if err != nil {
		return false, err
	}
	if rng.Low != nil {
		low, ok := rng.Low.(time.Time)
		if !ok {
			return false, fmt.Errorf("%s range bound must be time.Time, got %T", col, rng.Low)
		}
		if v.Before(low) {
			return false, nil
		}
	}
	if rng.High != nil {
		high, ok := rng.High.(time.Time)
		if !ok {
			return false, fmt.Errorf("%s range bound must be time.Time, got %T", col, rng.High)
		}
		if v.After(high) {
			return false, nil
		}
	}
	return true, nil
}

func textColumn(r *model.Registration, col string) (string, error) {
	switch col {
	case FieldBlock:
		return r.Block, nil
	case FieldFullName:
		return r.FullName, nil
	case FieldDocument:
		return r.Document, nil
	case FieldMarker:
		return r.Marker, nil
	case FieldPlate:
		return r.Plate, nil
	case FieldVisitorKind:
		return r.VisitorKind, nil
	case FieldNotes:
		return r.Notes, nil
	case FieldLot:
		if r.Lot == nil {
			return "", nil
		}
		return strconv.Itoa(*r.Lot), nil
	}
	return "", fmt.Errorf("unknown text column %q", col)
}

func timeColumn(r *model.Registration, col string) (time.Time, error) {
	switch col {
	case FieldCheckInAt:
		return r.CheckInAt, nil
	case FieldCreatedAt:
		return r.CreatedAt, nil
	case FieldCheckOutAt:
		if r.CheckOutAt == nil {
			return time.Time{}, nil
		}
		return *r.CheckOutAt, nil
	}
	return time.Time{}, fmt.Errorf("unknown time column %q", col)
}

func orderRows(rows []model.Registration, col string, desc bool) error {
	var less func(a, b *model.Registration) bool
	switch col {
	case FieldCreatedAt, FieldCheckInAt, FieldCheckOutAt:
		less = func(a, b *model.Registration) bool {
			ta, _ := timeColumn(a, col)
			tb, _ := timeColumn(b, col)
			return ta.Before(tb)
		}
	case FieldFullName, FieldDocument, FieldBlock, FieldMarker, FieldPlate:
		less = func(a, b *model.Registration) bool {
			sa, _ := textColumn(a, col)
			sb, _ := textColumn(b, col)
			return sa < sb
		}
	default:
		return fmt.Errorf("cannot order by column %q", col)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if desc {
			return less(&rows[j], &rows[i])
		}
		return less(&rows[i], &rows[j])
	})
	return nil
}

func setColumn(r *model.Registration, col string, v any) error {
	switch col {
	case FieldBlock:
		return setText(&r.Block, col, v)
	case FieldFullName:
		return setText(&r.FullName, col, v)
	case FieldDocument:
		return setText(&r.Document, col, v)
	case FieldMarker:
		return setText(&r.Marker, col, v)
	case FieldPlate:
		return setText(&r.Plate, col, v)
	case FieldVisitorKind:
		return setText(&r.VisitorKind, col, v)
	case FieldNotes:
		return setText(&r.Notes, col, v)
	case FieldLot:
		if v == nil {
			r.Lot = nil
			return nil
		}
		n, ok := v.(int)
		if !ok {
			return fmt.Errorf("lot must be int, got %T", v)
		}
		r.Lot = &n
		return nil
	case FieldCheckInAt:
		t, ok := v.(time.Time)
		if !ok {
			return fmt.Errorf("check_in_at must be time.Time, got %T", v)
		}
		r.CheckInAt = t
		return nil
	case FieldCreatedAt:
		t, ok := v.(time.Time)
		if !ok {
			return fmt.Errorf("created_at must be time.Time, got %T", v)
		}
		r.CreatedAt = t
		return nil
	case FieldCheckOutAt:
		if v == nil {
			r.CheckOutAt = nil
			return nil
		}
		t, ok := v.(time.Time)
		if !ok {
			return fmt.Errorf("check_out_at must be time.Time, got %T", v)
		}
		r.CheckOutAt = &t
		return nil
	}
	return fmt.Errorf("unknown column %q", col)
}

func setText(dst *string, col string, v any) error {
	if v == nil {
		*dst = ""
		return nil
	}
	s, ok := v.(string)
	if !ok {
		return fmt.Errorf("%s must be string, got %T", col, v)
	}
	*dst = s
	return nil
}
