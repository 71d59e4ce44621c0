package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Renessey/Solaris/internal/model"
)

// Postgres implements Store on top of a pgx connection pool. SQL is written
// directly (no ORM); driver failures come back as *TransportError so the
// service layer can tell them apart from domain errors.
type Postgres struct {
	db *pgxpool.Pool
}

// NewPostgres constructs a Postgres store.
func NewPostgres(db *pgxpool.Pool) *Postgres {
	return &Postgres{db: db}
}

const registrationColumns = `id, block, lot, full_name, document, marker,
	plate, visitor_kind, notes, check_in_at, check_out_at, created_at`

var allowedColumns = map[string]bool{
	FieldBlock: true, FieldLot: true, FieldFullName: true,
	FieldDocument: true, FieldMarker: true, FieldPlate: true,
	FieldVisitorKind: true, FieldNotes: true, FieldCheckInAt: true,
	FieldCheckOutAt: true, FieldCreatedAt: true,
}

func (p *Postgres) Insert(ctx context.Context, r *model.Registration) (string, error) {
	r.ID = uuid.New().String()

	_, err := p.db.Exec(ctx,
		`INSERT INTO registrations (`+registrationColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		r.ID, r.Block, r.Lot, r.FullName, r.Document, r.Marker,
		r.Plate, r.VisitorKind, r.Notes, r.CheckInAt, r.CheckOutAt, r.CreatedAt,
	)
	if err != nil {
		return "", &TransportError{Op: "insert registration", Err: err}
	}
	return r.ID, nil
}

func (p *Postgres) UpdateByID(ctx context.Context, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}

	cols := make([]string, 0, len(fields))
	for col := range fields {
		if !allowedColumns[col] {
			return fmt.Errorf("unknown column %q", col)
		}
		cols = append(cols, col)
	}
	sort.Strings(cols)

	var set strings.Builder
	args := make([]any, 0, len(cols)+1)
	for i, col := range cols {
		if i > 0 {
			set.WriteString(", ")
		}
		fmt.Fprintf(&set, "%s = $%d", col, i+1)
		args = append(args, fields[col])
	}
	args = append(args, id)

	tag, err := p.db.Exec(ctx,
		fmt.Sprintf(`UPDATE registrations SET %s WHERE id = $%d`, set.String(), len(args)),
		args...,
	)
	if err != nil {
		return &TransportError{Op: "update registration", Err: err}
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) DeleteByID(ctx context.Context, id string) error {
	tag, err := p.db.Exec(ctx, `DELETE FROM registrations WHERE id = $1`, id)
	if err != nil {
		return &TransportError{Op: "delete registration", Err: err}
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) GetByID(ctx context.Context, id string) (*model.Registration, error) {
	row := p.db.QueryRow(ctx,
		`SELECT `+registrationColumns+` FROM registrations WHERE id = $1`, id)

	r, err := scanRegistration(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, &TransportError{Op: "get registration", Err: err}
	}
	return r, nil
}

func (p *Postgres) Select(ctx context.Context, f Filter) ([]model.Registration, error) {
	where, args, err := buildWhere(f)
	if err != nil {
		return nil, err
	}

	sql := `SELECT ` + registrationColumns + ` FROM registrations` + where
	if f.OrderBy != "" {
		if !allowedColumns[f.OrderBy] {
			return nil, fmt.Errorf("cannot order by column %q", f.OrderBy)
		}
		sql += " ORDER BY " + f.OrderBy
		if f.Desc {
			sql += " DESC"
		}
	}
	if f.Limit > 0 {
		sql += fmt.Sprintf(" LIMIT %d", f.Limit)
	}

	rows, err := p.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, &TransportError{Op: "select registrations", Err: err}
	}
	defer rows.Close()

	var out []model.Registration
	for rows.Next() {
		r, err := scanRegistration(rows)
		if err != nil {
			return nil, &TransportError{Op: "scan registration", Err: err}
		}
		out = append(out, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, &TransportError{Op: "select registrations", Err: err}
	}
	return out, nil
}

func (p *Postgres) Count(ctx context.Context, f Filter) (int, error) {
	where, args, err := buildWhere(f)
	if err != nil {
		return 0, err
	}

	var n int
	err = p.db.QueryRow(ctx, `SELECT COUNT(*) FROM registrations`+where, args...).Scan(&n)
	if err != nil {
		return 0, &TransportError{Op: "count registrations", Err: err}
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRegistration(row rowScanner) (*model.Registration, error) {
	var r model.Registration
	err := row.Scan(
		&r.ID, &r.Block, &r.Lot, &r.FullName, &r.Document, &r.Marker,
		&r.Plate, &r.VisitorKind, &r.Notes, &r.CheckInAt, &r.CheckOutAt, &r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// buildWhere turns a Filter's predicate groups into a WHERE clause with
// positional args. Map keys are iterated in sorted order so the generated
// SQL is stable.
func buildWhere(f Filter) (string, []any, error) {
	var clauses []string
	var args []any

	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	for _, col := range sortedKeys(f.Equals) {
		if !allowedColumns[col] {
			return "", nil, fmt.Errorf("unknown column %q", col)
		}
		v := f.Equals[col]
		if v == nil {
			clauses = append(clauses, col+" IS NULL")
			continue
		}
		clauses = append(clauses, col+" = "+next(v))
	}

	for _, col := range sortedKeys(f.Ranges) {
		if !allowedColumns[col] {
			return "", nil, fmt.Errorf("unknown column %q", col)
		}
		rng := f.Ranges[col]
		if rng.Low != nil {
			clauses = append(clauses, col+" >= "+next(rng.Low))
		}
		if rng.High != nil {
			clauses = append(clauses, col+" <= "+next(rng.High))
		}
	}

	for _, col := range sortedKeys(f.Contains) {
		if !allowedColumns[col] {
			return "", nil, fmt.Errorf("unknown column %q", col)
		}
		clauses = append(clauses, col+" ILIKE "+next(likePattern(f.Contains[col])))
	}

	if len(f.ContainsAny) > 0 {
		var ors []string
		for _, col := range sortedKeys(f.ContainsAny) {
			if !allowedColumns[col] {
				return "", nil, fmt.Errorf("unknown column %q", col)
			}
			ors = append(ors, col+" ILIKE "+next(likePattern(f.ContainsAny[col])))
		}
		clauses = append(clauses, "("+strings.Join(ors, " OR ")+")")
	}

	if len(clauses) == 0 {
		return "", args, nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args, nil
}

func likePattern(s string) string {
	esc := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
	return "%" + esc + "%"
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var _ Store = (*Postgres)(nil)
var _ Store = (*Memory)(nil)
