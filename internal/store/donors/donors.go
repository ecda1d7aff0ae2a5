package donors

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/anandwan/awaas-backend/internal/store"
)

type Donor struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Amount    float64   `json:"amount"`
	Date      time.Time `json:"date"`
	Mode      string    `json:"mode"`
	Type      string    `json:"type"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type ListFilter struct {
	Type   string
	Mode   string
	Limit  int
	Offset int
}

// Totals aggregates the donors table.
type Totals struct {
	TotalAmount     float64
	TotalDonors     int
	RecurringDonors int
}

type DonorsRepository struct {
	db  *store.DB
	log *zap.Logger
}

func NewDonorsRepository(db *store.DB, log *zap.Logger) *DonorsRepository {
	return &DonorsRepository{db: db, log: log}
}

func (r *DonorsRepository) Create(ctx context.Context, d *Donor) (*Donor, error) {
	query := `
		INSERT INTO donors (name, amount, donated_on, mode, type, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := r.db.Pool.QueryRow(ctx, query, d.Name, d.Amount, d.Date, d.Mode, d.Type, d.Notes).
		Scan(&d.ID, &d.CreatedAt)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (r *DonorsRepository) List(ctx context.Context, f ListFilter) ([]*Donor, int, error) {
	var (
		conds []string
		args  []interface{}
	)
	if f.Type != "" {
		args = append(args, f.Type)
		conds = append(conds, fmt.Sprintf("type = $%d", len(args)))
	}
	if f.Mode != "" {
		args = append(args, f.Mode)
		conds = append(conds, fmt.Sprintf("mode = $%d", len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM donors`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, f.Limit, f.Offset)
	query := fmt.Sprintf(`
		SELECT id, name, amount, donated_on, mode, type, notes, created_at
		FROM donors%s
		ORDER BY donated_on DESC, created_at DESC
		LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*Donor
	for rows.Next() {
		d := &Donor{}
		if err := rows.Scan(&d.ID, &d.Name, &d.Amount, &d.Date, &d.Mode, &d.Type, &d.Notes, &d.CreatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, d)
	}
	return out, total, rows.Err()
}

// Latest returns the most recent donation, or nil when there are none.
func (r *DonorsRepository) Latest(ctx context.Context) (*Donor, error) {
	d := &Donor{}
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, name, amount, donated_on, mode, type, notes, created_at
		FROM donors
		ORDER BY donated_on DESC, created_at DESC
		LIMIT 1`).Scan(&d.ID, &d.Name, &d.Amount, &d.Date, &d.Mode, &d.Type, &d.Notes, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return d, nil
}

// Totals counts donors by distinct name.
func (r *DonorsRepository) Totals(ctx context.Context) (Totals, error) {
	var t Totals
	err := r.db.Pool.QueryRow(ctx, `
		SELECT
		  COALESCE(SUM(amount), 0)::float8,
		  COUNT(DISTINCT lower(name)),
		  COUNT(DISTINCT lower(name)) FILTER (WHERE type = 'recurring')
		FROM donors`).Scan(&t.TotalAmount, &t.TotalDonors, &t.RecurringDonors)
	return t, err
}
