package guests

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/anandwan/awaas-backend/internal/occupancy"
	"github.com/anandwan/awaas-backend/internal/store"
)

type Guest struct {
	ID              string    `json:"id"`
	FullName        string    `json:"fullName"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone"`
	Purpose         string    `json:"purpose"`
	ArrivalDate     time.Time `json:"arrivalDate"`
	DepartureDate   time.Time `json:"departureDate"`
	MealRequired    bool      `json:"mealRequired"`
	GroupType       string    `json:"groupType"`
	GroupSize       string    `json:"groupSize"`
	SpecialRequests string    `json:"specialRequests,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Booking returns the fields the classifier works on.
func (g *Guest) Booking() occupancy.Booking {
	return occupancy.Booking{Arrival: g.ArrivalDate, Departure: g.DepartureDate, MealRequired: g.MealRequired}
}

// ListFilter narrows List. Zero values place no constraint; a zero Limit returns every row.
type ListFilter struct {
	Where     occupancy.Predicate
	Purpose   string
	GroupType string
	Search    string
	Limit     int
	Offset    int
}

const guestColumns = `id, full_name, email, phone, purpose, arrival_date, departure_date,
		       meal_required, group_type, group_size, special_requests, created_at`

type GuestsRepository struct {
	db  *store.DB
	log *zap.Logger
}

func NewGuestsRepository(db *store.DB, log *zap.Logger) *GuestsRepository {
	return &GuestsRepository{db: db, log: log}
}

func (r *GuestsRepository) Create(ctx context.Context, g *Guest) (*Guest, error) {
	query := `
		INSERT INTO guests (full_name, email, phone, purpose, arrival_date, departure_date,
		                    meal_required, group_type, group_size, special_requests)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at`

	err := r.db.Pool.QueryRow(ctx, query,
		g.FullName, g.Email, g.Phone, g.Purpose, g.ArrivalDate, g.DepartureDate,
		g.MealRequired, g.GroupType, g.GroupSize, g.SpecialRequests,
	).Scan(&g.ID, &g.CreatedAt)
	if err != nil {
		return nil, err
	}
	return g, nil
}

func (r *GuestsRepository) GetByID(ctx context.Context, id string) (*Guest, error) {
	query := `SELECT ` + guestColumns + ` FROM guests WHERE id = $1`

	g, err := scanGuest(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return g, nil
}

// Count returns the number of guests matching p.
func (r *GuestsRepository) Count(ctx context.Context, p occupancy.Predicate) (int, error) {
	w := &where{}
	w.addPredicate(p)

	var n int
	err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM guests`+w.sql(), w.args...).Scan(&n)
	return n, err
}

// List returns one page of guests ordered by arrival (latest first) and the total
// number of rows matching the filter.
func (r *GuestsRepository) List(ctx context.Context, f ListFilter) ([]*Guest, int, error) {
	w := &where{}
	w.addPredicate(f.Where)
	if f.Purpose != "" {
		w.add("purpose ILIKE $%d", f.Purpose)
	}
	if f.GroupType != "" {
		w.add("group_type = $%d", f.GroupType)
	}
	if f.Search != "" {
		w.add("(full_name ILIKE $%[1]d OR phone ILIKE $%[1]d OR email ILIKE $%[1]d)", "%"+f.Search+"%")
	}

	var total int
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM guests`+w.sql(), w.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := "ALL"
	if f.Limit > 0 {
		limit = w.next(f.Limit)
	}
	query := `SELECT ` + guestColumns + ` FROM guests` + w.sql() +
		` ORDER BY arrival_date DESC, created_at DESC LIMIT ` + limit + ` OFFSET ` + w.next(f.Offset)

	guests, err := r.query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, err
	}
	return guests, total, nil
}

// ListOverlapping returns guests whose stay intersects [from, to], both inclusive.
func (r *GuestsRepository) ListOverlapping(ctx context.Context, from, to time.Time) ([]*Guest, error) {
	w := &where{}
	w.addPredicate(occupancy.Predicate{ArrivalAtOrBefore: &to, DepartureAtOrAfter: &from})
	return r.query(ctx, `SELECT `+guestColumns+` FROM guests`+w.sql()+` ORDER BY arrival_date ASC`, w.args...)
}

// ListArrivedSince returns guests with arrival_date >= from, oldest first.
func (r *GuestsRepository) ListArrivedSince(ctx context.Context, from time.Time) ([]*Guest, error) {
	query := `SELECT ` + guestColumns + ` FROM guests WHERE arrival_date >= $1 ORDER BY arrival_date ASC`
	return r.query(ctx, query, from)
}

func (r *GuestsRepository) query(ctx context.Context, query string, args ...interface{}) ([]*Guest, error) {
	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var guests []*Guest
	for rows.Next() {
		g, err := scanGuest(rows)
		if err != nil {
			return nil, err
		}
		guests = append(guests, g)
	}
	return guests, rows.Err()
}

func scanGuest(row pgx.Row) (*Guest, error) {
	g := &Guest{}
	err := row.Scan(
		&g.ID, &g.FullName, &g.Email, &g.Phone, &g.Purpose, &g.ArrivalDate, &g.DepartureDate,
		&g.MealRequired, &g.GroupType, &g.GroupSize, &g.SpecialRequests, &g.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return g, nil
}
