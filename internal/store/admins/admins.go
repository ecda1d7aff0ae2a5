package admins

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/anandwan/awaas-backend/internal/store"
)

var ErrDuplicateEmail = errors.New("admin email already registered")

type Admin struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Don't expose in JSON
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type AdminsRepository struct {
	db  *store.DB
	log *zap.Logger
}

func NewAdminsRepository(db *store.DB, log *zap.Logger) *AdminsRepository {
	return &AdminsRepository{db: db, log: log}
}

func (r *AdminsRepository) Create(ctx context.Context, admin *Admin) (*Admin, error) {
	query := `
		INSERT INTO admins (name, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`

	err := r.db.Pool.QueryRow(ctx, query, admin.Name, admin.Email, admin.PasswordHash).
		Scan(&admin.ID, &admin.CreatedAt, &admin.UpdatedAt)
	if err != nil {
		if store.IsUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}

	return admin, nil
}

func (r *AdminsRepository) GetByID(ctx context.Context, id string) (*Admin, error) {
	query := `
		SELECT id, name, email, password_hash, created_at, updated_at
		FROM admins
		WHERE id = $1`

	return r.getOne(ctx, query, id)
}

func (r *AdminsRepository) GetByEmail(ctx context.Context, email string) (*Admin, error) {
	query := `
		SELECT id, name, email, password_hash, created_at, updated_at
		FROM admins
		WHERE lower(email) = lower($1)`

	return r.getOne(ctx, query, email)
}

// getOne returns nil, nil when no row matches.
func (r *AdminsRepository) getOne(ctx context.Context, query string, arg string) (*Admin, error) {
	admin := &Admin{}
	err := r.db.Pool.QueryRow(ctx, query, arg).Scan(
		&admin.ID, &admin.Name, &admin.Email, &admin.PasswordHash, &admin.CreatedAt, &admin.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return admin, nil
}

func (r *AdminsRepository) UpdatePassword(ctx context.Context, adminID, passwordHash string) error {
	query := `
		UPDATE admins
		SET password_hash = $1, updated_at = now()
		WHERE id = $2`

	result, err := r.db.Pool.Exec(ctx, query, passwordHash, adminID)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	return nil
}

func (r *AdminsRepository) UpdateName(ctx context.Context, adminID, name string) error {
	query := `
		UPDATE admins
		SET name = $1, updated_at = now()
		WHERE id = $2`

	result, err := r.db.Pool.Exec(ctx, query, name, adminID)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	return nil
}

func (r *AdminsRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM admins`).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}
