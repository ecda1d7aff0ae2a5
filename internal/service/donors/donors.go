package donors

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/anandwan/awaas-backend/internal/service/guests"
	donorStore "github.com/anandwan/awaas-backend/internal/store/donors"
)

var (
	ErrInvalidMode = errors.New("invalid donation mode")
	ErrInvalidType = errors.New("invalid donor type")
)

var (
	Modes = []string{"online", "cash", "cheque", "bank_transfer"}
	Types = []string{"recurring", "one_time"}
)

type Repository interface {
	Create(ctx context.Context, d *donorStore.Donor) (*donorStore.Donor, error)
	List(ctx context.Context, f donorStore.ListFilter) ([]*donorStore.Donor, int, error)
	Latest(ctx context.Context) (*donorStore.Donor, error)
	Totals(ctx context.Context) (donorStore.Totals, error)
}

type CreateRequest struct {
	Name   string  `json:"name" binding:"required,max=200"`
	Amount float64 `json:"amount" binding:"required,gt=0"`
	Date   string  `json:"date" binding:"required"`
	Mode   string  `json:"mode" binding:"required"`
	Type   string  `json:"type" binding:"required"`
	Notes  string  `json:"notes" binding:"max=1000"`
}

type ListRequest struct {
	Page  int
	Limit int
	Type  string
	Mode  string
}

type Page struct {
	Donors     []*donorStore.Donor `json:"donors"`
	Total      int                 `json:"total"`
	Page       int                 `json:"page"`
	Limit      int                 `json:"limit"`
	TotalPages int                 `json:"totalPages"`
}

type Summary struct {
	LastDonation    *donorStore.Donor `json:"lastDonation"`
	TotalAmount     float64           `json:"totalAmount"`
	TotalDonors     int               `json:"totalDonors"`
	RecurringDonors int               `json:"recurringDonors"`
}

type DonorsService struct {
	log  *zap.Logger
	repo Repository
}

func NewDonorsService(log *zap.Logger, repo Repository) *DonorsService {
	return &DonorsService{log: log, repo: repo}
}

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

func (s *DonorsService) Create(ctx context.Context, req CreateRequest) (*donorStore.Donor, error) {
	if !oneOf(req.Mode, Modes) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, req.Mode)
	}
	if !oneOf(req.Type, Types) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidType, req.Type)
	}
	date, err := guests.ParseDate(req.Date)
	if err != nil {
		return nil, err
	}

	d, err := s.repo.Create(ctx, &donorStore.Donor{
		Name:   strings.TrimSpace(req.Name),
		Amount: req.Amount,
		Date:   date,
		Mode:   req.Mode,
		Type:   req.Type,
		Notes:  strings.TrimSpace(req.Notes),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store donor: %w", err)
	}
	s.log.Info("Donation recorded", zap.String("donor_id", d.ID), zap.Float64("amount", d.Amount))
	return d, nil
}

func (s *DonorsService) List(ctx context.Context, req ListRequest) (*Page, error) {
	if req.Mode != "" && !oneOf(req.Mode, Modes) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, req.Mode)
	}
	if req.Type != "" && !oneOf(req.Type, Types) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidType, req.Type)
	}

	page, limit, offset := guests.Paginate(req.Page, req.Limit)

	ds, total, err := s.repo.List(ctx, donorStore.ListFilter{Type: req.Type, Mode: req.Mode, Limit: limit, Offset: offset})
	if err != nil {
		return nil, fmt.Errorf("failed to list donors: %w", err)
	}
	if ds == nil {
		ds = []*donorStore.Donor{}
	}
	return &Page{
		Donors:     ds,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
	}, nil
}

func (s *DonorsService) Summary(ctx context.Context) (*Summary, error) {
	last, err := s.repo.Latest(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load latest donation: %w", err)
	}
	t, err := s.repo.Totals(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to total donations: %w", err)
	}
	return &Summary{
		LastDonation:    last,
		TotalAmount:     t.TotalAmount,
		TotalDonors:     t.TotalDonors,
		RecurringDonors: t.RecurringDonors,
	}, nil
}
