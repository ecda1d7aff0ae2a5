package guests

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/anandwan/awaas-backend/internal/events"
	"github.com/anandwan/awaas-backend/internal/metrics"
	"github.com/anandwan/awaas-backend/internal/occupancy"
	guestStore "github.com/anandwan/awaas-backend/internal/store/guests"
)

var (
	ErrGuestNotFound = errors.New("guest not found")
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidStatus = errors.New("invalid status")
	ErrInvalidRange  = errors.New("range end is before range start")
)

// GroupTypes are the accepted values of a registration's group type.
var GroupTypes = []string{"single", "family", "group", "volunteer"}

func ValidGroupType(s string) bool {
	for _, g := range GroupTypes {
		if s == g {
			return true
		}
	}
	return false
}

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	MaxPage         = 100000
)

type Repository interface {
	Create(ctx context.Context, g *guestStore.Guest) (*guestStore.Guest, error)
	GetByID(ctx context.Context, id string) (*guestStore.Guest, error)
	Count(ctx context.Context, p occupancy.Predicate) (int, error)
	List(ctx context.Context, f guestStore.ListFilter) ([]*guestStore.Guest, int, error)
	ListOverlapping(ctx context.Context, from, to time.Time) ([]*guestStore.Guest, error)
}

// Publisher emits guest events. A nil Publisher disables publishing.
type Publisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

type RegistrationRequest struct {
	FullName        string `json:"fullName" binding:"required,max=200,singleline"`
	Email           string `json:"email" binding:"required,email"`
	Phone           string `json:"phone" binding:"required,min=7,max=20,singleline"`
	Purpose         string `json:"purpose" binding:"required,max=200,singleline"`
	ArrivalDate     string `json:"arrivalDate" binding:"required"`
	DepartureDate   string `json:"departureDate" binding:"required"`
	MealRequired    bool   `json:"mealRequired"`
	GroupType       string `json:"groupType" binding:"required,grouptype"`
	GroupSize       string `json:"groupSize" binding:"required,max=50,singleline"`
	SpecialRequests string `json:"specialRequests" binding:"max=1000"`
}

// GuestView is a stored guest with its status for today.
type GuestView struct {
	*guestStore.Guest
	Status occupancy.Status `json:"status"`
}

type ListRequest struct {
	Page      int
	Limit     int
	Status    string
	Purpose   string
	GroupType string
	Search    string
}

type Page struct {
	Guests     []GuestView `json:"guests"`
	Total      int         `json:"total"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	TotalPages int         `json:"totalPages"`
}

type GuestsService struct {
	log           *zap.Logger
	repo          Repository
	publisher     Publisher
	clock         occupancy.Clock
	offsetMinutes int
}

func NewGuestsService(log *zap.Logger, repo Repository, publisher Publisher, clock occupancy.Clock, offsetMinutes int) *GuestsService {
	return &GuestsService{
		log:           log,
		repo:          repo,
		publisher:     publisher,
		clock:         clock,
		offsetMinutes: offsetMinutes,
	}
}

// ParseDate accepts a calendar date (YYYY-MM-DD, read as UTC midnight) or an
// RFC 3339 timestamp.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t.UTC(), nil
}

func (s *GuestsService) Register(ctx context.Context, req RegistrationRequest) (*guestStore.Guest, error) {
	arrival, err := ParseDate(req.ArrivalDate)
	if err != nil {
		metrics.GuestRegistrationsTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}
	departure, err := ParseDate(req.DepartureDate)
	if err != nil {
		metrics.GuestRegistrationsTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	g := &guestStore.Guest{
		FullName:        strings.TrimSpace(req.FullName),
		Email:           strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:           strings.TrimSpace(req.Phone),
		Purpose:         strings.TrimSpace(req.Purpose),
		ArrivalDate:     arrival,
		DepartureDate:   departure,
		MealRequired:    req.MealRequired,
		GroupType:       req.GroupType,
		GroupSize:       strings.TrimSpace(req.GroupSize),
		SpecialRequests: strings.TrimSpace(req.SpecialRequests),
	}
	if err := g.Booking().Validate(); err != nil {
		metrics.GuestRegistrationsTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	g, err = s.repo.Create(ctx, g)
	if err != nil {
		metrics.GuestRegistrationsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to store guest: %w", err)
	}
	metrics.GuestRegistrationsTotal.WithLabelValues("created").Inc()
	s.log.Info("Guest registered", zap.String("guest_id", g.ID), zap.Time("arrival", g.ArrivalDate))

	s.publishRegistered(ctx, g)
	return g, nil
}

// publishRegistered never fails the registration; the guest row is the source of truth.
func (s *GuestsService) publishRegistered(ctx context.Context, g *guestStore.Guest) {
	if s.publisher == nil {
		return
	}
	e := events.NewGuestRegistered(g.CreatedAt)
	e.GuestID = g.ID
	e.FullName = g.FullName
	e.Email = g.Email
	e.Phone = g.Phone
	e.Purpose = g.Purpose
	e.ArrivalDate = g.ArrivalDate
	e.DepartureDate = g.DepartureDate
	e.MealRequired = g.MealRequired
	e.GroupType = g.GroupType
	e.GroupSize = g.GroupSize

	if err := s.publisher.PublishJSON(ctx, g.ID, e); err != nil {
		s.log.Warn("Failed to publish guest event", zap.Error(err), zap.String("guest_id", g.ID))
	}
}

func (s *GuestsService) views(gs []*guestStore.Guest, w occupancy.DayWindow) []GuestView {
	out := make([]GuestView, 0, len(gs))
	for _, g := range gs {
		out = append(out, GuestView{Guest: g, Status: occupancy.Classify(g.Booking(), w)})
	}
	return out
}

// Paginate normalizes a 1-based page and page size and returns the row offset.
// page is clamped to [1, MaxPage] and limit to [1, MaxPageSize], defaulting to
// DefaultPageSize.
func Paginate(page, limit int) (int, int, int) {
	page = min(max(page, 1), MaxPage)
	if limit < 1 {
		limit = DefaultPageSize
	}
	limit = min(limit, MaxPageSize)
	return page, limit, (page - 1) * limit
}

func (s *GuestsService) List(ctx context.Context, req ListRequest) (*Page, error) {
	w, err := occupancy.Today(s.clock, s.offsetMinutes)
	if err != nil {
		return nil, err
	}

	page, limit, offset := Paginate(req.Page, req.Limit)

	f := guestStore.ListFilter{
		Purpose:   strings.TrimSpace(req.Purpose),
		GroupType: req.GroupType,
		Search:    strings.TrimSpace(req.Search),
		Limit:     limit,
		Offset:    offset,
	}
	if req.Status != "" && req.Status != "all" {
		st, ok := occupancy.ParseStatus(req.Status)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, req.Status)
		}
		f.Where = occupancy.StatusPredicate(st, w)
	}

	gs, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to list guests: %w", err)
	}

	return &Page{
		Guests:     s.views(gs, w),
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
	}, nil
}

// All returns every guest, latest arrival first.
func (s *GuestsService) All(ctx context.Context) ([]GuestView, error) {
	w, err := occupancy.Today(s.clock, s.offsetMinutes)
	if err != nil {
		return nil, err
	}
	gs, _, err := s.repo.List(ctx, guestStore.ListFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list guests: %w", err)
	}
	return s.views(gs, w), nil
}

func (s *GuestsService) Get(ctx context.Context, id string) (*GuestView, error) {
	w, err := occupancy.Today(s.clock, s.offsetMinutes)
	if err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrGuestNotFound
	}
	g, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get guest: %w", err)
	}
	if g == nil {
		return nil, ErrGuestNotFound
	}
	return &GuestView{Guest: g, Status: occupancy.Classify(g.Booking(), w)}, nil
}

// Calendar returns the guests whose stay overlaps [from, to].
func (s *GuestsService) Calendar(ctx context.Context, from, to time.Time) ([]GuestView, error) {
	if to.Before(from) {
		return nil, ErrInvalidRange
	}
	w, err := occupancy.Today(s.clock, s.offsetMinutes)
	if err != nil {
		return nil, err
	}
	gs, err := s.repo.ListOverlapping(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list calendar guests: %w", err)
	}
	return s.views(gs, w), nil
}

func (s *GuestsService) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx, occupancy.Predicate{})
}
