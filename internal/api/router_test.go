package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/anandwan/awaas-backend/internal/config"
	"github.com/anandwan/awaas-backend/internal/occupancy"
	"github.com/anandwan/awaas-backend/internal/service/analytics"
	authService "github.com/anandwan/awaas-backend/internal/service/auth"
	"github.com/anandwan/awaas-backend/internal/service/dashboard"
	"github.com/anandwan/awaas-backend/internal/service/donors"
	guestsService "github.com/anandwan/awaas-backend/internal/service/guests"
	"github.com/anandwan/awaas-backend/internal/store/admins"
	donorStore "github.com/anandwan/awaas-backend/internal/store/donors"
	guestStore "github.com/anandwan/awaas-backend/internal/store/guests"
)

type memGuests struct {
	mu     sync.Mutex
	guests []*guestStore.Guest
}

func (m *memGuests) Create(_ context.Context, g *guestStore.Guest) (*guestStore.Guest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g.ID = uuid.NewString()
	g.CreatedAt = time.Now()
	m.guests = append(m.guests, g)
	return g, nil
}

func (m *memGuests) GetByID(_ context.Context, id string) (*guestStore.Guest, error) {
	for _, g := range m.guests {
		if g.ID == id {
			return g, nil
		}
	}
	return nil, nil
}

func (m *memGuests) Count(_ context.Context, p occupancy.Predicate) (int, error) {
	n := 0
	for _, g := range m.guests {
		if p.Matches(g.Booking()) {
			n++
		}
	}
	return n, nil
}

func (m *memGuests) List(_ context.Context, f guestStore.ListFilter) ([]*guestStore.Guest, int, error) {
	var out []*guestStore.Guest
	for _, g := range m.guests {
		if f.Where.Matches(g.Booking()) {
			out = append(out, g)
		}
	}
	return out, len(out), nil
}

func (m *memGuests) ListOverlapping(_ context.Context, from, to time.Time) ([]*guestStore.Guest, error) {
	var out []*guestStore.Guest
	for _, g := range m.guests {
		if !g.ArrivalDate.After(to) && !g.DepartureDate.Before(from) {
			out = append(out, g)
		}
	}
	return out, nil
}

func (m *memGuests) ListArrivedSince(_ context.Context, from time.Time) ([]*guestStore.Guest, error) {
	var out []*guestStore.Guest
	for _, g := range m.guests {
		if !g.ArrivalDate.Before(from) {
			out = append(out, g)
		}
	}
	return out, nil
}

type memDonors struct{ donors []*donorStore.Donor }

func (m *memDonors) Create(_ context.Context, d *donorStore.Donor) (*donorStore.Donor, error) {
	d.ID = uuid.NewString()
	m.donors = append(m.donors, d)
	return d, nil
}

func (m *memDonors) List(_ context.Context, _ donorStore.ListFilter) ([]*donorStore.Donor, int, error) {
	return m.donors, len(m.donors), nil
}

func (m *memDonors) Latest(context.Context) (*donorStore.Donor, error) {
	if len(m.donors) == 0 {
		return nil, nil
	}
	return m.donors[len(m.donors)-1], nil
}

func (m *memDonors) Totals(context.Context) (donorStore.Totals, error) {
	var t donorStore.Totals
	for _, d := range m.donors {
		t.TotalAmount += d.Amount
		t.TotalDonors++
	}
	return t, nil
}

type memAdmins struct{ byEmail map[string]*admins.Admin }

func (m *memAdmins) Create(_ context.Context, a *admins.Admin) (*admins.Admin, error) {
	if _, ok := m.byEmail[a.Email]; ok {
		return nil, admins.ErrDuplicateEmail
	}
	a.ID = uuid.NewString()
	m.byEmail[a.Email] = a
	return a, nil
}

func (m *memAdmins) GetByID(_ context.Context, id string) (*admins.Admin, error) {
	for _, a := range m.byEmail {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, nil
}

func (m *memAdmins) GetByEmail(_ context.Context, email string) (*admins.Admin, error) {
	return m.byEmail[strings.ToLower(email)], nil
}

func (m *memAdmins) UpdatePassword(context.Context, string, string) error { return nil }
func (m *memAdmins) UpdateName(context.Context, string, string) error     { return nil }
func (m *memAdmins) Count(context.Context) (int, error)                   { return len(m.byEmail), nil }

type memRevocations struct {
	mu  sync.Mutex
	ids map[string]bool
}

func (m *memRevocations) Revoke(_ context.Context, jti string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ids[jti] = true
	return nil
}

func (m *memRevocations) IsRevoked(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ids[jti], nil
}

type memOTPs map[string]string

func (m memOTPs) Save(_ context.Context, e, o string) error       { m[e] = o; return nil }
func (m memOTPs) Get(_ context.Context, e string) (string, error) { return m[e], nil }
func (m memOTPs) Delete(_ context.Context, e string) error        { delete(m, e); return nil }

type nopMailer struct{}

func (nopMailer) SendPasswordChangeOTPEmail(string, string) error { return nil }

// 2024-03-16 01:00 IST.
var testNow = time.Date(2024, 3, 15, 19, 30, 0, 0, time.UTC)

func newTestRouter(clock occupancy.Clock) (*gin.Engine, *memGuests) {
	return newTestRouterWith(clock, config.Config{JWTSigningSecret: "test-secret", JWTTTL: time.Hour, RateLimitRPS: 100, RateLimitBurst: 100, CORSOrigins: "*"})
}

func newTestRouterWith(clock occupancy.Clock, cfg config.Config) (*gin.Engine, *memGuests) {
	gin.SetMode(gin.TestMode)
	log := zap.NewNop()

	gs := &memGuests{}
	revocations := &memRevocations{ids: map[string]bool{}}
	svc := Services{
		Guests:      guestsService.NewGuestsService(log, gs, nil, clock, 330),
		Auth:        authService.NewAuthService(log, &memAdmins{byEmail: map[string]*admins.Admin{}}, revocations, memOTPs{}, nopMailer{}, cfg.JWTSigningSecret, cfg.JWTTTL),
		Dashboard:   dashboard.NewDashboardService(log, clock, 330, gs),
		Analytics:   analytics.NewAnalyticsService(log, gs, clock, 330),
		Donors:      donors.NewDonorsService(log, &memDonors{}),
		Revocations: revocations,
	}

	r, err := NewEngine(log, cfg.Proxies())
	if err != nil {
		panic(err)
	}
	RegisterRoutes(r, log, cfg, svc)
	return r, gs
}

func do(r http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func registerAdmin(t *testing.T, r http.Handler) string {
	t.Helper()
	w := do(r, http.MethodPost, "/api/auth/register", "", gin.H{"name": "Admin", "email": "admin@awaas.org", "password": "password123"})
	if w.Code != http.StatusCreated {
		t.Fatalf("register admin: %d %s", w.Code, w.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp.Token == "" {
		t.Fatalf("register response: %s", w.Body.String())
	}
	return resp.Token
}

func registration(arrival, departure, group string) gin.H {
	return gin.H{
		"fullName": "Asha Patil", "email": "asha@example.com", "phone": "+919876543210",
		"purpose": "Volunteering", "arrivalDate": arrival, "departureDate": departure,
		"mealRequired": true, "groupType": group, "groupSize": "1",
	}
}

func TestPublicRoutes(t *testing.T) {
	r, _ := newTestRouter(occupancy.FixedClock(testNow))
	for _, path := range []string{"/", "/health", "/docs", "/openapi.yaml", "/metrics"} {
		if w := do(r, http.MethodGet, path, "", nil); w.Code != http.StatusOK {
			t.Errorf("GET %s = %d", path, w.Code)
		}
	}
}

func TestGuestRegistration(t *testing.T) {
	r, gs := newTestRouter(occupancy.FixedClock(testNow))

	tests := []struct {
		name string
		body gin.H
		want int
	}{
		{"valid", registration("2024-03-20", "2024-03-22", "family"), http.StatusCreated},
		{"same day", registration("2024-03-20", "2024-03-20", "single"), http.StatusCreated},
		{"inverted", registration("2024-03-22", "2024-03-20", "single"), http.StatusBadRequest},
		{"bad group", registration("2024-03-20", "2024-03-22", "couple"), http.StatusBadRequest},
		{"bad date", registration("20-03-2024", "2024-03-22", "single"), http.StatusBadRequest},
		{"missing name", gin.H{"email": "a@example.com"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := do(r, http.MethodPost, "/api/guests", "", tt.body); w.Code != tt.want {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.want, w.Body.String())
			}
		})
	}
	if len(gs.guests) != 2 {
		t.Fatalf("stored %d guests, want 2", len(gs.guests))
	}
}

func TestAdminRoutesRequireToken(t *testing.T) {
	r, _ := newTestRouter(occupancy.FixedClock(testNow))
	for _, path := range []string{"/api/admin/dashboard-stats", "/api/admin/guests", "/api/guests/all", "/api/auth/profile"} {
		if w := do(r, http.MethodGet, path, "", nil); w.Code != http.StatusUnauthorized {
			t.Errorf("GET %s without token = %d", path, w.Code)
		}
		if w := do(r, http.MethodGet, path, "garbage", nil); w.Code != http.StatusUnauthorized {
			t.Errorf("GET %s with bad token = %d", path, w.Code)
		}
	}
}

func TestDashboardStats(t *testing.T) {
	r, _ := newTestRouter(occupancy.FixedClock(testNow))
	token := registerAdmin(t, r)

	for _, body := range []gin.H{
		registration("2024-03-16", "2024-03-16", "single"), // current
		registration("2024-03-10", "2024-03-20", "single"), // current
		registration("2024-03-17", "2024-03-18", "single"), // upcoming
		registration("2024-03-01", "2024-03-02", "single"), // completed
	} {
		if w := do(r, http.MethodPost, "/api/guests", "", body); w.Code != http.StatusCreated {
			t.Fatalf("seed: %d %s", w.Code, w.Body.String())
		}
	}

	w := do(r, http.MethodGet, "/api/admin/dashboard-stats", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var stats dashboard.Stats
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatal(err)
	}
	if stats.CurrentGuests != 2 || stats.UpcomingArrivals != 1 || stats.CompletedStays != 1 || stats.TotalBookings != 4 || stats.MealRequired != 4 {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestDashboardStatsClockUnavailable(t *testing.T) {
	broken := occupancy.ClockFunc(func() (time.Time, error) { return time.Time{}, errors.New("no time source") })
	r, _ := newTestRouter(broken)
	token := registerAdmin(t, r)

	if w := do(r, http.MethodGet, "/api/admin/dashboard-stats", token, nil); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	r, _ := newTestRouter(occupancy.FixedClock(testNow))
	token := registerAdmin(t, r)

	if w := do(r, http.MethodGet, "/api/auth/profile", token, nil); w.Code != http.StatusOK {
		t.Fatalf("profile = %d", w.Code)
	}
	if w := do(r, http.MethodPost, "/api/auth/logout", token, nil); w.Code != http.StatusOK {
		t.Fatalf("logout = %d", w.Code)
	}
	if w := do(r, http.MethodGet, "/api/auth/profile", token, nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("profile after logout = %d, want 401", w.Code)
	}
}

func TestLoginErrors(t *testing.T) {
	r, _ := newTestRouter(occupancy.FixedClock(testNow))
	registerAdmin(t, r)

	if w := do(r, http.MethodPost, "/api/auth/login", "", gin.H{"email": "nobody@awaas.org", "password": "x"}); w.Code != http.StatusNotFound {
		t.Errorf("unknown email = %d, want 404", w.Code)
	}
	if w := do(r, http.MethodPost, "/api/auth/login", "", gin.H{"email": "admin@awaas.org", "password": "wrong"}); w.Code != http.StatusUnauthorized {
		t.Errorf("wrong password = %d, want 401", w.Code)
	}
}

func TestRegisterOnlyBootstrapsFirstAdmin(t *testing.T) {
	r, _ := newTestRouter(occupancy.FixedClock(testNow))
	registerAdmin(t, r)

	w := do(r, http.MethodPost, "/api/auth/register", "", gin.H{"name": "Stranger", "email": "stranger@example.org", "password": "password123"})
	if w.Code != http.StatusForbidden {
		t.Fatalf("second register = %d, want 403", w.Code)
	}
	if w := do(r, http.MethodPost, "/api/auth/login", "", gin.H{"email": "stranger@example.org", "password": "password123"}); w.Code != http.StatusNotFound {
		t.Fatalf("login as refused admin = %d, want 404", w.Code)
	}
}

func TestAdminGuests(t *testing.T) {
	r, gs := newTestRouter(occupancy.FixedClock(testNow))
	token := registerAdmin(t, r)
	do(r, http.MethodPost, "/api/guests", "", registration("2024-03-17", "2024-03-18", "group"))

	w := do(r, http.MethodGet, "/api/admin/guests?status=upcoming", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list = %d: %s", w.Code, w.Body.String())
	}
	var env struct {
		Success bool `json:"success"`
		Data    struct {
			Guests []struct {
				ID     string `json:"id"`
				Status string `json:"status"`
			} `json:"guests"`
			Total int `json:"total"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatal(err)
	}
	if !env.Success || env.Data.Total != 1 || env.Data.Guests[0].Status != "upcoming" {
		t.Fatalf("envelope = %+v", env)
	}

	if w := do(r, http.MethodGet, "/api/admin/guests?status=cancelled", token, nil); w.Code != http.StatusBadRequest {
		t.Errorf("bad status = %d, want 400", w.Code)
	}
	if w := do(r, http.MethodGet, "/api/admin/guests?page=x", token, nil); w.Code != http.StatusBadRequest {
		t.Errorf("bad page = %d, want 400", w.Code)
	}
	if w := do(r, http.MethodGet, "/api/admin/guests/"+gs.guests[0].ID, token, nil); w.Code != http.StatusOK {
		t.Errorf("get = %d", w.Code)
	}
	if w := do(r, http.MethodGet, "/api/admin/guests/"+uuid.NewString(), token, nil); w.Code != http.StatusNotFound {
		t.Errorf("get unknown = %d, want 404", w.Code)
	}
}

func TestCalendarEvents(t *testing.T) {
	r, _ := newTestRouter(occupancy.FixedClock(testNow))
	token := registerAdmin(t, r)
	do(r, http.MethodPost, "/api/guests", "", registration("2024-03-17", "2024-03-18", "group"))

	if w := do(r, http.MethodGet, "/api/admin/calendar-events", token, nil); w.Code != http.StatusOK {
		t.Fatalf("default range = %d", w.Code)
	}
	if w := do(r, http.MethodGet, "/api/admin/calendar-events?start=2024-03-20&end=2024-03-10", token, nil); w.Code != http.StatusBadRequest {
		t.Errorf("inverted range = %d, want 400", w.Code)
	}
	if w := do(r, http.MethodGet, "/api/admin/calendar-events?start=soon", token, nil); w.Code != http.StatusBadRequest {
		t.Errorf("bad start = %d, want 400", w.Code)
	}
}

func TestDonorsAndAnalytics(t *testing.T) {
	r, _ := newTestRouter(occupancy.FixedClock(testNow))
	token := registerAdmin(t, r)

	w := do(r, http.MethodPost, "/api/admin/donors", token, gin.H{"name": "Meera", "amount": 5000, "date": "2024-03-01", "mode": "online", "type": "recurring"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create donor = %d: %s", w.Code, w.Body.String())
	}
	if w := do(r, http.MethodPost, "/api/admin/donors", token, gin.H{"name": "X", "amount": 5, "date": "2024-03-01", "mode": "barter", "type": "one_time"}); w.Code != http.StatusBadRequest {
		t.Errorf("bad mode = %d, want 400", w.Code)
	}
	if w := do(r, http.MethodGet, "/api/admin/donation-summary", token, nil); w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"totalAmount":5000`) {
		t.Errorf("summary = %d %s", w.Code, w.Body.String())
	}
	if w := do(r, http.MethodGet, "/api/admin/donors?type=recurring", token, nil); w.Code != http.StatusOK {
		t.Errorf("list donors = %d", w.Code)
	}
	if w := do(r, http.MethodGet, "/api/admin/booking-analytics", token, nil); w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "monthlyData") {
		t.Errorf("analytics = %d %s", w.Code, w.Body.String())
	}
}

func TestRegistrationRateLimitIgnoresForwardedFor(t *testing.T) {
	cfg := config.Config{JWTSigningSecret: "test-secret", JWTTTL: time.Hour, RateLimitRPS: 1, RateLimitBurst: 3}
	r, _ := newTestRouterWith(occupancy.FixedClock(testNow), cfg)

	accepted := 0
	for i := 0; i < 20; i++ {
		body, _ := json.Marshal(registration("2024-03-17", "2024-03-18", "single"))
		req := httptest.NewRequest(http.MethodPost, "/api/guests", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i+1))
		req.RemoteAddr = "10.0.0.1:4000"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusTooManyRequests {
			accepted++
		}
	}
	if accepted != 3 {
		t.Fatalf("accepted %d requests from one socket, want 3", accepted)
	}
}

func TestRegistrationRateLimitHonorsTrustedProxy(t *testing.T) {
	cfg := config.Config{JWTSigningSecret: "test-secret", JWTTTL: time.Hour, RateLimitRPS: 1, RateLimitBurst: 1, TrustedProxies: "10.0.0.1"}
	r, _ := newTestRouterWith(occupancy.FixedClock(testNow), cfg)

	for i := 0; i < 3; i++ {
		body, _ := json.Marshal(registration("2024-03-17", "2024-03-18", "single"))
		req := httptest.NewRequest(http.MethodPost, "/api/guests", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i+1))
		req.RemoteAddr = "10.0.0.1:4000"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code == http.StatusTooManyRequests {
			t.Fatalf("client %d behind trusted proxy was limited", i+1)
		}
	}
}

func TestGuestRegistrationRejectsControlCharacters(t *testing.T) {
	r, gs := newTestRouter(occupancy.FixedClock(testNow))

	for _, field := range []string{"fullName", "purpose", "phone"} {
		body := registration("2024-03-17", "2024-03-18", "single")
		body[field] = "Eve\r\nBcc: list@example.com"
		if w := do(r, http.MethodPost, "/api/guests", "", body); w.Code != http.StatusBadRequest {
			t.Errorf("%s with CRLF: status %d, want 400", field, w.Code)
		}
	}
	if len(gs.guests) != 0 {
		t.Fatalf("stored %d guests, want 0", len(gs.guests))
	}
}
