package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	jwtMiddleware "github.com/anandwan/awaas-backend/internal/middleware"
	"github.com/anandwan/awaas-backend/internal/store/admins"
)

type AdminStore interface {
	Create(ctx context.Context, admin *admins.Admin) (*admins.Admin, error)
	GetByID(ctx context.Context, id string) (*admins.Admin, error)
	GetByEmail(ctx context.Context, email string) (*admins.Admin, error)
	UpdatePassword(ctx context.Context, adminID, passwordHash string) error
	UpdateName(ctx context.Context, adminID, name string) error
	Count(ctx context.Context) (int, error)
}

type TokenRevoker interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
}

type OTPStore interface {
	Save(ctx context.Context, email, otp string) error
	Get(ctx context.Context, email string) (string, error)
	Delete(ctx context.Context, email string) error
}

type OTPMailer interface {
	SendPasswordChangeOTPEmail(email string, otp string) error
}

type AuthService struct {
	log     *zap.Logger
	admins  AdminStore
	revoker TokenRevoker
	otps    OTPStore
	mailer  OTPMailer
	secret  string
	ttl     time.Duration
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=200"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token   string    `json:"token"`
	Admin   AdminInfo `json:"admin"`
	Expires time.Time `json:"expires"`
}

type AdminInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type PasswordChangeRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8"`
}

type ProfileUpdateRequest struct {
	Name string `json:"name" binding:"required,max=200"`
}

type OTPRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type OTPVerifyRequest struct {
	Email       string `json:"email" binding:"required,email"`
	OTP         string `json:"otp" binding:"required,len=6,numeric"`
	NewPassword string `json:"newPassword" binding:"required,min=8"`
}

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAdminExists        = errors.New("admin already exists")
	ErrAdminNotFound      = errors.New("admin not found")
	ErrInvalidOTP         = errors.New("invalid or expired OTP")
	ErrRegistrationClosed = errors.New("admin registration is closed")
)

func NewAuthService(log *zap.Logger, admins AdminStore, revoker TokenRevoker, otps OTPStore, mailer OTPMailer, secret string, ttl time.Duration) *AuthService {
	return &AuthService{
		log:     log,
		admins:  admins,
		revoker: revoker,
		otps:    otps,
		mailer:  mailer,
		secret:  secret,
		ttl:     ttl,
	}
}

func normalizeEmail(e string) string { return strings.ToLower(strings.TrimSpace(e)) }

// Register creates the first admin account. Once any admin exists it returns
// ErrRegistrationClosed.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*LoginResponse, error) {
	count, err := s.admins.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count admins: %w", err)
	}
	if count > 0 {
		return nil, ErrRegistrationClosed
	}

	email := normalizeEmail(req.Email)
	existing, err := s.admins.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing admin: %w", err)
	}
	if existing != nil {
		return nil, ErrAdminExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	admin, err := s.admins.Create(ctx, &admins.Admin{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: string(hashedPassword),
	})
	if err != nil {
		if errors.Is(err, admins.ErrDuplicateEmail) {
			return nil, ErrAdminExists
		}
		return nil, fmt.Errorf("failed to create admin: %w", err)
	}

	s.log.Info("Admin registered", zap.String("admin_id", admin.ID))
	return s.loginResponse(admin)
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	admin, err := s.admins.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		return nil, fmt.Errorf("failed to load admin: %w", err)
	}
	if admin == nil {
		return nil, ErrAdminNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.loginResponse(admin)
}

// Logout revokes the token id until the token would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, jti string, expires time.Time) error {
	ttl := time.Until(expires)
	if jti == "" || ttl <= 0 {
		return nil
	}
	return s.revoker.Revoke(ctx, jti, ttl)
}

func (s *AuthService) GetProfile(ctx context.Context, adminID string) (*AdminInfo, error) {
	admin, err := s.admins.GetByID(ctx, adminID)
	if err != nil {
		return nil, fmt.Errorf("failed to load admin: %w", err)
	}
	if admin == nil {
		return nil, ErrAdminNotFound
	}
	info := adminToInfo(admin)
	return &info, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, adminID string, req ProfileUpdateRequest) (*AdminInfo, error) {
	if _, err := s.GetProfile(ctx, adminID); err != nil {
		return nil, err
	}
	if err := s.admins.UpdateName(ctx, adminID, strings.TrimSpace(req.Name)); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return s.GetProfile(ctx, adminID)
}

func (s *AuthService) ChangePassword(ctx context.Context, adminID string, req PasswordChangeRequest) error {
	admin, err := s.admins.GetByID(ctx, adminID)
	if err != nil {
		return fmt.Errorf("failed to load admin: %w", err)
	}
	if admin == nil {
		return ErrAdminNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return ErrInvalidCredentials
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.admins.UpdatePassword(ctx, adminID, string(hashedPassword))
}

// RequestPasswordChangeOTP mails a one-time code. Unknown emails succeed silently.
func (s *AuthService) RequestPasswordChangeOTP(ctx context.Context, req OTPRequest) error {
	email := normalizeEmail(req.Email)
	admin, err := s.admins.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to load admin: %w", err)
	}
	if admin == nil {
		return nil
	}

	otp, err := generateOTP()
	if err != nil {
		return fmt.Errorf("failed to generate OTP: %w", err)
	}
	if err := s.otps.Save(ctx, email, otp); err != nil {
		return fmt.Errorf("failed to store OTP: %w", err)
	}

	if err := s.mailer.SendPasswordChangeOTPEmail(email, otp); err != nil {
		// Don't return error to prevent email enumeration
		s.log.Error("Failed to send OTP email", zap.Error(err))
	}
	return nil
}

func (s *AuthService) VerifyPasswordChangeOTP(ctx context.Context, req OTPVerifyRequest) error {
	email := normalizeEmail(req.Email)
	stored, err := s.otps.Get(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to read OTP: %w", err)
	}
	if stored == "" || subtle.ConstantTimeCompare([]byte(stored), []byte(req.OTP)) != 1 {
		return ErrInvalidOTP
	}

	admin, err := s.admins.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to load admin: %w", err)
	}
	if admin == nil {
		return ErrAdminNotFound
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.admins.UpdatePassword(ctx, admin.ID, string(hashedPassword)); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	if err := s.otps.Delete(ctx, email); err != nil {
		s.log.Warn("Failed to delete used OTP", zap.Error(err))
	}
	return nil
}

func (s *AuthService) loginResponse(admin *admins.Admin) (*LoginResponse, error) {
	token, _, expires, err := jwtMiddleware.Issue(s.secret, admin.ID, admin.Email, s.ttl)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &LoginResponse{Token: token, Admin: adminToInfo(admin), Expires: expires}, nil
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func adminToInfo(a *admins.Admin) AdminInfo {
	return AdminInfo{ID: a.ID, Name: a.Name, Email: a.Email}
}
