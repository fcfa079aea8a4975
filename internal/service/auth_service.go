package service

import (
	"context"
	"fmt"
	"time"

	"github.com/festivo/festivo-api/internal/auth"
	"github.com/festivo/festivo-api/internal/config"
	"github.com/festivo/festivo-api/internal/domain"
	"github.com/festivo/festivo-api/internal/otp"
	"github.com/festivo/festivo-api/internal/platform/events"
	"github.com/festivo/festivo-api/internal/repo/postgres"
	"github.com/festivo/festivo-api/pkg/logger"
)

// IssuedCode is what RequestCode hands back to the transport layer. Code is
// plaintext and must only reach the client in dev mode; delivery otherwise
// happens via the otp.requested event.
type IssuedCode struct {
	Code      string
	ExpiresAt time.Time
}

type AuthService interface {
	RequestCode(ctx context.Context, mobile string) (*IssuedCode, error)
	// VerifyCode consumes the active code for the mobile number and returns
	// the (possibly newly created) user together with a session token.
	VerifyCode(ctx context.Context, mobile, code string) (*domain.User, string, error)
	GetMe(ctx context.Context, userID int64) (*domain.User, *domain.Profile, error)
	UpdateProfile(ctx context.Context, userID int64, req *domain.UpdateProfileRequest) (*domain.Profile, error)
	ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error)
}

type authService struct {
	users    postgres.UsersRepo
	codes    postgres.OTPRepo
	eventBus events.Publisher
	cfg      *config.Config
}

func NewAuthService(users postgres.UsersRepo, codes postgres.OTPRepo, eventBus events.Publisher, cfg *config.Config) AuthService {
	return &authService{users: users, codes: codes, eventBus: eventBus, cfg: cfg}
}

func (s *authService) RequestCode(ctx context.Context, mobile string) (*IssuedCode, error) {
	code, err := otp.GenerateCode(s.cfg.OTP.Length)
	if err != nil {
		return nil, fmt.Errorf("failed to generate code: %w", err)
	}

	hash, err := otp.HashCode(code)
	if err != nil {
		return nil, fmt.Errorf("failed to hash code: %w", err)
	}

	expiresAt := time.Now().Add(s.cfg.OTP.TTL)
	if err := s.codes.Replace(ctx, mobile, hash, expiresAt); err != nil {
		return nil, fmt.Errorf("failed to store code: %w", err)
	}

	ev := events.OTPRequestedEvent{Mobile: mobile, Code: code, ExpiresAt: expiresAt}
	if err := s.eventBus.Publish(ctx, events.OTPRequested, ev); err != nil {
		logger.ErrorContext(ctx, "failed to publish otp.requested", "error", err)
	}

	return &IssuedCode{Code: code, ExpiresAt: expiresAt}, nil
}

func (s *authService) VerifyCode(ctx context.Context, mobile, code string) (*domain.User, string, error) {
	rec, err := s.codes.FindByMobile(ctx, mobile)
	if err != nil {
		return nil, "", fmt.Errorf("failed to look up code: %w", err)
	}
	if rec == nil {
		return nil, "", domain.ErrNotFound
	}
	if rec.Expired(time.Now()) {
		return nil, "", domain.ErrCodeExpired
	}
	// The attempt gate comes before the comparison, so an exhausted code is
	// rate-limited even when the guess is right.
	if rec.AttemptCount >= s.cfg.OTP.MaxAttempts {
		return nil, "", domain.ErrTooManyAttempts
	}

	if !otp.CompareCode(rec.CodeHash, code) {
		if err := s.codes.IncrementAttempts(ctx, rec.ID); err != nil {
			logger.ErrorContext(ctx, "failed to bump attempt counter", "error", err, "mobile", mobile)
		}
		return nil, "", domain.ErrInvalidCode
	}

	// Single use: the row goes before the session is minted.
	if err := s.codes.Delete(ctx, rec.ID); err != nil {
		return nil, "", fmt.Errorf("failed to consume code: %w", err)
	}

	user, err := s.users.UpsertByMobile(ctx, mobile)
	if err != nil {
		return nil, "", fmt.Errorf("failed to upsert user: %w", err)
	}

	token, err := auth.NewToken(user.ID, user.Mobile, user.Role, s.cfg.Auth.JWTSecret, s.cfg.Auth.TokenTTL)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	return user, token, nil
}

func (s *authService) GetMe(ctx context.Context, userID int64) (*domain.User, *domain.Profile, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, nil, domain.ErrNotFound
	}

	profile, err := s.users.GetProfile(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if profile == nil {
		profile = &domain.Profile{UserID: userID}
	}
	return user, profile, nil
}

func (s *authService) UpdateProfile(ctx context.Context, userID int64, req *domain.UpdateProfileRequest) (*domain.Profile, error) {
	req.Normalize()

	profile, err := s.users.UpdateProfile(ctx, userID, req)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	if profile == nil {
		return nil, domain.ErrNotFound
	}
	return profile, nil
}

func (s *authService) ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error) {
	return s.users.List(ctx, limit, offset)
}
