// Package auth implements login and the OTP password reset flow on top of
// the identity store.
package auth

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/kindredhq/kindred/domain/users"
	"github.com/kindredhq/kindred/internal/config"
	"github.com/kindredhq/kindred/pkg/apperror"
	pkgauth "github.com/kindredhq/kindred/pkg/auth"
	"github.com/kindredhq/kindred/pkg/logger"
)

// Store is the identity surface the auth service depends on. users.Store
// satisfies it.
type Store interface {
	FindByEmail(ctx context.Context, email string) (*users.PrimaryUser, error)
	FindByPhone(ctx context.Context, phone string) (*users.PrimaryUser, error)
	GetByID(ctx context.Context, id string) (*users.PrimaryUser, error)
	Update(ctx context.Context, user *users.PrimaryUser) (*users.PrimaryUser, error)
}

// ResetMailer delivers the password reset OTP; best-effort, non-blocking.
type ResetMailer interface {
	SendPasswordReset(ctx context.Context, to, name, otp string, expiresIn time.Duration)
}

// Service handles authentication
type Service struct {
	store    Store
	tokens   *pkgauth.TokenIssuer
	mailer   ResetMailer
	otps     *otpStore
	tokenTTL time.Duration
	log      *slog.Logger
}

// NewService creates a new auth service
func NewService(store Store, tokens *pkgauth.TokenIssuer, mailer ResetMailer, cfg *config.Config, log *slog.Logger) *Service {
	return &Service{
		store:    store,
		tokens:   tokens,
		mailer:   mailer,
		otps:     newOTPStore(),
		tokenTTL: cfg.Auth.AccessTokenTTL,
		log:      log.With(logger.Scope("auth.svc")),
	}
}

// Login authenticates by email or phone plus password and issues an access
// token. All failure paths collapse into invalid_credentials so the response
// does not reveal which part was wrong.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	if req.Password == "" || (req.Email == "" && req.Phone == "") {
		return nil, apperror.NewBadRequest("email or phone, and password are required")
	}

	var (
		user *users.PrimaryUser
		err  error
	)
	if req.Email != "" {
		user, err = s.store.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	} else {
		user, err = s.store.FindByPhone(ctx, strings.TrimSpace(req.Phone))
	}
	if err != nil {
		return nil, err
	}

	// Placeholder records have no password hash and cannot log in.
	if user == nil || user.PasswordHash == nil || !user.IsActive {
		return nil, apperror.ErrInvalidCredentials
	}

	ok, err := pkgauth.VerifyPassword(req.Password, *user.PasswordHash)
	if err != nil {
		return nil, apperror.ErrInternal.WithInternal(err)
	}
	if !ok {
		return nil, apperror.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, deref(user.Email), deref(user.Phone), deref(user.UserName))
	if err != nil {
		return nil, apperror.ErrInternal.WithInternal(err)
	}

	s.log.Info("user logged in", slog.String("userId", user.ID))
	return &LoginResult{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.tokenTTL.Seconds()),
		User:        user,
	}, nil
}

// ForgotPassword issues a reset OTP and mails it. An unknown email returns
// success without sending anything, so the endpoint cannot be used to probe
// for accounts.
func (s *Service) ForgotPassword(ctx context.Context, req ForgotPasswordRequest) error {
	if strings.TrimSpace(req.Email) == "" {
		return apperror.NewBadRequest("email is required")
	}

	user, err := s.store.FindByEmail(ctx, req.Email)
	if err != nil {
		return err
	}
	if user == nil || user.Email == nil {
		s.log.Debug("password reset requested for unknown email")
		return nil
	}

	otp := s.otps.issue(*user.Email, user.ID)
	s.mailer.SendPasswordReset(ctx, *user.Email, user.FullName, otp, otpTTL)

	s.log.Info("password reset OTP issued", slog.String("userId", user.ID))
	return nil
}

// ResetPassword burns the OTP and sets the new password.
func (s *Service) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	if req.Email == "" || req.OTP == "" || req.NewPassword == "" {
		return apperror.NewBadRequest("email, otp and newPassword are required")
	}

	userID, ok := s.otps.consume(req.Email, req.OTP)
	if !ok {
		return apperror.NewBadRequest("invalid or expired OTP, request a new one")
	}

	user, err := s.store.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	hash, err := pkgauth.HashPassword(req.NewPassword)
	if err != nil {
		return apperror.ErrInternal.WithInternal(err)
	}
	user.PasswordHash = &hash

	if _, err := s.store.Update(ctx, user); err != nil {
		return err
	}

	s.log.Info("password reset", slog.String("userId", user.ID))
	return nil
}

// Me returns the authenticated user's full record.
func (s *Service) Me(ctx context.Context, userID string) (*users.PrimaryUser, error) {
	return s.store.GetByID(ctx, userID)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
