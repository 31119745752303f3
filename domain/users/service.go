package users

import (
	"context"
	"log/slog"
	"strings"

	"github.com/kindredhq/kindred/pkg/apperror"
	"github.com/kindredhq/kindred/pkg/auth"
	"github.com/kindredhq/kindred/pkg/logger"
)

// Store is the narrow persistence surface the service depends on.
// *Repository is the production implementation.
type Store interface {
	FindByEmail(ctx context.Context, email string) (*PrimaryUser, error)
	FindByPhone(ctx context.Context, phone string) (*PrimaryUser, error)
	FindByUserName(ctx context.Context, userName string) (*PrimaryUser, error)
	GetByID(ctx context.Context, id string) (*PrimaryUser, error)
	Create(ctx context.Context, user *PrimaryUser) error
	Update(ctx context.Context, user *PrimaryUser) (*PrimaryUser, error)
}

// Mailer sends transactional mail; delivery is best-effort and never blocks
// the signup path.
type Mailer interface {
	SendWelcome(ctx context.Context, to, name string)
}

// Service handles business logic for primary users
type Service struct {
	store  Store
	mailer Mailer
	log    *slog.Logger
}

// NewService creates a new users service
func NewService(store Store, mailer Mailer, log *slog.Logger) *Service {
	return &Service{
		store:  store,
		mailer: mailer,
		log:    log.With(logger.Scope("users.svc")),
	}
}

// Signup registers a new user. Email and phone are pre-checked for friendly
// conflict messages; the store's unique indexes remain the authority.
func (s *Service) Signup(ctx context.Context, req SignupRequest) (*PrimaryUser, error) {
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Phone = strings.TrimSpace(req.Phone)

	if req.FullName == "" || req.Email == "" || req.Password == "" {
		return nil, apperror.NewBadRequest("fullName, email and password are required")
	}

	if existing, err := s.store.FindByEmail(ctx, req.Email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, apperror.ErrMailExists.WithMessage("user with email " + req.Email + " already exists")
	}

	if req.Phone != "" {
		if existing, err := s.store.FindByPhone(ctx, req.Phone); err != nil {
			return nil, err
		} else if existing != nil {
			return nil, apperror.ErrPhoneExists.WithMessage("user with phone " + req.Phone + " already exists")
		}
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperror.ErrUserCreateFailed.WithInternal(err)
	}

	user := &PrimaryUser{
		FullName:     req.FullName,
		Email:        &req.Email,
		PasswordHash: &hash,
		Role:         RoleNone,
		IsActive:     true,
	}
	if req.UserName != "" {
		user.UserName = &req.UserName
	}
	if req.Phone != "" {
		user.Phone = &req.Phone
	}
	if req.Gender != "" {
		user.Gender = &req.Gender
	}
	user.DOB = req.DOB

	s.log.Info("creating new user", slog.String("email", req.Email))
	if err := s.store.Create(ctx, user); err != nil {
		return nil, err
	}

	s.mailer.SendWelcome(ctx, req.Email, req.FullName)

	return user, nil
}

// FindByEmail looks a user up by email; NotFound when absent.
func (s *Service) FindByEmail(ctx context.Context, email string) (*PrimaryUser, error) {
	s.log.Debug("lookup user by email", slog.String("email", email))
	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.ErrUserNotFound.WithMessage("user with email " + email + " not found")
	}
	return user, nil
}

// GetByID returns a user by id.
func (s *Service) GetByID(ctx context.Context, id string) (*PrimaryUser, error) {
	return s.store.GetByID(ctx, id)
}

// Search looks a user up by email or username; email wins when both are set.
func (s *Service) Search(ctx context.Context, req SearchUserRequest) (*PrimaryUser, error) {
	switch {
	case req.Email != "":
		return s.FindByEmail(ctx, req.Email)
	case req.UserName != "":
		user, err := s.store.FindByUserName(ctx, req.UserName)
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, apperror.ErrUserNotFound.WithMessage("user with username " + req.UserName + " not found")
		}
		return user, nil
	default:
		return nil, apperror.NewBadRequest("email or userName is required")
	}
}

// Update applies a partial profile update: fetch, merge non-nil fields,
// persist. Password changes are re-hashed.
func (s *Service) Update(ctx context.Context, id string, req UpdateUserRequest) (*PrimaryUser, error) {
	user, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.UserName != nil {
		user.UserName = req.UserName
	}
	if req.Email != nil {
		normalized := strings.TrimSpace(strings.ToLower(*req.Email))
		user.Email = &normalized
	}
	if req.Phone != nil {
		user.Phone = req.Phone
	}
	if req.Gender != nil {
		user.Gender = req.Gender
	}
	if req.DOB != nil {
		user.DOB = req.DOB
	}
	if req.ProfilePhoto != nil {
		user.ProfilePhoto = req.ProfilePhoto
	}
	if req.Password != nil {
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			return nil, apperror.ErrUserUpdateFailed.WithInternal(err)
		}
		user.PasswordHash = &hash
	}

	return s.store.Update(ctx, user)
}

// ValidateUserName reports whether the username is still free.
func (s *Service) ValidateUserName(ctx context.Context, userName string) (bool, error) {
	if strings.TrimSpace(userName) == "" {
		return false, apperror.NewBadRequest("userName is required")
	}
	existing, err := s.store.FindByUserName(ctx, userName)
	if err != nil {
		return false, err
	}
	return existing == nil, nil
}
