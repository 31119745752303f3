package users

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"github.com/kindredhq/kindred/internal/database"
	"github.com/kindredhq/kindred/pkg/apperror"
	"github.com/kindredhq/kindred/pkg/logger"
)

// Repository handles database operations for primary users
type Repository struct {
	db  bun.IDB
	log *slog.Logger
}

// NewRepository creates a new users repository
func NewRepository(db bun.IDB, log *slog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With(logger.Scope("users.repo")),
	}
}

// FindByEmail finds a user by exact email match. Returns nil when absent.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*PrimaryUser, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	var user PrimaryUser
	err := r.db.NewSelect().
		Model(&user).
		Where("lower(email) = ?", email).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.log.Error("failed to find user by email", logger.Error(err))
		return nil, apperror.ErrDatabase.WithInternal(err)
	}
	return &user, nil
}

// FindByPhone finds a user by phone number. Returns nil when absent.
func (r *Repository) FindByPhone(ctx context.Context, phone string) (*PrimaryUser, error) {
	var user PrimaryUser
	err := r.db.NewSelect().
		Model(&user).
		Where("phone = ?", strings.TrimSpace(phone)).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.log.Error("failed to find user by phone", logger.Error(err))
		return nil, apperror.ErrDatabase.WithInternal(err)
	}
	return &user, nil
}

// FindByUserName finds a user by username. Returns nil when absent.
func (r *Repository) FindByUserName(ctx context.Context, userName string) (*PrimaryUser, error) {
	var user PrimaryUser
	err := r.db.NewSelect().
		Model(&user).
		Where("lower(user_name) = ?", strings.ToLower(strings.TrimSpace(userName))).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.log.Error("failed to find user by username", logger.Error(err))
		return nil, apperror.ErrDatabase.WithInternal(err)
	}
	return &user, nil
}

// GetByID returns a user by ID; NotFound when the id does not resolve.
func (r *Repository) GetByID(ctx context.Context, id string) (*PrimaryUser, error) {
	var user PrimaryUser
	err := r.db.NewSelect().
		Model(&user).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrUserNotFound.WithMessage("user with id " + id + " not found")
		}
		r.log.Error("failed to get user", logger.Error(err), slog.String("id", id))
		return nil, apperror.ErrDatabase.WithInternal(err)
	}
	return &user, nil
}

// Create inserts a new user. Unique index violations are the authoritative
// uniqueness signal and are mapped to the matching conflict error.
func (r *Repository) Create(ctx context.Context, user *PrimaryUser) error {
	_, err := r.db.NewInsert().
		Model(user).
		Returning("*").
		Exec(ctx)
	if err != nil {
		if database.IsUniqueViolation(err) {
			switch {
			case database.IsConstraint(err, "users_email_key"):
				return apperror.ErrMailExists
			case database.IsConstraint(err, "users_phone_key"):
				return apperror.ErrPhoneExists
			case database.IsConstraint(err, "users_user_name_key"):
				return apperror.ErrUsernameExists
			}
			return apperror.ErrConflict.WithInternal(err)
		}
		r.log.Error("failed to create user", logger.Error(err))
		return apperror.ErrDatabase.WithInternal(err)
	}
	return nil
}

// Update persists the given user record and returns the stored row.
func (r *Repository) Update(ctx context.Context, user *PrimaryUser) (*PrimaryUser, error) {
	user.UpdatedAt = time.Now()
	_, err := r.db.NewUpdate().
		Model(user).
		WherePK().
		Returning("*").
		Exec(ctx)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperror.ErrConflict.WithInternal(err)
		}
		r.log.Error("failed to update user", logger.Error(err), slog.String("id", user.ID))
		return nil, apperror.ErrDatabase.WithInternal(err)
	}
	return user, nil
}
