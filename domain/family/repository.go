package family

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"github.com/kindredhq/kindred/domain/users"
	"github.com/kindredhq/kindred/internal/database"
	"github.com/kindredhq/kindred/pkg/apperror"
	"github.com/kindredhq/kindred/pkg/logger"
)

// Repository handles database operations for families and memberships.
type Repository struct {
	db  bun.IDB
	log *slog.Logger
}

// NewRepository creates a new family repository
func NewRepository(db bun.IDB, log *slog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With(logger.Scope("family.repo")),
	}
}

// GetUser resolves a person by id; NotFound when absent.
func (r *Repository) GetUser(ctx context.Context, id string) (*users.PrimaryUser, error) {
	var user users.PrimaryUser
	err := r.db.NewSelect().
		Model(&user).
		Where("u.id = ?", id).
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

// GetFamily fetches a family with its roster, root profile and branch
// sub-families expanded.
func (r *Repository) GetFamily(ctx context.Context, id string) (*Family, error) {
	var fam Family
	err := r.db.NewSelect().
		Model(&fam).
		Where("f.id = ?", id).
		Relation("Root").
		Relation("Members").
		Relation("Members.User").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrFamilyNotFound.WithMessage("family with id " + id + " not found")
		}
		r.log.Error("failed to get family", logger.Error(err), slog.String("id", id))
		return nil, apperror.ErrDatabase.WithInternal(err)
	}

	if len(fam.BranchIDs) > 0 {
		var branches []*Family
		err := r.db.NewSelect().
			Model(&branches).
			Where("f.id IN (?)", bun.In(fam.BranchIDs)).
			Scan(ctx)
		if err != nil {
			r.log.Error("failed to expand branches", logger.Error(err), slog.String("id", id))
			return nil, apperror.ErrDatabase.WithInternal(err)
		}
		fam.Branches = orderBranches(fam.BranchIDs, branches)
	}

	return &fam, nil
}

// GetFamilyLite fetches a family row without relations.
func (r *Repository) GetFamilyLite(ctx context.Context, id string) (*Family, error) {
	var fam Family
	err := r.db.NewSelect().
		Model(&fam).
		Where("f.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrFamilyNotFound.WithMessage("family with id " + id + " not found")
		}
		r.log.Error("failed to get family", logger.Error(err), slog.String("id", id))
		return nil, apperror.ErrDatabase.WithInternal(err)
	}
	return &fam, nil
}

// FindMemberByUserAndUsername returns the membership binding a user to the
// family with the given username. Nil when absent.
func (r *Repository) FindMemberByUserAndUsername(ctx context.Context, userID, familyUsername string) (*FamilyMember, error) {
	var member FamilyMember
	err := r.db.NewSelect().
		Model(&member).
		Where("fm.user_id = ?", userID).
		Where("fm.family_username = ?", familyUsername).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.log.Error("failed to find member", logger.Error(err))
		return nil, apperror.ErrDatabase.WithInternal(err)
	}
	return &member, nil
}

// FindMemberByUserAndType returns the user's membership on the given family
// type axis, with the owning family loaded for messaging. Nil when absent.
func (r *Repository) FindMemberByUserAndType(ctx context.Context, userID, familyType string) (*FamilyMember, error) {
	var member FamilyMember
	err := r.db.NewSelect().
		Model(&member).
		Where("fm.user_id = ?", userID).
		Where("upper(fm.family_type) = ?", strings.ToUpper(familyType)).
		Relation("Family").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.log.Error("failed to find member by type", logger.Error(err))
		return nil, apperror.ErrDatabase.WithInternal(err)
	}
	return &member, nil
}

// CreateFamilyGraph applies a creation plan in one transaction: optional
// placeholder parent, optional new root person, both member rows, the family
// row, the member back-patch, and the root promotion. Unique index
// violations are mapped to conflicts; any failure rolls the whole plan back.
func (r *Repository) CreateFamilyGraph(ctx context.Context, plan *CreationPlan) (*Family, error) {
	tx, err := database.BeginSafeTx(ctx, r.db)
	if err != nil {
		return nil, apperror.ErrDatabase.WithInternal(err)
	}
	defer tx.Rollback()

	if plan.Placeholder != nil {
		if _, err := tx.NewInsert().Model(plan.Placeholder).Returning("*").Exec(ctx); err != nil {
			if database.IsUniqueViolation(err) {
				// Generated placeholder username collided; retryable.
				return nil, errUsernameTaken
			}
			r.log.Error("failed to create placeholder parent", logger.Error(err))
			return nil, apperror.ErrDatabase.WithInternal(err)
		}
		plan.CreatorMember.ParentID = &plan.Placeholder.ID
	}

	if plan.NewRoot != nil {
		if _, err := tx.NewInsert().Model(plan.NewRoot).Returning("*").Exec(ctx); err != nil {
			if database.IsUniqueViolation(err) {
				// The root username is caller-chosen, so this is theirs to fix.
				return nil, apperror.ErrUsernameExists
			}
			r.log.Error("failed to create root person", logger.Error(err))
			return nil, apperror.ErrDatabase.WithInternal(err)
		}
		plan.RootMember.UserID = plan.NewRoot.ID
		plan.Family.RootID = plan.NewRoot.ID
	}

	members := []*FamilyMember{plan.RootMember, plan.CreatorMember}
	if _, err := tx.NewInsert().Model(&members).Returning("*").Exec(ctx); err != nil {
		if mapped := mapMemberWriteError(err); mapped != nil {
			return nil, mapped
		}
		r.log.Error("failed to create member rows", logger.Error(err))
		return nil, apperror.ErrDatabase.WithInternal(err)
	}

	plan.Family.MembersCount = len(members)
	if _, err := tx.NewInsert().Model(plan.Family).Returning("*").Exec(ctx); err != nil {
		if database.IsUniqueViolation(err) && database.IsConstraint(err, "families_family_username_key") {
			return nil, errUsernameTaken
		}
		if database.IsForeignKeyViolation(err) {
			return nil, apperror.NewBadRequest("family references an unknown creator or root")
		}
		r.log.Error("failed to create family row", logger.Error(err))
		return nil, apperror.ErrDatabase.WithInternal(err)
	}

	// Patch the member rows written before the family existed.
	_, err = tx.NewUpdate().
		Model((*FamilyMember)(nil)).
		Set("family_id = ?", plan.Family.ID).
		Set("updated_at = now()").
		Where("family_username = ?", plan.Family.FamilyUsername).
		Exec(ctx)
	if err != nil {
		r.log.Error("failed to attach members to family", logger.Error(err))
		return nil, apperror.ErrDatabase.WithInternal(err)
	}

	if plan.ExistingRootID != "" {
		// Compare-and-set: only a not-yet-root person can be promoted. Losing
		// the race aborts the whole plan.
		res, err := tx.NewUpdate().
			Model((*users.PrimaryUser)(nil)).
			Set("role = ?", users.RoleRoot).
			Set("family_rooted_to = ?", plan.Family.ID).
			Set("updated_at = now()").
			Where("id = ?", plan.ExistingRootID).
			Where("role <> ?", users.RoleRoot).
			Exec(ctx)
		if err != nil {
			r.log.Error("failed to promote root", logger.Error(err))
			return nil, apperror.ErrDatabase.WithInternal(err)
		}
		if rows, _ := res.RowsAffected(); rows == 0 {
			return nil, apperror.ErrConflict.WithMessage("user selected as root is already a root in another family")
		}
	} else if plan.NewRoot != nil {
		_, err := tx.NewUpdate().
			Model((*users.PrimaryUser)(nil)).
			Set("family_rooted_to = ?", plan.Family.ID).
			Set("updated_at = now()").
			Where("id = ?", plan.NewRoot.ID).
			Exec(ctx)
		if err != nil {
			r.log.Error("failed to set family_rooted_to", logger.Error(err))
			return nil, apperror.ErrDatabase.WithInternal(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, apperror.ErrDatabase.WithInternal(err)
	}

	for _, m := range members {
		m.FamilyID = &plan.Family.ID
	}
	plan.Family.Members = members
	return plan.Family, nil
}

// AddMember inserts a membership row and bumps the family's roster count in
// one transaction. The unique indexes are the idempotency gate under
// concurrent joins.
func (r *Repository) AddMember(ctx context.Context, member *FamilyMember) error {
	tx, err := database.BeginSafeTx(ctx, r.db)
	if err != nil {
		return apperror.ErrDatabase.WithInternal(err)
	}
	defer tx.Rollback()

	if _, err := tx.NewInsert().Model(member).Returning("*").Exec(ctx); err != nil {
		if mapped := mapMemberWriteError(err); mapped != nil {
			return mapped
		}
		r.log.Error("failed to insert member", logger.Error(err))
		return apperror.ErrDatabase.WithInternal(err)
	}

	_, err = tx.NewUpdate().
		Model((*Family)(nil)).
		Set("members_count = members_count + 1").
		Set("updated_at = now()").
		Where("id = ?", *member.FamilyID).
		Exec(ctx)
	if err != nil {
		r.log.Error("failed to bump members count", logger.Error(err))
		return apperror.ErrDatabase.WithInternal(err)
	}

	if err := tx.Commit(); err != nil {
		return apperror.ErrDatabase.WithInternal(err)
	}
	return nil
}

// SearchFamilies matches text against name, username, country and state,
// case-insensitively. An empty result is not an error.
func (r *Repository) SearchFamilies(ctx context.Context, text string) ([]*Family, error) {
	pattern := "%" + text + "%"

	var fams []*Family
	err := r.db.NewSelect().
		Model(&fams).
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				WhereOr("f.family_name ILIKE ?", pattern).
				WhereOr("f.family_username ILIKE ?", pattern).
				WhereOr("f.country ILIKE ?", pattern).
				WhereOr("f.state ILIKE ?", pattern)
		}).
		Order("f.created_at DESC").
		Scan(ctx)
	if err != nil {
		r.log.Error("failed to search families", logger.Error(err))
		return nil, apperror.ErrDatabase.WithInternal(err)
	}
	return fams, nil
}

// QueryFamilies applies a conjunctive case-insensitive filter, expanding the
// root profile and capping each roster at 6 entries for display.
func (r *Repository) QueryFamilies(ctx context.Context, req QueryFamiliesRequest) ([]*Family, error) {
	var fams []*Family
	err := r.db.NewSelect().
		Model(&fams).
		Where("f.family_name ILIKE ?", "%"+req.FamilyName+"%").
		Where("f.country ILIKE ?", "%"+req.Country+"%").
		Where("f.state ILIKE ?", "%"+req.State+"%").
		Where("f.tribe ILIKE ?", "%"+req.Tribe+"%").
		Relation("Root").
		Relation("Members").
		Relation("Members.User").
		Order("f.created_at DESC").
		Scan(ctx)
	if err != nil {
		r.log.Error("failed to query families", logger.Error(err))
		return nil, apperror.ErrDatabase.WithInternal(err)
	}

	for _, fam := range fams {
		if len(fam.Members) > rosterDisplayCap {
			fam.Members = fam.Members[:rosterDisplayCap]
		}
	}
	return fams, nil
}

// UpdateFamily persists the given family row and returns it.
func (r *Repository) UpdateFamily(ctx context.Context, fam *Family) (*Family, error) {
	fam.UpdatedAt = time.Now()
	_, err := r.db.NewUpdate().
		Model(fam).
		WherePK().
		Returning("*").
		Exec(ctx)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperror.ErrConflict.WithInternal(err)
		}
		r.log.Error("failed to update family", logger.Error(err), slog.String("id", fam.ID))
		return nil, apperror.ErrDatabase.WithInternal(err)
	}
	return fam, nil
}

// orderBranches returns the expanded branch rows in BranchIDs attach order;
// the IN query hands them back in arbitrary order.
func orderBranches(ids []string, branches []*Family) []*Family {
	byID := make(map[string]*Family, len(branches))
	for _, b := range branches {
		byID[b.ID] = b
	}

	out := make([]*Family, 0, len(branches))
	for _, id := range ids {
		if b, ok := byID[id]; ok {
			out = append(out, b)
		}
	}
	return out
}

// mapMemberWriteError translates constraint violations on family_members
// writes: unique indexes become business conflicts, foreign keys become bad
// requests. Nil means the error is not a constraint violation.
func mapMemberWriteError(err error) error {
	switch {
	case database.IsUniqueViolation(err):
		return mapMemberConflict(err)
	case database.IsForeignKeyViolation(err):
		return apperror.NewBadRequest("member references an unknown user, parent or family")
	}
	return nil
}

// mapMemberConflict translates a unique violation on family_members into the
// matching business conflict.
func mapMemberConflict(err error) error {
	switch {
	case database.IsConstraint(err, "family_members_user_family_type_key"):
		return apperror.ErrConflict.WithMessage("you already belong to a family of this type")
	case database.IsConstraint(err, "family_members_user_family_username_key"),
		database.IsConstraint(err, "family_members_user_family_key"):
		return apperror.ErrConflict.WithMessage("you're already a member of this family")
	}
	return apperror.ErrConflict.WithInternal(err)
}
