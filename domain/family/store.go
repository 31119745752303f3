package family

import (
	"context"
	"net/http"

	"github.com/kindredhq/kindred/domain/users"
	"github.com/kindredhq/kindred/pkg/apperror"
)

// errUsernameTaken signals that a generated family username lost to the
// unique index. The service regenerates and retries; it is never returned to
// callers.
var errUsernameTaken = apperror.New(http.StatusConflict, "family_username_taken", "generated family username already in use")

// CreationPlan is the full set of rows a CreateFamily call produces. The
// store applies it atomically; a failure at any step leaves nothing behind.
type CreationPlan struct {
	Family        *Family
	RootMember    *FamilyMember
	CreatorMember *FamilyMember

	// NewRoot is the inactive placeholder root person, nil in existing-root
	// mode.
	NewRoot *users.PrimaryUser

	// Placeholder is the inactive parent record for a non-top-level creator,
	// nil when the creator connects directly to the root.
	Placeholder *users.PrimaryUser

	// ExistingRootID names the person to promote to root in existing-root
	// mode. Promotion is a compare-and-set; losing it aborts the plan.
	ExistingRootID string
}

// Store is the persistence surface the family service depends on.
// *Repository is the production implementation.
type Store interface {
	GetUser(ctx context.Context, id string) (*users.PrimaryUser, error)
	GetFamily(ctx context.Context, id string) (*Family, error)
	GetFamilyLite(ctx context.Context, id string) (*Family, error)

	FindMemberByUserAndUsername(ctx context.Context, userID, familyUsername string) (*FamilyMember, error)
	FindMemberByUserAndType(ctx context.Context, userID, familyType string) (*FamilyMember, error)

	CreateFamilyGraph(ctx context.Context, plan *CreationPlan) (*Family, error)
	AddMember(ctx context.Context, member *FamilyMember) error

	SearchFamilies(ctx context.Context, text string) ([]*Family, error)
	QueryFamilies(ctx context.Context, req QueryFamiliesRequest) ([]*Family, error)
	UpdateFamily(ctx context.Context, fam *Family) (*Family, error)
}
