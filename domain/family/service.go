package family

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/kindredhq/kindred/domain/users"
	"github.com/kindredhq/kindred/internal/config"
	"github.com/kindredhq/kindred/internal/storage"
	"github.com/kindredhq/kindred/pkg/apperror"
	"github.com/kindredhq/kindred/pkg/logger"
	"github.com/kindredhq/kindred/pkg/tracing"
)

// opFailure maps an unexpected persistence failure onto the operation's
// stable failure code. Expected business outcomes (4xx) pass through
// untouched so not-found and conflict semantics survive the boundary.
func opFailure(err error, sentinel *apperror.Error) error {
	var appErr *apperror.Error
	if errors.As(err, &appErr) && appErr.HTTPStatus < http.StatusInternalServerError {
		return err
	}
	return sentinel.WithInternal(err)
}

// usernameAttempts bounds the regenerate-and-retry loop when a generated
// family username collides with the unique index.
const usernameAttempts = 3

// Service orchestrates family graph construction: creating families in
// either root mode, attaching members, and the membership validators.
type Service struct {
	store        Store
	log          *slog.Logger
	joinLinkBase string

	// generator seams, overridable in tests
	genFamilyUsername      func(familyName string) string
	genPlaceholderUsername func(fullName string) string
}

// NewService creates a new family service
func NewService(store Store, cfg *config.Config, log *slog.Logger) *Service {
	return &Service{
		store:                  store,
		log:                    log.With(logger.Scope("family.svc")),
		joinLinkBase:           cfg.App.JoinLinkBase,
		genFamilyUsername:      GenerateFamilyUsername,
		genPlaceholderUsername: GeneratePlaceholderUsername,
	}
}

// CreateFamily creates a family in one of two root modes. With req.Root set,
// an existing person anchors the family and is promoted to root; otherwise an
// inactive placeholder root is created from the NewRoot attributes. The whole
// graph is written atomically, so a failed step leaves no orphaned rows.
func (s *Service) CreateFamily(ctx context.Context, req CreateFamilyRequest) (*Family, error) {
	ctx, span := tracing.Start(ctx, "family.create",
		attribute.String("kindred.family.name", req.FamilyName),
	)
	defer span.End()

	req.FamilyName = strings.TrimSpace(req.FamilyName)
	if req.Creator == "" || req.FamilyName == "" || req.Country == "" || req.State == "" || req.Tribe == "" {
		return nil, apperror.NewBadRequest("creator, familyName, country, state and tribe are required")
	}

	rel, err := ParseRelationship(req.RelationshipToRoot)
	if err != nil {
		return nil, err
	}
	if rel == RelationRoot {
		return nil, apperror.ErrValidation.WithMessage("relationshipToRoot cannot be root; the root is assigned separately")
	}
	if req.Root != "" && req.Root == req.Creator {
		return nil, apperror.ErrValidation.WithMessage("creator cannot select themself as root")
	}

	if !rel.IsTopLevel() && !req.hasNewParent() {
		return nil, apperror.ErrValidation.WithMessage("relationship is disconnected from root: newParentRelationship, newParentFullName and newParentGender are required")
	}
	if rel.IsTopLevel() && req.hasNewParent() {
		return nil, apperror.ErrValidation.WithMessage("relationship connects directly to root: a new parent must not be supplied")
	}
	if req.hasNewParent() {
		if _, err := ParseRelationship(req.NewParentRelationship); err != nil {
			return nil, err
		}
	}

	var familyType *string
	if req.FamilyType != "" {
		ft, err := ParseFamilyType(req.FamilyType)
		if err != nil {
			return nil, err
		}
		familyType = &ft

		check, err := s.ValidateFamilyTypeUniqueness(ctx, req.Creator, ft)
		if err != nil {
			return nil, opFailure(err, apperror.ErrFamilyCreateFailed)
		}
		if !check.Unique {
			return nil, apperror.ErrConflict.WithMessage(
				"you already belong to a " + ft + " family (" + check.ConflictFamily + "); exit it before creating another of the same type")
		}
	}

	creator, err := s.store.GetUser(ctx, req.Creator)
	if err != nil {
		return nil, opFailure(err, apperror.ErrFamilyCreateFailed)
	}

	mode := "new_root"
	var existingRoot *users.PrimaryUser
	if req.Root != "" {
		mode = "existing_root"
		existingRoot, err = s.store.GetUser(ctx, req.Root)
		if err != nil {
			return nil, opFailure(err, apperror.ErrFamilyCreateFailed)
		}
		if existingRoot.IsRoot() {
			return nil, s.alreadyRootedConflict(ctx, existingRoot)
		}
	} else if req.NewRootFullName == "" || req.NewRootUserName == "" {
		return nil, apperror.NewBadRequest("either root or newRootFullName and newRootUserName are required")
	}

	cover := req.FamilyCoverImage
	if cover == "" {
		cover = storage.DefaultFamilyCover
	}

	for attempt := 1; attempt <= usernameAttempts; attempt++ {
		plan := s.buildPlan(req, rel, familyType, creator, existingRoot, cover)

		fam, err := s.store.CreateFamilyGraph(ctx, plan)
		if err != nil {
			if errors.Is(err, errUsernameTaken) {
				usernameRetries.Inc()
				s.log.Warn("family username collision, regenerating",
					slog.String("familyName", req.FamilyName),
					slog.Int("attempt", attempt),
				)
				continue
			}
			return nil, opFailure(err, apperror.ErrFamilyCreateFailed)
		}

		familiesCreated.WithLabelValues(mode).Inc()
		s.log.Info("family created",
			slog.String("familyId", fam.ID),
			slog.String("familyUsername", fam.FamilyUsername),
			slog.String("mode", mode),
		)
		return fam, nil
	}

	return nil, apperror.ErrFamilyCreateFailed.WithMessage("could not allocate a unique family username, retry the request")
}

// buildPlan assembles fresh rows for one creation attempt. Usernames are
// regenerated per attempt so a collision retry never reuses the losing value.
func (s *Service) buildPlan(
	req CreateFamilyRequest,
	rel Relationship,
	familyType *string,
	creator *users.PrimaryUser,
	existingRoot *users.PrimaryUser,
	cover string,
) *CreationPlan {
	familyUsername := s.genFamilyUsername(req.FamilyName)

	fam := &Family{
		CreatorID:        creator.ID,
		FamilyName:       req.FamilyName,
		Country:          req.Country,
		State:            req.State,
		Tribe:            req.Tribe,
		FamilyUsername:   familyUsername,
		FamilyCoverImage: cover,
		FamilyJoinLink:   JoinLink(s.joinLinkBase, familyUsername, req.State),
		BranchIDs:        []string{},
	}

	rootMember := &FamilyMember{
		FamilyUsername:     familyUsername,
		FamilyType:         familyType,
		RelationshipToRoot: RelationRoot.String(),
	}
	creatorMember := &FamilyMember{
		UserID:             creator.ID,
		FamilyUsername:     familyUsername,
		FamilyType:         familyType,
		RelationshipToRoot: rel.String(),
	}

	plan := &CreationPlan{
		Family:        fam,
		RootMember:    rootMember,
		CreatorMember: creatorMember,
	}

	if existingRoot != nil {
		fam.RootID = existingRoot.ID
		rootMember.UserID = existingRoot.ID
		plan.ExistingRootID = existingRoot.ID
	} else {
		rootUserName := req.NewRootUserName
		plan.NewRoot = &users.PrimaryUser{
			FullName:  req.NewRootFullName,
			UserName:  &rootUserName,
			Role:      users.RoleRoot,
			CreatorID: &creator.ID,
			IsActive:  false,
		}
	}

	if req.hasNewParent() {
		parentUserName := s.genPlaceholderUsername(req.NewParentFullName)
		gender := req.NewParentGender
		plan.Placeholder = &users.PrimaryUser{
			FullName:  req.NewParentFullName,
			UserName:  &parentUserName,
			Gender:    &gender,
			Role:      users.RoleNone,
			CreatorID: &creator.ID,
			IsActive:  false,
		}
	}

	return plan
}

// alreadyRootedConflict names the family the selected root already anchors.
func (s *Service) alreadyRootedConflict(ctx context.Context, root *users.PrimaryUser) error {
	msg := "user selected as root is already a root in another family, consider joining the family instead"
	details := map[string]any{}

	if root.FamilyRootedTo != nil {
		if fam, err := s.store.GetFamilyLite(ctx, *root.FamilyRootedTo); err == nil {
			msg = "user selected as root is already a root in " + fam.FamilyName + " family, consider joining the family instead"
			details["familyUsername"] = fam.FamilyUsername
		}
	}
	return apperror.ErrConflict.WithMessage(msg).WithDetails(details)
}

// JoinFamily attaches an existing person to an existing family. The member
// insert is the idempotency gate: under concurrent joins for the same (user,
// family) pair exactly one insert lands, the rest surface as conflicts.
func (s *Service) JoinFamily(ctx context.Context, req JoinFamilyRequest) (*JoinFamilyResult, error) {
	ctx, span := tracing.Start(ctx, "family.join",
		attribute.String("kindred.family.id", req.FamilyID),
		attribute.String("kindred.user.id", req.User),
	)
	defer span.End()

	if req.FamilyID == "" || req.User == "" {
		return nil, apperror.NewBadRequest("familyId and user are required")
	}

	rel, err := ParseRelationship(req.RelationshipToRoot)
	if err != nil {
		return nil, err
	}
	if rel == RelationRoot {
		return nil, apperror.ErrValidation.WithMessage("cannot join a family as its root")
	}
	if !rel.IsTopLevel() && req.Parent == "" {
		return nil, apperror.ErrValidation.WithMessage("relationship is disconnected from root: create or select the parent who links you to the root")
	}
	if rel.IsTopLevel() && req.Parent != "" {
		return nil, apperror.ErrValidation.WithMessage("relationship connects directly to root: a parent must not be supplied")
	}

	fam, err := s.store.GetFamilyLite(ctx, req.FamilyID)
	if err != nil {
		return nil, opFailure(err, apperror.ErrFamilyJoinFailed)
	}

	existing, err := s.store.FindMemberByUserAndUsername(ctx, req.User, fam.FamilyUsername)
	if err != nil {
		return nil, opFailure(err, apperror.ErrFamilyJoinFailed)
	}
	if existing != nil {
		return nil, apperror.ErrConflict.WithMessage("you're already a member of this family")
	}

	var familyType *string
	if req.FamilyType != "" {
		ft, err := ParseFamilyType(req.FamilyType)
		if err != nil {
			return nil, err
		}
		familyType = &ft

		check, err := s.ValidateFamilyTypeUniqueness(ctx, req.User, ft)
		if err != nil {
			return nil, opFailure(err, apperror.ErrFamilyJoinFailed)
		}
		if !check.Unique {
			return nil, apperror.ErrConflict.WithMessage(
				"you already belong to a " + ft + " family (" + check.ConflictFamily + "); exit it before joining another of the same type")
		}
	}

	member := &FamilyMember{
		UserID:             req.User,
		FamilyID:           &fam.ID,
		FamilyUsername:     fam.FamilyUsername,
		FamilyType:         familyType,
		RelationshipToRoot: rel.String(),
	}
	if req.Parent != "" {
		parent := req.Parent
		member.ParentID = &parent
	}

	if err := s.store.AddMember(ctx, member); err != nil {
		return nil, opFailure(err, apperror.ErrFamilyJoinFailed)
	}

	membersJoined.Inc()
	s.log.Info("member joined family",
		slog.String("familyId", fam.ID),
		slog.String("userId", req.User),
	)

	return &JoinFamilyResult{
		FamilyID:   fam.ID,
		FamilyName: fam.FamilyName,
		MemberID:   member.ID,
	}, nil
}

// GetFamily fetches a family with roster, root and branches expanded.
func (s *Service) GetFamily(ctx context.Context, id string) (*Family, error) {
	if id == "" {
		return nil, apperror.NewBadRequest("family id is required")
	}
	return s.store.GetFamily(ctx, id)
}

// ValidateFamilyTypeUniqueness reports whether the user is still free on the
// given MATERNAL/PATERNAL axis, naming the conflicting family when not.
func (s *Service) ValidateFamilyTypeUniqueness(ctx context.Context, userID, familyType string) (*TypeCheckResult, error) {
	ft, err := ParseFamilyType(familyType)
	if err != nil {
		return nil, err
	}

	member, err := s.store.FindMemberByUserAndType(ctx, userID, ft)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return &TypeCheckResult{Unique: true}, nil
	}

	result := &TypeCheckResult{Unique: false}
	if member.Family != nil {
		result.ConflictFamily = member.Family.FamilyName
	}
	return result, nil
}

// ValidateRelationshipToRoot reports whether the relationship connects
// directly to the root. False means the caller must create or select a
// parent first.
func (s *Service) ValidateRelationshipToRoot(value string) (bool, error) {
	rel, err := ParseRelationship(value)
	if err != nil {
		return false, err
	}
	return rel.IsTopLevel(), nil
}

// Search matches free text across name, username, country and state. No
// matches is an empty result, not an error.
func (s *Service) Search(ctx context.Context, req SearchFamilyRequest) ([]*Family, error) {
	text := strings.TrimSpace(req.SearchText)
	if text == "" {
		return nil, apperror.NewBadRequest("searchText is required")
	}

	fams, err := s.store.SearchFamilies(ctx, text)
	if err != nil {
		return nil, opFailure(err, apperror.ErrFamilySearchFailed)
	}
	return fams, nil
}

// Query applies the conjunctive family filter. Each hit carries the root
// reduced to its public profile; the full person record stays off the wire.
func (s *Service) Query(ctx context.Context, req QueryFamiliesRequest) ([]*FamilyOverview, error) {
	fams, err := s.store.QueryFamilies(ctx, req)
	if err != nil {
		return nil, opFailure(err, apperror.ErrFamilySearchFailed)
	}

	out := make([]*FamilyOverview, 0, len(fams))
	for _, fam := range fams {
		overview := &FamilyOverview{Family: fam}
		if fam.Root != nil {
			overview.Root = fam.Root.ToPublic()
		}
		out = append(out, overview)
	}
	return out, nil
}

// Update applies a partial update: fetch, merge non-nil fields, persist.
func (s *Service) Update(ctx context.Context, id string, req UpdateFamilyRequest) (*Family, error) {
	fam, err := s.store.GetFamilyLite(ctx, id)
	if err != nil {
		return nil, opFailure(err, apperror.ErrFamilyUpdateFailed)
	}

	if req.FamilyName != nil {
		fam.FamilyName = *req.FamilyName
	}
	if req.Country != nil {
		fam.Country = *req.Country
	}
	if req.State != nil {
		fam.State = *req.State
	}
	if req.Tribe != nil {
		fam.Tribe = *req.Tribe
	}
	if req.FamilyCoverImage != nil {
		fam.FamilyCoverImage = *req.FamilyCoverImage
	}
	if req.WikiID != nil {
		fam.WikiID = req.WikiID
	}

	updated, err := s.store.UpdateFamily(ctx, fam)
	if err != nil {
		return nil, opFailure(err, apperror.ErrFamilyUpdateFailed)
	}
	return updated, nil
}
