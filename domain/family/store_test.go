package family

// In-memory Store used by the service tests. It enforces the same uniqueness
// rules the database indexes do, and applies creation plans all-or-nothing,
// which is what makes the concurrency properties testable without a database.

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/kindredhq/kindred/domain/users"
	"github.com/kindredhq/kindred/pkg/apperror"
)

type memStore struct {
	mu       sync.Mutex
	users    map[string]*users.PrimaryUser
	families map[string]*Family
	members  []*FamilyMember
}

func newMemStore() *memStore {
	return &memStore{
		users:    make(map[string]*users.PrimaryUser),
		families: make(map[string]*Family),
	}
}

func (m *memStore) seedUser(u *users.PrimaryUser) *users.PrimaryUser {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	if u.Role == "" {
		u.Role = users.RoleNone
	}
	m.users[u.ID] = u
	return u
}

func (m *memStore) seedFamily(f *Family) *Family {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	m.families[f.ID] = f
	return f
}

func (m *memStore) seedMember(fm *FamilyMember) *FamilyMember {
	m.mu.Lock()
	defer m.mu.Unlock()
	if fm.ID == "" {
		fm.ID = uuid.New().String()
	}
	m.members = append(m.members, fm)
	return fm
}

func (m *memStore) memberCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.members)
}

func (m *memStore) familyCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.families)
}

func (m *memStore) userCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}

func (m *memStore) GetUser(_ context.Context, id string) (*users.PrimaryUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, apperror.ErrUserNotFound.WithMessage("user with id " + id + " not found")
}

func (m *memStore) GetFamily(ctx context.Context, id string) (*Family, error) {
	fam, err := m.GetFamilyLite(ctx, id)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	fam.Members = nil
	for _, fm := range m.members {
		if fm.FamilyID != nil && *fm.FamilyID == id {
			fm.User = m.users[fm.UserID]
			fam.Members = append(fam.Members, fm)
		}
	}
	fam.Root = m.users[fam.RootID]
	for _, branchID := range fam.BranchIDs {
		if branch, ok := m.families[branchID]; ok {
			fam.Branches = append(fam.Branches, branch)
		}
	}
	return fam, nil
}

func (m *memStore) GetFamilyLite(_ context.Context, id string) (*Family, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.families[id]; ok {
		return f, nil
	}
	return nil, apperror.ErrFamilyNotFound.WithMessage("family with id " + id + " not found")
}

func (m *memStore) FindMemberByUserAndUsername(_ context.Context, userID, familyUsername string) (*FamilyMember, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, fm := range m.members {
		if fm.UserID == userID && fm.FamilyUsername == familyUsername {
			return fm, nil
		}
	}
	return nil, nil
}

func (m *memStore) FindMemberByUserAndType(_ context.Context, userID, familyType string) (*FamilyMember, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, fm := range m.members {
		if fm.UserID == userID && fm.FamilyType != nil &&
			strings.EqualFold(*fm.FamilyType, familyType) {
			if fm.FamilyID != nil {
				fm.Family = m.families[*fm.FamilyID]
			}
			return fm, nil
		}
	}
	return nil, nil
}

func (m *memStore) CreateFamilyGraph(_ context.Context, plan *CreationPlan) (*Family, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Validate everything before mutating anything, so a conflicting plan
	// leaves no partial state behind.
	for _, f := range m.families {
		if f.FamilyUsername == plan.Family.FamilyUsername {
			return nil, errUsernameTaken
		}
	}

	if plan.NewRoot != nil && plan.NewRoot.UserName != nil {
		for _, u := range m.users {
			if u.UserName != nil && strings.EqualFold(*u.UserName, *plan.NewRoot.UserName) {
				return nil, apperror.ErrUsernameExists
			}
		}
	}

	newMembers := []*FamilyMember{plan.RootMember, plan.CreatorMember}
	for _, nm := range newMembers {
		userID := nm.UserID
		if userID == "" && plan.NewRoot != nil {
			continue // root member bound to the not-yet-inserted root
		}
		for _, fm := range m.members {
			if fm.UserID == userID && fm.FamilyUsername == nm.FamilyUsername {
				return nil, apperror.ErrConflict.WithMessage("you're already a member of this family")
			}
			if fm.UserID == userID && fm.FamilyType != nil && nm.FamilyType != nil &&
				strings.EqualFold(*fm.FamilyType, *nm.FamilyType) {
				return nil, apperror.ErrConflict.WithMessage("you already belong to a family of this type")
			}
		}
	}

	if plan.ExistingRootID != "" {
		root, ok := m.users[plan.ExistingRootID]
		if !ok {
			return nil, apperror.ErrUserNotFound
		}
		if root.Role == users.RoleRoot {
			return nil, apperror.ErrConflict.WithMessage("user selected as root is already a root in another family")
		}
	}

	// Commit.
	if plan.Placeholder != nil {
		plan.Placeholder.ID = uuid.New().String()
		m.users[plan.Placeholder.ID] = plan.Placeholder
		plan.CreatorMember.ParentID = &plan.Placeholder.ID
	}

	if plan.NewRoot != nil {
		plan.NewRoot.ID = uuid.New().String()
		m.users[plan.NewRoot.ID] = plan.NewRoot
		plan.RootMember.UserID = plan.NewRoot.ID
		plan.Family.RootID = plan.NewRoot.ID
	}

	plan.Family.ID = uuid.New().String()
	plan.Family.MembersCount = len(newMembers)
	m.families[plan.Family.ID] = plan.Family

	for _, nm := range newMembers {
		nm.ID = uuid.New().String()
		nm.FamilyID = &plan.Family.ID
		m.members = append(m.members, nm)
	}

	if plan.ExistingRootID != "" {
		root := m.users[plan.ExistingRootID]
		root.Role = users.RoleRoot
		root.FamilyRootedTo = &plan.Family.ID
	} else if plan.NewRoot != nil {
		plan.NewRoot.FamilyRootedTo = &plan.Family.ID
	}

	plan.Family.Members = newMembers
	return plan.Family, nil
}

func (m *memStore) AddMember(_ context.Context, member *FamilyMember) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, fm := range m.members {
		if fm.UserID == member.UserID && fm.FamilyUsername == member.FamilyUsername {
			return apperror.ErrConflict.WithMessage("you're already a member of this family")
		}
		if fm.UserID == member.UserID && fm.FamilyType != nil && member.FamilyType != nil &&
			strings.EqualFold(*fm.FamilyType, *member.FamilyType) {
			return apperror.ErrConflict.WithMessage("you already belong to a family of this type")
		}
	}

	member.ID = uuid.New().String()
	m.members = append(m.members, member)
	if fam, ok := m.families[*member.FamilyID]; ok {
		fam.MembersCount++
	}
	return nil
}

func (m *memStore) SearchFamilies(_ context.Context, text string) ([]*Family, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	needle := strings.ToLower(text)
	var out []*Family
	for _, f := range m.families {
		haystacks := []string{f.FamilyName, f.FamilyUsername, f.Country, f.State}
		for _, h := range haystacks {
			if strings.Contains(strings.ToLower(h), needle) {
				out = append(out, f)
				break
			}
		}
	}
	return out, nil
}

func (m *memStore) QueryFamilies(_ context.Context, req QueryFamiliesRequest) ([]*Family, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	contains := func(haystack, needle string) bool {
		return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
	}

	var out []*Family
	for _, f := range m.families {
		if !contains(f.FamilyName, req.FamilyName) || !contains(f.Country, req.Country) ||
			!contains(f.State, req.State) || !contains(f.Tribe, req.Tribe) {
			continue
		}

		f.Root = m.users[f.RootID]
		f.Members = nil
		for _, fm := range m.members {
			if fm.FamilyID != nil && *fm.FamilyID == f.ID {
				fm.User = m.users[fm.UserID]
				f.Members = append(f.Members, fm)
			}
			if len(f.Members) == rosterDisplayCap {
				break
			}
		}
		out = append(out, f)
	}
	return out, nil
}

func (m *memStore) UpdateFamily(_ context.Context, fam *Family) (*Family, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.families[fam.ID] = fam
	return fam, nil
}
