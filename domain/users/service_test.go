package users

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kindredhq/kindred/pkg/apperror"
	"github.com/kindredhq/kindred/pkg/auth"
)

// fakeStore is an in-memory Store enforcing the same uniqueness rules as the
// database indexes.
type fakeStore struct {
	mu    sync.Mutex
	users map[string]*PrimaryUser
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: make(map[string]*PrimaryUser)}
}

func (f *fakeStore) FindByEmail(_ context.Context, email string) (*PrimaryUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email != nil && strings.EqualFold(*u.Email, email) {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) FindByPhone(_ context.Context, phone string) (*PrimaryUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Phone != nil && *u.Phone == phone {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) FindByUserName(_ context.Context, userName string) (*PrimaryUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.UserName != nil && strings.EqualFold(*u.UserName, userName) {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) GetByID(_ context.Context, id string) (*PrimaryUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, apperror.ErrUserNotFound
}

func (f *fakeStore) Create(_ context.Context, user *PrimaryUser) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if user.Email != nil && u.Email != nil && strings.EqualFold(*u.Email, *user.Email) {
			return apperror.ErrMailExists
		}
		if user.Phone != nil && u.Phone != nil && *u.Phone == *user.Phone {
			return apperror.ErrPhoneExists
		}
		if user.UserName != nil && u.UserName != nil && strings.EqualFold(*u.UserName, *user.UserName) {
			return apperror.ErrUsernameExists
		}
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeStore) Update(_ context.Context, user *PrimaryUser) (*PrimaryUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[user.ID] = user
	return user, nil
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []string
}

func (m *recordingMailer) SendWelcome(_ context.Context, to, _ string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, to)
}

func newTestService() (*Service, *fakeStore, *recordingMailer) {
	store := newFakeStore()
	mailer := &recordingMailer{}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(store, mailer, log), store, mailer
}

func TestSignupCreatesUserAndHashesPassword(t *testing.T) {
	svc, _, mailer := newTestService()

	user, err := svc.Signup(context.Background(), SignupRequest{
		FullName: "Adaeze Okafor",
		Email:    "Adaeze@Example.com",
		Phone:    "+2348012345678",
		Password: "correct horse",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "adaeze@example.com", *user.Email)
	assert.Equal(t, RoleNone, user.Role)
	assert.True(t, user.IsActive)

	require.NotNil(t, user.PasswordHash)
	assert.NotContains(t, *user.PasswordHash, "correct horse")
	ok, err := auth.VerifyPassword("correct horse", *user.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Equal(t, []string{"adaeze@example.com"}, mailer.sent)
}

func TestSignupRejectsDuplicateEmail(t *testing.T) {
	svc, _, mailer := newTestService()
	ctx := context.Background()

	_, err := svc.Signup(ctx, SignupRequest{FullName: "A", Email: "a@x.com", Password: "pw"})
	require.NoError(t, err)

	_, err = svc.Signup(ctx, SignupRequest{FullName: "B", Email: "A@X.COM", Password: "pw"})
	require.Error(t, err)
	appErr, ok := err.(*apperror.Error)
	require.True(t, ok)
	assert.Equal(t, "mail_already_exist", appErr.Code)

	assert.Len(t, mailer.sent, 1)
}

func TestSignupRejectsDuplicatePhone(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Signup(ctx, SignupRequest{FullName: "A", Email: "a@x.com", Phone: "+123", Password: "pw"})
	require.NoError(t, err)

	_, err = svc.Signup(ctx, SignupRequest{FullName: "B", Email: "b@x.com", Phone: "+123", Password: "pw"})
	require.Error(t, err)
	appErr, ok := err.(*apperror.Error)
	require.True(t, ok)
	assert.Equal(t, "phone_already_exist", appErr.Code)
}

func TestSignupRequiresMandatoryFields(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Signup(context.Background(), SignupRequest{Email: "a@x.com"})
	require.Error(t, err)
	assert.Equal(t, "bad_request", err.(*apperror.Error).Code)
}

func TestSearchByEmailAndUserName(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()

	name := "chidi99"
	email := "chidi@x.com"
	require.NoError(t, store.Create(ctx, &PrimaryUser{FullName: "Chidi", Email: &email, UserName: &name}))

	byEmail, err := svc.Search(ctx, SearchUserRequest{Email: "chidi@x.com"})
	require.NoError(t, err)
	assert.Equal(t, "Chidi", byEmail.FullName)

	byName, err := svc.Search(ctx, SearchUserRequest{UserName: "CHIDI99"})
	require.NoError(t, err)
	assert.Equal(t, "Chidi", byName.FullName)

	_, err = svc.Search(ctx, SearchUserRequest{UserName: "missing"})
	assert.True(t, apperror.IsNotFound(err))

	_, err = svc.Search(ctx, SearchUserRequest{})
	require.Error(t, err)
	assert.Equal(t, "bad_request", err.(*apperror.Error).Code)
}

func TestUpdateMergesPartialFields(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()

	email := "ada@x.com"
	user := &PrimaryUser{FullName: "Ada", Email: &email}
	require.NoError(t, store.Create(ctx, user))

	newName := "Ada Obi"
	photo := "photos/ada.png"
	updated, err := svc.Update(ctx, user.ID, UpdateUserRequest{FullName: &newName, ProfilePhoto: &photo})
	require.NoError(t, err)

	assert.Equal(t, "Ada Obi", updated.FullName)
	assert.Equal(t, "photos/ada.png", *updated.ProfilePhoto)
	assert.Equal(t, "ada@x.com", *updated.Email) // untouched
}

func TestUpdateRehashesPassword(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()

	email := "ada@x.com"
	user := &PrimaryUser{FullName: "Ada", Email: &email}
	require.NoError(t, store.Create(ctx, user))

	pw := "new password"
	updated, err := svc.Update(ctx, user.ID, UpdateUserRequest{Password: &pw})
	require.NoError(t, err)

	require.NotNil(t, updated.PasswordHash)
	ok, err := auth.VerifyPassword(pw, *updated.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestValidateUserName(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()

	name := "taken"
	require.NoError(t, store.Create(ctx, &PrimaryUser{FullName: "T", UserName: &name}))

	free, err := svc.ValidateUserName(ctx, "taken")
	require.NoError(t, err)
	assert.False(t, free)

	free, err = svc.ValidateUserName(ctx, "untaken")
	require.NoError(t, err)
	assert.True(t, free)

	_, err = svc.ValidateUserName(ctx, "  ")
	require.Error(t, err)
}
