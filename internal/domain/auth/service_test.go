package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taller/internal/core/apperror"
	"taller/internal/core/id"
)

type txStub struct{}

func (txStub) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type mockUserRepo struct {
	users map[string]*User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*User)}
}

func (m *mockUserRepo) Create(_ context.Context, u *User) error {
	cp := *u
	m.users[u.Email] = &cp
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, userID id.ID) (*User, error) {
	for _, u := range m.users {
		if u.ID == userID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("user", userID)
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	u, ok := m.users[email]
	if !ok {
		return nil, apperror.NewNotFound("user", email)
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserRepo) Update(_ context.Context, u *User) error {
	if _, ok := m.users[u.Email]; !ok {
		return apperror.NewNotFound("user", u.Email)
	}
	cp := *u
	m.users[u.Email] = &cp
	return nil
}

func (m *mockUserRepo) Exists(_ context.Context, email string) (bool, error) {
	_, ok := m.users[email]
	return ok, nil
}

func newTestService() (*Service, *mockUserRepo) {
	repo := newMockUserRepo()
	jwtSvc := NewJWTService(DefaultJWTConfig("test-secret"))
	svc := NewService(repo, txStub{}, jwtSvc, DefaultServiceConfig())
	return svc, repo
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	user, err := svc.Register(ctx, "ana@taller.mx", "correct-horse", "Ana", []string{RoleAccounting})
	require.NoError(t, err)
	assert.NotEmpty(t, user.PasswordHash)
	assert.NotEqual(t, "correct-horse", user.PasswordHash)

	token, logged, err := svc.Login(ctx, Credentials{Email: "ana@taller.mx", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)
	assert.Equal(t, "Bearer", token.TokenType)
	assert.True(t, token.ExpiresAt.After(time.Now()))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "ana@taller.mx", "correct-horse", "", nil)
	require.NoError(t, err)

	_, err = svc.Register(ctx, "ana@taller.mx", "other-password", "", nil)
	assert.True(t, apperror.IsConflict(err))
}

func TestRegisterShortPassword(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Register(context.Background(), "ana@taller.mx", "short", "", nil)
	require.Error(t, err)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "ana@taller.mx", "correct-horse", "", nil)
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, Credentials{Email: "ana@taller.mx", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, 1, repo.users["ana@taller.mx"].FailedLoginAttempts)

	// Unknown email reads the same as a wrong password.
	_, _, unknownErr := svc.Login(ctx, Credentials{Email: "nobody@taller.mx", Password: "x"})
	assert.Equal(t, err.Error(), unknownErr.Error())
}

func TestLoginLockout(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "ana@taller.mx", "correct-horse", "", nil)
	require.NoError(t, err)

	for i := 0; i < DefaultServiceConfig().MaxLoginAttempts; i++ {
		_, _, err = svc.Login(ctx, Credentials{Email: "ana@taller.mx", Password: "wrong"})
		require.Error(t, err)
	}
	assert.True(t, repo.users["ana@taller.mx"].IsLocked())

	// Even the right password is rejected during the lockout window.
	_, _, err = svc.Login(ctx, Credentials{Email: "ana@taller.mx", Password: "correct-horse"})
	require.Error(t, err)
	assert.Contains(t, strings.ToLower(err.Error()), "locked")
}

func TestJWTRoundTrip(t *testing.T) {
	jwtSvc := NewJWTService(DefaultJWTConfig("test-secret"))

	user := NewUser("ana@taller.mx", "hash")
	user.Roles = []string{RoleWorkshop}
	user.IsAdmin = false

	tokenString, _, err := jwtSvc.GenerateAccessToken(user)
	require.NoError(t, err)

	uc, err := jwtSvc.ValidateToken(tokenString)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), uc.UserID)
	assert.Equal(t, user.Email, uc.Email)
	assert.Equal(t, []string{RoleWorkshop}, uc.Roles)

	_, err = NewJWTService(DefaultJWTConfig("other-secret")).ValidateToken(tokenString)
	assert.Error(t, err)
}
