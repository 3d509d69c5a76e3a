// File: internal/services/user_services/auth_service_test.go
package user_services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthadvisor/advisor-server/internal/domain"
	"github.com/healthadvisor/advisor-server/internal/repository/user"
)

type nopLogger struct{}

func (nopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (nopLogger) Error(msg string, keysAndValues ...interface{}) {}
func (nopLogger) Debug(msg string, keysAndValues ...interface{}) {}
func (nopLogger) Warn(msg string, keysAndValues ...interface{})  {}

type memUserRepo struct {
	nextID uint
	byID   map[uint]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byID: map[uint]*domain.User{}}
}

func (r *memUserRepo) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	r.nextID++
	stored := *u
	stored.ID = r.nextID
	r.byID[stored.ID] = &stored
	result := stored
	return &result, nil
}

func (r *memUserRepo) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	if u, ok := r.byID[id]; ok {
		result := *u
		return &result, nil
	}
	return nil, user.ErrUserNotFound
}

func (r *memUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range r.byID {
		if u.Email == email {
			result := *u
			return &result, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func newTestAuthService() (*AuthService, *memUserRepo) {
	repo := newMemUserRepo()
	return NewAuthService(repo, "test-secret-key", nopLogger{}), repo
}

func TestRegister_HashesPassword(t *testing.T) {
	svc, _ := newTestAuthService()

	created, err := svc.Register(context.Background(), "Ada@Example.com", "Ada", "longenough")

	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", created.Email)
	assert.NotEqual(t, "longenough", created.Password)
	assert.NoError(t, created.ValidatePassword("longenough"))
}

func TestRegister_RejectsBadInput(t *testing.T) {
	svc, _ := newTestAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "not-an-email", "x", "longenough")
	assert.Error(t, err)

	_, err = svc.Register(ctx, "ok@example.com", "x", "short")
	assert.Error(t, err)
}

func TestRegister_RejectsDuplicateEmail(t *testing.T) {
	svc, _ := newTestAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "dup@example.com", "a", "longenough")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "dup@example.com", "b", "longenough")
	assert.Error(t, err)
}

func TestLogin_RoundTrip(t *testing.T) {
	svc, _ := newTestAuthService()
	ctx := context.Background()

	created, err := svc.Register(ctx, "login@example.com", "x", "longenough")
	require.NoError(t, err)

	account, token, err := svc.Login(ctx, "login@example.com", "longenough")
	require.NoError(t, err)
	assert.Equal(t, created.ID, account.ID)
	require.NotEmpty(t, token)

	userID, err := svc.ValidateJWTToken(token)
	require.NoError(t, err)
	assert.Equal(t, created.ID, userID)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, _ := newTestAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "who@example.com", "x", "longenough")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "who@example.com", "wrongpass")
	assert.Error(t, err)

	_, _, err = svc.Login(ctx, "nobody@example.com", "longenough")
	assert.Error(t, err)
}

func TestValidateJWTToken_RejectsGarbage(t *testing.T) {
	svc, _ := newTestAuthService()

	_, err := svc.ValidateJWTToken("")
	assert.Error(t, err)

	_, err = svc.ValidateJWTToken("not.a.token")
	assert.Error(t, err)
}
