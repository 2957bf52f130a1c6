package account

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"goflare.io/storefront/models"
)

type memoryRepository struct {
	mu     sync.Mutex
	nextID uint64
	users  map[string]models.User
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{users: make(map[string]models.User)}
}

func (m *memoryRepository) Create(_ context.Context, _ pgx.Tx, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := NormalizeEmail(user.Email)
	if _, ok := m.users[key]; ok {
		return ErrEmailTaken
	}
	m.nextID++
	user.ID = m.nextID
	m.users[key] = *user
	return nil
}

func (m *memoryRepository) GetByEmail(_ context.Context, _ pgx.Tx, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[NormalizeEmail(email)]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

func validSignup() models.SignupRequest {
	return models.SignupRequest{
		Name:            "Alice",
		Email:           "alice@example.com",
		Password:        "secret1",
		ConfirmPassword: "secret1",
	}
}

func TestValidateSignup(t *testing.T) {
	tests := []struct {
		name   string
		modify func(r *models.SignupRequest)
		want   error
	}{
		{name: "valid", modify: func(*models.SignupRequest) {}, want: nil},
		{name: "missing name", modify: func(r *models.SignupRequest) { r.Name = "" }, want: ErrMissingFields},
		{name: "missing confirmation", modify: func(r *models.SignupRequest) { r.ConfirmPassword = "" }, want: ErrMissingFields},
		{name: "email without domain", modify: func(r *models.SignupRequest) { r.Email = "alice@" }, want: ErrInvalidEmail},
		{name: "email without dot", modify: func(r *models.SignupRequest) { r.Email = "alice@example" }, want: ErrInvalidEmail},
		{name: "short password", modify: func(r *models.SignupRequest) { r.Password, r.ConfirmPassword = "abc", "abc" }, want: ErrPasswordTooShort},
		{name: "password at bcrypt limit", modify: func(r *models.SignupRequest) {
			r.Password = strings.Repeat("p", MaxPasswordLength)
			r.ConfirmPassword = r.Password
		}, want: nil},
		{name: "password over bcrypt limit", modify: func(r *models.SignupRequest) {
			r.Password = strings.Repeat("p", 80)
			r.ConfirmPassword = r.Password
		}, want: ErrPasswordTooLong},
		{name: "mismatch", modify: func(r *models.SignupRequest) { r.ConfirmPassword = "secret2" }, want: ErrPasswordMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validSignup()
			tt.modify(&req)
			err := ValidateSignup(req)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSignupThenVerify(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryRepository(), bcrypt.MinCost, zap.NewNop())

	user, err := svc.Signup(ctx, validSignup())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), user.ID)
	assert.NotEqual(t, []byte("secret1"), user.PasswordHash)

	name, err := svc.Verify(ctx, "Alice@Example.com ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", name)
}

func TestVerify_Failures(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryRepository(), bcrypt.MinCost, zap.NewNop())
	_, err := svc.Signup(ctx, validSignup())
	require.NoError(t, err)

	_, err = svc.Verify(ctx, "bob@example.com", "secret1")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.Verify(ctx, "alice@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignup_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryRepository(), bcrypt.MinCost, zap.NewNop())

	_, err := svc.Signup(ctx, validSignup())
	require.NoError(t, err)

	_, err = svc.Signup(ctx, validSignup())
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestNewService_ClampsCost(t *testing.T) {
	svc := NewService(newMemoryRepository(), 0, zap.NewNop())
	assert.Equal(t, bcrypt.DefaultCost, svc.cost)
}
