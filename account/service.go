// Package account registers users and verifies their credentials.
package account

import (
	"context"
	"regexp"

	"github.com/go-faster/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"goflare.io/storefront/models"
)

// MinPasswordLength is the shortest password accepted at sign-up.
const MinPasswordLength = 6

// MaxPasswordLength is the longest password bcrypt can hash, in bytes.
const MaxPasswordLength = 72

var (
	ErrMissingFields      = errors.New("please fill in all fields")
	ErrInvalidEmail       = errors.New("please enter a valid email address")
	ErrPasswordTooShort   = errors.New("password must be at least 6 characters long")
	ErrPasswordTooLong    = errors.New("password must be at most 72 bytes long")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrEmailTaken         = errors.New("an account with this email already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	emailPattern          = regexp.MustCompile(`\S+@\S+\.\S+`)
)

// ValidateSignup applies the sign-up form rules in the order the form reports them.
func ValidateSignup(req models.SignupRequest) error {
	if req.Name == "" || req.Email == "" || req.Password == "" || req.ConfirmPassword == "" {
		return ErrMissingFields
	}
	if !emailPattern.MatchString(req.Email) {
		return ErrInvalidEmail
	}
	if len(req.Password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if len(req.Password) > MaxPasswordLength {
		return ErrPasswordTooLong
	}
	if req.Password != req.ConfirmPassword {
		return ErrPasswordMismatch
	}
	return nil
}

type Service struct {
	repo   Repository
	cost   int
	logger *zap.Logger
}

// NewService returns a Service hashing passwords with the given bcrypt cost.
// A cost outside bcrypt's range falls back to bcrypt.DefaultCost.
func NewService(repo Repository, cost int, logger *zap.Logger) *Service {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Service{repo: repo, cost: cost, logger: logger}
}

// Signup validates the form and stores the new account.
func (s *Service) Signup(ctx context.Context, req models.SignupRequest) (*models.User, error) {
	if err := ValidateSignup(req); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}

	user := &models.User{
		Name:         req.Name,
		Email:        NormalizeEmail(req.Email),
		PasswordHash: hash,
	}
	if err = s.repo.Create(ctx, nil, user); err != nil {
		return nil, err
	}

	s.logger.Info("Account created", zap.Uint64("user_id", user.ID))
	return user, nil
}

// Verify checks email and password and returns the display name on success.
func (s *Service) Verify(ctx context.Context, email, password string) (string, error) {
	user, err := s.repo.GetByEmail(ctx, nil, email)
	if err != nil {
		return "", err
	}

	if err = bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return "", ErrInvalidCredentials
		}
		return "", errors.Wrap(err, "compare password")
	}

	return user.Name, nil
}
