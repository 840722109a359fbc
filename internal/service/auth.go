package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/msomdec/thanku/internal/domain"
)

// AuthService resolves request credentials to users, issues tokens and
// manages stored passwords.
type AuthService struct {
	users    domain.UserRepository
	tokens   *TokenService
	hasher   *PasswordHasher
	tokenTTL time.Duration

	// dummyHash is compared against when a username does not exist, so the
	// response time does not tell callers which usernames are registered.
	dummyHash func() string
}

// NewAuthService creates a new AuthService. A non-positive tokenTTL means DefaultTokenTTL.
func NewAuthService(users domain.UserRepository, tokens *TokenService, hasher *PasswordHasher, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = DefaultTokenTTL
	}
	return &AuthService{
		users:    users,
		tokens:   tokens,
		hasher:   hasher,
		tokenTTL: tokenTTL,
		dummyHash: sync.OnceValue(func() string {
			hash, err := hasher.Hash("thanku-timing-equalizer")
			if err != nil {
				slog.Error("compute dummy password hash", "error", err)
			}
			return hash
		}),
	}
}

// TokenTTL returns the lifetime of tokens issued by IssueToken.
func (s *AuthService) TokenTTL() time.Duration {
	return s.tokenTTL
}

// Authenticate resolves identifier and secret to a user. identifier is tried
// as a token first; if it is not a valid token it is treated as a username
// and secret as that user's password.
//
// Every authentication failure is returned as domain.ErrUnauthorized. A valid
// token whose user no longer exists fails without trying the password path.
// Store failures are returned wrapped and are not ErrUnauthorized.
func (s *AuthService) Authenticate(ctx context.Context, identifier, secret string) (*domain.User, error) {
	userID, err := s.tokens.Validate(identifier)
	if err == nil {
		user, err := s.users.GetByID(ctx, userID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				slog.Info("token references missing user", "user_id", userID)
				return nil, domain.ErrUnauthorized
			}
			return nil, fmt.Errorf("get token user: %w", err)
		}
		return user, nil
	}
	logTokenFailure(err)

	return s.verifyPassword(ctx, identifier, secret)
}

// SignIn checks a username and password without issuing anything.
func (s *AuthService) SignIn(ctx context.Context, username, password string) (*domain.User, error) {
	return s.verifyPassword(ctx, username, password)
}

// IssueToken returns a token for user valid for TokenTTL.
func (s *AuthService) IssueToken(user *domain.User) (string, error) {
	token, err := s.tokens.Issue(user.ID, s.tokenTTL)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

// CreateUser registers a user with a freshly hashed password.
func (s *AuthService) CreateUser(ctx context.Context, username, name, imageURL, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", domain.ErrInvalidInput)
	}
	// A username containing dots could be mistaken for a token.
	if strings.Contains(username, ".") {
		return nil, fmt.Errorf("%w: username must not contain '.'", domain.ErrInvalidInput)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		Name:         strings.TrimSpace(name),
		ImageURL:     strings.TrimSpace(imageURL),
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// SetPassword rehashes and stores a new password for the user.
func (s *AuthService) SetPassword(ctx context.Context, userID int64, password string) error {
	if password == "" {
		return fmt.Errorf("%w: password is required", domain.ErrInvalidInput)
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePasswordHash(ctx, userID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// GetUserByID retrieves a user by their ID.
func (s *AuthService) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

// GetUserByUsername retrieves a user by their username.
func (s *AuthService) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.users.GetByUsername(ctx, username)
}

// ListUsers returns all users.
func (s *AuthService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

// DeleteUser removes a user and, through the store, the credits they gave or received.
func (s *AuthService) DeleteUser(ctx context.Context, id int64) error {
	return s.users.Delete(ctx, id)
}

func (s *AuthService) verifyPassword(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.hasher.Verify(password, s.dummyHash())
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, domain.ErrUnauthorized
	}
	return user, nil
}

func logTokenFailure(err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidSignature):
		slog.Warn("rejected token with invalid signature")
	case errors.Is(err, domain.ErrTokenExpired):
		slog.Info("rejected expired token")
	default:
		slog.Debug("identifier is not a token", "reason", err)
	}
}
