package auth

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	domain "github.com/V1per16/an0n-chat-render/domain/chat"
	gonanoid "github.com/jaevor/go-nanoid"
)

var (
	// ErrInvalidCredentials is returned when login credentials are invalid.
	ErrInvalidCredentials = errors.New("invalid name or password")
	// ErrInvalidName is returned when a display name fails validation.
	ErrInvalidName = errors.New("display name must be 1-50 valid characters")
	// ErrWeakPassword is returned when the password is too short.
	ErrWeakPassword = errors.New("password must be at least 8 characters")
	// ErrPasswordTooLong is returned when the password exceeds bcrypt's 72-byte limit.
	ErrPasswordTooLong = errors.New("password must be at most 72 characters")
)

const (
	maxNameLength = 50
	// publicIDLength sizes the human-shareable handle assigned at registration.
	publicIDLength = 10
)

// AuthService handles credentials, profiles and session lifecycle.
type AuthService struct {
	repo     *UserRepository
	hasher   *PasswordHasher
	sessions SessionStore
	publicID func() string
}

// NewAuthService creates a new AuthService.
func NewAuthService(repo *UserRepository, hasher *PasswordHasher, sessions SessionStore) (*AuthService, error) {
	gen, err := gonanoid.Standard(publicIDLength)
	if err != nil {
		return nil, fmt.Errorf("failed to create public id generator: %w", err)
	}
	return &AuthService{
		repo:     repo,
		hasher:   hasher,
		sessions: sessions,
		publicID: gen,
	}, nil
}

// Register creates a new user account and assigns its public handle.
func (s *AuthService) Register(_ context.Context, name, password, color string) (*domain.User, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	if len(password) < 8 {
		return nil, ErrWeakPassword
	}
	if len(password) > 72 {
		return nil, ErrPasswordTooLong
	}

	exists, err := s.repo.NameExists(name, 0)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrNameTaken
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Name:         name,
		Color:        color,
		PublicID:     s.publicID(),
		PasswordHash: passwordHash,
	}
	if err := s.repo.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login authenticates a user and creates a session, returning the bearer
// token and the user snapshot.
func (s *AuthService) Login(ctx context.Context, name, password string) (string, *domain.User, error) {
	user, err := s.repo.FindByName(name)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.sessions.Create(ctx, *user)
	if err != nil {
		return "", nil, fmt.Errorf("failed to create session: %w", err)
	}

	snapshot := user.Snapshot()
	return token, &snapshot, nil
}

// Logout revokes the session for a token.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.Revoke(ctx, token)
}

// ValidateSession resolves a bearer token to its session. Returns
// ErrSessionNotFound or ErrSessionExpired on failure.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (*domain.Session, error) {
	return s.sessions.Validate(ctx, token)
}

// UpdateProfile mutates name and/or color, then refreshes the cached user
// snapshot in every live session so future validations reflect the change
// without re-login. Empty fields are left unchanged.
func (s *AuthService) UpdateProfile(ctx context.Context, userID int64, name, color string) (*domain.User, error) {
	user, err := s.repo.FindByID(userID)
	if err != nil {
		return nil, err
	}

	if name != "" && name != user.Name {
		if err := validateName(name); err != nil {
			return nil, err
		}
		taken, err := s.repo.NameExists(name, userID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrNameTaken
		}
		user.Name = name
	}
	if color != "" {
		user.Color = color
	}

	if err := s.repo.UpdateProfile(user); err != nil {
		return nil, err
	}
	if err := s.sessions.RefreshUser(ctx, *user); err != nil {
		return nil, fmt.Errorf("failed to refresh sessions: %w", err)
	}
	return user, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(_ context.Context, userID int64) (*domain.User, error) {
	return s.repo.FindByID(userID)
}

func validateName(name string) error {
	if name == "" || len(name) > maxNameLength || !utf8.ValidString(name) {
		return ErrInvalidName
	}
	return nil
}
