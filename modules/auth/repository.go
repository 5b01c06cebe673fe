package auth

import (
	"errors"
	"fmt"

	domain "github.com/V1per16/an0n-chat-render/domain/chat"
	"gorm.io/gorm"
)

var (
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrNameTaken is returned when a display name is already in use.
	ErrNameTaken = errors.New("display name already taken")
)

// UserRepository handles user persistence using GORM.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create saves a new user. The storage layer assigns the numeric ID.
func (r *UserRepository) Create(user *domain.User) error {
	if err := r.db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrNameTaken
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindByID finds a user by numeric ID.
func (r *UserRepository) FindByID(id int64) (*domain.User, error) {
	var user domain.User
	if err := r.db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

// FindByName finds a user by display name.
func (r *UserRepository) FindByName(name string) (*domain.User, error) {
	var user domain.User
	if err := r.db.First(&user, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

// NameExists checks whether a display name is already in use by another user.
// Pass excludeID = 0 when registering a new account.
func (r *UserRepository) NameExists(name string, excludeID int64) (bool, error) {
	var count int64
	q := r.db.Model(&domain.User{}).Where("name = ?", name)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check name existence: %w", err)
	}
	return count > 0, nil
}

// UpdateProfile persists mutable profile fields (name, color). Immutable
// fields (ID, PublicID, PasswordHash) are never touched here.
func (r *UserRepository) UpdateProfile(user *domain.User) error {
	result := r.db.Model(&domain.User{}).Where("id = ?", user.ID).
		Updates(map[string]any{"name": user.Name, "color": user.Color})
	if err := result.Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrNameTaken
		}
		return fmt.Errorf("failed to update profile: %w", err)
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Delete removes a user. Messages keep their author_id; the message log
// tolerates dangling author references.
func (r *UserRepository) Delete(id int64) error {
	result := r.db.Delete(&domain.User{}, "id = ?", id)
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
