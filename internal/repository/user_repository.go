package repository

import (
	"time"

	"github.com/brightclass/backoffice/internal/domain"

	"gorm.io/gorm"
)

// UserRepository is the storage collaborator for credential state. Save
// persists the full record; UpdateLockoutState writes only the fields the
// lockout policy owns so concurrent profile edits are not clobbered.
type UserRepository interface {
	FindByID(id uint) (*domain.User, error)
	FindByUsername(username string) (*domain.User, error)
	Create(user *domain.User) error
	Update(user *domain.User) error
	UpdateLockoutState(user *domain.User) error
	TouchLastLogin(userID uint, at time.Time) error
	List() ([]domain.User, error)
	ListBySchool(schoolID uint) ([]domain.User, error)
}

type GormUserRepository struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) UserRepository { return &GormUserRepository{db: db} }

func (r *GormUserRepository) FindByID(id uint) (*domain.User, error) {
	var u domain.User
	if err := r.db.First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *GormUserRepository) FindByUsername(username string) (*domain.User, error) {
	var u domain.User
	// Usernames are case-sensitive; no normalization here.
	if err := r.db.Where("username = ?", username).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *GormUserRepository) Create(user *domain.User) error { return r.db.Create(user).Error }
func (r *GormUserRepository) Update(user *domain.User) error { return r.db.Save(user).Error }

func (r *GormUserRepository) UpdateLockoutState(user *domain.User) error {
	return r.db.Model(&domain.User{}).Where("id = ?", user.ID).
		Updates(map[string]any{
			"failed_login_attempts": user.FailedLoginAttempts,
			"last_failed_login_at":  user.LastFailedLoginAt,
			"last_failed_login_ip":  user.LastFailedLoginIP,
			"updated_at":            time.Now().UTC(),
		}).Error
}

func (r *GormUserRepository) TouchLastLogin(userID uint, at time.Time) error {
	return r.db.Model(&domain.User{}).Where("id = ?", userID).
		Updates(map[string]any{"last_login_at": at, "updated_at": at}).Error
}

func (r *GormUserRepository) List() ([]domain.User, error) {
	var users []domain.User
	err := r.db.Order("id").Find(&users).Error
	return users, err
}

func (r *GormUserRepository) ListBySchool(schoolID uint) ([]domain.User, error) {
	var users []domain.User
	err := r.db.Where("school_id = ?", schoolID).Order("id").Find(&users).Error
	return users, err
}
