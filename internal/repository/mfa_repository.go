package repository

import (
	"errors"
	"time"

	"github.com/brightclass/backoffice/internal/domain"

	"gorm.io/gorm"
)

// MfaSettingsRepository persists per-user OTP enrollment state. FindByUserID
// returns a synthetic disabled record when no row exists yet, so callers
// always see a well-formed state machine.
type MfaSettingsRepository interface {
	FindByUserID(userID uint) (*domain.MfaSettings, error)
	Save(settings *domain.MfaSettings) error
}

type GormMfaSettingsRepository struct{ db *gorm.DB }

func NewMfaSettingsRepository(db *gorm.DB) MfaSettingsRepository {
	return &GormMfaSettingsRepository{db: db}
}

func (r *GormMfaSettingsRepository) FindByUserID(userID uint) (*domain.MfaSettings, error) {
	var s domain.MfaSettings
	err := r.db.Where("user_id = ?", userID).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &domain.MfaSettings{UserID: userID, State: domain.MfaDisabled}, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *GormMfaSettingsRepository) Save(settings *domain.MfaSettings) error {
	settings.UpdatedAt = time.Now().UTC()
	return r.db.Save(settings).Error
}

// ErrNonceNotFound reports that no login nonce row matches the presented
// handle, either because it never existed or was already consumed.
var ErrNonceNotFound = errors.New("login nonce not found")

// MfaLoginNonceRepository stores the ephemeral binding between a
// password-verified login and the pending OTP submission. Nonces are
// single-use: Consume deletes the row.
type MfaLoginNonceRepository interface {
	Create(nonce *domain.MfaLoginNonce) error
	FindByNonce(nonce string) (*domain.MfaLoginNonce, error)
	Consume(id uint) error
	DeleteByUserID(userID uint) error
	DeleteExpired(before time.Time) (int64, error)
}

type GormMfaLoginNonceRepository struct{ db *gorm.DB }

func NewMfaLoginNonceRepository(db *gorm.DB) MfaLoginNonceRepository {
	return &GormMfaLoginNonceRepository{db: db}
}

func (r *GormMfaLoginNonceRepository) Create(nonce *domain.MfaLoginNonce) error {
	return r.db.Create(nonce).Error
}

func (r *GormMfaLoginNonceRepository) FindByNonce(nonce string) (*domain.MfaLoginNonce, error) {
	var n domain.MfaLoginNonce
	err := r.db.Where("nonce = ?", nonce).First(&n).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNonceNotFound
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *GormMfaLoginNonceRepository) Consume(id uint) error {
	res := r.db.Delete(&domain.MfaLoginNonce{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNonceNotFound
	}
	return nil
}

func (r *GormMfaLoginNonceRepository) DeleteByUserID(userID uint) error {
	return r.db.Where("user_id = ?", userID).Delete(&domain.MfaLoginNonce{}).Error
}

func (r *GormMfaLoginNonceRepository) DeleteExpired(before time.Time) (int64, error) {
	res := r.db.Where("expires_at <= ?", before).Delete(&domain.MfaLoginNonce{})
	return res.RowsAffected, res.Error
}
