package domain

import "time"

// MfaState is the explicit OTP enrollment state. Invalid field combinations
// (a secret without a state, a verified flag without a secret) are not
// representable: the state column is the single source of truth and the
// secret/recovery columns are populated exactly when the state requires them.
type MfaState string

const (
	MfaDisabled            MfaState = "disabled"
	MfaPendingVerification MfaState = "pending_verification"
	MfaEnabled             MfaState = "enabled"
)

// MfaSettings is the per-user OTP enrollment record. SecretBase32 and
// RecoveryCode are set while State is pending_verification or enabled and
// cleared on disable.
type MfaSettings struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	State        MfaState  `gorm:"size:32;not null;default:disabled" json:"state"`
	SecretBase32 string    `gorm:"size:64" json:"-"`
	RecoveryCode string    `gorm:"size:128" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// MfaLoginNonce binds a password-verified login attempt to a pending OTP
// submission. Rows are single-use: deleted on successful validation or
// recovery, left in place (until expiry) on a wrong code so the user may
// retry.
type MfaLoginNonce struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	Nonce     string    `gorm:"uniqueIndex;size:64;not null" json:"nonce"`
	UserID    uint      `gorm:"index;not null" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `json:"-"`
}
