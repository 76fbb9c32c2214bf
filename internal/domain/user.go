package domain

import "time"

// User carries the authentication-relevant credential fields alongside the
// profile. The lockout counters are mutated only by the lockout policy; the
// password hash only by password change/reset flows.
type User struct {
	ID                  uint       `gorm:"primaryKey" json:"id"`
	SchoolID            uint       `gorm:"index;not null" json:"school_id"`
	Username            string     `gorm:"uniqueIndex;size:255;not null" json:"username"`
	Email               string     `gorm:"size:255" json:"email"`
	Name                string     `gorm:"size:255;not null" json:"name"`
	Role                string     `gorm:"size:64;not null;default:staff" json:"role"`
	PasswordHash        string     `gorm:"size:1024;not null" json:"-"`
	Deactivated         bool       `gorm:"not null;default:false" json:"deactivated"`
	FailedLoginAttempts int        `gorm:"not null;default:0" json:"-"`
	LastFailedLoginAt   *time.Time `json:"-"`
	LastFailedLoginIP   *string    `gorm:"size:64" json:"-"`
	LastLoginAt         *time.Time `json:"last_login_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}
