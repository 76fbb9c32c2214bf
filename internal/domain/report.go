package domain

import "time"

// FinancialReport is back-office bookkeeping data. Status transitions are
// owned by an external report-status collaborator; this service only reads
// and lists it under permission checks.
type FinancialReport struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SchoolID  uint      `gorm:"index;not null" json:"school_id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Period    string    `gorm:"size:32;not null;index" json:"period"`
	Status    string    `gorm:"size:32;not null;default:draft" json:"status"`
	AmountDue float64   `gorm:"not null;default:0" json:"amount_due"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
