package database

import (
	"github.com/brightclass/backoffice/internal/domain"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.School{},
		&domain.User{},
		&domain.MfaSettings{},
		&domain.MfaLoginNonce{},
		&domain.FinancialReport{},
	)
}
