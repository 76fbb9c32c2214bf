package database

import (
	"errors"
	"fmt"
	"strings"

	"github.com/brightclass/backoffice/internal/domain"
	"github.com/brightclass/backoffice/internal/security"
	"github.com/brightclass/backoffice/internal/service"

	"gorm.io/gorm"
)

type SeedReport struct {
	CreatedSchool bool   `json:"created_school"`
	CreatedAdmin  bool   `json:"created_admin"`
	PromotedAdmin bool   `json:"promoted_admin"`
	AdminPassword string `json:"admin_password,omitempty"`
	AdminUsername string `json:"admin_username,omitempty"`
	DefaultSchool uint   `json:"default_school_id"`
}

// Seed makes the deployment usable on first boot: one default school and,
// when a bootstrap username is configured, a platform admin to log in with.
// If the user already exists it is promoted in place; otherwise it is
// created with a generated one-time password that is printed exactly once.
func Seed(db *gorm.DB, hasher *security.PasswordHasher, bootstrapAdminUsername string) (*SeedReport, error) {
	report := &SeedReport{}

	school := domain.School{Name: "Default School", City: "", Active: true}
	res := db.Where("name = ?", school.Name).FirstOrCreate(&school)
	if res.Error != nil {
		return nil, res.Error
	}
	report.CreatedSchool = res.RowsAffected > 0
	report.DefaultSchool = school.ID

	username := strings.TrimSpace(bootstrapAdminUsername)
	if username == "" {
		return report, nil
	}
	report.AdminUsername = username

	var u domain.User
	err := db.Where("username = ?", username).First(&u).Error
	switch {
	case err == nil:
		if u.Role != service.RolePlatformAdmin {
			if err := db.Model(&u).Update("role", service.RolePlatformAdmin).Error; err != nil {
				return nil, err
			}
			report.PromotedAdmin = true
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		password, err := security.NewRandomString(24)
		if err != nil {
			return nil, fmt.Errorf("generate bootstrap password: %w", err)
		}
		hash, err := hasher.Hash(password)
		if err != nil {
			return nil, fmt.Errorf("hash bootstrap password: %w", err)
		}
		u = domain.User{
			SchoolID:     school.ID,
			Username:     username,
			Name:         "Bootstrap Admin",
			Role:         service.RolePlatformAdmin,
			PasswordHash: hash,
		}
		if err := db.Create(&u).Error; err != nil {
			return nil, err
		}
		report.CreatedAdmin = true
		report.AdminPassword = password
	default:
		return nil, err
	}
	return report, nil
}
