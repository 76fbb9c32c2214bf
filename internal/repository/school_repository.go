package repository

import (
	"github.com/brightclass/backoffice/internal/domain"

	"gorm.io/gorm"
)

type SchoolRepository interface {
	FindByID(id uint) (*domain.School, error)
	Create(school *domain.School) error
	Update(school *domain.School) error
	List() ([]domain.School, error)
}

type GormSchoolRepository struct{ db *gorm.DB }

func NewSchoolRepository(db *gorm.DB) SchoolRepository { return &GormSchoolRepository{db: db} }

func (r *GormSchoolRepository) FindByID(id uint) (*domain.School, error) {
	var s domain.School
	if err := r.db.First(&s, id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *GormSchoolRepository) Create(school *domain.School) error { return r.db.Create(school).Error }
func (r *GormSchoolRepository) Update(school *domain.School) error { return r.db.Save(school).Error }

func (r *GormSchoolRepository) List() ([]domain.School, error) {
	var schools []domain.School
	err := r.db.Order("id").Find(&schools).Error
	return schools, err
}
