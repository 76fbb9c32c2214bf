package repository

import (
	"github.com/brightclass/backoffice/internal/domain"

	"gorm.io/gorm"
)

type FinancialReportRepository interface {
	FindByID(id uint) (*domain.FinancialReport, error)
	Create(report *domain.FinancialReport) error
	Update(report *domain.FinancialReport) error
	ListBySchool(schoolID uint) ([]domain.FinancialReport, error)
	List() ([]domain.FinancialReport, error)
}

type GormFinancialReportRepository struct{ db *gorm.DB }

func NewFinancialReportRepository(db *gorm.DB) FinancialReportRepository {
	return &GormFinancialReportRepository{db: db}
}

func (r *GormFinancialReportRepository) FindByID(id uint) (*domain.FinancialReport, error) {
	var report domain.FinancialReport
	if err := r.db.First(&report, id).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *GormFinancialReportRepository) Create(report *domain.FinancialReport) error {
	return r.db.Create(report).Error
}

func (r *GormFinancialReportRepository) Update(report *domain.FinancialReport) error {
	return r.db.Save(report).Error
}

func (r *GormFinancialReportRepository) ListBySchool(schoolID uint) ([]domain.FinancialReport, error) {
	var reports []domain.FinancialReport
	err := r.db.Where("school_id = ?", schoolID).Order("id").Find(&reports).Error
	return reports, err
}

func (r *GormFinancialReportRepository) List() ([]domain.FinancialReport, error) {
	var reports []domain.FinancialReport
	err := r.db.Order("id").Find(&reports).Error
	return reports, err
}
