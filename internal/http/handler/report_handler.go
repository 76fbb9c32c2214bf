package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"gorm.io/gorm"

	"github.com/brightclass/backoffice/internal/domain"
	"github.com/brightclass/backoffice/internal/http/middleware"
	"github.com/brightclass/backoffice/internal/http/response"
	"github.com/brightclass/backoffice/internal/observability"
	"github.com/brightclass/backoffice/internal/repository"
	"github.com/brightclass/backoffice/internal/service"
)

type ReportHandler struct {
	reports repository.FinancialReportRepository
	eval    *service.PermissionEvaluator
}

func NewReportHandler(reports repository.FinancialReportRepository, eval *service.PermissionEvaluator) *ReportHandler {
	return &ReportHandler{reports: reports, eval: eval}
}

// List returns reports across all schools for callers with the global read
// permission, scoped to the caller's school otherwise.
func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth context", nil)
		return
	}

	var (
		reports []domain.FinancialReport
		err     error
	)
	if h.eval.HasPermission(principal.Role, "reports:global:read") {
		reports, err = h.reports.List()
	} else {
		reports, err = h.reports.ListBySchool(principal.SchoolID)
	}
	if err != nil {
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "report listing failed", nil)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]any{"reports": reports})
}

func (h *ReportHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth context", nil)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid report id", nil)
		return
	}
	report, err := h.reports.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "report not found", nil)
		return
	}
	if err != nil {
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "report lookup failed", nil)
		return
	}
	// Cross-school reads 404 rather than 403: existence of another school's
	// report is not disclosed.
	if report.SchoolID != principal.SchoolID && !h.eval.HasPermission(principal.Role, "reports:global:read") {
		response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "report not found", nil)
		return
	}
	response.JSON(w, r, http.StatusOK, report)
}

type reportRequest struct {
	Title     string  `json:"title"`
	Period    string  `json:"period"`
	AmountDue float64 `json:"amount_due"`
}

func (h *ReportHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth context", nil)
		return
	}

	var req reportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Title == "" || req.Period == "" {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "title and period are required", nil)
		return
	}

	report := &domain.FinancialReport{
		SchoolID:  principal.SchoolID,
		Title:     req.Title,
		Period:    req.Period,
		Status:    "draft",
		AmountDue: req.AmountDue,
	}
	if err := h.reports.Create(report); err != nil {
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "report creation failed", nil)
		return
	}
	observability.Audit(r, "report.created", "report_id", report.ID, "school_id", report.SchoolID)
	response.JSON(w, r, http.StatusCreated, report)
}

func (h *ReportHandler) Update(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth context", nil)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid report id", nil)
		return
	}
	report, err := h.reports.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "report not found", nil)
		return
	}
	if err != nil {
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "report lookup failed", nil)
		return
	}
	if report.SchoolID != principal.SchoolID && !h.eval.HasPermission(principal.Role, "reports:global:read") {
		response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "report not found", nil)
		return
	}

	var req reportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
		return
	}
	if req.Title != "" {
		report.Title = req.Title
	}
	if req.Period != "" {
		report.Period = req.Period
	}
	if req.AmountDue != 0 {
		report.AmountDue = req.AmountDue
	}
	if err := h.reports.Update(report); err != nil {
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "report update failed", nil)
		return
	}
	observability.Audit(r, "report.updated", "report_id", report.ID)
	response.JSON(w, r, http.StatusOK, report)
}
