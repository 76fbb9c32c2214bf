package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/brightclass/backoffice/internal/domain"
	"github.com/brightclass/backoffice/internal/http/response"
	"github.com/brightclass/backoffice/internal/observability"
	"github.com/brightclass/backoffice/internal/repository"
)

type SchoolHandler struct {
	schools repository.SchoolRepository
}

func NewSchoolHandler(schools repository.SchoolRepository) *SchoolHandler {
	return &SchoolHandler{schools: schools}
}

func (h *SchoolHandler) List(w http.ResponseWriter, r *http.Request) {
	schools, err := h.schools.List()
	if err != nil {
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "school listing failed", nil)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]any{"schools": schools})
}

func (h *SchoolHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid school id", nil)
		return
	}
	school, err := h.schools.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "school not found", nil)
		return
	}
	if err != nil {
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "school lookup failed", nil)
		return
	}
	response.JSON(w, r, http.StatusOK, school)
}

type schoolRequest struct {
	Name   string `json:"name"`
	City   string `json:"city"`
	Active *bool  `json:"active"`
}

func (h *SchoolHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req schoolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "name is required", nil)
		return
	}
	school := &domain.School{Name: req.Name, City: req.City, Active: true}
	if req.Active != nil {
		school.Active = *req.Active
	}
	if err := h.schools.Create(school); err != nil {
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "school creation failed", nil)
		return
	}
	observability.Audit(r, "school.created", "school_id", school.ID)
	response.JSON(w, r, http.StatusCreated, school)
}

func (h *SchoolHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid school id", nil)
		return
	}
	school, err := h.schools.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "school not found", nil)
		return
	}
	if err != nil {
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "school lookup failed", nil)
		return
	}

	var req schoolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
		return
	}
	if req.Name != "" {
		school.Name = req.Name
	}
	if req.City != "" {
		school.City = req.City
	}
	if req.Active != nil {
		school.Active = *req.Active
	}
	if err := h.schools.Update(school); err != nil {
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "school update failed", nil)
		return
	}
	observability.Audit(r, "school.updated", "school_id", school.ID)
	response.JSON(w, r, http.StatusOK, school)
}

func pathID(r *http.Request, name string) (uint, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(id), nil
}
