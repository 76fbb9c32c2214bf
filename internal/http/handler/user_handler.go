package handler

import (
	"net/http"

	"github.com/brightclass/backoffice/internal/http/middleware"
	"github.com/brightclass/backoffice/internal/http/response"
	"github.com/brightclass/backoffice/internal/repository"
	"github.com/brightclass/backoffice/internal/service"
)

type UserHandler struct {
	users repository.UserRepository
	mfa   *service.MfaService
	eval  *service.PermissionEvaluator
}

func NewUserHandler(users repository.UserRepository, mfa *service.MfaService, eval *service.PermissionEvaluator) *UserHandler {
	return &UserHandler{users: users, mfa: mfa, eval: eval}
}

// Me returns the caller's profile, enrollment state and effective
// permissions.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth context", nil)
		return
	}
	user, err := h.users.FindByID(principal.UserID)
	if err != nil {
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "profile lookup failed", nil)
		return
	}
	mfaState, err := h.mfa.State(user.ID)
	if err != nil {
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "profile lookup failed", nil)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]any{
		"user":        user,
		"mfa_state":   mfaState,
		"permissions": h.eval.Permissions(user.Role),
	})
}

// ListUsers returns all users for platform admins and the caller's school
// only for everyone else holding the school-scoped permission.
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth context", nil)
		return
	}

	if h.eval.HasPermission(principal.Role, "users:global:read") {
		users, err := h.users.List()
		if err != nil {
			response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "user listing failed", nil)
			return
		}
		response.JSON(w, r, http.StatusOK, map[string]any{"users": users})
		return
	}

	users, err := h.users.ListBySchool(principal.SchoolID)
	if err != nil {
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "user listing failed", nil)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]any{"users": users})
}
