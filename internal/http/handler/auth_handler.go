package handler

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/brightclass/backoffice/internal/http/middleware"
	"github.com/brightclass/backoffice/internal/http/response"
	"github.com/brightclass/backoffice/internal/observability"
	"github.com/brightclass/backoffice/internal/repository"
	"github.com/brightclass/backoffice/internal/service"
)

type AuthHandler struct {
	auth  *service.AuthService
	mfa   *service.MfaService
	users repository.UserRepository
}

func NewAuthHandler(auth *service.AuthService, mfa *service.MfaService, users repository.UserRepository) *AuthHandler {
	return &AuthHandler{auth: auth, mfa: mfa, users: users}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "success"
	defer func() {
		observability.RecordAuthRequestDuration(r.Context(), "login", status, time.Since(start))
	}()

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" || req.Password == "" {
		status = "failure"
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "username and password are required", nil)
		return
	}

	result, err := h.auth.Authenticate(r.Context(), req.Username, req.Password, clientIP(r))
	if err != nil {
		status = "failure"
		h.writeLoginError(w, r, err)
		return
	}

	if result.MfaRequired {
		observability.Audit(r, "auth.login.mfa_challenge", "user_id", result.User.ID)
		observability.RecordLoginAttempt(r.Context(), "mfa_challenge")
		response.JSON(w, r, http.StatusOK, map[string]any{
			"mfa_required":     true,
			"mfa_nonce":        result.MfaNonce,
			"nonce_expires_at": result.MfaNonceExpiresAt,
		})
		return
	}

	observability.Audit(r, "auth.login.success", "user_id", result.User.ID)
	observability.RecordLoginAttempt(r.Context(), "success")
	writeSession(w, r, result)
}

func (h *AuthHandler) writeLoginError(w http.ResponseWriter, r *http.Request, err error) {
	var locked *service.LockedError
	var invalid *service.InvalidPasswordError
	switch {
	case errors.As(err, &locked):
		observability.Audit(r, "auth.login.locked", "locked_until", locked.Until)
		observability.RecordLoginAttempt(r.Context(), "locked")
		observability.RecordLockoutEvent(r.Context(), "rejected")
		response.Error(w, r, http.StatusLocked, "ACCOUNT_LOCKED", "account temporarily locked", map[string]any{
			"locked_until": locked.Until,
		})
	case errors.As(err, &invalid):
		observability.Audit(r, "auth.login.failed", "reason", "invalid_password")
		observability.RecordLoginAttempt(r.Context(), "invalid_password")
		response.Error(w, r, http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid username or password", map[string]any{
			"remaining_attempts": invalid.RemainingAttempts,
		})
	case errors.Is(err, service.ErrUserNotFound):
		observability.Audit(r, "auth.login.failed", "reason", "unknown_username")
		observability.RecordLoginAttempt(r.Context(), "unknown_username")
		response.Error(w, r, http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid username or password", nil)
	case errors.Is(err, service.ErrAccountDeactivated):
		observability.Audit(r, "auth.login.failed", "reason", "deactivated")
		observability.RecordLoginAttempt(r.Context(), "deactivated")
		response.Error(w, r, http.StatusForbidden, "ACCOUNT_DEACTIVATED", "account is deactivated", nil)
	default:
		observability.RecordLoginAttempt(r.Context(), "error")
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "login failed", nil)
	}
}

type mfaVerifyRequest struct {
	Nonce string `json:"nonce"`
	Code  string `json:"code"`
}

func (h *AuthHandler) MfaVerify(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "success"
	defer func() {
		observability.RecordAuthRequestDuration(r.Context(), "mfa_verify", status, time.Since(start))
	}()

	var req mfaVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Nonce == "" || req.Code == "" {
		status = "failure"
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "nonce and code are required", nil)
		return
	}

	result, err := h.auth.CompleteMfaLogin(r.Context(), req.Nonce, req.Code)
	if err != nil {
		status = "failure"
		h.writeMfaError(w, r, "verify", err)
		return
	}
	observability.Audit(r, "auth.mfa.verify.success", "user_id", result.User.ID)
	observability.RecordMfaEvent(r.Context(), "verify", "success")
	writeSession(w, r, result)
}

type mfaRecoverRequest struct {
	Nonce        string `json:"nonce"`
	RecoveryCode string `json:"recovery_code"`
}

func (h *AuthHandler) MfaRecover(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "success"
	defer func() {
		observability.RecordAuthRequestDuration(r.Context(), "mfa_recover", status, time.Since(start))
	}()

	var req mfaRecoverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Nonce == "" || req.RecoveryCode == "" {
		status = "failure"
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "nonce and recovery_code are required", nil)
		return
	}

	result, err := h.auth.RecoverMfaLogin(r.Context(), req.Nonce, req.RecoveryCode)
	if err != nil {
		status = "failure"
		h.writeMfaError(w, r, "recover", err)
		return
	}
	observability.Audit(r, "auth.mfa.recover.success", "user_id", result.User.ID)
	observability.RecordMfaEvent(r.Context(), "recover", "success")
	writeSession(w, r, result)
}

func (h *AuthHandler) writeMfaError(w http.ResponseWriter, r *http.Request, step string, err error) {
	switch {
	case errors.Is(err, service.ErrMfaNonceNotFound), errors.Is(err, service.ErrMfaNonceMismatch):
		observability.RecordMfaEvent(r.Context(), step, "nonce_invalid")
		response.Error(w, r, http.StatusUnauthorized, "MFA_NONCE_INVALID", "login challenge not found", nil)
	case errors.Is(err, service.ErrMfaNonceExpired):
		observability.RecordMfaEvent(r.Context(), step, "nonce_expired")
		response.Error(w, r, http.StatusUnauthorized, "MFA_NONCE_EXPIRED", "login challenge expired", nil)
	case errors.Is(err, service.ErrMfaInvalidCode):
		observability.RecordMfaEvent(r.Context(), step, "code_invalid")
		response.Error(w, r, http.StatusUnauthorized, "MFA_CODE_INVALID", "invalid code", nil)
	case errors.Is(err, service.ErrAccountDeactivated):
		observability.RecordMfaEvent(r.Context(), step, "deactivated")
		response.Error(w, r, http.StatusForbidden, "ACCOUNT_DEACTIVATED", "account is deactivated", nil)
	default:
		observability.RecordMfaEvent(r.Context(), step, "error")
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "mfa step failed", nil)
	}
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "success"
	defer func() {
		observability.RecordAuthRequestDuration(r.Context(), "refresh", status, time.Since(start))
	}()

	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		status = "failure"
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "refresh_token is required", nil)
		return
	}

	result, err := h.auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		status = "failure"
		observability.Audit(r, "auth.refresh.failed")
		observability.RecordRefreshAttempt(r.Context(), "failure")
		switch {
		case errors.Is(err, service.ErrSessionExpired):
			response.Error(w, r, http.StatusUnauthorized, "TOKEN_EXPIRED", "refresh token expired", nil)
		case errors.Is(err, service.ErrAccountDeactivated):
			response.Error(w, r, http.StatusForbidden, "ACCOUNT_DEACTIVATED", "account is deactivated", nil)
		default:
			response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid refresh token", nil)
		}
		return
	}
	observability.Audit(r, "auth.refresh.success", "user_id", result.User.ID)
	observability.RecordRefreshAttempt(r.Context(), "success")
	writeSession(w, r, result)
}

func (h *AuthHandler) MfaEnroll(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth context", nil)
		return
	}
	user, err := h.users.FindByID(principal.UserID)
	if err != nil {
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "enrollment failed", nil)
		return
	}

	start, err := h.mfa.BeginEnrollment(r.Context(), user)
	if err != nil {
		if errors.Is(err, service.ErrMfaAlreadyEnabled) {
			observability.RecordMfaEvent(r.Context(), "enroll", "already_enabled")
			response.Error(w, r, http.StatusConflict, "MFA_ALREADY_ENABLED", "mfa is already enabled", nil)
			return
		}
		observability.RecordMfaEvent(r.Context(), "enroll", "error")
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "enrollment failed", nil)
		return
	}
	observability.Audit(r, "auth.mfa.enroll.started", "user_id", user.ID)
	observability.RecordMfaEvent(r.Context(), "enroll", "started")
	response.JSON(w, r, http.StatusOK, map[string]any{
		"secret":           start.SecretBase32,
		"recovery_code":    start.RecoveryCode,
		"provisioning_uri": start.ProvisioningURI,
	})
}

type mfaConfirmRequest struct {
	Code string `json:"code"`
}

func (h *AuthHandler) MfaConfirm(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth context", nil)
		return
	}

	var req mfaConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "code is required", nil)
		return
	}

	if err := h.mfa.ConfirmEnrollment(r.Context(), principal.UserID, req.Code); err != nil {
		switch {
		case errors.Is(err, service.ErrMfaInvalidCode):
			observability.RecordMfaEvent(r.Context(), "confirm", "code_invalid")
			response.Error(w, r, http.StatusUnauthorized, "MFA_CODE_INVALID", "invalid code", nil)
		case errors.Is(err, service.ErrMfaAlreadyEnabled):
			response.Error(w, r, http.StatusConflict, "MFA_ALREADY_ENABLED", "mfa is already enabled", nil)
		case errors.Is(err, service.ErrMfaNotEnabled):
			response.Error(w, r, http.StatusConflict, "MFA_NOT_PENDING", "no enrollment in progress", nil)
		default:
			observability.RecordMfaEvent(r.Context(), "confirm", "error")
			response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "confirmation failed", nil)
		}
		return
	}
	observability.Audit(r, "auth.mfa.enabled", "user_id", principal.UserID)
	observability.RecordMfaEvent(r.Context(), "confirm", "success")
	response.JSON(w, r, http.StatusOK, map[string]any{"mfa_enabled": true})
}

func (h *AuthHandler) MfaDisable(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth context", nil)
		return
	}

	if err := h.mfa.Disable(r.Context(), principal.UserID); err != nil {
		if errors.Is(err, service.ErrMfaNotEnabled) {
			response.Error(w, r, http.StatusConflict, "MFA_NOT_ENABLED", "mfa is not enabled", nil)
			return
		}
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "disable failed", nil)
		return
	}
	observability.Audit(r, "auth.mfa.disabled", "user_id", principal.UserID)
	observability.RecordMfaEvent(r.Context(), "disable", "success")
	response.JSON(w, r, http.StatusOK, map[string]any{"mfa_enabled": false})
}

func writeSession(w http.ResponseWriter, r *http.Request, result *service.LoginResult) {
	response.JSON(w, r, http.StatusOK, map[string]any{
		"user":          result.User,
		"access_token":  result.AccessToken,
		"refresh_token": result.RefreshToken,
		"expires_at":    result.ExpiresAt,
	})
}

func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
