package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/brightclass/backoffice/internal/config"
	"github.com/brightclass/backoffice/internal/domain"
	"github.com/brightclass/backoffice/internal/repository"
	"github.com/brightclass/backoffice/internal/security"

	"gorm.io/gorm"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrAccountDeactivated = errors.New("account deactivated")
)

// LockedError reports a login rejected by the lockout policy without
// consulting the password at all.
type LockedError struct {
	Until time.Time
}

func (e *LockedError) Error() string {
	return "account locked until " + e.Until.Format(time.RFC3339)
}

// InvalidPasswordError carries how many attempts remain before lockout.
type InvalidPasswordError struct {
	RemainingAttempts int
}

func (e *InvalidPasswordError) Error() string {
	return "invalid password, " + strconv.Itoa(e.RemainingAttempts) + " attempts remaining"
}

// LoginResult is the outcome of a successful password check. When the user
// has MFA enabled no tokens are issued yet: MfaRequired is set and the nonce
// must be exchanged at the verification step.
type LoginResult struct {
	User              *domain.User
	AccessToken       string
	RefreshToken      string
	ExpiresAt         time.Time
	MfaRequired       bool
	MfaNonce          string
	MfaNonceExpiresAt time.Time
}

// AuthService orchestrates the full login flow: lockout gate, password
// verification, MFA handoff, token issuance.
type AuthService struct {
	users   repository.UserRepository
	hasher  *security.PasswordHasher
	lockout *LockoutPolicy
	mfa     *MfaService
	codec   *security.TokenCodec
	clock   Clock
	logger  *slog.Logger

	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewAuthService(
	users repository.UserRepository,
	hasher *security.PasswordHasher,
	lockout *LockoutPolicy,
	mfa *MfaService,
	codec *security.TokenCodec,
	clock Clock,
	logger *slog.Logger,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		users:      users,
		hasher:     hasher,
		lockout:    lockout,
		mfa:        mfa,
		codec:      codec,
		clock:      clock,
		logger:     logger,
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
	}
}

// Authenticate runs the password login flow. The ip is recorded alongside
// failed attempts for the advisory warning email.
func (s *AuthService) Authenticate(ctx context.Context, username, password, ip string) (*LoginResult, error) {
	user, err := s.users.FindByUsername(username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("look up credential: %w", err)
	}

	if user.Deactivated {
		return nil, ErrAccountDeactivated
	}

	now := s.clock.Now()
	decision, err := s.lockout.CheckAndConsumeAttempt(ctx, user, now)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, &LockedError{Until: decision.LockedUntil}
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		if err := s.lockout.RecordFailure(ctx, user, ip, now); err != nil {
			return nil, err
		}
		return nil, &InvalidPasswordError{RemainingAttempts: s.lockout.Remaining(user)}
	}

	if err := s.lockout.RecordSuccess(ctx, user); err != nil {
		return nil, err
	}

	state, err := s.mfa.State(user.ID)
	if err != nil {
		return nil, err
	}
	if state == domain.MfaEnabled {
		nonce, err := s.mfa.IssueLoginNonce(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		return &LoginResult{
			User:              user,
			MfaRequired:       true,
			MfaNonce:          nonce.Nonce,
			MfaNonceExpiresAt: nonce.ExpiresAt,
		}, nil
	}

	return s.establishSession(ctx, user)
}

// CompleteMfaLogin finishes a login parked on an OTP challenge.
func (s *AuthService) CompleteMfaLogin(ctx context.Context, nonce, code string) (*LoginResult, error) {
	user, err := s.mfa.ValidateLoginNonce(ctx, nonce, code)
	if err != nil {
		return nil, err
	}
	if user.Deactivated {
		return nil, ErrAccountDeactivated
	}
	return s.establishSession(ctx, user)
}

// RecoverMfaLogin finishes a login with the recovery code. The enrollment is
// disabled as a side effect, so the session comes back with MFA off.
func (s *AuthService) RecoverMfaLogin(ctx context.Context, nonce, recoveryCode string) (*LoginResult, error) {
	user, err := s.mfa.RecoverWithCode(ctx, nonce, recoveryCode)
	if err != nil {
		return nil, err
	}
	if user.Deactivated {
		return nil, ErrAccountDeactivated
	}
	return s.establishSession(ctx, user)
}

// Refresh exchanges a refresh token for a new token pair. Access tokens are
// rejected here even though they carry the same claims shape.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	now := s.clock.Now()
	claims, err := s.codec.Decode(refreshToken)
	if err != nil {
		return nil, ErrSessionInvalid
	}
	if claims.Subject == "" || claims.IsRefresh == nil || claims.ExpiresAt == nil {
		return nil, ErrSessionInvalid
	}
	if !*claims.IsRefresh {
		return nil, ErrSessionInvalid
	}
	if !claims.ExpiresAt.After(now) {
		return nil, ErrSessionExpired
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return nil, ErrSessionInvalid
	}
	user, err := s.users.FindByID(uint(userID))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	if user.Deactivated {
		return nil, ErrAccountDeactivated
	}

	return s.establishSession(ctx, user)
}

func (s *AuthService) establishSession(ctx context.Context, user *domain.User) (*LoginResult, error) {
	now := s.clock.Now()
	subject := strconv.FormatUint(uint64(user.ID), 10)

	access, err := s.codec.Issue(subject, now, s.accessTTL, false)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := s.codec.Issue(subject, now, s.refreshTTL, true)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}

	if err := s.users.TouchLastLogin(user.ID, now); err != nil {
		s.logger.WarnContext(ctx, "last login stamp failed", "user_id", user.ID, "error", err)
	}

	return &LoginResult{
		User:         user,
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    now.Add(s.accessTTL),
	}, nil
}
