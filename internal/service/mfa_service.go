package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"time"

	"github.com/brightclass/backoffice/internal/domain"
	"github.com/brightclass/backoffice/internal/repository"
	"github.com/brightclass/backoffice/internal/security"
)

var (
	ErrMfaAlreadyEnabled = errors.New("mfa already enabled")
	ErrMfaNotEnabled     = errors.New("mfa not enabled")
	ErrMfaInvalidCode    = errors.New("invalid otp code")
	ErrMfaNonceNotFound  = errors.New("mfa login nonce not found")
	ErrMfaNonceExpired   = errors.New("mfa login nonce expired")
	ErrMfaNonceMismatch  = errors.New("mfa login nonce does not match user")
)

// EnrollmentStart is returned from BeginEnrollment. The secret and recovery
// code are shown to the user exactly once; only confirmation with a valid
// code moves the enrollment to enabled.
type EnrollmentStart struct {
	SecretBase32    string
	RecoveryCode    string
	ProvisioningURI string
}

// MfaService owns the OTP enrollment state machine and the login nonce
// exchange that bridges password verification and OTP submission.
type MfaService struct {
	settings repository.MfaSettingsRepository
	nonces   repository.MfaLoginNonceRepository
	users    repository.UserRepository
	totp     *security.TOTP
	notifier Notifier
	clock    Clock
	logger   *slog.Logger
	nonceTTL time.Duration
}

func NewMfaService(
	settings repository.MfaSettingsRepository,
	nonces repository.MfaLoginNonceRepository,
	users repository.UserRepository,
	totp *security.TOTP,
	notifier Notifier,
	clock Clock,
	logger *slog.Logger,
	nonceTTL time.Duration,
) *MfaService {
	return &MfaService{
		settings: settings,
		nonces:   nonces,
		users:    users,
		totp:     totp,
		notifier: notifier,
		clock:    clock,
		logger:   logger,
		nonceTTL: nonceTTL,
	}
}

// State returns the user's current enrollment state.
func (s *MfaService) State(userID uint) (domain.MfaState, error) {
	settings, err := s.settings.FindByUserID(userID)
	if err != nil {
		return "", err
	}
	return settings.State, nil
}

// BeginEnrollment generates a fresh secret and recovery code and parks the
// enrollment in pending_verification. Restarting a pending enrollment
// replaces the previous secret; an enabled enrollment must be disabled first.
func (s *MfaService) BeginEnrollment(ctx context.Context, user *domain.User) (*EnrollmentStart, error) {
	settings, err := s.settings.FindByUserID(user.ID)
	if err != nil {
		return nil, err
	}
	if settings.State == domain.MfaEnabled {
		return nil, ErrMfaAlreadyEnabled
	}

	secret, err := s.totp.GenerateSecret()
	if err != nil {
		return nil, err
	}
	recovery, err := security.NewRecoveryCode()
	if err != nil {
		return nil, err
	}

	settings.State = domain.MfaPendingVerification
	settings.SecretBase32 = secret
	settings.RecoveryCode = recovery
	if err := s.settings.Save(settings); err != nil {
		return nil, err
	}

	return &EnrollmentStart{
		SecretBase32:    secret,
		RecoveryCode:    recovery,
		ProvisioningURI: s.totp.ProvisioningURI(secret, user.Username),
	}, nil
}

// ConfirmEnrollment proves the user captured the secret by validating one
// code against it. On a wrong code the enrollment stays pending so the user
// can retry without re-scanning.
func (s *MfaService) ConfirmEnrollment(ctx context.Context, userID uint, code string) error {
	settings, err := s.settings.FindByUserID(userID)
	if err != nil {
		return err
	}
	switch settings.State {
	case domain.MfaEnabled:
		return ErrMfaAlreadyEnabled
	case domain.MfaDisabled:
		return ErrMfaNotEnabled
	}

	ok, err := s.totp.Verify(settings.SecretBase32, code, s.clock.Now())
	if err != nil {
		return err
	}
	if !ok {
		return ErrMfaInvalidCode
	}

	settings.State = domain.MfaEnabled
	if err := s.settings.Save(settings); err != nil {
		return err
	}
	notifyQuietly(ctx, s.notifier, s.logger, userID, NotifyMfaEnabled, nil)
	return nil
}

// IssueLoginNonce mints the single-use handle that ties a password-verified
// login to the pending OTP submission. Only enabled enrollments get one.
func (s *MfaService) IssueLoginNonce(ctx context.Context, userID uint) (*domain.MfaLoginNonce, error) {
	settings, err := s.settings.FindByUserID(userID)
	if err != nil {
		return nil, err
	}
	if settings.State != domain.MfaEnabled {
		return nil, ErrMfaNotEnabled
	}

	nonce := &domain.MfaLoginNonce{
		Nonce:     security.NewNonce(),
		UserID:    userID,
		ExpiresAt: s.clock.Now().Add(s.nonceTTL),
	}
	if err := s.nonces.Create(nonce); err != nil {
		return nil, err
	}
	return nonce, nil
}

// ValidateLoginNonce completes an OTP login. A wrong code leaves the nonce in
// place so the user may retype; a correct code consumes it.
func (s *MfaService) ValidateLoginNonce(ctx context.Context, nonce, code string) (*domain.User, error) {
	record, err := s.lookupNonce(nonce)
	if err != nil {
		return nil, err
	}

	user, settings, err := s.loadEnabledEnrollment(record.UserID)
	if err != nil {
		return nil, err
	}

	ok, err := s.totp.Verify(settings.SecretBase32, code, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrMfaInvalidCode
	}

	if err := s.consumeNonce(record); err != nil {
		return nil, err
	}
	return user, nil
}

// RecoverWithCode completes a pending login with the break-glass recovery
// code instead of an OTP. Success fully disables the enrollment: the secret
// on the lost device and the spent recovery code are both dead afterwards,
// and the user must re-enroll from scratch.
func (s *MfaService) RecoverWithCode(ctx context.Context, nonce, recoveryCode string) (*domain.User, error) {
	record, err := s.lookupNonce(nonce)
	if err != nil {
		return nil, err
	}

	user, settings, err := s.loadEnabledEnrollment(record.UserID)
	if err != nil {
		return nil, err
	}

	if subtle.ConstantTimeCompare([]byte(settings.RecoveryCode), []byte(recoveryCode)) != 1 {
		return nil, ErrMfaInvalidCode
	}

	settings.State = domain.MfaDisabled
	settings.SecretBase32 = ""
	settings.RecoveryCode = ""
	if err := s.settings.Save(settings); err != nil {
		return nil, err
	}
	if err := s.consumeNonce(record); err != nil {
		return nil, err
	}
	if err := s.nonces.DeleteByUserID(user.ID); err != nil {
		s.logger.WarnContext(ctx, "stale nonce cleanup failed", "user_id", user.ID, "error", err)
	}

	notifyQuietly(ctx, s.notifier, s.logger, user.ID, NotifyMfaRecoveryUsed, nil)
	notifyQuietly(ctx, s.notifier, s.logger, user.ID, NotifyMfaDisabled, nil)
	return user, nil
}

// Disable turns MFA off for the user, clearing the secret and recovery code
// and invalidating any outstanding login nonces.
func (s *MfaService) Disable(ctx context.Context, userID uint) error {
	settings, err := s.settings.FindByUserID(userID)
	if err != nil {
		return err
	}
	if settings.State == domain.MfaDisabled {
		return ErrMfaNotEnabled
	}

	settings.State = domain.MfaDisabled
	settings.SecretBase32 = ""
	settings.RecoveryCode = ""
	if err := s.settings.Save(settings); err != nil {
		return err
	}
	if err := s.nonces.DeleteByUserID(userID); err != nil {
		s.logger.Warn("stale nonce cleanup failed", "user_id", userID, "error", err)
	}
	notifyQuietly(ctx, s.notifier, s.logger, userID, NotifyMfaDisabled, nil)
	return nil
}

// PurgeExpiredNonces removes login nonces past their deadline. Run
// periodically; correctness does not depend on it since lookups check expiry.
func (s *MfaService) PurgeExpiredNonces() (int64, error) {
	return s.nonces.DeleteExpired(s.clock.Now())
}

func (s *MfaService) lookupNonce(nonce string) (*domain.MfaLoginNonce, error) {
	record, err := s.nonces.FindByNonce(nonce)
	if errors.Is(err, repository.ErrNonceNotFound) {
		return nil, ErrMfaNonceNotFound
	}
	if err != nil {
		return nil, err
	}
	if !record.ExpiresAt.After(s.clock.Now()) {
		return nil, ErrMfaNonceExpired
	}
	return record, nil
}

func (s *MfaService) loadEnabledEnrollment(userID uint) (*domain.User, *domain.MfaSettings, error) {
	user, err := s.users.FindByID(userID)
	if err != nil {
		return nil, nil, err
	}
	settings, err := s.settings.FindByUserID(userID)
	if err != nil {
		return nil, nil, err
	}
	// A nonce outliving its enrollment means MFA was disabled mid-login.
	if settings.State != domain.MfaEnabled {
		return nil, nil, ErrMfaNonceMismatch
	}
	return user, settings, nil
}

func (s *MfaService) consumeNonce(record *domain.MfaLoginNonce) error {
	err := s.nonces.Consume(record.ID)
	if errors.Is(err, repository.ErrNonceNotFound) {
		// Lost the race with a concurrent submission of the same nonce.
		return ErrMfaNonceNotFound
	}
	return err
}
