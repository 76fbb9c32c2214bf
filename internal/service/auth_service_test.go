package service

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"
)

func TestAuthenticateHappyPath(t *testing.T) {
	fx := newAuthServiceFixture()
	ctx := context.Background()
	user := fx.seedUser("rita", "pw-rita-123456")

	res, err := fx.auth.Authenticate(ctx, "rita", "pw-rita-123456", "192.0.2.1")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if res.MfaRequired {
		t.Fatal("unexpected MFA challenge for unenrolled user")
	}
	if res.AccessToken == "" || res.RefreshToken == "" {
		t.Fatal("expected both tokens")
	}
	if want := fx.clock.Now().Add(30 * time.Minute); !res.ExpiresAt.Equal(want) {
		t.Fatalf("expires at %v, want %v", res.ExpiresAt, want)
	}

	claim, err := fx.verifier.Verify(res.AccessToken, fx.clock.Now())
	if err != nil {
		t.Fatalf("verify access token: %v", err)
	}
	if claim.SubjectID != strconv.FormatUint(uint64(user.ID), 10) {
		t.Fatalf("subject = %q, want %d", claim.SubjectID, user.ID)
	}
	if claim.IsRefreshToken {
		t.Fatal("access token flagged as refresh")
	}

	stored, _ := fx.userRepo.FindByID(user.ID)
	if stored.LastLoginAt == nil || !stored.LastLoginAt.Equal(fx.clock.Now()) {
		t.Fatalf("last login = %v, want %v", stored.LastLoginAt, fx.clock.Now())
	}
}

func TestAuthenticateUnknownUsername(t *testing.T) {
	fx := newAuthServiceFixture()

	_, err := fx.auth.Authenticate(context.Background(), "ghost", "whatever", "")
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAuthenticateUsernameCaseSensitive(t *testing.T) {
	fx := newAuthServiceFixture()
	fx.seedUser("Sam", "pw-sam-123456")

	if _, err := fx.auth.Authenticate(context.Background(), "sam", "pw-sam-123456", ""); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound for wrong case, got %v", err)
	}
}

func TestAuthenticateDeactivatedAccount(t *testing.T) {
	fx := newAuthServiceFixture()
	ctx := context.Background()
	user := fx.seedUser("tina", "pw-tina-123456")
	fx.userRepo.byID[user.ID].Deactivated = true

	_, err := fx.auth.Authenticate(ctx, "tina", "pw-tina-123456", "")
	if !errors.Is(err, ErrAccountDeactivated) {
		t.Fatalf("expected ErrAccountDeactivated, got %v", err)
	}

	// Deactivation is reported before the password is consulted.
	_, err = fx.auth.Authenticate(ctx, "tina", "wrong", "")
	if !errors.Is(err, ErrAccountDeactivated) {
		t.Fatalf("expected ErrAccountDeactivated for wrong password too, got %v", err)
	}
	stored, _ := fx.userRepo.FindByID(user.ID)
	if stored.FailedLoginAttempts != 0 {
		t.Fatalf("deactivated account accrued %d failures", stored.FailedLoginAttempts)
	}
}

func TestAuthenticateWithMfaEnabled(t *testing.T) {
	fx := newAuthServiceFixture()
	ctx := context.Background()
	user := fx.seedUser("uma", "pw-uma-123456")
	secret, _ := fx.enableMfa(user)

	res, err := fx.auth.Authenticate(ctx, "uma", "pw-uma-123456", "")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if !res.MfaRequired {
		t.Fatal("expected MFA challenge")
	}
	if res.AccessToken != "" || res.RefreshToken != "" {
		t.Fatal("tokens must not be issued before the OTP step")
	}
	if res.MfaNonce == "" {
		t.Fatal("expected a login nonce")
	}
	if want := fx.clock.Now().Add(5 * time.Minute); !res.MfaNonceExpiresAt.Equal(want) {
		t.Fatalf("nonce expires at %v, want %v", res.MfaNonceExpiresAt, want)
	}

	code, _ := fx.totp.CodeAt(secret, fx.clock.Now())
	completed, err := fx.auth.CompleteMfaLogin(ctx, res.MfaNonce, code)
	if err != nil {
		t.Fatalf("complete mfa login: %v", err)
	}
	if completed.AccessToken == "" || completed.RefreshToken == "" {
		t.Fatal("expected tokens after OTP verification")
	}
}

func TestCompleteMfaLoginWrongThenRightCode(t *testing.T) {
	fx := newAuthServiceFixture()
	ctx := context.Background()
	user := fx.seedUser("vera", "pw-vera-123456")
	secret, _ := fx.enableMfa(user)

	res, err := fx.auth.Authenticate(ctx, "vera", "pw-vera-123456", "")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}

	if _, err := fx.auth.CompleteMfaLogin(ctx, res.MfaNonce, "123456"); !errors.Is(err, ErrMfaInvalidCode) {
		// A colliding code is possible but vanishingly unlikely.
		t.Fatalf("expected ErrMfaInvalidCode, got %v", err)
	}

	code, _ := fx.totp.CodeAt(secret, fx.clock.Now())
	if _, err := fx.auth.CompleteMfaLogin(ctx, res.MfaNonce, code); err != nil {
		t.Fatalf("retry: %v", err)
	}
}

func TestRecoverMfaLoginIssuesSessionAndDisables(t *testing.T) {
	fx := newAuthServiceFixture()
	ctx := context.Background()
	fx.seedUser("wade", "pw-wade-123456")
	user, _ := fx.userRepo.FindByUsername("wade")
	_, recovery := fx.enableMfa(user)

	res, err := fx.auth.Authenticate(ctx, "wade", "pw-wade-123456", "")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}

	recovered, err := fx.auth.RecoverMfaLogin(ctx, res.MfaNonce, recovery)
	if err != nil {
		t.Fatalf("recover: %v", err)
	}
	if recovered.AccessToken == "" {
		t.Fatal("expected a session after recovery")
	}

	// The next login goes straight through: recovery disabled MFA.
	next, err := fx.auth.Authenticate(ctx, "wade", "pw-wade-123456", "")
	if err != nil {
		t.Fatalf("post-recovery login: %v", err)
	}
	if next.MfaRequired {
		t.Fatal("expected MFA off after recovery")
	}
}

func TestRefreshRotatesTokens(t *testing.T) {
	fx := newAuthServiceFixture()
	ctx := context.Background()
	fx.seedUser("xena", "pw-xena-123456")

	res, err := fx.auth.Authenticate(ctx, "xena", "pw-xena-123456", "")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}

	fx.clock.Advance(45 * time.Minute)
	rotated, err := fx.auth.Refresh(ctx, res.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if rotated.AccessToken == "" || rotated.RefreshToken == "" {
		t.Fatal("expected a fresh token pair")
	}
	if _, err := fx.verifier.Verify(rotated.AccessToken, fx.clock.Now()); err != nil {
		t.Fatalf("verify rotated access token: %v", err)
	}
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	fx := newAuthServiceFixture()
	ctx := context.Background()
	fx.seedUser("yuri", "pw-yuri-123456")

	res, err := fx.auth.Authenticate(ctx, "yuri", "pw-yuri-123456", "")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}

	if _, err := fx.auth.Refresh(ctx, res.AccessToken); !errors.Is(err, ErrSessionInvalid) {
		t.Fatalf("expected ErrSessionInvalid for access token, got %v", err)
	}
}

func TestRefreshExpiredToken(t *testing.T) {
	fx := newAuthServiceFixture()
	ctx := context.Background()
	fx.seedUser("zara", "pw-zara-123456")

	res, err := fx.auth.Authenticate(ctx, "zara", "pw-zara-123456", "")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}

	fx.clock.Advance(169 * time.Hour)
	if _, err := fx.auth.Refresh(ctx, res.RefreshToken); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
}

func TestRefreshDeactivatedUser(t *testing.T) {
	fx := newAuthServiceFixture()
	ctx := context.Background()
	user := fx.seedUser("abel", "pw-abel-123456")

	res, err := fx.auth.Authenticate(ctx, "abel", "pw-abel-123456", "")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}

	fx.userRepo.byID[user.ID].Deactivated = true
	if _, err := fx.auth.Refresh(ctx, res.RefreshToken); !errors.Is(err, ErrAccountDeactivated) {
		t.Fatalf("expected ErrAccountDeactivated, got %v", err)
	}
}

func TestAuthenticateSuccessResetsFailureCount(t *testing.T) {
	fx := newAuthServiceFixture()
	ctx := context.Background()
	user := fx.seedUser("beth", "pw-beth-123456")

	for i := 0; i < 4; i++ {
		fx.auth.Authenticate(ctx, "beth", "wrong", "")
	}
	if _, err := fx.auth.Authenticate(ctx, "beth", "pw-beth-123456", ""); err != nil {
		t.Fatalf("login under threshold: %v", err)
	}

	stored, _ := fx.userRepo.FindByID(user.ID)
	if stored.FailedLoginAttempts != 0 {
		t.Fatalf("attempts = %d, want 0 after success", stored.FailedLoginAttempts)
	}

	// The counter restarts from zero, so four more wrong attempts still
	// leave one in hand.
	for i := 0; i < 4; i++ {
		fx.auth.Authenticate(ctx, "beth", "wrong", "")
	}
	if _, err := fx.auth.Authenticate(ctx, "beth", "pw-beth-123456", ""); err != nil {
		t.Fatalf("second login under threshold: %v", err)
	}
}
