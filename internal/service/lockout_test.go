package service

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestLockoutWindowRollsFromLastFailure(t *testing.T) {
	fx := newAuthServiceFixture()
	ctx := context.Background()
	user := fx.seedUser("alice", "correct horse battery staple")

	// Five wrong passwords in quick succession hit the threshold.
	for i := 0; i < 5; i++ {
		_, err := fx.auth.Authenticate(ctx, "alice", "wrong", "203.0.113.9")
		var invalid *InvalidPasswordError
		if !errors.As(err, &invalid) {
			t.Fatalf("attempt %d: expected InvalidPasswordError, got %v", i+1, err)
		}
	}

	// One minute later even the correct password is rejected, without
	// consulting it.
	fx.clock.Advance(time.Minute)
	_, err := fx.auth.Authenticate(ctx, "alice", "correct horse battery staple", "203.0.113.9")
	var locked *LockedError
	if !errors.As(err, &locked) {
		t.Fatalf("expected LockedError, got %v", err)
	}
	wantUntil := fixtureEpoch.Add(15 * time.Minute)
	if !locked.Until.Equal(wantUntil) {
		t.Fatalf("locked until %v, want %v", locked.Until, wantUntil)
	}

	// Once the window elapses the correct password works and the counter
	// resets.
	fx.clock.Advance(15 * time.Minute)
	res, err := fx.auth.Authenticate(ctx, "alice", "correct horse battery staple", "203.0.113.9")
	if err != nil {
		t.Fatalf("login after window: %v", err)
	}
	if res.AccessToken == "" {
		t.Fatal("expected access token after lockout expiry")
	}
	stored, _ := fx.userRepo.FindByID(user.ID)
	if stored.FailedLoginAttempts != 0 || stored.LastFailedLoginAt != nil {
		t.Fatalf("expected cleared lockout state, got attempts=%d at=%v",
			stored.FailedLoginAttempts, stored.LastFailedLoginAt)
	}
}

func TestLockoutRemainingAttemptsCountDown(t *testing.T) {
	fx := newAuthServiceFixture()
	ctx := context.Background()
	fx.seedUser("bob", "pw-bob-123456")

	for i := 1; i <= 5; i++ {
		_, err := fx.auth.Authenticate(ctx, "bob", "nope", "")
		var invalid *InvalidPasswordError
		if !errors.As(err, &invalid) {
			t.Fatalf("attempt %d: expected InvalidPasswordError, got %v", i, err)
		}
		if invalid.RemainingAttempts != 5-i {
			t.Fatalf("attempt %d: remaining = %d, want %d", i, invalid.RemainingAttempts, 5-i)
		}
	}
}

func TestLockoutHealsCounterWithoutTimestamp(t *testing.T) {
	fx := newAuthServiceFixture()
	ctx := context.Background()
	user := fx.seedUser("carol", "pw-carol-123456")

	// Simulate a record damaged by an external writer: counter at the
	// threshold but no failure timestamp.
	stored := fx.userRepo.byID[user.ID]
	stored.FailedLoginAttempts = 5
	stored.LastFailedLoginAt = nil

	_, err := fx.auth.Authenticate(ctx, "carol", "pw-carol-123456", "")
	var locked *LockedError
	if !errors.As(err, &locked) {
		t.Fatalf("expected LockedError from healed record, got %v", err)
	}
	if !locked.Until.Equal(fixtureEpoch.Add(15 * time.Minute)) {
		t.Fatalf("healed lock until %v, want %v", locked.Until, fixtureEpoch.Add(15*time.Minute))
	}
	if stored.LastFailedLoginAt == nil || !stored.LastFailedLoginAt.Equal(fixtureEpoch) {
		t.Fatalf("expected healed timestamp %v, got %v", fixtureEpoch, stored.LastFailedLoginAt)
	}
}

func TestLockoutNotifyThresholdFiresOnce(t *testing.T) {
	fx := newAuthServiceFixture()
	ctx := context.Background()
	fx.seedUser("dave", "pw-dave-123456")

	for i := 0; i < 5; i++ {
		fx.auth.Authenticate(ctx, "dave", "wrong", "198.51.100.7")
	}

	var warnings int
	for _, n := range fx.notifier.sent {
		if n.kind == NotifyFailedLoginWarning {
			warnings++
			if n.details["attempts"] != "3" {
				t.Fatalf("warning attempts detail = %q, want 3", n.details["attempts"])
			}
			if n.details["ip"] != "198.51.100.7" {
				t.Fatalf("warning ip detail = %q", n.details["ip"])
			}
		}
	}
	if warnings != 1 {
		t.Fatalf("warning notifications = %d, want exactly 1", warnings)
	}
}

func TestLockoutNotifierFailureDoesNotFailLogin(t *testing.T) {
	fx := newAuthServiceFixture()
	ctx := context.Background()
	user := fx.seedUser("erin", "pw-erin-123456")
	fx.notifier.err = errors.New("smtp down")

	for i := 0; i < 3; i++ {
		_, err := fx.auth.Authenticate(ctx, "erin", "wrong", "")
		var invalid *InvalidPasswordError
		if !errors.As(err, &invalid) {
			t.Fatalf("attempt %d: expected InvalidPasswordError, got %v", i+1, err)
		}
	}
	stored, _ := fx.userRepo.FindByID(user.ID)
	if stored.FailedLoginAttempts != 3 {
		t.Fatalf("attempts = %d, want 3", stored.FailedLoginAttempts)
	}
}

func TestLockoutRecordSuccessIsIdempotent(t *testing.T) {
	fx := newAuthServiceFixture()
	ctx := context.Background()
	user := fx.seedUser("frank", "pw-frank-123456")

	fx.auth.Authenticate(ctx, "frank", "wrong", "")
	if err := fx.lockout.RecordSuccess(ctx, user); err != nil {
		t.Fatalf("first reset: %v", err)
	}
	if err := fx.lockout.RecordSuccess(ctx, user); err != nil {
		t.Fatalf("second reset: %v", err)
	}
	stored, _ := fx.userRepo.FindByID(user.ID)
	if stored.FailedLoginAttempts != 0 || stored.LastFailedLoginAt != nil || stored.LastFailedLoginIP != nil {
		t.Fatal("expected fully cleared lockout state")
	}
}

func TestLockoutRemainingNeverNegative(t *testing.T) {
	fx := newAuthServiceFixture()
	user := fx.seedUser("gina", "pw-gina-123456")
	user.FailedLoginAttempts = 9

	if got := fx.lockout.Remaining(user); got != 0 {
		t.Fatalf("Remaining = %d, want 0", got)
	}
}
