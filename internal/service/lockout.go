package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/brightclass/backoffice/internal/domain"
	"github.com/brightclass/backoffice/internal/repository"
)

// LockoutDecision is the outcome of a pre-login lockout check.
type LockoutDecision struct {
	Allowed     bool
	LockedUntil time.Time
}

// LockoutPolicy tracks failed login attempts per credential and computes the
// lockout window. The window rolls from the last recorded failure: once it
// elapses the counter resets to zero, so an attacker who waits it out gets
// exactly one more burst rather than accumulating partial credit across
// cycles.
type LockoutPolicy struct {
	users           repository.UserRepository
	notifier        Notifier
	logger          *slog.Logger
	threshold       int
	duration        time.Duration
	notifyThreshold int
}

func NewLockoutPolicy(users repository.UserRepository, notifier Notifier, logger *slog.Logger, threshold int, duration time.Duration, notifyThreshold int) *LockoutPolicy {
	return &LockoutPolicy{
		users:           users,
		notifier:        notifier,
		logger:          logger,
		threshold:       threshold,
		duration:        duration,
		notifyThreshold: notifyThreshold,
	}
}

func (p *LockoutPolicy) Threshold() int { return p.threshold }

// CheckAndConsumeAttempt reports whether a login attempt may proceed at now.
// A credential at or past the threshold with no recorded failure time is an
// inconsistent record; it is healed by stamping now and reporting locked
// rather than crashing the login path.
func (p *LockoutPolicy) CheckAndConsumeAttempt(ctx context.Context, user *domain.User, now time.Time) (LockoutDecision, error) {
	if user.FailedLoginAttempts < p.threshold {
		return LockoutDecision{Allowed: true}, nil
	}

	if user.LastFailedLoginAt == nil {
		stamp := now
		user.LastFailedLoginAt = &stamp
		if err := p.users.UpdateLockoutState(user); err != nil {
			return LockoutDecision{}, fmt.Errorf("heal lockout state: %w", err)
		}
		p.logger.WarnContext(ctx, "lockout counter without failure timestamp, healed",
			"user_id", user.ID, "attempts", user.FailedLoginAttempts)
		return LockoutDecision{LockedUntil: now.Add(p.duration)}, nil
	}

	until := user.LastFailedLoginAt.Add(p.duration)
	if now.Before(until) {
		return LockoutDecision{LockedUntil: until}, nil
	}

	user.FailedLoginAttempts = 0
	user.LastFailedLoginAt = nil
	user.LastFailedLoginIP = nil
	if err := p.users.UpdateLockoutState(user); err != nil {
		return LockoutDecision{}, fmt.Errorf("reset lockout state: %w", err)
	}
	return LockoutDecision{Allowed: true}, nil
}

// RecordFailure increments the counter and stamps the failure. Crossing the
// notify threshold dispatches an advisory warning; delivery failure never
// fails the login attempt.
func (p *LockoutPolicy) RecordFailure(ctx context.Context, user *domain.User, ip string, now time.Time) error {
	user.FailedLoginAttempts++
	stamp := now
	user.LastFailedLoginAt = &stamp
	if ip != "" {
		user.LastFailedLoginIP = &ip
	} else {
		user.LastFailedLoginIP = nil
	}
	if err := p.users.UpdateLockoutState(user); err != nil {
		return fmt.Errorf("record login failure: %w", err)
	}

	if user.FailedLoginAttempts == p.notifyThreshold {
		notifyQuietly(ctx, p.notifier, p.logger, user.ID, NotifyFailedLoginWarning, map[string]string{
			"attempts": strconv.Itoa(user.FailedLoginAttempts),
			"ip":       ip,
		})
	}
	return nil
}

// RecordSuccess clears the failure state. Idempotent.
func (p *LockoutPolicy) RecordSuccess(ctx context.Context, user *domain.User) error {
	user.FailedLoginAttempts = 0
	user.LastFailedLoginAt = nil
	user.LastFailedLoginIP = nil
	if err := p.users.UpdateLockoutState(user); err != nil {
		return fmt.Errorf("reset login failures: %w", err)
	}
	return nil
}

// Remaining reports how many attempts are left before lockout, never below
// zero.
func (p *LockoutPolicy) Remaining(user *domain.User) int {
	left := p.threshold - user.FailedLoginAttempts
	if left < 0 {
		return 0
	}
	return left
}
