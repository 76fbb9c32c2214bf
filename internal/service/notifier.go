package service

import (
	"context"
	"log/slog"
)

// Notification kinds dispatched by the auth subsystem.
const (
	NotifyFailedLoginWarning = "auth.failed_login_warning"
	NotifyMfaEnabled         = "auth.mfa_enabled"
	NotifyMfaDisabled        = "auth.mfa_disabled"
	NotifyMfaRecoveryUsed    = "auth.mfa_recovery_used"
)

// Notifier is the fire-and-forget notification collaborator (email in
// production). Senders must treat errors as advisory: an auth operation never
// fails because a notification could not be delivered.
type Notifier interface {
	Notify(ctx context.Context, userID uint, kind string, details map[string]string) error
}

// DevNotifier logs notifications instead of sending them.
type DevNotifier struct {
	logger *slog.Logger
}

func NewDevNotifier(logger *slog.Logger) *DevNotifier {
	return &DevNotifier{logger: logger}
}

func (n *DevNotifier) Notify(ctx context.Context, userID uint, kind string, details map[string]string) error {
	attrs := []any{"user_id", userID, "kind", kind}
	for k, v := range details {
		attrs = append(attrs, k, v)
	}
	n.logger.InfoContext(ctx, "notification dispatched", attrs...)
	return nil
}

// notifyQuietly dispatches a notification and logs delivery failures without
// surfacing them.
func notifyQuietly(ctx context.Context, n Notifier, logger *slog.Logger, userID uint, kind string, details map[string]string) {
	if n == nil {
		return
	}
	if err := n.Notify(ctx, userID, kind, details); err != nil {
		logger.WarnContext(ctx, "notification delivery failed", "user_id", userID, "kind", kind, "error", err)
	}
}
