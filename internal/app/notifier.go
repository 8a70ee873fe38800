package app

import (
	"context"
	"log/slog"
	"time"

	"jobboard/internal/domain/user"
)

// Notifier delivers account messages to users.
type Notifier interface {
	PasswordReset(ctx context.Context, account user.User, token string, expiresAt time.Time) error
}

// LogNotifier writes notifications to the log instead of sending email.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) PasswordReset(ctx context.Context, account user.User, token string, expiresAt time.Time) error {
	n.logger.InfoContext(ctx, "password reset requested",
		slog.String("user_id", account.ID.String()),
		slog.String("email", account.Email),
		slog.Time("expires_at", expiresAt))
	n.logger.DebugContext(ctx, "password reset token", slog.String("user_id", account.ID.String()), slog.String("token", token))
	return nil
}
