package notify

import (
	"context"
	"log/slog"
)

// LogNotifier records notifications to the structured log instead of sending
// them anywhere. Used when no SMTP transport is configured, so dev runs still
// surface the terminal outcome.
type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	if log == nil {
		log = slog.Default()
	}
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(_ context.Context, subject, body, recipient string) error {
	n.log.Info("notification", "recipient", recipient, "subject", subject, "body", body)
	return nil
}
