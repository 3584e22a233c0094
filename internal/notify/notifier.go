// Package notify delivers terminal run notifications. Delivery is
// best-effort: a notification failure is reported to the caller so it can be
// logged, but it must never change a run's own outcome.
package notify

import (
	"context"
	"errors"
)

// ErrNotification reports a failed delivery attempt.
var ErrNotification = errors.New("notification error")

// Notifier is the notification collaborator. It is invoked exactly once per
// run: on terminal success or on validation failure.
type Notifier interface {
	Notify(ctx context.Context, subject, body, recipient string) error
}
