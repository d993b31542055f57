package notification

import (
	"context"
	"errors"

	"lottery-ledger.backend/internal/domain/entities"
)

// Notifier delivers one outbox event. A returned error leaves the event
// queued for another attempt.
type Notifier interface {
	Notify(ctx context.Context, event *entities.OutboxEvent) error
}

// MultiNotifier fans an event out to every notifier and joins their errors
type MultiNotifier struct {
	notifiers []Notifier
}

// NewMultiNotifier composes notifiers; nil entries are skipped
func NewMultiNotifier(notifiers ...Notifier) *MultiNotifier {
	m := &MultiNotifier{}
	for _, n := range notifiers {
		if n != nil {
			m.notifiers = append(m.notifiers, n)
		}
	}
	return m
}

// Notify calls every notifier even if one fails
func (m *MultiNotifier) Notify(ctx context.Context, event *entities.OutboxEvent) error {
	var errs []error
	for _, n := range m.notifiers {
		if err := n.Notify(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
