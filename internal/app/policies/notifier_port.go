package policies

import "context"

// Notifier is the contract towards the notification/email subsystem. Delivery
// is handled elsewhere; this service only emits intents.
type Notifier interface {
	BookingRequested(ctx context.Context, ownerID, bookingID string) error
	BookingConfirmed(ctx context.Context, renterID, bookingID string) error
}

// NoopNotifier satisfies Notifier without doing anything; used until the real
// channel is wired.
type NoopNotifier struct{}

func (NoopNotifier) BookingRequested(context.Context, string, string) error { return nil }
func (NoopNotifier) BookingConfirmed(context.Context, string, string) error { return nil }
