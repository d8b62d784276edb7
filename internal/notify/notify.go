package notify

import "context"

// Notifier delivers one alert message. Delivery failures are handled
// inside the implementation and never reach the caller.
type Notifier interface {
	Notify(ctx context.Context, to, subject, body string)
}
