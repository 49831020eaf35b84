package delivery

import "context"

// Channel accepts a rendered message and a destination address. A nil return
// means the message was handed off; any error is a delivery failure the
// dispatcher records as such.
type Channel interface {
	Name() string
	Send(ctx context.Context, to, subject, body string) error
}
