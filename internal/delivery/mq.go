package delivery

import (
	"context"
	"time"

	"wishsender/pkg/mq"
)

const wishDispatchKey = "wish.dispatch"

// WishDispatchPayload is the event body consumed by an external mailer fleet.
type WishDispatchPayload struct {
	To       string    `json:"to"`
	Subject  string    `json:"subject"`
	Body     string    `json:"body"`
	QueuedAt time.Time `json:"queued_at"`
}

// MQChannel hands messages to RabbitMQ instead of delivering them directly.
// Deployments with a separate mailer service consume wish.dispatch events from
// the wish.events exchange.
type MQChannel struct {
	publisher *mq.Publisher
}

func NewMQChannel(publisher *mq.Publisher) *MQChannel {
	return &MQChannel{publisher: publisher}
}

func (c *MQChannel) Name() string { return "mq" }

func (c *MQChannel) Send(_ context.Context, to, subject, body string) error {
	return c.publisher.Publish(wishDispatchKey, WishDispatchPayload{
		To:       to,
		Subject:  subject,
		Body:     body,
		QueuedAt: time.Now().UTC(),
	})
}
