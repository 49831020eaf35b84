package birthday

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"wishsender/internal/delivery"
	"wishsender/internal/model"
	"wishsender/internal/wisher"
	"wishsender/pkg/metrics"
)

// Dispatcher renders a wish for one contact, pushes it through the delivery
// channel and records the attempt in the ledger. Exactly one send attempt and
// exactly one ledger append per invocation, success or not.
type Dispatcher struct {
	wisher      wisher.Wisher
	channel     delivery.Channel
	ledger      *SendLedger
	sendTimeout time.Duration
	now         func() time.Time
	logger      *zap.Logger
}

func NewDispatcher(
	w wisher.Wisher,
	channel delivery.Channel,
	ledger *SendLedger,
	sendTimeout time.Duration,
	now func() time.Time,
	logger *zap.Logger,
) *Dispatcher {
	if now == nil {
		now = time.Now
	}
	return &Dispatcher{
		wisher:      w,
		channel:     channel,
		ledger:      ledger,
		sendTimeout: sendTimeout,
		now:         now,
		logger:      logger,
	}
}

// Dispatch runs the render-send-record sequence for one contact. The returned
// entry always reflects the attempt; the error is non-nil only when the ledger
// itself failed, which callers must treat as run-fatal.
func (d *Dispatcher) Dispatch(ctx context.Context, contact model.Contact) (model.SendLogEntry, error) {
	body, err := d.wisher.Render(ctx, contact)
	if err != nil {
		// Personalization is best-effort. The wish still goes out.
		d.logger.Warn("Wish rendering failed, using fallback template",
			zap.Int64("contact_id", contact.ID),
			zap.Error(err),
		)
		body = wisher.FallbackMessage(contact)
	}

	subject := fmt.Sprintf("Happy Birthday, %s!", contact.Name)

	sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	start := d.now()
	sendErr := d.channel.Send(sendCtx, contact.Email, subject, body)
	cancel()
	latency := d.now().Sub(start)

	entry := model.SendLogEntry{
		ContactID:    contact.ID,
		ContactName:  contact.Name,
		ContactEmail: contact.Email,
		Status:       model.StatusSent,
		SentAt:       d.now(),
	}

	if sendErr != nil {
		entry.Status = model.StatusFailed
		entry.ErrorMessage = sendErr.Error()
		d.logger.Error("Wish delivery failed",
			zap.Int64("contact_id", contact.ID),
			zap.String("email", contact.Email),
			zap.Error(sendErr),
		)
	} else {
		d.logger.Info("Wish delivered",
			zap.Int64("contact_id", contact.ID),
			zap.String("email", contact.Email),
		)
	}
	metrics.RecordDeliveryLatency(d.channel.Name(), entry.Status, latency)

	// The attempt is recorded no matter how delivery went; the ledger is what
	// keeps the next run from sending twice and what operators audit.
	if recErr := d.ledger.Record(ctx, &entry); recErr != nil {
		if errors.Is(recErr, ErrDuplicateSend) {
			// Another process recorded a send for this contact between our
			// ledger preload and now. The storage constraint held; keep the
			// entry as sent and move on.
			d.logger.Warn("Send already recorded by a concurrent run",
				zap.Int64("contact_id", contact.ID),
			)
			return entry, nil
		}
		d.logger.Error("Failed to record dispatch attempt",
			zap.Int64("contact_id", contact.ID),
			zap.Error(recErr),
		)
		return entry, recErr
	}

	return entry, nil
}
