// Package notify delivers customer-facing scheduling notifications. The
// default sink logs; deployments swap in a mail or SMS integration behind
// the same interface.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/versoindustries/verso-backend-sub001/pkg/jobs"
)

// Message is one notification to a customer.
type Message struct {
	Kind      string    `json:"kind"`
	Recipient string    `json:"recipient"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	SentAt    time.Time `json:"sent_at"`
}

// Notification kinds emitted by the scheduling engine.
const (
	KindWaitlistOffer    = "waitlist_offer"
	KindBookingConfirmed = "booking_confirmed"
	KindBookingCancelled = "booking_cancelled"
)

// Notifier delivers messages to customers.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// LogNotifier writes notifications to the structured log. It is the terminal
// sink in development and the fallback when no delivery channel is wired.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier constructs a LogNotifier.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

// Notify logs the message.
func (n *LogNotifier) Notify(_ context.Context, msg Message) error {
	n.logger.Info("notification",
		zap.String("kind", msg.Kind),
		zap.String("recipient", msg.Recipient),
		zap.String("subject", msg.Subject))
	return nil
}

// AsyncNotifier decouples delivery from the request path by pushing messages
// through an in-memory job queue onto a wrapped Notifier.
type AsyncNotifier struct {
	queue *jobs.Queue
}

// NewAsyncNotifier wraps sink with a worker-pool queue. Call Start before
// sending and Stop during shutdown.
func NewAsyncNotifier(sink Notifier, cfg jobs.QueueConfig) *AsyncNotifier {
	queue := jobs.NewQueue("notifications", func(ctx context.Context, job jobs.Job) error {
		msg, ok := job.Payload.(Message)
		if !ok {
			return fmt.Errorf("unexpected notification payload %T", job.Payload)
		}
		return sink.Notify(ctx, msg)
	}, cfg)
	return &AsyncNotifier{queue: queue}
}

// Start launches the delivery workers.
func (n *AsyncNotifier) Start(ctx context.Context) {
	n.queue.Start(ctx)
}

// Stop drains the workers.
func (n *AsyncNotifier) Stop() {
	n.queue.Stop()
}

// Notify enqueues the message for asynchronous delivery.
func (n *AsyncNotifier) Notify(_ context.Context, msg Message) error {
	if msg.SentAt.IsZero() {
		msg.SentAt = time.Now().UTC()
	}
	return n.queue.Enqueue(jobs.Job{
		ID:      uuid.NewString(),
		Type:    msg.Kind,
		Payload: msg,
	})
}
