package worker

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"spendlog/internal/amqp"
	"spendlog/internal/log"
)

var eventsProcessed = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "spendlog_expense_events_processed_total",
		Help: "Expense change events consumed from the broker, by action.",
	},
	[]string{"action"},
)

// EventWorker consumes expense change events and records them as an
// audit trail. It is the consuming counterpart of the publisher in the
// expense service.
type EventWorker struct {
	logger *log.Logger
}

func NewEventWorker(logger *log.Logger) *EventWorker {
	return &EventWorker{logger: logger.WithComponent(log.ComponentAMQP)}
}

// HandleExpenseEvent processes a single event. Events without
// identifiers are dropped rather than requeued; a redelivery would
// carry the same broken payload.
func (w *EventWorker) HandleExpenseEvent(ctx context.Context, msg *amqp.ExpenseEventMessage) error {
	if msg.ExpenseID == "" || msg.OwnerID == "" {
		w.logger.WarnContext(ctx, "Dropping expense event without identifiers", "action", msg.Action)
		return nil
	}

	// Unknown actions are counted under a single label to keep metric
	// cardinality bounded.
	action := msg.Action
	switch action {
	case amqp.ActionCreated, amqp.ActionUpdated, amqp.ActionDeleted:
	default:
		action = "unknown"
	}
	eventsProcessed.WithLabelValues(action).Inc()

	w.logger.InfoContext(ctx, "Processed expense event",
		log.FieldExpenseID, msg.ExpenseID,
		log.FieldOwnerID, msg.OwnerID,
		"action", msg.Action,
		"emitted_at", msg.Timestamp)

	return nil
}
