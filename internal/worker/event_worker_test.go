package worker

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"spendlog/internal/amqp"
	"spendlog/internal/log"
)

func newTestWorker() *EventWorker {
	logger := log.New(log.Config{Handler: slog.NewTextHandler(io.Discard, nil)})
	return NewEventWorker(logger)
}

func TestHandleExpenseEvent(t *testing.T) {
	w := newTestWorker()

	msg := &amqp.ExpenseEventMessage{
		ExpenseID: "exp-1",
		OwnerID:   "user-a",
		Action:    amqp.ActionCreated,
		Timestamp: time.Now(),
	}
	if err := w.HandleExpenseEvent(context.Background(), msg); err != nil {
		t.Fatalf("handle: %v", err)
	}
}

func TestHandleExpenseEventDropsMissingIdentifiers(t *testing.T) {
	w := newTestWorker()

	tests := []struct {
		name string
		msg  *amqp.ExpenseEventMessage
	}{
		{"no expense id", &amqp.ExpenseEventMessage{OwnerID: "user-a", Action: amqp.ActionDeleted}},
		{"no owner id", &amqp.ExpenseEventMessage{ExpenseID: "exp-1", Action: amqp.ActionDeleted}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// A redelivery would carry the same payload, so dropping
			// must not surface as a handler error.
			if err := w.HandleExpenseEvent(context.Background(), tt.msg); err != nil {
				t.Fatalf("handle: %v", err)
			}
		})
	}
}

func TestHandleExpenseEventUnknownAction(t *testing.T) {
	w := newTestWorker()

	msg := &amqp.ExpenseEventMessage{
		ExpenseID: "exp-1",
		OwnerID:   "user-a",
		Action:    "renamed",
		Timestamp: time.Now(),
	}
	if err := w.HandleExpenseEvent(context.Background(), msg); err != nil {
		t.Fatalf("handle: %v", err)
	}
}
