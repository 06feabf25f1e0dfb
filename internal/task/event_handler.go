package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/petdeck/internal/events"
)

// NotificationEventHandler implements the events.EventHandler interface by
// turning user-facing events into notification tasks on the queue.
type NotificationEventHandler struct {
	queue    TaskQueueWriter
	notifier Notifier
	kinds    map[string]bool
	logger   *slog.Logger
}

var _ events.EventHandler = (*NotificationEventHandler)(nil)

// NewNotificationEventHandler creates a handler that forwards reminders and
// pet deaths.
func NewNotificationEventHandler(queue TaskQueueWriter, notifier Notifier, logger *slog.Logger) *NotificationEventHandler {
	if queue == nil {
		panic("queue cannot be nil")
	}
	if notifier == nil {
		panic("notifier cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationEventHandler{
		queue:    queue,
		notifier: notifier,
		kinds: map[string]bool{
			events.ReminderDue: true,
			events.PetDied:     true,
		},
		logger: logger.With("component", "notification_event_handler"),
	}
}

// HandleEvent enqueues a notification task for supported event types.
func (h *NotificationEventHandler) HandleEvent(ctx context.Context, event *events.Event) error {
	if !h.kinds[event.Type] {
		return nil
	}

	t := NewNotificationTask(Notification{
		UserID:    event.UserID,
		Kind:      event.Type,
		Payload:   event.Payload,
		CreatedAt: event.CreatedAt,
	}, h.notifier)

	if err := h.queue.Enqueue(t); err != nil {
		h.logger.ErrorContext(ctx, "failed to enqueue notification",
			"error", err,
			"event_id", event.ID,
			"event_type", event.Type,
			"user_id", event.UserID)
		return fmt.Errorf("failed to enqueue notification: %w", err)
	}

	h.logger.DebugContext(ctx, "notification enqueued",
		"task_id", t.ID(),
		"event_id", event.ID,
		"event_type", event.Type)
	return nil
}
