package task

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Notification is a message for one user, handed to the external notifier.
type Notification struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"user_id"`
	Kind      string          `json:"kind"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// Notifier delivers notifications. Delivery guarantees are the notifier's own.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// LogNotifier writes every notification to the log. It is the default when no
// transport is configured.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger.With("component", "log_notifier")}
}

// Notify implements Notifier.
func (n *LogNotifier) Notify(ctx context.Context, msg Notification) error {
	n.logger.InfoContext(ctx, "notification",
		"notification_id", msg.ID,
		"user_id", msg.UserID,
		"kind", msg.Kind,
		"payload", string(msg.Payload))
	return nil
}

// NotificationTask delivers one notification.
type NotificationTask struct {
	notification Notification
	notifier     Notifier

	mu     sync.Mutex
	status TaskStatus
}

var _ Task = (*NotificationTask)(nil)

// NewNotificationTask creates a pending task for n.
func NewNotificationTask(n Notification, notifier Notifier) *NotificationTask {
	if notifier == nil {
		panic("notifier cannot be nil")
	}
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return &NotificationTask{
		notification: n,
		notifier:     notifier,
		status:       TaskStatusPending,
	}
}

// ID implements Task.
func (t *NotificationTask) ID() uuid.UUID {
	return t.notification.ID
}

// Type implements Task.
func (t *NotificationTask) Type() string {
	return TaskTypeNotification
}

// Payload implements Task.
func (t *NotificationTask) Payload() []byte {
	b, err := json.Marshal(t.notification)
	if err != nil {
		return nil
	}
	return b
}

// Status implements Task.
func (t *NotificationTask) Status() TaskStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

func (t *NotificationTask) setStatus(s TaskStatus) {
	t.mu.Lock()
	t.status = s
	t.mu.Unlock()
}

// Execute implements Task.
func (t *NotificationTask) Execute(ctx context.Context) error {
	t.setStatus(TaskStatusProcessing)
	if err := t.notifier.Notify(ctx, t.notification); err != nil {
		t.setStatus(TaskStatusFailed)
		return fmt.Errorf("failed to deliver %s notification: %w", t.notification.Kind, err)
	}
	t.setStatus(TaskStatusCompleted)
	return nil
}
