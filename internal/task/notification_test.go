package task

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/petdeck/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []Notification
	err  error
}

func (r *recordingNotifier) Notify(ctx context.Context, n Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, n)
	return nil
}

func (r *recordingNotifier) Sent() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.sent))
	copy(out, r.sent)
	return out
}

func TestNotificationTaskLifecycle(t *testing.T) {
	notifier := &recordingNotifier{}
	n := Notification{UserID: uuid.New(), Kind: events.ReminderDue, Payload: []byte(`{"slot_key":"2026-10-16T09:00"}`)}
	task := NewNotificationTask(n, notifier)

	assert.NotEqual(t, uuid.Nil, task.ID())
	assert.Equal(t, TaskTypeNotification, task.Type())
	assert.Equal(t, TaskStatusPending, task.Status())
	assert.Contains(t, string(task.Payload()), "2026-10-16T09:00")

	require.NoError(t, task.Execute(context.Background()))
	assert.Equal(t, TaskStatusCompleted, task.Status())
	require.Len(t, notifier.Sent(), 1)
	assert.Equal(t, n.UserID, notifier.Sent()[0].UserID)

	failing := NewNotificationTask(n, &recordingNotifier{err: errors.New("offline")})
	assert.Error(t, failing.Execute(context.Background()))
	assert.Equal(t, TaskStatusFailed, failing.Status())
}

func TestLogNotifier(t *testing.T) {
	n := NewLogNotifier(setupTestLogger())
	assert.NoError(t, n.Notify(context.Background(), Notification{ID: uuid.New(), Kind: events.PetDied}))
}

func TestNotificationEventHandler(t *testing.T) {
	queue := NewTaskQueue(10, setupTestLogger())
	notifier := &recordingNotifier{}
	handler := NewNotificationEventHandler(queue, notifier, setupTestLogger())

	userID := uuid.New()
	reminder, err := events.NewEvent(events.ReminderDue, userID, events.ReminderPayload{SlotKey: "2026-10-16T09:00"}, time.Now())
	require.NoError(t, err)
	died, err := events.NewEvent(events.PetDied, userID, events.PetPayload{}, time.Now())
	require.NoError(t, err)
	completed, err := events.NewEvent(events.SessionCompleted, userID, events.SessionPayload{}, time.Now())
	require.NoError(t, err)

	require.NoError(t, handler.HandleEvent(context.Background(), reminder))
	require.NoError(t, handler.HandleEvent(context.Background(), died))
	require.NoError(t, handler.HandleEvent(context.Background(), completed))

	pool := NewWorkerPool(queue, WorkerPoolConfig{WorkerCount: 2}, setupTestLogger())
	pool.Start()
	queue.Close()
	pool.Wait()

	sent := notifier.Sent()
	require.Len(t, sent, 2)
	kinds := []string{sent[0].Kind, sent[1].Kind}
	assert.ElementsMatch(t, []string{events.ReminderDue, events.PetDied}, kinds)

	// A closed queue surfaces the error to the emitter
	assert.ErrorIs(t, handler.HandleEvent(context.Background(), reminder), ErrQueueClosed)
}
