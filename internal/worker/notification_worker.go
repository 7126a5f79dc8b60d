package worker

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/signup-service/internal/events"
	"github.com/spec-kit/signup-service/internal/service"
)

var (
	// ErrQueueFull is returned to the publisher when the notification backlog is full.
	ErrQueueFull = errors.New("notification queue full")
	// ErrWorkerStopped is returned to the publisher once Stop was called.
	ErrWorkerStopped = errors.New("notification worker stopped")
)

// NotificationWorker delivers notifications off the request path.
type NotificationWorker struct {
	notifications *service.NotificationService
	logger        *zap.Logger
	queue         chan events.Event
	done          chan struct{}
	stopOnce      sync.Once
	wg            sync.WaitGroup
}

// StartNotificationWorker subscribes to the notification events on dispatcher
// and starts a goroutine draining them. Stop must be called on shutdown.
func StartNotificationWorker(dispatcher events.Dispatcher, notifications *service.NotificationService, logger *zap.Logger, queueSize int) *NotificationWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if queueSize <= 0 {
		queueSize = 64
	}
	w := &NotificationWorker{
		notifications: notifications,
		logger:        logger,
		queue:         make(chan events.Event, queueSize),
		done:          make(chan struct{}),
	}
	for _, eventType := range notifications.EventTypes() {
		dispatcher.Subscribe(eventType, w.enqueue)
	}

	w.wg.Add(1)
	go w.run()
	return w
}

func (w *NotificationWorker) enqueue(_ context.Context, event events.Event) error {
	select {
	case <-w.done:
		return ErrWorkerStopped
	default:
	}
	select {
	case w.queue <- event:
		return nil
	default:
		return ErrQueueFull
	}
}

func (w *NotificationWorker) run() {
	defer w.wg.Done()
	for {
		select {
		case event := <-w.queue:
			w.deliver(event)
		case <-w.done:
			// drain what was accepted before Stop
			for {
				select {
				case event := <-w.queue:
					w.deliver(event)
				default:
					return
				}
			}
		}
	}
}

func (w *NotificationWorker) deliver(event events.Event) {
	if err := w.notifications.Notify(context.Background(), event); err != nil {
		w.logger.Warn("notification delivery failed",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)),
			zap.Error(err))
	}
}

// Stop rejects new events, delivers the backlog and waits for the worker to exit.
func (w *NotificationWorker) Stop() {
	w.stopOnce.Do(func() { close(w.done) })
	w.wg.Wait()
}
