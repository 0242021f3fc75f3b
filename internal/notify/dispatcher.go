package notify

import (
	"context"

	"github.com/yukikurage/taskmanager-api/internal/logger"
	"go.uber.org/zap"
)

// Dispatcher queues messages and hands them to a Notifier from a single
// worker goroutine, so callers never block on delivery.
type Dispatcher struct {
	notifier Notifier
	queue    chan Message
	done     chan struct{}
}

func NewDispatcher(notifier Notifier, queueSize int) *Dispatcher {
	if queueSize < 1 {
		queueSize = 1
	}
	return &Dispatcher{
		notifier: notifier,
		queue:    make(chan Message, queueSize),
		done:     make(chan struct{}),
	}
}

// Send enqueues msg. It never blocks; when the queue is full the message is
// dropped and a warning logged.
func (d *Dispatcher) Send(_ context.Context, msg Message) error {
	select {
	case d.queue <- msg:
	default:
		logger.Warn("Notifier: queue full, dropping message",
			zap.Strings("to", msg.To),
			zap.String("subject", msg.Subject),
		)
	}
	return nil
}

// Start delivers queued messages until ctx is cancelled. Messages still queued
// at that point are delivered before Start returns.
func (d *Dispatcher) Start(ctx context.Context) {
	defer close(d.done)
	logger.Info("Notifier: started")

	for {
		select {
		case msg := <-d.queue:
			d.deliver(ctx, msg)
		case <-ctx.Done():
			d.drain()
			logger.Info("Notifier: stopped")
			return
		}
	}
}

// Done is closed once Start has returned.
func (d *Dispatcher) Done() <-chan struct{} {
	return d.done
}

func (d *Dispatcher) drain() {
	for {
		select {
		case msg := <-d.queue:
			d.deliver(context.Background(), msg)
		default:
			return
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, msg Message) {
	if err := d.notifier.Send(ctx, msg); err != nil {
		logger.Warn("Notifier: delivery failed",
			zap.Strings("to", msg.To),
			zap.String("subject", msg.Subject),
			zap.Error(err),
		)
	}
}
