package mail

import (
	"context"
	"fmt"
	"sync"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	appErr "github.com/xxxsen/dermaai/internal/pkg/errors"
)

// Dispatcher sends mail from a bounded queue on a fixed set of workers.
// It implements Sender; Send returns once the message is queued.
type Dispatcher struct {
	next   Sender
	queue  chan Message
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
}

func NewDispatcher(next Sender, workers, queueSize int) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 1
	}
	d := &Dispatcher{next: next, queue: make(chan Message, queueSize)}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.run()
	}
	return d
}

func (d *Dispatcher) Send(ctx context.Context, msg Message) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return appErr.Transient("queue mail", fmt.Errorf("dispatcher closed"))
	}
	select {
	case d.queue <- msg:
		return nil
	default:
		return appErr.Transient("queue mail", fmt.Errorf("mail queue full"))
	}
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for msg := range d.queue {
		if err := d.next.Send(context.Background(), msg); err != nil {
			logutil.GetLogger(context.Background()).Warn("send queued mail failed",
				zap.String("email", msg.To), zap.String("subject", msg.Subject), zap.Error(err))
		}
	}
}

// Close stops accepting mail and waits for queued messages or ctx, whichever ends first.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
