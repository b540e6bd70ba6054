package worker

import (
	"bytes"
	"context"
	"sync"

	"github.com/bethropolis/textforge/internal/logger"
	"github.com/bethropolis/textforge/internal/transform"
)

// Ensure Local implements Worker
var _ Worker = (*Local)(nil)

type result struct {
	out []byte
	err error
}

type job struct {
	payload []byte
	reply   chan result
}

// Local runs the engine on a dedicated goroutine fed through a channel.
// The goroutine keeps no state between requests.
type Local struct {
	fn        TransformFunc
	jobs      chan job
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// Option configures a Local worker.
type Option func(*Local)

// WithTransformFunc replaces the engine entry point.
func WithTransformFunc(fn TransformFunc) Option {
	return func(w *Local) {
		w.fn = fn
	}
}

// WithEngine runs transforms through a configured engine.
func WithEngine(e *transform.Engine) Option {
	return func(w *Local) {
		w.fn = e.Transform
	}
}

// NewLocal starts an in-process worker goroutine.
func NewLocal(opts ...Option) *Local {
	w := &Local{
		fn:       transform.Transform,
		jobs:     make(chan job),
		stopChan: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	w.wg.Add(1)
	go w.loop()
	logger.DebugTagf("worker", "Worker: local goroutine started.")
	return w
}

func (w *Local) loop() {
	defer w.wg.Done()
	for {
		select {
		case j := <-w.jobs:
			out, err := Handle(j.payload, w.fn)
			j.reply <- result{out: out, err: err}
		case <-w.stopChan:
			logger.DebugTagf("worker", "Worker: received stop signal, exiting loop.")
			return
		}
	}
}

// Do hands a copy of payload to the worker goroutine and waits for the reply.
func (w *Local) Do(ctx context.Context, payload []byte) ([]byte, error) {
	reply := make(chan result, 1)
	select {
	case w.jobs <- job{payload: bytes.Clone(payload), reply: reply}:
	case <-w.stopChan:
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case r := <-reply:
		return r.out, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close stops the goroutine after any in-flight request finishes.
func (w *Local) Close() error {
	w.closeOnce.Do(func() {
		close(w.stopChan)
		w.wg.Wait()
		logger.DebugTagf("worker", "Worker: local goroutine stopped.")
	})
	return nil
}
