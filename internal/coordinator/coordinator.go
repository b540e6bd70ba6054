// Package coordinator runs transformation requests either inline on the
// caller's goroutine or offloaded to an isolated worker, with single-flight
// admission, timing and error capture.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bethropolis/textforge/internal/logger"
	"github.com/bethropolis/textforge/internal/protocol"
	"github.com/bethropolis/textforge/internal/transform"
	"github.com/bethropolis/textforge/internal/worker"
)

var errIDMismatch = errors.New("response id does not match request")

// Mode tells where a request executed.
type Mode int

const (
	ModeInline Mode = iota
	ModeOffload
)

func (m Mode) String() string {
	if m == ModeOffload {
		return "offload"
	}
	return "inline"
}

// Request is one action applied to one document snapshot.
type Request struct {
	Action transform.Action
	Text   string
	Params transform.Params
}

// Result is a successful execution.
type Result struct {
	Action  transform.Action
	Text    string
	Elapsed time.Duration
	Changed bool // Text differs from the request text
	Mode    Mode
}

// Observer receives execution outcomes, e.g. for metrics.
type Observer interface {
	TransformFinished(action transform.Action, mode Mode, elapsed time.Duration, err error)
	TransformRejected(action transform.Action)
}

// DoneFunc receives the outcome of an offloaded request.
type DoneFunc func(Result, error)

// Coordinator owns the worker for its whole lifetime; Close releases it.
type Coordinator struct {
	engine   *transform.Engine
	worker   worker.Worker
	observer Observer

	busy   atomic.Bool
	closed atomic.Bool
	mu     sync.Mutex // orders Submit's wg.Add against Close
	wg     sync.WaitGroup
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithEngine sets the engine used by the inline path and by the default worker.
func WithEngine(e *transform.Engine) Option {
	return func(c *Coordinator) {
		c.engine = e
	}
}

// WithWorker sets the isolated execution context for offloaded requests.
func WithWorker(w worker.Worker) Option {
	return func(c *Coordinator) {
		c.worker = w
	}
}

// WithObserver registers an execution observer.
func WithObserver(o Observer) Option {
	return func(c *Coordinator) {
		c.observer = o
	}
}

// New creates a coordinator. Without WithWorker it starts a local worker
// goroutine running the same engine.
func New(opts ...Option) *Coordinator {
	c := &Coordinator{}
	for _, opt := range opts {
		opt(c)
	}
	if c.engine == nil {
		c.engine = transform.NewEngine()
	}
	if c.worker == nil {
		c.worker = worker.NewLocal(worker.WithEngine(c.engine))
	}
	return c
}

// Busy reports whether an offloaded request is outstanding.
func (c *Coordinator) Busy() bool {
	return c.busy.Load()
}

// Run executes req synchronously on the caller's goroutine.
func (c *Coordinator) Run(req Request) (Result, error) {
	if c.closed.Load() {
		return Result{}, ErrClosed
	}

	start := time.Now()
	out, err := c.invoke(req)
	elapsed := time.Since(start)
	c.finished(req.Action, ModeInline, elapsed, err)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Action:  req.Action,
		Text:    out,
		Elapsed: elapsed,
		Changed: out != req.Text,
		Mode:    ModeInline,
	}, nil
}

// invoke calls the engine, turning a panic into an engine fault.
func (c *Coordinator) invoke(req Request) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = engineFault(req.Action, fmt.Errorf("%v", r))
		}
	}()
	return c.engine.Transform(req.Action, req.Text, req.Params), nil
}

// Submit offloads req to the worker and returns immediately. If another
// request is outstanding it returns ErrRejected and done is never called.
// Otherwise done is called exactly once from a coordinator goroutine; the
// slot stays occupied until done returns, so done must not Submit again
// synchronously.
func (c *Coordinator) Submit(ctx context.Context, req Request, done DoneFunc) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed.Load() {
		return ErrClosed
	}
	if !c.busy.CompareAndSwap(false, true) {
		logger.DebugTagf("coordinator", "Coordinator: dropped %v, transform in progress", req.Action)
		if c.observer != nil {
			c.observer.TransformRejected(req.Action)
		}
		return ErrRejected
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer c.busy.Store(false)

		res, err := c.offload(ctx, req)
		c.finished(req.Action, ModeOffload, res.Elapsed, err)
		if done != nil {
			done(res, err)
		}
	}()
	return nil
}

// offload performs one encoded round trip through the worker.
func (c *Coordinator) offload(ctx context.Context, req Request) (Result, error) {
	msg := protocol.NewRequest(req.Action, req.Text, req.Params)
	payload, err := protocol.EncodeRequest(msg)
	if err != nil {
		return Result{}, channelFault(req.Action, err)
	}

	out, err := c.worker.Do(ctx, payload)
	if err != nil {
		return Result{}, channelFault(req.Action, err)
	}

	resp, err := protocol.DecodeResponse(out)
	if err != nil {
		return Result{}, channelFault(req.Action, err)
	}
	if resp.ID != msg.ID {
		return Result{}, channelFault(req.Action, fmt.Errorf("%w: got %q, want %q", errIDMismatch, resp.ID, msg.ID))
	}
	if !resp.Success {
		return Result{}, engineFault(req.Action, errors.New(resp.Error))
	}

	return Result{
		Action:  req.Action,
		Text:    resp.Text,
		Elapsed: resp.Elapsed(),
		Changed: resp.Text != req.Text,
		Mode:    ModeOffload,
	}, nil
}

func (c *Coordinator) finished(action transform.Action, mode Mode, elapsed time.Duration, err error) {
	if err != nil {
		logger.Errorf("Coordinator: %s %v failed: %v", mode, action, err)
	} else {
		logger.DebugTagf("coordinator", "Coordinator: %s %v finished in %v", mode, action, elapsed)
	}
	if c.observer != nil {
		c.observer.TransformFinished(action, mode, elapsed, err)
	}
}

// Wait blocks until no offloaded request is outstanding.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

// Close waits for the outstanding request, if any, and releases the worker.
func (c *Coordinator) Close() error {
	c.mu.Lock()
	if c.closed.Swap(true) {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()
	c.wg.Wait()
	if err := c.worker.Close(); err != nil {
		return fmt.Errorf("release worker: %w", err)
	}
	return nil
}
