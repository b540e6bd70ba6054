// Package worker provides isolated execution contexts for the transformation
// engine. A worker shares no memory with its caller: requests and responses
// cross the boundary as encoded bytes only.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bethropolis/textforge/internal/logger"
	"github.com/bethropolis/textforge/internal/protocol"
	"github.com/bethropolis/textforge/internal/transform"
)

// ErrClosed is returned by Do after Close.
var ErrClosed = errors.New("worker closed")

// Worker runs encoded protocol requests and returns encoded responses.
type Worker interface {
	// Do sends one request and waits for its response. The context bounds
	// the wait only; a dispatched transform always runs to completion.
	Do(ctx context.Context, payload []byte) ([]byte, error)
	// Close releases the execution context.
	Close() error
}

// TransformFunc is the engine entry point a worker runs.
type TransformFunc func(action transform.Action, text string, params transform.Params) string

// Handle is the worker side of one round trip: decode, run with timing and
// panic capture, encode. Engine faults become failure responses; only an
// encoding failure is returned as an error.
func Handle(payload []byte, fn TransformFunc) ([]byte, error) {
	req, err := protocol.DecodeRequest(payload)
	if err != nil {
		logger.WarnTagf("worker", "Worker: rejecting request: %v", err)
		return protocol.EncodeResponse(protocol.Failure(req.ID, err))
	}
	return protocol.EncodeResponse(run(req, fn))
}

// run executes the engine and converts a panic into a failure response.
func run(req protocol.Request, fn TransformFunc) (resp protocol.Response) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("Worker: %v panicked: %v", req.Action, r)
			resp = protocol.Failure(req.ID, fmt.Errorf("%v", r))
		}
	}()

	out := fn(req.Action, req.Text, req.Parameters())
	elapsed := time.Since(start)
	logger.DebugTagf("worker", "Worker: %v on %d bytes took %v", req.Action, len(req.Text), elapsed)
	return protocol.Success(req.ID, out, elapsed)
}
