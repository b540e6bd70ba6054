package coordinator

import (
	"errors"
	"fmt"

	"github.com/bethropolis/textforge/internal/transform"
)

// Sentinel errors. Use errors.Is to classify a failed execution.
var (
	// ErrEngineFault: the engine failed on a structurally valid request.
	ErrEngineFault = errors.New("engine fault")
	// ErrChannelFault: the worker round trip did not yield a well-formed response.
	ErrChannelFault = errors.New("channel fault")
	// ErrRejected: another offloaded request is still outstanding.
	ErrRejected = errors.New("request rejected: transform in progress")
	// ErrClosed: the coordinator has released its worker.
	ErrClosed = errors.New("coordinator closed")
)

// FaultError describes a failed execution.
type FaultError struct {
	Kind   error // ErrEngineFault or ErrChannelFault
	Action transform.Action
	Err    error
}

func (e *FaultError) Error() string {
	return fmt.Sprintf("%v: %v: %v", e.Action, e.Kind, e.Err)
}

// Unwrap exposes both the kind sentinel and the underlying cause.
func (e *FaultError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

func engineFault(action transform.Action, err error) error {
	return &FaultError{Kind: ErrEngineFault, Action: action, Err: err}
}

func channelFault(action transform.Action, err error) error {
	return &FaultError{Kind: ErrChannelFault, Action: action, Err: err}
}
