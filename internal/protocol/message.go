// Package protocol defines the messages exchanged between the host session
// and an isolated worker. Messages are JSON objects; the subprocess worker
// frames them one per line.
package protocol

import (
	"errors"
	"fmt"
	"time"

	"github.com/bethropolis/textforge/internal/transform"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// ErrMalformed is returned when a message decodes but violates the protocol.
var ErrMalformed = errors.New("malformed message")

// Request asks the worker to run one action.
type Request struct {
	ID     string            `json:"id"`
	Action transform.Action  `json:"action"`
	Text   string            `json:"text"`
	Params *transform.Params `json:"params,omitempty"`
}

// Response carries either the transformed text or an error message.
type Response struct {
	ID            string  `json:"id"`
	Success       bool    `json:"success"`
	Text          string  `json:"text"`
	ExecutionTime float64 `json:"executionTime"` // milliseconds
	Error         string  `json:"error,omitempty"`
}

// failureMessage is the wire shape of a failed response.
type failureMessage struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// MarshalJSON always writes text and executionTime on success, even when
// empty, and only id, success and error on failure.
func (r Response) MarshalJSON() ([]byte, error) {
	if !r.Success {
		return json.Marshal(failureMessage{ID: r.ID, Error: r.Error})
	}
	type success Response
	return json.Marshal(success(r))
}

// NewRequest builds a request with a fresh correlation id. Params are only
// attached for find_replace.
func NewRequest(action transform.Action, text string, params transform.Params) Request {
	req := Request{
		ID:     uuid.NewString(),
		Action: action,
		Text:   text,
	}
	if action == transform.ActionFindReplace {
		req.Params = &params
	}
	return req
}

// Parameters returns the request params, or the zero value when absent.
func (r Request) Parameters() transform.Params {
	if r.Params == nil {
		return transform.Params{}
	}
	return *r.Params
}

// Success builds a successful response.
func Success(id, text string, elapsed time.Duration) Response {
	return Response{
		ID:            id,
		Success:       true,
		Text:          text,
		ExecutionTime: float64(elapsed) / float64(time.Millisecond),
	}
}

// Failure builds a failed response.
func Failure(id string, err error) Response {
	msg := "unknown worker error"
	if err != nil {
		msg = err.Error()
	}
	return Response{ID: id, Success: false, Error: msg}
}

// Elapsed converts the reported execution time back to a duration.
func (r Response) Elapsed() time.Duration {
	return time.Duration(r.ExecutionTime * float64(time.Millisecond))
}

// EncodeRequest serializes a request.
func EncodeRequest(req Request) ([]byte, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	return data, nil
}

// DecodeRequest parses and validates a request.
func DecodeRequest(data []byte) (Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return Request{}, fmt.Errorf("decode request: %w", err)
	}
	if !req.Action.Valid() {
		return Request{}, fmt.Errorf("%w: request %q has no action", ErrMalformed, req.ID)
	}
	return req, nil
}

// EncodeResponse serializes a response.
func EncodeResponse(resp Response) ([]byte, error) {
	data, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("encode response: %w", err)
	}
	return data, nil
}

// DecodeResponse parses and validates a response.
func DecodeResponse(data []byte) (Response, error) {
	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return Response{}, fmt.Errorf("decode response: %w", err)
	}
	if !resp.Success && resp.Error == "" {
		return Response{}, fmt.Errorf("%w: failure response %q without error", ErrMalformed, resp.ID)
	}
	return resp, nil
}
