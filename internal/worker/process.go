package worker

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"

	"github.com/bethropolis/textforge/internal/logger"
)

// Ensure Process implements Worker
var _ Worker = (*Process)(nil)

// Process runs the engine in a child process speaking line-delimited JSON on
// its standard streams.
type Process struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Reader

	mu     sync.Mutex // serializes round trips
	broken error      // set once the stream is unusable
	closed bool
}

// StartProcess launches path with args as a worker.
func StartProcess(path string, args ...string) (*Process, error) {
	return NewProcess(exec.Command(path, args...))
}

// NewProcess starts a prepared command as a worker. The command's Stdin and
// Stdout must not be set.
func NewProcess(cmd *exec.Cmd) (*Process, error) {
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("worker stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("worker stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start worker '%s': %w", cmd.Path, err)
	}
	logger.InfoTagf("worker", "Worker: started process %s (pid %d)", cmd.Path, cmd.Process.Pid)

	return &Process{
		cmd:    cmd,
		stdin:  stdin,
		stdout: bufio.NewReader(stdout),
	}, nil
}

// Do writes one request line and reads one response line. If ctx ends first
// the process is killed, since its stream can no longer be trusted.
func (p *Process) Do(ctx context.Context, payload []byte) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrClosed
	}
	if p.broken != nil {
		return nil, p.broken
	}

	line := append(bytes.TrimRight(bytes.Clone(payload), "\n"), '\n')
	reply := make(chan result, 1)
	go func() {
		if _, err := p.stdin.Write(line); err != nil {
			reply <- result{err: fmt.Errorf("write to worker: %w", err)}
			return
		}
		out, err := p.stdout.ReadBytes('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			reply <- result{err: fmt.Errorf("read from worker: %w", err)}
			return
		}
		reply <- result{out: bytes.TrimRight(out, "\r\n")}
	}()

	select {
	case r := <-reply:
		if r.err != nil {
			p.broken = r.err
			logger.Errorf("Worker: process stream failed: %v", r.err)
		}
		return r.out, r.err
	case <-ctx.Done():
		p.broken = fmt.Errorf("worker abandoned: %w", ctx.Err())
		_ = p.cmd.Process.Kill()
		return nil, ctx.Err()
	}
}

// Close ends the child's input and waits for it to exit.
func (p *Process) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true

	_ = p.stdin.Close()
	err := p.cmd.Wait()
	logger.DebugTagf("worker", "Worker: process exited: %v", err)
	if err != nil && p.broken != nil {
		// Already reported through Do.
		return nil
	}
	return err
}
