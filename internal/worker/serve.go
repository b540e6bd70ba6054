package worker

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/bethropolis/textforge/internal/logger"
)

// Serve is the worker side of a Process: it reads one request per line from
// r and writes one response per line to w until r is exhausted or ctx ends.
func Serve(ctx context.Context, r io.Reader, w io.Writer, fn TransformFunc) error {
	in := bufio.NewReader(r)
	out := bufio.NewWriter(w)
	served := 0

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, err := in.ReadBytes('\n')
		if len(bytes.TrimSpace(line)) > 0 {
			resp, encErr := Handle(bytes.TrimSpace(line), fn)
			if encErr != nil {
				return fmt.Errorf("serve: %w", encErr)
			}
			if _, werr := out.Write(append(resp, '\n')); werr != nil {
				return fmt.Errorf("serve: write: %w", werr)
			}
			if werr := out.Flush(); werr != nil {
				return fmt.Errorf("serve: flush: %w", werr)
			}
			served++
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				logger.DebugTagf("worker", "Worker: input closed after %d requests.", served)
				return nil
			}
			return fmt.Errorf("serve: read: %w", err)
		}
	}
}
