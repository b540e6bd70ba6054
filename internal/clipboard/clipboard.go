// Package clipboard copies text to the system clipboard, or to an internal
// buffer when the system one is disabled or unavailable.
package clipboard

import (
	"fmt"
	"sync"

	sysclip "github.com/atotto/clipboard"
	"github.com/bethropolis/textforge/internal/logger"
)

// Clipboard holds copied text.
type Clipboard interface {
	Write(text string) error
	Read() (string, error)
}

// New returns the system clipboard when system is true and the platform
// supports it, otherwise an internal one.
func New(system bool) Clipboard {
	if system {
		if sysclip.Unsupported {
			logger.Warnf("Clipboard: system clipboard unsupported, using internal clipboard")
		} else {
			return &System{fallback: &Internal{}}
		}
	}
	return &Internal{}
}

// Internal keeps the last copied text in memory.
type Internal struct {
	mu   sync.RWMutex
	text string
}

func (c *Internal) Write(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.text = text
	logger.DebugTagf("clipboard", "Clipboard: copied %d bytes (internal)", len(text))
	return nil
}

func (c *Internal) Read() (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.text, nil
}

// System writes through atotto/clipboard. When the platform tool fails
// (no display, missing xclip) the text is kept internally and the error
// is still returned.
type System struct {
	fallback *Internal
}

func (c *System) Write(text string) error {
	_ = c.fallback.Write(text)
	if err := sysclip.WriteAll(text); err != nil {
		return fmt.Errorf("system clipboard: %w", err)
	}
	logger.DebugTagf("clipboard", "Clipboard: copied %d bytes (system)", len(text))
	return nil
}

func (c *System) Read() (string, error) {
	text, err := sysclip.ReadAll()
	if err != nil {
		logger.DebugTagf("clipboard", "Clipboard: system read failed, using internal: %v", err)
		return c.fallback.Read()
	}
	return text, nil
}
