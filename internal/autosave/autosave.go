// Package autosave persists the document shortly after it stops changing.
package autosave

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bethropolis/textforge/internal/event"
	"github.com/bethropolis/textforge/internal/logger"
	"github.com/bethropolis/textforge/internal/store"
)

const (
	DefaultDelay = 1 * time.Second
	DefaultKey   = "text-tool-content"

	saveTimeout = 5 * time.Second
)

// Config holds the [autosave] settings.
type Config struct {
	Enabled bool   `toml:"enabled"`
	Delay   string `toml:"delay"` // time.ParseDuration format
	Key     string `toml:"key"`
}

// DelayDuration parses Delay, falling back to DefaultDelay.
func (c Config) DelayDuration() time.Duration {
	if c.Delay == "" {
		return DefaultDelay
	}
	d, err := time.ParseDuration(c.Delay)
	if err != nil || d <= 0 {
		logger.Warnf("autosave: invalid delay '%s', using default (%v)", c.Delay, DefaultDelay)
		return DefaultDelay
	}
	return d
}

// Saver writes the text returned by its source to a store, debounced:
// every Schedule restarts the delay, and only the last one in a burst saves.
type Saver struct {
	store  store.Store
	source func() string
	key    string
	delay  time.Duration

	mutex      sync.Mutex
	debouncer  Debouncer
	pending    bool
	stopped    bool
	generation uint64
	inflight   int // timer-driven saves running
	idle       *sync.Cond

	saveMu sync.Mutex // serializes writes
}

// Option configures a Saver.
type Option func(*Saver)

// WithDelay sets the debounce delay.
func WithDelay(d time.Duration) Option {
	return func(s *Saver) {
		if d > 0 {
			s.delay = d
		}
	}
}

// WithKey sets the store key.
func WithKey(key string) Option {
	return func(s *Saver) {
		if key != "" {
			s.key = key
		}
	}
}

// New creates a saver writing source() to st.
func New(st store.Store, source func() string, opts ...Option) *Saver {
	s := &Saver{
		store:  st,
		source: source,
		key:    DefaultKey,
		delay:  DefaultDelay,
	}
	s.idle = sync.NewCond(&s.mutex)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key returns the store key the saver writes to.
func (s *Saver) Key() string {
	return s.key
}

// Attach schedules a save on every document change dispatched by m.
func (s *Saver) Attach(m *event.Manager) {
	m.Subscribe(func(event.Event) bool {
		s.Schedule()
		return false
	}, event.TypeDocumentChanged)
}

// Schedule (re)starts the debounce timer.
func (s *Saver) Schedule() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.stopped {
		return
	}
	s.pending = true
	s.generation++
	gen := s.generation
	s.debouncer.Debounce(s.delay, func() { s.fire(gen) })
}

// Pending reports whether a save is scheduled.
func (s *Saver) Pending() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.pending
}

func (s *Saver) fire(gen uint64) {
	s.mutex.Lock()
	if !s.pending || gen != s.generation {
		s.mutex.Unlock()
		return
	}
	s.pending = false
	s.inflight++
	s.mutex.Unlock()

	defer func() {
		s.mutex.Lock()
		s.inflight--
		s.idle.Broadcast()
		s.mutex.Unlock()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := s.save(ctx); err != nil {
		logger.Errorf("autosave: %v", err)
	}
}

// waitIdle blocks until no timer-driven save is running. s.mutex must be held.
func (s *Saver) waitIdle() {
	for s.inflight > 0 {
		s.idle.Wait()
	}
}

// Flush saves immediately if a save is pending. Otherwise it waits for a
// save that has already started.
func (s *Saver) Flush(ctx context.Context) error {
	s.mutex.Lock()
	if !s.pending {
		s.waitIdle()
		s.mutex.Unlock()
		return nil
	}
	s.pending = false
	s.debouncer.Cancel()
	s.mutex.Unlock()

	return s.save(ctx)
}

// SaveNow writes the current text regardless of pending state and cancels
// any scheduled save.
func (s *Saver) SaveNow(ctx context.Context) error {
	s.mutex.Lock()
	s.pending = false
	s.debouncer.Cancel()
	s.mutex.Unlock()

	return s.save(ctx)
}

// Stop cancels any scheduled save and waits for a running one to finish.
// Later Schedule calls are ignored.
func (s *Saver) Stop() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.stopped = true
	s.pending = false
	s.debouncer.Cancel()
	s.waitIdle()
	logger.DebugTagf("autosave", "autosave: stopped")
}

func (s *Saver) save(ctx context.Context) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	text := s.source()
	if err := s.store.Save(ctx, s.key, text); err != nil {
		return fmt.Errorf("save '%s': %w", s.key, err)
	}
	logger.DebugTagf("autosave", "autosave: saved %d bytes to '%s'", len(text), s.key)
	return nil
}
