// Package session owns one document: its undo history, the coordinator that
// runs transforms on it, and the collaborators that persist, import, export
// and copy it.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/bethropolis/textforge/internal/autosave"
	"github.com/bethropolis/textforge/internal/clipboard"
	"github.com/bethropolis/textforge/internal/config"
	"github.com/bethropolis/textforge/internal/coordinator"
	"github.com/bethropolis/textforge/internal/event"
	"github.com/bethropolis/textforge/internal/history"
	"github.com/bethropolis/textforge/internal/logger"
	"github.com/bethropolis/textforge/internal/store"
	"github.com/bethropolis/textforge/internal/transform"
	"github.com/bethropolis/textforge/internal/worker"
)

// ExportFileName is the name of the file written by ExportFile.
const ExportFileName = "transformed_text.txt"

// ErrInvalidUTF8 is returned when imported data is not valid UTF-8 text.
var ErrInvalidUTF8 = errors.New("input is not valid UTF-8 text")

// ErrRejected is returned by ApplyAsync while another offloaded transform is
// outstanding.
var ErrRejected = coordinator.ErrRejected

// Session is safe for concurrent use; commits are serialized.
type Session struct {
	history *history.Stack[string]
	coord   *coordinator.Coordinator
	events  *event.Manager
	saver   *autosave.Saver
	clip    clipboard.Clipboard
	store   store.Store
	key     string

	ownsStore bool
	mu        sync.Mutex // serializes read-compare-commit sequences

	elapsedMu   sync.RWMutex
	lastElapsed time.Duration
	closeOnce   sync.Once
}

type options struct {
	store     store.Store
	worker    worker.Worker
	clipboard clipboard.Clipboard
	events    *event.Manager
	observer  coordinator.Observer
}

// Option configures a Session.
type Option func(*options)

// WithStore persists through st instead of the configured backend. The
// caller keeps ownership of st.
func WithStore(st store.Store) Option {
	return func(o *options) { o.store = st }
}

// WithWorker offloads transforms to w instead of the configured worker.
func WithWorker(w worker.Worker) Option {
	return func(o *options) { o.worker = w }
}

// WithClipboard copies to c instead of the configured clipboard.
func WithClipboard(c clipboard.Clipboard) Option {
	return func(o *options) { o.clipboard = c }
}

// WithEvents dispatches through m, so callers can subscribe before Open.
func WithEvents(m *event.Manager) Option {
	return func(o *options) { o.events = m }
}

// WithObserver reports every transform outcome to obs.
func WithObserver(obs coordinator.Observer) Option {
	return func(o *options) { o.observer = obs }
}

// New creates a session with an empty document. Call Open to restore the
// persisted one.
func New(cfg *config.Config, opts ...Option) (*Session, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	locale, err := transform.ParseLocale(cfg.Engine.Locale)
	if err != nil {
		return nil, err
	}
	engine := transform.NewEngine(transform.WithLocale(locale))

	s := &Session{
		history: history.New("", cfg.History.Capacity),
		events:  o.events,
		clip:    o.clipboard,
		store:   o.store,
		key:     cfg.Autosave.Key,
	}
	if s.key == "" {
		s.key = autosave.DefaultKey
	}
	if s.events == nil {
		s.events = event.NewManager()
	}
	if s.clip == nil {
		s.clip = clipboard.New(cfg.Clipboard.System)
	}
	if s.store == nil {
		st, err := store.Open(cfg.Store)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		s.store = st
		s.ownsStore = true
	}

	w := o.worker
	if w == nil {
		w, err = newWorker(cfg.Engine.Worker, engine)
		if err != nil {
			s.closeStore()
			return nil, err
		}
	}
	coordOpts := []coordinator.Option{coordinator.WithEngine(engine), coordinator.WithWorker(w)}
	if o.observer != nil {
		coordOpts = append(coordOpts, coordinator.WithObserver(o.observer))
	}
	s.coord = coordinator.New(coordOpts...)

	if cfg.Autosave.Enabled {
		s.saver = autosave.New(s.store, s.Text,
			autosave.WithDelay(cfg.Autosave.DelayDuration()),
			autosave.WithKey(s.key))
		s.saver.Attach(s.events)
	}

	logger.DebugTagf("session", "Session: created (history %d, locale %q, autosave %v)",
		s.history.Capacity(), locale.String(), cfg.Autosave.Enabled)
	return s, nil
}

// newWorker starts the configured isolated execution context.
func newWorker(kind string, engine *transform.Engine) (worker.Worker, error) {
	if kind != config.WorkerProcess {
		return worker.NewLocal(worker.WithEngine(engine)), nil
	}
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("locate worker executable: %w", err)
	}
	args := []string{"worker"}
	if tag := engine.Locale().String(); tag != "und" {
		args = append(args, "--locale", tag)
	}
	return worker.StartProcess(exe, args...)
}

// Events returns the session's event manager.
func (s *Session) Events() *event.Manager {
	return s.events
}

// Open restores the persisted document, if any, as a fresh history.
func (s *Session) Open(ctx context.Context) error {
	text, err := s.store.Load(ctx, s.key)
	if errors.Is(err, store.ErrNotFound) {
		logger.DebugTagf("session", "Session: no saved document under '%s'", s.key)
		return nil
	}
	if err != nil {
		return fmt.Errorf("restore document: %w", err)
	}

	s.mu.Lock()
	s.history.Reset(text)
	s.mu.Unlock()

	logger.Infof("Session: restored %d bytes from '%s'", len(text), s.key)
	s.events.Dispatch(event.TypeDocumentReset, event.DocumentData{Text: text, Cause: event.CauseRestore})
	return nil
}

// Close waits for an outstanding transform, flushes a pending autosave and
// releases the worker and the store.
func (s *Session) Close() error {
	var errs []error
	s.closeOnce.Do(func() {
		if err := s.coord.Close(); err != nil {
			errs = append(errs, err)
		}
		if s.saver != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := s.saver.Flush(ctx); err != nil {
				errs = append(errs, fmt.Errorf("final autosave: %w", err))
			}
			cancel()
			s.saver.Stop()
		}
		if err := s.closeStore(); err != nil {
			errs = append(errs, err)
		}
		logger.DebugTagf("session", "Session: closed")
	})
	return errors.Join(errs...)
}

func (s *Session) closeStore() error {
	if !s.ownsStore {
		return nil
	}
	if err := s.store.Close(); err != nil {
		return fmt.Errorf("close store: %w", err)
	}
	return nil
}

// Text returns the present document.
func (s *Session) Text() string {
	return s.history.Present()
}

// commit records text if it differs from the present one.
func (s *Session) commit(text string, cause event.Cause) bool {
	s.mu.Lock()
	if text == s.history.Present() {
		s.mu.Unlock()
		return false
	}
	s.history.Commit(text)
	s.mu.Unlock()

	s.events.Dispatch(event.TypeDocumentChanged, event.DocumentData{Text: text, Cause: cause})
	return true
}

// Edit replaces the document with text as one undoable step. It reports
// whether anything changed.
func (s *Session) Edit(text string) bool {
	return s.commit(text, event.CauseEdit)
}

// Clear empties the document as one undoable step.
func (s *Session) Clear() bool {
	return s.commit("", event.CauseClear)
}

// Undo steps back one commit. It reports false when there is nothing to undo.
func (s *Session) Undo() bool {
	return s.step(s.history.Undo, event.CauseUndo)
}

// Redo steps forward one commit. It reports false when there is nothing to redo.
func (s *Session) Redo() bool {
	return s.step(s.history.Redo, event.CauseRedo)
}

func (s *Session) step(move func() bool, cause event.Cause) bool {
	s.mu.Lock()
	ok := move()
	text := s.history.Present()
	s.mu.Unlock()

	if ok {
		s.events.Dispatch(event.TypeDocumentChanged, event.DocumentData{Text: text, Cause: cause})
	}
	return ok
}

func (s *Session) CanUndo() bool { return s.history.CanUndo() }
func (s *Session) CanRedo() bool { return s.history.CanRedo() }

// Busy reports whether an offloaded transform is outstanding.
func (s *Session) Busy() bool {
	return s.coord.Busy()
}

// Apply runs action on the present document on the calling goroutine and
// commits the result if it changed the text.
func (s *Session) Apply(action transform.Action, params transform.Params) (coordinator.Result, error) {
	res, err := s.coord.Run(coordinator.Request{Action: action, Text: s.Text(), Params: params})
	s.finish(res, err, action, false)
	return res, err
}

// ApplyAsync offloads action on the present document. It returns
// ErrRejected immediately, without touching the history, while another
// offloaded transform is outstanding. Otherwise done (which may be nil) is
// called once with the outcome, after any commit.
func (s *Session) ApplyAsync(ctx context.Context, action transform.Action, params transform.Params, done coordinator.DoneFunc) error {
	req := coordinator.Request{Action: action, Text: s.Text(), Params: params}
	return s.coord.Submit(ctx, req, func(res coordinator.Result, err error) {
		s.finish(res, err, action, true)
		if done != nil {
			done(res, err)
		}
	})
}

// finish commits a successful result and reports the outcome.
func (s *Session) finish(res coordinator.Result, err error, action transform.Action, offloaded bool) {
	if err != nil {
		s.events.Dispatch(event.TypeTransformFailed, event.TransformFailedData{Action: action, Err: err, Offloaded: offloaded})
		return
	}

	s.elapsedMu.Lock()
	s.lastElapsed = res.Elapsed
	s.elapsedMu.Unlock()

	if res.Changed {
		s.commit(res.Text, event.CauseTransform)
	}
	s.events.Dispatch(event.TypeTransformDone, event.TransformDoneData{
		Action:    action,
		Elapsed:   res.Elapsed,
		Changed:   res.Changed,
		Offloaded: offloaded,
	})
}

// LastElapsed returns the duration of the last successful transform.
func (s *Session) LastElapsed() time.Duration {
	s.elapsedMu.RLock()
	defer s.elapsedMu.RUnlock()
	return s.lastElapsed
}

// Stats summarizes the present document.
func (s *Session) Stats() transform.Stats {
	return transform.Analyze(s.Text())
}

// Import replaces the document with the contents of r, starting a fresh
// history, and writes it through to the store.
func (s *Session) Import(ctx context.Context, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}
	if !utf8.Valid(data) {
		return fmt.Errorf("import: %w", ErrInvalidUTF8)
	}
	text := string(data)

	s.mu.Lock()
	s.history.Reset(text)
	s.mu.Unlock()

	s.events.Dispatch(event.TypeDocumentReset, event.DocumentData{Text: text, Cause: event.CauseImport})

	if s.saver != nil {
		err = s.saver.SaveNow(ctx)
	} else {
		err = s.store.Save(ctx, s.key, text)
	}
	if err != nil {
		return fmt.Errorf("import: persist: %w", err)
	}
	logger.Infof("Session: imported %d bytes", len(data))
	return nil
}

// ImportFile imports the file at path.
func (s *Session) ImportFile(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}
	defer f.Close()
	return s.Import(ctx, f)
}

// Export writes the present document to w.
func (s *Session) Export(w io.Writer) error {
	if _, err := io.WriteString(w, s.Text()); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}

// ExportFile writes the document to ExportFileName in dir ("" is the
// working directory) and returns the path written.
func (s *Session) ExportFile(dir string) (string, error) {
	path := filepath.Join(dir, ExportFileName)
	if err := os.WriteFile(path, []byte(s.Text()), 0o644); err != nil {
		return "", fmt.Errorf("export: %w", err)
	}
	logger.Infof("Session: exported to %s", path)
	return path, nil
}

// Copy puts the present document on the clipboard.
func (s *Session) Copy() error {
	if err := s.clip.Write(s.Text()); err != nil {
		return fmt.Errorf("copy: %w", err)
	}
	return nil
}
