package session

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bethropolis/textforge/internal/clipboard"
	"github.com/bethropolis/textforge/internal/config"
	"github.com/bethropolis/textforge/internal/coordinator"
	"github.com/bethropolis/textforge/internal/event"
	"github.com/bethropolis/textforge/internal/store"
	"github.com/bethropolis/textforge/internal/transform"
	"github.com/bethropolis/textforge/internal/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	cfg := config.NewDefaultConfig()
	cfg.Store.Backend = store.BackendMemory
	cfg.Autosave.Enabled = false
	return cfg
}

func newSession(t *testing.T, cfg *config.Config, opts ...Option) *Session {
	t.Helper()
	s, err := New(cfg, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// applyAsync offloads action and waits for the outcome.
func applyAsync(t *testing.T, s *Session, action transform.Action, params transform.Params) (coordinator.Result, error) {
	t.Helper()
	type outcome struct {
		res coordinator.Result
		err error
	}
	ch := make(chan outcome, 1)
	require.NoError(t, s.ApplyAsync(context.Background(), action, params, func(res coordinator.Result, err error) {
		ch <- outcome{res, err}
	}))
	select {
	case o := <-ch:
		return o.res, o.err
	case <-time.After(5 * time.Second):
		t.Fatal("transform never completed")
		return coordinator.Result{}, nil
	}
}

func TestEditUndoRedo(t *testing.T) {
	s := newSession(t, testConfig())

	assert.Equal(t, "", s.Text())
	assert.False(t, s.CanUndo())

	assert.True(t, s.Edit("one"))
	assert.True(t, s.Edit("two"))
	assert.False(t, s.Edit("two"), "identical text is not a commit")

	require.True(t, s.Undo())
	assert.Equal(t, "one", s.Text())
	require.True(t, s.Redo())
	assert.Equal(t, "two", s.Text())
	assert.False(t, s.Redo())

	assert.True(t, s.Clear())
	assert.Equal(t, "", s.Text())
	require.True(t, s.Undo())
	assert.Equal(t, "two", s.Text())
}

func TestApplyCommitsOnlyOnChange(t *testing.T) {
	s := newSession(t, testConfig())
	s.Edit("Hello")

	res, err := s.Apply(transform.ActionUpper, transform.Params{})
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, "HELLO", s.Text())

	res, err = s.Apply(transform.ActionUpper, transform.Params{})
	require.NoError(t, err)
	assert.False(t, res.Changed)

	require.True(t, s.Undo())
	assert.Equal(t, "Hello", s.Text())
	require.True(t, s.Undo())
	assert.Equal(t, "", s.Text())
	assert.False(t, s.CanUndo())
}

func TestApplyInlineFaultLeavesDocument(t *testing.T) {
	s := newSession(t, testConfig())
	s.Edit("text")

	_, err := s.Apply(transform.Action(77), transform.Params{})
	require.ErrorIs(t, err, coordinator.ErrEngineFault)
	assert.Equal(t, "text", s.Text())
}

func TestApplyAsync(t *testing.T) {
	s := newSession(t, testConfig())
	s.Edit("b\na\nb")

	res, err := applyAsync(t, s, transform.ActionUnique, transform.Params{})
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, "b\na", s.Text())
	assert.Equal(t, res.Elapsed, s.LastElapsed())

	res, err = applyAsync(t, s, transform.ActionFindReplace, transform.Params{Find: "a", Replace: "c"})
	require.NoError(t, err)
	assert.Equal(t, "b\nc", s.Text())

	require.True(t, s.Undo())
	assert.Equal(t, "b\na", s.Text())
}

func TestApplyAsyncRejectedWhileBusy(t *testing.T) {
	release := make(chan struct{})
	w := worker.NewLocal(worker.WithTransformFunc(func(a transform.Action, text string, p transform.Params) string {
		<-release
		return transform.Transform(a, text, p)
	}))
	s := newSession(t, testConfig(), WithWorker(w))
	s.Edit("abc")

	var wg sync.WaitGroup
	wg.Add(1)
	require.NoError(t, s.ApplyAsync(context.Background(), transform.ActionUpper, transform.Params{}, func(coordinator.Result, error) {
		wg.Done()
	}))
	assert.True(t, s.Busy())

	err := s.ApplyAsync(context.Background(), transform.ActionAddQuotes, transform.Params{}, func(coordinator.Result, error) {
		t.Error("a rejected request must not deliver a result")
	})
	require.ErrorIs(t, err, ErrRejected)
	assert.Equal(t, "abc", s.Text())

	close(release)
	wg.Wait()
	assert.Equal(t, "ABC", s.Text())

	require.True(t, s.Undo())
	assert.Equal(t, "abc", s.Text(), "only the accepted request was committed")
}

func TestApplyAsyncFaultLeavesDocument(t *testing.T) {
	w := worker.NewLocal(worker.WithTransformFunc(func(transform.Action, string, transform.Params) string {
		panic("kaput")
	}))
	events := event.NewManager()
	var failed []event.TransformFailedData
	var mu sync.Mutex
	events.Subscribe(func(e event.Event) bool {
		mu.Lock()
		defer mu.Unlock()
		failed = append(failed, e.Data.(event.TransformFailedData))
		return false
	}, event.TypeTransformFailed)

	s := newSession(t, testConfig(), WithWorker(w), WithEvents(events))
	s.Edit("keep")

	_, err := applyAsync(t, s, transform.ActionUpper, transform.Params{})
	require.ErrorIs(t, err, coordinator.ErrEngineFault)
	assert.Equal(t, "keep", s.Text())

	require.True(t, s.Undo())
	assert.Equal(t, "", s.Text())

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, failed, 1)
	assert.True(t, failed[0].Offloaded)
}

func TestOpenRestoresPersistedDocument(t *testing.T) {
	st := store.NewMemory()
	require.NoError(t, st.Save(context.Background(), config.DefaultAutosaveKey, "saved text"))

	s := newSession(t, testConfig(), WithStore(st))
	require.NoError(t, s.Open(context.Background()))
	assert.Equal(t, "saved text", s.Text())
	assert.False(t, s.CanUndo(), "a restore is not undoable")
}

func TestOpenWithoutSavedDocument(t *testing.T) {
	s := newSession(t, testConfig())
	require.NoError(t, s.Open(context.Background()))
	assert.Equal(t, "", s.Text())
}

func TestAutosaveOnClose(t *testing.T) {
	cfg := testConfig()
	cfg.Autosave.Enabled = true
	cfg.Autosave.Delay = "1h"
	st := store.NewMemory()

	s, err := New(cfg, WithStore(st))
	require.NoError(t, err)
	s.Edit("draft")

	_, err = st.Load(context.Background(), config.DefaultAutosaveKey)
	assert.ErrorIs(t, err, store.ErrNotFound, "debounced save has not fired yet")

	require.NoError(t, s.Close())
	got, err := st.Load(context.Background(), config.DefaultAutosaveKey)
	require.NoError(t, err)
	assert.Equal(t, "draft", got)
}

// slowStore delays every save.
type slowStore struct {
	*store.Memory
	delay time.Duration
}

func (s *slowStore) Save(ctx context.Context, key, value string) error {
	time.Sleep(s.delay)
	return s.Memory.Save(ctx, key, value)
}

func TestCloseWaitsForRunningAutosave(t *testing.T) {
	cfg := testConfig()
	cfg.Autosave.Enabled = true
	cfg.Autosave.Delay = "20ms"
	st := &slowStore{Memory: store.NewMemory(), delay: 100 * time.Millisecond}

	s, err := New(cfg, WithStore(st))
	require.NoError(t, err)
	s.Edit("final text")

	// The debounced save has started but not finished.
	time.Sleep(40 * time.Millisecond)
	require.NoError(t, s.Close())

	got, err := st.Load(context.Background(), config.DefaultAutosaveKey)
	require.NoError(t, err)
	assert.Equal(t, "final text", got)
}

func TestAutosaveAfterDelay(t *testing.T) {
	cfg := testConfig()
	cfg.Autosave.Enabled = true
	cfg.Autosave.Delay = "20ms"
	st := store.NewMemory()
	s := newSession(t, cfg, WithStore(st))

	s.Edit("a")
	s.Edit("ab")
	require.Eventually(t, func() bool {
		got, err := st.Load(context.Background(), config.DefaultAutosaveKey)
		return err == nil && got == "ab"
	}, 2*time.Second, 5*time.Millisecond)
}

func TestImport(t *testing.T) {
	st := store.NewMemory()
	s := newSession(t, testConfig(), WithStore(st))
	s.Edit("old")

	require.NoError(t, s.Import(context.Background(), strings.NewReader("new\ntext")))
	assert.Equal(t, "new\ntext", s.Text())
	assert.False(t, s.CanUndo(), "import starts a fresh history")

	got, err := st.Load(context.Background(), config.DefaultAutosaveKey)
	require.NoError(t, err)
	assert.Equal(t, "new\ntext", got, "import writes through immediately")
}

func TestImportRejectsBinary(t *testing.T) {
	s := newSession(t, testConfig())
	s.Edit("keep")

	err := s.Import(context.Background(), bytes.NewReader([]byte{0xff, 0xfe, 0x00}))
	require.ErrorIs(t, err, ErrInvalidUTF8)
	assert.Equal(t, "keep", s.Text())
	assert.True(t, s.CanUndo())
}

func TestImportExportFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.txt")
	require.NoError(t, os.WriteFile(src, []byte("line 1\nline 2"), 0o644))

	s := newSession(t, testConfig())
	require.NoError(t, s.ImportFile(context.Background(), src))
	_, err := s.Apply(transform.ActionAddDash, transform.Params{})
	require.NoError(t, err)

	path, err := s.ExportFile(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ExportFileName), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "-line 1\n-line 2", string(data))

	var buf bytes.Buffer
	require.NoError(t, s.Export(&buf))
	assert.Equal(t, "-line 1\n-line 2", buf.String())

	assert.Error(t, s.ImportFile(context.Background(), filepath.Join(dir, "missing.txt")))
}

type failingClipboard struct{}

func (failingClipboard) Write(string) error    { return errors.New("no display") }
func (failingClipboard) Read() (string, error) { return "", nil }

func TestCopy(t *testing.T) {
	clip := &clipboard.Internal{}
	s := newSession(t, testConfig(), WithClipboard(clip))
	s.Edit("copy me")

	require.NoError(t, s.Copy())
	got, err := clip.Read()
	require.NoError(t, err)
	assert.Equal(t, "copy me", got)

	s2 := newSession(t, testConfig(), WithClipboard(failingClipboard{}))
	assert.ErrorContains(t, s2.Copy(), "no display")
}

func TestStats(t *testing.T) {
	s := newSession(t, testConfig())
	s.Edit("a b\n\nc")
	st := s.Stats()
	assert.Equal(t, 3, st.Lines)
	assert.Equal(t, 1, st.EmptyLines)
	assert.Equal(t, 3, st.Words)
}

func TestHistoryCapacityFromConfig(t *testing.T) {
	cfg := testConfig()
	cfg.History.Capacity = 2
	s := newSession(t, cfg)

	s.Edit("A")
	s.Edit("B")
	s.Edit("C")
	require.True(t, s.Undo())
	assert.Equal(t, "B", s.Text())
	assert.False(t, s.Undo())
}

func TestInvalidLocale(t *testing.T) {
	cfg := testConfig()
	cfg.Engine.Locale = "!!"
	_, err := New(cfg)
	assert.Error(t, err)
}
