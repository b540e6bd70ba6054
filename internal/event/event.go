package event

import (
	"time"

	"github.com/bethropolis/textforge/internal/transform"
)

// Type identifies the kind of event.
type Type int

const (
	TypeUnknown Type = iota

	// Document events
	TypeDocumentChanged // present text replaced by a commit, undo or redo
	TypeDocumentReset   // history replaced by Reset (restore, import)

	// Transform events
	TypeTransformDone   // a transform finished; the document may be unchanged
	TypeTransformFailed // a transform faulted; the document is untouched
)

func (t Type) String() string {
	switch t {
	case TypeDocumentChanged:
		return "document-changed"
	case TypeDocumentReset:
		return "document-reset"
	case TypeTransformDone:
		return "transform-done"
	case TypeTransformFailed:
		return "transform-failed"
	}
	return "unknown"
}

// Event is the structure passed through the event bus.
type Event struct {
	Type Type
	Data interface{}
}

// Cause says which operation produced a document change.
type Cause string

const (
	CauseEdit      Cause = "edit"
	CauseClear     Cause = "clear"
	CauseTransform Cause = "transform"
	CauseUndo      Cause = "undo"
	CauseRedo      Cause = "redo"
	CauseRestore   Cause = "restore"
	CauseImport    Cause = "import"
)

// DocumentData carries the new present text.
type DocumentData struct {
	Text  string
	Cause Cause
}

// TransformDoneData describes a finished transform.
type TransformDoneData struct {
	Action    transform.Action
	Elapsed   time.Duration
	Changed   bool
	Offloaded bool
}

// TransformFailedData describes a faulted transform.
type TransformFailedData struct {
	Action    transform.Action
	Err       error
	Offloaded bool
}
