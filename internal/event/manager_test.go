package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDispatchOrderAndData(t *testing.T) {
	m := NewManager()
	var got []string

	m.Subscribe(func(e Event) bool {
		got = append(got, "first:"+e.Data.(DocumentData).Text)
		return false
	}, TypeDocumentChanged)
	m.Subscribe(func(e Event) bool {
		got = append(got, "second:"+string(e.Data.(DocumentData).Cause))
		return false
	}, TypeDocumentChanged, TypeDocumentReset)

	m.Dispatch(TypeDocumentChanged, DocumentData{Text: "abc", Cause: CauseEdit})
	m.Dispatch(TypeDocumentReset, DocumentData{Text: "x", Cause: CauseImport})
	m.Dispatch(TypeTransformDone, TransformDoneData{})

	assert.Equal(t, []string{"first:abc", "second:edit", "second:import"}, got)
}

func TestDispatchConsumedStopsPropagation(t *testing.T) {
	m := NewManager()
	calls := 0
	m.Subscribe(func(Event) bool { calls++; return true }, TypeTransformFailed)
	m.Subscribe(func(Event) bool { calls++; return false }, TypeTransformFailed)

	m.Dispatch(TypeTransformFailed, TransformFailedData{})
	assert.Equal(t, 1, calls)
}

func TestSubscribeDuringDispatch(t *testing.T) {
	m := NewManager()
	late := 0
	m.Subscribe(func(Event) bool {
		m.Subscribe(func(Event) bool { late++; return false }, TypeDocumentChanged)
		return false
	}, TypeDocumentChanged)

	m.Dispatch(TypeDocumentChanged, DocumentData{})
	assert.Equal(t, 0, late)
	m.Dispatch(TypeDocumentChanged, DocumentData{})
	assert.Equal(t, 1, late)
}

func TestTypeString(t *testing.T) {
	assert.Equal(t, "document-changed", TypeDocumentChanged.String())
	assert.Equal(t, "transform-failed", TypeTransformFailed.String())
	assert.Equal(t, "unknown", Type(42).String())
}
