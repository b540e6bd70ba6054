package protocol

import (
	"errors"
	"testing"
	"time"

	"github.com/bethropolis/textforge/internal/transform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestWireFormat(t *testing.T) {
	req := NewRequest(transform.ActionFindReplace, "a b", transform.Params{Find: "a", Replace: "b"})
	require.NotEmpty(t, req.ID)

	data, err := EncodeRequest(req)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"id":"`+req.ID+`","action":"find_replace","text":"a b","params":{"find":"a","replace":"b"}}`,
		string(data))

	decoded, err := DecodeRequest(data)
	require.NoError(t, err)
	assert.Equal(t, req, decoded)
}

func TestRequestOmitsParamsForOtherActions(t *testing.T) {
	req := NewRequest(transform.ActionUpper, "x", transform.Params{Find: "ignored"})
	assert.Nil(t, req.Params)
	assert.Equal(t, transform.Params{}, req.Parameters())

	data, err := EncodeRequest(req)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "params")
}

func TestDecodeRequestRejectsUnknownAction(t *testing.T) {
	_, err := DecodeRequest([]byte(`{"id":"1","action":"explode","text":""}`))
	assert.ErrorIs(t, err, transform.ErrUnknownAction)

	_, err = DecodeRequest([]byte(`{"id":"1","text":""}`))
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = DecodeRequest([]byte(`{not json`))
	assert.Error(t, err)
}

func TestResponses(t *testing.T) {
	ok := Success("id-1", "OUT", 1500*time.Microsecond)
	data, err := EncodeResponse(ok)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"id-1","success":true,"text":"OUT","executionTime":1.5}`, string(data))

	decoded, err := DecodeResponse(data)
	require.NoError(t, err)
	assert.True(t, decoded.Success)
	assert.Equal(t, 1500*time.Microsecond, decoded.Elapsed())

	fail := Failure("id-2", errors.New("boom"))
	data, err = EncodeResponse(fail)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"id-2","success":false,"error":"boom"}`, string(data))

	assert.Equal(t, "unknown worker error", Failure("x", nil).Error)

	empty, err := EncodeResponse(Success("id-3", "", 0))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"id-3","success":true,"text":"","executionTime":0}`, string(empty))

	decoded, err = DecodeResponse(empty)
	require.NoError(t, err)
	assert.True(t, decoded.Success)
	assert.Equal(t, "", decoded.Text)
}

func TestDecodeResponseMalformed(t *testing.T) {
	_, err := DecodeResponse([]byte(`{"id":"x","success":false}`))
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = DecodeResponse([]byte(`[]`))
	assert.Error(t, err)
}
