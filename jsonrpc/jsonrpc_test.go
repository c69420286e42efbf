package jsonrpc

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustID(t *testing.T, v interface{}) ID {
	t.Helper()
	id, err := NewID(v)
	require.NoError(t, err)
	return id
}

func TestNewIDNormalizesIntegers(t *testing.T) {
	assert.True(t, mustID(t, 1).Equal(mustID(t, int64(1))))
	assert.True(t, mustID(t, int32(1)).Equal(int64(1)))
	assert.False(t, mustID(t, 1).Equal(mustID(t, 2)))
	assert.False(t, mustID(t, 1).Equal(mustID(t, "1")))
}

func TestNewIDRejectsNull(t *testing.T) {
	_, err := NewID(nil)
	require.Error(t, err)

	_, err = NewID(3.14)
	require.Error(t, err)
}

func TestIDRoundTrip(t *testing.T) {
	data, err := json.Marshal(mustID(t, int64(42)))
	require.NoError(t, err)
	assert.Equal(t, "42", string(data))

	var id ID
	require.NoError(t, json.Unmarshal(data, &id))
	assert.True(t, id.Equal(int64(42)))
}

func TestNewRequestMarshal(t *testing.T) {
	req, err := NewRequest("tools/call", map[string]interface{}{"name": "echo"}, 7)
	require.NoError(t, err)

	data, err := json.Marshal(req)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "2.0", decoded["jsonrpc"])
	assert.Equal(t, "tools/call", decoded["method"])
	assert.Equal(t, float64(7), decoded["id"])
}

func TestNotificationOmitsID(t *testing.T) {
	req, err := NewNotification("notifications/initialized", nil)
	require.NoError(t, err)
	assert.True(t, req.IsNotification())

	data, err := json.Marshal(req)
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"id"`)
}

func TestResponseUnmarshalResult(t *testing.T) {
	var resp Response
	raw := `{"jsonrpc":"2.0","result":{"tools":[]},"id":3}`
	require.NoError(t, json.Unmarshal([]byte(raw), &resp))

	var result struct {
		Tools []struct{} `json:"tools"`
	}
	require.NoError(t, resp.UnmarshalResult(&result))
	assert.NotNil(t, result.Tools)
	assert.True(t, resp.ID.Equal(int64(3)))
}

func TestErrorMessages(t *testing.T) {
	err := NewError(ErrMethodNotFound, nil)
	assert.Equal(t, "Method not found", err.Message)
	assert.EqualError(t, err, "-32601: Method not found")
}
