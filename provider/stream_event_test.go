package provider

import (
	"errors"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestChunkJSONRoundTrip(t *testing.T) {
	t.Parallel()

	raw, err := json.Marshal(Chunk{Text: "hel"})
	require.NoError(t, err)
	assert.Equal(t, "chunk", gjson.GetBytes(raw, "type").String())

	var decoded Chunk
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "hel", decoded.Text)

	assert.Error(t, json.Unmarshal([]byte(`{"type":"done"}`), &decoded), "wrong marker")
}

func TestMetadataJSONRoundTrip(t *testing.T) {
	t.Parallel()

	raw, err := json.Marshal(Metadata{Data: gjson.Parse(`{"usage":{"totalTokens":3}}`)})
	require.NoError(t, err)

	var decoded Metadata
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.EqualValues(t, 3, decoded.Data.Get("usage.totalTokens").Int())
}

func TestErrorEventJSON(t *testing.T) {
	t.Parallel()

	raw, err := json.Marshal(Error{Err: errors.New("upstream boom")})
	require.NoError(t, err)
	assert.Equal(t, "upstream boom", gjson.GetBytes(raw, "error").String())

	var decoded Error
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.EqualError(t, decoded.Err, "upstream boom")
}
