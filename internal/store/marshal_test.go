package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalRecord_SortsKeys(t *testing.T) {
	data, err := MarshalRecord(Record{"userid": "U1", "id": "R1", "butterflyid": "B1"})
	require.NoError(t, err)
	assert.Equal(t, `{"butterflyid":"B1","id":"R1","userid":"U1"}`, string(data))
}

func TestMarshalRecord_NoHTMLEscape(t *testing.T) {
	data, err := MarshalRecord(Record{"article": "https://example.org/?a=1&b=<2>"})
	require.NoError(t, err)
	assert.Equal(t, `{"article":"https://example.org/?a=1&b=<2>"}`, string(data))
}

func TestMarshalRecord_PreservesValues(t *testing.T) {
	// "e" + combining acute accent stays decomposed.
	data, err := MarshalRecord(Record{"commonName": "Cafe\u0301"})
	require.NoError(t, err)
	assert.Equal(t, "{\"commonName\":\"Cafe\u0301\"}", string(data))

	rec, err := UnmarshalRecord(data)
	require.NoError(t, err)
	assert.Equal(t, "Cafe\u0301", rec["commonName"])
}

func TestMarshalRecord_LineSeparators(t *testing.T) {
	data, err := MarshalRecord(Record{"a": "x\u2028y", "b": `\u2028`})
	require.NoError(t, err)
	assert.Equal(t, "{\"a\":\"x\u2028y\",\"b\":\"\\\\u2028\"}", string(data))
}

func TestMarshalRecord_Empty(t *testing.T) {
	data, err := MarshalRecord(Record{})
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(data))
}

func TestUnmarshalRecord_RoundTrip(t *testing.T) {
	in := Record{"id": "B1", "commonName": "Plum Judy"}
	data, err := MarshalRecord(in)
	require.NoError(t, err)

	out, err := UnmarshalRecord(data)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestUnmarshalRecord_RejectsNonStringValues(t *testing.T) {
	_, err := UnmarshalRecord([]byte(`{"rating":5}`))
	assert.Error(t, err)
}

func TestUnmarshalRecord_RejectsNull(t *testing.T) {
	_, err := UnmarshalRecord([]byte(`null`))
	assert.Error(t, err)
}

func TestCompareKeysRFC8785(t *testing.T) {
	// U+E000 sorts after a surrogate pair in UTF-16 but before it in UTF-8.
	assert.Equal(t, 1, compareKeysRFC8785("\uE000", "\U0001F600"))
	assert.Equal(t, -1, compareKeysRFC8785("a", "b"))
	assert.Equal(t, 0, compareKeysRFC8785("id", "id"))
}
