package class

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const erc721Definition = `{
  "program": {"builtins": []},
  "entry_points_by_type": {},
  "abi": [
    {"type": "struct", "name": "Uint256", "size": 2, "members": [
      {"name": "low", "type": "felt", "offset": 0},
      {"name": "high", "type": "felt", "offset": 1}
    ]},
    {"type": "event", "name": "Transfer", "keys": [], "data": [
      {"name": "from_", "type": "felt"},
      {"name": "to", "type": "felt"},
      {"name": "_tokenId", "type": "Uint256"}
    ]},
    {"type": "constructor", "name": "constructor", "inputs": [{"name": "owner", "type": "felt"}], "outputs": []},
    {"type": "function", "name": "ownerOf", "inputs": [{"name": "tokenId", "type": "Uint256"}],
     "outputs": [{"name": "owner", "type": "felt"}], "stateMutability": "view"},
    {"type": "l1_handler", "name": "deposit", "inputs": []}
  ]
}`

func TestParseClass(t *testing.T) {
	class, err := ParseClass([]byte(erc721Definition))
	require.NoError(t, err)
	require.True(t, class.HasABI())
	require.Len(t, class.ABI, 5)

	st, ok := class.ABI[0].(*StructEntry)
	require.True(t, ok)
	assert.Equal(t, "Uint256", st.Name)
	assert.Equal(t, uint64(2), st.Size)
	assert.Equal(t, []StructMember{{Name: "low", Type: "felt", Offset: 0}, {Name: "high", Type: "felt", Offset: 1}}, st.Members)

	ev, ok := class.ABI[1].(*EventEntry)
	require.True(t, ok)
	assert.Equal(t, "Transfer", ev.Name)
	assert.NotNil(t, ev.Keys)
	assert.Empty(t, ev.Keys)
	require.Len(t, ev.Data, 3)
	assert.Equal(t, TypedParameter{Name: "_tokenId", Type: "Uint256"}, ev.Data[2])
	assert.Nil(t, ev.Inputs)

	ctor, ok := class.ABI[2].(*FunctionEntry)
	require.True(t, ok)
	assert.Equal(t, "constructor", ctor.Type)
	assert.Nil(t, ctor.StateMutability)

	fn, ok := class.ABI[3].(*FunctionEntry)
	require.True(t, ok)
	require.NotNil(t, fn.StateMutability)
	assert.Equal(t, "view", *fn.StateMutability)

	handler, ok := class.ABI[4].(*FunctionEntry)
	require.True(t, ok)
	assert.Equal(t, "l1_handler", handler.Type)
	assert.Equal(t, "deposit", handler.EntryName())

	transfer, ok := class.Event("Transfer")
	require.True(t, ok)
	assert.Same(t, ev, transfer)
	_, ok = class.Event("Approval")
	assert.False(t, ok)
}

func TestParseClassWithoutABI(t *testing.T) {
	class, err := ParseClass([]byte(`{"program": {}}`))
	require.NoError(t, err)
	assert.False(t, class.HasABI())
}

func TestParseClassABINotArray(t *testing.T) {
	for _, doc := range []string{
		`{"abi": "not an array"}`,
		`{"abi": null}`,
		`{"abi": {"type": "event"}}`,
	} {
		class, err := ParseClass([]byte(doc))
		require.NoError(t, err, doc)
		assert.False(t, class.HasABI(), doc)
	}
}

func TestParseClassEmptyABI(t *testing.T) {
	class, err := ParseClass([]byte(`{"abi": []}`))
	require.NoError(t, err)
	assert.True(t, class.HasABI())
	assert.Empty(t, class.ABI)
}

func TestParseClassInvalidDocument(t *testing.T) {
	for _, doc := range []string{`[{"abi": []}]`, `null`, `"abi"`, `{not json`, ``} {
		_, err := ParseClass([]byte(doc))
		assert.ErrorIs(t, err, ErrInvalidClassDefinition, doc)
	}
}

func TestParseClassUnknownFieldDropsABI(t *testing.T) {
	doc := `{"abi": [
		{"type": "event", "name": "Transfer", "data": []},
		{"type": "event", "name": "Approval", "data": [], "anonymous": false}
	]}`
	class, err := ParseClass([]byte(doc))
	require.NoError(t, err)
	assert.False(t, class.HasABI())
}

func TestParseEntryEvent(t *testing.T) {
	entry, err := ParseEntry([]byte(`{"type":"event","name":"Transfer","data":[{"name":"from_","type":"felt"}]}`))
	require.NoError(t, err)
	ev, ok := entry.(*EventEntry)
	require.True(t, ok)
	assert.Equal(t, []TypedParameter{{Name: "from_", Type: "felt"}}, ev.Data)
}

func TestParseEntryRejects(t *testing.T) {
	cases := map[string]string{
		"unknown field":          `{"type":"event","name":"Transfer","data":[],"indexed":true}`,
		"unknown type":           `{"type":"enum","name":"Kind"}`,
		"missing name":           `{"type":"function"}`,
		"null name":              `{"type":"function","name":null}`,
		"event with size":        `{"type":"event","name":"Transfer","size":2}`,
		"struct missing members": `{"type":"struct","name":"Uint256","size":2}`,
		"struct negative size":   `{"type":"struct","name":"Uint256","size":-1,"members":[]}`,
		"param extra field":      `{"type":"event","name":"Transfer","data":[{"name":"a","type":"felt","kind":"x"}]}`,
		"param missing type":     `{"type":"event","name":"Transfer","data":[{"name":"a"}]}`,
		"member missing offset":  `{"type":"struct","name":"S","size":1,"members":[{"name":"a","type":"felt"}]}`,
		"function with keys":     `{"type":"function","name":"f","keys":[]}`,
		"not an object":          `["event"]`,
	}
	for name, raw := range cases {
		_, err := ParseEntry([]byte(raw))
		assert.Error(t, err, name)
	}
}

func TestParseEntryTypeSelectsShape(t *testing.T) {
	// Both function and event allow inputs/outputs; the type value decides.
	entry, err := ParseEntry([]byte(`{"type":"event","name":"Ping","inputs":[],"outputs":[]}`))
	require.NoError(t, err)
	_, ok := entry.(*EventEntry)
	assert.True(t, ok)

	entry, err = ParseEntry([]byte(`{"type":"function","name":"ping","inputs":[],"outputs":[]}`))
	require.NoError(t, err)
	_, ok = entry.(*FunctionEntry)
	assert.True(t, ok)
}

func TestEntryMarshalJSON(t *testing.T) {
	entries, err := ParseABI([]byte(`[
		{"type":"event","name":"Transfer","keys":[],"data":[{"name":"to","type":"felt"}]},
		{"type":"function","name":"ownerOf","stateMutability":"view"},
		{"type":"struct","name":"Uint256","size":2,"members":[{"name":"low","type":"felt","offset":0}]}
	]`))
	require.NoError(t, err)

	data, err := json.Marshal(entries)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"type":"event","name":"Transfer","keys":[],"data":[{"name":"to","type":"felt"}]},
		{"type":"function","name":"ownerOf","stateMutability":"view"},
		{"type":"struct","name":"Uint256","size":2,"members":[{"name":"low","type":"felt","offset":0}]}
	]`, string(data))
}

func TestDecompress(t *testing.T) {
	blob, err := Compress([]byte(erc721Definition))
	require.NoError(t, err)

	doc, err := Decompress(blob)
	require.NoError(t, err)
	assert.Equal(t, erc721Definition, string(doc))

	_, err = Decompress([]byte("definitely not zstd"))
	assert.ErrorIs(t, err, ErrDecompression)
}
