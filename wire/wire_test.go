package wire

import (
	"testing"

	"github.com/golang/protobuf/proto"
	"github.com/ssau-fiit/waveot/operations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"
)

func TestOperationsRoundTrip(t *testing.T) {
	ops := []*operations.Operation{
		operations.NewInsertText("w", "wl", "b+1", 3, "héllo"),
		operations.NewDeleteText("w", "wl", "b+1", 1, 4),
		operations.NewInsertElement("w", "wl", "b+1", 2, "GADGET", map[string]any{
			"url":  "http://example.com/gadget.xml",
			"tags": []any{"a", "b"},
		}),
		operations.NewDeleteElement("w", "wl", "b+1", 7),
		operations.NewElementDelta("w", "wl", "b+1", 2, operations.Delta{ID: "g1", Fields: map[string]any{"on": true}}),
		operations.NewElementSetPref("w", "wl", "b+1", 2, "color", "red"),
	}

	b, err := EncodeOperations(ops)
	require.NoError(t, err)
	got, err := DecodeOperations(b)
	require.NoError(t, err)
	assert.Equal(t, ops, got)
}

func TestNumbersBecomeFloats(t *testing.T) {
	b, err := Marshal([]map[string]any{{"index": 3, "payload": map[string]any{"n": 1}}})
	require.NoError(t, err)
	records, err := Unmarshal(b)
	require.NoError(t, err)
	assert.Equal(t, []map[string]any{{"index": 3.0, "payload": map[string]any{"n": 1.0}}}, records)
}

func TestEmpty(t *testing.T) {
	b, err := EncodeOperations(nil)
	require.NoError(t, err)
	ops, err := DecodeOperations(b)
	require.NoError(t, err)
	assert.Empty(t, ops)
}

func TestUnmarshalErrors(t *testing.T) {
	_, err := Unmarshal([]byte{0xff, 0xff})
	assert.Error(t, err)

	list, err := structpb.NewList([]any{"not a record"})
	require.NoError(t, err)
	b, err := proto.Marshal(list)
	require.NoError(t, err)
	_, err = Unmarshal(b)
	assert.ErrorIs(t, err, ErrNotRecord)

	b, err = Marshal([]map[string]any{{"kind": "DOCUMENT_DELETE", "payload": "x"}})
	require.NoError(t, err)
	_, err = DecodeOperations(b)
	assert.ErrorIs(t, err, operations.ErrInvalidPayloadShape)
}

func TestMarshalRejectsUnsupportedValues(t *testing.T) {
	_, err := Marshal([]map[string]any{{"payload": make(chan int)}})
	assert.Error(t, err)
}
