package operations

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mutate(t *testing.T, m *OpManager, op *Operation) {
	t.Helper()
	var err error
	switch p := op.Payload.(type) {
	case Text:
		err = m.DocumentInsert(op.BlipID, op.Index, string(p))
	case Count:
		err = m.DocumentDelete(op.BlipID, op.Index, op.Index+int(p))
	default:
		t.Fatalf("unexpected %v", op)
	}
	require.NoError(t, err)
}

func TestMergeAdjacentInserts(t *testing.T) {
	m, rec := newManager(t)
	require.NoError(t, m.DocumentInsert(blip, 0, "a"))
	require.NoError(t, m.DocumentInsert(blip, 1, "b"))

	assert.Equal(t, []*Operation{ins(0, "ab")}, m.Operations())
	assert.Equal(t, []string{
		"before inserted 0-0",
		"after inserted 0-0",
		"changed 0",
	}, rec.events)
}

func TestMerge(t *testing.T) {
	tests := []struct {
		name  string
		steps []*Operation
		want  []*Operation
	}{
		{"prepend", []*Operation{ins(0, "b"), ins(0, "a")}, []*Operation{ins(0, "ab")}},
		{"splice", []*Operation{ins(0, "hello"), ins(2, "X")}, []*Operation{ins(0, "heXllo")}},
		{"apart", []*Operation{ins(0, "a"), ins(5, "b")}, []*Operation{ins(0, "a"), ins(5, "b")}},
		{"delete inside insert", []*Operation{ins(0, "hello"), del(1, 2)}, []*Operation{ins(0, "hlo")}},
		{"delete insert head", []*Operation{ins(2, "hello"), del(2, 2)}, []*Operation{ins(2, "llo")}},
		{"delete whole insert and more", []*Operation{ins(2, "hi"), del(2, 4)}, []*Operation{del(2, 2)}},
		{"delete insert tail and more", []*Operation{ins(0, "hello"), del(3, 5)}, []*Operation{ins(0, "hel"), del(3, 3)}},
		{"delete before insert", []*Operation{ins(4, "hello"), del(1, 2)}, []*Operation{ins(4, "hello"), del(1, 2)}},
		{"forward delete", []*Operation{del(5, 2), del(5, 3)}, []*Operation{del(5, 5)}},
		{"backspace", []*Operation{del(5, 1), del(4, 1)}, []*Operation{del(4, 2)}},
		{"unrelated deletes", []*Operation{del(5, 1), del(2, 1)}, []*Operation{del(5, 1), del(2, 1)}},
		{
			"insert after delete",
			[]*Operation{ins(0, "ab"), ins(1, "X"), ins(4, "Y"), del(0, 1)},
			[]*Operation{ins(0, "aXb"), ins(4, "Y"), del(0, 1)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewOpManager(wave, wavelet)
			for _, op := range tt.steps {
				mutate(t, m, op.Clone())
			}
			assert.Equal(t, tt.want, m.Operations())

			base := cells("abcdefghijkl")
			unmerged, merged := base, base
			for _, op := range tt.steps {
				unmerged = apply(t, unmerged, op)
			}
			for _, op := range m.Fetch() {
				merged = apply(t, merged, op)
			}
			assert.Equal(t, strings.Join(unmerged, ""), strings.Join(merged, ""))
		})
	}
}

func TestMergeDeleteRemovesInsert(t *testing.T) {
	m, rec := newManager(t)
	require.NoError(t, m.DocumentInsert(blip, 2, "hi"))
	require.NoError(t, m.DocumentDelete(blip, 2, 6))

	assert.Equal(t, []*Operation{del(2, 2)}, m.Operations())
	assert.Equal(t, []string{
		"before inserted 0-0",
		"after inserted 0-0",
		"before removed 0-0",
		"after removed 0-0",
		"before inserted 0-0",
		"after inserted 0-0",
	}, rec.events)
}

func TestMergeElementDelta(t *testing.T) {
	m, rec := newManager(t)
	require.NoError(t, m.DocumentElementDelta(blip, 3, Delta{ID: "g1", Fields: map[string]any{"a": 1}}))
	require.NoError(t, m.DocumentInsert(blip, 10, "x"))
	require.NoError(t, m.DocumentElementDelta(blip, 3, Delta{ID: "g1", Fields: map[string]any{"a": 2, "b": 3}}))
	require.NoError(t, m.DocumentElementDelta(blip, 3, Delta{ID: "g2", Fields: map[string]any{"c": 4}}))
	require.NoError(t, m.DocumentElementDelta("b+2", 3, Delta{ID: "g1", Fields: map[string]any{"d": 5}}))

	ops := m.Operations()
	require.Len(t, ops, 4)
	assert.Equal(t, Delta{ID: "g1", Fields: map[string]any{"a": 2, "b": 3}}, ops[0].Payload)
	assert.Equal(t, Delta{ID: "g2", Fields: map[string]any{"c": 4}}, ops[2].Payload)
	assert.Equal(t, "b+2", ops[3].BlipID)
	assert.Contains(t, rec.events, "changed 0")
}

func TestMergeKeepsElementsApart(t *testing.T) {
	m := NewOpManager(wave, wavelet)
	require.NoError(t, m.DocumentElementInsert(blip, 0, "IMAGE", nil))
	require.NoError(t, m.DocumentElementInsert(blip, 1, "IMAGE", nil))
	require.NoError(t, m.DocumentElementDelete(blip, 1))
	require.NoError(t, m.DocumentDelete(blip, 1, 2))
	require.NoError(t, m.DocumentElementSetpref(blip, 0, "k", "v"))
	require.NoError(t, m.DocumentElementSetpref(blip, 0, "k", "w"))
	assert.Equal(t, 6, m.Len())
}

func TestMergeAcrossBlips(t *testing.T) {
	m := NewOpManager(wave, wavelet)
	require.NoError(t, m.DocumentInsert("b+1", 0, "a"))
	require.NoError(t, m.DocumentInsert("b+2", 1, "b"))
	require.NoError(t, m.DocumentDelete("b+1", 0, 1))
	ops := m.Operations()
	require.Len(t, ops, 3)
	assert.Equal(t, "b+2", ops[1].BlipID)
}

func TestMutatorsCopyArguments(t *testing.T) {
	m := NewOpManager(wave, wavelet)
	props := map[string]any{"url": "a.png"}
	fields := map[string]any{"state": "on"}
	value := []any{"x"}
	require.NoError(t, m.DocumentElementInsert(blip, 0, "IMAGE", props))
	require.NoError(t, m.DocumentElementDelta(blip, 0, Delta{ID: "g", Fields: fields}))
	require.NoError(t, m.DocumentElementSetpref(blip, 0, "k", value))

	props["url"] = "b.png"
	fields["state"] = "off"
	value[0] = "y"

	ops := m.Operations()
	assert.Equal(t, "a.png", ops[0].Payload.(Element).Properties["url"])
	assert.Equal(t, "on", ops[1].Payload.(Delta).Fields["state"])
	assert.Equal(t, []any{"x"}, ops[2].Payload.(Pref).Value)
}

func TestMutatorErrors(t *testing.T) {
	m, rec := newManager(t)
	assert.ErrorIs(t, m.DocumentDelete(blip, 5, 3), ErrNegativeLength)
	assert.ErrorIs(t, m.DocumentInsert(blip, Unset, "a"), ErrUnpositionedOperation)
	assert.ErrorIs(t, m.DocumentElementDelete(blip, -4), ErrUnpositionedOperation)

	require.NoError(t, m.DocumentInsert(blip, 0, ""))
	require.NoError(t, m.DocumentDelete(blip, 3, 3))

	assert.True(t, m.IsEmpty())
	assert.Empty(t, rec.events)
}

func TestMergeKeepsSurrogatePairsWhole(t *testing.T) {
	tests := []struct {
		name  string
		steps []*Operation
		want  []*Operation
	}{
		{"insert inside pair", []*Operation{ins(0, "a😀b"), ins(2, "X")}, []*Operation{ins(0, "a😀b"), ins(2, "X")}},
		{"insert after pair", []*Operation{ins(0, "a😀b"), ins(3, "X")}, []*Operation{ins(0, "a😀Xb")}},
		{"delete half pair", []*Operation{ins(0, "a😀b"), del(2, 1)}, []*Operation{ins(0, "a😀b"), del(2, 1)}},
		{"delete whole pair", []*Operation{ins(0, "a😀b"), del(1, 2)}, []*Operation{ins(0, "ab")}},
		{"delete head half pair", []*Operation{ins(0, "😀b"), del(0, 1)}, []*Operation{ins(0, "😀b"), del(0, 1)}},
		{"delete head pair", []*Operation{ins(0, "😀b"), del(0, 2)}, []*Operation{ins(0, "b")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewOpManager(wave, wavelet)
			for _, op := range tt.steps {
				mutate(t, m, op.Clone())
			}
			assert.Equal(t, tt.want, m.Operations())
		})
	}
}

func TestSpliceText(t *testing.T) {
	s, ok := spliceText("a😀b", 3, 3, "X")
	assert.True(t, ok)
	assert.Equal(t, "a😀Xb", s)

	s, ok = spliceText("a😀b", 2, 2, "X")
	assert.False(t, ok)
	assert.Equal(t, "a😀b", s)

	_, ok = spliceText("a😀b", 1, 2, "")
	assert.False(t, ok)
}
