package operations

import (
	"fmt"

	"github.com/rs/zerolog"
)

// OpManager keeps the pending operations of one wavelet in commit order and
// transforms foreign operations against them. It is not safe for concurrent
// use.
type OpManager struct {
	waveID     string
	waveletID  string
	operations []*Operation

	observers []subscription
	nextSubID int
	log       zerolog.Logger
}

type Option func(*OpManager)

// WithLogger sets the logger used for merge and split diagnostics.
func WithLogger(l zerolog.Logger) Option {
	return func(m *OpManager) {
		m.log = l
	}
}

func NewOpManager(waveID, waveletID string, opts ...Option) *OpManager {
	m := &OpManager{
		waveID:    waveID,
		waveletID: waveletID,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.log = m.log.With().Str("wave", waveID).Str("wavelet", waveletID).Logger()
	return m
}

func (m *OpManager) WaveID() string    { return m.waveID }
func (m *OpManager) WaveletID() string { return m.waveletID }

func (m *OpManager) IsEmpty() bool {
	return len(m.operations) == 0
}

func (m *OpManager) Len() int {
	return len(m.operations)
}

// Operations returns copies of the pending operations.
func (m *OpManager) Operations() []*Operation {
	ops := make([]*Operation, len(m.operations))
	for i, op := range m.operations {
		ops[i] = op.Clone()
	}
	return ops
}

// Transform rewrites input so it applies on top of the pending operations
// and, in the same pass, rewrites the pending operations so they apply on top
// of input. The returned list may hold several operations when input was
// split, or none when it was cancelled out. input itself is not modified.
//
// All checks happen before anything is mutated: on error neither the manager
// nor its observers see any change.
func (m *OpManager) Transform(input *Operation) ([]*Operation, error) {
	if err := m.checkTransformable(input); err != nil {
		return nil, err
	}
	if input.IsNull() {
		return []*Operation{input.Clone()}, nil
	}
	for i, myop := range m.operations {
		if err := m.checkTransformable(myop); err != nil {
			return nil, fmt.Errorf("pending operation %d: %w", i, err)
		}
	}

	lst := []*Operation{input.Clone()}

	// Positions are re-examined after a removal, so i and j are stepped back
	// whenever the element at that position goes away.
pending:
	for i := 0; i < len(m.operations); i++ {
		myop := m.operations[i]
		for j := 0; j < len(lst); j++ {
			op := lst[j]
			if !op.IsCompatibleTo(myop) {
				continue
			}
			switch {
			case op.IsDelete() && myop.IsDelete():
				removedMine, removedOp := m.transformDeleteDelete(i, op, myop)
				if removedOp {
					lst = append(lst[:j], lst[j+1:]...)
					j--
				}
				if removedMine {
					i--
					continue pending
				}

			case op.IsDelete() && myop.IsInsert():
				if split := m.transformDeleteInsert(i, op, myop); split != nil {
					lst = append(lst[:j+1], append([]*Operation{split}, lst[j+1:]...)...)
				}

			case op.IsInsert() && myop.IsDelete():
				m.transformInsertDelete(i, op, myop)

			case op.IsInsert() && myop.IsInsert():
				if op.Index <= myop.Index {
					myop.Index += op.Length()
					m.changed(i)
				} else {
					op.Index += myop.Length()
				}

			case op.IsChange() && myop.IsDelete():
				if op.Index > myop.Index {
					if op.Index <= myop.Index+myop.Length() {
						op.Index = myop.Index
					} else {
						op.Index -= myop.Length()
					}
				}

			case op.IsChange() && myop.IsInsert():
				if op.Index >= myop.Index {
					op.Index += myop.Length()
				}

			case op.IsDelete() && myop.IsChange():
				if op.Index < myop.Index {
					if myop.Index <= op.Index+op.Length() {
						myop.Index = op.Index
					} else {
						myop.Index -= op.Length()
					}
					m.changed(i)
				}

			case op.IsInsert() && myop.IsChange():
				if op.Index <= myop.Index {
					myop.Index += op.Length()
					m.changed(i)
				}
			}
		}
	}

	out := lst[:0]
	for _, op := range lst {
		if !op.IsNull() {
			out = append(out, op)
		}
	}
	return out, nil
}

func (m *OpManager) checkTransformable(op *Operation) error {
	if op.WaveID != m.waveID || op.WaveletID != m.waveletID {
		return fmt.Errorf("%s/%s against %s/%s: %w", op.WaveID, op.WaveletID, m.waveID, m.waveletID, ErrScopeMismatch)
	}
	return op.Validate()
}

// transformDeleteDelete reconciles two deletions at position i. It reports
// whether myop was removed from the manager and whether op is now empty and
// must leave the working list.
func (m *OpManager) transformDeleteDelete(i int, op, myop *Operation) (removedMine, removedOp bool) {
	if op.Index < myop.Index {
		end := op.Index + op.Length()
		switch {
		case end <= myop.Index:
			myop.Index -= op.Length()
			m.changed(i)
		case end < myop.Index+myop.Length():
			myop.resize(myop.Length() - (end - myop.Index))
			op.resize(myop.Index - op.Index)
			myop.Index = op.Index
			m.changed(i)
		default:
			// op covers myop entirely.
			op.resize(op.Length() - myop.Length())
			m.remove(i, i)
			return true, false
		}
		return false, false
	}

	end := myop.Index + myop.Length()
	if op.Index >= end {
		op.Index -= myop.Length()
		return false, false
	}
	overlap := min(end, op.Index+op.Length()) - op.Index
	removedOp = overlap == op.Length()
	if !removedOp {
		op.resize(op.Length() - overlap)
		op.Index = myop.Index
	}
	// Element deletions cannot shrink, they are either kept or dropped.
	if rest := myop.Length() - overlap; rest > 0 {
		myop.resize(rest)
		m.changed(i)
		return false, removedOp
	}
	m.remove(i, i)
	return true, removedOp
}

// transformDeleteInsert handles an incoming deletion against a pending
// insertion. When the deletion straddles the insertion point it is cut in two
// and the part behind the insertion point is returned.
func (m *OpManager) transformDeleteInsert(i int, op, myop *Operation) *Operation {
	if op.Index >= myop.Index {
		op.Index += myop.Length()
		return nil
	}
	if op.Index+op.Length() <= myop.Index {
		myop.Index -= op.Length()
		m.changed(i)
		return nil
	}
	split := op.Clone()
	op.resize(myop.Index - op.Index)
	split.resize(split.Length() - op.Length())
	myop.Index -= op.Length()
	m.changed(i)
	m.log.Debug().Stringer("op", op).Stringer("split", split).Msg("split incoming delete")
	return split
}

// transformInsertDelete handles an incoming insertion against a pending
// deletion. An insertion inside the deleted range cuts the pending deletion in
// two; the second half is placed right after it in the manager.
func (m *OpManager) transformInsertDelete(i int, op, myop *Operation) {
	switch {
	case op.Index <= myop.Index:
		myop.Index += op.Length()
		m.changed(i)
	case op.Index >= myop.Index+myop.Length():
		op.Index -= myop.Length()
	default:
		split := myop.Clone()
		myop.resize(op.Index - myop.Index)
		m.changed(i)
		split.resize(split.Length() - myop.Length())
		m.insert(i+1, split)
		op.Index = myop.Index
		m.log.Debug().Stringer("pending", myop).Stringer("split", split).Msg("split pending delete")
	}
}

// Fetch removes and returns all pending operations.
func (m *OpManager) Fetch() []*Operation {
	ops := append([]*Operation(nil), m.operations...)
	if len(ops) > 0 {
		m.remove(0, len(ops)-1)
	}
	m.operations = nil
	return ops
}

// Put appends ops as they are.
func (m *OpManager) Put(ops []*Operation) {
	if len(ops) == 0 {
		return
	}
	m.insert(len(m.operations), ops...)
}

// Serialize returns the pending operations as field maps. With drain set the
// manager is emptied as by Fetch.
func (m *OpManager) Serialize(drain bool) []map[string]any {
	ops := m.operations
	if drain {
		ops = m.Fetch()
	}
	out := make([]map[string]any, len(ops))
	for i, op := range ops {
		out[i] = op.Serialize()
	}
	return out
}

// Deserialize decodes records and appends them. Nothing is appended if any
// record is invalid.
func (m *OpManager) Deserialize(records []map[string]any) error {
	ops := make([]*Operation, 0, len(records))
	for i, rec := range records {
		op, err := Deserialize(rec)
		if err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
		ops = append(ops, op)
	}
	m.Put(ops)
	return nil
}
