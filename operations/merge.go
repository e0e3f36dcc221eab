package operations

import "fmt"

// DocumentInsert requests to insert content into a blip at index.
func (m *OpManager) DocumentInsert(blipID string, index int, content string) error {
	return m.add(NewInsertText(m.waveID, m.waveletID, blipID, index, content))
}

// DocumentDelete requests to delete the range [start, end) of a blip.
func (m *OpManager) DocumentDelete(blipID string, start, end int) error {
	if end < start {
		return fmt.Errorf("delete [%d, %d): %w", start, end, ErrNegativeLength)
	}
	return m.add(NewDeleteText(m.waveID, m.waveletID, blipID, start, end-start))
}

// DocumentElementInsert requests to insert an element at index.
func (m *OpManager) DocumentElementInsert(blipID string, index int, elementType string, properties map[string]any) error {
	return m.add(NewInsertElement(m.waveID, m.waveletID, blipID, index, elementType, cloneMap(properties)))
}

// DocumentElementDelete requests to delete the element at index.
func (m *OpManager) DocumentElementDelete(blipID string, index int) error {
	return m.add(NewDeleteElement(m.waveID, m.waveletID, blipID, index))
}

// DocumentElementDelta requests to apply delta to the element at index.
func (m *OpManager) DocumentElementDelta(blipID string, index int, delta Delta) error {
	delta.Fields = cloneMap(delta.Fields)
	return m.add(NewElementDelta(m.waveID, m.waveletID, blipID, index, delta))
}

// DocumentElementSetpref requests to set a UserPref of the element at index.
func (m *OpManager) DocumentElementSetpref(blipID string, index int, key string, value any) error {
	return m.add(NewElementSetPref(m.waveID, m.waveletID, blipID, index, key, cloneValue(value)))
}

func (m *OpManager) add(newop *Operation) error {
	if newop.Index < 0 {
		return fmt.Errorf("%v: %w", newop, ErrUnpositionedOperation)
	}
	if newop.IsNull() {
		return nil
	}
	m.merge(newop)
	return nil
}

// merge folds newop into a pending operation when that is safe and appends it
// otherwise. Apart from element deltas only the last pending operation is
// considered.
func (m *OpManager) merge(newop *Operation) {
	if d, ok := newop.Payload.(Delta); ok {
		for i, op := range m.operations {
			pd, ok := op.Payload.(Delta)
			if !ok || pd.ID != d.ID || !op.IsCompatibleTo(newop) {
				continue
			}
			if pd.Fields == nil {
				pd.Fields = make(map[string]any, len(d.Fields))
			}
			for k, v := range d.Fields {
				pd.Fields[k] = v
			}
			op.Payload = pd
			m.changed(i)
			return
		}
	}

	if i := len(m.operations) - 1; i >= 0 && m.operations[i].IsCompatibleTo(newop) {
		op := m.operations[i]
		switch p := op.Payload.(type) {
		case Text:
			switch np := newop.Payload.(type) {
			case Text:
				if m.mergeInsertInsert(i, op, p, newop, np) {
					return
				}
			case Count:
				if m.mergeDeleteInsert(i, op, p, newop, np) {
					return
				}
			}
		case Count:
			if np, ok := newop.Payload.(Count); ok && m.mergeDeleteDelete(i, op, p, newop, np) {
				return
			}
		}
	}

	m.log.Debug().Stringer("op", newop).Int("at", len(m.operations)).Msg("append operation")
	m.insert(len(m.operations), newop)
}

func (m *OpManager) mergeInsertInsert(i int, op *Operation, text Text, newop *Operation, content Text) bool {
	end := op.Index + text.length()
	switch {
	case newop.Index == op.Index:
		op.Payload = content + text
	case newop.Index == end:
		op.Payload = text + content
	case op.Index < newop.Index && newop.Index < end:
		at := newop.Index - op.Index
		spliced, ok := spliceText(string(text), at, at, string(content))
		if !ok {
			return false
		}
		op.Payload = Text(spliced)
	default:
		return false
	}
	m.changed(i)
	return true
}

// mergeDeleteInsert lets a deletion eat into the pending insertion it
// overlaps. It reports whether the deletion was used up; otherwise newop is
// left holding the remainder. Cuts through a surrogate pair are not merged.
func (m *OpManager) mergeDeleteInsert(i int, op *Operation, text Text, newop *Operation, count Count) bool {
	length := text.length()
	end := op.Index + length
	var eaten int
	switch {
	case newop.Index == op.Index:
		eaten = min(int(count), length)
		if eaten == length {
			m.remove(i, i)
			break
		}
		rest, ok := spliceText(string(text), 0, eaten, "")
		if !ok {
			return false
		}
		op.Payload = Text(rest)
		m.changed(i)
	case op.Index < newop.Index && newop.Index < end:
		at := newop.Index - op.Index
		eaten = min(int(count), end-newop.Index)
		rest, ok := spliceText(string(text), at, at+eaten, "")
		if !ok {
			return false
		}
		op.Payload = Text(rest)
		m.changed(i)
	default:
		return false
	}
	newop.resize(int(count) - eaten)
	return newop.IsNull()
}

func (m *OpManager) mergeDeleteDelete(i int, op *Operation, pending Count, newop *Operation, count Count) bool {
	switch newop.Index {
	case op.Index:
	case op.Index - int(count):
		op.Index = newop.Index
	default:
		return false
	}
	op.Payload = pending + count
	m.changed(i)
	return true
}
