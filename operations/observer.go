package operations

// Observer receives structural change notifications from an OpManager.
// Ranges are inclusive positions in the manager's sequence. Notifications are
// delivered synchronously; an observer must not mutate the manager from
// within a callback.
type Observer interface {
	OperationChanged(index int)
	BeforeOperationsRemoved(start, end int)
	AfterOperationsRemoved(start, end int)
	BeforeOperationsInserted(start, end int)
	AfterOperationsInserted(start, end int)
}

// ObserverFuncs adapts optional callbacks to the Observer interface.
type ObserverFuncs struct {
	OnOperationChanged         func(index int)
	OnBeforeOperationsRemoved  func(start, end int)
	OnAfterOperationsRemoved   func(start, end int)
	OnBeforeOperationsInserted func(start, end int)
	OnAfterOperationsInserted  func(start, end int)
}

func (f ObserverFuncs) OperationChanged(index int) {
	if f.OnOperationChanged != nil {
		f.OnOperationChanged(index)
	}
}

func (f ObserverFuncs) BeforeOperationsRemoved(start, end int) {
	if f.OnBeforeOperationsRemoved != nil {
		f.OnBeforeOperationsRemoved(start, end)
	}
}

func (f ObserverFuncs) AfterOperationsRemoved(start, end int) {
	if f.OnAfterOperationsRemoved != nil {
		f.OnAfterOperationsRemoved(start, end)
	}
}

func (f ObserverFuncs) BeforeOperationsInserted(start, end int) {
	if f.OnBeforeOperationsInserted != nil {
		f.OnBeforeOperationsInserted(start, end)
	}
}

func (f ObserverFuncs) AfterOperationsInserted(start, end int) {
	if f.OnAfterOperationsInserted != nil {
		f.OnAfterOperationsInserted(start, end)
	}
}

type subscription struct {
	id       int
	observer Observer
}

// Subscribe registers o and returns a function that removes it again.
func (m *OpManager) Subscribe(o Observer) (unsubscribe func()) {
	m.nextSubID++
	id := m.nextSubID
	m.observers = append(m.observers, subscription{id, o})
	return func() {
		for i, s := range m.observers {
			if s.id == id {
				m.observers = append(m.observers[:i], m.observers[i+1:]...)
				return
			}
		}
	}
}

func (m *OpManager) changed(i int) {
	for _, s := range m.observers {
		s.observer.OperationChanged(i)
	}
}

// remove deletes the operations [start, end] and notifies around it.
func (m *OpManager) remove(start, end int) {
	for _, s := range m.observers {
		s.observer.BeforeOperationsRemoved(start, end)
	}
	m.operations = append(m.operations[:start], m.operations[end+1:]...)
	for _, s := range m.observers {
		s.observer.AfterOperationsRemoved(start, end)
	}
}

// insert splices ops in at position at and notifies around it.
func (m *OpManager) insert(at int, ops ...*Operation) {
	start, end := at, at+len(ops)-1
	for _, s := range m.observers {
		s.observer.BeforeOperationsInserted(start, end)
	}
	tail := append([]*Operation(nil), m.operations[at:]...)
	m.operations = append(append(m.operations[:at], ops...), tail...)
	for _, s := range m.observers {
		s.observer.AfterOperationsInserted(start, end)
	}
}
