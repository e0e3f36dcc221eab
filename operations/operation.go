package operations

import (
	"fmt"
	"strings"

	"github.com/sanity-io/litter"
)

// Kind identifies what an operation does. Values are the robots API names.
type Kind string

const (
	InsertText     Kind = "DOCUMENT_INSERT"
	DeleteText     Kind = "DOCUMENT_DELETE"
	InsertElement  Kind = "DOCUMENT_ELEMENT_INSERT"
	DeleteElement  Kind = "DOCUMENT_ELEMENT_DELETE"
	ElementDelta   Kind = "DOCUMENT_ELEMENT_DELTA"
	ElementSetPref Kind = "DOCUMENT_ELEMENT_SETPREF"
)

// Unset marks an operation that has not been positioned yet.
const Unset = -1

// Payload is the kind-specific part of an operation. The concrete type
// determines the operation's Kind.
type Payload interface {
	Kind() Kind
	clone() Payload
	length() int
}

// Text is the content of an InsertText operation.
type Text string

// Count is the number of code units or elements removed by a DeleteText operation.
type Count int

// Element describes an element created by InsertElement.
type Element struct {
	Type       string         `mapstructure:"type"`
	Properties map[string]any `mapstructure:"properties"`
}

// ElementRemoval is the empty payload of DeleteElement.
type ElementRemoval struct{}

// Delta is a set of field updates for the element with the given id. It is
// merged, never inspected.
type Delta struct {
	ID     string         `mapstructure:"id"`
	Fields map[string]any `mapstructure:"delta"`
}

// Pref sets one UserPref of an element.
type Pref struct {
	Key   string `mapstructure:"key"`
	Value any    `mapstructure:"value"`
}

func (Text) Kind() Kind           { return InsertText }
func (Count) Kind() Kind          { return DeleteText }
func (Element) Kind() Kind        { return InsertElement }
func (ElementRemoval) Kind() Kind { return DeleteElement }
func (Delta) Kind() Kind          { return ElementDelta }
func (Pref) Kind() Kind           { return ElementSetPref }

func (p Text) clone() Payload           { return p }
func (p Count) clone() Payload          { return p }
func (p ElementRemoval) clone() Payload { return p }

func (p Element) clone() Payload {
	return Element{Type: p.Type, Properties: cloneMap(p.Properties)}
}

func (p Delta) clone() Payload {
	return Delta{ID: p.ID, Fields: cloneMap(p.Fields)}
}

func (p Pref) clone() Payload {
	return Pref{Key: p.Key, Value: cloneValue(p.Value)}
}

func (p Text) length() int         { return textLength(string(p)) }
func (p Count) length() int        { return int(p) }
func (Element) length() int        { return 1 }
func (ElementRemoval) length() int { return 1 }
func (Delta) length() int          { return 0 }
func (Pref) length() int           { return 0 }

// Operation is a single edit of a blip inside a wavelet.
type Operation struct {
	WaveID    string
	WaveletID string
	BlipID    string
	Index     int
	Payload   Payload
}

func NewInsertText(waveID, waveletID, blipID string, index int, content string) *Operation {
	return &Operation{waveID, waveletID, blipID, index, Text(content)}
}

func NewDeleteText(waveID, waveletID, blipID string, index, count int) *Operation {
	return &Operation{waveID, waveletID, blipID, index, Count(count)}
}

func NewInsertElement(waveID, waveletID, blipID string, index int, elementType string, properties map[string]any) *Operation {
	return &Operation{waveID, waveletID, blipID, index, Element{Type: elementType, Properties: properties}}
}

func NewDeleteElement(waveID, waveletID, blipID string, index int) *Operation {
	return &Operation{waveID, waveletID, blipID, index, ElementRemoval{}}
}

func NewElementDelta(waveID, waveletID, blipID string, index int, delta Delta) *Operation {
	return &Operation{waveID, waveletID, blipID, index, delta}
}

func NewElementSetPref(waveID, waveletID, blipID string, index int, key string, value any) *Operation {
	return &Operation{waveID, waveletID, blipID, index, Pref{Key: key, Value: value}}
}

// Kind returns the kind implied by the payload.
func (o *Operation) Kind() Kind {
	return o.Payload.Kind()
}

// Clone returns a deep copy of o.
func (o *Operation) Clone() *Operation {
	c := *o
	c.Payload = o.Payload.clone()
	return &c
}

// Length is the distance a concurrent operation's index must move to include
// the effect of o.
func (o *Operation) Length() int {
	return o.Payload.length()
}

// IsNull reports whether o is an empty insert or a zero-length delete.
// Element and change operations are never null.
func (o *Operation) IsNull() bool {
	switch o.Payload.(type) {
	case Text, Count:
		return o.Length() == 0
	}
	return false
}

func (o *Operation) IsInsert() bool {
	k := o.Kind()
	return k == InsertText || k == InsertElement
}

func (o *Operation) IsDelete() bool {
	k := o.Kind()
	return k == DeleteText || k == DeleteElement
}

func (o *Operation) IsChange() bool {
	k := o.Kind()
	return k == ElementDelta || k == ElementSetPref
}

// IsCompatibleTo reports whether o and other may influence each other, i.e.
// they target the same blip of the same wavelet.
func (o *Operation) IsCompatibleTo(other *Operation) bool {
	return o.WaveID == other.WaveID &&
		o.WaveletID == other.WaveletID &&
		o.BlipID == other.BlipID
}

// Validate reports whether o can take part in a transform: it must be
// positioned and must not have a negative length.
func (o *Operation) Validate() error {
	if o.Index < 0 {
		return fmt.Errorf("%v: %w", o, ErrUnpositionedOperation)
	}
	if o.Length() < 0 {
		return fmt.Errorf("%v: %w", o, ErrNegativeLength)
	}
	return nil
}

// Resize sets the deleted count of a DeleteText operation. It has no effect on
// other kinds.
func (o *Operation) Resize(n int) error {
	if n < 0 {
		return fmt.Errorf("resize to %d: %w", n, ErrNegativeLength)
	}
	o.resize(n)
	return nil
}

func (o *Operation) resize(n int) {
	if _, ok := o.Payload.(Count); ok {
		o.Payload = Count(n)
	}
}

func (o *Operation) String() string {
	dump := litter.Options{Compact: true, StripPackageNames: true}
	return fmt.Sprintf("%s(%q,%d,%s)", strings.ToLower(string(o.Kind())), o.BlipID, o.Index, dump.Sdump(o.Payload))
}
