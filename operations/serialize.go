package operations

import (
	"fmt"
	"math"
	"reflect"

	"github.com/mitchellh/mapstructure"
)

// record is the wire shape of an operation.
type record struct {
	Kind      string `mapstructure:"kind"`
	WaveID    string `mapstructure:"wave_id"`
	WaveletID string `mapstructure:"wavelet_id"`
	BlipID    string `mapstructure:"blip_id"`
	Index     int    `mapstructure:"index"`
	Payload   any    `mapstructure:"payload"`
}

// Serialize returns o as a plain field map. The payload is copied.
func (o *Operation) Serialize() map[string]any {
	return map[string]any{
		"kind":       string(o.Kind()),
		"wave_id":    o.WaveID,
		"wavelet_id": o.WaveletID,
		"blip_id":    o.BlipID,
		"index":      o.Index,
		"payload":    serializePayload(o.Payload),
	}
}

func serializePayload(p Payload) any {
	switch p := p.(type) {
	case Text:
		return string(p)
	case Count:
		return int(p)
	case Element:
		return map[string]any{"type": p.Type, "properties": cloneMap(p.Properties)}
	case Delta:
		return map[string]any{"id": p.ID, "delta": cloneMap(p.Fields)}
	case Pref:
		return map[string]any{"key": p.Key, "value": cloneValue(p.Value)}
	}
	return nil
}

// Deserialize rebuilds an operation from a field map produced by Serialize or
// decoded from JSON. A missing index means Unset.
func Deserialize(m map[string]any) (*Operation, error) {
	rec := record{Index: Unset}
	if err := decode(m, &rec); err != nil {
		return nil, fmt.Errorf("decode operation: %w: %v", ErrInvalidPayloadShape, err)
	}
	p, err := decodePayload(Kind(rec.Kind), rec.Payload)
	if err != nil {
		return nil, err
	}
	return &Operation{
		WaveID:    rec.WaveID,
		WaveletID: rec.WaveletID,
		BlipID:    rec.BlipID,
		Index:     rec.Index,
		Payload:   p,
	}, nil
}

func decodePayload(kind Kind, raw any) (Payload, error) {
	switch kind {
	case InsertText:
		s, ok := raw.(string)
		if !ok {
			return nil, invalidPayload(kind, raw)
		}
		return Text(s), nil
	case DeleteText:
		var n int
		if raw == nil || decode(raw, &n) != nil {
			return nil, invalidPayload(kind, raw)
		}
		if n < 0 {
			return nil, fmt.Errorf("%s payload %d: %w", kind, n, ErrNegativeLength)
		}
		return Count(n), nil
	case InsertElement:
		var e Element
		if !isMap(raw) || decode(raw, &e) != nil {
			return nil, invalidPayload(kind, raw)
		}
		e.Properties = cloneMap(e.Properties)
		return e, nil
	case DeleteElement:
		if raw != nil {
			return nil, invalidPayload(kind, raw)
		}
		return ElementRemoval{}, nil
	case ElementDelta:
		var d Delta
		if !isMap(raw) || decode(raw, &d) != nil {
			return nil, invalidPayload(kind, raw)
		}
		d.Fields = cloneMap(d.Fields)
		return d, nil
	case ElementSetPref:
		var p Pref
		if !isMap(raw) || decode(raw, &p) != nil {
			return nil, invalidPayload(kind, raw)
		}
		p.Value = cloneValue(p.Value)
		return p, nil
	}
	return nil, fmt.Errorf("%q: %w", kind, ErrUnknownKind)
}

func decode(in, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.DecodeHookFuncType(rejectFractions),
		Result:     out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(in)
}

// rejectFractions keeps integer fields from silently truncating JSON and
// protobuf numbers.
func rejectFractions(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to.Kind() != reflect.Int {
		return data, nil
	}
	var f float64
	switch v := data.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	default:
		return data, nil
	}
	if f != math.Trunc(f) {
		return nil, fmt.Errorf("%v is not an integer", f)
	}
	return data, nil
}

func isMap(v any) bool {
	_, ok := v.(map[string]any)
	return ok
}

func invalidPayload(kind Kind, raw any) error {
	return fmt.Errorf("%s payload %T: %w", kind, raw, ErrInvalidPayloadShape)
}
