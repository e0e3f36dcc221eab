// Package wire encodes operation records as a protobuf ListValue so queues
// can be stored and shipped as bytes. Numbers come back as float64, which
// operations.Deserialize accepts.
package wire

import (
	"errors"
	"fmt"

	"github.com/golang/protobuf/proto"
	"github.com/ssau-fiit/waveot/operations"
	"google.golang.org/protobuf/types/known/structpb"
)

var ErrNotRecord = errors.New("list entry is not a record")

func Marshal(records []map[string]any) ([]byte, error) {
	items := make([]any, len(records))
	for i, rec := range records {
		items[i] = rec
	}
	list, err := structpb.NewList(items)
	if err != nil {
		return nil, fmt.Errorf("build list: %w", err)
	}
	return proto.Marshal(list)
}

func Unmarshal(b []byte) ([]map[string]any, error) {
	list := &structpb.ListValue{}
	if err := proto.Unmarshal(b, list); err != nil {
		return nil, fmt.Errorf("unmarshal list: %w", err)
	}
	items := list.AsSlice()
	records := make([]map[string]any, len(items))
	for i, item := range items {
		rec, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("entry %d: %w", i, ErrNotRecord)
		}
		records[i] = rec
	}
	return records, nil
}

// EncodeOperations serializes ops in order.
func EncodeOperations(ops []*operations.Operation) ([]byte, error) {
	records := make([]map[string]any, len(ops))
	for i, op := range ops {
		records[i] = op.Serialize()
	}
	return Marshal(records)
}

func DecodeOperations(b []byte) ([]*operations.Operation, error) {
	records, err := Unmarshal(b)
	if err != nil {
		return nil, err
	}
	ops := make([]*operations.Operation, len(records))
	for i, rec := range records {
		op, err := operations.Deserialize(rec)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		ops[i] = op
	}
	return ops, nil
}
