package database

import (
	"context"
	"fmt"
	"time"

	"github.com/ssau-fiit/waveot/operations"
	"github.com/ssau-fiit/waveot/wire"
	bolt "go.etcd.io/bbolt"
)

var pendingBucket = []byte("pending")

// BoltStore keeps pending queues in a single bbolt file.
type BoltStore struct {
	db *bolt.DB
}

func OpenBolt(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(pendingBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Save(_ context.Context, m *operations.OpManager) error {
	key := []byte(pendingKey(m.WaveID(), m.WaveletID()))
	var b []byte
	if !m.IsEmpty() {
		var err error
		if b, err = wire.EncodeOperations(m.Operations()); err != nil {
			return fmt.Errorf("encode %s: %w", key, err)
		}
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		if b == nil {
			return tx.Bucket(pendingBucket).Delete(key)
		}
		return tx.Bucket(pendingBucket).Put(key, b)
	})
}

func (s *BoltStore) Load(_ context.Context, m *operations.OpManager) error {
	key := []byte(pendingKey(m.WaveID(), m.WaveletID()))
	var b []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		// Values are only valid inside the transaction.
		b = append(b, tx.Bucket(pendingBucket).Get(key)...)
		return nil
	})
	if err != nil || b == nil {
		return err
	}
	ops, err := wire.DecodeOperations(b)
	if err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	m.Put(ops)
	return nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
