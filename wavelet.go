package main

import (
	"context"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/rs/zerolog/log"
	"github.com/ssau-fiit/waveot/database"
	"github.com/ssau-fiit/waveot/operations"
)

type waveletKey struct {
	waveID    string
	waveletID string
}

// wavelet guards one manager. Observer callbacks run while mu is held.
type wavelet struct {
	mu          sync.Mutex
	manager     *operations.OpManager
	subscribers mapset.Set[*subscriber]
}

func newWavelet(waveID, waveletID string) *wavelet {
	w := &wavelet{
		manager:     operations.NewOpManager(waveID, waveletID, operations.WithLogger(log.Logger)),
		subscribers: mapset.NewSet[*subscriber](),
	}
	w.manager.Subscribe(operations.ObserverFuncs{
		OnOperationChanged: func(i int) {
			w.broadcast(newEvent(eventChanged, i, i, w.manager.Operations()[i:i+1]))
		},
		OnAfterOperationsRemoved: func(start, end int) {
			w.broadcast(newEvent(eventRemoved, start, end, nil))
		},
		OnAfterOperationsInserted: func(start, end int) {
			w.broadcast(newEvent(eventInserted, start, end, w.manager.Operations()[start:end+1]))
		},
	})
	return w
}

func (w *wavelet) broadcast(ev Event) {
	w.subscribers.Each(func(s *subscriber) bool {
		select {
		case s.send <- ev:
		default:
			log.Warn().Str("subscriber", s.id).Str("event", ev.Type).Msg("subscriber too slow, dropping event")
		}
		return false
	})
}

type registry struct {
	mu       sync.Mutex
	store    database.Store
	wavelets map[waveletKey]*wavelet
}

func newRegistry(store database.Store) *registry {
	return &registry{
		store:    store,
		wavelets: make(map[waveletKey]*wavelet),
	}
}

// get returns the wavelet, loading its stored queue on first use.
func (r *registry) get(ctx context.Context, waveID, waveletID string) (*wavelet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := waveletKey{waveID, waveletID}
	if w, ok := r.wavelets[key]; ok {
		return w, nil
	}
	w := newWavelet(waveID, waveletID)
	if err := r.store.Load(ctx, w.manager); err != nil {
		return nil, err
	}
	r.wavelets[key] = w
	return w, nil
}

func (r *registry) save(ctx context.Context, w *wavelet) error {
	return r.store.Save(ctx, w.manager)
}
