package database

import (
	"context"
	"fmt"

	"github.com/ssau-fiit/waveot/operations"
)

// Store persists the pending queue of a wavelet.
type Store interface {
	// Save replaces the stored queue with the manager's pending operations. An
	// empty manager removes the stored queue.
	Save(ctx context.Context, m *operations.OpManager) error
	// Load appends the stored queue to the manager.
	Load(ctx context.Context, m *operations.OpManager) error
	Close() error
}

func pendingKey(waveID, waveletID string) string {
	return fmt.Sprintf("wavelets.%v.%v.pending", waveID, waveletID)
}
