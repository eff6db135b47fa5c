// Package storage defines the chain-state persistence contract that
// internal/consolidator and cmd/witnetd's startup path depend on;
// internal/storage/memstore and internal/storage/postgres provide the
// two concrete implementations.
package storage

import "github.com/rawblock/witnet-core/internal/chaintypes"

// ChainStateStore persists consolidated blocks and recovers the chain
// tip on restart. Implementations must make PersistBlock atomic per
// block: consolidator.Context.Consolidate rolls its in-memory state back
// on any error this returns.
type ChainStateStore interface {
	PersistBlock(block chaintypes.Block) error
	LoadTip() (hash chaintypes.Hash, epoch chaintypes.Epoch, blockNumber uint64, found bool, err error)
	LoadBlock(hash chaintypes.Hash) (chaintypes.Block, bool, error)
}
