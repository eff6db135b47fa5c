// Package memstore is an in-memory storage.ChainStateStore, used by
// tests and by witnetd when the configured database can't be reached or
// its schema can't be initialized.
package memstore

import (
	"sync"

	"github.com/rawblock/witnet-core/internal/chaintypes"
)

type Store struct {
	mu sync.Mutex

	v2ActivationEpoch chaintypes.Epoch
	blocks            map[chaintypes.Hash]chaintypes.Block
	tipHash           chaintypes.Hash
	tipEpoch          chaintypes.Epoch
	blockNumber       uint64
	hasTip            bool
}

func New(v2ActivationEpoch chaintypes.Epoch) *Store {
	return &Store{
		v2ActivationEpoch: v2ActivationEpoch,
		blocks:            make(map[chaintypes.Hash]chaintypes.Block),
	}
}

func (s *Store) PersistBlock(block chaintypes.Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	hash, err := block.Hash(s.v2ActivationEpoch)
	if err != nil {
		return err
	}
	s.blocks[hash] = block
	s.tipHash = hash
	s.tipEpoch = block.Header.Beacon.CheckpointEpoch
	s.blockNumber++
	s.hasTip = true
	return nil
}

func (s *Store) LoadTip() (chaintypes.Hash, chaintypes.Epoch, uint64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tipHash, s.tipEpoch, s.blockNumber, s.hasTip, nil
}

func (s *Store) LoadBlock(hash chaintypes.Hash) (chaintypes.Block, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	block, ok := s.blocks[hash]
	return block, ok, nil
}
