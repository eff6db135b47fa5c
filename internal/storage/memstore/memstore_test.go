package memstore

import (
	"testing"

	"github.com/rawblock/witnet-core/internal/chaintypes"
)

func TestPersistAndLoadRoundTrips(t *testing.T) {
	s := New(100)

	mintTx := chaintypes.Transaction{
		Kind: chaintypes.TxMint,
		Mint: &chaintypes.MintBody{
			Epoch:   0,
			Outputs: []chaintypes.ValueTransferOutput{{Value: 1000}},
		},
	}
	mintHash, err := mintTx.Hash()
	if err != nil {
		t.Fatal(err)
	}
	block := chaintypes.Block{
		Header: chaintypes.BlockHeader{
			Beacon: chaintypes.CheckpointBeacon{CheckpointEpoch: 0, HashPrevBlock: chaintypes.ZeroHash},
			Roots:  chaintypes.MerkleRoots{MintRoot: chaintypes.MerkleRoot([]chaintypes.Hash{mintHash})},
		},
		Body: chaintypes.BlockBody{Mint: &mintTx},
	}

	if err := s.PersistBlock(block); err != nil {
		t.Fatalf("PersistBlock: %v", err)
	}

	hash, epoch, blockNumber, found, err := s.LoadTip()
	if err != nil {
		t.Fatal(err)
	}
	if !found {
		t.Fatalf("expected a tip to be found after persisting a block")
	}
	if epoch != 0 || blockNumber != 1 {
		t.Fatalf("unexpected tip epoch/blockNumber: %d/%d", epoch, blockNumber)
	}

	loaded, found, err := s.LoadBlock(hash)
	if err != nil {
		t.Fatal(err)
	}
	if !found {
		t.Fatalf("expected to find the just-persisted block by its tip hash")
	}
	if loaded.Header.Beacon.CheckpointEpoch != 0 {
		t.Fatalf("unexpected loaded block epoch: %d", loaded.Header.Beacon.CheckpointEpoch)
	}
}

func TestLoadTipOnEmptyStoreReportsNotFound(t *testing.T) {
	s := New(100)
	_, _, _, found, err := s.LoadTip()
	if err != nil {
		t.Fatal(err)
	}
	if found {
		t.Fatalf("expected an empty store to report no tip")
	}
}
