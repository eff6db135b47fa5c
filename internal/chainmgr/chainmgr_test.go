package chainmgr

import (
	"testing"
	"time"

	"github.com/rawblock/witnet-core/internal/chaintypes"
	"github.com/rawblock/witnet-core/internal/storage/memstore"
	"github.com/rawblock/witnet-core/pkg/consensusconsts"
)

func pkh(b byte) chaintypes.PublicKeyHash {
	var p chaintypes.PublicKeyHash
	p[0] = b
	return p
}

func TestSubmitGenesisBlockAdvancesTip(t *testing.T) {
	constants := consensusconsts.Mainnet()
	minerKey := []byte("bootstrap-miner")
	minerPKH := chaintypes.PKHFromPublicKey(minerKey)

	store := memstore.New(constants.V2ActivationEpoch)
	mgr := New(constants, []chaintypes.PublicKeyHash{minerPKH}, store, nil)
	if err := mgr.Recover(); err != nil {
		t.Fatal(err)
	}

	done := make(chan struct{})
	go mgr.Run(done)
	defer close(done)

	reward := constants.BlockReward(0)
	mintTx := chaintypes.Transaction{
		Kind: chaintypes.TxMint,
		Mint: &chaintypes.MintBody{
			Epoch:   0,
			Outputs: []chaintypes.ValueTransferOutput{{PKH: pkh(1), Value: reward}},
		},
	}
	mintHash, err := mintTx.Hash()
	if err != nil {
		t.Fatal(err)
	}
	block := chaintypes.Block{
		Header: chaintypes.BlockHeader{
			Beacon:       chaintypes.CheckpointBeacon{CheckpointEpoch: 0, HashPrevBlock: chaintypes.ZeroHash},
			Roots:        chaintypes.MerkleRoots{MintRoot: chaintypes.MerkleRoot([]chaintypes.Hash{mintHash})},
			VRFProof:     []byte("genesis-proof"),
			VRFPublicKey: minerKey,
		},
		Body: chaintypes.BlockBody{Mint: &mintTx},
	}

	if err := mgr.SubmitBlock(block); err != nil {
		t.Fatalf("SubmitBlock: %v", err)
	}

	height := mgr.Snapshot(func(m *Manager) any { return m.BlockNumber })
	if height.(uint64) != 1 {
		t.Fatalf("expected block number 1 after consolidating genesis, got %v", height)
	}

	select {
	case <-time.After(time.Second):
		t.Fatalf("Run goroutine appears stuck")
	default:
	}
}
