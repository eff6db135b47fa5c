package validator

import (
	"testing"

	"github.com/rawblock/witnet-core/internal/chaintypes"
	"github.com/rawblock/witnet-core/internal/drpool"
	"github.com/rawblock/witnet-core/internal/reputation"
	"github.com/rawblock/witnet-core/internal/stakes"
	"github.com/rawblock/witnet-core/internal/utxo"
	"github.com/rawblock/witnet-core/pkg/consensusconsts"
)

func pkhFromSeed(b byte) chaintypes.PublicKeyHash {
	var p chaintypes.PublicKeyHash
	p[0] = b
	return p
}

func buildGenesisBlock(t *testing.T, constants consensusconsts.ConsensusConstants, minerKey []byte) chaintypes.Block {
	t.Helper()
	reward := constants.BlockReward(0)
	mintTx := chaintypes.Transaction{
		Kind: chaintypes.TxMint,
		Mint: &chaintypes.MintBody{
			Epoch:   0,
			Outputs: []chaintypes.ValueTransferOutput{{PKH: pkhFromSeed(1), Value: reward}},
		},
	}
	mintHash, err := mintTx.Hash()
	if err != nil {
		t.Fatal(err)
	}

	return chaintypes.Block{
		Header: chaintypes.BlockHeader{
			Beacon:       chaintypes.CheckpointBeacon{CheckpointEpoch: 0, HashPrevBlock: chaintypes.ZeroHash},
			Roots:        chaintypes.MerkleRoots{MintRoot: chaintypes.MerkleRoot([]chaintypes.Hash{mintHash})},
			VRFProof:     []byte("genesis-proof"),
			VRFPublicKey: minerKey,
		},
		Body: chaintypes.BlockBody{Mint: &mintTx},
	}
}

func testContext(minerPKH chaintypes.PublicKeyHash) *Context {
	constants := consensusconsts.Mainnet()
	return &Context{
		Constants:          constants,
		ChainTipHash:       chaintypes.ZeroHash,
		CurrentEpoch:       0,
		BlockNumber:        0,
		UTXO:               utxo.New(),
		Stakes:             stakes.New(constants.MinimumStake),
		Reputation:         reputation.NewEngine(constants),
		DRPool:             drpool.New(constants.ExtraCommitRounds, constants.ExtraRevealRounds),
		BootstrapCommittee: []chaintypes.PublicKeyHash{minerPKH},
	}
}

func TestValidateGenesisMintBlock(t *testing.T) {
	minerKey := []byte("bootstrap-miner-key")
	minerPKH := chaintypes.PKHFromPublicKey(minerKey)
	ctx := testContext(minerPKH)
	block := buildGenesisBlock(t, ctx.Constants, minerKey)

	result, err := Validate(block, ctx)
	if err != nil {
		t.Fatalf("expected a valid genesis block, got %v", err)
	}
	if result.TotalFees != 0 {
		t.Fatalf("expected zero fees with no spending transactions, got %d", result.TotalFees)
	}
}

func TestValidateRejectsFutureEpoch(t *testing.T) {
	minerKey := []byte("bootstrap-miner-key")
	minerPKH := chaintypes.PKHFromPublicKey(minerKey)
	ctx := testContext(minerPKH)
	block := buildGenesisBlock(t, ctx.Constants, minerKey)
	block.Header.Beacon.CheckpointEpoch = 5

	if _, err := Validate(block, ctx); err == nil {
		t.Fatalf("expected a future-epoch block to be rejected")
	}
}

func TestValidateRejectsUnknownMiner(t *testing.T) {
	minerKey := []byte("bootstrap-miner-key")
	ctx := testContext(pkhFromSeed(99)) // bootstrap committee doesn't include this block's miner
	block := buildGenesisBlock(t, ctx.Constants, minerKey)

	if _, err := Validate(block, ctx); err == nil {
		t.Fatalf("expected a non-bootstrap miner to be rejected")
	}
}

func TestValidateRejectsBadMintSum(t *testing.T) {
	minerKey := []byte("bootstrap-miner-key")
	minerPKH := chaintypes.PKHFromPublicKey(minerKey)
	ctx := testContext(minerPKH)
	block := buildGenesisBlock(t, ctx.Constants, minerKey)
	block.Body.Mint.Mint.Outputs[0].Value += 1
	mintHash, err := block.Body.Mint.Hash()
	if err != nil {
		t.Fatal(err)
	}
	block.Header.Roots.MintRoot = chaintypes.MerkleRoot([]chaintypes.Hash{mintHash})

	if _, err := Validate(block, ctx); err == nil {
		t.Fatalf("expected mismatched mint output sum to be rejected")
	}
}
