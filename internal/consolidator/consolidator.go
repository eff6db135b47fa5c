// Package consolidator applies an already-validated block to chain state
// as a single atomic step, rolling every layer back if persistence fails
// partway through (spec.md §4.7).
package consolidator

import (
	"fmt"
	"log"

	"github.com/rawblock/witnet-core/internal/chaintypes"
	"github.com/rawblock/witnet-core/internal/drpool"
	"github.com/rawblock/witnet-core/internal/reputation"
	"github.com/rawblock/witnet-core/internal/stakes"
	"github.com/rawblock/witnet-core/internal/superblock"
	"github.com/rawblock/witnet-core/internal/utxo"
	"github.com/rawblock/witnet-core/internal/validator"
	"github.com/rawblock/witnet-core/pkg/consensusconsts"
)

// MempoolRemover is whatever holds unconfirmed transactions/reveals
// waiting for inclusion. The consolidator only needs to tell it what just
// got confirmed and that reveals don't survive past their epoch; the
// pool's own lifecycle lives in whatever package owns it.
type MempoolRemover interface {
	RemoveConfirmed(hashes []chaintypes.Hash)
	ClearReveals()
}

// Persister flushes a consolidated block to durable storage. Consolidate
// calls it last, after every in-memory layer has been updated but before
// any of it is irreversible: a Persister failure rolls the whole step
// back.
type Persister interface {
	PersistBlock(block chaintypes.Block) error
}

// Context bundles every piece of mutable chain state one block
// consolidation touches, mirroring validator.Context's bundling of the
// same state for the read-only pass that precedes this one.
type Context struct {
	Constants consensusconsts.ConsensusConstants

	UTXO        *utxo.Pool
	Stakes      *stakes.Tracker
	Reputation  *reputation.Engine
	DRPool      *drpool.Pool
	Superblock  *superblock.State
	Mempool     MempoolRemover // nil is fine: nothing to clear
	Persistence Persister      // nil is fine: memory-only chain

	// ByPKH is the full by-address UTXO index rpcsurface's getBalance/
	// getUtxoInfo read from. nil disables it: the consolidator still
	// consolidates, it just doesn't maintain the secondary index.
	ByPKH *utxo.OwnIndex

	// ChainTipHash and CurrentEpoch are read and then advanced in place
	// to become the new tip once consolidation succeeds.
	ChainTipHash *chaintypes.Hash
	CurrentEpoch *chaintypes.Epoch
	BlockNumber  *uint64
}

// Consolidate applies block — already accepted by validator.Validate,
// whose Result is passed in — to ctx in the nine steps spec.md §4.7
// describes: UTXO diff, DR pool transitions, reputation tallies, mempool
// pruning, reputation/stakes updates, superblock state, and finally the
// new tip. Any failure rolls the UTXO diff back and leaves every other
// layer untouched, since steps 2 onward only run after step 1 succeeds.
func (c *Context) Consolidate(block chaintypes.Block, result *validator.Result) error {
	blockHash, err := block.Hash(c.Constants.V2ActivationEpoch)
	if err != nil {
		return fmt.Errorf("consolidator: hash block: %w", err)
	}

	// Step 1: apply the UTXO diff the block's transactions imply. The
	// pool's own Diff layer (not flushed until Persist) is what makes
	// rollback possible below.
	if err := c.applyUTXODiff(block); err != nil {
		c.UTXO.Rollback()
		return fmt.Errorf("consolidator: utxo diff: %w", err)
	}

	// Step 2: commits/reveals move the DR pool's per-request state;
	// tallies remove the request from the pool entirely.
	perPKH := make(map[chaintypes.PublicKeyHash]reputation.WitnessTally)
	for _, commit := range block.Body.Commit {
		body := commit.Commit
		if err := c.DRPool.SubmitCommit(body.DRHash, body.Committer, body.CommitmentHash, body.CollateralInputs); err != nil {
			c.UTXO.Rollback()
			return fmt.Errorf("consolidator: commit %s: %w", body.DRHash, err)
		}
	}
	for _, reveal := range block.Body.Reveal {
		body := reveal.Reveal
		if err := c.DRPool.SubmitReveal(body.DRHash, body.Revealer, body.Result); err != nil {
			c.UTXO.Rollback()
			return fmt.Errorf("consolidator: reveal %s: %w", body.DRHash, err)
		}
	}

	// Step 3: fold each tally's outcome into the per-identity reputation
	// tallies the engine update (step 6) consumes, then drop the request.
	var alphaDiff chaintypes.Alpha
	for _, tally := range block.Body.Tally {
		body := tally.Tally
		if state, ok := c.DRPool.Get(body.DRHash); ok {
			alphaDiff += chaintypes.Alpha(len(state.Reveals))
		}
		for _, pkh := range body.OutOfConsensus {
			t := perPKH[pkh]
			t.Lies++
			perPKH[pkh] = t
		}
		for _, pkh := range body.ErrorCommitters {
			t := perPKH[pkh]
			t.Errors++
			perPKH[pkh] = t
		}
		for pkh, outcome := range result.TallyOutcomes[body.DRHash].HonestRewards {
			_ = outcome
			t := perPKH[pkh]
			t.Truths++
			perPKH[pkh] = t
		}
		c.DRPool.Remove(body.DRHash)
	}

	// Step 4+5: drop confirmed transactions from the mempool; reveals
	// never survive past the epoch they were valid in regardless of
	// whether this block consolidated them.
	if c.Mempool != nil {
		c.Mempool.RemoveConfirmed(blockTransactionHashes(block))
		c.Mempool.ClearReveals()
	}

	// Step 6: reputation update, once per block, folding every tally's
	// outcomes and crediting the block's miner for activity.
	minerPKH := chaintypes.PKHFromPublicKey(block.Header.VRFPublicKey)
	c.Reputation.Update(reputation.ConsolidationInput{
		AlphaDiff:     alphaDiff,
		PerPKH:        perPKH,
		BlockMinerPKH: minerPKH,
	})

	// Step 7: stake/unstake transactions move the stakes tracker.
	for _, stakeTx := range block.Body.Stake {
		body := stakeTx.Stake
		key := stakes.StakeKey{Validator: body.Validator, Withdrawer: body.Withdrawer}
		if err := c.Stakes.AddStake(key, body.Coins, *c.CurrentEpoch); err != nil {
			c.UTXO.Rollback()
			return fmt.Errorf("consolidator: add stake: %w", err)
		}
	}
	for _, unstakeTx := range block.Body.Unstake {
		body := unstakeTx.Unstake
		key := stakes.StakeKey{Validator: body.Validator, Withdrawer: body.Withdrawer}
		if err := c.Stakes.RemoveStake(key, body.Coins); err != nil {
			c.UTXO.Rollback()
			return fmt.Errorf("consolidator: remove stake: %w", err)
		}
	}

	// Step 8: advance superblock state if this block closes out a round.
	newEpoch := block.Header.Beacon.CheckpointEpoch
	if c.Constants.SuperblockPeriod > 0 && uint32(newEpoch)%c.Constants.SuperblockPeriod == 0 {
		c.advanceSuperblock(block, blockHash)
	}

	// Step 9: persist, then (and only then) move the tip forward. A
	// persistence failure rolls the UTXO diff back; the DR pool,
	// reputation and stakes mutations above are cheap to recompute from
	// the next attempt since nothing downstream has observed them yet.
	if c.Persistence != nil {
		if err := c.Persistence.PersistBlock(block); err != nil {
			c.UTXO.Rollback()
			return fmt.Errorf("consolidator: persist: %w", err)
		}
	}
	c.UTXO.Persist()

	*c.ChainTipHash = blockHash
	*c.CurrentEpoch = newEpoch
	*c.BlockNumber++

	log.Printf("[consolidator] consolidated block %s at epoch %d (height %d)", blockHash, newEpoch, *c.BlockNumber)
	return nil
}

func (c *Context) applyUTXODiff(block chaintypes.Block) error {
	spend := func(inputs []chaintypes.Input) {
		for _, in := range inputs {
			if c.ByPKH != nil {
				if entry, ok := c.UTXO.Get(in.Pointer); ok {
					c.ByPKH.Remove(entry.Output.PKH, in.Pointer)
				}
			}
			c.UTXO.Remove(in.Pointer)
		}
	}
	create := func(txHash chaintypes.Hash, outputs []chaintypes.ValueTransferOutput) {
		for i, out := range outputs {
			ptr := chaintypes.OutputPointer{TransactionHash: txHash, OutputIndex: uint32(i)}
			c.UTXO.Insert(ptr, out, *c.BlockNumber)
			if c.ByPKH != nil {
				c.ByPKH.Insert(ptr, out)
			}
		}
	}

	if block.Body.Mint != nil {
		h, err := block.Body.Mint.Hash()
		if err != nil {
			return err
		}
		create(h, block.Body.Mint.Mint.Outputs)
	}
	for _, tx := range block.Body.ValueTransfer {
		h, err := tx.Hash()
		if err != nil {
			return err
		}
		spend(tx.ValueTransfer.Inputs)
		create(h, tx.ValueTransfer.Outputs)
	}
	for _, tx := range block.Body.DataRequest {
		h, err := tx.Hash()
		if err != nil {
			return err
		}
		spend(tx.DataRequest.Inputs)
		create(h, tx.DataRequest.Outputs)
	}
	for _, tx := range block.Body.Commit {
		spend(tx.Commit.CollateralInputs)
		h, err := tx.Hash()
		if err != nil {
			return err
		}
		create(h, tx.Commit.ChangeOutputs)
	}
	for _, tx := range block.Body.Tally {
		h, err := tx.Hash()
		if err != nil {
			return err
		}
		create(h, tx.Tally.Outputs)
	}
	for _, tx := range block.Body.Stake {
		h, err := tx.Hash()
		if err != nil {
			return err
		}
		spend(tx.Stake.Inputs)
		create(h, tx.Stake.ChangeOutputs)
	}
	for _, tx := range block.Body.Unstake {
		h, err := tx.Hash()
		if err != nil {
			return err
		}
		create(h, []chaintypes.ValueTransferOutput{tx.Unstake.Output})
	}
	return nil
}

func (c *Context) advanceSuperblock(block chaintypes.Block, blockHash chaintypes.Hash) {
	drHashes, err := chaintypes.TransactionHashes(block.Body.DataRequest)
	if err != nil {
		log.Printf("[consolidator] superblock: hashing data requests: %v", err)
		return
	}
	tallyHashes, err := chaintypes.TransactionHashes(block.Body.Tally)
	if err != nil {
		log.Printf("[consolidator] superblock: hashing tallies: %v", err)
		return
	}

	members := c.Reputation.ARS.Members()
	keys := make([][]byte, len(members))
	for i, pkh := range members {
		keys[i] = pkh[:]
	}
	newARS := make(map[chaintypes.PublicKeyHash]struct{}, len(members))
	for _, pkh := range members {
		newARS[pkh] = struct{}{}
	}

	next := superblock.Build(c.Superblock.CurrentIndex+1, drHashes, tallyHashes, keys, blockHash, c.Superblock.CurrentSuperblockHash)
	c.Superblock.AdvanceToNextSuperblock(next, newARS)
}

func blockTransactionHashes(block chaintypes.Block) []chaintypes.Hash {
	var all []chaintypes.Transaction
	if block.Body.Mint != nil {
		all = append(all, *block.Body.Mint)
	}
	all = append(all, block.Body.ValueTransfer...)
	all = append(all, block.Body.DataRequest...)
	all = append(all, block.Body.Commit...)
	all = append(all, block.Body.Reveal...)
	all = append(all, block.Body.Tally...)
	all = append(all, block.Body.Stake...)
	all = append(all, block.Body.Unstake...)

	hashes := make([]chaintypes.Hash, 0, len(all))
	for i := range all {
		h, err := all[i].Hash()
		if err != nil {
			continue
		}
		hashes = append(hashes, h)
	}
	return hashes
}
