// Package validator checks a candidate block against chain state before
// the consolidator is allowed to apply it, in the two phases spec.md
// §4.6 describes: header/structural, then the transaction set.
package validator

import (
	"github.com/rawblock/witnet-core/internal/chaintypes"
	"github.com/rawblock/witnet-core/internal/drpool"
	"github.com/rawblock/witnet-core/internal/reputation"
	"github.com/rawblock/witnet-core/internal/stakes"
	"github.com/rawblock/witnet-core/internal/utxo"
	"github.com/rawblock/witnet-core/pkg/consensusconsts"
)

// Context bundles every piece of chain state a block validates against.
// All of it is pre-block: the UTXO pool and DR pool reflect state right
// before this block, never the block's own in-flight diff.
type Context struct {
	Constants consensusconsts.ConsensusConstants

	// ChainTipHash is the hash of the current tip block; a new block must
	// reference it as hash_prev_block unless it's the genesis block.
	ChainTipHash chaintypes.Hash
	CurrentEpoch chaintypes.Epoch
	BlockNumber  uint64 // height, used for collateral maturity

	UTXO       *utxo.Pool
	Stakes     *stakes.Tracker
	Reputation *reputation.Engine
	DRPool     *drpool.Pool

	// BootstrapCommittee is the fixed miner whitelist used before
	// Bn256ActivationEpoch hands mining eligibility to the ARS.
	BootstrapCommittee []chaintypes.PublicKeyHash
}

// Result carries what phase 2 computed that the consolidator needs:
// total fees (for mint-sum checking, already folded in here) and the
// reputation/tally bookkeeping derived per data request.
type Result struct {
	TotalFees       chaintypes.Nanowits
	TallyOutcomes   map[chaintypes.Hash]drpool.ExpectedTallyOutcome
}

// Validate runs both phases against block and returns the first error
// found, or a Result on success. Neither phase mutates ctx — Validate is
// read-only; the consolidator applies the effects afterward.
func Validate(block chaintypes.Block, ctx *Context) (*Result, error) {
	if err := ValidatePhase1(block, ctx); err != nil {
		return nil, err
	}
	return ValidatePhase2(block, ctx)
}

func (c *Context) isBootstrapMember(pkh chaintypes.PublicKeyHash) bool {
	for _, m := range c.BootstrapCommittee {
		if m == pkh {
			return true
		}
	}
	return false
}
