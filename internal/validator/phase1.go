package validator

import "github.com/rawblock/witnet-core/internal/chaintypes"

// ValidatePhase1 checks the block header against chain state, without
// looking at any transaction body.
func ValidatePhase1(block chaintypes.Block, ctx *Context) error {
	if block.Header.Beacon.CheckpointEpoch > ctx.CurrentEpoch {
		return errFutureEpoch(block.Header.Beacon.CheckpointEpoch, ctx.CurrentEpoch)
	}

	isGenesis := block.Header.Beacon.CheckpointEpoch == 0 && block.Header.Beacon.HashPrevBlock.IsZero()
	if !isGenesis && block.Header.Beacon.HashPrevBlock != ctx.ChainTipHash {
		return errBeaconMismatch(ctx.ChainTipHash, block.Header.Beacon.HashPrevBlock)
	}

	if err := checkMerkleRoots(block); err != nil {
		return err
	}

	minerPKH := chaintypes.PKHFromPublicKey(block.Header.VRFPublicKey)

	if ctx.Constants.Bn256ActivationEpoch > block.Header.Beacon.CheckpointEpoch {
		if !ctx.isBootstrapMember(minerPKH) {
			return errMinerNotEligible(minerPKH)
		}
	} else {
		if !ctx.Reputation.ARS.IsMember(minerPKH) {
			return errMinerNotEligible(minerPKH)
		}
		ownRep := uint64(ctx.Reputation.TRS.Total(minerPKH))
		totalRep := ctx.Reputation.TotalActiveReputation()
		target := MiningTarget(ownRep, totalRep, ctx.Constants.MiningReplicationFactor, ctx.Reputation.ARS.Size())
		if !VRFBelowTarget(block.Header.VRFProof, target) {
			return errVRFAboveTarget(minerPKH)
		}
	}

	if block.IsCanonicalShape(ctx.Constants.V2ActivationEpoch) {
		if len(ctx.Stakes.ByValidator(minerPKH)) == 0 {
			return errMinerBelowStake(minerPKH)
		}
	}

	return nil
}

func checkMerkleRoots(block chaintypes.Block) error {
	check := func(group string, txs []chaintypes.Transaction, want chaintypes.Hash) error {
		hashes, err := chaintypes.TransactionHashes(txs)
		if err != nil {
			return err
		}
		got := chaintypes.MerkleRoot(hashes)
		if got != want {
			return errMerkleMismatch(group, want, got)
		}
		return nil
	}

	var mintTxs []chaintypes.Transaction
	if block.Body.Mint != nil {
		mintTxs = []chaintypes.Transaction{*block.Body.Mint}
	}
	if err := check("mint", mintTxs, block.Header.Roots.MintRoot); err != nil {
		return err
	}
	if err := check("value_transfer", block.Body.ValueTransfer, block.Header.Roots.ValueTransferRoot); err != nil {
		return err
	}
	if err := check("data_request", block.Body.DataRequest, block.Header.Roots.DataRequestRoot); err != nil {
		return err
	}
	if err := check("commit", block.Body.Commit, block.Header.Roots.CommitRoot); err != nil {
		return err
	}
	if err := check("reveal", block.Body.Reveal, block.Header.Roots.RevealRoot); err != nil {
		return err
	}
	if err := check("tally", block.Body.Tally, block.Header.Roots.TallyRoot); err != nil {
		return err
	}
	if len(block.Body.Stake) > 0 || !block.Header.Roots.StakeRoot.IsZero() {
		if err := check("stake", block.Body.Stake, block.Header.Roots.StakeRoot); err != nil {
			return err
		}
	}
	if len(block.Body.Unstake) > 0 || !block.Header.Roots.UnstakeRoot.IsZero() {
		if err := check("unstake", block.Body.Unstake, block.Header.Roots.UnstakeRoot); err != nil {
			return err
		}
	}
	return nil
}
