package validator

import (
	"github.com/rawblock/witnet-core/internal/chaintypes"
	"github.com/rawblock/witnet-core/internal/drpool"
)

// ValidatePhase2 checks the transaction set: the mint shape, every
// transaction's balance and input existence, type-specific rules, weight
// limits, and collateral maturity. Signatures are collected but verified
// once as a batch at the very end, per spec.md §4.6.
func ValidatePhase2(block chaintypes.Block, ctx *Context) (*Result, error) {
	seenInputs := make(map[chaintypes.OutputPointer]struct{})
	var pending []pendingSignature
	var totalFees chaintypes.Nanowits
	weightByGroup := map[string]uint32{}
	tallyOutcomes := make(map[chaintypes.Hash]drpool.ExpectedTallyOutcome)

	trackInput := func(ptr chaintypes.OutputPointer) error {
		if _, dup := seenInputs[ptr]; dup {
			return errDoubleSpend(ptr)
		}
		if _, ok := ctx.UTXO.Get(ptr); !ok {
			return errUnknownInput(ptr)
		}
		seenInputs[ptr] = struct{}{}
		return nil
	}

	weightOf := func(tx chaintypes.Transaction) (uint32, error) {
		b, err := tx.MarshalWire()
		if err != nil {
			return 0, err
		}
		return uint32(len(b)), nil
	}

	checkBalanced := func(tx chaintypes.Transaction, inputs []chaintypes.Input, outputs []chaintypes.ValueTransferOutput) error {
		var inSum, outSum int64
		for _, in := range inputs {
			entry, ok := ctx.UTXO.Get(in.Pointer)
			if !ok {
				return errUnknownInput(in.Pointer)
			}
			inSum += int64(entry.Output.Value)
		}
		for _, out := range outputs {
			outSum += int64(out.Value)
		}
		if outSum > inSum {
			h, err := tx.Hash()
			if err != nil {
				return err
			}
			return errNegativeFee(h)
		}
		totalFees += chaintypes.Nanowits(inSum - outSum)
		return nil
	}

	// Mint: no inputs, at most two outputs, sum == block_reward + fees.
	// Checked last among the groups since it needs totalFees from
	// everything else; walk every other group first.
	for _, tx := range block.Body.ValueTransfer {
		if err := processInputsAndSigs(tx, tx.ValueTransfer.Inputs, tx.ValueTransfer.Outputs, trackInput, checkBalanced, &pending); err != nil {
			return nil, err
		}
		w, err := weightOf(tx)
		if err != nil {
			return nil, err
		}
		weightByGroup["value_transfer"] += w
	}
	if weightByGroup["value_transfer"] > ctx.Constants.ValueTransferWeightLimit {
		return nil, errWeightExceeded("value_transfer", weightByGroup["value_transfer"], ctx.Constants.ValueTransferWeightLimit)
	}

	for _, tx := range block.Body.DataRequest {
		if err := processInputsAndSigs(tx, tx.DataRequest.Inputs, tx.DataRequest.Outputs, trackInput, checkBalanced, &pending); err != nil {
			return nil, err
		}
		if err := checkDataRequestSanity(tx.DataRequest.Request); err != nil {
			return nil, err
		}
		w, err := weightOf(tx)
		if err != nil {
			return nil, err
		}
		weightByGroup["data_request"] += w
	}
	if weightByGroup["data_request"] > ctx.Constants.DataRequestWeightLimit {
		return nil, errWeightExceeded("data_request", weightByGroup["data_request"], ctx.Constants.DataRequestWeightLimit)
	}

	for _, tx := range block.Body.Commit {
		if err := checkCommit(tx, ctx, &pending); err != nil {
			return nil, err
		}
	}

	for _, tx := range block.Body.Reveal {
		if err := checkReveal(tx, ctx); err != nil {
			return nil, err
		}
	}

	for _, tx := range block.Body.Tally {
		outcome, err := checkTally(tx, ctx)
		if err != nil {
			return nil, err
		}
		tallyOutcomes[tx.Tally.DRHash] = outcome
	}

	for _, tx := range block.Body.Stake {
		if err := processInputsAndSigs(tx, tx.Stake.Inputs, tx.Stake.ChangeOutputs, trackInput, checkBalanced, &pending); err != nil {
			return nil, err
		}
		w, err := weightOf(tx)
		if err != nil {
			return nil, err
		}
		weightByGroup["stake"] += w
	}
	if weightByGroup["stake"] > ctx.Constants.StakeWeightLimit {
		return nil, errWeightExceeded("stake", weightByGroup["stake"], ctx.Constants.StakeWeightLimit)
	}

	for _, tx := range block.Body.Unstake {
		if err := checkUnstake(tx, &pending); err != nil {
			return nil, err
		}
		w, err := weightOf(tx)
		if err != nil {
			return nil, err
		}
		weightByGroup["unstake"] += w
	}
	if weightByGroup["unstake"] > ctx.Constants.UnstakeWeightLimit {
		return nil, errWeightExceeded("unstake", weightByGroup["unstake"], ctx.Constants.UnstakeWeightLimit)
	}

	if err := checkMint(block, ctx, totalFees); err != nil {
		return nil, err
	}

	if err := verifyBatch(pending); err != nil {
		return nil, err
	}

	return &Result{TotalFees: totalFees, TallyOutcomes: tallyOutcomes}, nil
}

func checkMint(block chaintypes.Block, ctx *Context, totalFees chaintypes.Nanowits) error {
	if block.Body.Mint == nil {
		return errMintShape("missing mint transaction")
	}
	mint := block.Body.Mint.Mint
	if mint == nil {
		return errMintShape("mint transaction has no body")
	}
	if len(mint.Outputs) > 2 {
		return errMintShape("more than two outputs")
	}
	var sum chaintypes.Nanowits
	for _, out := range mint.Outputs {
		sum += out.Value
	}
	want := ctx.Constants.BlockReward(mint.Epoch) + totalFees
	if sum != want {
		return errMintShape("output sum does not equal block_reward(epoch) + total_fees")
	}
	return nil
}

func checkDataRequestSanity(dr chaintypes.DataRequestOutput) error {
	if dr.Witnesses <= 1 {
		return errInvalid("data request must require more than one witness")
	}
	if len(dr.Retrieve) == 0 {
		return errInvalid("data request has no retrieval legs")
	}
	if dr.MinConsensusPercentage <= 50 || dr.MinConsensusPercentage >= 100 {
		return errInvalid("min_consensus_percentage must be strictly between 50 and 100")
	}
	if dr.RewardPerWitness() <= 0 {
		return errInvalid("per-witness reward after fees is not positive")
	}
	return nil
}
