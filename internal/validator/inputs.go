package validator

import (
	"bytes"
	"sort"

	"github.com/rawblock/witnet-core/internal/chaintypes"
	"github.com/rawblock/witnet-core/internal/drpool"
	"github.com/rawblock/witnet-core/internal/radon"
)

// processInputsAndSigs runs the shared input-existence/double-spend/
// balance checks common to every input-bearing transaction type, and
// queues each input's signature for the deferred batch verification.
func processInputsAndSigs(
	tx chaintypes.Transaction,
	inputs []chaintypes.Input,
	outputs []chaintypes.ValueTransferOutput,
	trackInput func(chaintypes.OutputPointer) error,
	checkBalanced func(chaintypes.Transaction, []chaintypes.Input, []chaintypes.ValueTransferOutput) error,
	pending *[]pendingSignature,
) error {
	for _, in := range inputs {
		if err := trackInput(in.Pointer); err != nil {
			return err
		}
	}
	if err := checkBalanced(tx, inputs, outputs); err != nil {
		return err
	}
	txHash, err := tx.Hash()
	if err != nil {
		return err
	}
	message, err := tx.SigningHash()
	if err != nil {
		return err
	}
	for i, in := range inputs {
		*pending = append(*pending, pendingSignature{
			txHash:    txHash,
			inputIdx:  i,
			publicKey: in.PublicKey,
			signature: in.Signature,
			message:   message,
		})
	}
	return nil
}

func checkCommit(tx chaintypes.Transaction, ctx *Context, pending *[]pendingSignature) error {
	body := tx.Commit
	state, ok := ctx.DRPool.Get(body.DRHash)
	if !ok {
		return errUnknownDRForTx(body.DRHash)
	}
	if state.Stage != drpool.StageCommit {
		return errWrongStageForTx(body.DRHash, drpool.StageCommit, state.Stage)
	}
	if _, dup := state.Commits[body.Committer]; dup {
		return errDuplicateCommitter(body.DRHash, body.Committer)
	}

	ownRep := uint64(ctx.Reputation.TRS.Total(body.Committer))
	totalRep := ctx.Reputation.TotalActiveReputation()
	target := MiningTarget(ownRep, totalRep, ctx.Constants.MiningReplicationFactor, ctx.Reputation.ARS.Size())
	if !VRFBelowTarget(body.VRFProof, target) {
		return errVRFAboveTarget(body.Committer)
	}

	var collateral chaintypes.Nanowits
	for _, in := range body.CollateralInputs {
		if !ctx.UTXO.IsMatureCollateral(in.Pointer, ctx.BlockNumber, ctx.Constants.CollateralAge) {
			return errCollateralImmature(in.Pointer)
		}
		entry, ok := ctx.UTXO.Get(in.Pointer)
		if !ok {
			return errUnknownInput(in.Pointer)
		}
		collateral += entry.Output.Value
	}
	if collateral != state.Request.CollateralAmount {
		return errInvalid("collateral amount does not match the data request's required amount")
	}

	txHash, err := tx.Hash()
	if err != nil {
		return err
	}
	message, err := tx.SigningHash()
	if err != nil {
		return err
	}
	for i, in := range body.CollateralInputs {
		*pending = append(*pending, pendingSignature{
			txHash: txHash, inputIdx: i, publicKey: in.PublicKey, signature: in.Signature, message: message,
		})
	}
	return nil
}

func checkReveal(tx chaintypes.Transaction, ctx *Context) error {
	body := tx.Reveal
	state, ok := ctx.DRPool.Get(body.DRHash)
	if !ok {
		return errUnknownDRForTx(body.DRHash)
	}
	if state.Stage != drpool.StageReveal {
		return errWrongStageForTx(body.DRHash, drpool.StageReveal, state.Stage)
	}
	if _, committed := state.Commits[body.Revealer]; !committed {
		return errInvalid("reveal has no prior commit")
	}
	if _, dup := state.Reveals[body.Revealer]; dup {
		return errInvalid("duplicate reveal for the same revealer")
	}
	return nil
}

// checkTally re-derives the tally's outcome by actually running the DR's
// Tally RADON script over the decoded reveals, rather than trusting the
// transaction's own account of who was honest: spec.md §4.2 requires "the
// encoded tally result matches what the RADON tally script produces on
// the reveals array" and "slashed PKHs match the computed out-of-consensus
// set". The Aggregate script isn't re-run here — it executes client-side
// over each witness's retrieved sources, which this node never sees; the
// Tally script is the only RADON stage the chain can verify on-chain,
// since its input (the reveals array) is itself on-chain data.
func checkTally(tx chaintypes.Transaction, ctx *Context) (drpool.ExpectedTallyOutcome, error) {
	body := tx.Tally
	state, ok := ctx.DRPool.Get(body.DRHash)
	if !ok {
		return drpool.ExpectedTallyOutcome{}, errUnknownDRForTx(body.DRHash)
	}

	committers := make([]chaintypes.PublicKeyHash, 0, len(state.Commits))
	for pkh := range state.Commits {
		committers = append(committers, pkh)
	}
	sort.Slice(committers, func(i, j int) bool {
		return bytes.Compare(committers[i][:], committers[j][:]) < 0
	})

	var revealers []chaintypes.PublicKeyHash
	var values []radon.Value
	for _, pkh := range committers {
		rec, didReveal := state.Reveals[pkh]
		if !didReveal {
			continue
		}
		v, err := radon.ParseValue(rec.Result)
		if err != nil {
			return drpool.ExpectedTallyOutcome{}, errTallyMismatch(body.DRHash, "reveal from "+pkh.Hex()+" does not decode as a RADON value")
		}
		revealers = append(revealers, pkh)
		values = append(values, v)
	}

	var errorPKHs, nonErrorPKHs []chaintypes.PublicKeyHash
	var nonErrorValues []radon.Value
	for i, pkh := range revealers {
		if values[i].IsError() {
			errorPKHs = append(errorPKHs, pkh)
			continue
		}
		nonErrorPKHs = append(nonErrorPKHs, pkh)
		nonErrorValues = append(nonErrorValues, values[i])
	}

	gates := radon.ActivationGates{
		CurrentEpoch: uint32(ctx.CurrentEpoch),
		WIP0017Epoch: uint32(ctx.Constants.WIP0017ActivationEpoch),
		WIP0019Epoch: uint32(ctx.Constants.WIP0019ActivationEpoch),
		WIP0024Epoch: uint32(ctx.Constants.WIP0024ActivationEpoch),
	}

	var honest []chaintypes.PublicKeyHash
	var wantResult radon.Value
	achievedPct := percentageOf(len(nonErrorPKHs), len(committers))
	if len(nonErrorPKHs) == 0 || achievedPct < int(state.Request.MinConsensusPercentage) {
		// Too few successful reveals to reach the DR's required
		// consensus fraction: nobody in this round is honest.
		wantResult = radon.Error(radon.ErrEmptyArrayReduction)
	} else {
		report := radon.Run(gates, radon.Array(nonErrorValues), state.Request.Tally, radon.ReportSettings{TrackPartialResults: true})
		wantResult = report.Result
		honest = consensusCommitters(nonErrorPKHs, nonErrorValues, state.Request.Tally, report)
	}

	wantBytes, err := wantResult.MarshalWire()
	if err != nil {
		return drpool.ExpectedTallyOutcome{}, err
	}
	if !bytes.Equal(wantBytes, body.Result) {
		return drpool.ExpectedTallyOutcome{}, errTallyMismatch(body.DRHash, "encoded result does not match what the tally script produces on the reveals")
	}

	expected := drpool.ComputeExpectedTallyOutcome(state, honest, errorPKHs)
	if !samePKHSet(expected.OutOfConsensus, body.OutOfConsensus) {
		return drpool.ExpectedTallyOutcome{}, errTallyMismatch(body.DRHash, "out_of_consensus does not match the computed set")
	}
	if !samePKHSet(expected.ErrorCommitters, body.ErrorCommitters) {
		return drpool.ExpectedTallyOutcome{}, errTallyMismatch(body.DRHash, "error_committers does not match the computed set")
	}
	var gotRewards chaintypes.Nanowits
	for _, out := range body.Outputs {
		gotRewards += out.Value
	}
	var wantRewards int64
	for _, v := range expected.HonestRewards {
		wantRewards += v
	}
	if int64(gotRewards) != wantRewards+expected.ChangeToCreator {
		return drpool.ExpectedTallyOutcome{}, errTallyMismatch(body.DRHash, "reward outputs do not match the expected honest payout")
	}
	return expected, nil
}

// percentageOf returns n/total as a whole percentage, 0 when total is 0.
func percentageOf(n, total int) int {
	if total == 0 {
		return 0
	}
	return n * 100 / total
}

// samePKHSet reports whether a and b contain the same PKHs, ignoring
// order (a Tally transaction's declared sets aren't required to be
// sorted).
func samePKHSet(a, b []chaintypes.PublicKeyHash) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[chaintypes.PublicKeyHash]int, len(a))
	for _, pkh := range a {
		seen[pkh]++
	}
	for _, pkh := range b {
		if seen[pkh] == 0 {
			return false
		}
		seen[pkh]--
	}
	return true
}

// consensusCommitters reports which of nonErrorPKHs survive the tally
// script's first array-filter call, which is where a Witnet tally script
// drops minority/outlier reveals before reducing (spec.md §4.1). A script
// with no filter call (a plain reducer, e.g. over a single-source DR)
// treats every non-error revealer as in consensus.
func consensusCommitters(nonErrorPKHs []chaintypes.PublicKeyHash, nonErrorValues []radon.Value, script radon.Script, report radon.ExecutionReport) []chaintypes.PublicKeyHash {
	filterIdx := -1
	for i, call := range script {
		if call.Op == radon.OpArrayFilter {
			filterIdx = i
			break
		}
	}
	if filterIdx == -1 || filterIdx+1 >= len(report.PartialResults) {
		return append([]chaintypes.PublicKeyHash(nil), nonErrorPKHs...)
	}
	survivors := report.PartialResults[filterIdx+1]
	if survivors.Kind() != radon.KindArray {
		return nil
	}
	kept := survivors.Items()
	var honest []chaintypes.PublicKeyHash
	for i, pkh := range nonErrorPKHs {
		for _, k := range kept {
			if nonErrorValues[i].Equal(k) {
				honest = append(honest, pkh)
				break
			}
		}
	}
	return honest
}

func checkUnstake(tx chaintypes.Transaction, pending *[]pendingSignature) error {
	body := tx.Unstake
	txHash, err := tx.Hash()
	if err != nil {
		return err
	}
	message, err := tx.SigningHash()
	if err != nil {
		return err
	}
	*pending = append(*pending, pendingSignature{
		txHash: txHash, inputIdx: 0, publicKey: body.Withdrawer[:], signature: body.Signature, message: message,
	})
	return nil
}
