package validator

import (
	"testing"

	"github.com/rawblock/witnet-core/internal/chaintypes"
	"github.com/rawblock/witnet-core/internal/radon"
)

// modeScript is the canonical shape of a Witnet tally script for scalar
// results: filter out the minority, reduce the survivors to a single
// value.
var modeScript = radon.Script{
	{Op: radon.OpArrayFilter, Args: []radon.Value{radon.Integer(int64(radon.FilterModeFilter))}},
	{Op: radon.OpArrayReduce, Args: []radon.Value{radon.Integer(int64(radon.ReducerMode))}},
}

func tallyDRContext(t *testing.T, witnesses uint32) (*Context, chaintypes.Hash) {
	t.Helper()
	ctx := testContext(pkhFromSeed(0))
	dr := chaintypes.DataRequestOutput{
		Retrieve:               []chaintypes.RADRetrieval{{Kind: "HTTP-GET", URL: "https://example.test"}},
		Tally:                  modeScript,
		Witnesses:              witnesses,
		Value:                  110,
		CommitFee:              1,
		RevealFee:              1,
		TallyFee:               1,
		CollateralAmount:       1_000_000_000,
		MinConsensusPercentage: 51,
	}
	drHash := hashFromSeed(7)
	ctx.DRPool.InsertDataRequest(drHash, dr, pkhFromSeed(9), 0)
	return ctx, drHash
}

func hashFromSeed(b byte) chaintypes.Hash {
	var h chaintypes.Hash
	h[0] = b
	return h
}

func revealResult(t *testing.T, v radon.Value) []byte {
	t.Helper()
	b, err := v.MarshalWire()
	if err != nil {
		t.Fatal(err)
	}
	return b
}

// TestCheckTallyScenarioA mirrors spec.md §8 scenario A: both witnesses
// reveal the same value, both are honest, no one is slashed.
func TestCheckTallyScenarioA(t *testing.T) {
	ctx, drHash := tallyDRContext(t, 2)
	w1, w2 := pkhFromSeed(1), pkhFromSeed(2)
	if err := ctx.DRPool.SubmitCommit(drHash, w1, hashFromSeed(10), nil); err != nil {
		t.Fatal(err)
	}
	if err := ctx.DRPool.SubmitCommit(drHash, w2, hashFromSeed(11), nil); err != nil {
		t.Fatal(err)
	}
	ctx.DRPool.AdvanceEpoch()
	if err := ctx.DRPool.SubmitReveal(drHash, w1, revealResult(t, radon.Integer(42))); err != nil {
		t.Fatal(err)
	}
	if err := ctx.DRPool.SubmitReveal(drHash, w2, revealResult(t, radon.Integer(42))); err != nil {
		t.Fatal(err)
	}
	ctx.DRPool.AdvanceEpoch()

	tally := chaintypes.Transaction{
		Kind: chaintypes.TxTally,
		Tally: &chaintypes.TallyBody{
			DRHash: drHash,
			Result: revealResult(t, radon.Integer(42)),
			Outputs: []chaintypes.ValueTransferOutput{
				{PKH: w1, Value: 1_000_000_052},
				{PKH: w2, Value: 1_000_000_052},
			},
		},
	}

	outcome, err := checkTally(tally, ctx)
	if err != nil {
		t.Fatalf("expected a matching tally to be accepted: %v", err)
	}
	if len(outcome.OutOfConsensus) != 0 {
		t.Fatalf("expected no out-of-consensus committers, got %+v", outcome.OutOfConsensus)
	}
	if outcome.HonestRewards[w1] != 1_000_000_052 || outcome.HonestRewards[w2] != 1_000_000_052 {
		t.Fatalf("expected both witnesses to be paid 1_000_000_052, got %+v", outcome.HonestRewards)
	}
}

// TestCheckTallyScenarioB mirrors spec.md §8 scenario B: one witness
// dissents from the mode and must be slashed, not paid.
func TestCheckTallyScenarioB(t *testing.T) {
	ctx, drHash := tallyDRContext(t, 2)
	w1, w2 := pkhFromSeed(1), pkhFromSeed(2)
	if err := ctx.DRPool.SubmitCommit(drHash, w1, hashFromSeed(10), nil); err != nil {
		t.Fatal(err)
	}
	if err := ctx.DRPool.SubmitCommit(drHash, w2, hashFromSeed(11), nil); err != nil {
		t.Fatal(err)
	}
	ctx.DRPool.AdvanceEpoch()
	if err := ctx.DRPool.SubmitReveal(drHash, w1, revealResult(t, radon.Integer(42))); err != nil {
		t.Fatal(err)
	}
	if err := ctx.DRPool.SubmitReveal(drHash, w2, revealResult(t, radon.Integer(0))); err != nil {
		t.Fatal(err)
	}
	ctx.DRPool.AdvanceEpoch()

	state, _ := ctx.DRPool.Get(drHash)
	report := radon.Run(radon.ActivationGates{}, radon.Array([]radon.Value{radon.Integer(42), radon.Integer(0)}), state.Request.Tally, radon.ReportSettings{TrackPartialResults: true})
	wantResult, err := report.Result.MarshalWire()
	if err != nil {
		t.Fatal(err)
	}

	honestTally := chaintypes.Transaction{
		Kind: chaintypes.TxTally,
		Tally: &chaintypes.TallyBody{
			DRHash:         drHash,
			Result:         wantResult,
			OutOfConsensus: []chaintypes.PublicKeyHash{w2},
			Outputs: []chaintypes.ValueTransferOutput{
				{PKH: w1, Value: 1_000_000_052},
			},
		},
	}
	outcome, err := checkTally(honestTally, ctx)
	if err != nil {
		t.Fatalf("expected the correctly-slashing tally to be accepted: %v", err)
	}
	if len(outcome.OutOfConsensus) != 1 || outcome.OutOfConsensus[0] != w2 {
		t.Fatalf("expected w2 alone to be out of consensus, got %+v", outcome.OutOfConsensus)
	}
	if _, paid := outcome.HonestRewards[w2]; paid {
		t.Fatalf("expected w2 to not be rewarded")
	}

	fraudTally := chaintypes.Transaction{
		Kind: chaintypes.TxTally,
		Tally: &chaintypes.TallyBody{
			DRHash: drHash,
			Result: wantResult,
			Outputs: []chaintypes.ValueTransferOutput{
				{PKH: w1, Value: 1_000_000_052},
				{PKH: w2, Value: 1_000_000_052},
			},
		},
	}
	if _, err := checkTally(fraudTally, ctx); err == nil {
		t.Fatalf("expected a tally that pays the dissenting witness to be rejected")
	}
}

// TestCheckTallyRejectsTamperedResult ensures the encoded result is
// checked against what the tally script actually produces, not just the
// reward bookkeeping.
func TestCheckTallyRejectsTamperedResult(t *testing.T) {
	ctx, drHash := tallyDRContext(t, 2)
	w1, w2 := pkhFromSeed(1), pkhFromSeed(2)
	ctx.DRPool.SubmitCommit(drHash, w1, hashFromSeed(10), nil)
	ctx.DRPool.SubmitCommit(drHash, w2, hashFromSeed(11), nil)
	ctx.DRPool.AdvanceEpoch()
	ctx.DRPool.SubmitReveal(drHash, w1, revealResult(t, radon.Integer(42)))
	ctx.DRPool.SubmitReveal(drHash, w2, revealResult(t, radon.Integer(42)))
	ctx.DRPool.AdvanceEpoch()

	tally := chaintypes.Transaction{
		Kind: chaintypes.TxTally,
		Tally: &chaintypes.TallyBody{
			DRHash: drHash,
			Result: revealResult(t, radon.Integer(99)), // doesn't match the mode of the reveals
			Outputs: []chaintypes.ValueTransferOutput{
				{PKH: w1, Value: 1_000_000_052},
				{PKH: w2, Value: 1_000_000_052},
			},
		},
	}
	if _, err := checkTally(tally, ctx); err == nil {
		t.Fatalf("expected a tampered tally result to be rejected")
	}
}

// TestCheckTallyUnknownDR ensures an unrelated DR hash is rejected.
func TestCheckTallyUnknownDR(t *testing.T) {
	ctx := testContext(pkhFromSeed(0))
	tally := chaintypes.Transaction{
		Kind:  chaintypes.TxTally,
		Tally: &chaintypes.TallyBody{DRHash: hashFromSeed(250)},
	}
	if _, err := checkTally(tally, ctx); err == nil {
		t.Fatalf("expected an unknown DR hash to be rejected")
	}
}
