package drpool

import (
	"testing"

	"github.com/rawblock/witnet-core/internal/chaintypes"
)

func pkh(b byte) chaintypes.PublicKeyHash {
	var p chaintypes.PublicKeyHash
	p[0] = b
	return p
}

func hash(b byte) chaintypes.Hash {
	var h chaintypes.Hash
	h[0] = b
	return h
}

func TestCommitRejectedAfterCommitStageCloses(t *testing.T) {
	p := New(2, 2)
	dr := chaintypes.DataRequestOutput{Witnesses: 2}
	drHash := hash(1)
	p.InsertDataRequest(drHash, dr, pkh(9), 0)

	// force through the commit stage without reaching quorum
	p.AdvanceEpoch()
	p.AdvanceEpoch()
	p.AdvanceEpoch()
	p.AdvanceEpoch()

	state, _ := p.Get(drHash)
	if state.Stage != StageReveal {
		t.Fatalf("expected forced advance to Reveal stage after exhausting commit rounds, got %s", state.Stage)
	}
	if err := p.SubmitCommit(drHash, pkh(1), hash(2), nil); err == nil {
		t.Fatalf("expected commit after stage close to be rejected")
	}
}

func TestDuplicateCommitRejected(t *testing.T) {
	p := New(2, 2)
	dr := chaintypes.DataRequestOutput{Witnesses: 2}
	drHash := hash(1)
	p.InsertDataRequest(drHash, dr, pkh(9), 0)
	if err := p.SubmitCommit(drHash, pkh(1), hash(2), nil); err != nil {
		t.Fatal(err)
	}
	if err := p.SubmitCommit(drHash, pkh(1), hash(3), nil); err == nil {
		t.Fatalf("expected duplicate commit to be rejected")
	}
}

func TestAdvanceOnQuorum(t *testing.T) {
	p := New(5, 5)
	dr := chaintypes.DataRequestOutput{Witnesses: 2}
	drHash := hash(1)
	p.InsertDataRequest(drHash, dr, pkh(9), 0)
	if err := p.SubmitCommit(drHash, pkh(1), hash(2), nil); err != nil {
		t.Fatal(err)
	}
	if err := p.SubmitCommit(drHash, pkh(2), hash(3), nil); err != nil {
		t.Fatal(err)
	}
	results := p.AdvanceEpoch()
	if len(results) != 1 || !results[0].Transitioned || results[0].TooFewWitnesses {
		t.Fatalf("expected a clean quorum-triggered advance, got %+v", results)
	}
}

func TestRevealRequiresPriorCommit(t *testing.T) {
	p := New(5, 5)
	dr := chaintypes.DataRequestOutput{Witnesses: 1}
	drHash := hash(1)
	p.InsertDataRequest(drHash, dr, pkh(9), 0)
	p.SubmitCommit(drHash, pkh(1), hash(2), nil)
	p.AdvanceEpoch()
	if err := p.SubmitReveal(drHash, pkh(2), []byte("result")); err == nil {
		t.Fatalf("expected reveal from a non-committer to be rejected")
	}
	if err := p.SubmitReveal(drHash, pkh(1), []byte("result")); err != nil {
		t.Fatalf("expected reveal from a committer to succeed: %v", err)
	}
}

func TestComputeExpectedTallyOutcomeScenarioA(t *testing.T) {
	dr := chaintypes.DataRequestOutput{
		Witnesses:        2,
		Value:            110,
		TallyFee:         1,
		CommitFee:        1,
		RevealFee:        1,
		CollateralAmount: 1_000_000_000,
	}
	s := &State{Request: dr, Commits: map[chaintypes.PublicKeyHash]CommitRecord{pkh(1): {}, pkh(2): {}}}
	outcome := ComputeExpectedTallyOutcome(s, []chaintypes.PublicKeyHash{pkh(1), pkh(2)}, nil)
	if outcome.HonestRewards[pkh(1)] != 1_000_000_052 {
		t.Fatalf("expected payout 1_000_000_052, got %d", outcome.HonestRewards[pkh(1)])
	}
	if len(outcome.OutOfConsensus) != 0 {
		t.Fatalf("expected no out-of-consensus committers, got %+v", outcome.OutOfConsensus)
	}
	if outcome.ChangeToCreator != 0 {
		t.Fatalf("expected zero change with full honest participation, got %d", outcome.ChangeToCreator)
	}
}
