package reputation

import (
	"testing"

	"github.com/rawblock/witnet-core/internal/chaintypes"
	"github.com/rawblock/witnet-core/pkg/consensusconsts"
)

func testConstants() consensusconsts.ConsensusConstants {
	c := consensusconsts.Mainnet()
	c.ReputationIssuance = 1
	c.ReputationIssuanceStop = 1000
	c.ReputationPenalizationFactor = 0.5
	c.ReputationExpireAlphaDiff = 100
	c.ActivityPeriod = 3
	return c
}

func pkh(b byte) chaintypes.PublicKeyHash {
	var p chaintypes.PublicKeyHash
	p[0] = b
	return p
}

func TestTRSExpirationIsIdempotent(t *testing.T) {
	trs := NewTRS()
	id := pkh(1)
	trs.Gain(10, map[chaintypes.PublicKeyHash]Reputation{id: 5})
	first := trs.Expire(20)
	second := trs.Expire(20)
	if first != 5 {
		t.Fatalf("expected 5 expired, got %d", first)
	}
	if second != 0 {
		t.Fatalf("expected idempotent re-expire to find nothing, got %d", second)
	}
}

func TestTRSCacheConsistencyAfterPenalize(t *testing.T) {
	trs := NewTRS()
	id := pkh(1)
	trs.Gain(10, map[chaintypes.PublicKeyHash]Reputation{id: 100})
	trs.Gain(20, map[chaintypes.PublicKeyHash]Reputation{id: 50})
	subtracted := trs.Penalize(id, 120)
	if subtracted != 120 {
		t.Fatalf("expected 120 subtracted, got %d", subtracted)
	}
	if trs.Total(id) != 30 {
		t.Fatalf("expected 30 remaining, got %d", trs.Total(id))
	}
}

func TestPenalizeNeverGoesNegative(t *testing.T) {
	trs := NewTRS()
	id := pkh(1)
	trs.Gain(10, map[chaintypes.PublicKeyHash]Reputation{id: 10})
	subtracted := trs.Penalize(id, 1000)
	if subtracted != 10 {
		t.Fatalf("expected penalize to cap at current total 10, got %d", subtracted)
	}
	if trs.Total(id) != 0 {
		t.Fatalf("expected identity at zero, got %d", trs.Total(id))
	}
}

func TestEngineUpdateZeroHonestCarriesOverBounty(t *testing.T) {
	e := NewEngine(testConstants())
	miner := pkh(9)
	input := ConsolidationInput{
		AlphaDiff:     1,
		PerPKH:        map[chaintypes.PublicKeyHash]WitnessTally{pkh(1): {Errors: 1}},
		BlockMinerPKH: miner,
	}
	e.Update(input)
	if e.ExtraReputation == 0 {
		t.Fatalf("expected all bounty to carry over when no honest revealers, got extra=%d", e.ExtraReputation)
	}
	if e.TRS.Total(pkh(1)) != 0 {
		t.Fatalf("erroring identity should gain nothing")
	}
}

func TestEngineUpdatePenalizesLiars(t *testing.T) {
	e := NewEngine(testConstants())
	liar := pkh(2)
	e.TRS.Gain(1000, map[chaintypes.PublicKeyHash]Reputation{liar: 100})
	input := ConsolidationInput{
		AlphaDiff:     1,
		PerPKH:        map[chaintypes.PublicKeyHash]WitnessTally{liar: {Lies: 1}, pkh(3): {Truths: 1}},
		BlockMinerPKH: pkh(9),
	}
	e.Update(input)
	if e.TRS.Total(liar) >= 100 {
		t.Fatalf("expected liar's reputation to drop below 100, got %d", e.TRS.Total(liar))
	}
	if e.TRS.Total(pkh(3)) == 0 {
		t.Fatalf("expected honest identity to gain reputation from the bounty")
	}
}

func TestTotalActiveReputationSumsOnlyARSMembers(t *testing.T) {
	e := NewEngine(testConstants())
	e.TRS.Gain(0, map[chaintypes.PublicKeyHash]Reputation{pkh(1): 40, pkh(2): 60})
	e.ARS.Push(map[chaintypes.PublicKeyHash]struct{}{pkh(1): {}})
	if got := e.TotalActiveReputation(); got != 40 {
		t.Fatalf("expected only pkh(1)'s 40 to count, got %d", got)
	}
}

func TestARSMembershipSlidesWithWindow(t *testing.T) {
	ars := NewARS(2)
	ars.Push(map[chaintypes.PublicKeyHash]struct{}{pkh(1): {}})
	ars.Push(map[chaintypes.PublicKeyHash]struct{}{pkh(2): {}})
	if !ars.IsMember(pkh(1)) || !ars.IsMember(pkh(2)) {
		t.Fatalf("expected both members present within window of 2")
	}
	ars.Push(map[chaintypes.PublicKeyHash]struct{}{pkh(3): {}})
	if ars.IsMember(pkh(1)) {
		t.Fatalf("expected pkh(1) evicted once window slides past capacity")
	}
}
