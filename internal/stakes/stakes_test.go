package stakes

import (
	"testing"

	"github.com/rawblock/witnet-core/internal/chaintypes"
)

func pkh(b byte) chaintypes.PublicKeyHash {
	var p chaintypes.PublicKeyHash
	p[0] = b
	return p
}

func TestAddStakeBelowMinimumRejected(t *testing.T) {
	tr := New(1000)
	key := StakeKey{Validator: pkh(1), Withdrawer: pkh(2)}
	if err := tr.AddStake(key, 999, 10); err == nil {
		t.Fatalf("expected rejection below minimum")
	}
	if err := tr.AddStake(key, 1000, 10); err != nil {
		t.Fatalf("expected stake of exactly minimum to be accepted: %v", err)
	}
}

func TestAddStakeWeightedEpoch(t *testing.T) {
	tr := New(100)
	key := StakeKey{Validator: pkh(1), Withdrawer: pkh(2)}
	if err := tr.AddStake(key, 100, 10); err != nil {
		t.Fatal(err)
	}
	if err := tr.AddStake(key, 300, 50); err != nil {
		t.Fatal(err)
	}
	entry, ok := tr.Get(key)
	if !ok {
		t.Fatal("expected entry")
	}
	// (100*10 + 300*50) / 400 = (1000+15000)/400 = 40
	if entry.Epochs[CapabilityMining] != 40 {
		t.Fatalf("expected weighted epoch 40, got %d", entry.Epochs[CapabilityMining])
	}
	if entry.Coins != 400 {
		t.Fatalf("expected coins 400, got %d", entry.Coins)
	}
}

func TestRemoveStakeResidueRules(t *testing.T) {
	tr := New(100)
	key := StakeKey{Validator: pkh(1), Withdrawer: pkh(2)}
	if err := tr.AddStake(key, 500, 1); err != nil {
		t.Fatal(err)
	}
	if err := tr.RemoveStake(key, 450); err == nil {
		t.Fatalf("expected residue-below-minimum rejection (residue 50)")
	}
	if err := tr.RemoveStake(key, 500); err != nil {
		t.Fatalf("expected full withdrawal to succeed: %v", err)
	}
	if _, ok := tr.Get(key); ok {
		t.Fatalf("expected entry to be gone after full withdrawal")
	}
}

func TestUseStakeResetsOnlyOneCapability(t *testing.T) {
	tr := New(10)
	key := StakeKey{Validator: pkh(1), Withdrawer: pkh(2)}
	if err := tr.AddStake(key, 100, 5); err != nil {
		t.Fatal(err)
	}
	if err := tr.UseStake(key, CapabilityMining, 20); err != nil {
		t.Fatal(err)
	}
	entry, _ := tr.Get(key)
	if entry.Epochs[CapabilityMining] != 20 {
		t.Fatalf("expected mining epoch reset to 20, got %d", entry.Epochs[CapabilityMining])
	}
	if entry.Epochs[CapabilityWitnessing] != 5 {
		t.Fatalf("expected witnessing epoch untouched at 5, got %d", entry.Epochs[CapabilityWitnessing])
	}
}

func TestPowerSaturatesAtMaxAgeAndZero(t *testing.T) {
	tr := New(10)
	key := StakeKey{Validator: pkh(1), Withdrawer: pkh(2)}
	if err := tr.AddStake(key, 2_000_000_000, 100); err != nil {
		t.Fatal(err)
	}
	if p := tr.Power(key, CapabilityMining, 50, 1000, 1_000_000_000); p != 0 {
		t.Fatalf("expected zero power when epoch precedes entry epoch, got %d", p)
	}
	p := tr.Power(key, CapabilityMining, 10_000, 1000, 1_000_000_000)
	// age = min(10000-100, 1000) = 1000; power = 1000*2 = 2000
	if p != 2000 {
		t.Fatalf("expected power 2000 (age capped at maxAge), got %d", p)
	}
}

func TestRankOrdersDescendingByPower(t *testing.T) {
	tr := New(1)
	keyA := StakeKey{Validator: pkh(1), Withdrawer: pkh(1)}
	keyB := StakeKey{Validator: pkh(2), Withdrawer: pkh(2)}
	if err := tr.AddStake(keyA, 1_000_000_000, 0); err != nil {
		t.Fatal(err)
	}
	if err := tr.AddStake(keyB, 5_000_000_000, 0); err != nil {
		t.Fatal(err)
	}
	ranked := tr.Rank(CapabilityMining, 100, 1000, 1_000_000_000)
	if len(ranked) != 2 || ranked[0].Key != keyB {
		t.Fatalf("expected keyB (higher stake) ranked first, got %+v", ranked)
	}
}

func TestCensusStrategies(t *testing.T) {
	ranked := []RankedEntry{{Power: 5}, {Power: 4}, {Power: 3}, {Power: 2}, {Power: 1}}
	if got := len(CensusTake(ranked, 2)); got != 2 {
		t.Fatalf("expected Take(2) to return 2 entries, got %d", got)
	}
	if got := len(CensusStepBy(ranked, 2)); got != 3 {
		t.Fatalf("expected StepBy(2) over 5 entries to return 3, got %d", got)
	}
	if got := len(CensusEvenly(ranked, 2)); got != 2 {
		t.Fatalf("expected Evenly(2) to return 2, got %d", got)
	}
}
