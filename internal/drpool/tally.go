package drpool

import "github.com/rawblock/witnet-core/internal/chaintypes"

// ExpectedTallyOutcome is what a Tally transaction must match exactly,
// computed from a DR's commits/reveals — the validator (which has access
// to RADON script execution to actually produce the tally result) uses
// this as the economic half of Tally verification.
type ExpectedTallyOutcome struct {
	HonestRewards   map[chaintypes.PublicKeyHash]int64 // reward + collateral per honest revealer
	OutOfConsensus  []chaintypes.PublicKeyHash
	ErrorCommitters []chaintypes.PublicKeyHash
	ChangeToCreator int64
}

// ComputeExpectedTallyOutcome partitions a DR's revealers into honest/
// out-of-consensus/erroring sets and computes the reward each honest
// revealer is owed plus the change returned to the DR creator, per
// spec.md §4.2's reward/tie-break formulas.
func ComputeExpectedTallyOutcome(s *State, honest, erroring []chaintypes.PublicKeyHash) ExpectedTallyOutcome {
	totalPerWitness := s.Request.TotalPayoutPerWitness()

	honestSet := make(map[chaintypes.PublicKeyHash]struct{}, len(honest))
	for _, pkh := range honest {
		honestSet[pkh] = struct{}{}
	}
	errorSet := make(map[chaintypes.PublicKeyHash]struct{}, len(erroring))
	for _, pkh := range erroring {
		errorSet[pkh] = struct{}{}
	}

	var outOfConsensus []chaintypes.PublicKeyHash
	for committer := range s.Commits {
		if _, ok := honestSet[committer]; ok {
			continue
		}
		if _, ok := errorSet[committer]; ok {
			continue
		}
		outOfConsensus = append(outOfConsensus, committer)
	}

	rewards := make(map[chaintypes.PublicKeyHash]int64, len(honest))
	for _, pkh := range honest {
		rewards[pkh] = totalPerWitness
	}

	return ExpectedTallyOutcome{
		HonestRewards:   rewards,
		OutOfConsensus:  outOfConsensus,
		ErrorCommitters: append([]chaintypes.PublicKeyHash(nil), erroring...),
		ChangeToCreator: s.Request.TallyChange(len(honest)),
	}
}
