// Package drpool drives the data-request lifecycle state machine: Commit
// → Reveal → Tally, advanced by block consolidations rather than a
// separate timer (spec.md §4.2). Callers (the block validator) are
// responsible for cryptographic/economic checks that cross package
// boundaries — VRF eligibility, collateral maturity against the UTXO
// pool, stake requirements — and pass the verdicts in; drpool itself only
// owns the stage bookkeeping and the aggregation maps.
package drpool

import "github.com/rawblock/witnet-core/internal/chaintypes"

// Stage is a DR's position in the Commit → Reveal → Tally pipeline.
type Stage int

const (
	StageCommit Stage = iota
	StageReveal
	StageTally
)

func (s Stage) String() string {
	switch s {
	case StageCommit:
		return "Commit"
	case StageReveal:
		return "Reveal"
	case StageTally:
		return "Tally"
	default:
		return "Unknown"
	}
}

// CommitRecord is one witness's accepted commitment.
type CommitRecord struct {
	CommitmentHash   chaintypes.Hash
	CollateralInputs []chaintypes.Input
}

// RevealRecord is one witness's disclosed result, keyed by the same PKH
// that committed to it.
type RevealRecord struct {
	Result []byte
}

// State is one live data request's tracked progress.
type State struct {
	DRHash chaintypes.Hash
	Request chaintypes.DataRequestOutput
	MinerPKH chaintypes.PublicKeyHash // PKH of the miner who included the DR transaction

	CreationEpoch chaintypes.Epoch
	Stage         Stage

	CurrentCommitRound uint32
	CurrentRevealRound uint32

	Commits map[chaintypes.PublicKeyHash]CommitRecord
	Reveals map[chaintypes.PublicKeyHash]RevealRecord
}

// Pool tracks every live data request.
type Pool struct {
	states map[chaintypes.Hash]*State

	extraCommitRounds uint32
	extraRevealRounds uint32
}

// New constructs an empty Pool. extraCommitRounds/extraRevealRounds come
// from ConsensusConstants and bound how many rounds a DR waits before a
// forced stage advance even without quorum.
func New(extraCommitRounds, extraRevealRounds uint32) *Pool {
	return &Pool{
		states:            make(map[chaintypes.Hash]*State),
		extraCommitRounds: extraCommitRounds,
		extraRevealRounds: extraRevealRounds,
	}
}

// InsertDataRequest registers a newly-consolidated DR transaction in the
// Commit stage.
func (p *Pool) InsertDataRequest(drHash chaintypes.Hash, dr chaintypes.DataRequestOutput, minerPKH chaintypes.PublicKeyHash, creationEpoch chaintypes.Epoch) {
	p.states[drHash] = &State{
		DRHash:        drHash,
		Request:       dr,
		MinerPKH:      minerPKH,
		CreationEpoch: creationEpoch,
		Stage:         StageCommit,
		Commits:       make(map[chaintypes.PublicKeyHash]CommitRecord),
		Reveals:       make(map[chaintypes.PublicKeyHash]RevealRecord),
	}
}

// Get returns the live state for drHash, if any.
func (p *Pool) Get(drHash chaintypes.Hash) (*State, bool) {
	s, ok := p.states[drHash]
	return s, ok
}

// SubmitCommit records a witness's commitment once the caller has already
// verified VRF eligibility and collateral maturity/amount — drpool only
// enforces the state-machine invariants: right stage, no duplicate
// committer.
func (p *Pool) SubmitCommit(drHash chaintypes.Hash, committer chaintypes.PublicKeyHash, commitmentHash chaintypes.Hash, collateralInputs []chaintypes.Input) error {
	s, ok := p.states[drHash]
	if !ok {
		return errUnknownDR(drHash)
	}
	if s.Stage != StageCommit {
		return errWrongStage(drHash, StageCommit, s.Stage)
	}
	if _, dup := s.Commits[committer]; dup {
		return errDuplicateCommit(drHash, committer)
	}
	s.Commits[committer] = CommitRecord{CommitmentHash: commitmentHash, CollateralInputs: collateralInputs}
	return nil
}

// SubmitReveal records a witness's disclosed result once the caller has
// verified it matches the committer's earlier commitment hash.
func (p *Pool) SubmitReveal(drHash chaintypes.Hash, revealer chaintypes.PublicKeyHash, result []byte) error {
	s, ok := p.states[drHash]
	if !ok {
		return errUnknownDR(drHash)
	}
	if s.Stage != StageReveal {
		return errWrongStage(drHash, StageReveal, s.Stage)
	}
	if _, committed := s.Commits[revealer]; !committed {
		return errRevealWithoutCommit(drHash, revealer)
	}
	if _, dup := s.Reveals[revealer]; dup {
		return errDuplicateReveal(drHash, revealer)
	}
	s.Reveals[revealer] = RevealRecord{Result: result}
	return nil
}

// AdvanceResult reports what AdvanceEpoch did to one DR.
type AdvanceResult struct {
	DRHash        chaintypes.Hash
	Transitioned  bool
	NewStage      Stage
	TooFewWitnesses bool // set when Commit→Reveal fires with |commits| < witnesses
}

// AdvanceEpoch ticks every live DR's stage counter and applies forced or
// quorum-triggered stage transitions, per spec.md §4.2:
//   - Commit → Reveal when |commits| >= witnesses, or the commit rounds
//     are exhausted (in which case TooFewWitnesses is set so a later Tally
//     can carry the too-few-witnesses error path).
//   - Reveal → Tally when |reveals| >= |commits|, or the reveal rounds
//     are exhausted.
func (p *Pool) AdvanceEpoch() []AdvanceResult {
	var results []AdvanceResult
	for drHash, s := range p.states {
		switch s.Stage {
		case StageCommit:
			quorum := uint32(len(s.Commits)) >= s.Request.Witnesses
			exhausted := s.CurrentCommitRound > p.extraCommitRounds
			if quorum || exhausted {
				s.Stage = StageReveal
				s.CurrentCommitRound = 0
				results = append(results, AdvanceResult{
					DRHash:          drHash,
					Transitioned:    true,
					NewStage:        StageReveal,
					TooFewWitnesses: !quorum,
				})
			} else {
				s.CurrentCommitRound++
			}
		case StageReveal:
			quorum := uint32(len(s.Reveals)) >= uint32(len(s.Commits))
			exhausted := s.CurrentRevealRound > p.extraRevealRounds
			if quorum || exhausted {
				s.Stage = StageTally
				s.CurrentRevealRound = 0
				results = append(results, AdvanceResult{DRHash: drHash, Transitioned: true, NewStage: StageTally})
			} else {
				s.CurrentRevealRound++
			}
		}
	}
	return results
}

// Remove drops a DR from the live set, called once its Tally transaction
// has been consolidated.
func (p *Pool) Remove(drHash chaintypes.Hash) {
	delete(p.states, drHash)
}

// Live returns every currently-tracked DR hash.
func (p *Pool) Live() []chaintypes.Hash {
	out := make([]chaintypes.Hash, 0, len(p.states))
	for h := range p.states {
		out = append(out, h)
	}
	return out
}
