// Package reputation implements the expiring-coin reputation accounting
// that drives witness eligibility: the Total Reputation Set (TRS), the
// Active Reputation Set (ARS), and the engine that ties them together on
// every block consolidation.
package reputation

import (
	"github.com/rawblock/witnet-core/internal/chaintypes"
	"github.com/rawblock/witnet-core/pkg/consensusconsts"
)

// Outcome classifies one identity's reveal outcome for a single
// consolidated tally. An identity can accumulate more than one outcome
// across several tallies consolidated in the same block; WitnessTally
// carries per-epoch counts rather than a single enum for that reason.
type WitnessTally struct {
	Truths uint32
	Lies   uint32
	Errors uint32
}

// classify reduces a WitnessTally to the single bucket gain/penalize care
// about: a liar (any lie at all) is penalized and excluded from the honest
// gain regardless of how many truths it also has; an identity with only
// errors is excluded from the gain without being penalized; everyone else
// with at least one truth is honest.
func (w WitnessTally) classify() (liar, errored, honest bool) {
	switch {
	case w.Lies > 0:
		return true, false, false
	case w.Errors > 0:
		return false, true, false
	case w.Truths > 0:
		return false, false, true
	default:
		return false, false, false
	}
}

// ConsolidationInput is what the consolidator hands the engine once per
// block: the alpha advance for this block (one witnessing act per reveal
// folded into a tally) and each revealer's outcome.
type ConsolidationInput struct {
	AlphaDiff    chaintypes.Alpha
	PerPKH       map[chaintypes.PublicKeyHash]WitnessTally
	BlockMinerPKH chaintypes.PublicKeyHash
}

// Engine bundles TRS, ARS, the running alpha clock, and the bounty
// carried over from a round with zero honest revealers.
type Engine struct {
	TRS             *TRS
	ARS             *ARS
	CurrentAlpha    chaintypes.Alpha
	ExtraReputation uint64
	totalIssued     uint64

	constants consensusconsts.ConsensusConstants
}

// NewEngine constructs an Engine at alpha 0 using the given constants.
func NewEngine(constants consensusconsts.ConsensusConstants) *Engine {
	return &Engine{
		TRS:       NewTRS(),
		ARS:       NewARS(constants.ActivityPeriod),
		constants: constants,
	}
}

// Update runs the eight-step reputation update described for block
// consolidation, advancing CurrentAlpha and mutating TRS/ARS/
// ExtraReputation in place.
func (e *Engine) Update(input ConsolidationInput) {
	oldAlpha := e.CurrentAlpha
	newAlpha := oldAlpha + input.AlphaDiff

	expiredRep := e.TRS.Expire(oldAlpha)

	issuedRep := e.issuanceSchedule(oldAlpha, newAlpha)

	var penalizedRep uint64
	for pkh, tally := range input.PerPKH {
		if tally.Lies == 0 {
			continue
		}
		current := float64(e.TRS.Total(pkh))
		toSubtract := current * (1 - ipow(e.constants.ReputationPenalizationFactor, tally.Lies))
		if toSubtract < 0 {
			toSubtract = 0
		}
		penalizedRep += e.TRS.Penalize(pkh, uint64(toSubtract))
	}

	bounty := e.ExtraReputation + expiredRep + issuedRep + penalizedRep

	var honest []chaintypes.PublicKeyHash
	activity := make(map[chaintypes.PublicKeyHash]struct{}, len(input.PerPKH)+1)
	for pkh, tally := range input.PerPKH {
		liar, _, isHonest := tally.classify()
		activity[pkh] = struct{}{}
		if isHonest && !liar {
			honest = append(honest, pkh)
		}
	}
	activity[input.BlockMinerPKH] = struct{}{}

	if len(honest) == 0 {
		e.ExtraReputation = bounty
	} else {
		share := bounty / uint64(len(honest))
		remainder := bounty - share*uint64(len(honest))
		if share > 0 {
			diffs := make(map[chaintypes.PublicKeyHash]Reputation, len(honest))
			for _, pkh := range honest {
				diffs[pkh] = Reputation(share)
			}
			e.TRS.Gain(newAlpha+e.constants.ReputationExpireAlphaDiff, diffs)
		}
		e.ExtraReputation = remainder
	}

	e.ARS.Push(activity)
	e.CurrentAlpha = newAlpha
}

// TotalActiveReputation sums TRS reputation across every current ARS
// member — the denominator of the mining-eligibility target (spec.md
// §4.6: target = min(mining_replication, ars_size) × own_rep / total_ars_rep).
func (e *Engine) TotalActiveReputation() uint64 {
	var total uint64
	for _, pkh := range e.ARS.Members() {
		total += uint64(e.TRS.Total(pkh))
	}
	return total
}

// issuanceSchedule returns the reputation to mint for the alpha advance
// [oldAlpha, newAlpha), a monotone schedule that stops once total issuance
// reaches ReputationIssuanceStop.
func (e *Engine) issuanceSchedule(oldAlpha, newAlpha chaintypes.Alpha) uint64 {
	if e.totalIssued >= e.constants.ReputationIssuanceStop {
		return 0
	}
	steps := uint64(newAlpha - oldAlpha)
	issuable := steps * e.constants.ReputationIssuance
	remaining := e.constants.ReputationIssuanceStop - e.totalIssued
	if issuable > remaining {
		issuable = remaining
	}
	e.totalIssued += issuable
	return issuable
}

// ipow computes base^exp for a small non-negative integer exponent,
// avoiding a math.Pow dependency for what's always a tiny exponent (the
// number of lies by one identity in one epoch).
func ipow(base float64, exp uint32) float64 {
	result := 1.0
	for i := uint32(0); i < exp; i++ {
		result *= base
	}
	return result
}
