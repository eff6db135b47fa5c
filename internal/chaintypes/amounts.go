package chaintypes

import "fmt"

// Nanowits is the native on-chain value unit: 1 wit = NanowitsPerWit
// nanowits. Kept as a distinct integer type (rather than a bare int64) so
// unit mistakes show up as compile errors, the same guard the teacher's
// models.TxOut.Value comment gives satoshi amounts ("// in Satoshis").
type Nanowits uint64

// NanowitsPerWit is the conversion factor between wits and nanowits. It is
// also carried on pkg/consensusconsts.ConsensusConstants so callers that
// need the live network value (rather than this fixed reference constant)
// can thread it through explicitly.
const NanowitsPerWit = 1_000_000_000

// Wit renders n as a human-readable wit amount, rounded to 9 decimal places.
func (n Nanowits) Wit() float64 {
	return float64(n) / float64(NanowitsPerWit)
}

func (n Nanowits) String() string {
	return fmt.Sprintf("%d nanoWIT", uint64(n))
}

// SaturatingSub returns n-m, floored at zero instead of wrapping — used by
// the stakes tracker's remove_stake (spec.md §4.4) where an over-large
// withdrawal must clamp to zero rather than underflow.
func (n Nanowits) SaturatingSub(m Nanowits) Nanowits {
	if m >= n {
		return 0
	}
	return n - m
}
