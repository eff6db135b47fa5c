package validator

import (
	"encoding/binary"
	"math"

	"github.com/rawblock/witnet-core/internal/chaintypes"
)

// MiningTarget is the probability threshold a VRF proof must hash below to
// be eligible, per spec.md §4.6: min(replication_factor, ars_size) ×
// own_rep / total_active_rep. Returns 0 (nobody eligible) if there's no
// active reputation to divide by yet, which is true only before the
// bootstrap committee hands off to reputation-based mining.
func MiningTarget(ownRep, totalActiveRep uint64, replicationFactor uint32, arsSize int) float64 {
	if totalActiveRep == 0 {
		return 0
	}
	factor := replicationFactor
	if arsSize >= 0 && uint32(arsSize) < factor {
		factor = uint32(arsSize)
	}
	return float64(factor) * float64(ownRep) / float64(totalActiveRep)
}

// vrfProofValue maps a VRF proof to a uniform value in [0, 1) by hashing it
// and reading the first 8 bytes as a big-endian fraction of the uint64
// range — the same "hash output as eligibility dice roll" shape the VRF
// construction itself provides, without depending on a VRF library the
// example pool doesn't carry (see DESIGN.md).
func vrfProofValue(proof []byte) float64 {
	h := chaintypes.HashFromBytes(proof)
	n := binary.BigEndian.Uint64(h[:8])
	return float64(n) / float64(math.MaxUint64)
}

// VRFBelowTarget reports whether proof hashes below target.
func VRFBelowTarget(proof []byte, target float64) bool {
	return vrfProofValue(proof) < target
}
