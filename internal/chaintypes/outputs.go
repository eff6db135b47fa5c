package chaintypes

import "github.com/rawblock/witnet-core/internal/radon"

// OutputPointer identifies a transaction output: (transaction_hash,
// output_index).
type OutputPointer struct {
	TransactionHash Hash
	OutputIndex     uint32
}

func (p OutputPointer) String() string {
	return p.TransactionHash.Hex() + ":" + uitoa(p.OutputIndex)
}

func uitoa(n uint32) string {
	if n == 0 {
		return "0"
	}
	var buf [10]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

// ValueTransferOutput pays `Value` nanowits to PKH, unspendable before
// TimeLock (a unix timestamp; zero means no lock). Invariant: Value > 0.
type ValueTransferOutput struct {
	PKH      PublicKeyHash
	Value    Nanowits
	TimeLock int64
}

// IsSpendableAt reports whether the output's time lock has passed at the
// given unix timestamp.
func (o ValueTransferOutput) IsSpendableAt(unixNow int64) bool {
	return o.TimeLock == 0 || unixNow >= o.TimeLock
}

// RADRetrieval is one data-source leg of a data request's retrieval stage.
type RADRetrieval struct {
	Kind   string // e.g. "HTTP-GET", "HTTP-POST", "RNG"
	URL    string
	Script radon.Script
}

// DataRequestOutput is the embedded data-request specification carried by a
// DataRequest transaction (spec.md §3). Invariants enforced by
// drpool/validator, not by this type: Witnesses >= 1 (in fact > 1, a
// single-witness DR is rejected per spec.md §8); per-witness reward after
// fees > 0; CollateralAmount >= network minimum; Retrieve non-empty; all
// embedded scripts parse.
type DataRequestOutput struct {
	Retrieve                  []RADRetrieval
	Aggregate                 radon.Script
	Tally                     radon.Script
	Witnesses                 uint32
	CommitFee                 Nanowits
	RevealFee                 Nanowits
	TallyFee                  Nanowits
	CollateralAmount          Nanowits
	MinConsensusPercentage    uint32 // strictly in (50, 100)
	Value                     Nanowits
}

// RewardPerWitness returns the nanowits each honest witness earns,
// excluding collateral, per spec.md §4.2's reward formula: (value -
// tally_fee - witnesses*(commit_fee+reveal_fee)) / witnesses, integer
// division. Collateral is returned on top of this to the witness that
// posted it (see TotalPayoutPerWitness).
func (d DataRequestOutput) RewardPerWitness() int64 {
	w := int64(d.Witnesses)
	if w == 0 {
		return 0
	}
	gross := int64(d.Value) - int64(d.TallyFee) - w*(int64(d.CommitFee)+int64(d.RevealFee))
	return gross / w
}

// TotalPayoutPerWitness is RewardPerWitness plus the collateral returned to
// an honest witness — the figure actually paid out in a Tally output
// (spec.md §8 scenario A: 52 reward + 1_000_000_000 collateral).
func (d DataRequestOutput) TotalPayoutPerWitness() int64 {
	return d.RewardPerWitness() + int64(d.CollateralAmount)
}

// TallyChange is the nanowits returned to the DR creator when fewer than
// `witnesses` witnesses end up honest: reward * (witnesses - honestCount),
// per spec.md §4.2's tie-break rule.
func (d DataRequestOutput) TallyChange(honestCount int) int64 {
	missing := int64(d.Witnesses) - int64(honestCount)
	if missing <= 0 {
		return 0
	}
	return d.RewardPerWitness() * missing
}
