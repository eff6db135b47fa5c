// Package stakes implements the coin-age-weighted staking power tracker:
// per-(validator, withdrawer) stake entries indexed four ways, queried for
// mining/witnessing power and ranked into a census for block/witness
// selection.
package stakes

import (
	"sort"

	"github.com/rawblock/witnet-core/internal/chaintypes"
)

// Capability distinguishes mining age from witnessing age on the same
// stake entry: use_stake resets one without disturbing the other.
type Capability int

const (
	CapabilityMining Capability = iota
	CapabilityWitnessing
)

// StakeKey identifies one stake entry: a validator operating it, owned by
// a withdrawer who can reclaim the coins.
type StakeKey struct {
	Validator  chaintypes.PublicKeyHash
	Withdrawer chaintypes.PublicKeyHash
}

// StakeEntry is (coins, per-capability epoch). The epoch for a capability
// is the *weighted* epoch described in spec: on add_stake, epoch_new =
// (coins_old*epoch_old + coins_added*epoch_added) / coins_total, applied to
// every capability's tracked epoch since they all share the same coin
// pool; use_stake resets a single capability's epoch without touching the
// others or the coin amount.
type StakeEntry struct {
	Coins  chaintypes.Nanowits
	Epochs map[Capability]chaintypes.Epoch
}

func newStakeEntry(coins chaintypes.Nanowits, epoch chaintypes.Epoch) *StakeEntry {
	return &StakeEntry{
		Coins: coins,
		Epochs: map[Capability]chaintypes.Epoch{
			CapabilityMining:      epoch,
			CapabilityWitnessing:  epoch,
		},
	}
}

// Tracker is the four-index stake store. A minimum-stake parameter (set at
// construction) gates both entry and exit: stakes below it are rejected,
// post-unstake residues below it are rejected unless they reach exactly
// zero.
type Tracker struct {
	minimum chaintypes.Nanowits

	byKey        map[StakeKey]*StakeEntry
	byValidator  map[chaintypes.PublicKeyHash]map[StakeKey]struct{}
	byWithdrawer map[chaintypes.PublicKeyHash]map[StakeKey]struct{}
}

// New constructs an empty Tracker with the given minimum stake.
func New(minimum chaintypes.Nanowits) *Tracker {
	return &Tracker{
		minimum:      minimum,
		byKey:        make(map[StakeKey]*StakeEntry),
		byValidator:  make(map[chaintypes.PublicKeyHash]map[StakeKey]struct{}),
		byWithdrawer: make(map[chaintypes.PublicKeyHash]map[StakeKey]struct{}),
	}
}

func (t *Tracker) index(key StakeKey) {
	if t.byValidator[key.Validator] == nil {
		t.byValidator[key.Validator] = make(map[StakeKey]struct{})
	}
	t.byValidator[key.Validator][key] = struct{}{}
	if t.byWithdrawer[key.Withdrawer] == nil {
		t.byWithdrawer[key.Withdrawer] = make(map[StakeKey]struct{})
	}
	t.byWithdrawer[key.Withdrawer][key] = struct{}{}
}

func (t *Tracker) unindex(key StakeKey) {
	delete(t.byValidator[key.Validator], key)
	if len(t.byValidator[key.Validator]) == 0 {
		delete(t.byValidator, key.Validator)
	}
	delete(t.byWithdrawer[key.Withdrawer], key)
	if len(t.byWithdrawer[key.Withdrawer]) == 0 {
		delete(t.byWithdrawer, key.Withdrawer)
	}
}

// AddStake deposits coins under key at epoch. If an entry already exists,
// every capability epoch is updated to the coin-weighted average of old
// and new. Rejects stakes below the tracker's minimum.
func (t *Tracker) AddStake(key StakeKey, coins chaintypes.Nanowits, epoch chaintypes.Epoch) error {
	if coins < t.minimum {
		return errBelowMinimum(coins, t.minimum)
	}
	entry, ok := t.byKey[key]
	if !ok {
		entry = newStakeEntry(coins, epoch)
		t.byKey[key] = entry
		t.index(key)
		return nil
	}
	total := entry.Coins + coins
	for capability, oldEpoch := range entry.Epochs {
		entry.Epochs[capability] = weightedEpoch(entry.Coins, oldEpoch, coins, epoch, total)
	}
	entry.Coins = total
	return nil
}

func weightedEpoch(coinsOld chaintypes.Nanowits, epochOld chaintypes.Epoch, coinsAdded chaintypes.Nanowits, epochAdded chaintypes.Epoch, total chaintypes.Nanowits) chaintypes.Epoch {
	if total == 0 {
		return epochAdded
	}
	numerator := uint64(coinsOld)*uint64(epochOld) + uint64(coinsAdded)*uint64(epochAdded)
	return chaintypes.Epoch(numerator / uint64(total))
}

// RemoveStake withdraws coins from key. The residue must be exactly zero
// (entry dropped from every index) or at least the minimum; anything in
// between is rejected.
func (t *Tracker) RemoveStake(key StakeKey, coins chaintypes.Nanowits) error {
	entry, ok := t.byKey[key]
	if !ok {
		return errNotFound(key)
	}
	after := entry.Coins.SaturatingSub(coins)
	if after != 0 && after < t.minimum {
		return errResidueBelowMinimum(after, t.minimum)
	}
	if after == 0 {
		delete(t.byKey, key)
		t.unindex(key)
		return nil
	}
	entry.Coins = after
	return nil
}

// UseStake resets a single capability's epoch to `epoch`, leaving the coin
// amount and every other capability's age untouched. Used when a staker
// mines a block: mining age resets, witnessing age doesn't.
func (t *Tracker) UseStake(key StakeKey, capability Capability, epoch chaintypes.Epoch) error {
	entry, ok := t.byKey[key]
	if !ok {
		return errNotFound(key)
	}
	entry.Epochs[capability] = epoch
	return nil
}

// Power returns min(epoch - entry.Epoch[capability], maxAge) * coins /
// NanowitsPerWit, saturating at zero when the entry's epoch is ahead of
// the query epoch (can't have negative age).
func (t *Tracker) Power(key StakeKey, capability Capability, epoch chaintypes.Epoch, maxAge uint32, nanowitsPerWit uint64) uint64 {
	entry, ok := t.byKey[key]
	if !ok {
		return 0
	}
	return power(entry, capability, epoch, maxAge, nanowitsPerWit)
}

func power(entry *StakeEntry, capability Capability, epoch chaintypes.Epoch, maxAge uint32, nanowitsPerWit uint64) uint64 {
	entryEpoch := entry.Epochs[capability]
	if entryEpoch > epoch {
		return 0
	}
	age := uint64(epoch - entryEpoch)
	if age > uint64(maxAge) {
		age = uint64(maxAge)
	}
	if nanowitsPerWit == 0 {
		return 0
	}
	return age * uint64(entry.Coins) / nanowitsPerWit
}

// Share returns key's power as a fraction of the network's average power
// across nStakers, clamped to [0,1].
func (t *Tracker) Share(key StakeKey, capability Capability, epoch chaintypes.Epoch, maxAge uint32, nanowitsPerWit uint64, averagePower float64, nStakers int) float64 {
	p := float64(t.Power(key, capability, epoch, maxAge, nanowitsPerWit))
	denom := averagePower * float64(nStakers)
	if denom < 1 {
		denom = 1
	}
	share := p / denom
	if share < 0 {
		return 0
	}
	if share > 1 {
		return 1
	}
	return share
}

// Get returns a copy of the entry for key, if present.
func (t *Tracker) Get(key StakeKey) (StakeEntry, bool) {
	entry, ok := t.byKey[key]
	if !ok {
		return StakeEntry{}, false
	}
	epochs := make(map[Capability]chaintypes.Epoch, len(entry.Epochs))
	for k, v := range entry.Epochs {
		epochs[k] = v
	}
	return StakeEntry{Coins: entry.Coins, Epochs: epochs}, true
}

// ByValidator returns the stake keys operated by validator.
func (t *Tracker) ByValidator(validator chaintypes.PublicKeyHash) []StakeKey {
	return keysOf(t.byValidator[validator])
}

// ByWithdrawer returns the stake keys owned by withdrawer.
func (t *Tracker) ByWithdrawer(withdrawer chaintypes.PublicKeyHash) []StakeKey {
	return keysOf(t.byWithdrawer[withdrawer])
}

func keysOf(m map[StakeKey]struct{}) []StakeKey {
	out := make([]StakeKey, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sortKeys(out)
	return out
}

func sortKeys(keys []StakeKey) {
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Validator.Hex() != keys[j].Validator.Hex() {
			return keys[i].Validator.Hex() < keys[j].Validator.Hex()
		}
		return keys[i].Withdrawer.Hex() < keys[j].Withdrawer.Hex()
	})
}

// RankedEntry pairs a stake key with its power at the query epoch.
type RankedEntry struct {
	Key   StakeKey
	Power uint64
}

// Rank iterates every entry, computes power lazily for (capability,
// epoch), and returns entries sorted descending by power (ties broken by
// key for determinism).
func (t *Tracker) Rank(capability Capability, epoch chaintypes.Epoch, maxAge uint32, nanowitsPerWit uint64) []RankedEntry {
	keys := make([]StakeKey, 0, len(t.byKey))
	for k := range t.byKey {
		keys = append(keys, k)
	}
	sortKeys(keys)

	out := make([]RankedEntry, len(keys))
	for i, k := range keys {
		out[i] = RankedEntry{Key: k, Power: power(t.byKey[k], capability, epoch, maxAge, nanowitsPerWit)}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Power > out[j].Power
	})
	return out
}

// CensusAll returns every ranked entry.
func CensusAll(ranked []RankedEntry) []RankedEntry { return ranked }

// CensusStepBy returns every n-th ranked entry starting at 0.
func CensusStepBy(ranked []RankedEntry, n int) []RankedEntry {
	if n <= 0 {
		return nil
	}
	out := make([]RankedEntry, 0, len(ranked)/n+1)
	for i := 0; i < len(ranked); i += n {
		out = append(out, ranked[i])
	}
	return out
}

// CensusTake returns the top n ranked entries.
func CensusTake(ranked []RankedEntry, n int) []RankedEntry {
	if n > len(ranked) {
		n = len(ranked)
	}
	if n < 0 {
		n = 0
	}
	return append([]RankedEntry(nil), ranked[:n]...)
}

// CensusEvenly returns n entries spaced evenly across the ranked list.
func CensusEvenly(ranked []RankedEntry, n int) []RankedEntry {
	if n <= 0 || len(ranked) == 0 {
		return nil
	}
	if n >= len(ranked) {
		return append([]RankedEntry(nil), ranked...)
	}
	out := make([]RankedEntry, 0, n)
	step := float64(len(ranked)) / float64(n)
	for i := 0; i < n; i++ {
		idx := int(float64(i) * step)
		if idx >= len(ranked) {
			idx = len(ranked) - 1
		}
		out = append(out, ranked[idx])
	}
	return out
}
