// Package utxo implements the unspent-output pool: a persistent backing
// map layered with an in-memory Diff so a candidate block can be applied
// tentatively and rolled back without touching the backing store, plus a
// secondary own-address index and coin-age tracking for collateral
// maturity.
package utxo

import "github.com/rawblock/witnet-core/internal/chaintypes"

// Entry is what the pool stores per output: the output itself and the
// block number it was included in (used for coin-age checks).
type Entry struct {
	Output      chaintypes.ValueTransferOutput
	BlockNumber uint64
}

// Diff layers uncommitted inserts/removals over the persistent backing
// map. Reads check removals first, then additions, then fall through to
// the backing store — so a removal always wins over a stale addition of
// the same key within one diff.
type Diff struct {
	toAdd    map[chaintypes.OutputPointer]Entry
	toRemove map[chaintypes.OutputPointer]struct{}
}

func newDiff() *Diff {
	return &Diff{
		toAdd:    make(map[chaintypes.OutputPointer]Entry),
		toRemove: make(map[chaintypes.OutputPointer]struct{}),
	}
}

// Pool is the UTXO set: a persistent backing map plus one uncommitted
// Diff. Callers insert/remove into the diff; Persist flushes it as a
// batch, and Rollback discards it entirely (used when a candidate block
// fails consolidation after tentative application).
type Pool struct {
	backing map[chaintypes.OutputPointer]Entry
	diff    *Diff
}

// New constructs an empty Pool.
func New() *Pool {
	return &Pool{
		backing: make(map[chaintypes.OutputPointer]Entry),
		diff:    newDiff(),
	}
}

// Get resolves a pointer through the diff first, then the backing store.
// A pointer marked for removal in the diff returns (Entry{}, false) even
// if it's still present in the backing store.
func (p *Pool) Get(ptr chaintypes.OutputPointer) (Entry, bool) {
	if _, removed := p.diff.toRemove[ptr]; removed {
		return Entry{}, false
	}
	if e, ok := p.diff.toAdd[ptr]; ok {
		return e, true
	}
	e, ok := p.backing[ptr]
	return e, ok
}

// Insert records ptr → entry into the uncommitted diff.
func (p *Pool) Insert(ptr chaintypes.OutputPointer, output chaintypes.ValueTransferOutput, blockNumber uint64) {
	delete(p.diff.toRemove, ptr)
	p.diff.toAdd[ptr] = Entry{Output: output, BlockNumber: blockNumber}
}

// Remove records ptr's removal into the uncommitted diff. If ptr was only
// ever added within this same diff (never persisted), the add+remove
// coalesces to a no-op rather than emitting a removal for a key the
// backing store never saw.
func (p *Pool) Remove(ptr chaintypes.OutputPointer) {
	if _, addedThisDiff := p.diff.toAdd[ptr]; addedThisDiff {
		delete(p.diff.toAdd, ptr)
		if _, inBacking := p.backing[ptr]; !inBacking {
			return
		}
	}
	p.diff.toRemove[ptr] = struct{}{}
}

// Persist flushes the uncommitted diff into the backing store and starts a
// fresh diff. Coalesced add+remove pairs within the diff never touch the
// backing store at all.
func (p *Pool) Persist() {
	for ptr := range p.diff.toRemove {
		delete(p.backing, ptr)
	}
	for ptr, e := range p.diff.toAdd {
		p.backing[ptr] = e
	}
	p.diff = newDiff()
}

// Rollback discards the uncommitted diff, leaving the backing store
// exactly as it was before any Insert/Remove calls since the last
// Persist.
func (p *Pool) Rollback() {
	p.diff = newDiff()
}

// IncludedInBlockNumber reports the block number an output was inserted
// at, used by collateral-maturity checks.
func (p *Pool) IncludedInBlockNumber(ptr chaintypes.OutputPointer) (uint64, bool) {
	e, ok := p.Get(ptr)
	if !ok {
		return 0, false
	}
	return e.BlockNumber, true
}

// IsMatureCollateral reports whether ptr has aged at least collateralAge
// blocks since inclusion, as of currentBlockNumber.
func (p *Pool) IsMatureCollateral(ptr chaintypes.OutputPointer, currentBlockNumber uint64, collateralAge uint32) bool {
	included, ok := p.IncludedInBlockNumber(ptr)
	if !ok || currentBlockNumber < included {
		return false
	}
	return currentBlockNumber-included >= uint64(collateralAge)
}
