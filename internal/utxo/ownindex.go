package utxo

import (
	"sort"

	"github.com/rawblock/witnet-core/internal/chaintypes"
)

// SelectionStrategy chooses the order in which a wallet spends its own
// outputs.
type SelectionStrategy int

const (
	// BigFirst spends the highest-value outputs first (minimizes UTXO
	// count growth).
	BigFirst SelectionStrategy = iota
	// SmallFirst spends the lowest-value outputs first (sweeps dust).
	SmallFirst
	// Random spends in insertion order, a cheap stand-in for true
	// randomness that still avoids the BigFirst/SmallFirst linkability
	// signature.
	Random
)

type ownEntry struct {
	pointer   chaintypes.OutputPointer
	output    chaintypes.ValueTransferOutput
	insertSeq uint64
	usedAt    int64 // unix timestamp; 0 means not in-flight
}

// OwnIndex is the secondary index of outputs paying the local node's own
// PKHs, updated synchronously with the main Pool on consolidation. A
// "used at" timestamp per output prevents double-selecting an output
// while a transaction spending it is still in-flight.
type OwnIndex struct {
	byPKH map[chaintypes.PublicKeyHash]map[chaintypes.OutputPointer]*ownEntry
	seq   uint64
}

// NewOwnIndex constructs an empty OwnIndex.
func NewOwnIndex() *OwnIndex {
	return &OwnIndex{byPKH: make(map[chaintypes.PublicKeyHash]map[chaintypes.OutputPointer]*ownEntry)}
}

// Insert adds an output paying one of the node's own PKHs.
func (o *OwnIndex) Insert(ptr chaintypes.OutputPointer, output chaintypes.ValueTransferOutput) {
	set := o.byPKH[output.PKH]
	if set == nil {
		set = make(map[chaintypes.OutputPointer]*ownEntry)
		o.byPKH[output.PKH] = set
	}
	o.seq++
	set[ptr] = &ownEntry{pointer: ptr, output: output, insertSeq: o.seq}
}

// Remove drops a spent output from the index.
func (o *OwnIndex) Remove(pkh chaintypes.PublicKeyHash, ptr chaintypes.OutputPointer) {
	set := o.byPKH[pkh]
	if set == nil {
		return
	}
	delete(set, ptr)
	if len(set) == 0 {
		delete(o.byPKH, pkh)
	}
}

// MarkUsed flags ptr as in-flight as of unixNow, so it's excluded from
// selection until ClearUsed or Remove.
func (o *OwnIndex) MarkUsed(pkh chaintypes.PublicKeyHash, ptr chaintypes.OutputPointer, unixNow int64) {
	if set := o.byPKH[pkh]; set != nil {
		if e, ok := set[ptr]; ok {
			e.usedAt = unixNow
		}
	}
}

// ClearUsed un-flags ptr, e.g. after the spending transaction was dropped
// from the mempool without confirming.
func (o *OwnIndex) ClearUsed(pkh chaintypes.PublicKeyHash, ptr chaintypes.OutputPointer) {
	if set := o.byPKH[pkh]; set != nil {
		if e, ok := set[ptr]; ok {
			e.usedAt = 0
		}
	}
}

// Select returns unused outputs for pkh ordered by strategy. Passing the
// zero PublicKeyHash selects across every PKH the index knows about
// (single-address nodes never need to scope).
func (o *OwnIndex) Select(pkh chaintypes.PublicKeyHash, strategy SelectionStrategy) []chaintypes.OutputPointer {
	var candidates []*ownEntry
	if pkh.IsZero() {
		for _, set := range o.byPKH {
			candidates = append(candidates, unusedOf(set)...)
		}
	} else {
		candidates = unusedOf(o.byPKH[pkh])
	}

	switch strategy {
	case BigFirst:
		sort.Slice(candidates, func(i, j int) bool { return candidates[i].output.Value > candidates[j].output.Value })
	case SmallFirst:
		sort.Slice(candidates, func(i, j int) bool { return candidates[i].output.Value < candidates[j].output.Value })
	case Random:
		sort.Slice(candidates, func(i, j int) bool { return candidates[i].insertSeq < candidates[j].insertSeq })
	}

	out := make([]chaintypes.OutputPointer, len(candidates))
	for i, c := range candidates {
		out[i] = c.pointer
	}
	return out
}

func unusedOf(set map[chaintypes.OutputPointer]*ownEntry) []*ownEntry {
	out := make([]*ownEntry, 0, len(set))
	for _, e := range set {
		if e.usedAt == 0 {
			out = append(out, e)
		}
	}
	return out
}
