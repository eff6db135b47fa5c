// Package mempool queues transactions peers submit ahead of inclusion in
// a block, adapted from the teacher's mempool.Poller: the same seen-set
// shape, generalized from polling an external node's mempool to directly
// admitting submitted transactions. There is no periodic eviction; entries
// leave only through RemoveConfirmed and ClearReveals
// (spec.md §5: "peers' incoming transactions are queued for admission").
package mempool

import (
	"fmt"
	"sync"

	"github.com/rawblock/witnet-core/internal/chaintypes"
	"github.com/rawblock/witnet-core/internal/utxo"
)

// Pool holds transactions admitted but not yet consolidated into a
// block. Only the chain-manager's owning task writes to it, matching
// spec.md §5's "the mempool is written by the owning task only."
type Pool struct {
	mu      sync.Mutex
	pending map[chaintypes.Hash]chaintypes.Transaction
	reveals map[chaintypes.Hash]bool // subset of pending keys that are Reveal transactions
}

func New() *Pool {
	return &Pool{
		pending: make(map[chaintypes.Hash]chaintypes.Transaction),
		reveals: make(map[chaintypes.Hash]bool),
	}
}

// Admit re-validates tx's inputs against a UTXO snapshot and queues it.
// Mint and Tally transactions are never peer-submitted — they're
// synthesized by consolidation itself — and are rejected here.
func (p *Pool) Admit(tx chaintypes.Transaction, snapshot *utxo.Pool) error {
	inputs, err := inputsOf(tx)
	if err != nil {
		return err
	}
	for _, in := range inputs {
		if _, ok := snapshot.Get(in.Pointer); !ok {
			return fmt.Errorf("mempool: input %s not in UTXO set", in.Pointer)
		}
	}

	hash, err := tx.Hash()
	if err != nil {
		return fmt.Errorf("mempool: hash transaction: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending[hash] = tx
	if tx.Kind == chaintypes.TxReveal {
		p.reveals[hash] = true
	}
	return nil
}

// Pending returns every queued transaction, for a block-building task to
// select from. The caller owns the order; Pool doesn't prioritize.
func (p *Pool) Pending() []chaintypes.Transaction {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]chaintypes.Transaction, 0, len(p.pending))
	for _, tx := range p.pending {
		out = append(out, tx)
	}
	return out
}

// RemoveConfirmed drops transactions now present in a consolidated
// block. Implements consolidator.MempoolRemover.
func (p *Pool) RemoveConfirmed(hashes []chaintypes.Hash) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, h := range hashes {
		delete(p.pending, h)
		delete(p.reveals, h)
	}
}

// ClearReveals drops every queued reveal: reveals don't persist across
// epoch boundaries (spec.md §4.7 step 5). Implements
// consolidator.MempoolRemover.
func (p *Pool) ClearReveals() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for h := range p.reveals {
		delete(p.pending, h)
	}
	p.reveals = make(map[chaintypes.Hash]bool)
}

func inputsOf(tx chaintypes.Transaction) ([]chaintypes.Input, error) {
	switch tx.Kind {
	case chaintypes.TxValueTransfer:
		return tx.ValueTransfer.Inputs, nil
	case chaintypes.TxDataRequest:
		return tx.DataRequest.Inputs, nil
	case chaintypes.TxCommit:
		return tx.Commit.CollateralInputs, nil
	case chaintypes.TxStake:
		return tx.Stake.Inputs, nil
	case chaintypes.TxReveal, chaintypes.TxUnstake:
		return nil, nil
	default:
		return nil, fmt.Errorf("mempool: %s transactions are synthesized by consolidation, not peer-submitted", tx.Kind)
	}
}
