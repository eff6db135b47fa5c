package mempool

import (
	"testing"

	"github.com/rawblock/witnet-core/internal/chaintypes"
	"github.com/rawblock/witnet-core/internal/utxo"
)

func ptr(b byte) chaintypes.OutputPointer {
	var h chaintypes.Hash
	h[0] = b
	return chaintypes.OutputPointer{TransactionHash: h, OutputIndex: 0}
}

func TestAdmitRejectsUnknownInput(t *testing.T) {
	p := New()
	snapshot := utxo.New()
	tx := chaintypes.Transaction{
		Kind: chaintypes.TxValueTransfer,
		ValueTransfer: &chaintypes.ValueTransferBody{
			Inputs: []chaintypes.Input{{Pointer: ptr(1)}},
		},
	}
	if err := p.Admit(tx, snapshot); err == nil {
		t.Fatalf("expected Admit to reject a transaction spending a non-existent output")
	}
	if len(p.Pending()) != 0 {
		t.Fatalf("rejected transaction should not be queued")
	}
}

func TestAdmitQueuesValidTransaction(t *testing.T) {
	p := New()
	snapshot := utxo.New()
	snapshot.Insert(ptr(1), chaintypes.ValueTransferOutput{Value: 10}, 1)
	snapshot.Persist()

	tx := chaintypes.Transaction{
		Kind: chaintypes.TxValueTransfer,
		ValueTransfer: &chaintypes.ValueTransferBody{
			Inputs:  []chaintypes.Input{{Pointer: ptr(1)}},
			Outputs: []chaintypes.ValueTransferOutput{{Value: 10}},
		},
	}
	if err := p.Admit(tx, snapshot); err != nil {
		t.Fatalf("Admit: %v", err)
	}
	if len(p.Pending()) != 1 {
		t.Fatalf("expected one pending transaction")
	}
}

func TestRemoveConfirmedDropsPendingEntry(t *testing.T) {
	p := New()
	snapshot := utxo.New()
	tx := chaintypes.Transaction{Kind: chaintypes.TxReveal, Reveal: &chaintypes.RevealBody{}}
	if err := p.Admit(tx, snapshot); err != nil {
		t.Fatal(err)
	}
	hash, err := tx.Hash()
	if err != nil {
		t.Fatal(err)
	}
	p.RemoveConfirmed([]chaintypes.Hash{hash})
	if len(p.Pending()) != 0 {
		t.Fatalf("expected confirmed transaction to be removed")
	}
}

func TestClearRevealsDropsOnlyReveals(t *testing.T) {
	p := New()
	snapshot := utxo.New()
	reveal := chaintypes.Transaction{Kind: chaintypes.TxReveal, Reveal: &chaintypes.RevealBody{DRHash: ptr(1).TransactionHash}}
	stake := chaintypes.Transaction{Kind: chaintypes.TxStake, Stake: &chaintypes.StakeBody{}}
	if err := p.Admit(reveal, snapshot); err != nil {
		t.Fatal(err)
	}
	if err := p.Admit(stake, snapshot); err != nil {
		t.Fatal(err)
	}
	p.ClearReveals()
	pending := p.Pending()
	if len(pending) != 1 || pending[0].Kind != chaintypes.TxStake {
		t.Fatalf("expected only the stake transaction to survive ClearReveals, got %+v", pending)
	}
}
