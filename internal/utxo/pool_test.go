package utxo

import (
	"testing"

	"github.com/rawblock/witnet-core/internal/chaintypes"
)

func ptr(b byte, idx uint32) chaintypes.OutputPointer {
	var h chaintypes.Hash
	h[0] = b
	return chaintypes.OutputPointer{TransactionHash: h, OutputIndex: idx}
}

func TestDiffInsertRemoveCoalescesToNoOp(t *testing.T) {
	p := New()
	out := chaintypes.ValueTransferOutput{Value: 10}
	p.Insert(ptr(1, 0), out, 5)
	p.Remove(ptr(1, 0))
	p.Persist()
	if _, ok := p.Get(ptr(1, 0)); ok {
		t.Fatalf("expected coalesced add+remove to leave nothing persisted")
	}
	if len(p.backing) != 0 {
		t.Fatalf("expected backing store untouched by coalesced diff, got %d entries", len(p.backing))
	}
}

func TestRemoveWinsOverAdditionWithinSameDiff(t *testing.T) {
	p := New()
	out := chaintypes.ValueTransferOutput{Value: 10}
	p.backing[ptr(2, 0)] = Entry{Output: out, BlockNumber: 1}
	p.Insert(ptr(2, 0), out, 2)
	p.Remove(ptr(2, 0))
	if _, ok := p.Get(ptr(2, 0)); ok {
		t.Fatalf("expected removed pointer to be absent even though still in backing")
	}
}

func TestRollbackDiscardsUncommittedDiff(t *testing.T) {
	p := New()
	out := chaintypes.ValueTransferOutput{Value: 99}
	p.Insert(ptr(3, 0), out, 1)
	p.Rollback()
	if _, ok := p.Get(ptr(3, 0)); ok {
		t.Fatalf("expected rollback to discard uncommitted insert")
	}
}

func TestCollateralMaturity(t *testing.T) {
	p := New()
	p.Insert(ptr(4, 0), chaintypes.ValueTransferOutput{Value: 1}, 100)
	p.Persist()
	if p.IsMatureCollateral(ptr(4, 0), 150, 100) {
		t.Fatalf("expected immature collateral at age 50 with requirement 100")
	}
	if !p.IsMatureCollateral(ptr(4, 0), 200, 100) {
		t.Fatalf("expected mature collateral at age 100 with requirement 100")
	}
}

func TestOwnIndexSelectionStrategies(t *testing.T) {
	idx := NewOwnIndex()
	pkh := chaintypes.PublicKeyHash{1}
	idx.Insert(ptr(1, 0), chaintypes.ValueTransferOutput{PKH: pkh, Value: 50})
	idx.Insert(ptr(2, 0), chaintypes.ValueTransferOutput{PKH: pkh, Value: 200})
	idx.Insert(ptr(3, 0), chaintypes.ValueTransferOutput{PKH: pkh, Value: 10})

	big := idx.Select(pkh, BigFirst)
	if big[0] != ptr(2, 0) {
		t.Fatalf("expected BigFirst to lead with the 200-value output, got %+v", big[0])
	}

	small := idx.Select(pkh, SmallFirst)
	if small[0] != ptr(3, 0) {
		t.Fatalf("expected SmallFirst to lead with the 10-value output, got %+v", small[0])
	}
}

func TestOwnIndexMarkUsedExcludesFromSelection(t *testing.T) {
	idx := NewOwnIndex()
	pkh := chaintypes.PublicKeyHash{1}
	idx.Insert(ptr(5, 0), chaintypes.ValueTransferOutput{PKH: pkh, Value: 10})
	idx.MarkUsed(pkh, ptr(5, 0), 1000)
	if got := idx.Select(pkh, BigFirst); len(got) != 0 {
		t.Fatalf("expected in-flight output to be excluded from selection, got %+v", got)
	}
	idx.ClearUsed(pkh, ptr(5, 0))
	if got := idx.Select(pkh, BigFirst); len(got) != 1 {
		t.Fatalf("expected output to be selectable again after ClearUsed, got %+v", got)
	}
}
