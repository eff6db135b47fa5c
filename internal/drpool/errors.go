package drpool

import (
	"fmt"

	"github.com/rawblock/witnet-core/internal/chaintypes"
)

func errUnknownDR(drHash chaintypes.Hash) error {
	return fmt.Errorf("drpool: no live data request %s", drHash.Hex())
}

func errWrongStage(drHash chaintypes.Hash, want, got Stage) error {
	return fmt.Errorf("drpool: %s expected stage %s, got %s", drHash.Hex(), want, got)
}

func errDuplicateCommit(drHash chaintypes.Hash, committer chaintypes.PublicKeyHash) error {
	return fmt.Errorf("drpool: %s already has a commit from %s", drHash.Hex(), committer.Hex())
}

func errDuplicateReveal(drHash chaintypes.Hash, revealer chaintypes.PublicKeyHash) error {
	return fmt.Errorf("drpool: %s already has a reveal from %s", drHash.Hex(), revealer.Hex())
}

func errRevealWithoutCommit(drHash chaintypes.Hash, revealer chaintypes.PublicKeyHash) error {
	return fmt.Errorf("drpool: %s has no commit from revealer %s", drHash.Hex(), revealer.Hex())
}
