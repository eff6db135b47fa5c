package validator

import (
	"fmt"

	"github.com/rawblock/witnet-core/internal/chaintypes"
	"github.com/rawblock/witnet-core/internal/drpool"
)

func errFutureEpoch(blockEpoch, currentEpoch chaintypes.Epoch) error {
	return fmt.Errorf("validator: block epoch %d is in the future (current %d)", blockEpoch, currentEpoch)
}

func errBeaconMismatch(want, got chaintypes.Hash) error {
	return fmt.Errorf("validator: hash_prev_block %s does not match chain tip %s", got.Hex(), want.Hex())
}

func errMerkleMismatch(group string, want, got chaintypes.Hash) error {
	return fmt.Errorf("validator: %s merkle root mismatch: header has %s, computed %s", group, want.Hex(), got.Hex())
}

func errVRFAboveTarget(pkh chaintypes.PublicKeyHash) error {
	return fmt.Errorf("validator: miner %s VRF proof is not below the mining target", pkh.Hex())
}

func errMinerNotEligible(pkh chaintypes.PublicKeyHash) error {
	return fmt.Errorf("validator: miner %s is neither an ARS member nor bootstrap-committee eligible", pkh.Hex())
}

func errMinerBelowStake(pkh chaintypes.PublicKeyHash) error {
	return fmt.Errorf("validator: miner %s does not meet the minimum post-V2 stake requirement", pkh.Hex())
}

func errMintShape(reason string) error {
	return fmt.Errorf("validator: mint transaction invalid: %s", reason)
}

func errInvalid(reason string) error {
	return fmt.Errorf("validator: %s", reason)
}

func errUnknownInput(ptr chaintypes.OutputPointer) error {
	return fmt.Errorf("validator: input %s does not exist in the UTXO pool", ptr)
}

func errDoubleSpend(ptr chaintypes.OutputPointer) error {
	return fmt.Errorf("validator: input %s referenced twice within the same block", ptr)
}

func errNegativeFee(txHash chaintypes.Hash) error {
	return fmt.Errorf("validator: transaction %s spends more than its inputs provide", txHash.Hex())
}

func errWeightExceeded(group string, weight, limit uint32) error {
	return fmt.Errorf("validator: %s transactions weight %d exceeds block limit %d", group, weight, limit)
}

func errCollateralImmature(ptr chaintypes.OutputPointer) error {
	return fmt.Errorf("validator: collateral input %s has not matured against the pre-block UTXO state", ptr)
}

func errBadSignature(txHash chaintypes.Hash, idx int) error {
	return fmt.Errorf("validator: transaction %s input %d has an invalid signature", txHash.Hex(), idx)
}

func errUnknownDRForTx(drHash chaintypes.Hash) error {
	return fmt.Errorf("validator: no live data request %s", drHash.Hex())
}

func errWrongStageForTx(drHash chaintypes.Hash, want, got drpool.Stage) error {
	return fmt.Errorf("validator: %s expected stage %s, got %s", drHash.Hex(), want, got)
}

func errDuplicateCommitter(drHash chaintypes.Hash, committer chaintypes.PublicKeyHash) error {
	return fmt.Errorf("validator: %s already has a commit from %s", drHash.Hex(), committer.Hex())
}

func errTallyMismatch(drHash chaintypes.Hash, reason string) error {
	return fmt.Errorf("validator: tally for %s does not match expected outcome: %s", drHash.Hex(), reason)
}
