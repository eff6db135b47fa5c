package validator

import (
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"github.com/rawblock/witnet-core/internal/chaintypes"
)

// pendingSignature is one (pubkey, signature, message) triple collected
// during phase 2 but checked only once, in a single batch, at the very end
// — spec.md §4.6's "signature verification is batched and deferred" rule.
type pendingSignature struct {
	txHash    chaintypes.Hash
	inputIdx  int
	publicKey []byte
	signature []byte
	message   chaintypes.Hash
}

// verifyBatch checks every pending signature and returns the first failure,
// if any. Nothing about block state changes as a result of this call; the
// caller rejects the whole block on the first error.
func verifyBatch(pending []pendingSignature) error {
	for _, p := range pending {
		pubKey, err := secp256k1.ParsePubKey(p.publicKey)
		if err != nil {
			return errBadSignature(p.txHash, p.inputIdx)
		}
		sig, err := ecdsa.ParseDERSignature(p.signature)
		if err != nil {
			return errBadSignature(p.txHash, p.inputIdx)
		}
		if !sig.Verify(p.message[:], pubKey) {
			return errBadSignature(p.txHash, p.inputIdx)
		}
	}
	return nil
}
