package chaintypes

// MerkleRoot computes the root of a binary Merkle tree over leaves, using
// the same pairwise-SHA256 construction chainhash.HashH performs for a
// single block (duplicate the last leaf on an odd level, same as Bitcoin's
// merkle tree). An empty leaf set hashes to the zero hash.
func MerkleRoot(leaves []Hash) Hash {
	if len(leaves) == 0 {
		return ZeroHash
	}
	level := append([]Hash(nil), leaves...)
	for len(level) > 1 {
		if len(level)%2 == 1 {
			level = append(level, level[len(level)-1])
		}
		next := make([]Hash, 0, len(level)/2)
		for i := 0; i < len(level); i += 2 {
			var buf [64]byte
			copy(buf[:32], level[i][:])
			copy(buf[32:], level[i+1][:])
			next = append(next, HashFromBytes(buf[:]))
		}
		level = next
	}
	return level[0]
}

// TransactionHashes returns the content hash of every transaction, in
// order, suitable for feeding MerkleRoot.
func TransactionHashes(txs []Transaction) ([]Hash, error) {
	hashes := make([]Hash, len(txs))
	for i := range txs {
		h, err := txs[i].Hash()
		if err != nil {
			return nil, err
		}
		hashes[i] = h
	}
	return hashes, nil
}
