// Package superblock builds periodic checkpoints over the ARS and the
// data-request/tally activity since the last one, and tracks the votes
// peers cast on them (spec.md §4.8).
package superblock

import (
	"encoding/binary"

	"github.com/rawblock/witnet-core/internal/chaintypes"
)

// SuperBlock is the checkpoint built every SuperblockPeriod epochs.
type SuperBlock struct {
	Index                         uint32
	DataRequestRoot               chaintypes.Hash
	TallyRoot                     chaintypes.Hash
	ARSRoot                       chaintypes.Hash
	LastBlockHash                 chaintypes.Hash
	LastBlockInPreviousSuperblock chaintypes.Hash
}

// Build constructs a SuperBlock from the data-request/tally transaction
// hashes consolidated since the last superblock and the current ARS's
// BN256 public keys. drHashes/tallyHashes feed MerkleRoot directly; ARS
// keys are hashed individually first (arsLeafHash), never concatenated,
// per spec.md §4.8.
func Build(index uint32, drHashes, tallyHashes []chaintypes.Hash, arsBN256Keys [][]byte, lastBlockHash, lastBlockInPreviousSuperblock chaintypes.Hash) SuperBlock {
	leaves := make([]chaintypes.Hash, len(arsBN256Keys))
	for i, key := range arsBN256Keys {
		leaves[i] = arsLeafHash(key)
	}
	return SuperBlock{
		Index:                         index,
		DataRequestRoot:               chaintypes.MerkleRoot(drHashes),
		TallyRoot:                     chaintypes.MerkleRoot(tallyHashes),
		ARSRoot:                       chaintypes.MerkleRoot(leaves),
		LastBlockHash:                 lastBlockHash,
		LastBlockInPreviousSuperblock: lastBlockInPreviousSuperblock,
	}
}

// arsLeafHash hashes one uncompressed BN256 public key on its own, so the
// ARS root commits to the set of keys rather than their concatenation.
func arsLeafHash(uncompressedKey []byte) chaintypes.Hash {
	return chaintypes.HashFromBytes(uncompressedKey)
}

// Hash is the SuperBlock's content-address. Per spec.md §6, superblock
// hashing uses a distinct fixed-layout byte function rather than the
// protobuf-then-SHA-256 path every other Hashable uses: index as a
// 4-byte big-endian prefix, then the five hashes in field order.
func (s SuperBlock) Hash() chaintypes.Hash {
	var buf [4 + 5*chaintypes.HashSize]byte
	binary.BigEndian.PutUint32(buf[0:4], s.Index)
	off := 4
	for _, h := range []chaintypes.Hash{s.DataRequestRoot, s.TallyRoot, s.ARSRoot, s.LastBlockHash, s.LastBlockInPreviousSuperblock} {
		copy(buf[off:off+chaintypes.HashSize], h[:])
		off += chaintypes.HashSize
	}
	return chaintypes.HashFromBytes(buf[:])
}
