// Package chaintypes holds the consensus data model shared by every other
// package: hashes, identities, amounts, transaction bodies and blocks.
package chaintypes

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// HashSize is the length in bytes of a Hash.
const HashSize = chainhash.HashSize

// PKHSize is the length in bytes of a PublicKeyHash.
const PKHSize = 20

// Hash is a 32-byte SHA-256 digest. It reuses chainhash.Hash for its byte
// array shape and comparison helpers, but — unlike Bitcoin — Witnet hashes
// are displayed in natural (big-endian) byte order, so Hex below does not
// go through chainhash.Hash.String(), which reverses bytes for the Bitcoin
// block-explorer convention.
type Hash chainhash.Hash

// ZeroHash is the all-zero Hash, used as the genesis block's hash_prev_block.
var ZeroHash Hash

// HashFromBytes computes the single SHA-256 digest of b.
func HashFromBytes(b []byte) Hash {
	return Hash(chainhash.HashH(b))
}

// HashFromHex decodes a 64-character hex string into a Hash.
func HashFromHex(s string) (Hash, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Hash{}, fmt.Errorf("hash: decode hex: %w", err)
	}
	if len(b) != HashSize {
		return Hash{}, fmt.Errorf("hash: expected %d bytes, got %d", HashSize, len(b))
	}
	var h Hash
	copy(h[:], b)
	return h, nil
}

// Hex returns the natural-order hex encoding of h.
func (h Hash) Hex() string {
	return hex.EncodeToString(h[:])
}

func (h Hash) String() string { return h.Hex() }

// IsZero reports whether h is the all-zero hash (used by genesis blocks).
func (h Hash) IsZero() bool { return h == ZeroHash }

// Compare gives a total order over hashes, used to keep indexes deterministic.
func (h Hash) Compare(other Hash) int {
	return bytes.Compare(h[:], other[:])
}

// PublicKeyHash is the 20-byte account identity used throughout the chain
// state: witness rewards, stake ownership, reputation, collateral.
type PublicKeyHash [PKHSize]byte

// ZeroPKH is the all-zero PKH, used for uninitialized/sentinel fields.
var ZeroPKH PublicKeyHash

func PKHFromHex(s string) (PublicKeyHash, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return PublicKeyHash{}, fmt.Errorf("pkh: decode hex: %w", err)
	}
	if len(b) != PKHSize {
		return PublicKeyHash{}, fmt.Errorf("pkh: expected %d bytes, got %d", PKHSize, len(b))
	}
	var pkh PublicKeyHash
	copy(pkh[:], b)
	return pkh, nil
}

// PKHFromPublicKey derives the 20-byte identity from a raw public key: the
// last PKHSize bytes of its SHA-256 digest, the same truncate-a-hash
// construction Bitcoin-style addresses use (minus the RIPEMD-160 step,
// which the examples don't carry a library for — see DESIGN.md).
func PKHFromPublicKey(pubKey []byte) PublicKeyHash {
	h := HashFromBytes(pubKey)
	var pkh PublicKeyHash
	copy(pkh[:], h[HashSize-PKHSize:])
	return pkh
}

func (p PublicKeyHash) Hex() string    { return hex.EncodeToString(p[:]) }
func (p PublicKeyHash) String() string { return p.Hex() }
func (p PublicKeyHash) IsZero() bool   { return p == ZeroPKH }

// Hashable is implemented by every wire type that participates in Merkle
// roots or is independently content-addressed. Per spec.md §6, hashing
// always serializes to the wire (protobuf) form first, then takes a single
// SHA-256 of those bytes — never a hash of a Go-native in-memory encoding.
type Hashable interface {
	MarshalWire() ([]byte, error)
	Hash() (Hash, error)
}
