package superblock

import (
	"testing"

	"github.com/rawblock/witnet-core/internal/chaintypes"
)

func hash(b byte) chaintypes.Hash {
	var h chaintypes.Hash
	h[0] = b
	return h
}

func pkh(b byte) chaintypes.PublicKeyHash {
	var p chaintypes.PublicKeyHash
	p[0] = b
	return p
}

func TestBuildIsDeterministic(t *testing.T) {
	dr := []chaintypes.Hash{hash(1), hash(2)}
	tally := []chaintypes.Hash{hash(3)}
	keys := [][]byte{{0xAA, 0xBB}, {0xCC, 0xDD}}

	a := Build(1, dr, tally, keys, hash(9), chaintypes.ZeroHash)
	b := Build(1, dr, tally, keys, hash(9), chaintypes.ZeroHash)

	if a.Hash() != b.Hash() {
		t.Fatalf("expected identical inputs to produce identical superblock hashes")
	}
}

func TestBuildDiffersOnARSKeyOrder(t *testing.T) {
	dr := []chaintypes.Hash{hash(1)}
	tally := []chaintypes.Hash{hash(2)}

	forward := Build(1, dr, tally, [][]byte{{0x01}, {0x02}}, hash(9), chaintypes.ZeroHash)
	reversed := Build(1, dr, tally, [][]byte{{0x02}, {0x01}}, hash(9), chaintypes.ZeroHash)

	if forward.ARSRoot == reversed.ARSRoot {
		t.Fatalf("expected ARS root to depend on key order, since MerkleRoot is order-sensitive")
	}
}

func TestAddVoteDuplicateIsAlreadySeen(t *testing.T) {
	s := NewState()
	s.CurrentARSIdentities = map[chaintypes.PublicKeyHash]struct{}{pkh(1): {}}
	s.PreviousARSIdentities = map[chaintypes.PublicKeyHash]struct{}{pkh(1): {}}
	s.CurrentSuperblockHash = hash(5)

	v := Vote{SuperblockHash: hash(5), SuperblockIndex: 0, Signer: pkh(1)}
	if got := s.AddVote(v); got != ValidWithSameHash {
		t.Fatalf("expected first vote to be ValidWithSameHash, got %v", got)
	}
	if got := s.AddVote(v); got != AlreadySeen {
		t.Fatalf("expected repeated vote to be AlreadySeen, got %v", got)
	}
}

func TestAddVoteOutsideWindowIsInvalidIndex(t *testing.T) {
	s := NewState()
	s.CurrentIndex = 5

	v := Vote{SuperblockHash: hash(1), SuperblockIndex: 10, Signer: pkh(1)}
	if got := s.AddVote(v); got != InvalidIndex {
		t.Fatalf("expected out-of-window index to be InvalidIndex, got %v", got)
	}
}

func TestAddVoteForNextIndexIsMaybeValid(t *testing.T) {
	s := NewState()
	s.CurrentIndex = 5

	v := Vote{SuperblockHash: hash(1), SuperblockIndex: 6, Signer: pkh(1)}
	if got := s.AddVote(v); got != MaybeValid {
		t.Fatalf("expected a vote for the next index to be MaybeValid, got %v", got)
	}
}

func TestAddVoteFromNonMemberIsNotInArs(t *testing.T) {
	s := NewState()
	s.PreviousARSIdentities = map[chaintypes.PublicKeyHash]struct{}{pkh(2): {}}
	s.CurrentSuperblockHash = hash(5)

	v := Vote{SuperblockHash: hash(5), SuperblockIndex: 0, Signer: pkh(1)}
	if got := s.AddVote(v); got != NotInArs {
		t.Fatalf("expected a non-ARS signer to be NotInArs, got %v", got)
	}
}

func TestAddVoteDifferentHashIsValidButDifferentHash(t *testing.T) {
	s := NewState()
	s.PreviousARSIdentities = map[chaintypes.PublicKeyHash]struct{}{pkh(1): {}}
	s.CurrentSuperblockHash = hash(5)

	v := Vote{SuperblockHash: hash(6), SuperblockIndex: 0, Signer: pkh(1)}
	if got := s.AddVote(v); got != ValidButDifferentHash {
		t.Fatalf("expected a mismatched-hash vote to be ValidButDifferentHash, got %v", got)
	}
}

func TestAdvanceReclassifiesMaybeValidVotes(t *testing.T) {
	s := NewState()
	s.CurrentIndex = 0
	s.CurrentARSIdentities = map[chaintypes.PublicKeyHash]struct{}{pkh(1): {}}

	next := Build(1, nil, nil, nil, hash(42), chaintypes.ZeroHash)

	vote := Vote{SuperblockHash: next.Hash(), SuperblockIndex: 1, Signer: pkh(1)}
	if got := s.AddVote(vote); got != MaybeValid {
		t.Fatalf("expected MaybeValid before advancing, got %v", got)
	}

	reclassified := s.AdvanceToNextSuperblock(next, map[chaintypes.PublicKeyHash]struct{}{pkh(1): {}})
	if len(reclassified) != 1 || reclassified[0] != ValidWithSameHash {
		t.Fatalf("expected the pending vote to reclassify as ValidWithSameHash, got %v", reclassified)
	}
	if s.CurrentIndex != 1 || s.CurrentSuperblockHash != next.Hash() {
		t.Fatalf("expected state to have moved on to the new superblock")
	}
}

func TestAdvanceReclassifiesNonMemberAsNotInArs(t *testing.T) {
	s := NewState()
	s.CurrentIndex = 0
	s.CurrentARSIdentities = map[chaintypes.PublicKeyHash]struct{}{pkh(1): {}}

	next := Build(1, nil, nil, nil, hash(42), chaintypes.ZeroHash)

	vote := Vote{SuperblockHash: next.Hash(), SuperblockIndex: 1, Signer: pkh(9)}
	s.AddVote(vote)

	reclassified := s.AdvanceToNextSuperblock(next, map[chaintypes.PublicKeyHash]struct{}{pkh(1): {}})
	if len(reclassified) != 1 || reclassified[0] != NotInArs {
		t.Fatalf("expected the pending vote from a non-member to reclassify as NotInArs, got %v", reclassified)
	}
}
