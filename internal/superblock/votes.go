package superblock

import "github.com/rawblock/witnet-core/internal/chaintypes"

// VoteClassification is the verdict add_vote reaches for an incoming
// SuperBlockVote (spec.md §4.8).
type VoteClassification int

const (
	AlreadySeen VoteClassification = iota
	InvalidIndex
	MaybeValid
	NotInArs
	ValidWithSameHash
	ValidButDifferentHash
)

func (c VoteClassification) String() string {
	switch c {
	case AlreadySeen:
		return "already_seen"
	case InvalidIndex:
		return "invalid_index"
	case MaybeValid:
		return "maybe_valid"
	case NotInArs:
		return "not_in_ars"
	case ValidWithSameHash:
		return "valid_with_same_hash"
	case ValidButDifferentHash:
		return "valid_but_different_hash"
	default:
		return "unknown"
	}
}

// Vote is a peer's signed attestation that it built the given superblock
// at the given index.
type Vote struct {
	SuperblockHash  chaintypes.Hash
	SuperblockIndex uint32
	Signer          chaintypes.PublicKeyHash
	Signature       []byte
}

type voteKey struct {
	signer chaintypes.PublicKeyHash
	index  uint32
	hash   chaintypes.Hash
}

// State is the node's view of the current superblock round: which index
// and hash it settled on locally, who was in the ARS for the last two
// rounds, and every vote seen so far.
type State struct {
	CurrentIndex          uint32
	CurrentSuperblockHash chaintypes.Hash

	PreviousARSIdentities map[chaintypes.PublicKeyHash]struct{}
	CurrentARSIdentities  map[chaintypes.PublicKeyHash]struct{}

	// VotesOnLocalSuperblock counts, per superblock hash, how many valid
	// votes at CurrentIndex agreed with CurrentSuperblockHash.
	VotesOnLocalSuperblock map[chaintypes.Hash]int

	seen       map[voteKey]struct{}
	maybeValid []Vote
}

// NewState returns an empty superblock tracking state, as seen before the
// first superblock has ever been built.
func NewState() *State {
	return &State{
		PreviousARSIdentities:  map[chaintypes.PublicKeyHash]struct{}{},
		CurrentARSIdentities:   map[chaintypes.PublicKeyHash]struct{}{},
		VotesOnLocalSuperblock: map[chaintypes.Hash]int{},
		seen:                   map[voteKey]struct{}{},
	}
}

// AddVote classifies v against the current round and records it. Votes
// for the round after CurrentIndex are kept pending (MaybeValid) because
// the ARS that will govern them isn't known until the next superblock is
// built; they're revisited by AdvanceToNextSuperblock.
func (s *State) AddVote(v Vote) VoteClassification {
	key := voteKey{v.Signer, v.SuperblockIndex, v.SuperblockHash}
	if _, dup := s.seen[key]; dup {
		return AlreadySeen
	}
	s.seen[key] = struct{}{}

	if v.SuperblockIndex+1 < s.CurrentIndex || v.SuperblockIndex > s.CurrentIndex+1 {
		return InvalidIndex
	}

	if v.SuperblockIndex == s.CurrentIndex+1 {
		s.maybeValid = append(s.maybeValid, v)
		return MaybeValid
	}

	if _, ok := s.PreviousARSIdentities[v.Signer]; !ok {
		return NotInArs
	}

	if v.SuperblockHash == s.CurrentSuperblockHash {
		s.VotesOnLocalSuperblock[v.SuperblockHash]++
		return ValidWithSameHash
	}
	return ValidButDifferentHash
}

// AdvanceToNextSuperblock rolls the round forward to next, whose ARS is
// newARS (the ARS as of the block that triggered this superblock). Every
// vote parked as MaybeValid under the old round — necessarily cast for
// this new index — is re-classified against next's own hash and the ARS
// that becomes PreviousARSIdentities (CurrentARSIdentities before this
// call), the same set AddVote checks votes at CurrentIndex against, and
// the reclassification is returned so callers can re-tally it exactly
// as if it had arrived just now.
func (s *State) AdvanceToNextSuperblock(next SuperBlock, newARS map[chaintypes.PublicKeyHash]struct{}) []VoteClassification {
	nextHash := next.Hash()
	reclassified := make([]VoteClassification, 0, len(s.maybeValid))
	for _, v := range s.maybeValid {
		if _, ok := s.CurrentARSIdentities[v.Signer]; !ok {
			reclassified = append(reclassified, NotInArs)
			continue
		}
		if v.SuperblockHash == nextHash {
			s.VotesOnLocalSuperblock[v.SuperblockHash]++
			reclassified = append(reclassified, ValidWithSameHash)
		} else {
			reclassified = append(reclassified, ValidButDifferentHash)
		}
	}

	s.PreviousARSIdentities = s.CurrentARSIdentities
	s.CurrentARSIdentities = newARS
	s.CurrentIndex = next.Index
	s.CurrentSuperblockHash = nextHash
	s.maybeValid = nil
	s.VotesOnLocalSuperblock = map[chaintypes.Hash]int{}

	return reclassified
}
