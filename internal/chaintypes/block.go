package chaintypes

// CheckpointBeacon anchors a block to its position in the chain: the epoch
// it was mined in and the hash of the immediately preceding block.
type CheckpointBeacon struct {
	CheckpointEpoch Epoch
	HashPrevBlock   Hash
}

// MerkleRoots carries one root per transaction-type list in the block body.
// StakeRoot/UnstakeRoot are only meaningful from V2ActivationEpoch onward;
// a legacy-shape block always leaves them as ZeroHash (see IsCanonicalShape).
type MerkleRoots struct {
	MintRoot          Hash
	ValueTransferRoot Hash
	DataRequestRoot   Hash
	CommitRoot        Hash
	RevealRoot        Hash
	TallyRoot         Hash
	StakeRoot         Hash
	UnstakeRoot       Hash
}

// BlockHeader is everything hashed to produce a block's identity except the
// body's transaction lists themselves (those are summarized by MerkleRoots).
type BlockHeader struct {
	Beacon       CheckpointBeacon
	Roots        MerkleRoots
	VRFProof     []byte // proof the proposer was eligible to mine this epoch
	VRFPublicKey []byte
	BN256PublicKey []byte // aggregatable key used for superblock signing, post V2
}

// BlockBody holds the block's transaction lists. Stake/Unstake are only
// populated in the canonical (post-V2) shape.
type BlockBody struct {
	Mint          *Transaction
	ValueTransfer []Transaction
	DataRequest   []Transaction
	Commit        []Transaction
	Reveal        []Transaction
	Tally         []Transaction
	Stake         []Transaction
	Unstake       []Transaction
}

// Block is a header plus its transactions.
type Block struct {
	Header BlockHeader
	Body   BlockBody
}

// IsCanonicalShape reports whether this block was (or should be) produced
// under the post-V2 wire shape, which adds stake/unstake transaction lists
// and their Merkle roots. Legacy (pre-2.0) blocks have neither: serializing
// one must omit the stake/unstake fields entirely rather than emit them
// zeroed, to keep the byte-for-byte round-trip invariant (spec.md §6).
func (b Block) IsCanonicalShape(v2ActivationEpoch Epoch) bool {
	return b.Header.Beacon.CheckpointEpoch >= v2ActivationEpoch
}

// Hash returns the block's content-address: SHA-256 of the header's wire
// encoding (the body is summarized into the header via MerkleRoots, so the
// header alone determines block identity — spec.md §6).
func (b Block) Hash(v2ActivationEpoch Epoch) (Hash, error) {
	wire, err := b.Header.MarshalWire(b.IsCanonicalShape(v2ActivationEpoch))
	if err != nil {
		return Hash{}, err
	}
	return HashFromBytes(wire), nil
}
