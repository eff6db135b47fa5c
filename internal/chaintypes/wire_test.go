package chaintypes

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/rawblock/witnet-core/internal/radon"
)

func pkhFromSeed(b byte) PublicKeyHash {
	var p PublicKeyHash
	p[0] = b
	return p
}

func hashFromSeed(b byte) Hash {
	var h Hash
	h[0] = b
	return h
}

// roundTripTx encodes tx, decodes it back, and returns the result for the
// caller to compare against the original (spec.md §6's round-trip law:
// deserialize(serialize(tx)) == tx).
func roundTripTx(t *testing.T, tx Transaction) *Transaction {
	t.Helper()
	wire, err := tx.MarshalWire()
	if err != nil {
		t.Fatalf("MarshalWire: %v", err)
	}
	got, err := ParseTransaction(wire)
	if err != nil {
		t.Fatalf("ParseTransaction: %v", err)
	}
	return got
}

func TestTransactionRoundTripMint(t *testing.T) {
	tx := Transaction{
		Kind: TxMint,
		Mint: &MintBody{
			Epoch: 42,
			Outputs: []ValueTransferOutput{
				{PKH: pkhFromSeed(1), Value: 1_000_000_000},
				{PKH: pkhFromSeed(2), Value: 500_000_000, TimeLock: 1700000000},
			},
		},
	}
	got := roundTripTx(t, tx)
	if !reflect.DeepEqual(*got.Mint, *tx.Mint) {
		t.Fatalf("round trip mismatch: got %+v, want %+v", *got.Mint, *tx.Mint)
	}
	if got.Kind != tx.Kind {
		t.Fatalf("kind mismatch: got %v, want %v", got.Kind, tx.Kind)
	}
}

func TestTransactionRoundTripValueTransfer(t *testing.T) {
	tx := Transaction{
		Kind: TxValueTransfer,
		ValueTransfer: &ValueTransferBody{
			Inputs: []Input{
				{
					Pointer:   OutputPointer{TransactionHash: hashFromSeed(3), OutputIndex: 1},
					Signature: []byte{0xde, 0xad, 0xbe, 0xef},
					PublicKey: []byte{0x01, 0x02, 0x03},
				},
			},
			Outputs: []ValueTransferOutput{
				{PKH: pkhFromSeed(4), Value: 250_000_000},
			},
		},
	}
	got := roundTripTx(t, tx)
	if !reflect.DeepEqual(*got.ValueTransfer, *tx.ValueTransfer) {
		t.Fatalf("round trip mismatch: got %+v, want %+v", *got.ValueTransfer, *tx.ValueTransfer)
	}
}

func TestTransactionRoundTripDataRequest(t *testing.T) {
	script := radon.Script{
		{Op: radon.OpArrayFilter, Args: []radon.Value{radon.Integer(int64(radon.FilterModeFilter))}},
		{Op: radon.OpArrayReduce, Args: []radon.Value{radon.Integer(int64(radon.ReducerMode))}},
	}
	tx := Transaction{
		Kind: TxDataRequest,
		DataRequest: &DataRequestBody{
			Inputs: []Input{{Pointer: OutputPointer{TransactionHash: hashFromSeed(5), OutputIndex: 0}}},
			Outputs: []ValueTransferOutput{
				{PKH: pkhFromSeed(6), Value: 1_000},
			},
			Request: DataRequestOutput{
				Retrieve: []RADRetrieval{
					{Kind: "HTTP-GET", URL: "https://example.test/price", Script: script},
				},
				Aggregate:              script,
				Tally:                  script,
				Witnesses:              3,
				CommitFee:              1,
				RevealFee:              1,
				TallyFee:               1,
				CollateralAmount:       1_000_000_000,
				MinConsensusPercentage: 70,
				Value:                  1_000_000_000,
			},
		},
	}
	got := roundTripTx(t, tx)
	if !reflect.DeepEqual(*got.DataRequest, *tx.DataRequest) {
		t.Fatalf("round trip mismatch: got %+v, want %+v", *got.DataRequest, *tx.DataRequest)
	}
}

func TestTransactionRoundTripCommit(t *testing.T) {
	tx := Transaction{
		Kind: TxCommit,
		Commit: &CommitBody{
			DRHash:         hashFromSeed(7),
			Committer:      pkhFromSeed(8),
			CommitmentHash: hashFromSeed(9),
			CollateralInputs: []Input{
				{Pointer: OutputPointer{TransactionHash: hashFromSeed(10), OutputIndex: 2}},
			},
			ChangeOutputs: []ValueTransferOutput{{PKH: pkhFromSeed(8), Value: 17}},
			VRFProof:      []byte("vrf-proof"),
			VRFPublicKey:  []byte("vrf-pubkey"),
		},
	}
	got := roundTripTx(t, tx)
	if !reflect.DeepEqual(*got.Commit, *tx.Commit) {
		t.Fatalf("round trip mismatch: got %+v, want %+v", *got.Commit, *tx.Commit)
	}
}

func TestTransactionRoundTripReveal(t *testing.T) {
	result, err := radon.Integer(42).MarshalWire()
	if err != nil {
		t.Fatal(err)
	}
	tx := Transaction{
		Kind: TxReveal,
		Reveal: &RevealBody{
			DRHash:   hashFromSeed(11),
			Revealer: pkhFromSeed(12),
			Result:   result,
		},
	}
	got := roundTripTx(t, tx)
	if !reflect.DeepEqual(*got.Reveal, *tx.Reveal) {
		t.Fatalf("round trip mismatch: got %+v, want %+v", *got.Reveal, *tx.Reveal)
	}
}

func TestTransactionRoundTripTally(t *testing.T) {
	result, err := radon.Integer(42).MarshalWire()
	if err != nil {
		t.Fatal(err)
	}
	tx := Transaction{
		Kind: TxTally,
		Tally: &TallyBody{
			DRHash: hashFromSeed(13),
			Result: result,
			Outputs: []ValueTransferOutput{
				{PKH: pkhFromSeed(14), Value: 1_000_000_052},
			},
			OutOfConsensus:  []PublicKeyHash{pkhFromSeed(15)},
			ErrorCommitters: []PublicKeyHash{pkhFromSeed(16), pkhFromSeed(17)},
		},
	}
	got := roundTripTx(t, tx)
	if !reflect.DeepEqual(*got.Tally, *tx.Tally) {
		t.Fatalf("round trip mismatch: got %+v, want %+v", *got.Tally, *tx.Tally)
	}
}

func TestTransactionRoundTripStake(t *testing.T) {
	tx := Transaction{
		Kind: TxStake,
		Stake: &StakeBody{
			Inputs:     []Input{{Pointer: OutputPointer{TransactionHash: hashFromSeed(18), OutputIndex: 0}}},
			Validator:  pkhFromSeed(19),
			Withdrawer: pkhFromSeed(20),
			Coins:      10_000_000_000,
			ChangeOutputs: []ValueTransferOutput{
				{PKH: pkhFromSeed(20), Value: 5},
			},
		},
	}
	got := roundTripTx(t, tx)
	if !reflect.DeepEqual(*got.Stake, *tx.Stake) {
		t.Fatalf("round trip mismatch: got %+v, want %+v", *got.Stake, *tx.Stake)
	}
}

func TestTransactionRoundTripUnstake(t *testing.T) {
	tx := Transaction{
		Kind: TxUnstake,
		Unstake: &UnstakeBody{
			Validator:  pkhFromSeed(21),
			Withdrawer: pkhFromSeed(22),
			Coins:      2_000_000_000,
			Output:     ValueTransferOutput{PKH: pkhFromSeed(22), Value: 2_000_000_000},
			Signature:  []byte("withdrawer-signature"),
		},
	}
	got := roundTripTx(t, tx)
	if !reflect.DeepEqual(*got.Unstake, *tx.Unstake) {
		t.Fatalf("round trip mismatch: got %+v, want %+v", *got.Unstake, *tx.Unstake)
	}
}

// TestTransactionRoundTripPreservesSigningHash confirms SigningHash is
// computed identically before and after a round trip — the signatures a
// reconstructed transaction's inputs carry must still authenticate against
// the same message a fresh one does.
func TestTransactionRoundTripPreservesSigningHash(t *testing.T) {
	tx := Transaction{
		Kind: TxValueTransfer,
		ValueTransfer: &ValueTransferBody{
			Inputs: []Input{
				{
					Pointer:   OutputPointer{TransactionHash: hashFromSeed(30), OutputIndex: 0},
					Signature: []byte{1, 2, 3},
					PublicKey: []byte{4, 5, 6},
				},
			},
			Outputs: []ValueTransferOutput{{PKH: pkhFromSeed(31), Value: 1}},
		},
	}
	want, err := tx.SigningHash()
	if err != nil {
		t.Fatal(err)
	}
	got := roundTripTx(t, tx)
	gotHash, err := got.SigningHash()
	if err != nil {
		t.Fatal(err)
	}
	if gotHash != want {
		t.Fatalf("signing hash changed across round trip: got %s, want %s", gotHash.Hex(), want.Hex())
	}
}

// buildHeader returns a header with every field populated, including the
// V2-only StakeRoot/UnstakeRoot/BN256PublicKey — used to exercise both the
// canonical and legacy encodings of the very same header.
func buildHeader() BlockHeader {
	return BlockHeader{
		Beacon: CheckpointBeacon{CheckpointEpoch: 1_200_000, HashPrevBlock: hashFromSeed(1)},
		Roots: MerkleRoots{
			MintRoot:          hashFromSeed(2),
			ValueTransferRoot: hashFromSeed(3),
			DataRequestRoot:   hashFromSeed(4),
			CommitRoot:        hashFromSeed(5),
			RevealRoot:        hashFromSeed(6),
			TallyRoot:         hashFromSeed(7),
			StakeRoot:         hashFromSeed(8),
			UnstakeRoot:       hashFromSeed(9),
		},
		VRFProof:       []byte("block-vrf-proof"),
		VRFPublicKey:   []byte("block-vrf-pubkey"),
		BN256PublicKey: []byte("bn256-pubkey"),
	}
}

func TestBlockHeaderRoundTripCanonical(t *testing.T) {
	h := buildHeader()
	wire, err := h.MarshalWire(true)
	if err != nil {
		t.Fatalf("MarshalWire: %v", err)
	}
	got, err := ParseBlockHeader(wire)
	if err != nil {
		t.Fatalf("ParseBlockHeader: %v", err)
	}
	if !reflect.DeepEqual(got, h) {
		t.Fatalf("canonical round trip mismatch: got %+v, want %+v", got, h)
	}
}

// TestBlockHeaderRoundTripLegacyOmitsV2Fields exercises spec.md §6's
// byte-for-byte invariant: marshaling the same header non-canonically must
// genuinely drop StakeRoot/UnstakeRoot/BN256PublicKey from the wire, not
// merely zero them in memory, since this is how a validator distinguishes a
// legitimate legacy block from one smuggling post-V2 fields.
func TestBlockHeaderRoundTripLegacyOmitsV2Fields(t *testing.T) {
	h := buildHeader()

	legacyWire, err := h.MarshalWire(false)
	if err != nil {
		t.Fatalf("MarshalWire(false): %v", err)
	}
	got, err := ParseBlockHeader(legacyWire)
	if err != nil {
		t.Fatalf("ParseBlockHeader: %v", err)
	}

	want := h
	want.Roots.StakeRoot = ZeroHash
	want.Roots.UnstakeRoot = ZeroHash
	want.BN256PublicKey = nil
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("legacy round trip mismatch: got %+v, want %+v", got, want)
	}

	canonicalWire, err := h.MarshalWire(true)
	if err != nil {
		t.Fatalf("MarshalWire(true): %v", err)
	}
	if bytes.Equal(legacyWire, canonicalWire) {
		t.Fatalf("legacy and canonical encodings of a header with V2 fields set must differ")
	}
	if len(legacyWire) >= len(canonicalWire) {
		t.Fatalf("legacy encoding should be shorter than canonical: legacy=%d canonical=%d", len(legacyWire), len(canonicalWire))
	}
}

// TestBlockHeaderRoundTripLegacyShape covers the common case directly: a
// pre-V2 header that never had V2 fields to begin with round-trips
// losslessly through the legacy encoding.
func TestBlockHeaderRoundTripLegacyShape(t *testing.T) {
	h := BlockHeader{
		Beacon:       CheckpointBeacon{CheckpointEpoch: 100, HashPrevBlock: hashFromSeed(40)},
		Roots:        MerkleRoots{MintRoot: hashFromSeed(41)},
		VRFProof:     []byte("legacy-proof"),
		VRFPublicKey: []byte("legacy-pubkey"),
	}
	wire, err := h.MarshalWire(false)
	if err != nil {
		t.Fatalf("MarshalWire: %v", err)
	}
	got, err := ParseBlockHeader(wire)
	if err != nil {
		t.Fatalf("ParseBlockHeader: %v", err)
	}
	if !reflect.DeepEqual(got, h) {
		t.Fatalf("legacy round trip mismatch: got %+v, want %+v", got, h)
	}
}
