package chaintypes

// TransactionKind tags which body a Transaction carries — the sum-type
// design spec.md §9 calls for in place of the source's dynamic dispatch.
type TransactionKind int

const (
	TxMint TransactionKind = iota
	TxValueTransfer
	TxDataRequest
	TxCommit
	TxReveal
	TxTally
	TxStake
	TxUnstake
)

func (k TransactionKind) String() string {
	names := [...]string{"Mint", "ValueTransfer", "DataRequest", "Commit", "Reveal", "Tally", "Stake", "Unstake"}
	if int(k) < len(names) {
		return names[k]
	}
	return "Unknown"
}

// Input references a previously-consolidated output being spent.
type Input struct {
	Pointer   OutputPointer
	Signature []byte // detached signature over the transaction body
	PublicKey []byte
}

// MintBody is the coinbase-equivalent transaction: no inputs, outputs
// summing to block_reward(epoch)+fees, at most two outputs (spec.md §4.6).
type MintBody struct {
	Epoch   Epoch
	Outputs []ValueTransferOutput
}

// ValueTransferBody moves value between PKHs.
type ValueTransferBody struct {
	Inputs  []Input
	Outputs []ValueTransferOutput
}

// DataRequestBody posts a new data request, paying for its own execution.
type DataRequestBody struct {
	Inputs  []Input
	Outputs []ValueTransferOutput // change output(s), if any
	Request DataRequestOutput
}

// CommitBody is a witness's commitment to a (not yet revealed) result,
// backed by collateral inputs and a VRF eligibility proof.
type CommitBody struct {
	DRHash          Hash
	Committer       PublicKeyHash
	CommitmentHash  Hash // hash of (reveal value || nonce), revealed later
	CollateralInputs []Input
	ChangeOutputs   []ValueTransferOutput
	VRFProof        []byte
	VRFPublicKey    []byte
}

// RevealBody discloses the value committed to earlier.
type RevealBody struct {
	DRHash   Hash
	Revealer PublicKeyHash
	Result   []byte // serialized radon.Value
}

// TallyBody is the synthesized consensus result of a data request.
type TallyBody struct {
	DRHash         Hash
	Result         []byte // serialized radon.Value produced by the tally script
	Outputs        []ValueTransferOutput
	OutOfConsensus []PublicKeyHash
	ErrorCommitters []PublicKeyHash
}

// StakeBody deposits coins into the stakes tracker for (Validator,
// Withdrawer).
type StakeBody struct {
	Inputs     []Input
	Validator  PublicKeyHash
	Withdrawer PublicKeyHash
	Coins      Nanowits
	ChangeOutputs []ValueTransferOutput
}

// UnstakeBody withdraws coins back to a value-transfer output.
type UnstakeBody struct {
	Validator  PublicKeyHash
	Withdrawer PublicKeyHash
	Coins      Nanowits
	Output     ValueTransferOutput
	Signature  []byte
}

// Transaction is the tagged union over every on-chain transaction type.
// Exactly one of the body fields is populated, selected by Kind.
type Transaction struct {
	Kind TransactionKind

	Mint          *MintBody
	ValueTransfer *ValueTransferBody
	DataRequest   *DataRequestBody
	Commit        *CommitBody
	Reveal        *RevealBody
	Tally         *TallyBody
	Stake         *StakeBody
	Unstake       *UnstakeBody
}

// Hash returns the transaction's content-address: SHA-256 of its wire
// (protobuf) encoding (spec.md §6 hash domain separation).
func (t *Transaction) Hash() (Hash, error) {
	b, err := t.MarshalWire()
	if err != nil {
		return Hash{}, err
	}
	return HashFromBytes(b), nil
}

// SigningHash is the message every input/withdrawal signature is computed
// over: the transaction's wire encoding with every Signature field blanked
// out first, so the hash doesn't depend on the signature it's meant to
// authenticate. Inputs of the same transaction all sign this same hash.
func (t *Transaction) SigningHash() (Hash, error) {
	stripped := *t
	switch stripped.Kind {
	case TxValueTransfer:
		body := *stripped.ValueTransfer
		body.Inputs = stripInputSignatures(body.Inputs)
		stripped.ValueTransfer = &body
	case TxDataRequest:
		body := *stripped.DataRequest
		body.Inputs = stripInputSignatures(body.Inputs)
		stripped.DataRequest = &body
	case TxCommit:
		body := *stripped.Commit
		body.CollateralInputs = stripInputSignatures(body.CollateralInputs)
		stripped.Commit = &body
	case TxStake:
		body := *stripped.Stake
		body.Inputs = stripInputSignatures(body.Inputs)
		stripped.Stake = &body
	case TxUnstake:
		body := *stripped.Unstake
		body.Signature = nil
		stripped.Unstake = &body
	}
	b, err := stripped.MarshalWire()
	if err != nil {
		return Hash{}, err
	}
	return HashFromBytes(b), nil
}

func stripInputSignatures(inputs []Input) []Input {
	if len(inputs) == 0 {
		return inputs
	}
	out := make([]Input, len(inputs))
	for i, in := range inputs {
		out[i] = Input{Pointer: in.Pointer}
	}
	return out
}
