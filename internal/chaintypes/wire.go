package chaintypes

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/rawblock/witnet-core/internal/radon"
)

// This file hand-rolls the protobuf wire encoding for every chaintypes
// message using protowire directly rather than generated pb.go code — the
// same primitive the generated code builds on. Field numbers below are
// scoped per message type (a field 1 in OutputPointer has nothing to do
// with field 1 in Input); only MarshalWire and the ParseTransaction/
// ParseBlockHeader decoders are exported, the field numbering is an
// implementation detail.
//
// Every encoder omits zero-valued varint fields and empty variable-length
// fields so that re-encoding a parsed message reproduces the original bytes
// exactly (spec.md §6). Fixed-size Hash/PublicKeyHash fields and the
// Transaction kind are always written, zero or not.

func appendBytesField(b []byte, num protowire.Number, data []byte) []byte {
	if len(data) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, data)
}

func appendVarintField(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendStringField(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

// --- OutputPointer ---

func (p OutputPointer) MarshalWire() ([]byte, error) {
	var b []byte
	b = appendBytesField(b, 1, p.TransactionHash[:])
	b = appendVarintField(b, 2, uint64(p.OutputIndex))
	return b, nil
}

func parseOutputPointer(data []byte) (OutputPointer, error) {
	var p OutputPointer
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return p, fmt.Errorf("chaintypes: output pointer: bad tag")
		}
		data = data[n:]
		switch num {
		case 1:
			bs, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return p, fmt.Errorf("chaintypes: output pointer: bad hash")
			}
			data = data[n:]
			copy(p.TransactionHash[:], bs)
		case 2:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return p, fmt.Errorf("chaintypes: output pointer: bad index")
			}
			data = data[n:]
			p.OutputIndex = uint32(v)
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return p, fmt.Errorf("chaintypes: output pointer: unknown field")
			}
			data = data[n:]
		}
	}
	return p, nil
}

// --- ValueTransferOutput ---

func (o ValueTransferOutput) MarshalWire() ([]byte, error) {
	var b []byte
	b = appendBytesField(b, 1, o.PKH[:])
	b = appendVarintField(b, 2, uint64(o.Value))
	b = appendVarintField(b, 3, uint64(o.TimeLock))
	return b, nil
}

func parseValueTransferOutput(data []byte) (ValueTransferOutput, error) {
	var o ValueTransferOutput
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return o, fmt.Errorf("chaintypes: vt output: bad tag")
		}
		data = data[n:]
		switch num {
		case 1:
			bs, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return o, fmt.Errorf("chaintypes: vt output: bad pkh")
			}
			data = data[n:]
			copy(o.PKH[:], bs)
		case 2:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return o, fmt.Errorf("chaintypes: vt output: bad value")
			}
			data = data[n:]
			o.Value = Nanowits(v)
		case 3:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return o, fmt.Errorf("chaintypes: vt output: bad timelock")
			}
			data = data[n:]
			o.TimeLock = int64(v)
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return o, fmt.Errorf("chaintypes: vt output: unknown field")
			}
			data = data[n:]
		}
	}
	return o, nil
}

func marshalOutputs(outputs []ValueTransferOutput) ([][]byte, error) {
	out := make([][]byte, len(outputs))
	for i, o := range outputs {
		b, err := o.MarshalWire()
		if err != nil {
			return nil, err
		}
		out[i] = b
	}
	return out, nil
}

// --- Input ---

func (in Input) MarshalWire() ([]byte, error) {
	var b []byte
	pointerBytes, err := in.Pointer.MarshalWire()
	if err != nil {
		return nil, err
	}
	b = appendBytesField(b, 1, pointerBytes)
	b = appendBytesField(b, 2, in.Signature)
	b = appendBytesField(b, 3, in.PublicKey)
	return b, nil
}

func parseInput(data []byte) (Input, error) {
	var in Input
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return in, fmt.Errorf("chaintypes: input: bad tag")
		}
		data = data[n:]
		switch num {
		case 1:
			bs, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return in, fmt.Errorf("chaintypes: input: bad pointer")
			}
			data = data[n:]
			p, err := parseOutputPointer(bs)
			if err != nil {
				return in, err
			}
			in.Pointer = p
		case 2:
			bs, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return in, fmt.Errorf("chaintypes: input: bad signature")
			}
			data = data[n:]
			in.Signature = append([]byte(nil), bs...)
		case 3:
			bs, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return in, fmt.Errorf("chaintypes: input: bad public key")
			}
			data = data[n:]
			in.PublicKey = append([]byte(nil), bs...)
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return in, fmt.Errorf("chaintypes: input: unknown field")
			}
			data = data[n:]
		}
	}
	return in, nil
}

func marshalInputs(inputs []Input) ([][]byte, error) {
	out := make([][]byte, len(inputs))
	for i, in := range inputs {
		b, err := in.MarshalWire()
		if err != nil {
			return nil, err
		}
		out[i] = b
	}
	return out, nil
}

// --- RADRetrieval / DataRequestOutput ---

func (r RADRetrieval) MarshalWire() ([]byte, error) {
	var b []byte
	b = appendStringField(b, 1, r.Kind)
	b = appendStringField(b, 2, r.URL)
	scriptBytes, err := r.Script.MarshalWire()
	if err != nil {
		return nil, err
	}
	b = appendBytesField(b, 3, scriptBytes)
	return b, nil
}

func parseRADRetrieval(data []byte) (RADRetrieval, error) {
	var r RADRetrieval
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return r, fmt.Errorf("chaintypes: retrieval: bad tag")
		}
		data = data[n:]
		switch num {
		case 1:
			bs, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return r, fmt.Errorf("chaintypes: retrieval: bad kind")
			}
			data = data[n:]
			r.Kind = string(bs)
		case 2:
			bs, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return r, fmt.Errorf("chaintypes: retrieval: bad url")
			}
			data = data[n:]
			r.URL = string(bs)
		case 3:
			bs, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return r, fmt.Errorf("chaintypes: retrieval: bad script")
			}
			data = data[n:]
			s, err := radon.ParseScript(bs)
			if err != nil {
				return r, err
			}
			r.Script = s
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return r, fmt.Errorf("chaintypes: retrieval: unknown field")
			}
			data = data[n:]
		}
	}
	return r, nil
}

func (d DataRequestOutput) MarshalWire() ([]byte, error) {
	var b []byte
	for _, r := range d.Retrieve {
		rb, err := r.MarshalWire()
		if err != nil {
			return nil, err
		}
		b = appendBytesField(b, 1, rb)
	}
	aggBytes, err := d.Aggregate.MarshalWire()
	if err != nil {
		return nil, err
	}
	b = appendBytesField(b, 2, aggBytes)
	tallyBytes, err := d.Tally.MarshalWire()
	if err != nil {
		return nil, err
	}
	b = appendBytesField(b, 3, tallyBytes)
	b = appendVarintField(b, 4, uint64(d.Witnesses))
	b = appendVarintField(b, 5, uint64(d.CommitFee))
	b = appendVarintField(b, 6, uint64(d.RevealFee))
	b = appendVarintField(b, 7, uint64(d.TallyFee))
	b = appendVarintField(b, 8, uint64(d.CollateralAmount))
	b = appendVarintField(b, 9, uint64(d.MinConsensusPercentage))
	b = appendVarintField(b, 10, uint64(d.Value))
	return b, nil
}

func parseDataRequestOutput(data []byte) (DataRequestOutput, error) {
	var d DataRequestOutput
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return d, fmt.Errorf("chaintypes: dr output: bad tag")
		}
		data = data[n:]
		switch num {
		case 1:
			bs, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return d, fmt.Errorf("chaintypes: dr output: bad retrieval")
			}
			data = data[n:]
			r, err := parseRADRetrieval(bs)
			if err != nil {
				return d, err
			}
			d.Retrieve = append(d.Retrieve, r)
		case 2:
			bs, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return d, fmt.Errorf("chaintypes: dr output: bad aggregate")
			}
			data = data[n:]
			s, err := radon.ParseScript(bs)
			if err != nil {
				return d, err
			}
			d.Aggregate = s
		case 3:
			bs, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return d, fmt.Errorf("chaintypes: dr output: bad tally")
			}
			data = data[n:]
			s, err := radon.ParseScript(bs)
			if err != nil {
				return d, err
			}
			d.Tally = s
		case 4:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return d, fmt.Errorf("chaintypes: dr output: bad witnesses")
			}
			data = data[n:]
			d.Witnesses = uint32(v)
		case 5:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return d, fmt.Errorf("chaintypes: dr output: bad commit fee")
			}
			data = data[n:]
			d.CommitFee = Nanowits(v)
		case 6:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return d, fmt.Errorf("chaintypes: dr output: bad reveal fee")
			}
			data = data[n:]
			d.RevealFee = Nanowits(v)
		case 7:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return d, fmt.Errorf("chaintypes: dr output: bad tally fee")
			}
			data = data[n:]
			d.TallyFee = Nanowits(v)
		case 8:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return d, fmt.Errorf("chaintypes: dr output: bad collateral")
			}
			data = data[n:]
			d.CollateralAmount = Nanowits(v)
		case 9:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return d, fmt.Errorf("chaintypes: dr output: bad min consensus")
			}
			data = data[n:]
			d.MinConsensusPercentage = uint32(v)
		case 10:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return d, fmt.Errorf("chaintypes: dr output: bad value")
			}
			data = data[n:]
			d.Value = Nanowits(v)
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return d, fmt.Errorf("chaintypes: dr output: unknown field")
			}
			data = data[n:]
		}
	}
	return d, nil
}

// --- transaction bodies ---

func (m MintBody) MarshalWire() ([]byte, error) {
	var b []byte
	b = appendVarintField(b, 1, uint64(m.Epoch))
	outs, err := marshalOutputs(m.Outputs)
	if err != nil {
		return nil, err
	}
	for _, o := range outs {
		b = appendBytesField(b, 2, o)
	}
	return b, nil
}

func (v ValueTransferBody) MarshalWire() ([]byte, error) {
	var b []byte
	ins, err := marshalInputs(v.Inputs)
	if err != nil {
		return nil, err
	}
	for _, in := range ins {
		b = appendBytesField(b, 1, in)
	}
	outs, err := marshalOutputs(v.Outputs)
	if err != nil {
		return nil, err
	}
	for _, o := range outs {
		b = appendBytesField(b, 2, o)
	}
	return b, nil
}

func (d DataRequestBody) MarshalWire() ([]byte, error) {
	var b []byte
	ins, err := marshalInputs(d.Inputs)
	if err != nil {
		return nil, err
	}
	for _, in := range ins {
		b = appendBytesField(b, 1, in)
	}
	outs, err := marshalOutputs(d.Outputs)
	if err != nil {
		return nil, err
	}
	for _, o := range outs {
		b = appendBytesField(b, 2, o)
	}
	reqBytes, err := d.Request.MarshalWire()
	if err != nil {
		return nil, err
	}
	b = appendBytesField(b, 3, reqBytes)
	return b, nil
}

func (c CommitBody) MarshalWire() ([]byte, error) {
	var b []byte
	b = appendBytesField(b, 1, c.DRHash[:])
	b = appendBytesField(b, 2, c.Committer[:])
	b = appendBytesField(b, 3, c.CommitmentHash[:])
	ins, err := marshalInputs(c.CollateralInputs)
	if err != nil {
		return nil, err
	}
	for _, in := range ins {
		b = appendBytesField(b, 4, in)
	}
	outs, err := marshalOutputs(c.ChangeOutputs)
	if err != nil {
		return nil, err
	}
	for _, o := range outs {
		b = appendBytesField(b, 5, o)
	}
	b = appendBytesField(b, 6, c.VRFProof)
	b = appendBytesField(b, 7, c.VRFPublicKey)
	return b, nil
}

func (r RevealBody) MarshalWire() ([]byte, error) {
	var b []byte
	b = appendBytesField(b, 1, r.DRHash[:])
	b = appendBytesField(b, 2, r.Revealer[:])
	b = appendBytesField(b, 3, r.Result)
	return b, nil
}

func (t TallyBody) MarshalWire() ([]byte, error) {
	var b []byte
	b = appendBytesField(b, 1, t.DRHash[:])
	b = appendBytesField(b, 2, t.Result)
	outs, err := marshalOutputs(t.Outputs)
	if err != nil {
		return nil, err
	}
	for _, o := range outs {
		b = appendBytesField(b, 3, o)
	}
	for _, pkh := range t.OutOfConsensus {
		b = appendBytesField(b, 4, pkh[:])
	}
	for _, pkh := range t.ErrorCommitters {
		b = appendBytesField(b, 5, pkh[:])
	}
	return b, nil
}

func (s StakeBody) MarshalWire() ([]byte, error) {
	var b []byte
	ins, err := marshalInputs(s.Inputs)
	if err != nil {
		return nil, err
	}
	for _, in := range ins {
		b = appendBytesField(b, 1, in)
	}
	b = appendBytesField(b, 2, s.Validator[:])
	b = appendBytesField(b, 3, s.Withdrawer[:])
	b = appendVarintField(b, 4, uint64(s.Coins))
	outs, err := marshalOutputs(s.ChangeOutputs)
	if err != nil {
		return nil, err
	}
	for _, o := range outs {
		b = appendBytesField(b, 5, o)
	}
	return b, nil
}

func (u UnstakeBody) MarshalWire() ([]byte, error) {
	var b []byte
	b = appendBytesField(b, 1, u.Validator[:])
	b = appendBytesField(b, 2, u.Withdrawer[:])
	b = appendVarintField(b, 3, uint64(u.Coins))
	outBytes, err := u.Output.MarshalWire()
	if err != nil {
		return nil, err
	}
	b = appendBytesField(b, 4, outBytes)
	b = appendBytesField(b, 5, u.Signature)
	return b, nil
}

// --- Transaction ---

// MarshalWire encodes the Transaction's Kind discriminant and its active
// body as a nested message.
func (t *Transaction) MarshalWire() ([]byte, error) {
	var bodyBytes []byte
	var err error
	switch t.Kind {
	case TxMint:
		bodyBytes, err = t.Mint.MarshalWire()
	case TxValueTransfer:
		bodyBytes, err = t.ValueTransfer.MarshalWire()
	case TxDataRequest:
		bodyBytes, err = t.DataRequest.MarshalWire()
	case TxCommit:
		bodyBytes, err = t.Commit.MarshalWire()
	case TxReveal:
		bodyBytes, err = t.Reveal.MarshalWire()
	case TxTally:
		bodyBytes, err = t.Tally.MarshalWire()
	case TxStake:
		bodyBytes, err = t.Stake.MarshalWire()
	case TxUnstake:
		bodyBytes, err = t.Unstake.MarshalWire()
	default:
		return nil, fmt.Errorf("chaintypes: transaction: unknown kind %d", t.Kind)
	}
	if err != nil {
		return nil, err
	}
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(t.Kind))
	b = appendBytesField(b, 2, bodyBytes)
	return b, nil
}

// ParseTransaction decodes bytes produced by Transaction.MarshalWire.
func ParseTransaction(data []byte) (*Transaction, error) {
	var kind TransactionKind
	var haveKind bool
	var body []byte
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, fmt.Errorf("chaintypes: transaction: bad tag")
		}
		data = data[n:]
		switch num {
		case 1:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, fmt.Errorf("chaintypes: transaction: bad kind")
			}
			data = data[n:]
			kind = TransactionKind(v)
			haveKind = true
		case 2:
			bs, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, fmt.Errorf("chaintypes: transaction: bad body")
			}
			data = data[n:]
			body = bs
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return nil, fmt.Errorf("chaintypes: transaction: unknown field")
			}
			data = data[n:]
		}
	}
	if !haveKind {
		return nil, fmt.Errorf("chaintypes: transaction: missing kind")
	}
	t := &Transaction{Kind: kind}
	switch kind {
	case TxMint:
		m, err := parseMintBody(body)
		if err != nil {
			return nil, err
		}
		t.Mint = &m
	case TxValueTransfer:
		v, err := parseValueTransferBody(body)
		if err != nil {
			return nil, err
		}
		t.ValueTransfer = &v
	case TxDataRequest:
		d, err := parseDataRequestBody(body)
		if err != nil {
			return nil, err
		}
		t.DataRequest = &d
	case TxCommit:
		c, err := parseCommitBody(body)
		if err != nil {
			return nil, err
		}
		t.Commit = &c
	case TxReveal:
		r, err := parseRevealBody(body)
		if err != nil {
			return nil, err
		}
		t.Reveal = &r
	case TxTally:
		ta, err := parseTallyBody(body)
		if err != nil {
			return nil, err
		}
		t.Tally = &ta
	case TxStake:
		s, err := parseStakeBody(body)
		if err != nil {
			return nil, err
		}
		t.Stake = &s
	case TxUnstake:
		u, err := parseUnstakeBody(body)
		if err != nil {
			return nil, err
		}
		t.Unstake = &u
	default:
		return nil, fmt.Errorf("chaintypes: transaction: unknown kind %d", kind)
	}
	return t, nil
}

func parseMintBody(data []byte) (MintBody, error) {
	var m MintBody
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return m, fmt.Errorf("chaintypes: mint body: bad tag")
		}
		data = data[n:]
		switch num {
		case 1:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return m, fmt.Errorf("chaintypes: mint body: bad epoch")
			}
			data = data[n:]
			m.Epoch = Epoch(v)
		case 2:
			bs, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return m, fmt.Errorf("chaintypes: mint body: bad output")
			}
			data = data[n:]
			o, err := parseValueTransferOutput(bs)
			if err != nil {
				return m, err
			}
			m.Outputs = append(m.Outputs, o)
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return m, fmt.Errorf("chaintypes: mint body: unknown field")
			}
			data = data[n:]
		}
	}
	return m, nil
}

func parseValueTransferBody(data []byte) (ValueTransferBody, error) {
	var v ValueTransferBody
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return v, fmt.Errorf("chaintypes: vt body: bad tag")
		}
		data = data[n:]
		switch num {
		case 1:
			bs, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return v, fmt.Errorf("chaintypes: vt body: bad input")
			}
			data = data[n:]
			in, err := parseInput(bs)
			if err != nil {
				return v, err
			}
			v.Inputs = append(v.Inputs, in)
		case 2:
			bs, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return v, fmt.Errorf("chaintypes: vt body: bad output")
			}
			data = data[n:]
			o, err := parseValueTransferOutput(bs)
			if err != nil {
				return v, err
			}
			v.Outputs = append(v.Outputs, o)
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return v, fmt.Errorf("chaintypes: vt body: unknown field")
			}
			data = data[n:]
		}
	}
	return v, nil
}

func parseDataRequestBody(data []byte) (DataRequestBody, error) {
	var d DataRequestBody
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return d, fmt.Errorf("chaintypes: dr body: bad tag")
		}
		data = data[n:]
		switch num {
		case 1:
			bs, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return d, fmt.Errorf("chaintypes: dr body: bad input")
			}
			data = data[n:]
			in, err := parseInput(bs)
			if err != nil {
				return d, err
			}
			d.Inputs = append(d.Inputs, in)
		case 2:
			bs, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return d, fmt.Errorf("chaintypes: dr body: bad output")
			}
			data = data[n:]
			o, err := parseValueTransferOutput(bs)
			if err != nil {
				return d, err
			}
			d.Outputs = append(d.Outputs, o)
		case 3:
			bs, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return d, fmt.Errorf("chaintypes: dr body: bad request")
			}
			data = data[n:]
			req, err := parseDataRequestOutput(bs)
			if err != nil {
				return d, err
			}
			d.Request = req
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return d, fmt.Errorf("chaintypes: dr body: unknown field")
			}
			data = data[n:]
		}
	}
	return d, nil
}

func parseCommitBody(data []byte) (CommitBody, error) {
	var c CommitBody
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return c, fmt.Errorf("chaintypes: commit body: bad tag")
		}
		data = data[n:]
		switch num {
		case 1:
			bs, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return c, fmt.Errorf("chaintypes: commit body: bad dr hash")
			}
			data = data[n:]
			copy(c.DRHash[:], bs)
		case 2:
			bs, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return c, fmt.Errorf("chaintypes: commit body: bad committer")
			}
			data = data[n:]
			copy(c.Committer[:], bs)
		case 3:
			bs, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return c, fmt.Errorf("chaintypes: commit body: bad commitment hash")
			}
			data = data[n:]
			copy(c.CommitmentHash[:], bs)
		case 4:
			bs, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return c, fmt.Errorf("chaintypes: commit body: bad collateral input")
			}
			data = data[n:]
			in, err := parseInput(bs)
			if err != nil {
				return c, err
			}
			c.CollateralInputs = append(c.CollateralInputs, in)
		case 5:
			bs, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return c, fmt.Errorf("chaintypes: commit body: bad change output")
			}
			data = data[n:]
			o, err := parseValueTransferOutput(bs)
			if err != nil {
				return c, err
			}
			c.ChangeOutputs = append(c.ChangeOutputs, o)
		case 6:
			bs, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return c, fmt.Errorf("chaintypes: commit body: bad vrf proof")
			}
			data = data[n:]
			c.VRFProof = append([]byte(nil), bs...)
		case 7:
			bs, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return c, fmt.Errorf("chaintypes: commit body: bad vrf pubkey")
			}
			data = data[n:]
			c.VRFPublicKey = append([]byte(nil), bs...)
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return c, fmt.Errorf("chaintypes: commit body: unknown field")
			}
			data = data[n:]
		}
	}
	return c, nil
}

func parseRevealBody(data []byte) (RevealBody, error) {
	var r RevealBody
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return r, fmt.Errorf("chaintypes: reveal body: bad tag")
		}
		data = data[n:]
		switch num {
		case 1:
			bs, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return r, fmt.Errorf("chaintypes: reveal body: bad dr hash")
			}
			data = data[n:]
			copy(r.DRHash[:], bs)
		case 2:
			bs, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return r, fmt.Errorf("chaintypes: reveal body: bad revealer")
			}
			data = data[n:]
			copy(r.Revealer[:], bs)
		case 3:
			bs, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return r, fmt.Errorf("chaintypes: reveal body: bad result")
			}
			data = data[n:]
			r.Result = append([]byte(nil), bs...)
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return r, fmt.Errorf("chaintypes: reveal body: unknown field")
			}
			data = data[n:]
		}
	}
	return r, nil
}

func parseTallyBody(data []byte) (TallyBody, error) {
	var t TallyBody
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return t, fmt.Errorf("chaintypes: tally body: bad tag")
		}
		data = data[n:]
		switch num {
		case 1:
			bs, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return t, fmt.Errorf("chaintypes: tally body: bad dr hash")
			}
			data = data[n:]
			copy(t.DRHash[:], bs)
		case 2:
			bs, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return t, fmt.Errorf("chaintypes: tally body: bad result")
			}
			data = data[n:]
			t.Result = append([]byte(nil), bs...)
		case 3:
			bs, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return t, fmt.Errorf("chaintypes: tally body: bad output")
			}
			data = data[n:]
			o, err := parseValueTransferOutput(bs)
			if err != nil {
				return t, err
			}
			t.Outputs = append(t.Outputs, o)
		case 4:
			bs, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return t, fmt.Errorf("chaintypes: tally body: bad out-of-consensus pkh")
			}
			data = data[n:]
			var pkh PublicKeyHash
			copy(pkh[:], bs)
			t.OutOfConsensus = append(t.OutOfConsensus, pkh)
		case 5:
			bs, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return t, fmt.Errorf("chaintypes: tally body: bad error committer pkh")
			}
			data = data[n:]
			var pkh PublicKeyHash
			copy(pkh[:], bs)
			t.ErrorCommitters = append(t.ErrorCommitters, pkh)
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return t, fmt.Errorf("chaintypes: tally body: unknown field")
			}
			data = data[n:]
		}
	}
	return t, nil
}

func parseStakeBody(data []byte) (StakeBody, error) {
	var s StakeBody
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return s, fmt.Errorf("chaintypes: stake body: bad tag")
		}
		data = data[n:]
		switch num {
		case 1:
			bs, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return s, fmt.Errorf("chaintypes: stake body: bad input")
			}
			data = data[n:]
			in, err := parseInput(bs)
			if err != nil {
				return s, err
			}
			s.Inputs = append(s.Inputs, in)
		case 2:
			bs, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return s, fmt.Errorf("chaintypes: stake body: bad validator")
			}
			data = data[n:]
			copy(s.Validator[:], bs)
		case 3:
			bs, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return s, fmt.Errorf("chaintypes: stake body: bad withdrawer")
			}
			data = data[n:]
			copy(s.Withdrawer[:], bs)
		case 4:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return s, fmt.Errorf("chaintypes: stake body: bad coins")
			}
			data = data[n:]
			s.Coins = Nanowits(v)
		case 5:
			bs, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return s, fmt.Errorf("chaintypes: stake body: bad change output")
			}
			data = data[n:]
			o, err := parseValueTransferOutput(bs)
			if err != nil {
				return s, err
			}
			s.ChangeOutputs = append(s.ChangeOutputs, o)
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return s, fmt.Errorf("chaintypes: stake body: unknown field")
			}
			data = data[n:]
		}
	}
	return s, nil
}

func parseUnstakeBody(data []byte) (UnstakeBody, error) {
	var u UnstakeBody
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return u, fmt.Errorf("chaintypes: unstake body: bad tag")
		}
		data = data[n:]
		switch num {
		case 1:
			bs, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return u, fmt.Errorf("chaintypes: unstake body: bad validator")
			}
			data = data[n:]
			copy(u.Validator[:], bs)
		case 2:
			bs, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return u, fmt.Errorf("chaintypes: unstake body: bad withdrawer")
			}
			data = data[n:]
			copy(u.Withdrawer[:], bs)
		case 3:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return u, fmt.Errorf("chaintypes: unstake body: bad coins")
			}
			data = data[n:]
			u.Coins = Nanowits(v)
		case 4:
			bs, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return u, fmt.Errorf("chaintypes: unstake body: bad output")
			}
			data = data[n:]
			o, err := parseValueTransferOutput(bs)
			if err != nil {
				return u, err
			}
			u.Output = o
		case 5:
			bs, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return u, fmt.Errorf("chaintypes: unstake body: bad signature")
			}
			data = data[n:]
			u.Signature = append([]byte(nil), bs...)
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return u, fmt.Errorf("chaintypes: unstake body: unknown field")
			}
			data = data[n:]
		}
	}
	return u, nil
}

// --- BlockHeader ---

// MarshalWire encodes the header. When canonical is false (legacy,
// pre-V2 shape) the stake/unstake root and BN256 key fields are never
// written, even if populated — a legacy block by definition predates V2
// and must round-trip to the shorter legacy byte shape.
func (h BlockHeader) MarshalWire(canonical bool) ([]byte, error) {
	var b []byte
	b = appendVarintField(b, 1, uint64(h.Beacon.CheckpointEpoch))
	b = appendBytesField(b, 2, h.Beacon.HashPrevBlock[:])
	b = appendBytesField(b, 3, h.Roots.MintRoot[:])
	b = appendBytesField(b, 4, h.Roots.ValueTransferRoot[:])
	b = appendBytesField(b, 5, h.Roots.DataRequestRoot[:])
	b = appendBytesField(b, 6, h.Roots.CommitRoot[:])
	b = appendBytesField(b, 7, h.Roots.RevealRoot[:])
	b = appendBytesField(b, 8, h.Roots.TallyRoot[:])
	if canonical {
		b = appendBytesField(b, 9, h.Roots.StakeRoot[:])
		b = appendBytesField(b, 10, h.Roots.UnstakeRoot[:])
	}
	b = appendBytesField(b, 11, h.VRFProof)
	b = appendBytesField(b, 12, h.VRFPublicKey)
	if canonical {
		b = appendBytesField(b, 13, h.BN256PublicKey)
	}
	return b, nil
}

// ParseBlockHeader decodes bytes produced by BlockHeader.MarshalWire. The
// legacy/canonical shape does not need to be supplied by the caller: it is
// recovered from which fields are present on the wire.
func ParseBlockHeader(data []byte) (BlockHeader, error) {
	var h BlockHeader
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return h, fmt.Errorf("chaintypes: block header: bad tag")
		}
		data = data[n:]
		switch num {
		case 1:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return h, fmt.Errorf("chaintypes: block header: bad epoch")
			}
			data = data[n:]
			h.Beacon.CheckpointEpoch = Epoch(v)
		case 2:
			bs, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return h, fmt.Errorf("chaintypes: block header: bad hash_prev_block")
			}
			data = data[n:]
			copy(h.Beacon.HashPrevBlock[:], bs)
		case 3:
			bs, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return h, fmt.Errorf("chaintypes: block header: bad mint root")
			}
			data = data[n:]
			copy(h.Roots.MintRoot[:], bs)
		case 4:
			bs, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return h, fmt.Errorf("chaintypes: block header: bad value transfer root")
			}
			data = data[n:]
			copy(h.Roots.ValueTransferRoot[:], bs)
		case 5:
			bs, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return h, fmt.Errorf("chaintypes: block header: bad data request root")
			}
			data = data[n:]
			copy(h.Roots.DataRequestRoot[:], bs)
		case 6:
			bs, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return h, fmt.Errorf("chaintypes: block header: bad commit root")
			}
			data = data[n:]
			copy(h.Roots.CommitRoot[:], bs)
		case 7:
			bs, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return h, fmt.Errorf("chaintypes: block header: bad reveal root")
			}
			data = data[n:]
			copy(h.Roots.RevealRoot[:], bs)
		case 8:
			bs, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return h, fmt.Errorf("chaintypes: block header: bad tally root")
			}
			data = data[n:]
			copy(h.Roots.TallyRoot[:], bs)
		case 9:
			bs, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return h, fmt.Errorf("chaintypes: block header: bad stake root")
			}
			data = data[n:]
			copy(h.Roots.StakeRoot[:], bs)
		case 10:
			bs, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return h, fmt.Errorf("chaintypes: block header: bad unstake root")
			}
			data = data[n:]
			copy(h.Roots.UnstakeRoot[:], bs)
		case 11:
			bs, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return h, fmt.Errorf("chaintypes: block header: bad vrf proof")
			}
			data = data[n:]
			h.VRFProof = append([]byte(nil), bs...)
		case 12:
			bs, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return h, fmt.Errorf("chaintypes: block header: bad vrf pubkey")
			}
			data = data[n:]
			h.VRFPublicKey = append([]byte(nil), bs...)
		case 13:
			bs, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return h, fmt.Errorf("chaintypes: block header: bad bn256 pubkey")
			}
			data = data[n:]
			h.BN256PublicKey = append([]byte(nil), bs...)
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return h, fmt.Errorf("chaintypes: block header: unknown field")
			}
			data = data[n:]
		}
	}
	return h, nil
}
