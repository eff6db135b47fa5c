package radon

import (
	"fmt"
	"math"
	"math/big"

	"google.golang.org/protobuf/encoding/protowire"
)

// Wire field numbers for the hand-rolled protobuf encoding of a Value.
// There is no .proto/generated-code step here (RADON values are a small,
// internal-only wire shape) — fields are appended with protowire directly,
// the same low-level primitive the generated pb.go code would use under
// the hood. This keeps the "serialize first, then hash" and "round-trips
// byte-for-byte" invariants (spec.md §6) exact without a build step this
// exercise cannot run.
const (
	fieldKind    = 1
	fieldInteger = 2
	fieldFloat   = 3
	fieldString  = 4
	fieldBoolean = 5
	fieldBytes   = 6
	fieldArray   = 7
	fieldMapKey  = 8 // only used inside a map-entry sub-message
	fieldMapVal  = 9
	fieldMapEntry = 10
	fieldErrKind = 11
	fieldErrArgs = 12
)

// MarshalWire encodes v as a protobuf-shaped message. The kind tag and
// the value field(s) of v's own Kind are always written, even when
// zero-valued; fields of other Kinds are never written, so two
// semantically equal Values always produce identical bytes.
func (v Value) MarshalWire() ([]byte, error) {
	var b []byte
	b = protowire.AppendTag(b, fieldKind, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(v.kind))
	switch v.kind {
	case KindInteger:
		b = protowire.AppendTag(b, fieldInteger, protowire.BytesType)
		b = protowire.AppendBytes(b, encodeBigInt(v.integer))
	case KindFloat:
		b = protowire.AppendTag(b, fieldFloat, protowire.Fixed64Type)
		b = protowire.AppendFixed64(b, math.Float64bits(v.float))
	case KindString:
		b = protowire.AppendTag(b, fieldString, protowire.BytesType)
		b = protowire.AppendString(b, v.str)
	case KindBoolean:
		b = protowire.AppendTag(b, fieldBoolean, protowire.VarintType)
		b = protowire.AppendVarint(b, boolToUint64(v.boolean))
	case KindBytes:
		b = protowire.AppendTag(b, fieldBytes, protowire.BytesType)
		b = protowire.AppendBytes(b, v.bytes)
	case KindArray:
		for _, item := range v.array {
			itemBytes, err := item.MarshalWire()
			if err != nil {
				return nil, err
			}
			b = protowire.AppendTag(b, fieldArray, protowire.BytesType)
			b = protowire.AppendBytes(b, itemBytes)
		}
	case KindMap:
		keys := sortedKeys(v.mapping)
		for _, k := range keys {
			entry, err := marshalMapEntry(k, v.mapping[k])
			if err != nil {
				return nil, err
			}
			b = protowire.AppendTag(b, fieldMapEntry, protowire.BytesType)
			b = protowire.AppendBytes(b, entry)
		}
	case KindError:
		b = protowire.AppendTag(b, fieldErrKind, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(v.errKind))
		for _, a := range v.errArgs {
			b = protowire.AppendTag(b, fieldErrArgs, protowire.BytesType)
			b = protowire.AppendString(b, a)
		}
	}
	return b, nil
}

func sortedKeys(m map[string]Value) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	return keys
}

func marshalMapEntry(key string, val Value) ([]byte, error) {
	var b []byte
	b = protowire.AppendTag(b, fieldMapKey, protowire.BytesType)
	b = protowire.AppendString(b, key)
	valBytes, err := val.MarshalWire()
	if err != nil {
		return nil, err
	}
	b = protowire.AppendTag(b, fieldMapVal, protowire.BytesType)
	b = protowire.AppendBytes(b, valBytes)
	return b, nil
}

func boolToUint64(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

// encodeBigInt encodes a big.Int as a sign byte (0x00 non-negative, 0x01
// negative) followed by the absolute value's big-endian bytes.
func encodeBigInt(n *big.Int) []byte {
	if n == nil {
		n = new(big.Int)
	}
	sign := byte(0)
	if n.Sign() < 0 {
		sign = 1
	}
	abs := new(big.Int).Abs(n).Bytes()
	out := make([]byte, 1+len(abs))
	out[0] = sign
	copy(out[1:], abs)
	return out
}

func decodeBigInt(b []byte) *big.Int {
	if len(b) == 0 {
		return new(big.Int)
	}
	n := new(big.Int).SetBytes(b[1:])
	if b[0] == 1 {
		n.Neg(n)
	}
	return n
}

// ParseValue decodes bytes produced by Value.MarshalWire.
func ParseValue(b []byte) (Value, error) {
	var v Value
	var haveKind bool
	entries := map[string]Value{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return Value{}, fmt.Errorf("radon: parse value: bad tag")
		}
		b = b[n:]
		switch num {
		case fieldKind:
			val, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return Value{}, fmt.Errorf("radon: parse value: bad kind")
			}
			b = b[n:]
			v.kind = Kind(val)
			haveKind = true
		case fieldInteger:
			bs, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return Value{}, fmt.Errorf("radon: parse value: bad integer")
			}
			b = b[n:]
			v.integer = decodeBigInt(bs)
		case fieldFloat:
			val, n := protowire.ConsumeFixed64(b)
			if n < 0 {
				return Value{}, fmt.Errorf("radon: parse value: bad float")
			}
			b = b[n:]
			v.float = math.Float64frombits(val)
		case fieldString:
			bs, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return Value{}, fmt.Errorf("radon: parse value: bad string")
			}
			b = b[n:]
			v.str = string(bs)
		case fieldBoolean:
			val, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return Value{}, fmt.Errorf("radon: parse value: bad bool")
			}
			b = b[n:]
			v.boolean = val != 0
		case fieldBytes:
			bs, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return Value{}, fmt.Errorf("radon: parse value: bad bytes")
			}
			b = b[n:]
			v.bytes = append([]byte(nil), bs...)
		case fieldArray:
			bs, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return Value{}, fmt.Errorf("radon: parse value: bad array item")
			}
			b = b[n:]
			item, err := ParseValue(bs)
			if err != nil {
				return Value{}, err
			}
			v.array = append(v.array, item)
		case fieldMapEntry:
			bs, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return Value{}, fmt.Errorf("radon: parse value: bad map entry")
			}
			b = b[n:]
			k, val, err := parseMapEntry(bs)
			if err != nil {
				return Value{}, err
			}
			entries[k] = val
		case fieldErrKind:
			val, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return Value{}, fmt.Errorf("radon: parse value: bad error kind")
			}
			b = b[n:]
			v.errKind = ErrorKind(val)
		case fieldErrArgs:
			bs, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return Value{}, fmt.Errorf("radon: parse value: bad error arg")
			}
			b = b[n:]
			v.errArgs = append(v.errArgs, string(bs))
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return Value{}, fmt.Errorf("radon: parse value: unknown field")
			}
			b = b[n:]
		}
	}
	if !haveKind {
		return Value{}, fmt.Errorf("radon: parse value: missing kind")
	}
	if v.kind == KindMap {
		v.mapping = entries
	}
	return v, nil
}

// MarshalWire encodes a Script by reusing the Value wire format via
// Subscript — a script is just the Value shape ArrayMap already uses to
// carry a sub-script as a Call argument.
func (s Script) MarshalWire() ([]byte, error) {
	return Subscript(s).MarshalWire()
}

// ParseScript decodes bytes produced by Script.MarshalWire.
func ParseScript(b []byte) (Script, error) {
	v, err := ParseValue(b)
	if err != nil {
		return nil, err
	}
	return decodeSubscript(v), nil
}

func parseMapEntry(b []byte) (string, Value, error) {
	var key string
	var val Value
	for len(b) > 0 {
		num, _, n := protowire.ConsumeTag(b)
		if n < 0 {
			return "", Value{}, fmt.Errorf("radon: parse map entry: bad tag")
		}
		b = b[n:]
		switch num {
		case fieldMapKey:
			bs, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return "", Value{}, fmt.Errorf("radon: parse map entry: bad key")
			}
			b = b[n:]
			key = string(bs)
		case fieldMapVal:
			bs, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return "", Value{}, fmt.Errorf("radon: parse map entry: bad value")
			}
			b = b[n:]
			v, err := ParseValue(bs)
			if err != nil {
				return "", Value{}, err
			}
			val = v
		default:
			return "", Value{}, fmt.Errorf("radon: parse map entry: unknown field %d", num)
		}
	}
	return key, val, nil
}
