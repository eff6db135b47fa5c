// Package radon implements the typed, stack-oriented interpreter that
// executes a data request's retrieval, aggregation and tally scripts.
//
// Execution is purely functional: a Script is a sequence of Calls, and
// running it folds the script over an initial Value — result[i+1] =
// operate(result[i], call[i]) — exactly as spec.md §4.1 describes. A call
// that doesn't apply to the current Value's type never panics or aborts
// the script: it produces an Error Value that simply rides through the
// rest of the calls unevaluated, so one witness's malformed source never
// stops aggregation for the others.
package radon

import (
	"fmt"
	"math/big"
)

// Kind tags the variant held by a Value.
type Kind int

const (
	KindInteger Kind = iota
	KindFloat
	KindString
	KindBoolean
	KindBytes
	KindArray
	KindMap
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "Integer"
	case KindFloat:
		return "Float"
	case KindString:
		return "String"
	case KindBoolean:
		return "Boolean"
	case KindBytes:
		return "Bytes"
	case KindArray:
		return "Array"
	case KindMap:
		return "Map"
	case KindError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Value is the RADON value universe: V = {Integer, Float, String, Boolean,
// Bytes, Array<V>, Map<String,V>, Error(kind,args)}. It is implemented as a
// single struct rather than an interface-per-variant because scripts need
// to pattern-match on Kind constantly (every opcode dispatch starts with
// "is this the right receiver type?") and a flat struct keeps that one
// switch instead of a type assertion per call.
type Value struct {
	kind Kind

	integer *big.Int // i128-range integer, stored as big.Int (Go has no native i128)
	float   float64
	str     string
	boolean bool
	bytes   []byte
	array   []Value
	mapping map[string]Value

	errKind ErrorKind
	errArgs []string
}

func Integer(i int64) Value       { return Value{kind: KindInteger, integer: big.NewInt(i)} }
func IntegerBig(i *big.Int) Value { return Value{kind: KindInteger, integer: new(big.Int).Set(i)} }
func Float(f float64) Value       { return Value{kind: KindFloat, float: f} }
func String(s string) Value       { return Value{kind: KindString, str: s} }
func Boolean(b bool) Value        { return Value{kind: KindBoolean, boolean: b} }
func Bytes(b []byte) Value        { return Value{kind: KindBytes, bytes: append([]byte(nil), b...)} }
func Array(vs []Value) Value      { return Value{kind: KindArray, array: append([]Value(nil), vs...)} }
func Map(m map[string]Value) Value {
	cp := make(map[string]Value, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return Value{kind: KindMap, mapping: cp}
}

// Error constructs a RADON error Value. Unlike validation errors, this is
// not a Go error: it is a first-class value that the rest of a script
// continues to "process" (every subsequent opcode immediately
// short-circuits back to the same Error, per spec.md §7).
func Error(kind ErrorKind, args ...string) Value {
	return Value{kind: KindError, errKind: kind, errArgs: args}
}

func (v Value) Kind() Kind        { return v.kind }
func (v Value) IsError() bool     { return v.kind == KindError }
func (v Value) Integer() *big.Int { return v.integer }
func (v Value) Float() float64    { return v.float }
func (v Value) Str() string       { return v.str }
func (v Value) Bool() bool        { return v.boolean }
func (v Value) Bin() []byte       { return v.bytes }
func (v Value) Items() []Value    { return v.array }
func (v Value) Entries() map[string]Value {
	return v.mapping
}
func (v Value) ErrorKind() ErrorKind { return v.errKind }
func (v Value) ErrorArgs() []string  { return v.errArgs }

func (v Value) String() string {
	switch v.kind {
	case KindInteger:
		return v.integer.String()
	case KindFloat:
		return fmt.Sprintf("%g", v.float)
	case KindString:
		return v.str
	case KindBoolean:
		return fmt.Sprintf("%t", v.boolean)
	case KindBytes:
		return fmt.Sprintf("0x%x", v.bytes)
	case KindArray:
		return fmt.Sprintf("%v", v.array)
	case KindMap:
		return fmt.Sprintf("%v", v.mapping)
	case KindError:
		return fmt.Sprintf("RadonError(%s, %v)", v.errKind, v.errArgs)
	default:
		return "<invalid radon value>"
	}
}

// Equal reports deep equality between two Values. Value cannot use Go's
// built-in == since it embeds slices and maps (Array/Map/Error variants).
func (v Value) Equal(other Value) bool {
	return v.String() == other.String() && v.kind == other.kind
}

// AsFloat64 extracts a float64 out of Integer or Float values, used by
// reducers/filters that need numeric homogeneity checks.
func (v Value) AsFloat64() (float64, bool) {
	switch v.kind {
	case KindFloat:
		return v.float, true
	case KindInteger:
		f := new(big.Float).SetInt(v.integer)
		out, _ := f.Float64()
		return out, true
	default:
		return 0, false
	}
}
