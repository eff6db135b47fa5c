package radon

import (
	"encoding/json"
	"math"
	"math/big"
	"sort"
	"strings"
)

// ActivationGates carries the epoch-indexed protocol activations that gate
// RADON behavior (spec.md §6). CurrentEpoch is the epoch of the block (or
// current tip) the script is being evaluated under.
type ActivationGates struct {
	CurrentEpoch   uint32
	WIP0017Epoch   uint32 // median reducer
	WIP0019Epoch   uint32 // hash-concatenate reducer
	WIP0024Epoch   uint32 // localized number-separator arguments
}

func (g ActivationGates) wip0017() bool { return g.CurrentEpoch >= g.WIP0017Epoch }
func (g ActivationGates) wip0019() bool { return g.CurrentEpoch >= g.WIP0019Epoch }
func (g ActivationGates) wip0024() bool { return g.CurrentEpoch >= g.WIP0024Epoch }

// Operate applies one Call to acc and returns the resulting Value. If acc
// is already an Error, it passes through untouched — this is what makes
// error propagation "free" for the rest of the script.
func Operate(gates ActivationGates, acc Value, call Call) Value {
	if acc.IsError() {
		return acc
	}
	switch acc.Kind() {
	case KindArray:
		return operateArray(gates, acc, call)
	case KindMap:
		return operateMap(gates, acc, call)
	case KindString:
		return operateString(gates, acc, call)
	case KindInteger:
		return operateInteger(acc, call)
	case KindFloat:
		return operateFloat(acc, call)
	case KindBoolean:
		return operateBoolean(acc, call)
	case KindBytes:
		return operateBytes(acc, call)
	default:
		return unsupported(acc.Kind(), call.Op)
	}
}

func operateArray(gates ActivationGates, acc Value, call Call) Value {
	items := acc.Items()
	switch call.Op {
	case OpArrayCount:
		return Integer(int64(len(items)))
	case OpArrayFlatten:
		var flat []Value
		for _, it := range items {
			if it.Kind() == KindArray {
				flat = append(flat, it.Items()...)
			} else {
				flat = append(flat, it)
			}
		}
		return Array(flat)
	case OpArraySort:
		return arraySort(items)
	case OpArrayGet:
		if len(call.Args) != 1 || call.Args[0].Kind() != KindInteger {
			return argCountError(1, len(call.Args))
		}
		idx := int(call.Args[0].Integer().Int64())
		if idx < 0 || idx >= len(items) {
			return Error(ErrArrayIndexOutOfBounds)
		}
		return items[idx]
	case OpArrayGetFloat, OpArrayGetInteger, OpArrayGetString, OpArrayGetArray, OpArrayGetMap:
		return arrayGetTyped(gates, items, call)
	case OpArrayMap:
		if len(call.Args) != 1 || call.Args[0].Kind() != KindArray {
			return argCountError(1, len(call.Args))
		}
		sub := decodeSubscript(call.Args[0])
		mapped := make([]Value, len(items))
		for i, item := range items {
			report := Run(gates, item, sub, ReportSettings{})
			mapped[i] = report.Result
		}
		return Array(mapped)
	case OpArrayReduce:
		if len(call.Args) < 1 || call.Args[0].Kind() != KindInteger {
			return argCountError(1, len(call.Args))
		}
		return reduceArray(gates, items, ReducerKind(call.Args[0].Integer().Int64()))
	case OpArrayFilter:
		if len(call.Args) < 1 || call.Args[0].Kind() != KindInteger {
			return argCountError(1, len(call.Args))
		}
		var extra float64
		if len(call.Args) >= 2 {
			extra, _ = call.Args[1].AsFloat64()
		}
		return filterArray(items, FilterKind(call.Args[0].Integer().Int64()), extra)
	default:
		return unsupported(acc.Kind(), call.Op)
	}
}

func arraySort(items []Value) Value {
	if len(items) == 0 {
		return Array(nil)
	}
	kind := items[0].Kind()
	out := append([]Value(nil), items...)
	switch kind {
	case KindInteger:
		sort.Slice(out, func(i, j int) bool {
			if out[i].Kind() != KindInteger || out[j].Kind() != KindInteger {
				return false
			}
			return out[i].Integer().Cmp(out[j].Integer()) < 0
		})
	case KindFloat:
		sort.Slice(out, func(i, j int) bool {
			return out[i].Float() < out[j].Float()
		})
	case KindString:
		sort.Slice(out, func(i, j int) bool { return out[i].Str() < out[j].Str() })
	default:
		return Error(ErrNonHomogeneousArray)
	}
	return Array(out)
}

func arrayGetTyped(gates ActivationGates, items []Value, call Call) Value {
	if len(call.Args) < 1 || call.Args[0].Kind() != KindInteger {
		return argCountError(1, len(call.Args))
	}
	idx := int(call.Args[0].Integer().Int64())
	if idx < 0 || idx >= len(items) {
		return Error(ErrArrayIndexOutOfBounds)
	}
	elem := items[idx]
	extraArgs := call.Args[1:]
	switch call.Op {
	case OpArrayGetFloat:
		if elem.Kind() == KindString {
			return stringAsFloat(elem.Str(), extraArgs, gates.wip0024())
		}
		if len(extraArgs) > 0 && !gates.wip0024() {
			return argCountError(1, len(call.Args))
		}
		if f, ok := elem.AsFloat64(); ok {
			return Float(f)
		}
		return Error(ErrWrongArgumentType)
	case OpArrayGetInteger:
		if elem.Kind() == KindString {
			return stringAsInteger(elem.Str(), extraArgs, gates.wip0024())
		}
		if len(extraArgs) > 0 && !gates.wip0024() {
			return argCountError(1, len(call.Args))
		}
		if elem.Kind() == KindInteger {
			return elem
		}
		return Error(ErrWrongArgumentType)
	case OpArrayGetString:
		if elem.Kind() != KindString {
			return Error(ErrWrongArgumentType)
		}
		return elem
	case OpArrayGetArray:
		if elem.Kind() != KindArray {
			return Error(ErrWrongArgumentType)
		}
		return elem
	case OpArrayGetMap:
		if elem.Kind() != KindMap {
			return Error(ErrWrongArgumentType)
		}
		return elem
	default:
		return unsupported(KindArray, call.Op)
	}
}

func operateMap(gates ActivationGates, acc Value, call Call) Value {
	entries := acc.Entries()
	switch call.Op {
	case OpMapKeys:
		keys := make([]Value, 0, len(entries))
		names := make([]string, 0, len(entries))
		for k := range entries {
			names = append(names, k)
		}
		sort.Strings(names)
		for _, k := range names {
			keys = append(keys, String(k))
		}
		return Array(keys)
	case OpMapValues:
		names := make([]string, 0, len(entries))
		for k := range entries {
			names = append(names, k)
		}
		sort.Strings(names)
		vals := make([]Value, 0, len(entries))
		for _, k := range names {
			vals = append(vals, entries[k])
		}
		return Array(vals)
	case OpMapGet, OpMapGetArray, OpMapGetBoolean, OpMapGetBytes, OpMapGetFloat, OpMapGetInteger, OpMapGetMap, OpMapGetString:
		return mapGetTyped(gates, entries, call)
	default:
		return unsupported(KindMap, call.Op)
	}
}

func mapGetTyped(gates ActivationGates, entries map[string]Value, call Call) Value {
	if len(call.Args) < 1 || call.Args[0].Kind() != KindString {
		return argCountError(1, len(call.Args))
	}
	key := call.Args[0].Str()
	val, ok := entries[key]
	if !ok {
		return Error(ErrMapKeyNotFound, key)
	}
	extraArgs := call.Args[1:]
	switch call.Op {
	case OpMapGet:
		return val
	case OpMapGetFloat:
		if val.Kind() == KindString {
			return stringAsFloat(val.Str(), extraArgs, gates.wip0024())
		}
		if len(extraArgs) > 0 && !gates.wip0024() {
			return argCountError(1, len(call.Args))
		}
		if f, ok := val.AsFloat64(); ok {
			return Float(f)
		}
		return Error(ErrWrongArgumentType)
	case OpMapGetInteger:
		if val.Kind() == KindString {
			return stringAsInteger(val.Str(), extraArgs, gates.wip0024())
		}
		if len(extraArgs) > 0 && !gates.wip0024() {
			return argCountError(1, len(call.Args))
		}
		if val.Kind() == KindInteger {
			return val
		}
		return Error(ErrWrongArgumentType)
	case OpMapGetString:
		if val.Kind() != KindString {
			return Error(ErrWrongArgumentType)
		}
		return val
	case OpMapGetBoolean:
		if val.Kind() != KindBoolean {
			return Error(ErrWrongArgumentType)
		}
		return val
	case OpMapGetBytes:
		if val.Kind() != KindBytes {
			return Error(ErrWrongArgumentType)
		}
		return val
	case OpMapGetArray:
		if val.Kind() != KindArray {
			return Error(ErrWrongArgumentType)
		}
		return val
	case OpMapGetMap:
		if val.Kind() != KindMap {
			return Error(ErrWrongArgumentType)
		}
		return val
	default:
		return unsupported(KindMap, call.Op)
	}
}

func operateString(gates ActivationGates, acc Value, call Call) Value {
	s := acc.Str()
	switch call.Op {
	case OpStringLength:
		return Integer(int64(len(s)))
	case OpStringToLowercase:
		return String(strings.ToLower(s))
	case OpStringToUppercase:
		return String(strings.ToUpper(s))
	case OpStringAsBoolean:
		return Boolean(s != "" && s != "false" && s != "0")
	case OpStringAsBytes:
		return Bytes([]byte(s))
	case OpStringAsFloat:
		return stringAsFloat(s, call.Args, gates.wip0024())
	case OpStringAsInteger:
		return stringAsInteger(s, call.Args, gates.wip0024())
	case OpStringParseJSON:
		return parseJSONToValue(s)
	default:
		return unsupported(KindString, call.Op)
	}
}

func parseJSONToValue(s string) Value {
	var raw interface{}
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return Error(ErrParseJSON, err.Error())
	}
	return fromJSON(raw)
}

func fromJSON(raw interface{}) Value {
	switch t := raw.(type) {
	case nil:
		return String("")
	case bool:
		return Boolean(t)
	case float64:
		if t == float64(int64(t)) {
			return Integer(int64(t))
		}
		return Float(t)
	case string:
		return String(t)
	case []interface{}:
		out := make([]Value, len(t))
		for i, e := range t {
			out[i] = fromJSON(e)
		}
		return Array(out)
	case map[string]interface{}:
		out := make(map[string]Value, len(t))
		for k, e := range t {
			out[k] = fromJSON(e)
		}
		return Map(out)
	default:
		return Error(ErrParseJSON, "unsupported JSON value")
	}
}

func operateInteger(acc Value, call Call) Value {
	n := acc.Integer()
	switch call.Op {
	case OpIntegerAbsolute:
		return IntegerBig(new(big.Int).Abs(n))
	case OpIntegerNegate:
		return IntegerBig(new(big.Int).Neg(n))
	case OpIntegerAsFloat:
		f, _ := acc.AsFloat64()
		return Float(f)
	case OpIntegerAsString:
		return String(n.String())
	case OpIntegerSum:
		if len(call.Args) != 1 || call.Args[0].Kind() != KindInteger {
			return argCountError(1, len(call.Args))
		}
		return IntegerBig(new(big.Int).Add(n, call.Args[0].Integer()))
	case OpIntegerMultiply:
		if len(call.Args) != 1 || call.Args[0].Kind() != KindInteger {
			return argCountError(1, len(call.Args))
		}
		return IntegerBig(new(big.Int).Mul(n, call.Args[0].Integer()))
	case OpIntegerModulo:
		if len(call.Args) != 1 || call.Args[0].Kind() != KindInteger || call.Args[0].Integer().Sign() == 0 {
			return Error(ErrWrongArgumentType)
		}
		return IntegerBig(new(big.Int).Mod(n, call.Args[0].Integer()))
	case OpIntegerGreaterThan:
		if len(call.Args) != 1 || call.Args[0].Kind() != KindInteger {
			return argCountError(1, len(call.Args))
		}
		return Boolean(n.Cmp(call.Args[0].Integer()) > 0)
	case OpIntegerLessThan:
		if len(call.Args) != 1 || call.Args[0].Kind() != KindInteger {
			return argCountError(1, len(call.Args))
		}
		return Boolean(n.Cmp(call.Args[0].Integer()) < 0)
	default:
		return unsupported(KindInteger, call.Op)
	}
}

func operateFloat(acc Value, call Call) Value {
	f := acc.Float()
	switch call.Op {
	case OpFloatAbsolute:
		if f < 0 {
			return Float(-f)
		}
		return Float(f)
	case OpFloatNegate:
		return Float(-f)
	case OpFloatAsString:
		return String(acc.String())
	case OpFloatRound:
		// math.Round is half-away-from-zero (-2.5 -> -3), matching Rust's
		// f64::round() that the reference tally scripts are compiled
		// against; int64(f+0.5) rounded negative values toward zero instead.
		return Integer(int64(math.Round(f)))
	case OpFloatSum:
		if len(call.Args) != 1 {
			return argCountError(1, len(call.Args))
		}
		g, ok := call.Args[0].AsFloat64()
		if !ok {
			return Error(ErrWrongArgumentType)
		}
		return Float(f + g)
	case OpFloatMultiply:
		if len(call.Args) != 1 {
			return argCountError(1, len(call.Args))
		}
		g, ok := call.Args[0].AsFloat64()
		if !ok {
			return Error(ErrWrongArgumentType)
		}
		return Float(f * g)
	case OpFloatModulo:
		if len(call.Args) != 1 {
			return argCountError(1, len(call.Args))
		}
		g, ok := call.Args[0].AsFloat64()
		if !ok || g == 0 {
			return Error(ErrWrongArgumentType)
		}
		return Float(mathMod(f, g))
	case OpFloatGreaterThan:
		if len(call.Args) != 1 {
			return argCountError(1, len(call.Args))
		}
		g, _ := call.Args[0].AsFloat64()
		return Boolean(f > g)
	case OpFloatLessThan:
		if len(call.Args) != 1 {
			return argCountError(1, len(call.Args))
		}
		g, _ := call.Args[0].AsFloat64()
		return Boolean(f < g)
	default:
		return unsupported(KindFloat, call.Op)
	}
}

func mathMod(a, b float64) float64 {
	m := a - b*float64(int64(a/b))
	return m
}

func operateBoolean(acc Value, call Call) Value {
	switch call.Op {
	case OpBooleanNegate:
		return Boolean(!acc.Bool())
	case OpBooleanAsString:
		return String(acc.String())
	default:
		return unsupported(KindBoolean, call.Op)
	}
}

func operateBytes(acc Value, call Call) Value {
	switch call.Op {
	case OpBytesAsString:
		return String(string(acc.Bin()))
	case OpBytesHash:
		return Bytes(sha256sum(acc.Bin()))
	default:
		return unsupported(KindBytes, call.Op)
	}
}
