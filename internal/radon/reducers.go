package radon

import (
	"crypto/sha256"
	"math/big"
	"sort"
)

// ReducerKind identifies a reducer, passed as the first ArrayReduce
// argument. Reducers collapse Array<V> to a scalar V.
type ReducerKind int

const (
	ReducerMean ReducerKind = iota
	ReducerMedian
	ReducerMode
	ReducerHashConcatenate
)

// reduceArray dispatches to the named reducer. Median requires WIP0017 and
// HashConcatenate requires WIP0019 (spec.md §6); before activation they
// yield ErrUnsupportedReducer (an unknown reducer kind, like an unknown
// opcode, yields ErrUnsupportedOperator instead), so a script written for a future protocol version degrades safely rather than
// silently producing a wrong result.
func reduceArray(gates ActivationGates, items []Value, kind ReducerKind) Value {
	if len(items) == 0 {
		return Error(ErrEmptyArrayReduction)
	}
	switch kind {
	case ReducerMean:
		return reduceMean(items)
	case ReducerMedian:
		if !gates.wip0017() {
			return Error(ErrUnsupportedReducer, "median")
		}
		return reduceMedian(items)
	case ReducerMode:
		return reduceMode(items)
	case ReducerHashConcatenate:
		if !gates.wip0019() {
			return Error(ErrUnsupportedReducer, "hash_concatenate")
		}
		return reduceHashConcatenate(items)
	default:
		return Error(ErrUnsupportedOperator, "unknown reducer")
	}
}

func numericValues(items []Value) ([]float64, bool) {
	vals := make([]float64, len(items))
	for i, it := range items {
		f, ok := it.AsFloat64()
		if !ok {
			return nil, false
		}
		vals[i] = f
	}
	return vals, true
}

// allInteger reports whether every item is an Integer, in which case mean
// stays exact via big.Rat-free integer floor division matching the
// reference implementation's behavior of preserving Integer output for
// Integer input.
func allInteger(items []Value) bool {
	for _, it := range items {
		if it.Kind() != KindInteger {
			return false
		}
	}
	return true
}

func reduceMean(items []Value) Value {
	if allInteger(items) {
		sum := new(big.Int)
		for _, it := range items {
			sum.Add(sum, it.Integer())
		}
		return IntegerBig(new(big.Int).Div(sum, big.NewInt(int64(len(items)))))
	}
	vals, ok := numericValues(items)
	if !ok {
		return Error(ErrNonHomogeneousArray)
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return Float(sum / float64(len(vals)))
}

func reduceMedian(items []Value) Value {
	if allInteger(items) {
		sorted := append([]*big.Int(nil), itemsToBigInts(items)...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].Cmp(sorted[j]) < 0 })
		n := len(sorted)
		if n%2 == 1 {
			return IntegerBig(sorted[n/2])
		}
		sum := new(big.Int).Add(sorted[n/2-1], sorted[n/2])
		return IntegerBig(new(big.Int).Div(sum, big.NewInt(2)))
	}
	vals, ok := numericValues(items)
	if !ok {
		return Error(ErrNonHomogeneousArray)
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return Float(sorted[n/2])
	}
	return Float((sorted[n/2-1] + sorted[n/2]) / 2)
}

func itemsToBigInts(items []Value) []*big.Int {
	out := make([]*big.Int, len(items))
	for i, it := range items {
		out[i] = it.Integer()
	}
	return out
}

func reduceMode(items []Value) Value {
	filtered := filterMode(items)
	if filtered.IsError() {
		return filtered
	}
	return filtered.Items()[0]
}

// reduceHashConcatenate concatenates each element's canonical byte
// representation in array order and returns the SHA-256 digest as Bytes —
// used for consensus over non-numeric (e.g. Bytes/String) reveal sets
// where no arithmetic reducer applies.
func reduceHashConcatenate(items []Value) Value {
	h := sha256.New()
	for _, it := range items {
		switch it.Kind() {
		case KindBytes:
			h.Write(it.Bin())
		case KindString:
			h.Write([]byte(it.Str()))
		case KindInteger:
			h.Write(it.Integer().Bytes())
		default:
			return Error(ErrWrongArgumentType)
		}
	}
	return Bytes(h.Sum(nil))
}

func sha256sum(b []byte) []byte {
	sum := sha256.Sum256(b)
	return sum[:]
}
