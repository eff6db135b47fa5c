package radon

import "math"

// FilterKind identifies a filter, passed as the first ArrayFilter argument
// (spec.md §4.1): filters operate on Array<V> and return the sub-array
// that survives the filter, or an Error on a non-homogeneous array.
type FilterKind int

const (
	FilterDeviationStdDev FilterKind = iota
	FilterModeFilter
)

// filterArray dispatches to the named filter. extra is the filter's single
// numeric parameter (sigmas for the deviation filter; unused for mode).
func filterArray(items []Value, kind FilterKind, extra float64) Value {
	switch kind {
	case FilterDeviationStdDev:
		return filterDeviation(items, extra)
	case FilterModeFilter:
		return filterMode(items)
	default:
		return Error(ErrUnsupportedOperator, "unknown filter")
	}
}

// filterDeviation keeps elements within sigmas*stddev of the mean. For a
// 1-D numeric array this is a direct mean/stddev pass. For a 2-D array
// (array of same-length numeric arrays) it filters row-wise: a row
// survives only if every column value is within tolerance for that column,
// matching the reference implementation's per-column gating.
func filterDeviation(items []Value, sigmas float64) Value {
	if len(items) == 0 {
		return Array(nil)
	}
	if items[0].Kind() == KindArray {
		return filterDeviation2D(items, sigmas)
	}
	vals := make([]float64, len(items))
	for i, it := range items {
		f, ok := it.AsFloat64()
		if !ok {
			return Error(ErrNonHomogeneousArray)
		}
		vals[i] = f
	}
	mean, std := meanStdDev(vals)
	var out []Value
	for i, f := range vals {
		if math.Abs(f-mean) <= sigmas*std {
			out = append(out, items[i])
		}
	}
	return Array(out)
}

func filterDeviation2D(rows []Value, sigmas float64) Value {
	width := -1
	cols := [][]float64{}
	for _, row := range rows {
		if row.Kind() != KindArray {
			return Error(ErrNonHomogeneousArray)
		}
		cells := row.Items()
		if width == -1 {
			width = len(cells)
			cols = make([][]float64, width)
		} else if len(cells) != width {
			return Error(ErrNonHomogeneousArray)
		}
		for c, cell := range cells {
			f, ok := cell.AsFloat64()
			if !ok {
				return Error(ErrNonHomogeneousArray)
			}
			cols[c] = append(cols[c], f)
		}
	}
	means := make([]float64, width)
	stds := make([]float64, width)
	for c := 0; c < width; c++ {
		means[c], stds[c] = meanStdDev(cols[c])
	}
	var out []Value
	for r, row := range rows {
		ok := true
		for c := 0; c < width; c++ {
			if math.Abs(cols[c][r]-means[c]) > sigmas*stds[c] {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, row)
		}
	}
	return Array(out)
}

func meanStdDev(vals []float64) (mean, std float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	mean = sum / float64(len(vals))
	var sq float64
	for _, v := range vals {
		d := v - mean
		sq += d * d
	}
	std = math.Sqrt(sq / float64(len(vals)))
	return mean, std
}

// filterMode keeps only the elements equal to the array's mode (most
// frequent value). Requires a homogeneous, comparable array.
func filterMode(items []Value) Value {
	if len(items) == 0 {
		return Array(nil)
	}
	keyOf := func(v Value) (string, bool) {
		switch v.Kind() {
		case KindString:
			return "s:" + v.Str(), true
		case KindInteger:
			return "i:" + v.Integer().String(), true
		case KindBoolean:
			return "b:" + v.String(), true
		default:
			return "", false
		}
	}
	counts := map[string]int{}
	for _, it := range items {
		k, ok := keyOf(it)
		if !ok || it.Kind() != items[0].Kind() {
			return Error(ErrNonHomogeneousArray)
		}
		counts[k]++
	}
	var bestKey string
	best := -1
	for _, it := range items {
		k, _ := keyOf(it)
		if counts[k] > best {
			best = counts[k]
			bestKey = k
		}
	}
	var out []Value
	for _, it := range items {
		k, _ := keyOf(it)
		if k == bestKey {
			out = append(out, it)
		}
	}
	return Array(out)
}
