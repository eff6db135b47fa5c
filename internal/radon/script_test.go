package radon

import "testing"

func gatesAt(epoch uint32) ActivationGates {
	return ActivationGates{
		CurrentEpoch: epoch,
		WIP0017Epoch: 100,
		WIP0019Epoch: 100,
		WIP0024Epoch: 100,
	}
}

// TestScenarioF_SeparatorActivation mirrors spec.md §8 scenario F.
func TestScenarioF_SeparatorActivation(t *testing.T) {
	before := gatesAt(50)
	res := RunToValue(before, String("1,234.567"), Script{{Op: OpStringAsFloat}})
	if !res.IsError() || res.ErrorKind() != ErrParseFloat {
		t.Fatalf("expected ParseFloat error before WIP0024, got %v", res)
	}

	after := gatesAt(150)
	res = RunToValue(after, String("1,234.567"), Script{{Op: OpStringAsFloat}})
	if res.IsError() || res.Kind() != KindFloat || res.Float() != 1234.567 {
		t.Fatalf("expected Float(1234.567) after WIP0024 with no args, got %v", res)
	}

	res = RunToValue(after, String("1.234,567"), Script{{Op: OpStringAsFloat, Args: []Value{String("."), String(",")}}})
	if res.IsError() || res.Kind() != KindFloat || res.Float() != 1234.567 {
		t.Fatalf("expected Float(1234.567) with explicit separators, got %v", res)
	}
}

// TestErrorPropagation checks invariant §8.7: a failing call at index i
// short-circuits the rest of the script, with BreakpointIndex == i and the
// partial result equal to the value right before the rest of the calls
// were (no-op) applied.
func TestErrorPropagation(t *testing.T) {
	gates := gatesAt(0)
	script := Script{
		{Op: OpIntegerSum, Args: []Value{Integer(1)}}, // index 0: fine
		{Op: OpStringLength},                          // index 1: wrong receiver type -> Error
		{Op: OpIntegerSum, Args: []Value{Integer(1)}},  // index 2: no-op, acc stays Error
	}
	report := Run(gates, Integer(5), script, ReportSettings{TrackPartialResults: true})
	if report.BreakpointIndex == nil || *report.BreakpointIndex != 1 {
		t.Fatalf("expected breakpoint at index 1, got %v", report.BreakpointIndex)
	}
	if !report.Result.IsError() {
		t.Fatalf("expected final result to be an Error value, got %v", report.Result)
	}
	if !report.PartialResults[2].Equal(report.Result) {
		t.Fatalf("expected result to freeze at the breakpoint value")
	}
}

func TestFilterDeviationAndReduceMean(t *testing.T) {
	gates := gatesAt(0)
	arr := Array([]Value{Float(10), Float(11), Float(9), Float(1000)})
	filtered := Operate(gates, arr, Call{Op: OpArrayFilter, Args: []Value{Integer(int64(FilterDeviationStdDev)), Float(1.0)}})
	if filtered.IsError() {
		t.Fatalf("unexpected filter error: %v", filtered)
	}
	if len(filtered.Items()) != 3 {
		t.Fatalf("expected outlier 1000 to be filtered out, got %d items", len(filtered.Items()))
	}
	mean := Operate(gates, filtered, Call{Op: OpArrayReduce, Args: []Value{Integer(int64(ReducerMean))}})
	if mean.IsError() {
		t.Fatalf("unexpected reduce error: %v", mean)
	}
}

func TestReduceMedianGatedByWIP0017(t *testing.T) {
	before := gatesAt(0)
	arr := Array([]Value{Integer(1), Integer(2), Integer(3)})
	res := Operate(before, arr, Call{Op: OpArrayReduce, Args: []Value{Integer(int64(ReducerMedian))}})
	if !res.IsError() || res.ErrorKind() != ErrUnsupportedReducer {
		t.Fatalf("expected median to be gated off before WIP0017, got %v", res)
	}

	after := gatesAt(200)
	res = Operate(after, arr, Call{Op: OpArrayReduce, Args: []Value{Integer(int64(ReducerMedian))}})
	if res.IsError() || res.Integer().Int64() != 2 {
		t.Fatalf("expected median 2, got %v", res)
	}
}

// TestOpFloatRoundHalfAwayFromZero checks round-half-away-from-zero on both
// sides of zero, not just truncation toward zero.
func TestOpFloatRoundHalfAwayFromZero(t *testing.T) {
	gates := gatesAt(0)
	cases := []struct {
		in   float64
		want int64
	}{
		{2.5, 3},
		{-2.5, -3},
		{2.4, 2},
		{-2.4, -2},
		{0.5, 1},
		{-0.5, -1},
	}
	for _, c := range cases {
		res := Operate(gates, Float(c.in), Call{Op: OpFloatRound})
		if res.IsError() || res.Kind() != KindInteger || res.Integer().Int64() != c.want {
			t.Fatalf("round(%v): expected %d, got %v", c.in, c.want, res)
		}
	}
}
