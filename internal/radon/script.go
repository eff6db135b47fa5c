package radon

import "time"

// Script is a sequence of Calls executed by folding over an initial Value:
// result[i+1] = Operate(result[i], call[i]) (spec.md §4.1).
type Script []Call

// ReportSettings toggles which parts of an ExecutionReport get populated.
// Retrieval-stage scripts run with everything on so a client can inspect
// per-call partials. The validator's tally check runs the tally script
// with TrackPartialResults on, since it reads the first filter call's
// partial result to tell which reveals were in consensus.
type ReportSettings struct {
	TrackPartialResults bool
	TrackTimings        bool
}

// ExecutionReport is what every Script evaluation returns.
type ExecutionReport struct {
	Result          Value
	PartialResults  []Value
	Timings         []time.Duration
	BreakpointIndex *int // index of the call that first produced an Error, if any
}

// Run folds script over initial, producing an ExecutionReport. Once the
// running value becomes an Error, every subsequent call is still recorded
// (so PartialResults/Timings stay call-index aligned) but Operate is a
// pass-through (see Operate's acc.IsError() guard at the top).
func Run(gates ActivationGates, initial Value, script Script, settings ReportSettings) ExecutionReport {
	acc := initial
	report := ExecutionReport{}
	if settings.TrackPartialResults {
		report.PartialResults = make([]Value, 0, len(script)+1)
		report.PartialResults = append(report.PartialResults, acc)
	}
	for i, call := range script {
		var start time.Time
		if settings.TrackTimings {
			start = time.Now()
		}
		wasError := acc.IsError()
		acc = Operate(gates, acc, call)
		if settings.TrackTimings {
			report.Timings = append(report.Timings, time.Since(start))
		}
		if settings.TrackPartialResults {
			report.PartialResults = append(report.PartialResults, acc)
		}
		if !wasError && acc.IsError() && report.BreakpointIndex == nil {
			idx := i
			report.BreakpointIndex = &idx
		}
	}
	report.Result = acc
	return report
}

// RunToValue is the consensus-path shortcut used by aggregation and tally
// evaluation, where only the final Value matters.
func RunToValue(gates ActivationGates, initial Value, script Script) Value {
	return Run(gates, initial, script, ReportSettings{}).Result
}

// Subscript encodes a Script as a Value so it can travel as a Call
// argument (used by ArrayMap). Each call becomes a Map{"op": Integer,
// "args": Array}.
func Subscript(s Script) Value {
	items := make([]Value, len(s))
	for i, c := range s {
		items[i] = Map(map[string]Value{
			"op":   Integer(int64(c.Op)),
			"args": Array(c.Args),
		})
	}
	return Array(items)
}

func decodeSubscript(v Value) Script {
	items := v.Items()
	out := make(Script, 0, len(items))
	for _, it := range items {
		if it.Kind() != KindMap {
			continue
		}
		entries := it.Entries()
		op, ok := entries["op"]
		if !ok || op.Kind() != KindInteger {
			continue
		}
		var args []Value
		if a, ok := entries["args"]; ok && a.Kind() == KindArray {
			args = a.Items()
		}
		out = append(out, Call{Op: Opcode(op.Integer().Int64()), Args: args})
	}
	return out
}
