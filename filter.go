// filter.go — frame visibility chain for color-backtrace.
//
// Scope:
//   - First-match-wins chains of per-frame predicates: built-in filters
//     (post-panic cutoff, runtime-init tail) run before user filters in
//     registration order; decisions are not merged.
//   - A frame no filter has an opinion on is shown.
//   - Hidden frames are never silently dropped: consecutive runs are
//     collapsed and surface in the output as a single "N frames hidden"
//     count, so the full frame count is always accounted for.
package colorbacktrace

// Decision is a filter's verdict on a single frame. The first definite
// verdict along the chain wins; Pass defers to the next filter.
type Decision int8

const (
	// DecisionPass defers to the next filter in the chain.
	DecisionPass Decision = iota
	// DecisionShow makes the frame visible, short-circuiting the chain.
	DecisionShow
	// DecisionHide hides the frame, short-circuiting the chain.
	DecisionHide
)

// Filter decides the visibility of one frame. It receives the frame,
// its index within the trace (innermost first), and the whole trace for
// positional decisions. Filters must not mutate the trace and must be
// safe for concurrent calls: one registered Filter may serve several
// renders at once on different traces.
type Filter func(f *Frame, index int, trace Trace) Decision

// -----------------------------------------------------------------------------
// Built-in filters
// -----------------------------------------------------------------------------

// postPanicCutoff hides every frame from the innermost up to and
// including the last post-panic marker. The markers are the panic
// machinery's own frames; everything inside them is reporting noise.
func postPanicCutoff(trace Trace) Filter {
	cutoff := -1
	for i := range trace {
		if trace[i].IsPostPanicMarker() {
			cutoff = i
		}
	}
	return func(_ *Frame, index int, _ Trace) Decision {
		if index <= cutoff {
			return DecisionHide
		}
		return DecisionPass
	}
}

// runtimeInitTail hides the contiguous run of runtime bootstrap frames
// at the far end of the trace (closest to process entry). Interior
// runtime frames are left alone: the run must reach the end.
func runtimeInitTail(trace Trace) Filter {
	tail := len(trace)
	for tail > 0 && trace[tail-1].IsRuntimeInit() {
		tail--
	}
	return func(_ *Frame, index int, _ Trace) Decision {
		if index >= tail {
			return DecisionHide
		}
		return DecisionPass
	}
}

// builtinFilters assembles the fixed-order built-in chain for one
// render. Both hiding filters are disabled at Full verbosity, where
// every captured frame is shown.
func builtinFilters(trace Trace, v Verbosity) []Filter {
	if v >= VerbosityFull {
		return nil
	}
	return []Filter{
		postPanicCutoff(trace),
		runtimeInitTail(trace),
	}
}

// -----------------------------------------------------------------------------
// Visibility computation
// -----------------------------------------------------------------------------

// computeVisibility runs the chain over every frame and returns one
// visibility flag per frame. showAll bypasses the chain entirely (the
// show-hidden override). Single linear pass; no frame is revisited.
func computeVisibility(trace Trace, builtin, user []Filter, showAll bool) []bool {
	visible := make([]bool, len(trace))
	if showAll {
		for i := range visible {
			visible[i] = true
		}
		return visible
	}
	for i := range trace {
		visible[i] = decideFrame(&trace[i], i, trace, builtin, user)
	}
	return visible
}

func decideFrame(f *Frame, index int, trace Trace, builtin, user []Filter) bool {
	for _, chain := range [2][]Filter{builtin, user} {
		for _, flt := range chain {
			switch flt(f, index, trace) {
			case DecisionShow:
				return true
			case DecisionHide:
				return false
			}
		}
	}
	// No filter claimed the frame: show.
	return true
}

// hiddenRun is one collapsed stretch of hidden frames.
type hiddenRun struct {
	start int // index of the first hidden frame
	count int
}

// hiddenRuns collapses consecutive false flags into runs. The sum of
// all counts plus the number of true flags equals len(visible).
func hiddenRuns(visible []bool) []hiddenRun {
	var runs []hiddenRun
	for i := 0; i < len(visible); {
		if visible[i] {
			i++
			continue
		}
		run := hiddenRun{start: i}
		for i < len(visible) && !visible[i] {
			run.count++
			i++
		}
		runs = append(runs, run)
	}
	return runs
}
