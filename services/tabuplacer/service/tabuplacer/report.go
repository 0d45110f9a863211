package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/xinkaiwang/tabuplacer/services/tabuplacer/internal/data"
	"github.com/xinkaiwang/tabuplacer/services/tabuplacer/internal/solver"
	"github.com/xinkaiwang/tabuplacer/services/tabuplacer/tpjson"
)

const (
	chartWidth = 40
	sparkRunes = "▁▂▃▄▅▆▇█"
)

// formatResource renders one resource as "S1: 95/100 (95.0%) - [App-1(30) App-7(20)]".
func formatResource(inst *data.Instance, r *data.Resource) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %g/%g (%.1f%%) - [", r.ResourceId, r.CurrentLoad, r.Capacity, r.Utilization()*100)
	for i, wid := range r.Workloads {
		if i > 0 {
			sb.WriteString(" ")
		}
		if wl, ok := inst.GetWorkload(wid); ok {
			fmt.Fprintf(&sb, "%s(%g)", wid, wl.Demand)
		} else {
			sb.WriteString(string(wid))
		}
	}
	sb.WriteString("]")
	return sb.String()
}

func writePlacement(w io.Writer, inst *data.Instance, resources []*data.Resource) {
	for _, r := range resources {
		fmt.Fprintln(w, formatResource(inst, r))
	}
}

// writeBalanceChart draws one utilization bar per resource. The bar is capped at 100% and an
// overloaded resource gets a trailing '!'.
func writeBalanceChart(w io.Writer, resources []*data.Resource) {
	nameWidth := 0
	for _, r := range resources {
		if len(r.ResourceId) > nameWidth {
			nameWidth = len(r.ResourceId)
		}
	}
	for _, r := range resources {
		util := r.Utilization()
		filled := int(math.Round(math.Min(util, 1) * chartWidth))
		bar := strings.Repeat("#", filled) + strings.Repeat(".", chartWidth-filled)
		mark := ""
		if r.Overload() > 0 {
			mark = "!"
		}
		fmt.Fprintf(w, "%-*s |%s| %6.1f%%%s\n", nameWidth, r.ResourceId, bar, util*100, mark)
	}
}

// sparkline maps each value onto eight block heights between the trace min and max.
func sparkline(trace []float64) string {
	if len(trace) == 0 {
		return ""
	}
	lo, hi := trace[0], trace[0]
	for _, v := range trace {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	runes := []rune(sparkRunes)
	var sb strings.Builder
	for _, v := range trace {
		idx := 0
		if hi > lo {
			idx = int(math.Round((v - lo) / (hi - lo) * float64(len(runes)-1)))
		}
		sb.WriteRune(runes[idx])
	}
	return sb.String()
}

func writeTrace(w io.Writer, trace []float64) {
	if len(trace) == 0 {
		fmt.Fprintln(w, "(empty trace)")
		return
	}
	best := trace[0]
	for _, v := range trace {
		best = math.Min(best, v)
	}
	fmt.Fprintf(w, "%s\n", sparkline(trace))
	fmt.Fprintf(w, "start=%.4f end=%.4f min=%.4f points=%d\n", trace[0], trace[len(trace)-1], best, len(trace))
}

func newIterationPrinter(w io.Writer) solver.IterationObserver {
	return func(_ context.Context, info solver.IterationInfo) {
		fmt.Fprintf(w, "Iteration %d: value=%.4f, best=%.4f\n", info.Iteration, info.Value, info.GlobalBestValue)
	}
}

// buildPlacementJson captures the engine's final state after a run.
func buildPlacementJson(engine *solver.TabuSearchEngine, initialValue float64, trace []float64, elapsedMs int64) *tpjson.PlacementJson {
	breakdown := engine.Breakdown()
	pj := &tpjson.PlacementJson{
		RunId:        engine.RunId(),
		InitialValue: initialValue,
		BestValue:    engine.GlobalBestValue(),
		Balance:      breakdown.Balance,
		Penalty:      breakdown.Penalty,
		Iterations:   engine.Iterations(),
		StopReason:   string(engine.StopReason()),
		Trace:        trace,
		SolverConfig: engine.SolverConfig().ToJsonObj(),
		ElapsedMs:    elapsedMs,
	}
	if pj.Trace == nil {
		pj.Trace = []float64{}
	}
	for _, r := range engine.Resources() {
		pj.Resources = append(pj.Resources, tpjson.NewResourcePlacementJson(r))
	}
	if pj.Resources == nil {
		pj.Resources = []*tpjson.ResourcePlacementJson{}
	}
	return pj
}
