package solver

import (
	"context"
	"math"

	"github.com/xinkaiwang/tabuplacer/libs/xklib/kmetrics"
	"github.com/xinkaiwang/tabuplacer/services/tabuplacer/internal/data"
)

var (
	TabuIterationCountMetrics  = kmetrics.CreateKmetric(context.Background(), "tabu_iteration_count", "iterations run per search", []string{"stop"})
	TabuMoveEvalCountMetrics   = kmetrics.CreateKmetric(context.Background(), "tabu_move_eval_count", "candidate moves scored per iteration", []string{"policy"})
	TabuSearchElapsedMsMetrics = kmetrics.CreateKmetric(context.Background(), "tabu_search_elapsed_ms", "wall time per search", []string{"stop"})

	ResourceUtilizationGauge = kmetrics.NewGaugeGroup("tabu_resource_utilization_permille", "utilization of each resource in the best placement", "resource")
)

func reportPlacement(resources []*data.Resource) {
	seqs := make([]*kmetrics.GaugeTimeSequence, 0, len(resources))
	for _, r := range resources {
		seqs = append(seqs, ResourceUtilizationGauge.NewSequence(int64(math.Round(r.Utilization()*1000)), string(r.ResourceId)))
	}
	ResourceUtilizationGauge.UpdateValues(seqs...)
}
