package costfunc

import (
	"math"

	"github.com/xinkaiwang/tabuplacer/services/tabuplacer/internal/config"
	"github.com/xinkaiwang/tabuplacer/services/tabuplacer/internal/data"
	"gonum.org/v1/gonum/stat"
)

type CostFuncProvider interface {
	CalCost(resources []*data.Resource) float64
}

// CostBreakdown splits the objective into its two terms.
type CostBreakdown struct {
	Balance float64 // population stddev of utilization
	Penalty float64 // weighted overload
	Total   float64
}

// ImbalanceCostProvider implements CostFuncProvider:
// cost = stddev(load/capacity) + OverloadPenaltyWeight * sum(max(0, load-capacity)).
type ImbalanceCostProvider struct {
	Cfg config.CostfuncConfig
}

func NewImbalanceCostProvider(cfg config.CostfuncConfig) *ImbalanceCostProvider {
	return &ImbalanceCostProvider{Cfg: cfg}
}

func (icp *ImbalanceCostProvider) CalCost(resources []*data.Resource) float64 {
	return icp.Breakdown(resources).Total
}

func (icp *ImbalanceCostProvider) Breakdown(resources []*data.Resource) CostBreakdown {
	cb := CostBreakdown{}
	if len(resources) == 0 {
		return cb
	}
	utils := make([]float64, len(resources))
	overload := 0.0
	for i, r := range resources {
		utils[i] = r.Utilization()
		overload += r.Overload()
	}
	_, variance := stat.PopMeanVariance(utils, nil)
	cb.Balance = math.Sqrt(variance)
	cb.Penalty = overload * icp.Cfg.OverloadPenaltyWeight
	cb.Total = cb.Balance + cb.Penalty
	return cb
}
