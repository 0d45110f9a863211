package costfunc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xinkaiwang/tabuplacer/services/tabuplacer/internal/config"
	"github.com/xinkaiwang/tabuplacer/services/tabuplacer/internal/data"
)

func TestCostTwoByTwo(t *testing.T) {
	inst := twoByTwo(t)
	cost := defaultCost()

	ss, _ := NewSolutionState(inst, map[data.ResourceId][]data.WorkloadId{"r1": {"w6", "w4"}})
	resources, err := ss.Materialize()
	require.Nil(t, err)
	cb := cost.Breakdown(resources)
	assert.InDelta(t, 0.8, cb.Balance, 1e-9)
	assert.InDelta(t, 60.0, cb.Penalty, 1e-9)
	assert.InDelta(t, 60.8, cost.CalCost(resources), 1e-9)

	next, err := ss.ApplyMove(NewMove("r1", "r2", "w4"))
	require.Nil(t, err)
	resources, err = next.Materialize()
	require.Nil(t, err)
	assert.InDelta(t, 0.1, cost.CalCost(resources), 1e-9)
}

func TestCostDeterministicAndNonNegative(t *testing.T) {
	inst := twoByTwo(t)
	cost := defaultCost()
	ss, _ := NewSolutionState(inst, map[data.ResourceId][]data.WorkloadId{"r2": {"w6", "w4"}})
	resources, _ := ss.Materialize()
	v1 := cost.CalCost(resources)
	v2 := cost.CalCost(resources)
	assert.Equal(t, v1, v2)
	assert.True(t, v1 >= 0)
}

func TestCostDegenerate(t *testing.T) {
	cost := defaultCost()
	assert.Equal(t, 0.0, cost.CalCost(nil))
	assert.Equal(t, 0.0, cost.CalCost([]*data.Resource{}))

	// zero capacity and no load: utilization 0, no fault
	zero := []*data.Resource{data.NewResource("z1", 0), data.NewResource("z2", 0)}
	assert.Equal(t, 0.0, cost.CalCost(zero))

	single := []*data.Resource{data.NewResource("s1", 10)}
	single[0].Add(data.NewWorkload("a", 4))
	assert.Equal(t, 0.0, cost.CalCost(single))
}

func TestCostZeroCapacityWithLoadIsPenalized(t *testing.T) {
	r := data.NewResource("z", 0)
	r.Add(data.NewWorkload("a", 3))
	cb := defaultCost().Breakdown([]*data.Resource{r, data.NewResource("s", 10)})
	assert.Equal(t, 0.0, cb.Balance)
	assert.Equal(t, 30.0, cb.Penalty)
}

func TestCostPenaltyWeight(t *testing.T) {
	r := data.NewResource("s", 10)
	r.Add(data.NewWorkload("a", 12))
	cost := NewImbalanceCostProvider(config.CostfuncConfig{OverloadPenaltyWeight: 1})
	assert.InDelta(t, 2.0, cost.CalCost([]*data.Resource{r}), 1e-9)
}
