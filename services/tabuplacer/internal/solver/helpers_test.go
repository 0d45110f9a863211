package solver

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xinkaiwang/tabuplacer/services/tabuplacer/internal/costfunc"
	"github.com/xinkaiwang/tabuplacer/services/tabuplacer/internal/data"
)

func newInstance(t *testing.T, capacities []float64, demands []float64) *data.Instance {
	resources := make([]*data.Resource, len(capacities))
	for i, c := range capacities {
		resources[i] = data.NewResource(data.ResourceId(fmt.Sprintf("s%d", i+1)), c)
	}
	workloads := make([]*data.Workload, len(demands))
	for i, d := range demands {
		workloads[i] = data.NewWorkload(data.WorkloadId(fmt.Sprintf("app%d", i+1)), d)
	}
	inst, err := data.NewInstance(resources, workloads)
	require.Nil(t, err)
	return inst
}

// fiveByFifteen mirrors the bundled example instance.
func fiveByFifteen(t *testing.T) *data.Instance {
	return newInstance(t,
		[]float64{100, 120, 80, 150, 90},
		[]float64{30, 50, 25, 40, 35, 60, 20, 45, 15, 55, 30, 25, 40, 30, 20})
}

func twoByTwo(t *testing.T) *data.Instance {
	inst, err := data.NewInstance(
		[]*data.Resource{data.NewResource("r1", 10), data.NewResource("r2", 10)},
		[]*data.Workload{data.NewWorkload("w6", 6), data.NewWorkload("w4", 4)},
	)
	require.Nil(t, err)
	return inst
}

func requirePartition(t *testing.T, inst *data.Instance, resources []*data.Resource) {
	seen := map[data.WorkloadId]int{}
	for _, r := range resources {
		load := 0.0
		for _, wid := range r.Workloads {
			seen[wid]++
			wl, ok := inst.GetWorkload(wid)
			require.True(t, ok)
			load += wl.Demand
		}
		require.InDelta(t, load, r.CurrentLoad, 1e-9)
	}
	require.Equal(t, inst.WorkloadCount(), len(seen))
	for _, n := range seen {
		require.Equal(t, 1, n)
	}
}

func allOn(t *testing.T, inst *data.Instance, rid data.ResourceId) *costfunc.SolutionState {
	wls := []data.WorkloadId{}
	for _, wl := range inst.Workloads() {
		wls = append(wls, wl.WorkloadId)
	}
	ss, err := costfunc.NewSolutionState(inst, map[data.ResourceId][]data.WorkloadId{rid: wls})
	require.Nil(t, err)
	return ss
}
