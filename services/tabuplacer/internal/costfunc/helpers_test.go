package costfunc

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xinkaiwang/tabuplacer/services/tabuplacer/internal/config"
	"github.com/xinkaiwang/tabuplacer/services/tabuplacer/internal/data"
)

// twoByTwo: 2 resources of capacity 10, workloads w6 and w4.
func twoByTwo(t *testing.T) *data.Instance {
	inst, err := data.NewInstance(
		[]*data.Resource{data.NewResource("r1", 10), data.NewResource("r2", 10)},
		[]*data.Workload{data.NewWorkload("w6", 6), data.NewWorkload("w4", 4)},
	)
	require.Nil(t, err)
	return inst
}

func defaultCost() *ImbalanceCostProvider {
	return NewImbalanceCostProvider(config.NewCostfuncConfig())
}

// requirePartition checks every workload of inst is on exactly one resource.
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
		require.InDelta(t, load, r.CurrentLoad, 1e-9, "load of %s", r.ResourceId)
	}
	require.Equal(t, inst.WorkloadCount(), len(seen))
	for wid, n := range seen {
		require.Equal(t, 1, n, "workload %s", wid)
	}
}
