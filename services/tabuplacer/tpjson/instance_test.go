package tpjson

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xinkaiwang/tabuplacer/libs/xklib/kerror"
	"github.com/xinkaiwang/tabuplacer/services/tabuplacer/internal/data"
)

func TestParseInstanceJson(t *testing.T) {
	str := `{
  "resources": [{"id": "s1", "capacity": 100}, {"id": "s2", "capacity": 80}],
  "workloads": [{"id": "a", "demand": 30}],
  "initial_assignment": {"s2": ["a"]},
  "solver_config": {"max_iterations": 50, "acceptance_policy": "strict"},
  "cost_func_cfg": {"overload_penalty_weight": 5}
}`
	ij, err := ParseInstanceJson(str)
	require.Nil(t, err)
	assert.Len(t, ij.Resources, 2)
	assert.Equal(t, data.ResourceId("s2"), ij.Resources[1].ResourceId)
	assert.Equal(t, 80.0, ij.Resources[1].Capacity)
	assert.Equal(t, []data.WorkloadId{"a"}, ij.InitialAssignment["s2"])
	assert.Equal(t, int32(50), *ij.SolverConfig.MaxIterations)
	assert.Equal(t, "strict", *ij.SolverConfig.AcceptancePolicy)
	assert.Nil(t, ij.SolverConfig.TabuTenure)
	assert.Equal(t, 5.0, *ij.CostFuncCfg.OverloadPenaltyWeight)
}

func TestParseInstanceJsonBad(t *testing.T) {
	_, err := ParseInstanceJson(`{"resources": [`)
	assert.True(t, kerror.IsType(err, "UnmarshalError"))
}

func TestInstanceYaml(t *testing.T) {
	str := `
resources:
- id: s1
  capacity: 100
workloads:
- id: a
  demand: 30
- id: b
  demand: 20
solver_config:
  tabu_tenure: 4
`
	ij, err := ParseInstanceYaml(str)
	require.Nil(t, err)
	assert.Len(t, ij.Workloads, 2)
	assert.Equal(t, int32(4), *ij.SolverConfig.TabuTenure)

	back, err := ParseInstanceYaml(ij.ToYaml())
	require.Nil(t, err)
	assert.Equal(t, ij.ToJson(), back.ToJson())
}

func TestInstanceJsonBuilder(t *testing.T) {
	ij := NewInstanceJson().AddResource("s1", 10).AddWorkload("a", 3)
	assert.Equal(t, `{"resources":[{"id":"s1","capacity":10}],"workloads":[{"id":"a","demand":3}]}`, ij.ToJson())
}

func TestPlacementJson(t *testing.T) {
	r := data.NewResource("s1", 50)
	r.Add(data.NewWorkload("a", 25))
	pj := &PlacementJson{
		RunId:      "R1",
		Resources:  []*ResourcePlacementJson{NewResourcePlacementJson(r)},
		BestValue:  0.5,
		StopReason: "max_iterations",
		Trace:      []float64{1, 0.5},
	}
	back, err := ParsePlacementJson(pj.ToJson())
	require.Nil(t, err)
	assert.Equal(t, 0.5, back.Resources[0].Utilization)
	assert.Equal(t, []data.WorkloadId{"a"}, back.Resources[0].Workloads)
	assert.Equal(t, []float64{1, 0.5}, back.Trace)
}
