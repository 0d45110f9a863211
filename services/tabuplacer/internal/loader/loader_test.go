package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xinkaiwang/tabuplacer/libs/xklib/kerror"
	"github.com/xinkaiwang/tabuplacer/services/tabuplacer/internal/config"
	"github.com/xinkaiwang/tabuplacer/services/tabuplacer/internal/data"
	"github.com/xinkaiwang/tabuplacer/services/tabuplacer/internal/etcdprov"
	"github.com/xinkaiwang/tabuplacer/services/tabuplacer/tpjson"
)

func TestExampleInstance(t *testing.T) {
	problem, err := BuildInstance(ExampleInstance())
	require.Nil(t, err)
	assert.Equal(t, 5, problem.Instance.ResourceCount())
	assert.Equal(t, 15, problem.Instance.WorkloadCount())
	assert.Equal(t, 540.0, problem.Instance.TotalCapacity())
	assert.Equal(t, 520.0, problem.Instance.TotalDemand())
	assert.Equal(t, 100, problem.SolverConfig.MaxIterations)
	assert.Equal(t, 10, problem.SolverConfig.TabuTenure)
	assert.Equal(t, 20, problem.SolverConfig.MaxMovesPerIteration)
	assert.Equal(t, config.AP_Legacy, problem.SolverConfig.AcceptancePolicy)
	assert.Equal(t, 10.0, problem.CostfuncConfig.OverloadPenaltyWeight)
	assert.Nil(t, problem.InitialAssignment)
}

func TestLoadInstanceFromFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "inst.json")
	require.Nil(t, os.WriteFile(jsonPath, []byte(ExampleInstance().ToJson()), 0o644))
	ij, err := LoadInstanceFromFile(ctx, jsonPath)
	require.Nil(t, err)
	assert.Len(t, ij.Workloads, 15)

	yamlPath := filepath.Join(dir, "inst.yaml")
	require.Nil(t, os.WriteFile(yamlPath, []byte(ExampleInstance().ToYaml()), 0o644))
	ij, err = LoadInstanceFromFile(ctx, yamlPath)
	require.Nil(t, err)
	assert.Len(t, ij.Resources, 5)

	_, err = LoadInstanceFromFile(ctx, filepath.Join(dir, "missing.json"))
	assert.True(t, kerror.IsType(err, "InstanceReadError"))

	badPath := filepath.Join(dir, "bad.json")
	require.Nil(t, os.WriteFile(badPath, []byte("{not json"), 0o644))
	_, err = LoadInstanceFromFile(ctx, badPath)
	assert.True(t, kerror.IsType(err, "UnmarshalError"))
}

func TestLoadInstanceFromEtcd(t *testing.T) {
	ctx := context.Background()
	provider := etcdprov.NewFakeEtcdProvider()
	provider.Set(ctx, "/tabuplacer/instances/demo", ExampleInstance().ToJson())
	provider.Set(ctx, "/tabuplacer/instances/small", "resources:\n- id: a\n  capacity: 5\nworkloads: []\n")

	ij, err := LoadInstanceFromEtcd(ctx, provider, "/tabuplacer/instances/demo")
	require.Nil(t, err)
	assert.Len(t, ij.Resources, 5)

	ij, err = LoadInstanceFromEtcd(ctx, provider, "/tabuplacer/instances/small")
	require.Nil(t, err)
	assert.Equal(t, data.ResourceId("a"), ij.Resources[0].ResourceId)

	_, err = LoadInstanceFromEtcd(ctx, provider, "/tabuplacer/instances/none")
	assert.True(t, kerror.IsType(err, "KeyNotFound"))
}

type failingProvider struct {
	etcdprov.FakeEtcdProvider
}

func (f *failingProvider) Get(ctx context.Context, key string) etcdprov.EtcdKvItem {
	panic(kerror.Create("EtcdGetError", "unreachable").WithErrorCode(kerror.EC_NETWORK_ERR))
}

func (f *failingProvider) Set(ctx context.Context, key, value string) {
	panic(kerror.Create("EtcdPutError", "unreachable").WithErrorCode(kerror.EC_NETWORK_ERR))
}

func TestEtcdFailuresBecomeErrors(t *testing.T) {
	ctx := context.Background()
	provider := &failingProvider{}
	_, err := LoadInstanceFromEtcd(ctx, provider, "/k")
	assert.True(t, kerror.IsType(err, "EtcdGetError"))
	err = SavePlacementToEtcd(ctx, provider, "/k", &tpjson.PlacementJson{})
	assert.True(t, kerror.IsType(err, "EtcdPutError"))
}

func TestSavePlacementToEtcd(t *testing.T) {
	ctx := context.Background()
	provider := etcdprov.NewFakeEtcdProvider()
	pj := &tpjson.PlacementJson{RunId: "run-X", BestValue: 0.25, Trace: []float64{1, 0.25}}
	require.Nil(t, SavePlacementToEtcd(ctx, provider, "/tabuplacer/results/run-X", pj))
	back, err := tpjson.ParsePlacementJson(provider.Get(ctx, "/tabuplacer/results/run-X").Value)
	require.Nil(t, err)
	assert.Equal(t, 0.25, back.BestValue)
}

func TestBuildInstanceRejectsBadInput(t *testing.T) {
	ij := tpjson.NewInstanceJson().AddResource("s1", 10).AddResource("s1", 20)
	_, err := BuildInstance(ij)
	assert.True(t, kerror.IsType(err, "InvalidInstance"))

	ij = tpjson.NewInstanceJson().AddResource("", 10)
	_, err = BuildInstance(ij)
	assert.True(t, kerror.IsType(err, "InvalidInstance"))

	tenure := int32(0)
	ij = tpjson.NewInstanceJson().AddResource("s1", 10)
	ij.SolverConfig = &tpjson.SolverConfigJson{TabuTenure: &tenure}
	_, err = BuildInstance(ij)
	assert.True(t, kerror.IsType(err, "InvalidSolverConfig"))

	ij, err = tpjson.ParseInstanceJson(`{"resources":[{"id":"r1","capacity":10}],"workloads":[{"id":"a","demand":20}],"cost_func_cfg":{"overload_penalty_weight":-10}}`)
	require.Nil(t, err)
	problem, err := BuildInstance(ij)
	assert.Nil(t, problem)
	assert.True(t, kerror.IsType(err, "InvalidSolverConfig"))
}
