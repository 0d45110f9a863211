package loader

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/xinkaiwang/tabuplacer/libs/xklib/kcommon"
	"github.com/xinkaiwang/tabuplacer/libs/xklib/kerror"
	"github.com/xinkaiwang/tabuplacer/libs/xklib/klogging"
	"github.com/xinkaiwang/tabuplacer/services/tabuplacer/internal/config"
	"github.com/xinkaiwang/tabuplacer/services/tabuplacer/internal/data"
	"github.com/xinkaiwang/tabuplacer/services/tabuplacer/internal/etcdprov"
	"github.com/xinkaiwang/tabuplacer/services/tabuplacer/tpjson"
)

// Problem is everything one run needs, built from an InstanceJson.
type Problem struct {
	Instance          *data.Instance
	SolverConfig      *config.SolverConfig
	CostfuncConfig    config.CostfuncConfig
	InitialAssignment map[data.ResourceId][]data.WorkloadId // nil means seed randomly
}

// LoadInstanceFromFile reads json, or yaml when the extension is .yaml/.yml.
func LoadInstanceFromFile(ctx context.Context, path string) (*tpjson.InstanceJson, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, kerror.Wrap(err, "InstanceReadError", "failed to read instance file", false).
			WithErrorCode(kerror.EC_NOT_FOUND).
			With("path", path)
	}
	var ij *tpjson.InstanceJson
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		ij, err = tpjson.ParseInstanceYaml(string(bytes))
	default:
		ij, err = tpjson.ParseInstanceJson(string(bytes))
	}
	if err != nil {
		return nil, err
	}
	klogging.Info(ctx).
		With("path", path).
		With("resources", len(ij.Resources)).
		With("workloads", len(ij.Workloads)).
		Log("InstanceLoaded", "")
	return ij, nil
}

// LoadInstanceFromEtcd reads one instance document (json or yaml) stored under key.
func LoadInstanceFromEtcd(ctx context.Context, provider etcdprov.EtcdProvider, key string) (*tpjson.InstanceJson, error) {
	var item etcdprov.EtcdKvItem
	if ke := kcommon.TryCatchRun(ctx, func() {
		item = provider.Get(ctx, key)
	}); ke != nil {
		return nil, ke
	}
	if item.Value == "" {
		return nil, kerror.Create("KeyNotFound", "instance key not found in etcd").
			WithErrorCode(kerror.EC_NOT_FOUND).
			With("key", key)
	}
	ij, err := tpjson.ParseInstanceYaml(item.Value)
	if err != nil {
		return nil, err
	}
	klogging.Info(ctx).
		With("key", key).
		With("revision", item.ModRevision).
		With("resources", len(ij.Resources)).
		With("workloads", len(ij.Workloads)).
		Log("InstanceLoaded", "")
	return ij, nil
}

// SavePlacementToEtcd writes the result document under key.
func SavePlacementToEtcd(ctx context.Context, provider etcdprov.EtcdProvider, key string, placement *tpjson.PlacementJson) error {
	ke := kcommon.TryCatchRun(ctx, func() {
		provider.Set(ctx, key, placement.ToJson())
	})
	if ke != nil {
		return ke
	}
	klogging.Info(ctx).With("key", key).With("runId", placement.RunId).Log("PlacementSaved", "")
	return nil
}

// BuildInstance validates ij and turns it into the in-memory problem.
func BuildInstance(ij *tpjson.InstanceJson) (*Problem, error) {
	resources := make([]*data.Resource, 0, len(ij.Resources))
	for _, rj := range ij.Resources {
		if rj.ResourceId == "" {
			return nil, kerror.Create("InvalidInstance", "resource without id").WithErrorCode(kerror.EC_INVALID_PARAMETER)
		}
		resources = append(resources, data.NewResource(rj.ResourceId, rj.Capacity))
	}
	workloads := make([]*data.Workload, 0, len(ij.Workloads))
	for _, wj := range ij.Workloads {
		if wj.WorkloadId == "" {
			return nil, kerror.Create("InvalidInstance", "workload without id").WithErrorCode(kerror.EC_INVALID_PARAMETER)
		}
		workloads = append(workloads, data.NewWorkload(wj.WorkloadId, wj.Demand))
	}
	inst, err := data.NewInstance(resources, workloads)
	if err != nil {
		return nil, err
	}
	solverCfg := config.SolverConfigJsonToConfig(ij.SolverConfig)
	if err := solverCfg.Validate(); err != nil {
		return nil, err
	}
	costCfg := config.CostFuncConfigJsonToConfig(ij.CostFuncCfg)
	if err := costCfg.Validate(); err != nil {
		return nil, err
	}
	return &Problem{
		Instance:          inst,
		SolverConfig:      solverCfg,
		CostfuncConfig:    costCfg,
		InitialAssignment: ij.InitialAssignment,
	}, nil
}
