package tpjson

import (
	"encoding/json"

	"github.com/xinkaiwang/tabuplacer/libs/xklib/kerror"
	"github.com/xinkaiwang/tabuplacer/services/tabuplacer/internal/data"
	"sigs.k8s.io/yaml"
)

// InstanceJson is the on-disk / in-etcd description of one placement problem.
// InitialAssignment (resource id -> workload ids) is optional; without it the solver seeds randomly.
type InstanceJson struct {
	Resources         []*ResourceJson                       `json:"resources"`
	Workloads         []*WorkloadJson                       `json:"workloads"`
	InitialAssignment map[data.ResourceId][]data.WorkloadId `json:"initial_assignment,omitempty"`
	SolverConfig      *SolverConfigJson                     `json:"solver_config,omitempty"`
	CostFuncCfg       *CostFuncConfigJson                   `json:"cost_func_cfg,omitempty"`
}

type ResourceJson struct {
	ResourceId data.ResourceId `json:"id"`
	Capacity   float64         `json:"capacity"`
}

type WorkloadJson struct {
	WorkloadId data.WorkloadId `json:"id"`
	Demand     float64         `json:"demand"`
}

func NewInstanceJson() *InstanceJson {
	return &InstanceJson{
		Resources: []*ResourceJson{},
		Workloads: []*WorkloadJson{},
	}
}

func (ij *InstanceJson) AddResource(id data.ResourceId, capacity float64) *InstanceJson {
	ij.Resources = append(ij.Resources, &ResourceJson{ResourceId: id, Capacity: capacity})
	return ij
}

func (ij *InstanceJson) AddWorkload(id data.WorkloadId, demand float64) *InstanceJson {
	ij.Workloads = append(ij.Workloads, &WorkloadJson{WorkloadId: id, Demand: demand})
	return ij
}

func (ij *InstanceJson) ToJson() string {
	bytes, err := json.Marshal(ij)
	if err != nil {
		panic(kerror.Wrap(err, "MarshalError", "failed to marshal InstanceJson", false))
	}
	return string(bytes)
}

func ParseInstanceJson(str string) (*InstanceJson, error) {
	ij := &InstanceJson{}
	if err := json.Unmarshal([]byte(str), ij); err != nil {
		return nil, kerror.Wrap(err, "UnmarshalError", "failed to unmarshal InstanceJson", false).
			WithErrorCode(kerror.EC_INVALID_PARAMETER)
	}
	return ij, nil
}

// ParseInstanceYaml accepts the same document in YAML form, using the json field names.
func ParseInstanceYaml(str string) (*InstanceJson, error) {
	bytes, err := yaml.YAMLToJSON([]byte(str))
	if err != nil {
		return nil, kerror.Wrap(err, "UnmarshalError", "failed to convert yaml instance", false).
			WithErrorCode(kerror.EC_INVALID_PARAMETER)
	}
	return ParseInstanceJson(string(bytes))
}

func (ij *InstanceJson) ToYaml() string {
	bytes, err := yaml.JSONToYAML([]byte(ij.ToJson()))
	if err != nil {
		panic(kerror.Wrap(err, "MarshalError", "failed to marshal InstanceJson as yaml", false))
	}
	return string(bytes)
}
