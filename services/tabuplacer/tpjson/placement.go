package tpjson

import (
	"encoding/json"

	"github.com/xinkaiwang/tabuplacer/libs/xklib/kerror"
	"github.com/xinkaiwang/tabuplacer/services/tabuplacer/internal/data"
)

// PlacementJson is the result document printed by `tabuplacer --output json`.
type PlacementJson struct {
	RunId        string                   `json:"run_id"`
	Resources    []*ResourcePlacementJson `json:"resources"`
	InitialValue float64                  `json:"initial_value"`
	BestValue    float64                  `json:"best_value"`
	Balance      float64                  `json:"balance"`
	Penalty      float64                  `json:"penalty"`
	Iterations   int                      `json:"iterations"`
	StopReason   string                   `json:"stop_reason"`
	Trace        []float64                `json:"trace"`
	SolverConfig *SolverConfigJson        `json:"solver_config,omitempty"`
	ElapsedMs    int64                    `json:"elapsed_ms"`
}

type ResourcePlacementJson struct {
	ResourceId  data.ResourceId   `json:"id"`
	Capacity    float64           `json:"capacity"`
	Load        float64           `json:"load"`
	Utilization float64           `json:"utilization"`
	Workloads   []data.WorkloadId `json:"workloads"`
}

func NewResourcePlacementJson(r *data.Resource) *ResourcePlacementJson {
	wls := make([]data.WorkloadId, len(r.Workloads))
	copy(wls, r.Workloads)
	return &ResourcePlacementJson{
		ResourceId:  r.ResourceId,
		Capacity:    r.Capacity,
		Load:        r.CurrentLoad,
		Utilization: r.Utilization(),
		Workloads:   wls,
	}
}

func (pj *PlacementJson) ToJson() string {
	bytes, err := json.MarshalIndent(pj, "", "  ")
	if err != nil {
		panic(kerror.Wrap(err, "MarshalError", "failed to marshal PlacementJson", false))
	}
	return string(bytes)
}

func ParsePlacementJson(str string) (*PlacementJson, error) {
	pj := &PlacementJson{}
	if err := json.Unmarshal([]byte(str), pj); err != nil {
		return nil, kerror.Wrap(err, "UnmarshalError", "failed to unmarshal PlacementJson", false)
	}
	return pj, nil
}
