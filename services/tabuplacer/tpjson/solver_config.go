package tpjson

import (
	"encoding/json"

	"github.com/xinkaiwang/tabuplacer/libs/xklib/kerror"
)

// SolverConfigJson: nil fields take their defaults.
type SolverConfigJson struct {
	MaxIterations        *int32  `json:"max_iterations,omitempty"`
	TabuTenure           *int32  `json:"tabu_tenure,omitempty"`
	MaxMovesPerIteration *int32  `json:"max_moves_per_iteration,omitempty"` // 0 = 20 + 2 * resource count
	AcceptancePolicy     *string `json:"acceptance_policy,omitempty"`       // legacy | strict
	SamplingMode         *string `json:"sampling_mode,omitempty"`           // shuffle | reservoir
	EvalThreads          *int32  `json:"eval_threads,omitempty"`
	RandomSeed           *int64  `json:"random_seed,omitempty"` // 0 = pick one
}

type CostFuncConfigJson struct {
	OverloadPenaltyWeight *float64 `json:"overload_penalty_weight,omitempty"`
}

func (sc *SolverConfigJson) ToJson() string {
	bytes, err := json.Marshal(sc)
	if err != nil {
		panic(kerror.Wrap(err, "MarshalError", "failed to marshal SolverConfigJson", false))
	}
	return string(bytes)
}
