package config

import (
	"math"

	"github.com/xinkaiwang/tabuplacer/services/tabuplacer/tpjson"
)

type CostfuncConfig struct {
	OverloadPenaltyWeight float64 // cost per unit of load above capacity
}

func NewCostfuncConfig() CostfuncConfig {
	return CostfuncConfig{
		OverloadPenaltyWeight: 10,
	}
}

// Validate keeps the objective non-negative: the weight must be finite and >= 0.
func (cfg CostfuncConfig) Validate() error {
	w := cfg.OverloadPenaltyWeight
	if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
		return invalidSolverConfig("overload_penalty_weight must be finite and not negative").With("overloadPenaltyWeight", w)
	}
	return nil
}

func CostFuncConfigJsonToConfig(cfc *tpjson.CostFuncConfigJson) CostfuncConfig {
	cfg := NewCostfuncConfig()
	if cfc == nil {
		return cfg
	}
	if cfc.OverloadPenaltyWeight != nil {
		cfg.OverloadPenaltyWeight = *cfc.OverloadPenaltyWeight
	}
	return cfg
}

func (cfg CostfuncConfig) ToJsonObj() *tpjson.CostFuncConfigJson {
	weight := cfg.OverloadPenaltyWeight
	return &tpjson.CostFuncConfigJson{OverloadPenaltyWeight: &weight}
}
