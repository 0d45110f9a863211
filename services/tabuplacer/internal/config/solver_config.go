package config

import (
	"github.com/xinkaiwang/tabuplacer/libs/xklib/kerror"
	"github.com/xinkaiwang/tabuplacer/services/tabuplacer/tpjson"
)

type AcceptancePolicy string

const (
	// AP_Legacy: a non-tabu move must beat the best neighbor seen so far; any move (tabu or not)
	// that fails that test is still taken if it beats the global best.
	AP_Legacy AcceptancePolicy = "legacy"
	// AP_Strict: a tabu move is admissible only if it beats the global best; pick the lowest admissible.
	AP_Strict AcceptancePolicy = "strict"
)

type SamplingMode string

const (
	SM_Shuffle   SamplingMode = "shuffle"
	SM_Reservoir SamplingMode = "reservoir"
)

type SolverConfig struct {
	MaxIterations        int
	TabuTenure           int
	MaxMovesPerIteration int // <= 0 means 20 + 2 * resource count
	AcceptancePolicy     AcceptancePolicy
	SamplingMode         SamplingMode
	EvalThreads          int
	RandomSeed           int64 // 0 means crypto seed
}

func NewSolverConfig() *SolverConfig {
	return &SolverConfig{
		MaxIterations:        100,
		TabuTenure:           10,
		MaxMovesPerIteration: 0,
		AcceptancePolicy:     AP_Legacy,
		SamplingMode:         SM_Shuffle,
		EvalThreads:          1,
		RandomSeed:           0,
	}
}

func (sc *SolverConfig) Validate() error {
	if sc.MaxIterations < 0 {
		return invalidSolverConfig("max_iterations must not be negative").With("maxIterations", sc.MaxIterations)
	}
	if sc.TabuTenure <= 0 {
		return invalidSolverConfig("tabu_tenure must be positive").With("tabuTenure", sc.TabuTenure)
	}
	if sc.EvalThreads <= 0 {
		return invalidSolverConfig("eval_threads must be positive").With("evalThreads", sc.EvalThreads)
	}
	switch sc.AcceptancePolicy {
	case AP_Legacy, AP_Strict:
	default:
		return invalidSolverConfig("unknown acceptance policy").With("acceptancePolicy", sc.AcceptancePolicy)
	}
	switch sc.SamplingMode {
	case SM_Shuffle, SM_Reservoir:
	default:
		return invalidSolverConfig("unknown sampling mode").With("samplingMode", sc.SamplingMode)
	}
	return nil
}

func invalidSolverConfig(msg string) *kerror.Kerror {
	return kerror.Create("InvalidSolverConfig", msg).WithErrorCode(kerror.EC_INVALID_PARAMETER)
}

func SolverConfigJsonToConfig(sjc *tpjson.SolverConfigJson) *SolverConfig {
	cfg := NewSolverConfig()
	if sjc == nil {
		return cfg
	}
	if sjc.MaxIterations != nil {
		cfg.MaxIterations = int(*sjc.MaxIterations)
	}
	if sjc.TabuTenure != nil {
		cfg.TabuTenure = int(*sjc.TabuTenure)
	}
	if sjc.MaxMovesPerIteration != nil {
		cfg.MaxMovesPerIteration = int(*sjc.MaxMovesPerIteration)
	}
	if sjc.AcceptancePolicy != nil {
		cfg.AcceptancePolicy = AcceptancePolicy(*sjc.AcceptancePolicy)
	}
	if sjc.SamplingMode != nil {
		cfg.SamplingMode = SamplingMode(*sjc.SamplingMode)
	}
	if sjc.EvalThreads != nil {
		cfg.EvalThreads = int(*sjc.EvalThreads)
	}
	if sjc.RandomSeed != nil {
		cfg.RandomSeed = *sjc.RandomSeed
	}
	return cfg
}

func (sc *SolverConfig) ToJsonObj() *tpjson.SolverConfigJson {
	maxIter := int32(sc.MaxIterations)
	tenure := int32(sc.TabuTenure)
	policy := string(sc.AcceptancePolicy)
	mode := string(sc.SamplingMode)
	threads := int32(sc.EvalThreads)
	cfg := &tpjson.SolverConfigJson{
		MaxIterations:    &maxIter,
		TabuTenure:       &tenure,
		AcceptancePolicy: &policy,
		SamplingMode:     &mode,
		EvalThreads:      &threads,
	}
	if sc.MaxMovesPerIteration > 0 {
		moves := int32(sc.MaxMovesPerIteration)
		cfg.MaxMovesPerIteration = &moves
	}
	if sc.RandomSeed != 0 {
		seed := sc.RandomSeed
		cfg.RandomSeed = &seed
	}
	return cfg
}
