package solver

import (
	"context"
	"math/rand"

	"github.com/xinkaiwang/tabuplacer/services/tabuplacer/internal/config"
	"github.com/xinkaiwang/tabuplacer/services/tabuplacer/internal/costfunc"
)

type EngineOption func(engine *TabuSearchEngine)

func WithCostFunc(cf costfunc.CostFuncProvider) EngineOption {
	return func(engine *TabuSearchEngine) {
		engine.costFunc = cf
	}
}

// WithRand overrides the engine's random source (otherwise seeded from SolverConfig.RandomSeed).
func WithRand(rng *rand.Rand) EngineOption {
	return func(engine *TabuSearchEngine) {
		engine.rng = rng
	}
}

func WithAssignmentPolicy(policy costfunc.AssignmentPolicy) EngineOption {
	return func(engine *TabuSearchEngine) {
		engine.policy = policy
	}
}

func WithSolverConfig(cfg *config.SolverConfig) EngineOption {
	return func(engine *TabuSearchEngine) {
		engine.cfg = cfg
	}
}

// IterationInfo is what an observer sees after each committed iteration.
type IterationInfo struct {
	Iteration       int
	Value           float64
	GlobalBestValue float64
	Move            costfunc.Move
	Aspiration      bool // chosen through the aspiration branch
	Evaluated       int  // moves scored this iteration
	TabuSize        int
}

type IterationObserver func(ctx context.Context, info IterationInfo)

func WithIterationObserver(observer IterationObserver) EngineOption {
	return func(engine *TabuSearchEngine) {
		engine.observers = append(engine.observers, observer)
	}
}
