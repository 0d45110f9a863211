package solver

import (
	"context"
	"math"
	"math/rand"

	"github.com/xinkaiwang/tabuplacer/libs/xklib/kcommon"
	"github.com/xinkaiwang/tabuplacer/libs/xklib/kerror"
	"github.com/xinkaiwang/tabuplacer/libs/xklib/klogging"
	"github.com/xinkaiwang/tabuplacer/services/tabuplacer/internal/config"
	"github.com/xinkaiwang/tabuplacer/services/tabuplacer/internal/costfunc"
	"github.com/xinkaiwang/tabuplacer/services/tabuplacer/internal/data"
)

type EngineState string

const (
	ES_Init       EngineState = "init"
	ES_Iterating  EngineState = "iterating"
	ES_Terminated EngineState = "terminated"
)

type StopReason string

const (
	SR_None          StopReason = ""
	SR_MaxIterations StopReason = "max_iterations"
	SR_Stagnation    StopReason = "stagnation"
	SR_Degenerate    StopReason = "degenerate" // no resources at all
	SR_Error         StopReason = "error"
)

// TabuSearchEngine owns the live resources of one instance and searches for a better placement.
// It is not safe for concurrent use; EvalThreads > 1 only parallelizes candidate scoring inside an iteration.
type TabuSearchEngine struct {
	inst      *data.Instance
	resources []*data.Resource // live; only mutated by ApplySolution and commits
	costFunc  costfunc.CostFuncProvider
	rng       *rand.Rand
	seed      int64
	policy    costfunc.AssignmentPolicy
	cfg       *config.SolverConfig
	observers []IterationObserver
	runId     string

	state           EngineState
	stopReason      StopReason
	iterations      int
	current         *costfunc.SolutionState
	currentValue    float64
	globalBest      *costfunc.SolutionState
	globalBestValue float64
}

func NewTabuSearchEngine(ctx context.Context, inst *data.Instance, opts ...EngineOption) (*TabuSearchEngine, error) {
	engine := &TabuSearchEngine{
		inst:            inst,
		resources:       inst.NewResourceList(),
		cfg:             config.NewSolverConfig(),
		state:           ES_Init,
		globalBestValue: math.Inf(1),
		runId:           kcommon.NewTraceId(ctx, "run-", 6),
	}
	for _, opt := range opts {
		opt(engine)
	}
	if err := engine.cfg.Validate(); err != nil {
		return nil, err
	}
	if engine.rng == nil {
		engine.rng, engine.seed = kcommon.NewRand(ctx, engine.cfg.RandomSeed)
	}
	if engine.costFunc == nil {
		engine.costFunc = costfunc.NewImbalanceCostProvider(config.NewCostfuncConfig())
	}
	if engine.policy == nil {
		engine.policy = costfunc.NewRandomAssignmentPolicy(engine.rng)
	}
	return engine, nil
}

func (engine *TabuSearchEngine) withRunId(ctx context.Context) context.Context {
	ctx, info := klogging.CreateCtxInfo(ctx)
	info.With("runId", engine.runId)
	return ctx
}

// SeedInitialSolution builds a starting state with the engine's assignment policy. It does not touch the live resources.
func (engine *TabuSearchEngine) SeedInitialSolution(ctx context.Context) (*costfunc.SolutionState, error) {
	return costfunc.SeedSolution(ctx, engine.inst, engine.policy)
}

// ApplySolution makes state the current solution and writes it onto the live resources.
func (engine *TabuSearchEngine) ApplySolution(state *costfunc.SolutionState) error {
	if state.Instance() != engine.inst {
		return costfunc.ConfigurationInconsistency("solution belongs to a different instance")
	}
	if err := state.Apply(engine.resources); err != nil {
		return err
	}
	engine.current = state
	engine.currentValue = engine.ObjectiveValue()
	return nil
}

// ObjectiveValue scores the live resources.
func (engine *TabuSearchEngine) ObjectiveValue() float64 {
	return engine.costFunc.CalCost(engine.resources)
}

// RunWithConfig runs the search with every knob taken from cfg.
func (engine *TabuSearchEngine) RunWithConfig(ctx context.Context, cfg *config.SolverConfig) ([]float64, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	engine.cfg = cfg
	return engine.RunTabuSearch(ctx, cfg.MaxIterations, cfg.TabuTenure, cfg.MaxMovesPerIteration)
}

// RunTabuSearch starts from the current solution (seeding one if none was applied) and iterates until
// maxIterations or stagnation. It leaves the global best on the live resources and returns the
// objective trace: the starting value followed by one value per iteration.
func (engine *TabuSearchEngine) RunTabuSearch(ctx context.Context, maxIterations int, tabuTenure int, maxMovesPerIteration int) ([]float64, error) {
	ctx = engine.withRunId(ctx)
	if maxIterations < 0 {
		return nil, kerror.Create("InvalidSolverConfig", "max_iterations must not be negative").
			With("maxIterations", maxIterations).WithErrorCode(kerror.EC_INVALID_PARAMETER)
	}
	if tabuTenure <= 0 {
		return nil, kerror.Create("InvalidSolverConfig", "tabu_tenure must be positive").
			With("tabuTenure", tabuTenure).WithErrorCode(kerror.EC_INVALID_PARAMETER)
	}
	startMs := kcommon.GetMonoTimeMs()
	engine.iterations = 0
	engine.stopReason = SR_None
	if engine.inst.ResourceCount() == 0 {
		engine.globalBestValue = engine.ObjectiveValue()
		engine.terminate(ctx, SR_Degenerate, startMs)
		return []float64{}, nil
	}

	if engine.current == nil {
		seed, err := engine.SeedInitialSolution(ctx)
		if err != nil {
			engine.terminate(ctx, SR_Error, startMs)
			return nil, err
		}
		if err := engine.ApplySolution(seed); err != nil {
			engine.terminate(ctx, SR_Error, startMs)
			return nil, err
		}
	}
	engine.state = ES_Iterating
	engine.globalBest = engine.current
	engine.globalBestValue = engine.currentValue
	trace := []float64{engine.currentValue}
	klogging.Info(ctx).
		With("resources", engine.inst.ResourceCount()).
		With("workloads", engine.inst.WorkloadCount()).
		With("maxIterations", maxIterations).
		With("tabuTenure", tabuTenure).
		With("maxMoves", maxMovesPerIteration).
		With("policy", engine.cfg.AcceptancePolicy).
		With("sampling", engine.cfg.SamplingMode).
		With("initialValue", engine.currentValue).
		Log("TabuSearchStarted", "")

	var pool *ThreadPool
	if engine.cfg.EvalThreads > 1 {
		pool = NewThreadPool(ctx, engine.cfg.EvalThreads, "tabu_eval")
		defer pool.StopAndWaitForExit()
	}
	moveGen := NewMoveGenerator(engine.rng, engine.cfg.SamplingMode)
	tabu := NewTabuMemory()
	stop := SR_MaxIterations

	for iter := 1; iter <= maxIterations; iter++ {
		moves := moveGen.GenerateMoves(engine.current, maxMovesPerIteration)
		candidates := engine.evaluate(ctx, pool, moves)
		TabuMoveEvalCountMetrics.GetTimeSequence(ctx, string(engine.cfg.AcceptancePolicy)).Add(int64(len(moves)))

		chosen, aspiration, err := engine.selectCandidate(moves, candidates, tabu)
		if err != nil {
			engine.abort(ctx, iter, err, startMs)
			return trace, err
		}
		if chosen < 0 {
			stop = SR_Stagnation
			klogging.Info(ctx).With("iteration", iter).With("moves", len(moves)).Log("TabuStagnation", "no admissible neighbor")
			break
		}

		engine.current = candidates[chosen].state
		if err := engine.current.Apply(engine.resources); err != nil {
			engine.terminate(ctx, SR_Error, startMs)
			return trace, err
		}
		engine.currentValue = candidates[chosen].value
		if engine.currentValue < engine.globalBestValue {
			engine.globalBest = engine.current
			engine.globalBestValue = engine.currentValue
		}
		tabu.Mark(moves[chosen], tabuTenure)
		tabu.AgeAndPrune()
		trace = append(trace, engine.currentValue)
		engine.iterations = iter

		klogging.Debug(ctx).
			With("iteration", iter).
			With("value", engine.currentValue).
			With("best", engine.globalBestValue).
			With("move", moves[chosen].GetSignature()).
			With("aspiration", aspiration).
			Log("TabuIteration", "")
		info := IterationInfo{
			Iteration:       iter,
			Value:           engine.currentValue,
			GlobalBestValue: engine.globalBestValue,
			Move:            moves[chosen],
			Aspiration:      aspiration,
			Evaluated:       len(moves),
			TabuSize:        tabu.Len(),
		}
		for _, observer := range engine.observers {
			observer(ctx, info)
		}
	}

	if err := engine.globalBest.Apply(engine.resources); err != nil {
		engine.terminate(ctx, SR_Error, startMs)
		return trace, err
	}
	engine.current = engine.globalBest
	engine.currentValue = engine.globalBestValue
	engine.terminate(ctx, stop, startMs)
	reportPlacement(engine.resources)
	return trace, nil
}

// abort stops a run on err, leaving the global best on the live resources when it can.
func (engine *TabuSearchEngine) abort(ctx context.Context, iter int, err error, startMs int64) {
	klogging.Error(ctx).WithError(err).With("iteration", iter).Log("TabuSearchAborted", "")
	if restoreErr := engine.ApplySolution(engine.globalBest); restoreErr != nil {
		klogging.Error(ctx).WithError(restoreErr).With("iteration", iter).Log("RestoreGlobalBestFailed", "")
	}
	engine.terminate(ctx, SR_Error, startMs)
}

func (engine *TabuSearchEngine) terminate(ctx context.Context, reason StopReason, startMs int64) {
	engine.state = ES_Terminated
	engine.stopReason = reason
	elapsedMs := kcommon.GetMonoTimeMs() - startMs
	TabuIterationCountMetrics.GetTimeSequence(ctx, string(reason)).Add(int64(engine.iterations))
	TabuSearchElapsedMsMetrics.GetTimeSequence(ctx, string(reason)).Add(elapsedMs)
	klogging.Info(ctx).
		With("stop", reason).
		With("iterations", engine.iterations).
		With("best", engine.globalBestValue).
		With("elapsedMs", elapsedMs).
		Log("TabuSearchDone", "")
}

// candidate is one scored neighbor.
type candidate struct {
	state *costfunc.SolutionState
	value float64
	err   error
}

// evaluate scores every move from the same baseline. Each candidate is materialized on its own resource list.
func (engine *TabuSearchEngine) evaluate(ctx context.Context, pool *ThreadPool, moves []costfunc.Move) []candidate {
	candidates := make([]candidate, len(moves))
	if pool == nil || len(moves) < 2 {
		for i, move := range moves {
			candidates[i] = engine.score(move)
		}
		return candidates
	}
	tasks := make([]Task, len(moves))
	for i, move := range moves {
		tasks[i] = &evalTask{engine: engine, move: move, slot: &candidates[i]}
	}
	pool.RunBatch(tasks)
	return candidates
}

func (engine *TabuSearchEngine) score(move costfunc.Move) candidate {
	next, err := engine.current.ApplyMove(move)
	if err != nil {
		return candidate{err: err}
	}
	resources, err := next.Materialize()
	if err != nil {
		return candidate{err: err}
	}
	return candidate{state: next, value: engine.costFunc.CalCost(resources)}
}

// evalTask implements Task. It writes only its own slot.
type evalTask struct {
	engine *TabuSearchEngine
	move   costfunc.Move
	slot   *candidate
}

func (task *evalTask) GetName() string {
	return "evalMove"
}

func (task *evalTask) Execute() {
	*task.slot = task.engine.score(task.move)
}

// selectCandidate returns the index of the chosen move, or -1 when nothing is admissible.
func (engine *TabuSearchEngine) selectCandidate(moves []costfunc.Move, candidates []candidate, tabu *TabuMemory) (int, bool, error) {
	chosen := -1
	aspiration := false
	bestValue := math.Inf(1)
	for i, move := range moves {
		c := candidates[i]
		if c.err != nil {
			return -1, false, c.err
		}
		isTabu := tabu.IsTabu(move)
		switch engine.cfg.AcceptancePolicy {
		case config.AP_Strict:
			if (!isTabu || c.value < engine.globalBestValue) && c.value < bestValue {
				chosen, bestValue, aspiration = i, c.value, isTabu
			}
		default:
			// the aspiration branch compares against the global best, so it can replace a better
			// non-tabu pick made earlier in this same list
			if !isTabu && c.value < bestValue {
				chosen, bestValue, aspiration = i, c.value, false
			} else if c.value < engine.globalBestValue {
				chosen, bestValue, aspiration = i, c.value, true
			}
		}
	}
	return chosen, aspiration, nil
}

func (engine *TabuSearchEngine) GlobalBestValue() float64 {
	return engine.globalBestValue
}

func (engine *TabuSearchEngine) GlobalBestSolution() *costfunc.SolutionState {
	return engine.globalBest
}

func (engine *TabuSearchEngine) CurrentSolution() *costfunc.SolutionState {
	return engine.current
}

// Resources returns a copy of the live resources, in instance order.
func (engine *TabuSearchEngine) Resources() []*data.Resource {
	list := make([]*data.Resource, len(engine.resources))
	for i, r := range engine.resources {
		list[i] = r.Clone()
	}
	return list
}

func (engine *TabuSearchEngine) Breakdown() costfunc.CostBreakdown {
	if icp, ok := engine.costFunc.(*costfunc.ImbalanceCostProvider); ok {
		return icp.Breakdown(engine.resources)
	}
	total := engine.ObjectiveValue()
	return costfunc.CostBreakdown{Balance: total, Total: total}
}

func (engine *TabuSearchEngine) State() EngineState {
	return engine.state
}

func (engine *TabuSearchEngine) StopReason() StopReason {
	return engine.stopReason
}

// Iterations is how many iterations the last run committed.
func (engine *TabuSearchEngine) Iterations() int {
	return engine.iterations
}

// Seed is the random seed in use, 0 when the source came from WithRand.
func (engine *TabuSearchEngine) Seed() int64 {
	return engine.seed
}

func (engine *TabuSearchEngine) RunId() string {
	return engine.runId
}

func (engine *TabuSearchEngine) SolverConfig() *config.SolverConfig {
	return engine.cfg
}
