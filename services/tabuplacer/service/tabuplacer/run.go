package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"
	"github.com/xinkaiwang/tabuplacer/libs/xklib/kcommon"
	"github.com/xinkaiwang/tabuplacer/libs/xklib/kerror"
	"github.com/xinkaiwang/tabuplacer/libs/xklib/klogging"
	"github.com/xinkaiwang/tabuplacer/libs/xklib/kmetrics"
	"github.com/xinkaiwang/tabuplacer/services/tabuplacer/internal/costfunc"
	"github.com/xinkaiwang/tabuplacer/services/tabuplacer/internal/etcdprov"
	"github.com/xinkaiwang/tabuplacer/services/tabuplacer/internal/loader"
	"github.com/xinkaiwang/tabuplacer/services/tabuplacer/internal/solver"
	"github.com/xinkaiwang/tabuplacer/services/tabuplacer/tpjson"
)

// replaced in tests
var newEtcdProvider = etcdprov.NewDefaultEtcdProvider

type placerRun struct {
	opts     *PlacerOptions
	out      io.Writer
	provider etcdprov.EtcdProvider
}

func (pr *placerRun) getEtcdProvider(ctx context.Context) (etcdprov.EtcdProvider, error) {
	if pr.provider != nil {
		return pr.provider, nil
	}
	ke := kcommon.TryCatchRun(ctx, func() {
		pr.provider = newEtcdProvider(ctx)
	})
	if ke != nil {
		return nil, ke
	}
	return pr.provider, nil
}

func (pr *placerRun) loadProblem(ctx context.Context) (*loader.Problem, error) {
	var ij *tpjson.InstanceJson
	var err error
	switch {
	case pr.opts.InstanceFile != "":
		ij, err = loader.LoadInstanceFromFile(ctx, pr.opts.InstanceFile)
	case pr.opts.EtcdKey != "":
		var provider etcdprov.EtcdProvider
		provider, err = pr.getEtcdProvider(ctx)
		if err == nil {
			ij, err = loader.LoadInstanceFromEtcd(ctx, provider, pr.opts.EtcdKey)
		}
	default:
		klogging.Info(ctx).Log("UsingExampleInstance", "no --instance or --etcd-key given")
		ij = loader.ExampleInstance()
	}
	if err != nil {
		return nil, err
	}
	return loader.BuildInstance(ij)
}

// runPlacer loads the problem, seeds, searches and reports. Flags in fs that were set override the instance's own settings.
func runPlacer(ctx context.Context, opts *PlacerOptions, fs *pflag.FlagSet, out io.Writer) error {
	pr := &placerRun{opts: opts, out: out}
	problem, err := pr.loadProblem(ctx)
	if err != nil {
		return err
	}
	opts.ApplyTo(fs, problem.SolverConfig, &problem.CostfuncConfig)
	if err := problem.SolverConfig.Validate(); err != nil {
		return err
	}
	if err := problem.CostfuncConfig.Validate(); err != nil {
		return err
	}
	text := OutputFormat(opts.Output) == OF_Text

	engineOpts := []solver.EngineOption{
		solver.WithCostFunc(costfunc.NewImbalanceCostProvider(problem.CostfuncConfig)),
		solver.WithSolverConfig(problem.SolverConfig),
	}
	if problem.InitialAssignment != nil {
		engineOpts = append(engineOpts, solver.WithAssignmentPolicy(costfunc.NewFixedAssignmentPolicy(problem.InitialAssignment)))
	}
	if text && !opts.Quiet {
		engineOpts = append(engineOpts, solver.WithIterationObserver(newIterationPrinter(out)))
	}
	engine, err := solver.NewTabuSearchEngine(ctx, problem.Instance, engineOpts...)
	if err != nil {
		return err
	}
	ctx, info := klogging.CreateCtxInfo(ctx)
	info.With("runId", engine.RunId())

	inst := problem.Instance
	if inst.ResourceCount() > 0 {
		seed, err := engine.SeedInitialSolution(ctx)
		if err != nil {
			return err
		}
		if err := engine.ApplySolution(seed); err != nil {
			return err
		}
	}
	initialValue := engine.ObjectiveValue()
	if text {
		fmt.Fprintln(out, "Initial placement:")
		writePlacement(out, inst, engine.Resources())
		fmt.Fprintf(out, "Initial objective: %.4f\n\n", initialValue)
		writeBalanceChart(out, engine.Resources())
		fmt.Fprintln(out, "\nRunning tabu search:")
	}

	startMs := kcommon.GetMonoTimeMs()
	var trace []float64
	err = kmetrics.InstrumentSummaryRunError(ctx, "RunTabuSearch", func(ctx context.Context) error {
		var runErr error
		trace, runErr = engine.RunWithConfig(ctx, problem.SolverConfig)
		return runErr
	})
	if err != nil {
		return err
	}
	placement := buildPlacementJson(engine, initialValue, trace, kcommon.GetMonoTimeMs()-startMs)

	if opts.SaveEtcdKey != "" {
		provider, err := pr.getEtcdProvider(ctx)
		if err != nil {
			return err
		}
		if err := loader.SavePlacementToEtcd(ctx, provider, opts.SaveEtcdKey, placement); err != nil {
			return err
		}
	}

	if !text {
		fmt.Fprintln(out, placement.ToJson())
		return nil
	}
	fmt.Fprintln(out, "\nBest placement found:")
	writePlacement(out, inst, engine.Resources())
	fmt.Fprintf(out, "Best objective: %.4f (balance=%.4f, penalty=%.4f)\n", placement.BestValue, placement.Balance, placement.Penalty)
	fmt.Fprintf(out, "Stopped after %d iterations: %s\n\n", placement.Iterations, placement.StopReason)
	writeBalanceChart(out, engine.Resources())
	fmt.Fprintln(out, "\nConvergence:")
	writeTrace(out, trace)
	return nil
}

// exitCode maps err onto the process exit status through its kerror code.
func exitCode(err error) int {
	if ke, ok := err.(*kerror.Kerror); ok {
		return ke.GetExitCode()
	}
	return 1
}
