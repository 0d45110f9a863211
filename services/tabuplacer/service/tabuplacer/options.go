package main

import (
	"github.com/spf13/pflag"
	"github.com/xinkaiwang/tabuplacer/libs/xklib/kcommon"
	"github.com/xinkaiwang/tabuplacer/libs/xklib/kerror"
	"github.com/xinkaiwang/tabuplacer/services/tabuplacer/internal/config"
)

type OutputFormat string

const (
	OF_Text OutputFormat = "text"
	OF_Json OutputFormat = "json"
)

// PlacerOptions holds the command line surface of tabuplacer.
type PlacerOptions struct {
	// where the instance comes from; neither means the built-in example
	InstanceFile string
	EtcdKey      string
	SaveEtcdKey  string

	// solver overrides, applied only when the flag was given
	MaxIterations         int
	TabuTenure            int
	MaxMoves              int
	Policy                string
	Sampling              string
	Threads               int
	Seed                  int64
	OverloadPenaltyWeight float64

	Output      string
	Quiet       bool
	MetricsPort int
	LogLevel    string
	LogFormat   string
}

func NewPlacerOptions() *PlacerOptions {
	defaults := config.NewSolverConfig()
	return &PlacerOptions{
		MaxIterations:         defaults.MaxIterations,
		TabuTenure:            defaults.TabuTenure,
		MaxMoves:              defaults.MaxMovesPerIteration,
		Policy:                string(defaults.AcceptancePolicy),
		Sampling:              string(defaults.SamplingMode),
		Threads:               defaults.EvalThreads,
		Seed:                  defaults.RandomSeed,
		OverloadPenaltyWeight: config.NewCostfuncConfig().OverloadPenaltyWeight,

		Output:      string(OF_Text),
		MetricsPort: kcommon.GetEnvInt("METRICS_PORT", 0),
		LogLevel:    kcommon.GetEnvString("LOG_LEVEL", "warn"),
		LogFormat:   kcommon.GetEnvString("LOG_FORMAT", "simple"),
	}
}

func (o *PlacerOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&o.InstanceFile, "instance", "f", o.InstanceFile, "instance file (json, or yaml by extension)")
	fs.StringVar(&o.EtcdKey, "etcd-key", o.EtcdKey, "load the instance from this etcd key (endpoints from ETCD_ENDPOINTS)")
	fs.StringVar(&o.SaveEtcdKey, "save-etcd-key", o.SaveEtcdKey, "write the placement result to this etcd key")

	fs.IntVarP(&o.MaxIterations, "iterations", "n", o.MaxIterations, "maximum tabu search iterations")
	fs.IntVar(&o.TabuTenure, "tenure", o.TabuTenure, "iterations a reverted move stays tabu")
	fs.IntVar(&o.MaxMoves, "max-moves", o.MaxMoves, "moves evaluated per iteration (0 means 20 + 2 * resources)")
	fs.StringVar(&o.Policy, "policy", o.Policy, "acceptance policy: legacy or strict")
	fs.StringVar(&o.Sampling, "sampling", o.Sampling, "move sampling: shuffle or reservoir")
	fs.IntVar(&o.Threads, "threads", o.Threads, "goroutines used to score candidate moves")
	fs.Int64Var(&o.Seed, "seed", o.Seed, "random seed (0 picks one)")
	fs.Float64Var(&o.OverloadPenaltyWeight, "overload-weight", o.OverloadPenaltyWeight, "weight of the overload penalty in the objective")

	fs.StringVarP(&o.Output, "output", "o", o.Output, "output format: text or json")
	fs.BoolVarP(&o.Quiet, "quiet", "q", o.Quiet, "do not print one line per iteration")
	fs.IntVar(&o.MetricsPort, "metrics-port", o.MetricsPort, "serve prometheus /metrics on this port while running (0 disables)")
	fs.StringVar(&o.LogLevel, "log-level", o.LogLevel, "log level: fatal, error, warn, info, debug or verbose")
	fs.StringVar(&o.LogFormat, "log-format", o.LogFormat, "log format: json, text or simple")
}

func (o *PlacerOptions) Validate() error {
	if o.InstanceFile != "" && o.EtcdKey != "" {
		return invalidArgument("--instance and --etcd-key are mutually exclusive")
	}
	switch OutputFormat(o.Output) {
	case OF_Text, OF_Json:
	default:
		return invalidArgument("unknown output format").With("output", o.Output)
	}
	if o.MetricsPort < 0 {
		return invalidArgument("metrics port must not be negative").With("metricsPort", o.MetricsPort)
	}
	return nil
}

// ApplyTo overrides the instance's own settings with the flags the user actually set.
func (o *PlacerOptions) ApplyTo(fs *pflag.FlagSet, cfg *config.SolverConfig, costCfg *config.CostfuncConfig) {
	if fs.Changed("iterations") {
		cfg.MaxIterations = o.MaxIterations
	}
	if fs.Changed("tenure") {
		cfg.TabuTenure = o.TabuTenure
	}
	if fs.Changed("max-moves") {
		cfg.MaxMovesPerIteration = o.MaxMoves
	}
	if fs.Changed("policy") {
		cfg.AcceptancePolicy = config.AcceptancePolicy(o.Policy)
	}
	if fs.Changed("sampling") {
		cfg.SamplingMode = config.SamplingMode(o.Sampling)
	}
	if fs.Changed("threads") {
		cfg.EvalThreads = o.Threads
	}
	if fs.Changed("seed") {
		cfg.RandomSeed = o.Seed
	}
	if fs.Changed("overload-weight") {
		costCfg.OverloadPenaltyWeight = o.OverloadPenaltyWeight
	}
}

func invalidArgument(msg string) *kerror.Kerror {
	return kerror.Create("InvalidArgument", msg).WithErrorCode(kerror.EC_INVALID_PARAMETER)
}
