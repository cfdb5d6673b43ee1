// Package cli implements the werner command line.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/askiada/werner/internal/config"
	"github.com/askiada/werner/internal/log"
	"github.com/askiada/werner/pkg/pipeline"
	"github.com/askiada/werner/pkg/pipeline/drawer"
	"github.com/askiada/werner/pkg/pipeline/measure"
	"github.com/askiada/werner/pkg/pipeline/model"
	"github.com/askiada/werner/pkg/pipeline/runner"
)

const (
	Version  = "1.0"
	helpHint = "Run werner -h for help"
)

// Exit codes.
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitConfig      = 2
	ExitInterrupted = 130
)

// RunnerFactory builds the runner executing the external tools, logging to logger.
type RunnerFactory func(logger *zap.Logger) runner.Runner

type options struct {
	cfg      pipeline.Config
	logLevel string
}

// NewCommand creates the werner command.
func NewCommand(settings *config.Settings, newRunner RunnerFactory) *cobra.Command {
	opts := &options{cfg: pipeline.DefaultConfig()}

	cmd := &cobra.Command{
		Use:   "werner -f FASTA -r READTYPE -x VIRALFLYE -p HMM [flags]",
		Short: "Werner's virus finder: assemble viral genomes from long reads.",
		Long: `Assemble viral genomes from long reads.

metaFlye must be in your path, and the paths to viralFlye and to a hmmpressed
Pfam HMM database must be supplied explicitly.

The assembly is written to metaflye_output and the viral constructs to
viralflye_output.`,
		Version:       Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) > 0 {
				return pipeline.NewConfigurationError("unexpected argument %q", args[0])
			}

			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd.Context(), cmd.OutOrStdout(), newRunner)
		},
	}

	cmd.SetVersionTemplate("Werner's virus finder (version {{.Version}})\n")
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return pipeline.NewConfigurationError("%s", err)
	})

	opts.registerFlags(cmd.Flags(), settings)

	return cmd
}

func (o *options) registerFlags(fs *pflag.FlagSet, settings *config.Settings) {
	readTypes := make([]string, 0, len(pipeline.ReadTypes()))
	for _, rt := range pipeline.ReadTypes() {
		readTypes = append(readTypes, string(rt))
	}

	fs.StringVarP(&o.cfg.InputPath, "fasta", "f", "", "FASTA file with long reads (required)")
	fs.VarP(newReadTypeValue(&o.cfg.ReadType), "read-type", "r", fmt.Sprintf("type of reads: %v (required)", readTypes))
	fs.StringVarP(&o.cfg.ViralFlyePath, "viralflye", "x", "", "path to viralFlye.py (required)")
	fs.StringVarP(&o.cfg.HMMPath, "hmm", "p", "", "path to the Pfam HMM database (required)")
	fs.IntVarP(&o.cfg.Threads, "threads", "t", pipeline.DefaultThreads, "number of CPU threads to use")
	fs.StringVarP(&o.cfg.LogFile, "log", "l", pipeline.DefaultLogFile, "name of the log file")
	fs.BoolVarP(&o.cfg.DryRun, "dry-run", "d", false, "log the commands without running them")
	fs.BoolVarP(&o.cfg.SkipAssembly, "skip-assembly", "m", false, "reuse the assembly of a previous run")

	fs.StringVar(&o.cfg.Assembler, "assembler", settings.Assembler, "metaFlye executable [$WERNER_ASSEMBLER]")
	fs.StringVar(&o.cfg.WorkDir, "workdir", settings.WorkDir, "directory holding the output directories [$WERNER_WORKDIR]")
	fs.StringVar(&o.cfg.GraphFile, "graph", settings.Graph, "write a DOT graph of the run to this file [$WERNER_GRAPH]")
	fs.StringVar(&o.logLevel, "log-level", settings.LogLevel, "log level, debug includes the output of the tools [$WERNER_LOG_LEVEL]")
}

func (o *options) run(ctx context.Context, console io.Writer, newRunner RunnerFactory) error {
	cfg := o.cfg

	if cfg.LogFile == "" {
		return cfg.Validate()
	}

	logger, closeLog, err := log.New(cfg.LogFile, log.ParseLevel(o.logLevel))
	if err != nil {
		return pipeline.NewConfigurationError("%s", err)
	}

	defer func() { _ = closeLog() }()

	err = cfg.Validate()
	if err != nil {
		return logConfigurationError(logger, err)
	}

	msr := measure.NewDefaultMeasure()
	pipeOpts := []model.PipelineOption{measure.PipelineMeasure(msr)}

	if cfg.GraphFile != "" {
		pipeOpts = append(pipeOpts, drawer.PipelineDrawer(drawer.NewDOTDrawer(cfg.GraphFile), msr))
	}

	pipe, err := pipeline.New(cfg, logger, newRunner(logger), console, pipeOpts...)
	if err != nil {
		return logConfigurationError(logger, err)
	}

	run, err := pipe.Run(ctx)
	logSummary(logger.Sugar(), run, msr)

	return err
}

// logConfigurationError writes the reason of a configuration error to the log file before it is reported.
func logConfigurationError(logger *zap.Logger, err error) error {
	var cfgErr *pipeline.ConfigurationError
	if errors.As(err, &cfgErr) {
		logger.Error(cfgErr.Reason)
	}

	return err
}

func logSummary(logger *zap.SugaredLogger, run *pipeline.Run, msr measure.Measure) {
	if run == nil {
		return
	}

	for _, outcome := range run.Outcomes {
		elapsed := outcome.Result.Duration
		if metric := msr.GetMetric(outcome.Stage.Name); metric != nil {
			elapsed = metric.Duration()
		}

		logger.Infof("Stage %s: %s in %s", outcome.Stage.Name, outcome.Result.Status, elapsed)
	}

	logger.Infof("Run %s %s", run.ID, run.Outcome())
}
