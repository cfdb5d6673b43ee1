package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/askiada/werner/pkg/pipeline/model"
	"github.com/askiada/werner/pkg/pipeline/runner"
)

// Pipeline runs the dependency check, the assembly stage and the viral-detection stage in order.
type Pipeline struct {
	cfg     Config
	log     *zap.SugaredLogger
	runner  runner.Runner
	console io.Writer
	opts    []model.PipelineOption
	stages  []*stage
}

// New validates the configuration and creates a new pipeline.
// The console receives the short messages meant for the user, it can be nil.
func New(cfg Config, logger *zap.Logger, rnr runner.Runner, console io.Writer, opts ...model.PipelineOption) (*Pipeline, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	if rnr == nil {
		return nil, ErrRunnerMustBeSet
	}

	cfg, err = cfg.resolved()
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	if console == nil {
		console = io.Discard
	}

	pipe := &Pipeline{
		cfg:     cfg,
		log:     logger.Sugar(),
		runner:  rnr,
		console: console,
		opts:    opts,
	}

	for _, opt := range opts {
		err := opt.New()
		if err != nil {
			return nil, errors.Wrap(err, "unable to apply pipeline option")
		}
	}

	err = pipe.addStage(model.CheckStageType, DependencyCheckStage, pipe.checkAssemblerAvailable)
	if err != nil {
		return nil, err
	}

	err = pipe.addStage(model.ExternalStageType, AssemblyStage, pipe.runAssemblyStage)
	if err != nil {
		return nil, err
	}

	err = pipe.addStage(model.ExternalStageType, ViralDetectionStage, pipe.runViralDetectionStage)
	if err != nil {
		return nil, err
	}

	return pipe, nil
}

// Config returns the resolved configuration of the pipeline.
func (p *Pipeline) Config() Config {
	return p.cfg
}

func (p *Pipeline) addStage(stageType model.StageType, name string, fn stageFn) error {
	parent := &model.StageInfo{Type: model.RootStageType, Name: model.StartStageName}
	if len(p.stages) > 0 {
		parent = p.stages[len(p.stages)-1].info
	}

	info := &model.StageInfo{
		Type:  stageType,
		Name:  name,
		Order: len(p.stages),
	}

	for _, opt := range p.opts {
		err := opt.PrepareStage(parent, info)
		if err != nil {
			return errors.Wrapf(err, "unable to prepare stage %s", name)
		}
	}

	p.stages = append(p.stages, &stage{info: info, run: fn})

	return nil
}

// Run executes the stages one after the other and stops at the first failure.
// The returned run is never nil; its state tells whether it completed or aborted.
func (p *Pipeline) Run(ctx context.Context) (*Run, error) {
	run := newRun()

	fmt.Fprintf(p.console, "Log file saved to: %s\n", p.cfg.LogFile)
	p.logConfig(run)

	for _, stg := range p.stages {
		err := p.runStage(ctx, run, stg)
		if err != nil {
			run.abort(stg.info)
			p.finishRun()

			return run, err
		}
	}

	err := run.advance(StateCompleted)
	if err != nil {
		return run, err
	}

	p.finalize()
	p.finishRun()

	return run, nil
}

func (p *Pipeline) runStage(ctx context.Context, run *Run, stg *stage) error {
	start := time.Now()

	result, err := stg.run(ctx, run)
	if result == nil {
		result = &model.StageResult{Status: model.StatusExecutionFailure}
	}

	result.Duration = time.Since(start)
	run.Outcomes = append(run.Outcomes, StageOutcome{Stage: stg.info, Result: result})

	for _, opt := range p.opts {
		optErr := opt.AfterStage(stg.info, result)
		if optErr != nil {
			p.log.Warnf("unable to run after stage function for %s: %s", stg.info.Name, optErr)
		}
	}

	return err
}

// logConfig records every configuration field under its own label.
func (p *Pipeline) logConfig(run *Run) {
	p.log.Infof("Run ID: %s", run.ID)
	p.log.Infof("FASTA file name taken as: %s", p.cfg.InputPath)
	p.log.Infof("Type of reads taken as: %s", p.cfg.ReadType)
	p.log.Infof("HMM path taken as: %s", p.cfg.HMMPath)
	p.log.Infof("viralFlye.py path taken as: %s", p.cfg.ViralFlyePath)
	p.log.Infof("Number of CPU threads taken as: %d", p.cfg.Threads)
	p.log.Infof("Dry run taken as: %t", p.cfg.DryRun)
	p.log.Infof("Skip assembly taken as: %t", p.cfg.SkipAssembly)
}

func (p *Pipeline) finalize() {
	if p.cfg.DryRun {
		p.log.Info("END OF DRYRUN")
		fmt.Fprintln(p.console, "End of dry run, no stage was executed.")

		return
	}

	p.log.Info("Viral detection pipeline has finished")
	fmt.Fprintln(p.console, "Viral detection pipeline has finished!")
}

// finishRun runs the Finish hook of every option. A failing option is logged and never fails the run.
func (p *Pipeline) finishRun() {
	for _, opt := range p.opts {
		err := opt.Finish()
		if err != nil {
			p.log.Warnf("unable to finish pipeline option: %s", err)
		}
	}
}
