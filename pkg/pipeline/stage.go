package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"

	"github.com/askiada/werner/pkg/pipeline/model"
	"github.com/askiada/werner/pkg/pipeline/runner"
)

// Output locations read by the stages. The names are shared with the external tools and must not change.
const (
	AssemblyOutputDir = "metaflye_output"
	AssemblyArtifact  = "assembly.fasta"
	ViralOutputDir    = "viralflye_output"
)

// Stage names.
const (
	DependencyCheckStage = "dependency-check"
	AssemblyStage        = "assembly"
	ViralDetectionStage  = "viral-detection"
)

type stageFn func(ctx context.Context, run *Run) (*model.StageResult, error)

type stage struct {
	info *model.StageInfo
	run  stageFn
}

// AssemblerVersionCommand returns the command querying the assembler version.
func AssemblerVersionCommand(cfg Config) runner.Command {
	return runner.Command{
		Name: cfg.Assembler,
		Args: []string{"--version"},
		Dir:  commandDir(cfg),
	}
}

// AssemblyCommand returns the metagenome assembly command.
func AssemblyCommand(cfg Config) runner.Command {
	return runner.Command{
		Name: cfg.Assembler,
		Args: []string{
			"--meta",
			"--" + string(cfg.ReadType), cfg.InputPath,
			"--threads", strconv.Itoa(cfg.Threads),
			"-o", AssemblyOutputDir,
		},
		Dir: commandDir(cfg),
	}
}

// ViralDetectionCommand returns the command extracting viral constructs from the assembly.
func ViralDetectionCommand(cfg Config) runner.Command {
	return runner.Command{
		Name: cfg.ViralFlyePath,
		Args: []string{
			"--dir", AssemblyOutputDir,
			"--reads", cfg.InputPath,
			"--hmm", cfg.HMMPath,
			"--threads", strconv.Itoa(cfg.Threads),
			"--outdir", ViralOutputDir,
		},
		Dir: commandDir(cfg),
	}
}

func commandDir(cfg Config) string {
	if cfg.WorkDir == "." {
		return ""
	}

	return cfg.WorkDir
}

func (p *Pipeline) assemblyArtifactPath() string {
	return filepath.Join(p.cfg.WorkDir, AssemblyOutputDir, AssemblyArtifact)
}

// checkAssemblerAvailable is the single hard gate of the pipeline: nothing runs if the assembler cannot be executed.
func (p *Pipeline) checkAssemblerAvailable(ctx context.Context, run *Run) (*model.StageResult, error) {
	err := run.advance(StateDependencyCheck)
	if err != nil {
		return nil, err
	}

	cmd := AssemblerVersionCommand(p.cfg)
	result := &model.StageResult{Command: cmd.String()}

	if p.cfg.SkipAssembly {
		result.Status = model.StatusSkipped
		p.log.Info("Assembly skipped, not checking for metaFlye")

		return result, nil
	}

	out, err := p.runner.Run(ctx, cmd)
	if err != nil {
		result.Status = model.StatusExecutionFailure
		result.Diagnostic = out.Diagnostic()
		p.log.Errorf("metaflye could not be found in your path: %s", err)

		stageErr := newStageError(DependencyCheckStage, ErrFatalDependency,
			"The metaFlye executable \""+p.cfg.Assembler+"\" must be in your path. It does not appear to be.", err)
		stageErr.Diagnostic = result.Diagnostic

		return result, stageErr
	}

	run.AssemblerVersion = strings.TrimSpace(strings.ReplaceAll(out.Stdout, "\n", ""))
	result.Status = model.StatusSuccess
	p.log.Infof("Found metaFlye version %s", run.AssemblerVersion)

	return result, nil
}

func (p *Pipeline) runAssemblyStage(ctx context.Context, run *Run) (*model.StageResult, error) {
	err := run.advance(StateAssemblyStage)
	if err != nil {
		return nil, err
	}

	if p.cfg.SkipAssembly {
		return p.reuseAssembly(run)
	}

	cmd := AssemblyCommand(p.cfg)
	result := &model.StageResult{
		Command:   cmd.String(),
		OutputDir: AssemblyOutputDir,
	}

	p.log.Infof("metaFlye command: %s", result.Command)

	if p.cfg.DryRun {
		result.Status = model.StatusDryRun

		return result, run.advance(StateAssemblyValidate)
	}

	out, err := p.runner.Run(ctx, cmd)
	if err != nil {
		return p.executionFailure(AssemblyStage, "metaFlye", result, out, err)
	}

	err = run.advance(StateAssemblyValidate)
	if err != nil {
		return result, err
	}

	info, err := os.Stat(p.assemblyArtifactPath())
	if err != nil || info.IsDir() {
		result.Status = model.StatusMissingOutput
		result.Diagnostic = out.Diagnostic()
		p.log.Errorf("metaFlye finished but %s was not produced", p.assemblyArtifactPath())

		stageErr := newStageError(AssemblyStage, ErrMissingOutput,
			"metaFlye ran but did not produce "+p.assemblyArtifactPath()+".", err)
		stageErr.Diagnostic = result.Diagnostic

		return result, stageErr
	}

	result.Status = model.StatusSuccess
	result.ArtifactSize = info.Size()
	p.log.Infof("metaFlye output saved in: %s", AssemblyOutputDir)

	return result, nil
}

// reuseAssembly validates that a previous run left an assembly to resume from.
func (p *Pipeline) reuseAssembly(run *Run) (*model.StageResult, error) {
	result := &model.StageResult{OutputDir: AssemblyOutputDir}
	path := p.assemblyArtifactPath()

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		result.Status = model.StatusMissingOutput
		p.log.Errorf("Assembly skipped but %s does not exist", path)

		return result, newStageError(AssemblyStage, ErrMissingPriorOutput,
			"Cannot skip the assembly: "+path+" does not exist. Run without -m first.", err)
	}

	result.Status = model.StatusSkipped
	result.ArtifactSize = info.Size()
	p.log.Infof("Assembly skipped, reusing %s (%s)", path, humanize.Bytes(uint64(info.Size())))

	return result, run.advance(StateAssemblyValidate)
}

func (p *Pipeline) runViralDetectionStage(ctx context.Context, run *Run) (*model.StageResult, error) {
	err := run.advance(StateViralStage)
	if err != nil {
		return nil, err
	}

	cmd := ViralDetectionCommand(p.cfg)
	result := &model.StageResult{
		Command:   cmd.String(),
		OutputDir: ViralOutputDir,
	}

	p.log.Infof("viralFlye command: %s", result.Command)

	if p.cfg.DryRun {
		result.Status = model.StatusDryRun

		return result, run.advance(StateViralValidate)
	}

	out, err := p.runner.Run(ctx, cmd)
	if err != nil {
		return p.executionFailure(ViralDetectionStage, "viralFlye", result, out, err)
	}

	err = run.advance(StateViralValidate)
	if err != nil {
		return result, err
	}

	outputDir := filepath.Join(p.cfg.WorkDir, ViralOutputDir)

	info, err := os.Stat(outputDir)
	if err != nil || !info.IsDir() {
		result.Status = model.StatusMissingOutput
		result.Diagnostic = out.Diagnostic()
		p.log.Errorf("viralFlye finished but %s was not produced", outputDir)

		stageErr := newStageError(ViralDetectionStage, ErrMissingOutput,
			"viralFlye ran but did not produce "+outputDir+".", err)
		stageErr.Diagnostic = result.Diagnostic

		return result, stageErr
	}

	result.Status = model.StatusSuccess
	p.log.Infof("viralFlye output saved in: %s", ViralOutputDir)

	return result, nil
}

func (p *Pipeline) executionFailure(stageName, tool string, result *model.StageResult, out *runner.Output, err error) (*model.StageResult, error) {
	result.Status = model.StatusExecutionFailure
	result.Diagnostic = out.Diagnostic()
	if result.Diagnostic != "" {
		// As a field, the multi-line diagnostic is escaped and the event stays on one line.
		p.log.Errorw(tool+" failed: "+err.Error(), "diagnostic", result.Diagnostic)
	} else {
		p.log.Errorf("%s failed: %s", tool, err)
	}

	msg := tool + " failed, see the log file for details."
	if errors.Is(err, runner.ErrNotFound) {
		msg = "The " + tool + " executable could not be found."
	}

	stageErr := newStageError(stageName, ErrStageExecution, msg, err)
	stageErr.Diagnostic = result.Diagnostic

	return result, stageErr
}
