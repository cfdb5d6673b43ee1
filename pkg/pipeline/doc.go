// Package pipeline runs the viral detection pipeline over a long read dataset.
//
// The pipeline drives two external executables: the metaFlye assembler, which builds a metagenome
// assembly from the reads, and viralFlye, which extracts the viral constructs of that assembly with
// a Pfam HMM database. Neither tool is reimplemented here: the package builds their command lines,
// runs them one after the other and checks that each one left its artifact on disk.
//
// A run goes through a linear state machine:
//
//	init -> dependency-check -> assembly-stage -> assembly-validate -> viral-stage -> viral-validate -> completed
//
// Any failure moves the run to the aborted state. Nothing is retried and nothing produced so far is
// removed, so the partial output stays available for inspection. The exit status of a tool is not
// trusted on its own: a stage succeeds only when its artifact exists.
//
// In dry-run mode every command is built and logged but never executed. With skip-assembly the
// assembler is not run at all and the assembly of a previous run is reused, provided it exists.
//
// Options implementing model.PipelineOption are notified when stages are registered, after each
// stage and when the run is finished. The measure and drawer packages provide options recording
// the stage durations and drawing the run as a DOT graph.
package pipeline
