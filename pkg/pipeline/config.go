package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// ReadType is the sequencing technology of the reads, forwarded to the assembler as a flag.
type ReadType string

const (
	PacBioRaw  ReadType = "pacbio-raw"
	PacBioCorr ReadType = "pacbio-corr"
	PacBioHiFi ReadType = "pacbio-hifi"
	NanoRaw    ReadType = "nano-raw"
	NanoCor    ReadType = "nano-cor"
	NanoHQ     ReadType = "nano-hq"
)

// ReadTypes returns every supported read type.
func ReadTypes() []ReadType {
	return []ReadType{PacBioRaw, PacBioCorr, PacBioHiFi, NanoRaw, NanoCor, NanoHQ}
}

const (
	DefaultThreads   = 4
	DefaultLogFile   = "werner.log"
	DefaultAssembler = "flye"
)

// Config is the configuration of a run. It is resolved once and never mutated afterwards.
type Config struct {
	InputPath     string   `flag:"f" validate:"required"`
	ReadType      ReadType `flag:"r" validate:"required,oneof=pacbio-raw pacbio-corr pacbio-hifi nano-raw nano-cor nano-hq"`
	ViralFlyePath string   `flag:"x" validate:"required"`
	HMMPath       string   `flag:"p" validate:"required"`
	Threads       int      `flag:"t" validate:"gt=0"`
	LogFile       string   `flag:"l" validate:"required"`
	DryRun        bool     `flag:"d"`
	SkipAssembly  bool     `flag:"m"`

	// Assembler is the metaFlye executable, looked up in PATH unless it contains a separator.
	Assembler string `flag:"assembler" validate:"required"`
	// WorkDir holds the output directories of both stages.
	WorkDir string `flag:"workdir"`
	// GraphFile receives a DOT graph of the run when set.
	GraphFile string `flag:"graph"`
}

// DefaultConfig returns a configuration holding the default values of the optional fields.
func DefaultConfig() Config {
	return Config{
		Threads:   DefaultThreads,
		LogFile:   DefaultLogFile,
		Assembler: DefaultAssembler,
		WorkDir:   ".",
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := fld.Tag.Get("flag")
		if name == "" {
			return fld.Name
		}

		return name
	})

	return v
}

// Validate checks the required fields and their format.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return NewConfigurationError("%s", err)
	}

	msgs := make([]string, 0, len(validationErrs))
	for _, fieldErr := range validationErrs {
		msgs = append(msgs, fieldMessage(fieldErr))
	}

	return NewConfigurationError("%s", strings.Join(msgs, "; "))
}

func fieldMessage(fieldErr validator.FieldError) string {
	flag := "-" + fieldErr.Field()
	if len(fieldErr.Field()) > 1 {
		flag = "-" + flag
	}

	switch fieldErr.Tag() {
	case "required":
		return fmt.Sprintf("missing required flag %s", flag)
	case "oneof":
		return fmt.Sprintf("invalid value %q for flag %s, expected one of: %s", fieldErr.Value(), flag, fieldErr.Param())
	case "gt":
		return fmt.Sprintf("flag %s must be a positive integer, got %v", flag, fieldErr.Value())
	default:
		return fmt.Sprintf("invalid value %v for flag %s", fieldErr.Value(), flag)
	}
}

// resolved anchors the relative input paths to the current directory when the
// external tools run from another working directory.
func (c Config) resolved() (Config, error) {
	if c.WorkDir == "" || filepath.Clean(c.WorkDir) == "." {
		c.WorkDir = "."

		return c, nil
	}

	info, err := os.Stat(c.WorkDir)
	if err != nil {
		return c, NewConfigurationError("invalid value %q for flag --workdir: %s", c.WorkDir, err)
	}

	if !info.IsDir() {
		return c, NewConfigurationError("invalid value %q for flag --workdir: not a directory", c.WorkDir)
	}

	c.InputPath, err = filepath.Abs(c.InputPath)
	if err != nil {
		return c, NewConfigurationError("unable to resolve %s: %s", c.InputPath, err)
	}

	c.HMMPath, err = filepath.Abs(c.HMMPath)
	if err != nil {
		return c, NewConfigurationError("unable to resolve %s: %s", c.HMMPath, err)
	}

	if strings.ContainsRune(c.ViralFlyePath, filepath.Separator) {
		c.ViralFlyePath, err = filepath.Abs(c.ViralFlyePath)
		if err != nil {
			return c, NewConfigurationError("unable to resolve %s: %s", c.ViralFlyePath, err)
		}
	}

	if strings.ContainsRune(c.Assembler, filepath.Separator) {
		c.Assembler, err = filepath.Abs(c.Assembler)
		if err != nil {
			return c, NewConfigurationError("unable to resolve %s: %s", c.Assembler, err)
		}
	}

	return c, nil
}
