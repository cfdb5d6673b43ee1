// Package config reads the settings taken from the environment.
package config

import (
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

// Settings provide the defaults of the flags that are not part of the command line contract.
type Settings struct {
	Assembler string `envconfig:"WERNER_ASSEMBLER" default:"flye"`
	WorkDir   string `envconfig:"WERNER_WORKDIR" default:"."`
	Graph     string `envconfig:"WERNER_GRAPH" default:""`
	LogLevel  string `envconfig:"WERNER_LOG_LEVEL" default:"info"`
}

func New() (*Settings, error) {
	settings := new(Settings)
	if err := envconfig.Process("", settings); err != nil {
		return nil, errors.Wrap(err, "unable to read settings from the environment")
	}

	return settings, nil
}
