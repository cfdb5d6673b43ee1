// Package model provides the data structures shared by the pipeline package and its options.
// It defines the stage descriptors, the outcome of a stage and the hooks a pipeline option implements.
package model
