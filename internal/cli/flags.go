package cli

import (
	"fmt"

	"github.com/askiada/werner/pkg/pipeline"
)

// readTypeValue is a pflag.Value accepting only the supported read types.
type readTypeValue struct {
	dst *pipeline.ReadType
}

func newReadTypeValue(dst *pipeline.ReadType) *readTypeValue {
	return &readTypeValue{dst: dst}
}

func (v *readTypeValue) String() string {
	if v.dst == nil {
		return ""
	}

	return string(*v.dst)
}

func (v *readTypeValue) Set(s string) error {
	for _, rt := range pipeline.ReadTypes() {
		if string(rt) == s {
			*v.dst = rt

			return nil
		}
	}

	return fmt.Errorf("expected one of %v", pipeline.ReadTypes())
}

func (v *readTypeValue) Type() string {
	return "readtype"
}
