package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/oakwood-commons/replkit/internal/config"
)

// styleValue is the --style flag: one of the completion front ends.
type styleValue string

var _ pflag.Value = (*styleValue)(nil)

func (s *styleValue) String() string { return string(*s) }

func (s *styleValue) Set(v string) error {
	v = strings.ToLower(strings.TrimSpace(v))
	switch v {
	case config.StyleGhost, config.StyleCycle:
		*s = styleValue(v)
		return nil
	}
	return fmt.Errorf("must be %q or %q", config.StyleGhost, config.StyleCycle)
}

func (s *styleValue) Type() string { return "style" }
