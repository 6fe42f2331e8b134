package cmd

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/replkit/internal/commands"
)

func newExecCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "exec LINE...",
		Short:   "Run one line without the interactive prompt",
		Long:    "Run LINE through the dispatcher. Put -- before a line whose words start with dashes.",
		Example: "  replkit exec server list\n  replkit exec -- 'echo hi | echo --upper'",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, _, err := opts.newApp(cmd)
			if err != nil {
				return err
			}
			err = app.Execute(cmd.Context(), strings.Join(args, " "), cmd.OutOrStdout())
			if errors.Is(err, commands.ErrExit) || errors.Is(err, commands.ErrClearScreen) {
				return nil
			}
			return err
		},
	}
}
