package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/oakwood-commons/replkit/internal/completion"
)

func newCompleteCmd(opts *rootOptions) *cobra.Command {
	cursor := -1
	c := &cobra.Command{
		Use:   "complete LINE...",
		Short: "Resolve a line and print its completion candidates",
		Long: `Resolve the cursor position of LINE against the registry and print the
slot, the candidates and the ghost text. Arguments are joined with spaces; the
cursor defaults to the end of the line.`,
		Example: "  replkit complete h\n  replkit complete 'server connect '\n  replkit complete --cursor 2 'he list'",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, _, err := opts.newApp(cmd)
			if err != nil {
				return err
			}
			engine, err := app.Engine()
			if err != nil {
				return err
			}
			line := strings.Join(args, " ")
			pos := cursor
			if pos < 0 || pos > len(line) {
				pos = len(line)
			}
			cc := engine.Resolve(line, pos)
			writeCompletion(cmd.OutOrStdout(), cc, engine.Build(cmd.Context(), cc))
			return nil
		},
	}
	c.Flags().IntVar(&cursor, "cursor", -1, "byte offset of the cursor (default end of line)")
	return c
}

func writeCompletion(w io.Writer, cc *completion.CursorContext, set *completion.OptionSet) {
	if cc == nil {
		fmt.Fprintln(w, "context: none")
		return
	}
	fmt.Fprintf(w, "context: %s\n", cc.Type)
	fmt.Fprintf(w, "query:   %q\n", cc.Query)
	if cc.Command != nil {
		fmt.Fprintf(w, "command: %s\n", cc.Command.Usage())
	}
	if cc.Argument != nil {
		fmt.Fprintf(w, "argument: %s\n", cc.Argument.Name)
	}
	if set.Len() == 0 {
		fmt.Fprintln(w, "options: none")
		return
	}
	fmt.Fprintf(w, "replace: %d-%d\n", set.ReplaceStart, set.ReplaceEnd)
	fmt.Fprintf(w, "ghost:   %q\n", set.Ghost())
	fmt.Fprintln(w, "options:")
	width := 0
	for _, o := range set.Options {
		width = max(width, runewidth.StringWidth(o.Formatted()))
	}
	for _, o := range set.Options {
		fmt.Fprintf(w, "  %s  %-8s %s\n", runewidth.FillRight(o.Formatted(), width), o.Kind, o.Description)
	}
}
