// Package cmd is the replkit command line: the interactive REPL at the root
// and one-shot subcommands for scripting and inspection.
package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/oakwood-commons/replkit/internal/commands"
	"github.com/oakwood-commons/replkit/internal/config"
	"github.com/oakwood-commons/replkit/internal/prompt"
	"github.com/oakwood-commons/replkit/internal/ui"
	"github.com/oakwood-commons/replkit/pkg/logger"
	"github.com/oakwood-commons/replkit/pkg/settings"
)

var stdinIsTerminal = func() bool { return isTerminal(os.Stdin) }

// rootOptions holds the persistent flags.
type rootOptions struct {
	configFile string
	theme      string
	noColor    bool
	style      styleValue
	debug      bool
	logFile    string
	press      string

	cfg     *config.Config
	logSink *os.File
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&rootOptions{})
}

func newRootCmd(opts *rootOptions) *cobra.Command {
	root := &cobra.Command{
		Use:   settings.CliBinaryName,
		Short: "Interactive command shell with inline completion",
		Long: settings.CliBinaryName + ` is a REPL over a typed command registry. Completion is driven by the
registry: ghost text shows the best candidate, Tab opens a menu when there are several.

With stdin not a terminal, each input line is run in turn.`,
		Example:       "  replkit\n  replkit --style cycle\n  replkit --press 'h,tab,down'\n  echo 'server list' | replkit",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.runRoot(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return opts.closeLog()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configFile, "config-file", "", "path to a YAML config file (default $"+settings.ConfigEnvVar+" or $XDG_CONFIG_HOME/replkit/config.yaml)")
	pf.StringVar(&opts.theme, "theme", "", "theme name (default from config)")
	pf.BoolVar(&opts.noColor, "no-color", false, "disable color output")
	pf.Var(&opts.style, "style", "completion style: ghost or cycle (default from config)")
	pf.BoolVar(&opts.debug, "debug", false, "log at debug level")
	pf.StringVar(&opts.logFile, "log-file", "", "append JSON logs to this file")
	root.Flags().StringVar(&opts.press, "press", "", `simulate comma separated keys and print a snapshot, e.g. "h,tab,down,enter"`)

	root.AddCommand(
		newCompleteCmd(opts),
		newExecCmd(opts),
		newConfigCmd(opts),
		newVersionCmd(),
	)
	return root
}

// Execute runs the CLI with os.Args. The log file, if any, is closed even
// when the command fails.
func Execute() error {
	opts := &rootOptions{}
	err := newRootCmd(opts).Execute()
	if cerr := opts.closeLog(); err == nil {
		err = cerr
	}
	return err
}

// setup loads the config, applies flag overrides, and attaches the logger and
// run settings to the command context.
func (o *rootOptions) setup(cmd *cobra.Command) error {
	path := config.Path(o.configFile)
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if o.theme != "" {
		if err := cfg.Set("ui.theme", o.theme); err != nil {
			return err
		}
	}
	if o.noColor {
		cfg.UI.NoColor = true
	}
	if o.style != "" {
		cfg.Completion.Style = string(o.style)
	}
	o.cfg = cfg

	run := settings.NewCliParams()
	run.ConfigFile = path
	run.Theme = cfg.UI.Theme
	run.Style = cfg.Completion.Style
	run.NoColor = cfg.UI.NoColor
	run.LogFile = o.logFile
	if run.LogFile == "" {
		run.LogFile = cfg.Log.File
	}
	run.Interactive = cmd.Name() == settings.CliBinaryName && o.press == "" && stdinIsTerminal()
	if o.debug {
		run.MinLogLevel = -1
	} else if run.MinLogLevel, err = logger.ParseLevel(cfg.Log.Level); err != nil {
		return err
	}

	out, err := logOutput(run)
	if err != nil {
		return err
	}
	if f, ok := out.(*os.File); ok && f != os.Stderr {
		o.logSink = f
	}
	lgr := logger.Get(run.MinLogLevel, logger.WithOutput(out))
	lgr = logger.WithValues(lgr, logger.CommandKey, cmd.Name())

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logger.WithLogger(ctx, lgr)
	cmd.SetContext(settings.IntoContext(ctx, run))
	lgr.V(1).Info("config loaded", "path", path, "theme", run.Theme, "style", run.Style)
	return nil
}

// logOutput picks the log sink. The REPL owns the terminal, so interactive
// runs without a log file discard logs.
func logOutput(run *settings.Run) (io.Writer, error) {
	if run.LogFile != "" {
		f, err := os.OpenFile(run.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		return f, nil
	}
	if run.Interactive {
		return io.Discard, nil
	}
	return os.Stderr, nil
}

// closeLog flushes and closes the log file opened by setup.
func (o *rootOptions) closeLog() error {
	if o.logSink == nil {
		return nil
	}
	logger.Sync()
	err := o.logSink.Close()
	o.logSink = nil
	if err != nil {
		return fmt.Errorf("close log file: %w", err)
	}
	return nil
}

func (o *rootOptions) newApp(cmd *cobra.Command) (*commands.App, logr.Logger, error) {
	lgr := *logger.FromContext(cmd.Context())
	app, err := commands.New(o.cfg, commands.WithLogger(lgr))
	return app, lgr, err
}

func (o *rootOptions) runRoot(cmd *cobra.Command) error {
	app, lgr, err := o.newApp(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	run := settings.FromContextOrDefault(ctx)

	if o.press != "" {
		keys, err := prompt.ParseKeys(o.press)
		if err != nil {
			return fmt.Errorf("--press: %w", err)
		}
		m, err := ui.New(app, ui.WithLogger(lgr), ui.WithContext(ctx), ui.WithSize(terminalSize()))
		if err != nil {
			return err
		}
		m.Press(keys)
		fmt.Fprint(cmd.OutOrStdout(), m.Snapshot())
		return nil
	}

	if !run.Interactive {
		return runScript(ctx, app, cmd.InOrStdin(), cmd.OutOrStdout())
	}

	m, err := ui.New(app, ui.WithLogger(lgr), ui.WithContext(ctx))
	if err != nil {
		return err
	}
	return ui.Run(m)
}

// runScript executes each input line. Errors are reported with the line
// number; the first one stops the run.
func runScript(ctx context.Context, app *commands.App, in io.Reader, out io.Writer) error {
	sc := bufio.NewScanner(in)
	for n := 1; sc.Scan(); n++ {
		line := sc.Text()
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		err := app.Execute(ctx, line, out)
		switch {
		case errors.Is(err, commands.ErrExit):
			return nil
		case errors.Is(err, commands.ErrClearScreen):
		case err != nil:
			return fmt.Errorf("line %d: %w", n, err)
		}
	}
	return sc.Err()
}
