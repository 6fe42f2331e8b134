package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/oakwood-commons/replkit/internal/limiter"
	"github.com/oakwood-commons/replkit/pkg/registry"
)

const (
	handlerCommands     registry.HandlerRef = "commands"
	handlerHosts        registry.HandlerRef = "hosts"
	handlerPaths        registry.HandlerRef = "paths"
	handlerHistory      registry.HandlerRef = "history"
	handlerConfigKeys   registry.HandlerRef = "config-keys"
	handlerConfigValues registry.HandlerRef = "config-values"
)

const nameColumn = 14

const connectHelp = `Open a session to a host. Once connected, ` + "`server disconnect`" + ` becomes available.

## Examples

    server connect alpha.local
    server connect alpha.local 2222 --tls
    server connect --host beta.local --mode fast

## Notes

- The port is offered only after a host is given.
- Hosts typed before are suggested again for the rest of the session.
`

const helpHelp = `Show the command list, or details for one command.

Topics are command paths, either dotted (` + "`server.connect`" + `) or spaced (` + "`server connect`" + `).
`

func (a *App) register(root *registry.Group) error {
	var err error
	add := func(g *registry.Group, cmd *registry.Command) {
		if err == nil {
			err = g.AddCommand(cmd)
		}
	}

	add(root, &registry.Command{
		Name:        "help",
		Aliases:     []string{"?"},
		Description: "Show help for a command",
		Help:        helpHelp,
		Arguments: []*registry.Argument{
			{Name: "topic", Description: "Command path", Position: 1, Handler: handlerCommands},
		},
		Run: a.runHelp,
	})
	add(root, &registry.Command{
		Name:        "history",
		Description: "List lines submitted this session",
		Arguments: []*registry.Argument{
			{Name: "clear", Aliases: []string{"c"}, Description: "Forget the history", Flag: true},
			{Name: "limit", Aliases: []string{"l"}, Description: "Show at most this many lines", Type: registry.TypeInt},
			{Name: "offset", Description: "Skip this many lines", Type: registry.TypeInt},
			{Name: "tail", Aliases: []string{"t"}, Description: "Show only the last lines", Type: registry.TypeInt},
		},
		Run: a.runHistory,
	})
	add(root, &registry.Command{
		Name:        "exit",
		Aliases:     []string{"quit"},
		Description: "Leave the REPL",
		Run:         func(context.Context, *registry.Invocation) error { return ErrExit },
	})
	add(root, &registry.Command{
		Name:        "clear",
		Description: "Clear the screen",
		Run:         func(context.Context, *registry.Invocation) error { return ErrClearScreen },
	})
	add(root, &registry.Command{
		Name:        "echo",
		Description: "Print text, or the piped input",
		Arguments: []*registry.Argument{
			{Name: "text", Description: "Text to print", Position: 1, Handler: handlerHistory},
			{Name: "upper", Aliases: []string{"u"}, Description: "Upper-case the output", Flag: true},
		},
		Run: a.runEcho,
	})
	add(root, &registry.Command{
		Name:        "open",
		Description: "Show a file or list a directory",
		Arguments: []*registry.Argument{
			{Name: "path", Description: "File or directory", Type: registry.TypePath, Position: 1, Required: true, Handler: handlerPaths},
			{Name: "lines", Aliases: []string{"n"}, Description: "Lines of a file to show", Type: registry.TypeInt, Default: "10"},
		},
		Run: a.runOpen,
	})
	if err != nil {
		return err
	}

	server, err := root.AddGroup("server", "Manage the remote session")
	if err != nil {
		return err
	}
	add(server, &registry.Command{
		Name:        "connect",
		Description: "Connect to a host",
		Help:        connectHelp,
		Condition:   "!session.connected",
		Arguments: []*registry.Argument{
			{Name: "host", Aliases: []string{"h"}, Description: "Host name", Position: 1, Required: true, Handler: handlerHosts},
			{Name: "port", Aliases: []string{"p"}, Description: "TCP port", Type: registry.TypeInt, Position: 2, Default: "22", Condition: "has(args.host)"},
			{Name: "tls", Description: "Use TLS", Flag: true},
			{Name: "mode", Aliases: []string{"m"}, Description: "Transfer mode", Type: registry.TypeEnum, Enum: []string{"safe", "fast"}, Default: "safe"},
		},
		Run: a.runConnect,
	})
	add(server, &registry.Command{
		Name:        "disconnect",
		Description: "Close the session",
		Condition:   "session.connected",
		Run:         a.runDisconnect,
	})
	add(server, &registry.Command{
		Name:        "list",
		Description: "List known hosts",
		Arguments: []*registry.Argument{
			{Name: "format", Aliases: []string{"f"}, Description: "Output format", Type: registry.TypeEnum, Enum: []string{"plain", "wide"}, Default: "plain"},
		},
		Run: a.runList,
	})
	add(server, &registry.Command{
		Name:        "status",
		Description: "Show the connection state",
		Run:         a.runStatus,
	})
	if err != nil {
		return err
	}

	cfg, err := root.AddGroup("config", "Inspect and change settings")
	if err != nil {
		return err
	}
	add(cfg, &registry.Command{
		Name:        "get",
		Description: "Print a setting",
		Arguments: []*registry.Argument{
			{Name: "key", Description: "Dotted key", Position: 1, Required: true, Handler: handlerConfigKeys},
		},
		Run: a.runConfigGet,
	})
	add(cfg, &registry.Command{
		Name:        "set",
		Description: "Change a setting for this session",
		Arguments: []*registry.Argument{
			{Name: "key", Description: "Dotted key", Position: 1, Required: true, Handler: handlerConfigKeys},
			{Name: "value", Description: "New value", Position: 2, Required: true, Handler: handlerConfigValues},
		},
		Run: a.runConfigSet,
	})
	add(cfg, &registry.Command{
		Name:        "show",
		Description: "Print the merged configuration",
		Run:         a.runConfigShow,
	})
	return err
}

func (a *App) runHelp(_ context.Context, inv *registry.Invocation) error {
	topic := strings.TrimSpace(strings.Join(append([]string{inv.Value("topic")}, inv.Rest...), " "))
	if topic == "" {
		writeListing(inv, a.Registry.Root())
		return nil
	}
	path := strings.FieldsFunc(topic, func(r rune) bool { return r == '.' || r == ' ' })
	switch n := a.Registry.Find(path...).(type) {
	case *registry.Command:
		fmt.Fprintf(inv.Out, "%s\n\n", n.Usage())
		if n.Description != "" {
			fmt.Fprintf(inv.Out, "%s\n\n", n.Description)
		}
		if help := RenderMarkdown(n.Help); help != "" {
			fmt.Fprint(inv.Out, help)
			fmt.Fprintln(inv.Out)
		}
		for _, arg := range n.Arguments {
			name := "--" + arg.Name
			for _, alias := range arg.Aliases {
				name += ", -" + alias
			}
			fmt.Fprintf(inv.Out, "  %s %s\n", runewidth.FillRight(name, nameColumn+4), arg.Description)
		}
	case *registry.Group:
		writeListing(inv, n)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownCommand, topic)
	}
	return nil
}

func writeListing(inv *registry.Invocation, g *registry.Group) {
	for _, n := range g.Children() {
		if cmd, ok := n.(*registry.Command); ok && cmd.Hidden {
			continue
		}
		name := n.NodeName()
		if n.IsGroup() {
			name += " …"
		}
		fmt.Fprintf(inv.Out, "  %s %s\n", runewidth.FillRight(name, nameColumn), n.NodeDescription())
	}
}

func (a *App) runHistory(_ context.Context, inv *registry.Invocation) error {
	if inv.Bool("clear") {
		a.State.ClearLines()
		a.History.Reset()
		return nil
	}
	var lc limiter.Config
	for name, dst := range map[string]*int{"limit": &lc.Limit, "offset": &lc.Offset, "tail": &lc.Tail} {
		n, err := inv.Int(name)
		if err != nil {
			return err
		}
		*dst = n
	}
	if err := lc.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidValue, err)
	}
	lines, first := limiter.Apply(lc, a.State.Lines())
	for i, line := range lines {
		fmt.Fprintf(inv.Out, "%4d  %s\n", first+i+1, line)
	}
	return nil
}

func (a *App) runEcho(_ context.Context, inv *registry.Invocation) error {
	parts := inv.Rest
	if v, ok := inv.Get("text"); ok {
		parts = append([]string{v}, parts...)
	}
	text := strings.Join(parts, " ")
	if len(parts) == 0 {
		text = strings.TrimRight(inv.Input, "\n")
	}
	if inv.Bool("upper") {
		text = strings.ToUpper(text)
	}
	fmt.Fprintln(inv.Out, text)
	return nil
}

func (a *App) runOpen(_ context.Context, inv *registry.Invocation) error {
	path := inv.Value("path")
	if !filepath.IsAbs(path) && a.pathRoot != "" {
		path = filepath.Join(a.pathRoot, path)
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", inv.Value("path"), err)
	}
	if info.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return fmt.Errorf("open %s: %w", inv.Value("path"), err)
		}
		for _, e := range entries {
			name := e.Name()
			if e.IsDir() {
				name += "/"
			}
			fmt.Fprintln(inv.Out, name)
		}
		return nil
	}
	limit, err := inv.Int("lines")
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", inv.Value("path"), err)
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	for n := 0; sc.Scan() && (limit <= 0 || n < limit); n++ {
		fmt.Fprintln(inv.Out, sc.Text())
	}
	return sc.Err()
}

func (a *App) runConnect(_ context.Context, inv *registry.Invocation) error {
	host := inv.Value("host")
	port, err := inv.Int("port")
	if err != nil {
		return err
	}
	a.State.Set(VarConnected, true)
	a.State.Set(VarHost, host)
	a.State.Set(VarPort, port)
	a.addHost(host)
	scheme := "tcp"
	if inv.Bool("tls") {
		scheme = "tls"
	}
	fmt.Fprintf(inv.Out, "connected to %s:%d over %s (%s mode)\n", host, port, scheme, inv.Value("mode"))
	return nil
}

func (a *App) runDisconnect(_ context.Context, inv *registry.Invocation) error {
	host, _ := a.State.Get(VarHost)
	a.State.Set(VarConnected, false)
	a.State.Delete(VarHost)
	a.State.Delete(VarPort)
	fmt.Fprintf(inv.Out, "disconnected from %v\n", host)
	return nil
}

func (a *App) runList(_ context.Context, inv *registry.Invocation) error {
	current, _ := a.State.Get(VarHost)
	for _, h := range a.Hosts {
		if !strings.EqualFold(inv.Value("format"), "wide") {
			fmt.Fprintln(inv.Out, h)
			continue
		}
		mark := " "
		if h == current {
			mark = "*"
		}
		fmt.Fprintf(inv.Out, "%s %s\n", mark, h)
	}
	return nil
}

func (a *App) runStatus(_ context.Context, inv *registry.Invocation) error {
	if connected, _ := a.State.Get(VarConnected); connected != true {
		fmt.Fprintln(inv.Out, "not connected")
		return nil
	}
	host, _ := a.State.Get(VarHost)
	port, _ := a.State.Get(VarPort)
	fmt.Fprintf(inv.Out, "connected to %v:%v\n", host, port)
	return nil
}

func (a *App) runConfigGet(_ context.Context, inv *registry.Invocation) error {
	v, err := a.Config.Get(inv.Value("key"))
	if err != nil {
		return err
	}
	fmt.Fprintln(inv.Out, v)
	return nil
}

func (a *App) runConfigSet(_ context.Context, inv *registry.Invocation) error {
	key := inv.Value("key")
	if err := a.Config.Set(key, inv.Value("value")); err != nil {
		return err
	}
	v, _ := a.Config.Get(key)
	fmt.Fprintf(inv.Out, "%s = %s\n", key, v)
	return nil
}

func (a *App) runConfigShow(_ context.Context, inv *registry.Invocation) error {
	out, err := a.Config.YAML()
	if err != nil {
		return err
	}
	fmt.Fprint(inv.Out, out)
	return nil
}

func (a *App) addHost(host string) {
	for _, h := range a.Hosts {
		if h == host {
			return
		}
	}
	a.Hosts = append(a.Hosts, host)
}
