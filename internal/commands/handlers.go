package commands

import (
	"context"
	"strings"

	"github.com/oakwood-commons/replkit/internal/completion"
	"github.com/oakwood-commons/replkit/internal/config"
	"github.com/oakwood-commons/replkit/pkg/registry"
)

func (a *App) handlers() (*completion.HandlerRegistry, error) {
	hr := completion.NewHandlerRegistry()
	entries := []struct {
		ref registry.HandlerRef
		h   completion.Handler
	}{
		{handlerCommands, completion.HandlerFunc(a.commandOptions)},
		{handlerHosts, completion.HandlerFunc(a.hostOptions)},
		{handlerHistory, a.History},
		{handlerConfigKeys, completion.HandlerFunc(a.configKeyOptions)},
		{handlerConfigValues, completion.HandlerFunc(a.configValueOptions)},
	}
	for _, e := range entries {
		if err := hr.RegisterHandler(string(e.ref), e.h); err != nil {
			return nil, err
		}
	}
	// the path handler is built on first use
	err := hr.Register(string(handlerPaths), func() (completion.Handler, error) {
		return &completion.PathHandler{Root: a.pathRoot}, nil
	})
	if err != nil {
		return nil, err
	}
	return hr, nil
}

// commandOptions offers every visible command and group as a dotted path.
func (a *App) commandOptions(_ context.Context, _ *completion.CursorContext) ([]completion.Option, error) {
	var opts []completion.Option
	a.Registry.Walk(func(path []string, n registry.Node) bool {
		if cmd, ok := n.(*registry.Command); ok && cmd.Hidden {
			return false
		}
		if len(path) > 0 {
			opts = append(opts, completion.Option{Value: strings.Join(path, "."), Description: n.NodeDescription()})
		}
		return true
	})
	return opts, nil
}

// hostOptions merges the known hosts with hosts typed earlier.
func (a *App) hostOptions(ctx context.Context, cc *completion.CursorContext) ([]completion.Option, error) {
	seen := map[string]bool{}
	var opts []completion.Option
	recent, err := a.History.Options(ctx, cc)
	if err != nil {
		return nil, err
	}
	for _, o := range recent {
		seen[o.Value] = true
		opts = append(opts, o)
	}
	for _, h := range a.Hosts {
		if !seen[h] {
			opts = append(opts, completion.Option{Value: h, Description: "known host"})
		}
	}
	return opts, nil
}

func (a *App) configKeyOptions(_ context.Context, _ *completion.CursorContext) ([]completion.Option, error) {
	keys := config.Keys()
	opts := make([]completion.Option, 0, len(keys))
	for _, k := range keys {
		v, _ := a.Config.Get(k)
		opts = append(opts, completion.Option{Value: k, Description: "= " + v})
	}
	return opts, nil
}

// configValueOptions suggests values for the key already on the line.
func (a *App) configValueOptions(_ context.Context, cc *completion.CursorContext) ([]completion.Option, error) {
	if cc == nil {
		return nil, nil
	}
	var values []string
	switch key := cc.Values["key"]; key {
	case "completion.style":
		values = []string{config.StyleGhost, config.StyleCycle}
	case "ui.theme":
		values = a.Config.ThemeNames()
	case "ui.no_color", "ui.highlight", "completion.case_sensitive":
		values = []string{"true", "false"}
	case "log.level":
		values = []string{"debug", "info", "warn", "error"}
	case "completion.menu_rows":
		values = []string{"3", "5", "8", "10"}
	case "completion.handler_timeout":
		values = []string{"500ms", "1s", "2s", "5s"}
	}
	opts := make([]completion.Option, len(values))
	for i, v := range values {
		opts[i] = completion.Option{Value: v}
	}
	return opts, nil
}
