// Package commands is the demo command set served by the replkit REPL:
// the registration table, the value handlers its arguments reference, and
// the dispatcher that runs submitted lines.
package commands

import (
	"context"
	"io"

	"github.com/go-logr/logr"

	"github.com/oakwood-commons/replkit/internal/completion"
	"github.com/oakwood-commons/replkit/internal/condition"
	"github.com/oakwood-commons/replkit/internal/config"
	"github.com/oakwood-commons/replkit/pkg/registry"
)

// DefaultHosts seeds the hosts handler.
var DefaultHosts = []string{"alpha.local", "beta.local", "gamma.internal"}

// App bundles the registry with the state and handlers it is served with.
type App struct {
	Registry *registry.Registry
	Handlers *completion.HandlerRegistry
	History  *completion.HistoryHandler
	State    *State
	Config   *config.Config
	Hosts    []string

	conditions *condition.Evaluator
	dispatcher *Dispatcher
	pathRoot   string
	log        logr.Logger
}

// Option configures an App.
type Option func(*App)

func WithLogger(l logr.Logger) Option {
	return func(a *App) { a.log = l }
}

// WithHosts replaces the hosts offered for server connect.
func WithHosts(hosts ...string) Option {
	return func(a *App) { a.Hosts = append([]string(nil), hosts...) }
}

// WithPathRoot sets the directory relative paths complete and open against.
func WithPathRoot(dir string) Option {
	return func(a *App) { a.pathRoot = dir }
}

// New builds the demo registry and its handlers. cfg may be nil, in which
// case the embedded defaults are used.
func New(cfg *config.Config, opts ...Option) (*App, error) {
	if cfg == nil {
		def, err := config.Default()
		if err != nil {
			return nil, err
		}
		cfg = def
	}
	a := &App{
		Config:  cfg,
		Hosts:   append([]string(nil), DefaultHosts...),
		History: completion.NewHistoryHandler(0),
		State:   NewState(0),
		log:     logr.Discard(),
	}
	for _, opt := range opts {
		opt(a)
	}

	ev, err := condition.NewEvaluator()
	if err != nil {
		return nil, err
	}
	a.conditions = ev

	a.Registry = registry.New(registry.WithCaseSensitive(cfg.Completion.CaseSensitive))
	if err := a.register(a.Registry.Root()); err != nil {
		return nil, err
	}
	a.Handlers, err = a.handlers()
	if err != nil {
		return nil, err
	}
	a.dispatcher = NewDispatcher(a.Registry, a.conditions, a.State, a.History, a.log)
	return a, nil
}

// Engine returns a completion engine over the app's registry, sharing its
// session state, conditions and configured handler timeout.
func (a *App) Engine(opts ...completion.EngineOption) (*completion.Engine, error) {
	base := []completion.EngineOption{
		completion.WithSession(a.State.Vars),
		completion.WithConditions(a.conditions),
		completion.WithHandlerTimeout(a.Config.Completion.HandlerTimeout.Std()),
		completion.WithLogger(a.log),
	}
	return completion.NewEngine(a.Registry, a.Handlers, append(base, opts...)...)
}

// Execute parses and runs one submitted line.
func (a *App) Execute(ctx context.Context, line string, out io.Writer) error {
	return a.dispatcher.Execute(ctx, line, out)
}

// Dispatcher exposes the binder, for callers that only validate lines.
func (a *App) Dispatcher() *Dispatcher { return a.dispatcher }
