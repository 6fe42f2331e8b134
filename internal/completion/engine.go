// Package completion resolves what the cursor is pointing at and turns that
// slot into a filtered, sorted list of candidates.
//
// The Engine wires the pieces: Resolve maps (line, cursor) onto a CursorContext
// using the command registry, and Build asks the registry or a value handler for
// candidates. Both are pure functions of their inputs apart from handler I/O.
package completion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-logr/logr"

	"github.com/oakwood-commons/replkit/internal/condition"
	"github.com/oakwood-commons/replkit/pkg/registry"
)

var (
	ErrNilRegistry  = errors.New("completion: nil registry")
	ErrNilActivator = errors.New("completion: nil handler activator")
	// ErrInvalidCondition is returned by NewEngine for predicates that fail to
	// compile or read undeclared arguments.
	ErrInvalidCondition = errors.New("completion: invalid condition")
	// ErrHandlerPanic wraps a recovered handler panic.
	ErrHandlerPanic = errors.New("completion: handler panicked")
)

// Engine resolves and builds completions against one registry.
type Engine struct {
	reg        *registry.Registry
	activator  Activator
	conditions *condition.Evaluator
	session    func() map[string]any
	timeout    time.Duration
	log        logr.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the logger used for handler failures and condition errors.
func WithLogger(l logr.Logger) EngineOption {
	return func(e *Engine) { e.log = l }
}

// WithHandlerTimeout bounds each handler call. Zero waits indefinitely.
func WithHandlerTimeout(d time.Duration) EngineOption {
	return func(e *Engine) { e.timeout = d }
}

// WithSession supplies the session variables visible to conditions.
func WithSession(fn func() map[string]any) EngineOption {
	return func(e *Engine) { e.session = fn }
}

// WithConditions shares an evaluator, for callers that also evaluate predicates.
func WithConditions(ev *condition.Evaluator) EngineOption {
	return func(e *Engine) { e.conditions = ev }
}

// NewEngine validates the wiring and every condition in the registry.
func NewEngine(reg *registry.Registry, activator Activator, opts ...EngineOption) (*Engine, error) {
	if reg == nil {
		return nil, ErrNilRegistry
	}
	if activator == nil {
		return nil, ErrNilActivator
	}
	e := &Engine{reg: reg, activator: activator, log: logr.Discard()}
	for _, opt := range opts {
		opt(e)
	}
	if e.conditions == nil {
		ev, err := condition.NewEvaluator()
		if err != nil {
			return nil, err
		}
		e.conditions = ev
	}
	if err := e.validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// SessionVars returns a snapshot of the session variables.
func (e *Engine) SessionVars() map[string]any {
	if e.session == nil {
		return nil
	}
	return e.session()
}

func (e *Engine) validate() error {
	known, _ := e.activator.(interface{ Has(string) bool })
	for _, cmd := range e.reg.Commands() {
		if err := e.checkCondition(cmd, cmd.Condition); err != nil {
			return err
		}
		for _, arg := range cmd.Arguments {
			if err := e.checkCondition(cmd, arg.Condition); err != nil {
				return err
			}
			if arg.Handler != "" && known != nil && !known.Has(string(arg.Handler)) {
				return fmt.Errorf("%w: %s --%s uses %q", ErrUnknownHandler, cmd.FullName(), arg.Name, arg.Handler)
			}
		}
	}
	return nil
}

func (e *Engine) checkCondition(cmd *registry.Command, expr string) error {
	if expr == "" {
		return nil
	}
	if err := e.conditions.Compile(expr); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidCondition, cmd.FullName(), err)
	}
	refs, err := e.conditions.References(expr)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidCondition, cmd.FullName(), err)
	}
	for _, ref := range refs {
		if ref.Root == condition.VarArgs && cmd.Argument(ref.Field) == nil {
			return fmt.Errorf("%w: %s reads undeclared %s", ErrInvalidCondition, cmd.FullName(), ref)
		}
	}
	return nil
}

// Resolve maps the cursor onto a slot of the engine's registry.
func (e *Engine) Resolve(line string, cursor int) *CursorContext {
	return Resolve(line, cursor, e.reg)
}

// Complete resolves the cursor and builds its options.
func (e *Engine) Complete(ctx context.Context, line string, cursor int) *OptionSet {
	return e.Build(ctx, e.Resolve(line, cursor))
}

// Build turns a context into candidates. It returns nil when there are none.
// Handler failures are logged and produce no options.
func (e *Engine) Build(ctx context.Context, cc *CursorContext) *OptionSet {
	if cc == nil {
		return nil
	}
	var opts []Option
	switch cc.Type {
	case ContextGroupOrCommand:
		opts = e.scopeOptions(cc)
	case ContextArgumentName:
		opts = e.argumentOptions(cc, false)
	case ContextArgumentAlias:
		opts = e.argumentOptions(cc, true)
	case ContextArgumentValue, ContextPositional:
		opts = e.valueOptions(ctx, cc)
	default:
		return nil
	}
	opts = filterAndSort(opts, cc.Query)
	if len(opts) == 0 {
		return nil
	}
	return &OptionSet{
		Options:      opts,
		Context:      cc,
		ReplaceStart: cc.ReplaceStart,
		ReplaceEnd:   cc.ReplaceEnd,
		AppendSeparator: cc.Type == ContextGroupOrCommand ||
			cc.Type == ContextArgumentName ||
			cc.Type == ContextArgumentAlias,
	}
}

func (e *Engine) visible(cc *CursorContext, expr string) bool {
	if expr == "" {
		return true
	}
	ok, err := e.conditions.Eval(expr, condition.Vars{Args: cc.Values, Session: e.SessionVars()})
	if err != nil {
		e.log.V(1).Info("condition evaluation failed", "condition", expr, "error", err.Error())
		return false
	}
	return ok
}

func (e *Engine) scopeOptions(cc *CursorContext) []Option {
	if cc.Group == nil {
		return nil
	}
	format := ""
	if cc.Namespace != "" {
		format = cc.Namespace + "." + Placeholder
	}
	var opts []Option
	for _, n := range cc.Group.Children() {
		kind := OptionGroup
		if cmd, ok := n.(*registry.Command); ok {
			if cmd.Hidden || !e.visible(cc, cmd.Condition) {
				continue
			}
			kind = OptionCommand
		}
		opts = append(opts, Option{
			Value:       n.NodeName(),
			Format:      format,
			Description: n.NodeDescription(),
			Kind:        kind,
		})
	}
	return opts
}

func (e *Engine) argumentOptions(cc *CursorContext, aliases bool) []Option {
	if cc.Command == nil {
		return nil
	}
	var opts []Option
	for _, arg := range cc.Command.Arguments {
		if cc.Used[arg.Name] || !e.visible(cc, arg.Condition) {
			continue
		}
		if !aliases {
			opts = append(opts, Option{Value: arg.Name, Format: "--" + Placeholder, Description: arg.Description, Kind: OptionArgument})
			continue
		}
		for _, alias := range arg.Aliases {
			opts = append(opts, Option{
				Value:       alias,
				Format:      "-" + Placeholder,
				Description: "--" + arg.Name + " " + arg.Description,
				Kind:        OptionAlias,
			})
		}
	}
	return opts
}

func (e *Engine) valueOptions(ctx context.Context, cc *CursorContext) []Option {
	arg := cc.Argument
	if arg == nil {
		return nil
	}
	var h Handler
	if arg.Handler != "" {
		var err error
		h, err = e.activator.Activate(arg.Handler)
		if err != nil {
			e.log.Error(err, "handler activation failed", "handler", string(arg.Handler))
			return nil
		}
	} else {
		h = typeHandler(arg)
	}
	if h == nil {
		return nil
	}
	opts, err := e.call(ctx, h, cc)
	if err != nil {
		e.log.Error(err, "completion handler failed", "argument", arg.Name, "handler", string(arg.Handler))
		return nil
	}
	for i := range opts {
		opts[i].Kind = OptionValue
	}
	return opts
}

// call runs the handler, bounded by the configured timeout. A timed out handler
// keeps running on its goroutine; its result is dropped.
func (e *Engine) call(ctx context.Context, h Handler, cc *CursorContext) ([]Option, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if e.timeout <= 0 {
		return safeOptions(ctx, h, cc)
	}
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	type result struct {
		opts []Option
		err  error
	}
	done := make(chan result, 1)
	go func() {
		opts, err := safeOptions(ctx, h, cc)
		done <- result{opts, err}
	}()
	select {
	case r := <-done:
		return r.opts, r.err
	case <-ctx.Done():
		return nil, fmt.Errorf("completion handler: %w", ctx.Err())
	}
}

func safeOptions(ctx context.Context, h Handler, cc *CursorContext) (opts []Option, err error) {
	defer func() {
		if r := recover(); r != nil {
			opts, err = nil, fmt.Errorf("%w: %v", ErrHandlerPanic, r)
		}
	}()
	return h.Options(ctx, cc)
}
