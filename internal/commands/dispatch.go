package commands

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/go-logr/logr"

	"github.com/oakwood-commons/replkit/internal/completion"
	"github.com/oakwood-commons/replkit/internal/condition"
	"github.com/oakwood-commons/replkit/pkg/parser"
	"github.com/oakwood-commons/replkit/pkg/registry"
)

var (
	ErrUnknownCommand    = errors.New("unknown command")
	ErrIncompleteCommand = errors.New("incomplete command")
	ErrUnknownArgument   = errors.New("unknown argument")
	ErrMissingValue      = errors.New("missing value")
	ErrMissingArgument   = errors.New("missing required argument")
	ErrInvalidValue      = errors.New("invalid value")
	ErrUnavailable       = errors.New("not available")
	ErrNotRunnable       = errors.New("command has no action")
	ErrEmptySegment      = errors.New("empty pipe segment")

	// ErrExit and ErrClearScreen are returned by the exit and clear commands;
	// the front end acts on them instead of printing them.
	ErrExit        = errors.New("exit requested")
	ErrClearScreen = errors.New("clear requested")
)

// Dispatcher binds parsed lines to registry commands and runs them.
type Dispatcher struct {
	reg        *registry.Registry
	conditions *condition.Evaluator
	state      *State
	history    *completion.HistoryHandler
	log        logr.Logger
}

// NewDispatcher wires a dispatcher. history may be nil.
func NewDispatcher(reg *registry.Registry, ev *condition.Evaluator, state *State, history *completion.HistoryHandler, log logr.Logger) *Dispatcher {
	return &Dispatcher{reg: reg, conditions: ev, state: state, history: history, log: log}
}

// Execute runs every pipe segment of line left to right. Each segment's
// output becomes the next one's Input; the last segment writes to out.
// Nothing runs unless every segment binds.
func (d *Dispatcher) Execute(ctx context.Context, line string, out io.Writer) error {
	if strings.TrimSpace(line) == "" {
		return nil
	}
	in := parser.Parse(line)
	invs := make([]*registry.Invocation, 0, len(in.Segments))
	for _, seg := range in.Segments {
		inv, err := d.Bind(seg)
		if err != nil {
			return err
		}
		invs = append(invs, inv)
	}
	d.state.Record(line)
	d.remember(invs)

	var input string
	for i, inv := range invs {
		var buf bytes.Buffer
		inv.Input = input
		inv.Out = &buf
		if i == len(invs)-1 {
			inv.Out = out
		}
		d.log.V(1).Info("running command", "command", inv.Command.FullName(), "values", inv.Values)
		if err := inv.Command.Run(ctx, inv); err != nil {
			return err
		}
		input = buf.String()
	}
	return nil
}

func (d *Dispatcher) remember(invs []*registry.Invocation) {
	if d.history == nil {
		return
	}
	for _, inv := range invs {
		for name, v := range inv.Values {
			if arg := inv.Command.Argument(name); arg != nil && !arg.Flag {
				d.history.Remember(arg.Name, v)
			}
		}
	}
}

// Bind resolves one segment to a command and its argument values.
func (d *Dispatcher) Bind(seg parser.Command) (*registry.Invocation, error) {
	tokens := seg.Tokens()
	if len(tokens) == 0 {
		return nil, ErrEmptySegment
	}
	cmd, rest, err := d.lookup(tokens)
	if err != nil {
		return nil, err
	}
	inv := &registry.Invocation{
		Command: cmd,
		Values:  map[string]string{},
		Session: d.state.Vars(),
	}

	var bare []string
	skip := map[int]bool{}
	for _, tok := range rest {
		if skip[tok.Index] {
			continue
		}
		switch tok.Kind {
		case parser.KindArgumentName, parser.KindArgumentAlias:
			if tok.HasError(parser.ErrInvalidAlias) {
				return nil, fmt.Errorf("%w: %s", ErrUnknownArgument, tok.Raw)
			}
			arg := d.argument(cmd, tok)
			if arg == nil {
				return nil, fmt.Errorf("%w: %s for %s", ErrUnknownArgument, tok.Raw, cmd.FullName())
			}
			value, paired := seg.PairedWith(tok)
			if arg.Flag {
				inv.Values[arg.Name] = "true"
				// a value after a flag is a bare value
				continue
			}
			if paired {
				skip[value.Index] = true
				inv.Values[arg.Name] = value.Value
				continue
			}
			if arg.Type == registry.TypeBool {
				inv.Values[arg.Name] = "true"
				continue
			}
			return nil, fmt.Errorf("%w for %s", ErrMissingValue, tok.Raw)
		case parser.KindUnexpected:
			if tok.HasError(parser.ErrEmptyArgumentName) {
				return nil, fmt.Errorf("%w: empty argument name", ErrUnknownArgument)
			}
			bare = append(bare, tok.Value)
		default:
			bare = append(bare, tok.Value)
		}
	}

	for _, arg := range cmd.Positionals() {
		if len(bare) == 0 {
			break
		}
		if _, ok := inv.Values[arg.Name]; ok {
			continue
		}
		inv.Values[arg.Name] = bare[0]
		bare = bare[1:]
	}
	inv.Rest = bare

	if err := d.check(cmd, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// lookup walks leading command words by exact name or alias.
func (d *Dispatcher) lookup(tokens []parser.Element) (*registry.Command, []parser.Element, error) {
	group := d.reg.Root()
	for i, tok := range tokens {
		if tok.Kind != parser.KindCommand {
			break
		}
		for _, part := range strings.Split(tok.Value, ".") {
			switch n := group.Child(part).(type) {
			case *registry.Group:
				group = n
			case *registry.Command:
				return n, tokens[i+1:], nil
			default:
				return nil, nil, fmt.Errorf("%w: %s", ErrUnknownCommand, strings.Join(append(group.Path(), part), " "))
			}
		}
	}
	if group == d.reg.Root() {
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownCommand, tokens[0].Raw)
	}
	var names []string
	for _, n := range group.Children() {
		names = append(names, n.NodeName())
	}
	return nil, nil, fmt.Errorf("%w: %s expects one of %s", ErrIncompleteCommand, strings.Join(group.Path(), " "), strings.Join(names, ", "))
}

func (d *Dispatcher) argument(cmd *registry.Command, tok parser.Element) *registry.Argument {
	if tok.Kind == parser.KindArgumentAlias {
		return cmd.ArgumentByAlias(tok.Value)
	}
	return cmd.Argument(tok.Value)
}

func (d *Dispatcher) check(cmd *registry.Command, inv *registry.Invocation) error {
	vars := condition.Vars{Args: inv.Values, Session: inv.Session}
	if !d.allowed(cmd.Condition, vars) {
		return fmt.Errorf("%w: %s", ErrUnavailable, cmd.FullName())
	}
	for _, arg := range cmd.Arguments {
		v, ok := inv.Values[arg.Name]
		if !ok {
			if arg.Required {
				return fmt.Errorf("%w: %s needs %s", ErrMissingArgument, cmd.FullName(), arg.Name)
			}
			continue
		}
		if !d.allowed(arg.Condition, vars) {
			return fmt.Errorf("%w: --%s", ErrUnavailable, arg.Name)
		}
		if err := validateValue(arg, v); err != nil {
			return err
		}
	}
	if cmd.Run == nil {
		return fmt.Errorf("%w: %s", ErrNotRunnable, cmd.FullName())
	}
	return nil
}

func (d *Dispatcher) allowed(expr string, vars condition.Vars) bool {
	if expr == "" || d.conditions == nil {
		return true
	}
	ok, err := d.conditions.Eval(expr, vars)
	if err != nil {
		d.log.V(1).Info("condition failed", "expr", expr, "error", err.Error())
		return false
	}
	return ok
}

func validateValue(arg *registry.Argument, v string) error {
	switch arg.Type {
	case registry.TypeInt:
		if _, err := strconv.Atoi(v); err != nil {
			return fmt.Errorf("%w: --%s wants a number, got %q", ErrInvalidValue, arg.Name, v)
		}
	case registry.TypeBool:
		if _, err := strconv.ParseBool(v); err != nil {
			return fmt.Errorf("%w: --%s wants true or false, got %q", ErrInvalidValue, arg.Name, v)
		}
	case registry.TypeEnum:
		if !slices.ContainsFunc(arg.Enum, func(m string) bool { return strings.EqualFold(m, v) }) {
			return fmt.Errorf("%w: --%s must be one of %s", ErrInvalidValue, arg.Name, strings.Join(arg.Enum, ", "))
		}
	}
	return nil
}
