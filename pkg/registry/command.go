package registry

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// ArgType is the declared value type of an argument.
type ArgType int

const (
	TypeString ArgType = iota
	TypeBool
	TypeInt
	TypeEnum
	TypePath
)

func (t ArgType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeBool:
		return "bool"
	case TypeInt:
		return "int"
	case TypeEnum:
		return "enum"
	case TypePath:
		return "path"
	default:
		return "unknown"
	}
}

// HandlerRef names a completion handler. The completion package resolves it
// through an activator; the registry never holds handler instances.
type HandlerRef string

// Argument describes one named or positional argument of a command.
type Argument struct {
	Name        string
	Aliases     []string
	Description string
	Type        ArgType
	Enum        []string
	// Flag marks a presence-only boolean that never takes a value.
	Flag bool
	// Position is the 1-based ordinal among bare values, or 0 for named only.
	Position int
	Required bool
	Default  string
	Handler  HandlerRef
	// Condition is an optional CEL predicate; the argument is offered only
	// while it evaluates to true.
	Condition string
}

// HasAlias reports whether a is one of the argument's aliases.
func (a *Argument) HasAlias(alias string) bool {
	for _, x := range a.Aliases {
		if x == alias {
			return true
		}
	}
	return false
}

// Invocation carries the values bound for one command run.
type Invocation struct {
	Command *Command
	// Values holds named and positional values by argument name. Flags that
	// were present map to "true".
	Values map[string]string
	// Rest holds bare values that matched no positional slot.
	Rest []string
	// Input is the output of the previous pipe segment, if any.
	Input string
	Out   io.Writer
	// Session is shared mutable state for the lifetime of the REPL.
	Session map[string]any
}

// Get returns the bound value for name.
func (inv *Invocation) Get(name string) (string, bool) {
	v, ok := inv.Values[name]
	return v, ok
}

// Value returns the bound value or the argument default.
func (inv *Invocation) Value(name string) string {
	if v, ok := inv.Values[name]; ok {
		return v
	}
	if inv.Command != nil {
		if arg := inv.Command.Argument(name); arg != nil {
			return arg.Default
		}
	}
	return ""
}

// Bool reports whether name was set to a true value.
func (inv *Invocation) Bool(name string) bool {
	v, err := strconv.ParseBool(inv.Value(name))
	return err == nil && v
}

// Int parses the bound value of name.
func (inv *Invocation) Int(name string) (int, error) {
	s := inv.Value(name)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("argument %s: %w", name, err)
	}
	return n, nil
}

// RunFunc executes a command.
type RunFunc func(ctx context.Context, inv *Invocation) error

// Command is a leaf of the tree.
type Command struct {
	Name        string
	Aliases     []string
	Description string
	// Help is long-form markdown shown by the help command.
	Help      string
	Arguments []*Argument
	// Condition is an optional CEL predicate over session state.
	Condition string
	Hidden    bool
	Run       RunFunc

	parent *Group
}

func (c *Command) NodeName() string        { return c.Name }
func (c *Command) NodeDescription() string { return c.Description }
func (c *Command) NodeAliases() []string   { return c.Aliases }
func (c *Command) IsGroup() bool           { return false }

// Parent returns the group holding the command.
func (c *Command) Parent() *Group { return c.parent }

// Path returns the group names followed by the command name.
func (c *Command) Path() []string {
	var path []string
	if c.parent != nil {
		path = c.parent.Path()
	}
	return append(path, c.Name)
}

// FullName joins Path with spaces.
func (c *Command) FullName() string { return strings.Join(c.Path(), " ") }

func (c *Command) equal(a, b string) bool {
	if c.parent != nil && c.parent.reg != nil {
		return c.parent.reg.Equal(a, b)
	}
	return strings.EqualFold(a, b)
}

// Argument returns the argument with the given name.
func (c *Command) Argument(name string) *Argument {
	for _, a := range c.Arguments {
		if c.equal(a.Name, name) {
			return a
		}
	}
	return nil
}

// ArgumentByAlias returns the argument owning the single-character alias.
// Aliases are always case-sensitive.
func (c *Command) ArgumentByAlias(alias string) *Argument {
	for _, a := range c.Arguments {
		if a.HasAlias(alias) {
			return a
		}
	}
	return nil
}

// Positionals returns positional arguments ordered by position.
func (c *Command) Positionals() []*Argument {
	var out []*Argument
	for _, a := range c.Arguments {
		if a.Position > 0 {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}

// Usage renders a one-line synopsis such as "server connect <host> [--port int] [--force]".
func (c *Command) Usage() string {
	parts := []string{c.FullName()}
	for _, a := range c.Positionals() {
		if a.Required {
			parts = append(parts, "<"+a.Name+">")
		} else {
			parts = append(parts, "["+a.Name+"]")
		}
	}
	for _, a := range c.Arguments {
		if a.Position > 0 {
			continue
		}
		var s string
		if a.Flag {
			s = "--" + a.Name
		} else {
			s = "--" + a.Name + " " + a.Type.String()
		}
		if !a.Required {
			s = "[" + s + "]"
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, " ")
}
