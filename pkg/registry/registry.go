// Package registry holds the read-only tree of command groups, commands and
// arguments consulted by the completion engine and the dispatcher.
//
// The tree is built once at startup from an explicit registration table: each
// command is described by a Command literal and attached with Group.AddCommand.
// Every argument names its completion strategy through a HandlerRef that the
// completion package resolves at request time.
package registry

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// ErrDuplicate is returned when a name or alias collides with a sibling.
	ErrDuplicate = errors.New("duplicate name")
	// ErrInvalidName is returned for empty or malformed names.
	ErrInvalidName = errors.New("invalid name")
	// ErrInvalidAlias is returned for aliases that are not a single character.
	ErrInvalidAlias = errors.New("invalid alias")
	// ErrInvalidArgument is returned for inconsistent argument declarations.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNilCommand is returned when AddCommand receives nil.
	ErrNilCommand = errors.New("nil command")
)

// Node is either a *Group or a *Command.
type Node interface {
	NodeName() string
	NodeDescription() string
	NodeAliases() []string
	IsGroup() bool
}

// Registry is the root of a command tree.
type Registry struct {
	root          *Group
	caseSensitive bool
}

// Option configures a Registry.
type Option func(*Registry)

// WithCaseSensitive makes exact name matches case-sensitive. Prefix filtering
// stays case-insensitive either way.
func WithCaseSensitive(on bool) Option {
	return func(r *Registry) { r.caseSensitive = on }
}

// New returns an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{}
	for _, opt := range opts {
		opt(r)
	}
	r.root = &Group{reg: r}
	return r
}

// Root returns the top-level group.
func (r *Registry) Root() *Group { return r.root }

// CaseSensitive reports whether exact matches honour case.
func (r *Registry) CaseSensitive() bool { return r.caseSensitive }

// Equal compares two names under the registry's case rules.
func (r *Registry) Equal(a, b string) bool {
	if r.caseSensitive {
		return a == b
	}
	return strings.EqualFold(a, b)
}

// Find walks path from the root by exact name or alias. It returns nil when any
// segment is unknown.
func (r *Registry) Find(path ...string) Node {
	var node Node = r.root
	for _, name := range path {
		g, ok := node.(*Group)
		if !ok {
			return nil
		}
		node = g.Child(name)
		if node == nil {
			return nil
		}
	}
	return node
}

// Walk visits every node below the root depth-first in sorted order. Returning
// false from fn skips the node's children.
func (r *Registry) Walk(fn func(path []string, n Node) bool) {
	type frame struct {
		path []string
		node Node
	}
	var stack []frame
	push := func(parent []string, g *Group) {
		children := g.Children()
		for i := len(children) - 1; i >= 0; i-- {
			p := append(append([]string(nil), parent...), children[i].NodeName())
			stack = append(stack, frame{path: p, node: children[i]})
		}
	}
	push(nil, r.root)
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(f.path, f.node) {
			continue
		}
		if g, ok := f.node.(*Group); ok {
			push(f.path, g)
		}
	}
}

// Commands returns every command in walk order.
func (r *Registry) Commands() []*Command {
	var out []*Command
	r.Walk(func(_ []string, n Node) bool {
		if c, ok := n.(*Command); ok {
			out = append(out, c)
		}
		return true
	})
	return out
}

// Group is a namespace of commands and nested groups.
type Group struct {
	name        string
	description string
	parent      *Group
	reg         *Registry
	children    []Node
}

func (g *Group) NodeName() string        { return g.name }
func (g *Group) NodeDescription() string { return g.description }
func (g *Group) NodeAliases() []string   { return nil }
func (g *Group) IsGroup() bool           { return true }

// Parent returns the enclosing group, or nil for the root.
func (g *Group) Parent() *Group { return g.parent }

// Registry returns the registry the group belongs to.
func (g *Group) Registry() *Registry { return g.reg }

// Path returns the names from the root down to g.
func (g *Group) Path() []string {
	var path []string
	for cur := g; cur != nil && cur.parent != nil; cur = cur.parent {
		path = append([]string{cur.name}, path...)
	}
	return path
}

// AddGroup creates a nested group.
func (g *Group) AddGroup(name, description string) (*Group, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := g.checkFree(name); err != nil {
		return nil, err
	}
	child := &Group{name: name, description: description, parent: g, reg: g.reg}
	g.children = append(g.children, child)
	return child, nil
}

// MustGroup is AddGroup that panics on error, for static registration tables.
func (g *Group) MustGroup(name, description string) *Group {
	child, err := g.AddGroup(name, description)
	if err != nil {
		panic(err)
	}
	return child
}

// AddCommand validates cmd and attaches it to the group.
func (g *Group) AddCommand(cmd *Command) error {
	if cmd == nil {
		return ErrNilCommand
	}
	if err := validateName(cmd.Name); err != nil {
		return err
	}
	if err := g.checkFree(cmd.Name); err != nil {
		return err
	}
	for _, alias := range cmd.Aliases {
		if err := validateName(alias); err != nil {
			return fmt.Errorf("command %q alias: %w", cmd.Name, err)
		}
		if g.reg.Equal(alias, cmd.Name) {
			return fmt.Errorf("%w: command %q alias repeats its name", ErrDuplicate, cmd.Name)
		}
		if err := g.checkFree(alias); err != nil {
			return err
		}
	}
	if err := g.reg.validateArguments(cmd); err != nil {
		return err
	}
	cmd.parent = g
	g.children = append(g.children, cmd)
	return nil
}

// MustCommand is AddCommand that panics on error.
func (g *Group) MustCommand(cmd *Command) *Command {
	if err := g.AddCommand(cmd); err != nil {
		panic(err)
	}
	return cmd
}

// Children returns the direct children sorted case-insensitively by name.
func (g *Group) Children() []Node {
	out := append([]Node(nil), g.children...)
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].NodeName()) < strings.ToLower(out[j].NodeName())
	})
	return out
}

// Child returns the child whose name or alias equals name exactly.
func (g *Group) Child(name string) Node {
	for _, n := range g.children {
		if g.reg.Equal(n.NodeName(), name) {
			return n
		}
	}
	for _, n := range g.children {
		for _, alias := range n.NodeAliases() {
			if g.reg.Equal(alias, name) {
				return n
			}
		}
	}
	return nil
}

// MatchPrefix returns the sorted children whose name starts with prefix,
// ignoring case.
func (g *Group) MatchPrefix(prefix string) []Node {
	lower := strings.ToLower(prefix)
	var out []Node
	for _, n := range g.Children() {
		if strings.HasPrefix(strings.ToLower(n.NodeName()), lower) {
			out = append(out, n)
		}
	}
	return out
}

func (g *Group) checkFree(name string) error {
	if g.Child(name) != nil {
		return fmt.Errorf("%w: %q already registered in %q", ErrDuplicate, name, strings.Join(g.Path(), " "))
	}
	return nil
}

func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty", ErrInvalidName)
	}
	if strings.HasPrefix(name, "-") {
		return fmt.Errorf("%w: %q starts with a dash", ErrInvalidName, name)
	}
	for _, r := range name {
		if unicode.IsSpace(r) || r == '|' || r == '.' || r == '"' || r == '\'' {
			return fmt.Errorf("%w: %q contains %q", ErrInvalidName, name, r)
		}
	}
	return nil
}

func (r *Registry) validateArguments(cmd *Command) error {
	var positions []int
	for i, arg := range cmd.Arguments {
		if arg == nil {
			return fmt.Errorf("%w: command %q argument %d is nil", ErrInvalidArgument, cmd.Name, i)
		}
		if err := validateName(arg.Name); err != nil {
			return fmt.Errorf("command %q argument: %w", cmd.Name, err)
		}
		for _, prev := range cmd.Arguments[:i] {
			if r.Equal(prev.Name, arg.Name) {
				return fmt.Errorf("%w: command %q argument %q", ErrDuplicate, cmd.Name, arg.Name)
			}
		}
		for _, alias := range arg.Aliases {
			if utf8.RuneCountInString(alias) != 1 || alias == "-" {
				return fmt.Errorf("%w: command %q argument %q alias %q must be one character", ErrInvalidAlias, cmd.Name, arg.Name, alias)
			}
			for _, prev := range cmd.Arguments[:i] {
				if slices.Contains(prev.Aliases, alias) {
					return fmt.Errorf("%w: command %q alias -%s", ErrDuplicate, cmd.Name, alias)
				}
			}
		}
		if hasDuplicate(arg.Aliases) {
			return fmt.Errorf("%w: command %q argument %q repeats an alias", ErrDuplicate, cmd.Name, arg.Name)
		}
		if arg.Flag {
			if arg.Type != TypeString && arg.Type != TypeBool {
				return fmt.Errorf("%w: command %q flag %q must be boolean", ErrInvalidArgument, cmd.Name, arg.Name)
			}
			arg.Type = TypeBool
			if arg.Position != 0 {
				return fmt.Errorf("%w: command %q flag %q cannot be positional", ErrInvalidArgument, cmd.Name, arg.Name)
			}
		}
		if arg.Type == TypeEnum && len(arg.Enum) == 0 {
			return fmt.Errorf("%w: command %q enum %q has no members", ErrInvalidArgument, cmd.Name, arg.Name)
		}
		if arg.Position < 0 {
			return fmt.Errorf("%w: command %q argument %q has negative position", ErrInvalidArgument, cmd.Name, arg.Name)
		}
		if arg.Position > 0 {
			positions = append(positions, arg.Position)
		}
	}
	sort.Ints(positions)
	for i, p := range positions {
		if p != i+1 {
			return fmt.Errorf("%w: command %q positions must run 1..%d without gaps", ErrInvalidArgument, cmd.Name, len(positions))
		}
	}
	return nil
}

func hasDuplicate(values []string) bool {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			return true
		}
		seen[v] = struct{}{}
	}
	return false
}
