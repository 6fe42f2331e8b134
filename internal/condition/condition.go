// Package condition evaluates the CEL predicates that gate when a command or
// argument is offered for completion.
//
// Two variables are bound: args, the values already typed on the line keyed by
// argument name, and session, the REPL's shared state.
//
//	session.connected && !has(args.host)
package condition

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/cel-go/cel"
	celext "github.com/google/cel-go/ext"
	exprpb "google.golang.org/genproto/googleapis/api/expr/v1alpha1"
)

const (
	VarArgs    = "args"
	VarSession = "session"
)

// Vars is the activation for one evaluation.
type Vars struct {
	Args    map[string]string
	Session map[string]any
}

func (v Vars) activation() map[string]any {
	args := v.Args
	if args == nil {
		args = map[string]string{}
	}
	session := v.Session
	if session == nil {
		session = map[string]any{}
	}
	return map[string]any{VarArgs: args, VarSession: session}
}

// Reference is a field read from one of the bound variables, such as args.host.
type Reference struct {
	Root  string
	Field string
}

func (r Reference) String() string { return r.Root + "." + r.Field }

// Evaluator compiles predicates once and caches the programs.
type Evaluator struct {
	env *cel.Env

	mu       sync.Mutex
	programs map[string]cel.Program
}

// NewEvaluator creates an evaluator with the strings extension enabled.
func NewEvaluator() (*Evaluator, error) {
	env, err := cel.NewEnv(
		cel.Variable(VarArgs, cel.MapType(cel.StringType, cel.StringType)),
		cel.Variable(VarSession, cel.MapType(cel.StringType, cel.DynType)),
		celext.Strings(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return &Evaluator{env: env, programs: map[string]cel.Program{}}, nil
}

// Compile type-checks expr and caches its program. The expression must yield a bool.
func (e *Evaluator) Compile(expr string) error {
	_, err := e.program(expr)
	return err
}

func (e *Evaluator) program(expr string) (cel.Program, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if prg, ok := e.programs[expr]; ok {
		return prg, nil
	}
	ast, issues := e.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compilation error: %w", issues.Err())
	}
	// session fields are dyn, so a bare session.flag must be allowed through.
	if out := ast.OutputType(); !out.IsExactType(cel.BoolType) && !out.IsExactType(cel.DynType) {
		return nil, fmt.Errorf("condition %q must evaluate to bool, got %s", expr, out)
	}
	prg, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	e.programs[expr] = prg
	return prg, nil
}

// Eval evaluates expr. An empty expression is always true.
func (e *Evaluator) Eval(expr string, vars Vars) (bool, error) {
	if expr == "" {
		return true, nil
	}
	prg, err := e.program(expr)
	if err != nil {
		return false, err
	}
	out, _, err := prg.Eval(vars.activation())
	if err != nil {
		return false, fmt.Errorf("eval error: %w", err)
	}
	b, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("condition %q returned %T", expr, out.Value())
	}
	return b, nil
}

// References lists the variable fields expr reads, sorted and deduplicated.
func (e *Evaluator) References(expr string) ([]Reference, error) {
	ast, issues := e.env.Parse(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("parse error: %w", issues.Err())
	}
	parsed, err := cel.AstToParsedExpr(ast)
	if err != nil {
		return nil, fmt.Errorf("convert ast: %w", err)
	}
	seen := map[Reference]struct{}{}
	walk(parsed.GetExpr(), func(r Reference) { seen[r] = struct{}{} })
	refs := make([]Reference, 0, len(seen))
	for r := range seen {
		refs = append(refs, r)
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].String() < refs[j].String() })
	return refs, nil
}

func walk(expr *exprpb.Expr, visit func(Reference)) {
	if expr == nil {
		return
	}
	switch expr.ExprKind.(type) {
	case *exprpb.Expr_SelectExpr:
		sel := expr.GetSelectExpr()
		if ident := sel.GetOperand().GetIdentExpr(); ident != nil && isVar(ident.GetName()) {
			visit(Reference{Root: ident.GetName(), Field: sel.GetField()})
			return
		}
		walk(sel.GetOperand(), visit)
	case *exprpb.Expr_CallExpr:
		call := expr.GetCallExpr()
		if call.GetFunction() == "_[_]" && len(call.GetArgs()) == 2 {
			ident := call.GetArgs()[0].GetIdentExpr()
			key := call.GetArgs()[1].GetConstExpr()
			if ident != nil && isVar(ident.GetName()) && key != nil {
				if s, ok := key.ConstantKind.(*exprpb.Constant_StringValue); ok {
					visit(Reference{Root: ident.GetName(), Field: s.StringValue})
					return
				}
			}
		}
		walk(call.GetTarget(), visit)
		for _, arg := range call.GetArgs() {
			walk(arg, visit)
		}
	case *exprpb.Expr_ListExpr:
		for _, el := range expr.GetListExpr().GetElements() {
			walk(el, visit)
		}
	case *exprpb.Expr_StructExpr:
		for _, entry := range expr.GetStructExpr().GetEntries() {
			walk(entry.GetMapKey(), visit)
			walk(entry.GetValue(), visit)
		}
	case *exprpb.Expr_ComprehensionExpr:
		c := expr.GetComprehensionExpr()
		walk(c.GetIterRange(), visit)
		walk(c.GetAccuInit(), visit)
		walk(c.GetLoopCondition(), visit)
		walk(c.GetLoopStep(), visit)
		walk(c.GetResult(), visit)
	}
}

func isVar(name string) bool { return name == VarArgs || name == VarSession }
