// Package semantic performs the single static check the language makes
// before lowering: every variable read or updated must have been
// previously declared.
package semantic

import (
	"fmt"

	"github.com/hearthlang/hearth/ast"
)

// Error is a SemanticError: use of an undeclared variable, or update of
// one.
type Error struct {
	Name    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("semantic error: %s", e.Message)
}

// analyzer holds the flat, unscoped set of declared names. Loops and
// conditionals share this single namespace with the rest of the program —
// there is no block scoping (spec.md §4.3, §9).
type analyzer struct {
	declared map[string]bool
}

// Analyze walks program top-down once, raising the first undeclared-
// variable or undeclared-update error it finds. It mutates no AST node;
// the tree returned by parser.Parse is unchanged.
func Analyze(program *ast.Program) error {
	a := &analyzer{declared: make(map[string]bool)}
	for _, stmt := range program.Statements {
		if err := a.stmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (a *analyzer) stmt(s ast.Stmt) error {
	switch n := s.(type) {
	case *ast.VarDecl:
		if err := a.expr(n.Value); err != nil {
			return err
		}
		a.declared[n.Name] = true
	case *ast.Update:
		if !a.declared[n.Name] {
			return &Error{Name: n.Name, Message: fmt.Sprintf("variable %q updated before declaration", n.Name)}
		}
		if err := a.expr(n.Value); err != nil {
			return err
		}
	case *ast.Print:
		return a.expr(n.Expr)
	case *ast.Panic, *ast.Pause, *ast.Sleep:
		// no variables to check
	case *ast.InputCmd:
		a.declared[n.Var] = true
	case *ast.If:
		if err := a.expr(n.Condition); err != nil {
			return err
		}
		for _, s := range n.Then {
			if err := a.stmt(s); err != nil {
				return err
			}
		}
		for _, s := range n.Else {
			if err := a.stmt(s); err != nil {
				return err
			}
		}
	case *ast.While:
		if err := a.expr(n.Condition); err != nil {
			return err
		}
		for _, s := range n.Body {
			if err := a.stmt(s); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("semantic: unhandled statement type %T", s)
	}
	return nil
}

func (a *analyzer) expr(e ast.Expr) error {
	switch n := e.(type) {
	case *ast.BinOp:
		if err := a.expr(n.Left); err != nil {
			return err
		}
		return a.expr(n.Right)
	case *ast.Literal:
		// no variables to check
	case *ast.Var:
		if !a.declared[n.Name] {
			return &Error{Name: n.Name, Message: fmt.Sprintf("variable %q used before declaration", n.Name)}
		}
	case *ast.InputCmd:
		// appears as VarDecl.Value; the name it assigns is declared by
		// the caller (VarDecl case above), nothing to check here.
	default:
		return fmt.Errorf("semantic: unhandled expression type %T", e)
	}
	return nil
}
