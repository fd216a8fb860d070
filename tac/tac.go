// Package tac lowers an analyzed ast.Program into the flat three-address
// code described in spec.md §3: a linear list of textual instructions
// with labels and jumps, ready for the bytecode package to translate.
package tac

import (
	"fmt"
	"strconv"

	"github.com/hearthlang/hearth/ast"
)

// opNames maps a BinOp.Op lexeme to its TAC mnemonic.
var opNames = map[string]string{
	"+": "ADD", "-": "SUB", "*": "MUL", "/": "DIV",
	"==": "EQ", "!=": "NEQ", "<": "LT", ">": "GT", "<=": "LE", ">=": "GE",
}

var printOpcode = map[ast.PrintMode]string{
	ast.Speak: "PRINT", ast.Shout: "SHOUT", ast.Whisper: "WHISPER",
	ast.Laugh: "LAUGH", ast.Murmur: "MURMUR",
}

// generator tracks the monotonic temp/label counters a single Generate
// call uses; both reset per call, matching spec.md §4.4.
type generator struct {
	instructions []string
	tempCount    int
	labelCount   int
}

// Generate lowers program into a flat TAC instruction list. It is the
// `tac_generate` entry point from spec.md §6.
func Generate(program *ast.Program) []string {
	g := &generator{}
	for _, stmt := range program.Statements {
		g.stmt(stmt)
	}
	return g.instructions
}

func (g *generator) newTemp() string {
	t := fmt.Sprintf("t%d", g.tempCount)
	g.tempCount++
	return t
}

func (g *generator) newLabel() string {
	l := fmt.Sprintf("L%d", g.labelCount)
	g.labelCount++
	return l
}

func (g *generator) emit(format string, args ...interface{}) {
	g.instructions = append(g.instructions, fmt.Sprintf(format, args...))
}

func (g *generator) stmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.VarDecl:
		if input, ok := n.Value.(*ast.InputCmd); ok {
			g.emit("INPUT %q %s", input.Prompt, input.Var)
			break
		}
		result := g.expr(n.Value)
		g.emit("%s = %s", n.Name, result)
	case *ast.Update:
		result := g.expr(n.Value)
		g.emit("%s = %s", n.Name, result)
	case *ast.Print:
		result := g.expr(n.Expr)
		g.emit("%s %s", printOpcode[n.Mode], result)
	case *ast.Panic:
		g.emit("PANIC %q", n.Message)
	case *ast.Pause:
		g.emit("PAUSE")
	case *ast.Sleep:
		g.emit("SLEEP")
	case *ast.InputCmd:
		g.emit("INPUT %q %s", n.Prompt, n.Var)
	case *ast.If:
		g.ifStmt(n)
	case *ast.While:
		g.whileStmt(n)
	default:
		panic(fmt.Sprintf("tac: unhandled statement type %T", s))
	}
}

func (g *generator) ifStmt(n *ast.If) {
	cond := g.expr(n.Condition)
	elseLabel := g.newLabel()
	endLabel := g.newLabel()

	g.emit("JZ %s %s", cond, elseLabel)
	for _, s := range n.Then {
		g.stmt(s)
	}
	g.emit("JMP %s", endLabel)
	g.emit("LABEL %s", elseLabel)
	for _, s := range n.Else {
		g.stmt(s)
	}
	g.emit("LABEL %s", endLabel)
}

// whileStmt lowers a While loop. The Spiral flag does not alter the
// generated code — spec.md §9 leaves its semantics an open question.
func (g *generator) whileStmt(n *ast.While) {
	startLabel := g.newLabel()
	endLabel := g.newLabel()

	g.emit("LABEL %s", startLabel)
	cond := g.expr(n.Condition)
	g.emit("JZ %s %s", cond, endLabel)
	for _, s := range n.Body {
		g.stmt(s)
	}
	g.emit("JMP %s", startLabel)
	g.emit("LABEL %s", endLabel)
}

// expr lowers an expression to an operand string (a variable name, a
// temporary, an integer literal, or a quoted string literal) and returns
// that operand.
func (g *generator) expr(e ast.Expr) string {
	switch n := e.(type) {
	case *ast.BinOp:
		left := g.expr(n.Left)
		right := g.expr(n.Right)
		temp := g.newTemp()
		g.emit("%s = %s %s %s", temp, left, opNames[n.Op], right)
		return temp
	case *ast.Literal:
		switch v := n.Value.(type) {
		case int:
			return strconv.Itoa(v)
		case string:
			return strconv.Quote(v)
		default:
			panic(fmt.Sprintf("tac: unsupported literal type %T", v))
		}
	case *ast.Var:
		return n.Name
	default:
		panic(fmt.Sprintf("tac: unhandled expression type %T", e))
	}
}
