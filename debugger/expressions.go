package debugger

import (
	"fmt"

	"github.com/hearthlang/hearth/vm"
)

// ExpressionEvaluator evaluates watch and breakpoint-condition expressions
// against a VM's current variable environment. Expressions are tokenized
// by ExprLexer and parsed by ExprParser using precedence climbing.
type ExpressionEvaluator struct {
	valueHistory []vm.Value // History of evaluated values, for $1, $2, ...
	valueNumber  int
}

// NewExpressionEvaluator creates a new expression evaluator
func NewExpressionEvaluator() *ExpressionEvaluator {
	return &ExpressionEvaluator{
		valueHistory: make([]vm.Value, 0),
		valueNumber:  0,
	}
}

// EvaluateExpression evaluates expr against machine's current variables and
// returns the result, recording it in the value history.
func (e *ExpressionEvaluator) EvaluateExpression(expr string, machine *vm.VM) (vm.Value, error) {
	result, err := e.evaluate(expr, machine)
	if err != nil {
		return nil, err
	}

	e.valueHistory = append(e.valueHistory, result)
	e.valueNumber = len(e.valueHistory)

	return result, nil
}

// Evaluate evaluates expr and reports whether the result is truthy, for use
// as a breakpoint condition. A result is truthy unless it is the int 0.
func (e *ExpressionEvaluator) Evaluate(expr string, machine *vm.VM) (bool, error) {
	result, err := e.evaluate(expr, machine)
	if err != nil {
		return false, err
	}

	if n, ok := result.(int); ok {
		return n != 0, nil
	}
	return true, nil
}

// GetValueNumber returns the current value number
func (e *ExpressionEvaluator) GetValueNumber() int {
	return e.valueNumber
}

// GetValue returns a value from history by number
func (e *ExpressionEvaluator) GetValue(number int) (vm.Value, error) {
	if number < 1 || number > len(e.valueHistory) {
		return nil, fmt.Errorf("value $%d not in history", number)
	}

	return e.valueHistory[number-1], nil
}

// evaluate tokenizes and parses expr over machine's variable environment.
func (e *ExpressionEvaluator) evaluate(expr string, machine *vm.VM) (vm.Value, error) {
	if expr == "" {
		return nil, fmt.Errorf("empty expression")
	}

	tokens := NewExprLexer(expr).TokenizeAll()
	parser := NewExprParser(tokens, machine.Vars(), e)
	return parser.Parse()
}

// Reset clears the value history
func (e *ExpressionEvaluator) Reset() {
	e.valueHistory = e.valueHistory[:0]
	e.valueNumber = 0
}
