// Package exprlang backs selection expressions with the expr language.
package exprlang

import (
	"fmt"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"opspager/internal/addressing"
)

// Evaluator compiles selection expressions with expr-lang and caches the
// compiled programs. Safe for concurrent use.
type Evaluator struct {
	mu       sync.RWMutex
	programs map[string]*vm.Program
}

func New() *Evaluator {
	return &Evaluator{programs: map[string]*vm.Program{}}
}

// Evaluate runs the expression against the context variables. The result
// must be a boolean; anything else is an error.
func (e *Evaluator) Evaluate(expression string, ctx addressing.EvaluationContext) (bool, error) {
	program, err := e.compile(expression)
	if err != nil {
		return false, fmt.Errorf("compile expression %q: %w", expression, err)
	}

	out, err := expr.Run(program, ctx.Variables())
	if err != nil {
		return false, fmt.Errorf("evaluate expression %q: %w", expression, err)
	}

	result, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("expression %q returned %T, want bool", expression, out)
	}
	return result, nil
}

func (e *Evaluator) compile(expression string) (*vm.Program, error) {
	e.mu.RLock()
	program, ok := e.programs[expression]
	e.mu.RUnlock()
	if ok {
		return program, nil
	}

	program, err := expr.Compile(expression, expr.AsBool())
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.programs[expression] = program
	e.mu.Unlock()
	return program, nil
}
