// Package expression compiles attribute recipes written as expr-lang
// templates.
//
// A string that is exactly one `{{ expression }}` evaluates to the typed
// result of the expression. A string with embedded templates is
// interpolated. Other values are literals.
//
// Expressions see the attributes assigned so far plus:
//   - sn:     how many times this recipe has run, starting at 1
//   - uuid(): a random UUID string
package expression

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/google/uuid"

	"github.com/reglet-dev/machinist/internal/domain/entities"
)

// maxASTNodes bounds expression complexity.
const maxASTNodes = 1000

var templatePattern = regexp.MustCompile(`\{\{\s*(.+?)\s*\}\}`)

// Compiler turns attribute values into recipes.
// It caches compiled programs, so identical expressions compile once.
type Compiler struct {
	programCache map[string]*vm.Program
	cacheMu      sync.RWMutex
}

// NewCompiler creates a compiler with an empty program cache.
func NewCompiler() *Compiler {
	return &Compiler{
		programCache: make(map[string]*vm.Program),
	}
}

// IsTemplate reports whether value contains an expression.
func IsTemplate(value any) bool {
	s, ok := value.(string)
	return ok && templatePattern.MatchString(s)
}

// Compile returns a recipe for value. Expressions are compiled now so that
// syntax errors surface when blueprints are loaded, not when they are used.
func (c *Compiler) Compile(value any) (entities.Recipe, error) {
	s, ok := value.(string)
	if !ok || !templatePattern.MatchString(s) {
		return func(entities.Object) (any, error) { return value, nil }, nil
	}

	var counter atomic.Int64

	if m := templatePattern.FindStringSubmatchIndex(s); m[0] == 0 && m[1] == len(s) {
		source := s[m[2]:m[3]]
		program, err := c.program(source)
		if err != nil {
			return nil, err
		}
		return func(obj entities.Object) (any, error) {
			return run(program, source, obj, counter.Add(1))
		}, nil
	}

	matches := templatePattern.FindAllStringSubmatch(s, -1)
	programs := make([]*vm.Program, len(matches))
	for i, match := range matches {
		program, err := c.program(match[1])
		if err != nil {
			return nil, err
		}
		programs[i] = program
	}

	return func(obj entities.Object) (any, error) {
		sn := counter.Add(1)
		var (
			b    strings.Builder
			last int
		)
		for i, loc := range templatePattern.FindAllStringIndex(s, -1) {
			out, err := run(programs[i], matches[i][1], obj, sn)
			if err != nil {
				return nil, err
			}
			b.WriteString(s[last:loc[0]])
			fmt.Fprintf(&b, "%v", out)
			last = loc[1]
		}
		b.WriteString(s[last:])
		return b.String(), nil
	}, nil
}

// program returns a cached program or compiles a new one.
func (c *Compiler) program(expression string) (*vm.Program, error) {
	c.cacheMu.RLock()
	program, ok := c.programCache[expression]
	c.cacheMu.RUnlock()
	if ok {
		return program, nil
	}

	program, err := expr.Compile(expression,
		expr.AllowUndefinedVariables(),
		expr.MaxNodes(maxASTNodes),
	)
	if err != nil {
		return nil, fmt.Errorf("compiling expression %q: %w", expression, err)
	}

	c.cacheMu.Lock()
	c.programCache[expression] = program
	c.cacheMu.Unlock()
	return program, nil
}

func run(program *vm.Program, source string, obj entities.Object, sn int64) (any, error) {
	out, err := expr.Run(program, environment(obj, sn))
	if err != nil {
		return nil, fmt.Errorf("evaluating expression %q: %w", source, err)
	}
	return out, nil
}

// environment builds the variables an expression can see.
func environment(obj entities.Object, sn int64) map[string]any {
	env := make(map[string]any)
	if s, ok := obj.(entities.Snapshotter); ok {
		for k, v := range s.Snapshot() {
			env[k] = v
		}
	}
	env["sn"] = int(sn)
	env["uuid"] = func() string { return uuid.NewString() }
	return env
}
