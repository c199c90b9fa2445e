package advisory

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/o2calc/o2calc/pkg/oxygen"
	"github.com/o2calc/o2calc/pkg/types"
)

// Rule is one advisory definition.
type Rule struct {
	Name      string
	Condition string
	Severity  string
	Message   string
}

type compiled struct {
	rule Rule
	cond Condition
}

// Engine evaluates advisory rules against estimates.
//
// Engine is safe for concurrent use; SetRules may be called while Evaluate
// runs on other goroutines.
type Engine struct {
	mu    sync.RWMutex
	rules []compiled
}

// New creates an Engine with the given rules. Rules whose condition does not
// parse are skipped with a warning.
func New(rules []Rule) *Engine {
	e := &Engine{}
	e.SetRules(rules)
	return e
}

// SetRules replaces the active rule set.
func (e *Engine) SetRules(rules []Rule) {
	out := make([]compiled, 0, len(rules))
	for _, r := range rules {
		cond, err := ParseCondition(r.Condition)
		if err != nil {
			slog.Warn("advisory: skipping rule", "rule", r.Name, "err", err)
			continue
		}
		if r.Severity == "" {
			r.Severity = "info"
		}
		out = append(out, compiled{rule: r, cond: cond})
	}

	e.mu.Lock()
	e.rules = out
	e.mu.Unlock()
}

// Len returns the number of active rules.
func (e *Engine) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.rules)
}

// Evaluate returns the advisories that fire for res, in rule order.
// The result is never nil.
func (e *Engine) Evaluate(res oxygen.Result) []types.Advisory {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]types.Advisory, 0)
	for _, c := range e.rules {
		fires, value := c.cond.Eval(res)
		if !fires {
			continue
		}
		msg := c.rule.Message
		if msg == "" {
			msg = fmt.Sprintf("%s: %s (value %.1f)", c.rule.Name, c.rule.Condition, value)
		}
		out = append(out, types.Advisory{
			Rule:     c.rule.Name,
			Severity: c.rule.Severity,
			Message:  msg,
			Value:    value,
		})
	}
	return out
}
