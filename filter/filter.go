// Package filter compiles expression-language filters over raw PAIA item
// documents, used by the list commands to narrow down account views.
package filter

import (
	"fmt"
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/patron-tools/patronctl/paia"
)

// ItemFilter is a compiled filter expression.
type ItemFilter struct {
	program *vm.Program
	expr    string
}

// Compile compiles a filter expression. Expressions see the raw item
// document as Item plus a set of helper functions, for example:
//
//	statusIs(3) and Item.Renewals > 2
//	contains(Item.Storage, "magazin") and daysUntil(Item.Endtime) < 7
func Compile(expression string) (*ItemFilter, error) {
	if strings.TrimSpace(expression) == "" {
		return nil, fmt.Errorf("empty filter expression")
	}

	program, err := expr.Compile(expression,
		expr.Env(buildEnv(paia.ItemDocument{})),
		expr.AllowUndefinedVariables(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to compile filter expression: %w", err)
	}

	return &ItemFilter{program: program, expr: expression}, nil
}

// Evaluate runs the filter against one item document. Evaluation errors and
// non-boolean results count as no match.
func (f *ItemFilter) Evaluate(doc paia.ItemDocument) bool {
	result, err := expr.Run(f.program, buildEnv(doc))
	if err != nil {
		return false
	}
	matched, ok := result.(bool)
	return ok && matched
}

// String returns the original expression.
func (f *ItemFilter) String() string {
	return f.expr
}

// Apply returns the documents matching the filter, preserving input order.
func (f *ItemFilter) Apply(docs []paia.ItemDocument) []paia.ItemDocument {
	out := make([]paia.ItemDocument, 0, len(docs))
	for _, doc := range docs {
		if f.Evaluate(doc) {
			out = append(out, doc)
		}
	}
	return out
}

// buildEnv creates the expression environment for one document.
func buildEnv(doc paia.ItemDocument) map[string]interface{} {
	return map[string]interface{}{
		"Item": doc,

		// Status helpers
		"statusIs": func(code int) bool {
			return int(doc.Status) == code
		},
		"statusLabel": func() string {
			return doc.Status.Label()
		},

		// String helpers
		"contains": func(str, substr string) bool {
			return strings.Contains(strings.ToLower(str), strings.ToLower(substr))
		},
		"startsWith": func(str, prefix string) bool {
			return strings.HasPrefix(strings.ToLower(str), strings.ToLower(prefix))
		},
		"lower": strings.ToLower,
		"upper": strings.ToUpper,

		// Date helpers; PAIA timestamps are RFC 3339, some servers send
		// bare dates.
		"parseDate": parseDate,
		"daysUntil": func(dateStr string) int {
			t := parseDate(dateStr)
			if t.IsZero() {
				return 0
			}
			return int(time.Until(t).Hours() / 24)
		},
		"now": time.Now,
	}
}

func parseDate(dateStr string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, dateStr); err == nil {
			return t
		}
	}
	return time.Time{}
}
