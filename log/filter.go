// SPDX-License-Identifier: MIT

package log

import (
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/pwt/go-utils/expression"
)

// FilterWriter applies expression rules to each log event before forwarding
// it to the next writer. Rules see the decoded event as the variable
// "record", so a rule like `record.level == "error"` or
// `record.component == "retry"` selects on any structured field.
//
// With the allow policy an event passes when at least one rule matches; with
// the deny policy a matching event is dropped. Rules that fail to evaluate
// (for example when a field is absent) count as not matched.
type FilterWriter struct {
	next   io.Writer
	policy string
	rules  []*expression.Expression
}

// NewFilterWriter compiles the rule sources and wraps next. Blank rules are
// skipped; a writer left with no rules forwards every event regardless of
// policy.
func NewFilterWriter(next io.Writer, policy string, rules ...string) (*FilterWriter, error) {
	if policy != PolicyAllow && policy != PolicyDeny {
		return nil, fmt.Errorf("log: invalid filter policy %q", policy)
	}
	w := &FilterWriter{next: next, policy: policy}
	for _, src := range rules {
		src = strings.TrimSpace(src)
		if src == "" {
			continue
		}
		rule, err := expression.Compile(src)
		if err != nil {
			return nil, fmt.Errorf("log: invalid filter: %w", err)
		}
		w.rules = append(w.rules, rule)
	}
	return w, nil
}

func (w *FilterWriter) Write(p []byte) (int, error) {
	if !w.pass(p) {
		return len(p), nil
	}
	return w.next.Write(p)
}

// WriteLevel preserves level information for level-aware next writers.
func (w *FilterWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if !w.pass(p) {
		return len(p), nil
	}
	if lw, ok := w.next.(zerolog.LevelWriter); ok {
		return lw.WriteLevel(level, p)
	}
	return w.next.Write(p)
}

func (w *FilterWriter) pass(p []byte) bool {
	if len(w.rules) == 0 {
		return true
	}
	matched := false
	var record map[string]any
	if err := json.Unmarshal(p, &record); err == nil {
		vars := map[string]any{"record": record}
		for _, rule := range w.rules {
			if rule.MatchDefault(vars, false) {
				matched = true
				break
			}
		}
	}
	if w.policy == PolicyDeny {
		return !matched
	}
	return matched
}
