/*
 * Copyright 2025 careforge.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package query

import (
	"encoding/json"
	"reflect"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/uptrace/bun"

	"github.com/careforge/datakit/types"
)

// Op is a predicate operator.
type Op int

const (
	OpEq Op = iota
	OpIn
	OpGte
	OpLte
	OpContains
)

// Predicate is one AND-composed condition on a resolved column. Values are
// always bound as placeholders; the column passed through FieldSet.
type Predicate struct {
	Column string
	Op     Op
	Value  any
}

// Filter is the store-filter expression: a conjunction of predicates plus an
// optional OR-group of search predicates. Predicates only ever narrow the
// result set.
type Filter struct {
	preds  []Predicate
	search []Predicate
}

// And appends a predicate.
func (f *Filter) And(column string, op Op, value any) *Filter {
	f.preds = append(f.preds, Predicate{Column: column, Op: op, Value: value})
	return f
}

// Predicates exposes the AND-composed predicates, mainly for tests.
func (f *Filter) Predicates() []Predicate { return f.preds }

// SearchPredicates exposes the OR-group, mainly for tests.
func (f *Filter) SearchPredicates() []Predicate { return f.search }

// Apply renders the filter onto a select query. Columns go through
// bun.Ident, values through placeholders.
func (f *Filter) Apply(q *bun.SelectQuery) *bun.SelectQuery {
	for _, p := range f.preds {
		q = applyPredicate(q, p)
	}
	if len(f.search) > 0 {
		group := f.search
		q = q.WhereGroup(" AND ", func(sub *bun.SelectQuery) *bun.SelectQuery {
			for _, p := range group {
				sub = sub.WhereOr("LOWER(?) LIKE ?", bun.Ident(p.Column), containsPattern(p.Value))
			}
			return sub
		})
	}
	return q
}

func applyPredicate(q *bun.SelectQuery, p Predicate) *bun.SelectQuery {
	switch p.Op {
	case OpIn:
		return q.Where("? IN (?)", bun.Ident(p.Column), bun.In(p.Value))
	case OpGte:
		return q.Where("? >= ?", bun.Ident(p.Column), p.Value)
	case OpLte:
		return q.Where("? <= ?", bun.Ident(p.Column), p.Value)
	case OpContains:
		return q.Where("LOWER(?) LIKE ?", bun.Ident(p.Column), containsPattern(p.Value))
	default:
		if p.Value == nil {
			return q.Where("? IS NULL", bun.Ident(p.Column))
		}
		return q.Where("? = ?", bun.Ident(p.Column), p.Value)
	}
}

func containsPattern(v any) string {
	s, _ := v.(string)
	return "%" + strings.ToLower(s) + "%"
}

// FromMap builds a filter from a trusted, code-defined map only, with no
// implicit predicates. FindOne, Count, and Exists use it.
func FromMap(m map[string]any, fields FieldSet, log logrus.FieldLogger) *Filter {
	f := &Filter{}
	mergeTrusted(f, m, fields, log)
	return f
}

// BuildFilter turns a page request plus trusted options into the filter
// expression. The base predicate scopes to active records unless the options
// include inactive ones; the trusted options filter and the caller's JSON
// filter are merged afterwards, each predicate narrowing the set further.
// Malformed caller input is logged and skipped, never fatal.
func BuildFilter(req *types.PageRequest, opts *Options, fields FieldSet, log logrus.FieldLogger) *Filter {
	f := &Filter{}

	if opts == nil || !opts.IncludeInactive {
		if col, ok := fields.Resolve("active"); ok {
			f.And(col, OpEq, true)
		}
	}

	if opts != nil && len(opts.Filter) > 0 {
		mergeTrusted(f, opts.Filter, fields, log)
	}

	if req != nil && req.Search != "" && opts != nil && len(opts.SearchFields) > 0 {
		for _, name := range opts.SearchFields {
			col, ok := fields.Resolve(name)
			if !ok {
				warnf(log, "search field %q is not a known column, skipping", name)
				continue
			}
			f.search = append(f.search, Predicate{Column: col, Op: OpContains, Value: req.Search})
		}
	}

	if req != nil && req.Filter != "" {
		mergeCallerFilter(f, req.Filter, opts, fields, log)
	}

	return f
}

// mergeTrusted merges the code-defined filter map. Keys iterate in sorted
// order so the rendered SQL is deterministic.
func mergeTrusted(f *Filter, m map[string]any, fields FieldSet, log logrus.FieldLogger) {
	for _, key := range SortedKeys(m) {
		col, ok := fields.Resolve(key)
		if !ok {
			warnf(log, "filter field %q is not a known column, skipping", key)
			continue
		}
		switch v := m[key].(type) {
		case Range:
			if v.From != nil {
				f.And(col, OpGte, v.From)
			}
			if v.To != nil {
				f.And(col, OpLte, v.To)
			}
		case Match:
			f.And(col, OpContains, v.Substring)
		default:
			if isSlice(v) {
				f.And(col, OpIn, v)
			} else {
				f.And(col, OpEq, v)
			}
		}
	}
}

// mergeCallerFilter parses the untrusted JSON filter string. Unparsable
// input degrades to a warning; keys must resolve to known columns and pass
// the per-call whitelist; operator-style keys and nested objects are
// dropped. Only equality and IN predicates can originate here.
func mergeCallerFilter(f *Filter, raw string, opts *Options, fields FieldSet, log logrus.FieldLogger) {
	var m map[string]any
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		warnf(log, "invalid filter JSON %q: %v", raw, err)
		return
	}
	for _, key := range SortedKeys(m) {
		if strings.HasPrefix(key, "$") {
			warnf(log, "rejecting operator-style filter key %q", key)
			continue
		}
		col, ok := fields.Resolve(key)
		if !ok || !opts.allowsFilterField(key) && !opts.allowsFilterField(col) {
			warnf(log, "filter key %q is not filterable, skipping", key)
			continue
		}
		switch v := m[key].(type) {
		case map[string]any:
			warnf(log, "rejecting nested filter value for key %q", key)
		case []any:
			f.And(col, OpIn, v)
		default:
			f.And(col, OpEq, v)
		}
	}
}

// SortedKeys returns the map keys in sorted order; builders iterate with it
// so rendered SQL is deterministic.
func SortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func isSlice(v any) bool {
	if v == nil {
		return false
	}
	k := reflect.TypeOf(v).Kind()
	return k == reflect.Slice || k == reflect.Array
}

func warnf(log logrus.FieldLogger, format string, args ...any) {
	if log != nil {
		log.Warnf(format, args...)
	}
}
