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
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/uptrace/bun"

	"github.com/careforge/datakit/types"
)

// SortKey is one ordering term on a resolved column.
type SortKey struct {
	Column string
	Desc   bool
}

// Sort is the ordered list of sort terms applied to a query.
type Sort struct {
	keys []SortKey
}

// Keys exposes the terms in application order, mainly for tests.
func (s *Sort) Keys() []SortKey { return s.keys }

// Apply renders the ordering onto a select query.
func (s *Sort) Apply(q *bun.SelectQuery) *bun.SelectQuery {
	for _, k := range s.keys {
		if k.Desc {
			q = q.OrderExpr("? DESC", bun.Ident(k.Column))
		} else {
			q = q.OrderExpr("? ASC", bun.Ident(k.Column))
		}
	}
	return q
}

// upsert updates the direction of an existing term or appends a new one,
// keeping first-seen position.
func (s *Sort) upsert(key SortKey) {
	for i := range s.keys {
		if s.keys[i].Column == key.Column {
			s.keys[i].Desc = key.Desc
			return
		}
	}
	s.keys = append(s.keys, key)
}

func (s *Sort) hasColumn(col string) bool {
	for _, k := range s.keys {
		if k.Column == col {
			return true
		}
	}
	return false
}

// BuildSort derives the ordering for a page request. Precedence: valid
// caller-supplied tokens win; otherwise the code-defined options sort;
// otherwise createdAt descending. A final id ascending term is appended when
// absent so page ordering is total. Unknown or malformed caller tokens are
// skipped with a warning, never fatal.
func BuildSort(req *types.PageRequest, opts *Options, fields FieldSet, log logrus.FieldLogger) *Sort {
	s := &Sort{}

	if req != nil && req.Sort != "" {
		parseSortTokens(s, req.Sort, fields, log)
	}
	if len(s.keys) == 0 && opts != nil {
		for _, key := range opts.Sort {
			if col, ok := fields.Resolve(key.Column); ok {
				s.upsert(SortKey{Column: col, Desc: key.Desc})
			} else {
				warnf(log, "sort field %q is not a known column, skipping", key.Column)
			}
		}
	}
	if len(s.keys) == 0 {
		if col, ok := fields.Resolve("createdAt"); ok {
			s.upsert(SortKey{Column: col, Desc: true})
		}
	}

	if col, ok := fields.Resolve("id"); ok && !s.hasColumn(col) {
		s.upsert(SortKey{Column: col})
	}
	return s
}

// parseSortTokens walks a "field:asc|desc,field2:desc" string token by
// token. A bare field name sorts ascending.
func parseSortTokens(s *Sort, raw string, fields FieldSet, log logrus.FieldLogger) {
	for _, token := range strings.Split(raw, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		name, dir := token, "asc"
		if idx := strings.IndexByte(token, ':'); idx >= 0 {
			name = strings.TrimSpace(token[:idx])
			dir = strings.ToLower(strings.TrimSpace(token[idx+1:]))
		}
		col, ok := fields.Resolve(name)
		if !ok {
			warnf(log, "sort token %q does not name a known column, skipping", token)
			continue
		}
		switch dir {
		case "asc", "":
			s.upsert(SortKey{Column: col})
		case "desc":
			s.upsert(SortKey{Column: col, Desc: true})
		default:
			warnf(log, "sort token %q has an invalid direction, skipping", token)
		}
	}
}
