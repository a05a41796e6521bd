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

// Options are the trusted, code-defined knobs a domain repository supplies
// per call. Everything here comes from code, never from the wire; the
// untrusted counterpart lives in types.PageRequest.
type Options struct {
	// Filter is merged into the predicate set as-is (AND-composed).
	// Values may be scalars (equality), slices (IN), Range, or Match.
	Filter map[string]any

	// SearchFields designates the columns a PageRequest.Search token is
	// matched against (case-insensitive substring, OR across fields).
	// An empty list disables search.
	SearchFields []string

	// Sort is the code-defined ordering; it replaces the createdAt-descending
	// default. Caller-supplied sort tokens still take precedence.
	Sort []SortKey

	// IncludeInactive lifts the active-records-only default. Reserved for
	// administrative and restore paths.
	IncludeInactive bool

	// FilterAllow whitelists the fields a caller-supplied JSON filter may
	// touch. When empty, any field of the model resolves.
	FilterAllow []string
}

func (o *Options) allowsFilterField(name string) bool {
	if o == nil || len(o.FilterAllow) == 0 {
		return true
	}
	for _, f := range o.FilterAllow {
		if f == name {
			return true
		}
	}
	return false
}

// Range expresses an inclusive bound pair for a trusted filter value; a nil
// side leaves that bound open.
type Range struct {
	From any
	To   any
}

// Match expresses a case-insensitive substring predicate for a trusted
// filter value.
type Match struct {
	Substring string
}
