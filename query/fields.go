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
	"reflect"
	"strings"
)

// FieldSet maps the names a caller may use (Go field name, lowerCamel wire
// name, or column name) to the safe column identifier. It is built once per
// model by reflecting over the bun struct tags, embedded structs included,
// and is the only gate through which caller-supplied field names reach SQL.
type FieldSet struct {
	columns map[string]string
}

// FieldsOf builds the field set for model type T.
func FieldsOf[T any]() FieldSet {
	fs := FieldSet{columns: make(map[string]string)}
	var zero T
	fs.collect(reflect.TypeOf(zero))
	return fs
}

func (fs FieldSet) collect(t reflect.Type) {
	if t == nil {
		return
	}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous {
			// bun.BaseModel and embedded bases contribute no column of
			// their own; their fields are flattened.
			if f.Type.Kind() == reflect.Struct && f.Type.String() != "bun.BaseModel" {
				fs.collect(f.Type)
			}
			continue
		}
		if !f.IsExported() {
			continue
		}
		column := columnFromTag(f)
		if column == "" || !isSafeFieldName(column) {
			continue
		}
		fs.columns[strings.ToLower(f.Name)] = column
		fs.columns[strings.ToLower(column)] = column
		if wire := jsonName(f); wire != "" && isSafeFieldName(wire) {
			fs.columns[strings.ToLower(wire)] = column
		}
	}
}

// jsonName returns the wire name from the json tag, which may differ from
// the Go field name (Class -> encounterClass).
func jsonName(f reflect.StructField) string {
	tag := f.Tag.Get("json")
	if tag == "" || tag == "-" {
		return ""
	}
	if idx := strings.IndexByte(tag, ','); idx >= 0 {
		tag = tag[:idx]
	}
	return tag
}

func columnFromTag(f reflect.StructField) string {
	tag := f.Tag.Get("bun")
	if tag == "-" {
		return ""
	}
	name := tag
	if idx := strings.IndexByte(tag, ','); idx >= 0 {
		name = tag[:idx]
	}
	if name == "" {
		name = underscore(f.Name)
	}
	return name
}

// Resolve returns the column for a caller-supplied field name, accepting the
// Go field name ("CreatedAt"), the wire name ("createdAt"), or the column
// itself ("created_at"). Unknown or unsafe names resolve to false.
func (fs FieldSet) Resolve(name string) (string, bool) {
	name = strings.TrimSpace(name)
	if name == "" || !isSafeFieldName(name) {
		return "", false
	}
	col, ok := fs.columns[strings.ToLower(name)]
	return col, ok
}

// Contains reports whether the name resolves to a known column.
func (fs FieldSet) Contains(name string) bool {
	_, ok := fs.Resolve(name)
	return ok
}

// Len returns the number of distinct lookup keys.
func (fs FieldSet) Len() int { return len(fs.columns) }

// isSafeFieldName accepts single identifiers (foo, bar_1) and dot-qualified
// names (table.column). Each segment must start with a letter or underscore
// and continue with letters, digits, or underscores.
func isSafeFieldName(name string) bool {
	if name == "" {
		return false
	}
	for _, part := range strings.Split(name, ".") {
		if part == "" {
			return false
		}
		for i := 0; i < len(part); i++ {
			ch := part[i]
			switch {
			case ch >= 'a' && ch <= 'z':
			case ch >= 'A' && ch <= 'Z':
			case ch == '_':
			case ch >= '0' && ch <= '9':
				if i == 0 {
					return false
				}
			default:
				return false
			}
		}
	}
	return true
}

// underscore converts a Go field name to its default snake_case column,
// keeping runs of capitals together (TenantID -> tenant_id).
func underscore(name string) string {
	isUpper := func(c byte) bool { return c >= 'A' && c <= 'Z' }
	lower := func(c byte) byte {
		if isUpper(c) {
			return c - 'A' + 'a'
		}
		return c
	}
	var b strings.Builder
	for i := 0; i < len(name); i++ {
		c := name[i]
		if isUpper(c) && i > 0 {
			prev := name[i-1]
			nextLower := i+1 < len(name) && !isUpper(name[i+1])
			if !isUpper(prev) || nextLower {
				b.WriteByte('_')
			}
		}
		b.WriteByte(lower(c))
	}
	return b.String()
}
