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

package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
)

func TestClassifyMySQLNumbers(t *testing.T) {
	cases := []struct {
		number uint16
		want   SQLError
	}{
		{1062, DuplicateKeyErr},
		{1048, NotNullViolationErr},
		{1452, ForeignKeyViolationErr},
		{1146, NoTableErr},
		{1054, NoColumnErr},
		{1265, DataTruncatedErr},
		{9999, UnknownErr},
	}
	for _, tc := range cases {
		err := &mysql.MySQLError{Number: tc.number, Message: "x"}
		assert.Equal(t, tc.want, Classify(err), "number %d", tc.number)
	}
}

func TestClassifyWrappedMySQLError(t *testing.T) {
	inner := &mysql.MySQLError{Number: 1062, Message: "dup"}
	err := fmt.Errorf("insert failed: %w", inner)
	assert.Equal(t, DuplicateKeyErr, Classify(err))
}

func TestClassifyTextMatching(t *testing.T) {
	cases := []struct {
		msg  string
		want SQLError
	}{
		{"UNIQUE constraint failed: patients.identifier", DuplicateKeyErr},
		{"ERROR: duplicate key value violates unique constraint (SQLSTATE 23505)", DuplicateKeyErr},
		{"NOT NULL constraint failed: patients.full_name", NotNullViolationErr},
		{"ERROR: null value violates not-null constraint (SQLSTATE 23502)", NotNullViolationErr},
		{"FOREIGN KEY constraint failed", ForeignKeyViolationErr},
		{"no such table: encounters", NoTableErr},
		{"ERROR: relation does not exist, undefined table (SQLSTATE 42P01)", NoTableErr},
		{"no such column: bogus", NoColumnErr},
		{"CHECK constraint failed: status", CheckConstraintViolationErr},
		{"Data truncated for column 'status'", DataTruncatedErr},
		{"something else entirely", UnknownErr},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Classify(errors.New(tc.msg)), tc.msg)
	}
}

func TestClassifyNil(t *testing.T) {
	assert.Equal(t, UnknownErr, Classify(nil))
}

func TestIsDuplicateKey(t *testing.T) {
	assert.True(t, IsDuplicateKey(errors.New("UNIQUE constraint failed: p.identifier")))
	assert.False(t, IsDuplicateKey(errors.New("no such table: p")))
	assert.False(t, IsDuplicateKey(nil))
}
