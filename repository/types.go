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

package repository

import (
	"context"
	"errors"

	"github.com/uptrace/bun"

	"github.com/careforge/datakit/query"
	"github.com/careforge/datakit/types"
)

// ErrNotFound is the typed absence signal returned by the strict variants
// (GetByID, UpdateStrict). The lenient read paths report absence as a nil
// result instead.
var ErrNotFound = errors.New("entity not found")

// ReadRepository defines the query operations for a generic entity type.
type ReadRepository[T any] interface {
	// FindByID looks a record up by identifier with no active-flag
	// filtering; soft-deleted records are found too (audit views depend on
	// this). Absence is (nil, nil).
	FindByID(ctx context.Context, id string) (*T, error)

	// GetByID is FindByID returning ErrNotFound on absence.
	GetByID(ctx context.Context, id string) (*T, error)

	// FindOne returns the first record matching a fully caller-specified
	// filter. No implicit active predicate is added: callers own the
	// scoping here, unlike FindAll. Absence is (nil, nil).
	FindOne(ctx context.Context, filter map[string]any) (*T, error)

	// FindAll executes a paginated query: filter and sort derive from the
	// request and options, and the bounded find and the count run
	// concurrently against the same filter.
	FindAll(ctx context.Context, req *types.PageRequest, opts *query.Options) (*types.PageResponse[T], error)

	// Count returns the number of records matching the filter.
	Count(ctx context.Context, filter map[string]any) (int, error)

	// Exists reports whether any record matches the filter.
	Exists(ctx context.Context, filter map[string]any) (bool, error)
}

// WriteRepository defines the mutation operations. Every mutation stamps the
// audit fields from the request context; a nil context degrades to the
// system placeholders.
type WriteRepository[T any] interface {
	// Create persists a new record, assigning its identifier and create/
	// update stamps. The record is stored active.
	Create(ctx context.Context, entity *T, rctx *types.RequestContext) (*T, error)

	// Update applies a field patch to one record and returns the post-update
	// state. updatedAt is refreshed on every call regardless of the patch
	// content. Absence is (nil, nil).
	Update(ctx context.Context, id string, patch map[string]any, rctx *types.RequestContext) (*T, error)

	// UpdateStrict is Update returning ErrNotFound on absence.
	UpdateStrict(ctx context.Context, id string, patch map[string]any, rctx *types.RequestContext) (*T, error)

	// Delete soft-deletes a record (active=false plus audit stamps). It
	// returns true while the record exists, including repeat deletes of an
	// already-inactive record, and false for an unknown id.
	Delete(ctx context.Context, id string, rctx *types.RequestContext) (bool, error)

	// HardDelete physically removes a record, bypassing soft-delete
	// bookkeeping entirely. Irreversible and audit-exempt.
	HardDelete(ctx context.Context, id string) (bool, error)
}

// Repository combines the read and write contracts and exposes the field
// set and the underlying handle for domain specializations.
type Repository[T any] interface {
	ReadRepository[T]
	WriteRepository[T]

	// Fields returns the reflected column whitelist for the model.
	Fields() query.FieldSet

	// DB returns the bound handle; a bun.Tx satisfies it too.
	DB() bun.IDB
}
