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

package datakit

import (
	"context"
	"sync"

	"github.com/uptrace/bun"

	"github.com/careforge/datakit/database"
	"github.com/careforge/datakit/query"
	"github.com/careforge/datakit/repository"
	"github.com/careforge/datakit/types"
)

type Service[T any] interface {
	// Get returns the entity or ErrNotFound.
	Get(ctx context.Context, id string) (*T, error)

	// Find returns the entity or (nil, nil) when absent.
	Find(ctx context.Context, id string) (*T, error)

	// FindOne returns the first entity matching a code-defined filter.
	FindOne(ctx context.Context, filter map[string]any) (*T, error)

	// Page returns one page of entities with pagination metadata.
	Page(ctx context.Context, req *types.PageRequest, opts *query.Options) (*types.PageResponse[T], error)

	// Count returns the number of entities matching a code-defined filter.
	Count(ctx context.Context, filter map[string]any) (int, error)

	// Exists reports whether any entity matches a code-defined filter.
	Exists(ctx context.Context, filter map[string]any) (bool, error)

	// Create inserts a new entity with identity and audit stamping.
	Create(ctx context.Context, model *T, rctx *types.RequestContext) (*T, error)

	// Update patches an entity; (nil, nil) when the id is absent.
	Update(ctx context.Context, id string, patch map[string]any, rctx *types.RequestContext) (*T, error)

	// UpdateStrict patches an entity; ErrNotFound when the id is absent.
	UpdateStrict(ctx context.Context, id string, patch map[string]any, rctx *types.RequestContext) (*T, error)

	// Delete soft-deletes an entity, reporting whether the record existed.
	Delete(ctx context.Context, id string, rctx *types.RequestContext) (bool, error)

	// HardDelete physically removes an entity.
	HardDelete(ctx context.Context, id string) (bool, error)

	// Repo exposes the underlying repository for specialized queries.
	Repo() repository.Repository[T]
}

type baseServiceImpl[T any] struct {
	db   bun.IDB
	repo repository.Repository[T]
	once sync.Once
}

// NewService returns a Service backed by the global database connection. The
// repository binds lazily, so the service may be constructed before InitDB.
func NewService[T any]() Service[T] {
	return &baseServiceImpl[T]{}
}

// NewServiceWithDB returns a Service bound to an explicit handle, which may
// be a *bun.DB or an open transaction.
func NewServiceWithDB[T any](db bun.IDB) Service[T] {
	return &baseServiceImpl[T]{db: db}
}

func (s *baseServiceImpl[T]) baseRepo() repository.Repository[T] {
	s.once.Do(func() {
		if s.db == nil {
			s.db = database.GetDB()
		}
		s.repo = repository.NewRepository[T](s.db)
	})
	return s.repo
}

func (s *baseServiceImpl[T]) Get(ctx context.Context, id string) (*T, error) {
	return s.baseRepo().GetByID(ctx, id)
}

func (s *baseServiceImpl[T]) Find(ctx context.Context, id string) (*T, error) {
	return s.baseRepo().FindByID(ctx, id)
}

func (s *baseServiceImpl[T]) FindOne(ctx context.Context, filter map[string]any) (*T, error) {
	return s.baseRepo().FindOne(ctx, filter)
}

func (s *baseServiceImpl[T]) Page(ctx context.Context, req *types.PageRequest, opts *query.Options) (*types.PageResponse[T], error) {
	return s.baseRepo().FindAll(ctx, req, opts)
}

func (s *baseServiceImpl[T]) Count(ctx context.Context, filter map[string]any) (int, error) {
	return s.baseRepo().Count(ctx, filter)
}

func (s *baseServiceImpl[T]) Exists(ctx context.Context, filter map[string]any) (bool, error) {
	return s.baseRepo().Exists(ctx, filter)
}

func (s *baseServiceImpl[T]) Create(ctx context.Context, model *T, rctx *types.RequestContext) (*T, error) {
	return s.baseRepo().Create(ctx, model, rctx)
}

func (s *baseServiceImpl[T]) Update(ctx context.Context, id string, patch map[string]any, rctx *types.RequestContext) (*T, error) {
	return s.baseRepo().Update(ctx, id, patch, rctx)
}

func (s *baseServiceImpl[T]) UpdateStrict(ctx context.Context, id string, patch map[string]any, rctx *types.RequestContext) (*T, error) {
	return s.baseRepo().UpdateStrict(ctx, id, patch, rctx)
}

func (s *baseServiceImpl[T]) Delete(ctx context.Context, id string, rctx *types.RequestContext) (bool, error) {
	return s.baseRepo().Delete(ctx, id, rctx)
}

func (s *baseServiceImpl[T]) HardDelete(ctx context.Context, id string) (bool, error) {
	return s.baseRepo().HardDelete(ctx, id)
}

func (s *baseServiceImpl[T]) Repo() repository.Repository[T] {
	return s.baseRepo()
}
