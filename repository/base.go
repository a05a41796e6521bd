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
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/uptrace/bun"
	"golang.org/x/sync/errgroup"

	"github.com/careforge/datakit/query"
	"github.com/careforge/datakit/types"
	"github.com/careforge/datakit/utils"
)

type baseRepositoryImpl[T any] struct {
	db     bun.IDB
	fields query.FieldSet
	log    logrus.FieldLogger
	now    func() time.Time
}

// Option configures a repository instance.
type Option func(*config)

type config struct {
	log logrus.FieldLogger
	now func() time.Time
}

// WithLogger overrides the repository logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *config) { c.log = log }
}

// WithClock overrides the timestamp source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *config) { c.now = now }
}

// NewRepository returns a generic repository bound to one model over the
// provided handle. *T must embed types.Entity; a model without the base
// record cannot honor the audit and soft-delete contracts, so this panics
// at construction rather than failing on first use.
func NewRepository[T any](db bun.IDB, opts ...Option) Repository[T] {
	var zero T
	if _, ok := any(&zero).(types.Auditable); !ok {
		panic(fmt.Sprintf("repository: model %T must embed types.Entity", zero))
	}

	cfg := &config{
		log: utils.NewLogger("REPOSITORY"),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return &baseRepositoryImpl[T]{
		db:     db,
		fields: query.FieldsOf[T](),
		log:    cfg.log,
		now:    cfg.now,
	}
}

func (r *baseRepositoryImpl[T]) Fields() query.FieldSet { return r.fields }

func (r *baseRepositoryImpl[T]) DB() bun.IDB { return r.db }

func (r *baseRepositoryImpl[T]) FindByID(ctx context.Context, id string) (*T, error) {
	entity := new(T)
	err := r.db.NewSelect().Model(entity).Where("id = ?", id).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return entity, nil
}

func (r *baseRepositoryImpl[T]) GetByID(ctx context.Context, id string) (*T, error) {
	entity, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, fmt.Errorf("id %q: %w", id, ErrNotFound)
	}
	return entity, nil
}

func (r *baseRepositoryImpl[T]) FindOne(ctx context.Context, filter map[string]any) (*T, error) {
	entity := new(T)
	q := r.db.NewSelect().Model(entity)
	q = r.trustedFilter(filter).Apply(q)
	err := q.Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return entity, nil
}

// FindAll issues the bounded find and the count concurrently against the
// same filter. Either error, including context cancellation propagated into
// both calls, fails the whole operation. The two snapshots may diverge
// under concurrent writes; that skew is accepted.
func (r *baseRepositoryImpl[T]) FindAll(ctx context.Context, req *types.PageRequest, opts *query.Options) (*types.PageResponse[T], error) {
	var rq types.PageRequest
	if req != nil {
		rq = *req
	}
	rq.Normalize()

	filter := query.BuildFilter(&rq, opts, r.fields, r.log)
	order := query.BuildSort(&rq, opts, r.fields, r.log)

	var (
		entities []*T
		total    int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		q := filter.Apply(r.db.NewSelect().Model(&entities))
		q = order.Apply(q)
		return q.Offset(rq.Offset()).Limit(rq.PageSize).Scan(gctx)
	})
	g.Go(func() error {
		var err error
		total, err = filter.Apply(r.db.NewSelect().Model((*T)(nil))).Count(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return types.NewPageResponse(entities, rq.Page, rq.PageSize, total), nil
}

func (r *baseRepositoryImpl[T]) Count(ctx context.Context, filter map[string]any) (int, error) {
	q := r.db.NewSelect().Model((*T)(nil))
	return r.trustedFilter(filter).Apply(q).Count(ctx)
}

func (r *baseRepositoryImpl[T]) Exists(ctx context.Context, filter map[string]any) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *baseRepositoryImpl[T]) Create(ctx context.Context, entity *T, rctx *types.RequestContext) (*T, error) {
	if entity == nil {
		return nil, errors.New("entity cannot be nil")
	}
	aud := any(entity).(types.Auditable)
	aud.StampCreate(r.now(), rctx)

	if _, err := r.db.NewInsert().Model(entity).Exec(ctx); err != nil {
		return nil, err
	}
	return entity, nil
}

// Update applies the patch as a single server-side UPDATE; the post-update
// record comes from a follow-up read so the statement stays portable across
// the supported dialects.
func (r *baseRepositoryImpl[T]) Update(ctx context.Context, id string, patch map[string]any, rctx *types.RequestContext) (*T, error) {
	q := r.db.NewUpdate().Model((*T)(nil)).Where("id = ?", id)

	for _, key := range query.SortedKeys(patch) {
		col, ok := r.fields.Resolve(key)
		if !ok {
			r.log.Warnf("patch field %q is not a known column, skipping", key)
			continue
		}
		if col == "id" {
			r.log.Warnf("patch may not reassign the identifier, skipping")
			continue
		}
		q = q.Set("? = ?", bun.Ident(col), patch[key])
	}

	by, name := rctx.Identity(types.SystemUserName)
	q = q.Set("? = ?", bun.Ident("updated_at"), r.now()).
		Set("? = ?", bun.Ident("updated_by"), by).
		Set("? = ?", bun.Ident("updated_by_name"), name)

	res, err := q.Exec(ctx)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, nil
	}
	return r.FindByID(ctx, id)
}

func (r *baseRepositoryImpl[T]) UpdateStrict(ctx context.Context, id string, patch map[string]any, rctx *types.RequestContext) (*T, error) {
	entity, err := r.Update(ctx, id, patch, rctx)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, fmt.Errorf("id %q: %w", id, ErrNotFound)
	}
	return entity, nil
}

func (r *baseRepositoryImpl[T]) Delete(ctx context.Context, id string, rctx *types.RequestContext) (bool, error) {
	by, name := rctx.Identity(types.UnknownUserName)
	res, err := r.db.NewUpdate().Model((*T)(nil)).
		Set("? = ?", bun.Ident("active"), false).
		Set("? = ?", bun.Ident("updated_at"), r.now()).
		Set("? = ?", bun.Ident("updated_by"), by).
		Set("? = ?", bun.Ident("updated_by_name"), name).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		r.log.Warnf("no record to soft-delete for id %q", id)
	}
	return n > 0, nil
}

func (r *baseRepositoryImpl[T]) HardDelete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.NewDelete().Model((*T)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// trustedFilter builds a filter from a code-defined map with no implicit
// predicates.
func (r *baseRepositoryImpl[T]) trustedFilter(filter map[string]any) *query.Filter {
	return query.FromMap(filter, r.fields, r.log)
}
