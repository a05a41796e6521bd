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
	"database/sql"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/careforge/datakit/repository"
	"github.com/careforge/datakit/types"
)

type note struct {
	bun.BaseModel `bun:"table:notes,alias:n"`
	types.Entity

	Title string `bun:"title,notnull"`
	Body  string `bun:"body"`
}

func newServiceDB(t *testing.T) *bun.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"))
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)
	sqldb.SetMaxIdleConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	_, err = db.NewCreateTable().Model((*note)(nil)).Exec(context.Background())
	require.NoError(t, err)

	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestServiceCRUD(t *testing.T) {
	svc := NewServiceWithDB[note](newServiceDB(t))
	ctx := context.Background()
	rctx := &types.RequestContext{User: &types.Principal{ID: "u-1", Name: "Dr. Chen"}}

	created, err := svc.Create(ctx, &note{Title: "Intake", Body: "stable"}, rctx)
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Intake", got.Title)

	updated, err := svc.Update(ctx, created.ID, map[string]any{"body": "improving"}, rctx)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "improving", updated.Body)

	ok, err := svc.Delete(ctx, created.ID, rctx)
	require.NoError(t, err)
	assert.True(t, ok)

	found, err := svc.Find(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.False(t, found.Active)
}

func TestServicePage(t *testing.T) {
	svc := NewServiceWithDB[note](newServiceDB(t))
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		_, err := svc.Create(ctx, &note{Title: fmt.Sprintf("note-%02d", i)}, nil)
		require.NoError(t, err)
	}

	resp, err := svc.Page(ctx, &types.PageRequest{Page: 2, PageSize: 5}, nil)
	require.NoError(t, err)
	assert.Len(t, resp.Data, 5)
	assert.Equal(t, 12, resp.Pagination.Total)
	assert.Equal(t, 3, resp.Pagination.TotalPages)
	assert.True(t, resp.Pagination.HasNext)
	assert.True(t, resp.Pagination.HasPrev)
}

func TestServiceStrictVariants(t *testing.T) {
	svc := NewServiceWithDB[note](newServiceDB(t))
	ctx := context.Background()

	_, err := svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = svc.UpdateStrict(ctx, "missing", map[string]any{"body": "x"}, nil)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestServiceCountExists(t *testing.T) {
	svc := NewServiceWithDB[note](newServiceDB(t))
	ctx := context.Background()

	_, err := svc.Create(ctx, &note{Title: "only"}, nil)
	require.NoError(t, err)

	count, err := svc.Count(ctx, map[string]any{"active": true})
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	exists, err := svc.Exists(ctx, map[string]any{"title": "only"})
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestServiceExposesRepository(t *testing.T) {
	svc := NewServiceWithDB[note](newServiceDB(t))
	repo := svc.Repo()
	require.NotNil(t, repo)
	assert.True(t, repo.Fields().Contains("title"))
}
