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
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/careforge/datakit/query"
	"github.com/careforge/datakit/types"
)

type testItem struct {
	bun.BaseModel `bun:"table:test_items,alias:ti"`
	types.Entity

	Name  string `bun:"name,notnull"`
	Views int    `bun:"views"`
}

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"))
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)
	sqldb.SetMaxIdleConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	_, err = db.NewCreateTable().Model((*testItem)(nil)).Exec(context.Background())
	require.NoError(t, err)

	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newTestRepo(t *testing.T) Repository[testItem] {
	return NewRepository[testItem](newTestDB(t))
}

func seedItems(t *testing.T, repo Repository[testItem], n int) []*testItem {
	t.Helper()
	ctx := context.Background()
	items := make([]*testItem, 0, n)
	for i := 0; i < n; i++ {
		item := &testItem{
			Name:  fmt.Sprintf("item-%02d", i),
			Views: i,
		}
		created, err := repo.Create(ctx, item, nil)
		require.NoError(t, err)
		items = append(items, created)
	}
	return items
}

func TestNewRepositoryRequiresEntity(t *testing.T) {
	type plain struct {
		bun.BaseModel `bun:"table:plain"`
		ID            int `bun:"id,pk"`
	}
	assert.Panics(t, func() {
		NewRepository[plain](newTestDB(t))
	})
}

func TestCreateAndFindByID(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	rctx := &types.RequestContext{
		User:     &types.Principal{ID: "u-1", Name: "Dr. Chen"},
		TenantID: "clinic-1",
	}

	created, err := repo.Create(ctx, &testItem{Name: "aspirin", Views: 3}, rctx)
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.True(t, created.Active)
	assert.Equal(t, "u-1", created.CreatedBy)
	assert.Equal(t, "Dr. Chen", created.CreatedByName)
	assert.Equal(t, "clinic-1", created.TenantID)

	found, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, "aspirin", found.Name)
	assert.Equal(t, 3, found.Views)
}

func TestCreateNilEntity(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.Create(context.Background(), nil, nil)
	assert.Error(t, err)
}

func TestFindByIDAbsent(t *testing.T) {
	repo := newTestRepo(t)
	found, err := repo.FindByID(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestGetByIDAbsent(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.GetByID(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFindAllPaginationMath(t *testing.T) {
	repo := newTestRepo(t)
	seedItems(t, repo, 25)

	resp, err := repo.FindAll(context.Background(),
		&types.PageRequest{Page: 3, PageSize: 10}, nil)
	require.NoError(t, err)

	assert.Len(t, resp.Data, 5)
	assert.Equal(t, 25, resp.Pagination.Total)
	assert.Equal(t, 3, resp.Pagination.TotalPages)
	assert.False(t, resp.Pagination.HasNext)
	assert.True(t, resp.Pagination.HasPrev)
}

func TestFindAllDefaultsOnNilRequest(t *testing.T) {
	repo := newTestRepo(t)
	seedItems(t, repo, 15)

	resp, err := repo.FindAll(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Len(t, resp.Data, 10)
	assert.Equal(t, 1, resp.Pagination.Page)
	assert.True(t, resp.Pagination.HasNext)
}

func TestFindAllExcludesInactive(t *testing.T) {
	repo := newTestRepo(t)
	items := seedItems(t, repo, 3)
	ctx := context.Background()

	ok, err := repo.Delete(ctx, items[0].ID, nil)
	require.NoError(t, err)
	assert.True(t, ok)

	resp, err := repo.FindAll(ctx, nil, nil)
	require.NoError(t, err)
	assert.Len(t, resp.Data, 2)
	assert.Equal(t, 2, resp.Pagination.Total)

	resp, err = repo.FindAll(ctx, nil, &query.Options{IncludeInactive: true})
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Pagination.Total)
}

func TestFindAllMalformedFilterEqualsAbsent(t *testing.T) {
	repo := newTestRepo(t)
	seedItems(t, repo, 4)
	ctx := context.Background()

	clean, err := repo.FindAll(ctx, &types.PageRequest{}, nil)
	require.NoError(t, err)

	broken, err := repo.FindAll(ctx, &types.PageRequest{Filter: "{oops"}, nil)
	require.NoError(t, err)

	assert.Equal(t, clean.Pagination.Total, broken.Pagination.Total)
	assert.Equal(t, len(clean.Data), len(broken.Data))
}

func TestFindAllCallerFilterNarrows(t *testing.T) {
	repo := newTestRepo(t)
	seedItems(t, repo, 5)

	resp, err := repo.FindAll(context.Background(),
		&types.PageRequest{Filter: `{"views":2}`}, nil)
	require.NoError(t, err)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, 2, resp.Data[0].Views)
}

func TestFindAllSearch(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	for _, name := range []string{"Aspirin 100mg", "Ibuprofen", "aspirin forte"} {
		_, err := repo.Create(ctx, &testItem{Name: name}, nil)
		require.NoError(t, err)
	}

	resp, err := repo.FindAll(ctx,
		&types.PageRequest{Search: "ASPIRIN"},
		&query.Options{SearchFields: []string{"name"}})
	require.NoError(t, err)
	assert.Len(t, resp.Data, 2)
}

func TestFindAllSortOrdering(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	for _, name := range []string{"bravo", "alpha", "charlie"} {
		_, err := repo.Create(ctx, &testItem{Name: name}, nil)
		require.NoError(t, err)
	}

	resp, err := repo.FindAll(ctx,
		&types.PageRequest{Sort: "name:desc,createdAt:asc"}, nil)
	require.NoError(t, err)
	require.Len(t, resp.Data, 3)
	assert.Equal(t, "charlie", resp.Data[0].Name)
	assert.Equal(t, "bravo", resp.Data[1].Name)
	assert.Equal(t, "alpha", resp.Data[2].Name)
}

func TestFindAllCancelledContext(t *testing.T) {
	repo := newTestRepo(t)
	seedItems(t, repo, 3)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	resp, err := repo.FindAll(ctx, &types.PageRequest{}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, resp)
}

func TestFindOneIgnoresActiveFlag(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	items := seedItems(t, repo, 1)

	_, err := repo.Delete(ctx, items[0].ID, nil)
	require.NoError(t, err)

	found, err := repo.FindOne(ctx, map[string]any{"name": items[0].Name})
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.False(t, found.Active)

	found, err = repo.FindOne(ctx, map[string]any{
		"name":   items[0].Name,
		"active": true,
	})
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestUpdateLenientAndStrict(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	updated, err := repo.Update(ctx, "missing", map[string]any{"views": 1}, nil)
	require.NoError(t, err)
	assert.Nil(t, updated)

	_, err = repo.UpdateStrict(ctx, "missing", map[string]any{"views": 1}, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateAppliesPatchAndStamps(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	items := seedItems(t, repo, 1)

	rctx := &types.RequestContext{User: &types.Principal{ID: "u-2", Name: "Nurse Kim"}}
	updated, err := repo.Update(ctx, items[0].ID, map[string]any{
		"views":   42,
		"unknown": "ignored",
		"id":      "reassign-attempt",
	}, rctx)
	require.NoError(t, err)
	require.NotNil(t, updated)

	assert.Equal(t, items[0].ID, updated.ID)
	assert.Equal(t, 42, updated.Views)
	assert.Equal(t, "u-2", updated.UpdatedBy)
	assert.Equal(t, "Nurse Kim", updated.UpdatedByName)
	assert.Equal(t, items[0].CreatedBy, updated.CreatedBy)
}

func TestUpdateEmptyPatchStillStamps(t *testing.T) {
	before := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	after := before.Add(time.Hour)
	current := before
	repo := NewRepository[testItem](newTestDB(t), WithClock(func() time.Time { return current }))
	ctx := context.Background()

	created, err := repo.Create(ctx, &testItem{Name: "x"}, nil)
	require.NoError(t, err)

	current = after
	updated, err := repo.Update(ctx, created.ID, map[string]any{}, nil)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.True(t, updated.UpdatedAt.After(created.CreatedAt))
}

func TestDeleteSoftDeleteSemantics(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	items := seedItems(t, repo, 1)
	id := items[0].ID

	ok, err := repo.Delete(ctx, id, nil)
	require.NoError(t, err)
	assert.True(t, ok)

	// The record still exists, so a repeat delete reports true.
	ok, err = repo.Delete(ctx, id, nil)
	require.NoError(t, err)
	assert.True(t, ok)

	found, err := repo.FindByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.False(t, found.Active)
	assert.Equal(t, types.SystemUser, found.UpdatedBy)
	assert.Equal(t, types.UnknownUserName, found.UpdatedByName)

	ok, err = repo.Delete(ctx, "missing", nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHardDelete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	items := seedItems(t, repo, 1)
	id := items[0].ID

	ok, err := repo.HardDelete(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)

	found, err := repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, found)

	ok, err = repo.HardDelete(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCountAndExists(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	seedItems(t, repo, 5)

	count, err := repo.Count(ctx, map[string]any{"active": true})
	require.NoError(t, err)
	assert.Equal(t, 5, count)

	exists, err := repo.Exists(ctx, map[string]any{"views": 4})
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.Exists(ctx, map[string]any{"views": 99})
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCreateRoundTripAppearsInFindAll(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, &testItem{Name: "fresh"}, nil)
	require.NoError(t, err)

	resp, err := repo.FindAll(ctx, nil, nil)
	require.NoError(t, err)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, created.ID, resp.Data[0].ID)
}
