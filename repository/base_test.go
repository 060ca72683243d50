/*
 * Copyright 2025 tomoncle.
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
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomoncle/repokit/types"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type Author struct {
	bun.BaseModel `bun:"table:authors,alias:au"`

	ID   int64  `bun:"id,pk,autoincrement"`
	Name string `bun:"name,notnull"`
}

type Article struct {
	bun.BaseModel `bun:"table:articles,alias:ar"`

	ID        int64     `bun:"id,pk,autoincrement"`
	Title     string    `bun:"title,notnull"`
	Body      string    `bun:"body"`
	AuthorID  int64     `bun:"author_id"`
	Author    *Author   `bun:"rel:belongs-to,join:author_id=id"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	DeletedAt time.Time `bun:"deleted_at,soft_delete,nullzero"`
}

type Tag struct {
	bun.BaseModel `bun:"table:tags,alias:t"`

	ID   int64  `bun:"id,pk,autoincrement"`
	Name string `bun:"name,notnull"`
}

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()
	sqldb, err := sql.Open(sqliteshim.ShimName, filepath.Join(t.TempDir(), "repository.db"))
	require.NoError(t, err)
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	for _, model := range []interface{}{(*Author)(nil), (*Article)(nil), (*Tag)(nil)} {
		_, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx)
		require.NoError(t, err)
	}
	return db
}

func seedArticle(t *testing.T, repo Repository[Article], authorID int64, title string) *Article {
	t.Helper()
	a, err := repo.Create(context.Background(), &Article{Title: title, Body: title + " body", AuthorID: authorID})
	require.NoError(t, err)
	return a
}

func TestCreateReturnsFreshEntity(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository[Article](db)

	a := seedArticle(t, repo, 0, "hello")
	assert.NotZero(t, a.ID)
	assert.False(t, a.CreatedAt.IsZero(), "database default should be read back")
	assert.True(t, a.DeletedAt.IsZero())
	assert.True(t, repo.SupportsSoftDelete())
	assert.Equal(t, "articles", repo.Table().Name)
}

func TestGetByIDColumnsAndRelations(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	authors := NewRepository[Author](db)
	articles := NewRepository[Article](db)

	author, err := authors.Create(ctx, &Author{Name: "ada"})
	require.NoError(t, err)
	created := seedArticle(t, articles, author.ID, "engines")

	got, err := articles.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "engines body", got.Body)
	assert.Nil(t, got.Author)

	got, err = articles.GetByID(ctx, created.ID, Columns("id", "title"))
	require.NoError(t, err)
	assert.Equal(t, "engines", got.Title)
	assert.Empty(t, got.Body)

	got, err = articles.GetByID(ctx, created.ID, Columns("*"), Relations("Author"))
	require.NoError(t, err)
	require.NotNil(t, got.Author)
	assert.Equal(t, "ada", got.Author.Name)
}

func TestGetByIDNotFound(t *testing.T) {
	repo := NewRepository[Article](newTestDB(t))

	got, err := repo.GetByID(context.Background(), 404)
	assert.Nil(t, got)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(err, sql.ErrNoRows))

	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "articles", nf.Table)
	assert.EqualValues(t, 404, nf.ID)
}

func TestListWithOptions(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	authors := NewRepository[Author](db)
	articles := NewRepository[Article](db)

	author, err := authors.Create(ctx, &Author{Name: "grace"})
	require.NoError(t, err)
	seedArticle(t, articles, author.ID, "a")
	seedArticle(t, articles, author.ID, "b")

	all, err := articles.List(ctx, Relations("Author"))
	require.NoError(t, err)
	require.Len(t, all, 2)
	for _, a := range all {
		require.NotNil(t, a.Author)
		assert.Equal(t, "grace", a.Author.Name)
	}

	same, err := articles.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, same, 2)
}

func TestUpdate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewRepository[Article](db)
	a := seedArticle(t, repo, 0, "draft")

	updated, err := repo.Update(ctx, a.ID, map[string]any{"title": "final", "body": "done"})
	require.NoError(t, err)
	assert.Equal(t, "final", updated.Title)
	assert.Equal(t, "done", updated.Body)

	unchanged, err := repo.Update(ctx, a.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, "final", unchanged.Title)

	_, err = repo.Update(ctx, a.ID+100, map[string]any{"title": "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSoftDeleteLifecycle(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewRepository[Article](db)
	keep := seedArticle(t, repo, 0, "keep")
	drop := seedArticle(t, repo, 0, "drop")

	require.NoError(t, repo.DeleteByID(ctx, drop.ID))

	_, err := repo.GetByID(ctx, drop.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.DeleteByID(ctx, drop.ID), ErrNotFound)

	withTrashed, err := repo.GetDeletedByID(ctx, drop.ID)
	require.NoError(t, err)
	assert.False(t, withTrashed.DeletedAt.IsZero())

	live, err := repo.GetDeletedByID(ctx, keep.ID)
	require.NoError(t, err)
	assert.Equal(t, "keep", live.Title)

	onlyTrashed, err := repo.GetOnlyDeletedByID(ctx, drop.ID)
	require.NoError(t, err)
	assert.Equal(t, "drop", onlyTrashed.Title)
	_, err = repo.GetOnlyDeletedByID(ctx, keep.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	visible, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, keep.ID, visible[0].ID)

	trashed, err := repo.ListDeleted(ctx)
	require.NoError(t, err)
	require.Len(t, trashed, 1)
	assert.Equal(t, drop.ID, trashed[0].ID)

	assert.ErrorIs(t, repo.RestoreByID(ctx, keep.ID), ErrNotFound)
	require.NoError(t, repo.RestoreByID(ctx, drop.ID))
	restored, err := repo.GetByID(ctx, drop.ID)
	require.NoError(t, err)
	assert.True(t, restored.DeletedAt.IsZero())

	require.NoError(t, repo.DeleteByID(ctx, drop.ID))
	require.NoError(t, repo.PermanentlyDeleteByID(ctx, drop.ID))
	_, err = repo.GetDeletedByID(ctx, drop.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.PermanentlyDeleteByID(ctx, keep.ID))
	_, err = repo.GetDeletedByID(ctx, keep.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestModelWithoutSoftDelete(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewRepository[Tag](db)
	assert.False(t, repo.SupportsSoftDelete())

	tag, err := repo.Create(ctx, &Tag{Name: "go"})
	require.NoError(t, err)

	_, err = repo.ListDeleted(ctx)
	assert.ErrorIs(t, err, ErrSoftDeleteUnsupported)
	_, err = repo.GetOnlyDeletedByID(ctx, tag.ID)
	assert.ErrorIs(t, err, ErrSoftDeleteUnsupported)
	assert.ErrorIs(t, repo.RestoreByID(ctx, tag.ID), ErrSoftDeleteUnsupported)

	found, err := repo.GetDeletedByID(ctx, tag.ID)
	require.NoError(t, err)
	assert.Equal(t, "go", found.Name)

	require.NoError(t, repo.DeleteByID(ctx, tag.ID))
	_, err = repo.GetDeletedByID(ctx, tag.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPageAndQuery(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewRepository[Article](db)
	for _, title := range []string{"go-1", "go-2", "go-3", "rust-1"} {
		seedArticle(t, repo, 0, title)
	}
	third := seedArticle(t, repo, 0, "go-4")
	require.NoError(t, repo.DeleteByID(ctx, third.ID))

	page, err := repo.Page(ctx, types.NewPageRequest(1, 2, types.NewQueryFilter("title LIKE ?", "go-%"), []string{"id DESC"}))
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "go-3", page.Items[0].Title)
	assert.True(t, page.HasNext())

	trashed, err := repo.Page(ctx, types.NewDefaultPageRequest(1, 10).WithTrashed(types.OnlyTrashed))
	require.NoError(t, err)
	assert.Equal(t, 1, trashed.Total)

	empty, err := repo.Page(ctx, types.NewPageRequestWithFilter(1, 10, types.NewQueryFilter("title = ?", "none")))
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Total)
	assert.Empty(t, empty.Items)

	rust, err := repo.Query(ctx, "title LIKE ?", "rust%")
	require.NoError(t, err)
	assert.Len(t, rust, 1)
}

func TestRunInTxRollsBack(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewRepository[Tag](db)
	boom := errors.New("boom")

	err := repo.RunInTx(ctx, func(ctx context.Context, tx Repository[Tag]) error {
		if _, err := tx.Create(ctx, &Tag{Name: "tmp"}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	tags, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, tags)

	require.NoError(t, repo.RunInTx(ctx, func(ctx context.Context, tx Repository[Tag]) error {
		return tx.CreateMany(ctx, &Tag{Name: "a"}, &Tag{Name: "b"})
	}))
	tags, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, tags, 2)
}

func TestSave(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewRepository[Tag](db)
	tag, err := repo.Create(ctx, &Tag{Name: "old"})
	require.NoError(t, err)

	tag.Name = "new"
	require.NoError(t, repo.Save(ctx, tag))

	got, err := repo.GetByID(ctx, tag.ID)
	require.NoError(t, err)
	assert.Equal(t, "new", got.Name)
}

type Label struct {
	bun.BaseModel `bun:"table:labels,alias:l"`

	ID   int64  `bun:"id,pk,autoincrement"`
	Code string `bun:"code,notnull,unique"`
	Name string `bun:"name"`
}

type AuditLine struct {
	bun.BaseModel `bun:"table:audit_lines"`

	Message string `bun:"message"`
}

func createTables(t *testing.T, db *bun.DB, models ...interface{}) {
	t.Helper()
	for _, model := range models {
		_, err := db.NewCreateTable().Model(model).IfNotExists().Exec(context.Background())
		require.NoError(t, err)
	}
}

func TestModelWithoutPrimaryKey(t *testing.T) {
	db := newTestDB(t)
	createTables(t, db, (*AuditLine)(nil))
	ctx := context.Background()
	repo := NewRepository[AuditLine](db)

	_, err := repo.Create(ctx, &AuditLine{Message: "started"})
	assert.ErrorIs(t, err, ErrNoPrimaryKey)
	count, err := db.NewSelect().Model((*AuditLine)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count, "nothing may be inserted")

	_, err = repo.GetByID(ctx, 1)
	assert.ErrorIs(t, err, ErrNoPrimaryKey)
	_, err = repo.GetDeletedByID(ctx, 1)
	assert.ErrorIs(t, err, ErrNoPrimaryKey)
	_, err = repo.Update(ctx, 1, map[string]any{"message": "x"})
	assert.ErrorIs(t, err, ErrNoPrimaryKey)
	assert.ErrorIs(t, repo.DeleteByID(ctx, 1), ErrNoPrimaryKey)
	assert.ErrorIs(t, repo.PermanentlyDeleteByID(ctx, 1), ErrNoPrimaryKey)
	assert.ErrorIs(t, repo.Upsert(ctx, []string{"message"}, nil, &AuditLine{Message: "x"}), ErrNoPrimaryKey)
}

func TestCreateDuplicate(t *testing.T) {
	db := newTestDB(t)
	createTables(t, db, (*Label)(nil))
	ctx := context.Background()
	repo := NewRepository[Label](db)

	_, err := repo.Create(ctx, &Label{Code: "bug"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, &Label{Code: "bug"})
	assert.ErrorIs(t, err, ErrDuplicate)

	err = repo.CreateMany(ctx, &Label{Code: "feature"}, &Label{Code: "feature"})
	assert.ErrorIs(t, err, ErrDuplicate)

	err = repo.CreateMany(ctx, &Label{Code: "docs"}, &Label{Code: "chore"})
	require.NoError(t, err)
}

func TestUpsert(t *testing.T) {
	db := newTestDB(t)
	createTables(t, db, (*Label)(nil))
	ctx := context.Background()
	repo := NewRepository[Label](db)

	bug, err := repo.Create(ctx, &Label{Code: "bug", Name: "Bug"})
	require.NoError(t, err)

	require.NoError(t, repo.Upsert(ctx, []string{"name"}, nil, &Label{ID: bug.ID, Code: "bug", Name: "Defect"}))
	got, err := repo.GetByID(ctx, bug.ID)
	require.NoError(t, err)
	assert.Equal(t, "Defect", got.Name)

	require.NoError(t, repo.Upsert(ctx, []string{"name"}, []string{"code"},
		&Label{Code: "bug", Name: "Issue"},
		&Label{Code: "idea", Name: "Idea"},
	))
	var labels []*Label
	require.NoError(t, repo.NewSelect().Order("code").Scan(ctx, &labels))
	require.Len(t, labels, 2)
	assert.Equal(t, bug.ID, labels[0].ID)
	assert.Equal(t, "Issue", labels[0].Name)
	assert.Equal(t, "idea", labels[1].Code)

	assert.Error(t, repo.Upsert(ctx, nil, nil, &Label{Code: "x"}))
	assert.NoError(t, repo.Upsert(ctx, []string{"name"}, nil))
}
