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

	"github.com/tomoncle/repokit/types"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"
)

// CrudRepository defines basic CRUD operations for a generic entity type.
type CrudRepository[T any] interface {
	// List returns every visible entity, optionally narrowing the selected
	// columns and eager loading relations.
	List(ctx context.Context, opts ...Option) ([]*T, error)

	GetAll(ctx context.Context) ([]*T, error)

	// GetByID finds a single entity or fails with ErrNotFound.
	GetByID(ctx context.Context, id any, opts ...Option) (*T, error)

	Query(ctx context.Context, query string, args ...interface{}) ([]*T, error)

	// Create inserts the entity and returns it re-read from the database.
	Create(ctx context.Context, entity *T) (*T, error)

	// CreateMany inserts every entity in one statement. Unique violations
	// match ErrDuplicate.
	CreateMany(ctx context.Context, entity ...*T) error

	// Upsert inserts entities, overwriting fields of rows that conflict on
	// conflictKeys (the primary key when empty).
	Upsert(ctx context.Context, fields []string, conflictKeys []string, entity ...*T) error

	// Update applies column values to the entity with the given id and
	// returns the refreshed entity.
	Update(ctx context.Context, id any, values map[string]any) (*T, error)

	// Save writes every column of entity, matched by primary key.
	Save(ctx context.Context, entity *T) error

	// DeleteByID removes the entity; models with a soft_delete field are
	// only marked as deleted.
	DeleteByID(ctx context.Context, id any) error
}

// SoftDeleteRepository defines operations on soft-deleted ("trashed") rows.
type SoftDeleteRepository[T any] interface {
	ListDeleted(ctx context.Context, opts ...Option) ([]*T, error)

	// GetDeletedByID finds an entity whether or not it is trashed.
	GetDeletedByID(ctx context.Context, id any, opts ...Option) (*T, error)

	// GetOnlyDeletedByID finds an entity only if it is trashed.
	GetOnlyDeletedByID(ctx context.Context, id any, opts ...Option) (*T, error)

	RestoreByID(ctx context.Context, id any) error

	PermanentlyDeleteByID(ctx context.Context, id any) error
}

// PageQueryRepository defines pagination functionality for listing entities.
type PageQueryRepository[T any] interface {
	Page(ctx context.Context, page *types.PageRequest) (*types.Pagination[T], error)
}

// TransactionRepository binds the repository to a transaction.
type TransactionRepository[T any] interface {
	WithTx(tx bun.Tx) Repository[T]
	RunInTx(ctx context.Context, fn func(ctx context.Context, repo Repository[T]) error) error
}

// Repository combines CRUD, soft delete, pagination and transactional
// operations and exposes model-bound Bun query builders for advanced use.
type Repository[T any] interface {
	CrudRepository[T]
	SoftDeleteRepository[T]
	PageQueryRepository[T]
	TransactionRepository[T]
	Table() *schema.Table
	DB() bun.IDB
	Dialect() schema.Dialect
	SupportsSoftDelete() bool
	NewSelect() *bun.SelectQuery
	NewInsert() *bun.InsertQuery
	NewUpdate() *bun.UpdateQuery
	NewDelete() *bun.DeleteQuery
}
