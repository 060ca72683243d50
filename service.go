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

package repokit

import (
	"context"
	"errors"
	"sync"

	"github.com/tomoncle/repokit/database"
	"github.com/tomoncle/repokit/repository"
	"github.com/tomoncle/repokit/types"
	"github.com/uptrace/bun"
)

// Service exposes the repository operations of one model to application code.
type Service[T any] interface {
	// Get returns a single entity or an error wrapping repository.ErrNotFound.
	Get(ctx context.Context, id any, opts ...repository.Option) (*T, error)

	// All returns all entities that are not trashed.
	All(ctx context.Context) ([]*T, error)

	List(ctx context.Context, opts ...repository.Option) ([]*T, error)

	// Trashed returns only the soft deleted entities.
	Trashed(ctx context.Context, opts ...repository.Option) ([]*T, error)

	// Query executes a raw query and maps the results to entities.
	Query(ctx context.Context, query string, args ...interface{}) ([]*T, error)

	// Page returns a paginated list of entities.
	Page(ctx context.Context, page *types.PageRequest) (*types.Pagination[T], error)

	// Create inserts the entity and returns its stored state.
	Create(ctx context.Context, model *T) (*T, error)

	// Save inserts one or more new entities.
	Save(ctx context.Context, model ...*T) error

	// SaveOrUpdate upserts entities, overwriting fields on a conflict over
	// conflictKeys (the primary key when empty).
	SaveOrUpdate(ctx context.Context, fields []string, conflictKeys []string, model ...*T) error

	Update(ctx context.Context, id any, values map[string]any) (*T, error)

	// Delete removes an entity by its identifier; soft delete models are trashed.
	Delete(ctx context.Context, id any) error

	Restore(ctx context.Context, id any) error

	// ForceDelete removes the row even when it is trashed.
	ForceDelete(ctx context.Context, id any) error

	// Transaction runs fn with a repository bound to a single transaction.
	Transaction(ctx context.Context, fn func(ctx context.Context, repo repository.Repository[T]) error) error

	// Repository returns the underlying repository. It and the builder
	// accessors panic with ErrDatabaseNotInitialized when no database is
	// available yet.
	Repository() repository.Repository[T]

	SelectBuilder() *bun.SelectQuery
	InsertBuilder() *bun.InsertQuery
	UpdateBuilder() *bun.UpdateQuery
	DeleteBuilder() *bun.DeleteQuery
}

// ErrDatabaseNotInitialized is returned by services created with NewService
// before database.InitDB has connected.
var ErrDatabaseNotInitialized = errors.New("database not initialized")

type baseServiceImpl[T any] struct {
	db   func() bun.IDB
	mu   sync.Mutex
	repo repository.Repository[T]
}

// NewService returns a Service backed by the global database connection. The
// connection is resolved on first use so services can be declared before
// database.InitDB runs.
func NewService[T any]() Service[T] {
	return &baseServiceImpl[T]{db: func() bun.IDB {
		if db := database.GetDB(); db != nil {
			return db
		}
		return nil
	}}
}

// NewServiceWithDB returns a Service bound to db, which may be a *bun.DB or a bun.Tx.
func NewServiceWithDB[T any](db bun.IDB) Service[T] {
	return &baseServiceImpl[T]{db: func() bun.IDB { return db }}
}

// resolve builds the repository once a database is available; until then it
// keeps returning ErrDatabaseNotInitialized.
func (s *baseServiceImpl[T]) resolve() (repository.Repository[T], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.repo != nil {
		return s.repo, nil
	}
	db := s.db()
	if db == nil {
		return nil, ErrDatabaseNotInitialized
	}
	s.repo = repository.NewRepository[T](db)
	return s.repo, nil
}

func (s *baseServiceImpl[T]) baseRepo() repository.Repository[T] {
	repo, err := s.resolve()
	if err != nil {
		panic(err)
	}
	return repo
}

func (s *baseServiceImpl[T]) Repository() repository.Repository[T] {
	return s.baseRepo()
}

func (s *baseServiceImpl[T]) Get(ctx context.Context, id any, opts ...repository.Option) (*T, error) {
	repo, err := s.resolve()
	if err != nil {
		return nil, err
	}
	return repo.GetByID(ctx, id, opts...)
}

func (s *baseServiceImpl[T]) All(ctx context.Context) ([]*T, error) {
	repo, err := s.resolve()
	if err != nil {
		return nil, err
	}
	return repo.GetAll(ctx)
}

func (s *baseServiceImpl[T]) List(ctx context.Context, opts ...repository.Option) ([]*T, error) {
	repo, err := s.resolve()
	if err != nil {
		return nil, err
	}
	return repo.List(ctx, opts...)
}

func (s *baseServiceImpl[T]) Trashed(ctx context.Context, opts ...repository.Option) ([]*T, error) {
	repo, err := s.resolve()
	if err != nil {
		return nil, err
	}
	return repo.ListDeleted(ctx, opts...)
}

func (s *baseServiceImpl[T]) Query(ctx context.Context, query string, args ...interface{}) ([]*T, error) {
	repo, err := s.resolve()
	if err != nil {
		return nil, err
	}
	return repo.Query(ctx, query, args...)
}

func (s *baseServiceImpl[T]) Page(ctx context.Context, page *types.PageRequest) (*types.Pagination[T], error) {
	repo, err := s.resolve()
	if err != nil {
		return nil, err
	}
	return repo.Page(ctx, page)
}

func (s *baseServiceImpl[T]) Create(ctx context.Context, model *T) (*T, error) {
	repo, err := s.resolve()
	if err != nil {
		return nil, err
	}
	return repo.Create(ctx, model)
}

func (s *baseServiceImpl[T]) Save(ctx context.Context, model ...*T) error {
	repo, err := s.resolve()
	if err != nil {
		return err
	}
	return repo.CreateMany(ctx, model...)
}

func (s *baseServiceImpl[T]) Update(ctx context.Context, id any, values map[string]any) (*T, error) {
	repo, err := s.resolve()
	if err != nil {
		return nil, err
	}
	return repo.Update(ctx, id, values)
}

func (s *baseServiceImpl[T]) SaveOrUpdate(ctx context.Context, fields []string, conflictKeys []string, model ...*T) error {
	repo, err := s.resolve()
	if err != nil {
		return err
	}
	return repo.Upsert(ctx, fields, conflictKeys, model...)
}

func (s *baseServiceImpl[T]) Delete(ctx context.Context, id any) error {
	repo, err := s.resolve()
	if err != nil {
		return err
	}
	return repo.DeleteByID(ctx, id)
}

func (s *baseServiceImpl[T]) Restore(ctx context.Context, id any) error {
	repo, err := s.resolve()
	if err != nil {
		return err
	}
	return repo.RestoreByID(ctx, id)
}

func (s *baseServiceImpl[T]) ForceDelete(ctx context.Context, id any) error {
	repo, err := s.resolve()
	if err != nil {
		return err
	}
	return repo.PermanentlyDeleteByID(ctx, id)
}

func (s *baseServiceImpl[T]) Transaction(ctx context.Context, fn func(ctx context.Context, repo repository.Repository[T]) error) error {
	repo, err := s.resolve()
	if err != nil {
		return err
	}
	return repo.RunInTx(ctx, fn)
}

func (s *baseServiceImpl[T]) SelectBuilder() *bun.SelectQuery {
	return s.baseRepo().NewSelect()
}

func (s *baseServiceImpl[T]) InsertBuilder() *bun.InsertQuery {
	return s.baseRepo().NewInsert()
}

func (s *baseServiceImpl[T]) UpdateBuilder() *bun.UpdateQuery {
	return s.baseRepo().NewUpdate()
}

func (s *baseServiceImpl[T]) DeleteBuilder() *bun.DeleteQuery {
	return s.baseRepo().NewDelete()
}
