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
	"fmt"
	"reflect"
	"sort"

	"github.com/tomoncle/repokit/database"
	"github.com/tomoncle/repokit/types"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/feature"
	"github.com/uptrace/bun/schema"
)

type baseRepositoryImpl[T any] struct {
	db    bun.IDB
	table *schema.Table
}

// NewRepository returns a generic repository backed by the provided Bun
// database or transaction.
func NewRepository[T any](db bun.IDB) Repository[T] {
	return &baseRepositoryImpl[T]{
		db:    db,
		table: db.Dialect().Tables().Get(reflect.TypeOf((*T)(nil)).Elem()),
	}
}

func (r *baseRepositoryImpl[T]) Table() *schema.Table { return r.table }

func (r *baseRepositoryImpl[T]) DB() bun.IDB { return r.db }

func (r *baseRepositoryImpl[T]) Dialect() schema.Dialect { return r.db.Dialect() }

func (r *baseRepositoryImpl[T]) SupportsSoftDelete() bool { return r.table.SoftDeleteField != nil }

// NewSelect returns a select builder bound to the model; pass the scan
// destination to Scan.
func (r *baseRepositoryImpl[T]) NewSelect() *bun.SelectQuery {
	return r.db.NewSelect().Model((*T)(nil))
}

func (r *baseRepositoryImpl[T]) NewInsert() *bun.InsertQuery { return r.db.NewInsert() }

func (r *baseRepositoryImpl[T]) NewUpdate() *bun.UpdateQuery {
	return r.db.NewUpdate().Model((*T)(nil))
}

func (r *baseRepositoryImpl[T]) NewDelete() *bun.DeleteQuery {
	return r.db.NewDelete().Model((*T)(nil))
}

func (r *baseRepositoryImpl[T]) WithTx(tx bun.Tx) Repository[T] {
	return &baseRepositoryImpl[T]{db: tx, table: r.table}
}

func (r *baseRepositoryImpl[T]) RunInTx(ctx context.Context, fn func(ctx context.Context, repo Repository[T]) error) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, r.WithTx(tx))
	})
}

func (r *baseRepositoryImpl[T]) primaryKey() (string, error) {
	if len(r.table.PKs) == 0 {
		return "", fmt.Errorf("%s: %w", r.table.Name, ErrNoPrimaryKey)
	}
	return r.table.PKs[0].Name, nil
}

func (r *baseRepositoryImpl[T]) withTrashed(q *bun.SelectQuery, mode types.TrashedMode) (*bun.SelectQuery, error) {
	if !r.SupportsSoftDelete() {
		if mode == types.OnlyTrashed {
			return nil, fmt.Errorf("%s: %w", r.table.Name, ErrSoftDeleteUnsupported)
		}
		return q, nil
	}
	switch mode {
	case types.WithTrashed:
		return q.WhereAllWithDeleted(), nil
	case types.OnlyTrashed:
		return q.WhereDeleted(), nil
	default:
		return q, nil
	}
}

func (r *baseRepositoryImpl[T]) list(ctx context.Context, mode types.TrashedMode, opts []Option) ([]*T, error) {
	entities := make([]*T, 0)
	q, err := r.withTrashed(r.db.NewSelect().Model(&entities), mode)
	if err != nil {
		return nil, err
	}
	if err := newQueryOptions(opts).apply(q).Scan(ctx); err != nil {
		return nil, err
	}
	return entities, nil
}

// find is the find-or-fail lookup shared by the GetBy* operations.
func (r *baseRepositoryImpl[T]) find(ctx context.Context, id any, mode types.TrashedMode, opts []Option) (*T, error) {
	pk, err := r.primaryKey()
	if err != nil {
		return nil, err
	}
	entity := new(T)
	q, err := r.withTrashed(r.db.NewSelect().Model(entity), mode)
	if err != nil {
		return nil, err
	}
	q = newQueryOptions(opts).apply(q).Where("?TableAlias.? = ?", bun.Ident(pk), id)
	if err := q.Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &NotFoundError{Table: r.table.Name, ID: id, Err: err}
		}
		return nil, err
	}
	return entity, nil
}

func (r *baseRepositoryImpl[T]) List(ctx context.Context, opts ...Option) ([]*T, error) {
	return r.list(ctx, types.WithoutTrashed, opts)
}

func (r *baseRepositoryImpl[T]) ListDeleted(ctx context.Context, opts ...Option) ([]*T, error) {
	return r.list(ctx, types.OnlyTrashed, opts)
}

func (r *baseRepositoryImpl[T]) GetAll(ctx context.Context) ([]*T, error) {
	return r.List(ctx)
}

func (r *baseRepositoryImpl[T]) GetByID(ctx context.Context, id any, opts ...Option) (*T, error) {
	return r.find(ctx, id, types.WithoutTrashed, opts)
}

func (r *baseRepositoryImpl[T]) GetDeletedByID(ctx context.Context, id any, opts ...Option) (*T, error) {
	return r.find(ctx, id, types.WithTrashed, opts)
}

func (r *baseRepositoryImpl[T]) GetOnlyDeletedByID(ctx context.Context, id any, opts ...Option) (*T, error) {
	return r.find(ctx, id, types.OnlyTrashed, opts)
}

func (r *baseRepositoryImpl[T]) Query(ctx context.Context, query string, args ...interface{}) ([]*T, error) {
	var entities []*T
	err := r.db.NewSelect().Model(&entities).Where(query, args...).Scan(ctx)
	return entities, err
}

func (r *baseRepositoryImpl[T]) Page(ctx context.Context, pageRequest *types.PageRequest) (*types.Pagination[T], error) {
	var entities []*T
	query, err := r.withTrashed(r.db.NewSelect().Model(&entities), pageRequest.GetTrashed())
	if err != nil {
		return nil, err
	}
	if pageRequest.GetFilter() != nil {
		query = query.Where(pageRequest.GetFilter().Schema, pageRequest.GetFilter().Args...)
	}
	pagination := types.NewDefaultPagination[T](pageRequest.GetPage(), pageRequest.GetPageSize())
	total, err := query.Count(ctx)
	if err != nil || total == 0 {
		return pagination, err
	}
	err = query.
		Offset(pageRequest.GetOffset()).
		Limit(pageRequest.GetPageSize()).
		Order(pageRequest.GetOrders()...).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	pagination.Total = total
	pagination.Items = entities
	return pagination, nil
}

func (r *baseRepositoryImpl[T]) Create(ctx context.Context, entity *T) (*T, error) {
	if _, err := r.primaryKey(); err != nil {
		return nil, err
	}
	if _, err := r.db.NewInsert().Model(entity).Exec(ctx); err != nil {
		return nil, r.insertError(err)
	}
	q := r.db.NewSelect().Model(entity).WherePK()
	if r.SupportsSoftDelete() {
		q = q.WhereAllWithDeleted()
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("refresh created %s: %w", r.table.Name, err)
	}
	return entity, nil
}

func (r *baseRepositoryImpl[T]) CreateMany(ctx context.Context, entity ...*T) error {
	if len(entity) == 0 {
		return nil
	}
	entities := make([]*T, len(entity))
	copy(entities, entity)
	if _, err := r.db.NewInsert().Model(&entities).Exec(ctx); err != nil {
		return r.insertError(err)
	}
	return nil
}

// insertError marks unique violations with ErrDuplicate and keeps the
// driver error in the chain.
func (r *baseRepositoryImpl[T]) insertError(err error) error {
	if database.IsDuplicateKey(err) {
		return fmt.Errorf("%s: %w: %w", r.table.Name, ErrDuplicate, err)
	}
	return err
}

// Upsert inserts entities and, on a conflict over conflictKeys, overwrites
// fields instead. conflictKeys defaults to the primary key; MySQL ignores it
// and resolves conflicts against every unique index.
func (r *baseRepositoryImpl[T]) Upsert(ctx context.Context, fields []string, conflictKeys []string, entity ...*T) error {
	if len(fields) == 0 {
		return errors.New("upsert: fields cannot be empty")
	}
	if len(entity) == 0 {
		return nil
	}
	entities := make([]*T, len(entity))
	copy(entities, entity)

	switch {
	case r.db.Dialect().Features().Has(feature.InsertOnConflict):
		if len(conflictKeys) == 0 {
			for _, pk := range r.table.PKs {
				conflictKeys = append(conflictKeys, pk.Name)
			}
		}
		if len(conflictKeys) == 0 {
			return fmt.Errorf("%s: %w", r.table.Name, ErrNoPrimaryKey)
		}
		keys := make([]schema.Ident, len(conflictKeys))
		for i, k := range conflictKeys {
			keys[i] = bun.Ident(k)
		}
		q := r.db.NewInsert().Model(&entities).On("CONFLICT (?) DO UPDATE", bun.In(keys))
		for _, f := range fields {
			q = q.Set("? = EXCLUDED.?", bun.Ident(f), bun.Ident(f))
		}
		_, err := q.Exec(ctx)
		return err
	case r.db.Dialect().Features().Has(feature.InsertOnDuplicateKey):
		q := r.db.NewInsert().Model(&entities).On("DUPLICATE KEY UPDATE")
		for _, f := range fields {
			q = q.Set("? = VALUES(?)", bun.Ident(f), bun.Ident(f))
		}
		_, err := q.Exec(ctx)
		return err
	default:
		return r.upsertEach(ctx, entities)
	}
}

// upsertEach is used by dialects without an upsert clause.
func (r *baseRepositoryImpl[T]) upsertEach(ctx context.Context, entities []*T) error {
	if _, err := r.primaryKey(); err != nil {
		return err
	}
	for _, entity := range entities {
		_, err := r.db.NewInsert().Model(entity).Exec(ctx)
		if err == nil {
			continue
		}
		if !database.IsDuplicateKey(err) {
			return err
		}
		if _, err := r.db.NewUpdate().Model(entity).WherePK().Exec(ctx); err != nil {
			return fmt.Errorf("upsert %s: %w", r.table.Name, err)
		}
	}
	return nil
}

func (r *baseRepositoryImpl[T]) Update(ctx context.Context, id any, values map[string]any) (*T, error) {
	entity, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return entity, nil
	}
	columns := make([]string, 0, len(values))
	for col := range values {
		columns = append(columns, col)
	}
	sort.Strings(columns)

	q := r.db.NewUpdate().Model(entity).WherePK()
	for _, col := range columns {
		q = q.Set("? = ?", bun.Ident(col), values[col])
	}
	if _, err := q.Exec(ctx); err != nil {
		return nil, fmt.Errorf("update %s %v: %w", r.table.Name, id, err)
	}
	return r.GetByID(ctx, id)
}

func (r *baseRepositoryImpl[T]) Save(ctx context.Context, entity *T) error {
	_, err := r.db.NewUpdate().Model(entity).WherePK().Exec(ctx)
	return err
}

func (r *baseRepositoryImpl[T]) RestoreByID(ctx context.Context, id any) error {
	if !r.SupportsSoftDelete() {
		return fmt.Errorf("%s: %w", r.table.Name, ErrSoftDeleteUnsupported)
	}
	entity, err := r.GetOnlyDeletedByID(ctx, id)
	if err != nil {
		return err
	}
	_, err = r.db.NewUpdate().
		Model(entity).
		Set("? = NULL", bun.Ident(r.table.SoftDeleteField.Name)).
		WherePK().
		WhereDeleted().
		Exec(ctx)
	return err
}

func (r *baseRepositoryImpl[T]) DeleteByID(ctx context.Context, id any) error {
	entity, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	_, err = r.db.NewDelete().Model(entity).WherePK().Exec(ctx)
	return err
}

func (r *baseRepositoryImpl[T]) PermanentlyDeleteByID(ctx context.Context, id any) error {
	entity, err := r.GetDeletedByID(ctx, id)
	if err != nil {
		return err
	}
	q := r.db.NewDelete().Model(entity).WherePK()
	if r.SupportsSoftDelete() {
		q = q.WhereAllWithDeleted().ForceDelete()
	}
	_, err = q.Exec(ctx)
	return err
}
