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
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomoncle/repokit/database"
	"github.com/tomoncle/repokit/repository"
	"github.com/tomoncle/repokit/types"
	"github.com/uptrace/bun"
)

type SystemConfig struct {
	bun.BaseModel `bun:"table:system_config,alias:sc"`

	ID          int64     `bun:"id,pk,autoincrement" json:"id"`
	ConfigKey   string    `bun:"config_key,notnull,unique" json:"config_key"`
	ConfigValue string    `bun:"config_value" json:"config_value"`
	ConfigType  string    `bun:"config_type,notnull,default:'string'" json:"config_type"`
	CreatedAt   time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	DeletedAt   time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at"`
}

func initTestDB(t *testing.T) {
	t.Helper()
	database.RegisteredModel(database.NewModelAdapter((*SystemConfig)(nil), 1))
	_, err := database.InitDB(&database.Config{
		ConnectionConfig: database.ConnectionConfig{
			Type:   "sqlite",
			DBName: filepath.Join(t.TempDir(), "service.db"),
		},
		MigrateConfig: database.MigrateConfig{EnableMigrateOnStartup: true},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.CloseDB() })
}

func TestServiceLifecycle(t *testing.T) {
	svc := NewService[SystemConfig]()
	initTestDB(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, &SystemConfig{ConfigKey: "site.name", ConfigValue: "repokit"})
	require.NoError(t, err)
	assert.Equal(t, "string", created.ConfigType)
	assert.False(t, created.CreatedAt.IsZero())

	require.NoError(t, svc.Save(ctx,
		&SystemConfig{ConfigKey: "site.lang", ConfigValue: "en"},
		&SystemConfig{ConfigKey: "site.tz", ConfigValue: "UTC"},
	))

	all, err := svc.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	updated, err := svc.Update(ctx, created.ID, map[string]any{"config_value": "repokit-2"})
	require.NoError(t, err)
	assert.Equal(t, "repokit-2", updated.ConfigValue)

	require.NoError(t, svc.Delete(ctx, created.ID))
	_, err = svc.Get(ctx, created.ID)
	assert.True(t, errors.Is(err, repository.ErrNotFound))

	trashed, err := svc.Trashed(ctx)
	require.NoError(t, err)
	require.Len(t, trashed, 1)
	assert.Equal(t, created.ID, trashed[0].ID)

	require.NoError(t, svc.Restore(ctx, created.ID))
	got, err := svc.Get(ctx, created.ID, repository.Columns("id", "config_key"))
	require.NoError(t, err)
	assert.Equal(t, "site.name", got.ConfigKey)
	assert.Empty(t, got.ConfigValue)

	require.NoError(t, svc.ForceDelete(ctx, created.ID))
	_, err = svc.Repository().GetDeletedByID(ctx, created.ID)
	assert.True(t, errors.Is(err, repository.ErrNotFound))
}

func TestServiceBeforeInitDB(t *testing.T) {
	ctx := context.Background()
	svc := NewService[SystemConfig]()

	_, err := svc.All(ctx)
	assert.ErrorIs(t, err, ErrDatabaseNotInitialized)
	assert.ErrorIs(t, svc.Delete(ctx, 1), ErrDatabaseNotInitialized)
	assert.PanicsWithError(t, ErrDatabaseNotInitialized.Error(), func() { svc.SelectBuilder() })

	initTestDB(t)
	_, err = svc.Create(ctx, &SystemConfig{ConfigKey: "site.name", ConfigValue: "repokit"})
	require.NoError(t, err)
	all, err := svc.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestServiceSaveOrUpdate(t *testing.T) {
	initTestDB(t)
	svc := NewServiceWithDB[SystemConfig](database.GetDB())
	ctx := context.Background()

	_, err := svc.Create(ctx, &SystemConfig{ConfigKey: "site.name", ConfigValue: "old"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, &SystemConfig{ConfigKey: "site.name", ConfigValue: "again"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	require.NoError(t, svc.SaveOrUpdate(ctx, []string{"config_value"}, []string{"config_key"},
		&SystemConfig{ConfigKey: "site.name", ConfigValue: "new"},
		&SystemConfig{ConfigKey: "site.lang", ConfigValue: "en"},
	))
	got, err := svc.Query(ctx, "config_key = ?", "site.name")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "new", got[0].ConfigValue)

	all, err := svc.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestServicePageAndBuilders(t *testing.T) {
	initTestDB(t)
	svc := NewServiceWithDB[SystemConfig](database.GetDB())
	ctx := context.Background()

	for _, key := range []string{"a", "b", "c", "d", "e"} {
		_, err := svc.Create(ctx, &SystemConfig{ConfigKey: key, ConfigValue: key})
		require.NoError(t, err)
	}

	page, err := svc.Page(ctx, types.NewDefaultPageRequest(2, 2))
	require.NoError(t, err)
	assert.Equal(t, 5, page.Total)
	assert.True(t, page.HasNext())
	assert.Len(t, page.Items, 2)

	var keys []string
	err = svc.SelectBuilder().Column("config_key").Where("config_value IN (?)", bun.In([]string{"a", "e"})).Order("config_key").Scan(ctx, &keys)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "e"}, keys)

	rows, err := svc.Query(ctx, "config_key = ?", "c")
	require.NoError(t, err)
	require.Len(t, rows, 1)

	err = svc.Transaction(ctx, func(ctx context.Context, repo repository.Repository[SystemConfig]) error {
		_, err := repo.Create(ctx, &SystemConfig{ConfigKey: "f"})
		if err != nil {
			return err
		}
		return errors.New("rollback")
	})
	assert.EqualError(t, err, "rollback")
	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 5)
}
