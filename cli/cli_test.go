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


package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomoncle/repokit/generator"
)

func run(t *testing.T, fsys afero.Fs, args ...string) (string, error) {
	t.Helper()
	root := newRootCommand(fsys)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--env-file", ""}, args...))
	err := root.Execute()
	return out.String(), err
}

func projectFs(t *testing.T) afero.Fs {
	t.Helper()
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/app/go.mod", []byte("module example.com/shop\n"), 0o644))
	return fsys
}

func TestMakeRepository(t *testing.T) {
	fsys := projectFs(t)

	out, err := run(t, fsys, "--base-path", "/app", "make:repository", "users")
	require.NoError(t, err)
	assert.Contains(t, out, "Repository successfully created")
	assert.Contains(t, out, "Contract successfully created")

	repo, err := afero.ReadFile(fsys, "/app/internal/repositories/models/user_repository.go")
	require.NoError(t, err)
	assert.Contains(t, string(repo), "type UserRepository struct")
	ok, err := afero.Exists(fsys, "/app/internal/repositories/contracts/user_repository_interface.go")
	require.NoError(t, err)
	assert.True(t, ok)

	out, err = run(t, fsys, "--base-path", "/app", "make:repository", "users")
	assert.ErrorIs(t, err, generator.ErrFilesExist)
	assert.Equal(t, 1, strings.Count(out, "Files already exist"))

	_, err = run(t, fsys, "--base-path", "/app", "make:repository", "users", "--force")
	assert.NoError(t, err)
}

func TestEnvFileFromProjectFs(t *testing.T) {
	fsys := projectFs(t)
	require.NoError(t, afero.WriteFile(fsys, "/app/.env", []byte("REPOKIT_BASE_PATH=/app\n"), 0o644))
	t.Cleanup(func() { _ = os.Unsetenv("REPOKIT_BASE_PATH") })

	_, err := run(t, fsys, "--env-file", "/app/.env", "make:repository", "invoices")
	require.NoError(t, err)
	ok, err := afero.Exists(fsys, "/app/internal/repositories/models/invoice_repository.go")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMakeRepositoryRequiresModelName(t *testing.T) {
	_, err := run(t, projectFs(t), "make:repository")
	assert.Error(t, err)
}

func TestConfigPublishThenUse(t *testing.T) {
	fsys := projectFs(t)
	out, err := run(t, fsys, "config:publish", "--path", "/app/repokit.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration published")

	_, err = run(t, fsys, "config:publish", "--path", "/app/repokit.yaml")
	assert.Error(t, err)

	require.NoError(t, afero.WriteFile(fsys, "/app/repokit.yaml", []byte("base_path: /app\nrepositories_namespace: internal/store\n"), 0o644))
	_, err = run(t, fsys, "--config", "/app/repokit.yaml", "make:repository", "orders")
	require.NoError(t, err)
	ok, err := afero.Exists(fsys, "/app/internal/store/order_repository.go")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStubPublish(t *testing.T) {
	fsys := projectFs(t)
	out, err := run(t, fsys, "stub:publish", "--dir", "/app/stubs")
	require.NoError(t, err)
	assert.Contains(t, out, "Published")

	out, err = run(t, fsys, "stub:publish", "--dir", "/app/stubs")
	require.NoError(t, err)
	assert.Contains(t, out, "Stubs already published")
}

func TestDBCheck(t *testing.T) {
	t.Setenv("REPOKIT_DATABASE_CONNECTION_TYPE", "sqlite")
	t.Setenv("REPOKIT_DATABASE_CONNECTION_DBNAME", filepath.Join(t.TempDir(), "check.db"))

	out, err := run(t, afero.NewMemMapFs(), "db:check")
	require.NoError(t, err)

	var report struct {
		Type   string `json:"type"`
		Health struct {
			Healthy bool `json:"healthy"`
		} `json:"health"`
	}
	start := bytes.IndexByte([]byte(out), '{')
	require.GreaterOrEqual(t, start, 0)
	require.NoError(t, json.NewDecoder(bytes.NewBufferString(out[start:])).Decode(&report))
	assert.Equal(t, "sqlite", report.Type)
	assert.True(t, report.Health.Healthy)
}
