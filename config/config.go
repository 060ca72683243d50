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


package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"github.com/tomoncle/repokit/database"
	"github.com/tomoncle/repokit/generator"
	"gopkg.in/yaml.v3"
)

const (
	EnvPrefix   = "REPOKIT"
	FileName    = "repokit"
	DefaultFile = FileName + ".yaml"
)

// ErrConfigExists is returned by Publish when the target file is present.
var ErrConfigExists = errors.New("config file already exists")

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"` // text or json
}

// Config is the full repokit configuration.
type Config struct {
	Generator generator.Config `mapstructure:",squash" yaml:",inline"`
	Log       LogConfig        `mapstructure:"log" yaml:"log"`
	Database  database.Config  `mapstructure:"database" yaml:"database"`
}

var _ database.AbstractDatabaseConfigProvider = (*Config)(nil)

// ConfigLoader returns the database section.
func (c *Config) ConfigLoader() *database.Config {
	return &c.Database
}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		Generator: generator.Config{
			BasePath:              ".",
			RepositoriesNamespace: generator.DefaultRepositoriesNamespace,
			ContractsNamespace:    generator.DefaultContractsNamespace,
			ModelsNamespace:       generator.DefaultModelsNamespace,
		},
		Log: LogConfig{Level: "info", Format: "text"},
		Database: database.Config{
			ConnectionConfig: *database.DefaultConnectionConfig(),
		},
	}
}

// SetDefaults registers every key of Default on v so environment variables
// are picked up for all of them.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("base_path", d.Generator.BasePath)
	v.SetDefault("repositories_namespace", d.Generator.RepositoriesNamespace)
	v.SetDefault("contracts_namespace", d.Generator.ContractsNamespace)
	v.SetDefault("models_namespace", d.Generator.ModelsNamespace)
	v.SetDefault("stubs_path", d.Generator.StubsPath)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)

	c := d.Database.ConnectionConfig
	v.SetDefault("database.connection.type", c.Type)
	v.SetDefault("database.connection.driver", c.Driver)
	v.SetDefault("database.connection.host", c.Host)
	v.SetDefault("database.connection.port", c.Port)
	v.SetDefault("database.connection.username", c.Username)
	v.SetDefault("database.connection.password", c.Password)
	v.SetDefault("database.connection.dbname", c.DBName)
	v.SetDefault("database.connection.sslmode", c.SSLMode)
	v.SetDefault("database.connection.max_idle_conns", c.MaxIdleConns)
	v.SetDefault("database.connection.max_open_conns", c.MaxOpenConns)
	v.SetDefault("database.connection.conn_max_lifetime", c.ConnMaxLifetime)
	v.SetDefault("database.connection.conn_max_idle_time", c.ConnMaxIdleTime)
	v.SetDefault("database.connection.connect_timeout", c.ConnectTimeout)
	v.SetDefault("database.connection.read_timeout", c.ReadTimeout)
	v.SetDefault("database.connection.write_timeout", c.WriteTimeout)
	v.SetDefault("database.connection.enable_reconnect", c.EnableReconnect)
	v.SetDefault("database.connection.reconnect_interval", c.ReconnectInterval)
	v.SetDefault("database.connection.max_reconnect_tries", c.MaxReconnectTries)
	v.SetDefault("database.connection.health_check_interval", c.HealthCheckInterval)
	v.SetDefault("database.connection.enable_query_log", c.EnableQueryLog)
	v.SetDefault("database.connection.slow_query_time", c.SlowQueryTime)
	v.SetDefault("database.migrate.enable_migrate_on_startup", d.Database.MigrateConfig.EnableMigrateOnStartup)
}

// New returns a viper instance reading files through fsys, with defaults and
// REPOKIT_ environment lookup ("log.level" is REPOKIT_LOG_LEVEL).
func New(fsys afero.Fs) *viper.Viper {
	v := viper.New()
	if fsys != nil {
		v.SetFs(fsys)
	}
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads file, or repokit.yaml from the working directory when file is
// empty, and decodes the merged settings. A missing repokit.yaml is not an
// error; a missing explicit file is.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// Publish writes the default configuration as YAML to path.
func Publish(fsys afero.Fs, path string, force bool) error {
	if path == "" {
		path = DefaultFile
	}
	if !force {
		exists, err := afero.Exists(fsys, path)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%s: %w", path, ErrConfigExists)
		}
	}
	out, err := yaml.Marshal(Default())
	if err != nil {
		return err
	}
	if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return afero.WriteFile(fsys, path, out, 0o644)
}
