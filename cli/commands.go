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
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tomoncle/repokit/config"
	"github.com/tomoncle/repokit/database"
)

func newConfigPublishCommand(a *app) *cobra.Command {
	var (
		path  string
		force bool
	)
	cmd := &cobra.Command{
		Use:   "config:publish",
		Short: "Write the default repokit.yaml",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Publish(a.fs, path, force); err != nil {
				return err
			}
			success(cmd, "Configuration published: %s", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "path", config.DefaultFile, "output file")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	return cmd
}

type dbCheckReport struct {
	Type   string                 `json:"type"`
	Health *database.HealthStatus `json:"health"`
	Stats  *database.DBStats      `json:"stats"`
}

func newDBCheckCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "db:check",
		Short: "Connect with the configured database and report its health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dbCfg := a.cfg.ConfigLoader()
			if _, err := database.InitDatabaseWithOptions(cmd.Context(), dbCfg, dbCfg.MigrateConfig.EnableMigrateOnStartup); err != nil {
				return err
			}
			defer func() { _ = database.CloseDB() }()

			report := dbCheckReport{
				Type:   dbCfg.ConnectionConfig.Type,
				Health: database.GetHealthStatus(cmd.Context()),
				Stats:  database.GetDatabaseStats(),
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(report); err != nil {
				return err
			}
			if !report.Health.Healthy {
				return fmt.Errorf("database unhealthy: %s", report.Health.LastError)
			}
			return nil
		},
	}
}
