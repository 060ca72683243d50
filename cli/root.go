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
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tomoncle/repokit/config"
	"github.com/tomoncle/repokit/generator"
	"github.com/tomoncle/repokit/utils"
)

// app carries the state shared by every command of one invocation.
type app struct {
	fs     afero.Fs
	v      *viper.Viper
	cfg    *config.Config
	logger *logrus.Logger

	configFile string
	envFiles   []string
}

// NewRootCommand returns the repokit command tree operating on the OS filesystem.
func NewRootCommand() *cobra.Command {
	return newRootCommand(afero.NewOsFs())
}

func newRootCommand(fsys afero.Fs) *cobra.Command {
	a := &app{fs: fsys, v: config.New(fsys)}

	root := &cobra.Command{
		Use:           "repokit",
		Short:         "Repository scaffolding for bun models",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (default ./repokit.yaml)")
	flags.StringSliceVar(&a.envFiles, "env-file", []string{".env"}, "dotenv files loaded before the configuration")
	flags.String("base-path", "", "project root the generated paths are relative to")
	flags.String("log-level", "", "log level: trace, debug, info, warn, error")
	_ = a.v.BindPFlag("base_path", flags.Lookup("base-path"))
	_ = a.v.BindPFlag("log.level", flags.Lookup("log-level"))

	root.AddCommand(
		newMakeRepositoryCommand(a),
		newStubPublishCommand(a),
		newConfigPublishCommand(a),
		newDBCheckCommand(a),
	)
	return root
}

func (a *app) init() error {
	if err := utils.LoadDotEnv(a.fs, a.envFiles...); err != nil {
		return fmt.Errorf("load env file: %w", err)
	}
	cfg, err := config.Load(a.v, a.configFile)
	if err != nil {
		return err
	}
	utils.ConfigureConsoleLogFormat(cfg.Log.Format)
	utils.ConfigureLogLevel(cfg.Log.Level)
	a.cfg = cfg
	a.logger = utils.NewLogger("repokit")
	return nil
}

func success(cmd *cobra.Command, format string, args ...interface{}) {
	fmt.Fprintln(cmd.OutOrStdout(), color.GreenString(format, args...))
}

func notice(cmd *cobra.Command, format string, args ...interface{}) {
	fmt.Fprintln(cmd.OutOrStdout(), color.YellowString(format, args...))
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	root := NewRootCommand()
	if err := root.Execute(); err != nil {
		// make:repository already reported the refusal.
		if errors.Is(err, generator.ErrFilesExist) {
			return 1
		}
		fmt.Fprintln(root.ErrOrStderr(), color.RedString("Error: %v", err))
		return 1
	}
	return 0
}
