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

	"github.com/spf13/cobra"
	"github.com/tomoncle/repokit/generator"
)

func newMakeRepositoryCommand(a *app) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "make:repository <model_name>",
		Short: "Make repository from model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			genCfg := a.cfg.Generator
			genCfg.Force = force
			g := generator.New(genCfg, a.fs, a.logger)

			res, err := g.Generate(cmd.Context(), args[0])
			if errors.Is(err, generator.ErrFilesExist) {
				notice(cmd, "Files already exist")
				return err
			}
			if err != nil {
				return err
			}
			success(cmd, "Repository successfully created: %s", res.Paths.Repository)
			success(cmd, "Contract successfully created: %s", res.Paths.Interface)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite existing files")
	return cmd
}

func newStubPublishCommand(a *app) *cobra.Command {
	var (
		dir   string
		force bool
	)
	cmd := &cobra.Command{
		Use:   "stub:publish",
		Short: "Copy the repository stubs into the project for customisation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			genCfg := a.cfg.Generator
			genCfg.Force = force
			if dir == "" {
				dir = genCfg.StubsPath
			}
			if dir == "" {
				dir = "stubs"
			}
			written, err := generator.New(genCfg, a.fs, a.logger).PublishStubs(dir)
			if err != nil {
				return err
			}
			if len(written) == 0 {
				notice(cmd, "Stubs already published in %s", dir)
				return nil
			}
			for _, p := range written {
				success(cmd, "Published %s", p)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "target directory (default stubs_path or ./stubs)")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite existing stubs")
	return cmd
}
