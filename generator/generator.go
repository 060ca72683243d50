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


package generator

import (
	"context"
	"errors"
	"fmt"
	"go/format"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/tomoncle/repokit/utils"
)

// RepokitModule is the import path generated files use for the repository package.
const RepokitModule = "github.com/tomoncle/repokit"

const (
	DefaultRepositoriesNamespace = "internal/repositories/models"
	DefaultContractsNamespace    = "internal/repositories/contracts"
	DefaultModelsNamespace       = "internal/models"
)

// modelAliasOnConflict is used for the model import when its package name
// clashes with the package the file is generated into.
const modelAliasOnConflict = "entity"

var (
	// ErrFilesExist is returned when the repository or the contract file is
	// already present and Force is not set.
	ErrFilesExist = errors.New("files already exist")

	ErrInvalidModelName = errors.New("invalid model name")
)

// Config describes where generated files go. Namespaces are directories
// relative to BasePath.
type Config struct {
	BasePath              string `mapstructure:"base_path" yaml:"base_path"`
	RepositoriesNamespace string `mapstructure:"repositories_namespace" yaml:"repositories_namespace"`
	ContractsNamespace    string `mapstructure:"contracts_namespace" yaml:"contracts_namespace"`
	ModelsNamespace       string `mapstructure:"models_namespace" yaml:"models_namespace"`
	// StubsPath holds stub overrides; missing files fall back to the embedded stubs.
	StubsPath string `mapstructure:"stubs_path" yaml:"stubs_path"`
	Force     bool   `mapstructure:"-" yaml:"-"`
}

func (c Config) withDefaults() Config {
	if c.BasePath == "" {
		c.BasePath = "."
	}
	if c.RepositoriesNamespace == "" {
		c.RepositoriesNamespace = DefaultRepositoriesNamespace
	}
	if c.ContractsNamespace == "" {
		c.ContractsNamespace = DefaultContractsNamespace
	}
	if c.ModelsNamespace == "" {
		c.ModelsNamespace = DefaultModelsNamespace
	}
	return c
}

// Paths are the output files for one model.
type Paths struct {
	Repository string
	Interface  string
}

// Result reports what Generate produced.
type Result struct {
	Paths     Paths
	Variables Variables
	Created   []string
}

type Generator struct {
	cfg    Config
	fs     afero.Fs
	logger *logrus.Logger
}

// New returns a Generator writing through fsys. A nil fsys means the OS
// filesystem and a nil logger means the "generator" logger.
func New(cfg Config, fsys afero.Fs, logger *logrus.Logger) *Generator {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	if logger == nil {
		logger = utils.NewLogger("generator")
	}
	return &Generator{cfg: cfg.withDefaults(), fs: fsys, logger: logger}
}

func (g *Generator) Config() Config { return g.cfg }

// Variables returns the placeholder values for modelName.
func (g *Generator) Variables(modelName string) (Variables, error) {
	className := SingularClassName(modelName)
	if className == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidModelName, modelName)
	}
	module, err := ModulePath(g.fs, g.cfg.BasePath)
	if err != nil {
		return nil, fmt.Errorf("read module path: %w", err)
	}
	if module == "" {
		g.logger.WithField("base_path", g.cfg.BasePath).Warn("No go.mod found, namespaces are relative import paths")
	}

	reposPkg := packageName(g.cfg.RepositoriesNamespace)
	contractsPkg := packageName(g.cfg.ContractsNamespace)
	modelPkg := packageName(g.cfg.ModelsNamespace)
	if modelPkg == reposPkg || modelPkg == contractsPkg || modelPkg == "" {
		modelPkg = modelAliasOnConflict
	}

	return Variables{
		"REPOSITORIES_NAMESPACE": importPath(module, g.cfg.RepositoriesNamespace),
		"CONTRACTS_NAMESPACE":    importPath(module, g.cfg.ContractsNamespace),
		"CLASS_NAME":             className,
		"INTERFACE_NAME":         className,
		"MODEL_NAMESPACE":        importPath(module, g.cfg.ModelsNamespace),
		"MODEL_NAME":             className,
		"REPOSITORIES_PACKAGE":   reposPkg,
		"CONTRACTS_PACKAGE":      contractsPkg,
		"MODEL_PACKAGE":          modelPkg,
		"REPOKIT_MODULE":         RepokitModule,
	}, nil
}

// Paths returns the repository and contract file paths for modelName.
func (g *Generator) Paths(modelName string) Paths {
	base := FileBaseName(SingularClassName(modelName))
	return Paths{
		Repository: filepath.Join(g.cfg.BasePath, g.cfg.RepositoriesNamespace, base+"_repository.go"),
		Interface:  filepath.Join(g.cfg.BasePath, g.cfg.ContractsNamespace, base+"_repository_interface.go"),
	}
}

// Stub returns the named stub, preferring a copy under StubsPath.
func (g *Generator) Stub(name string) (string, error) {
	if g.cfg.StubsPath != "" {
		p := filepath.Join(g.cfg.StubsPath, name)
		if ok, err := afero.Exists(g.fs, p); err != nil {
			return "", err
		} else if ok {
			b, err := afero.ReadFile(g.fs, p)
			if err != nil {
				return "", err
			}
			return string(b), nil
		}
	}
	return DefaultStub(name)
}

func (g *Generator) render(name, file string, vars Variables) ([]byte, error) {
	stub, err := g.Stub(name)
	if err != nil {
		return nil, fmt.Errorf("load stub %s: %w", name, err)
	}
	contents := RenderStub(stub, vars)
	if left := UnresolvedPlaceholders(contents); len(left) > 0 {
		g.logger.WithField("stub", name).WithField("placeholders", left).Warn("Stub has unresolved placeholders")
	}
	src, err := format.Source([]byte(contents))
	if err != nil {
		return nil, fmt.Errorf("format %s: %w", file, err)
	}
	return src, nil
}

// Generate renders both stubs for modelName and writes them. Nothing is
// written when either file exists unless Force is set.
func (g *Generator) Generate(ctx context.Context, modelName string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	vars, err := g.Variables(modelName)
	if err != nil {
		return nil, err
	}
	paths := g.Paths(modelName)
	result := &Result{Paths: paths, Variables: vars}

	repoSrc, err := g.render(RepositoryStub, paths.Repository, vars)
	if err != nil {
		return result, err
	}
	ifaceSrc, err := g.render(InterfaceStub, paths.Interface, vars)
	if err != nil {
		return result, err
	}

	for _, dir := range []string{filepath.Dir(paths.Repository), filepath.Dir(paths.Interface)} {
		if err := g.fs.MkdirAll(dir, 0o755); err != nil {
			return result, fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	if !g.cfg.Force {
		repoExists, err := afero.Exists(g.fs, paths.Repository)
		if err != nil {
			return result, err
		}
		ifaceExists, err := afero.Exists(g.fs, paths.Interface)
		if err != nil {
			return result, err
		}
		if repoExists || ifaceExists {
			g.logger.WithField("repository", paths.Repository).WithField("contract", paths.Interface).Debug("Files already exist")
			return result, ErrFilesExist
		}
	}

	if err := afero.WriteFile(g.fs, paths.Repository, repoSrc, 0o644); err != nil {
		return result, fmt.Errorf("write %s: %w", paths.Repository, err)
	}
	result.Created = append(result.Created, paths.Repository)
	g.logger.WithField("path", paths.Repository).Info("Repository successfully created")

	if err := afero.WriteFile(g.fs, paths.Interface, ifaceSrc, 0o644); err != nil {
		return result, fmt.Errorf("write %s: %w", paths.Interface, err)
	}
	result.Created = append(result.Created, paths.Interface)
	g.logger.WithField("path", paths.Interface).Info("Contract successfully created")
	return result, nil
}

// PublishStubs copies the embedded stubs into dir so they can be customised.
// Existing files are kept unless Force is set. It returns the written paths.
func (g *Generator) PublishStubs(dir string) ([]string, error) {
	if dir == "" {
		dir = g.cfg.StubsPath
	}
	if dir == "" {
		return nil, errors.New("no stubs directory given")
	}
	if err := g.fs.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	var written []string
	for _, name := range StubNames() {
		target := filepath.Join(dir, name)
		if !g.cfg.Force {
			exists, err := afero.Exists(g.fs, target)
			if err != nil {
				return written, err
			}
			if exists {
				g.logger.WithField("path", target).Info("Stub already published")
				continue
			}
		}
		contents, err := DefaultStub(name)
		if err != nil {
			return written, err
		}
		if err := afero.WriteFile(g.fs, target, []byte(contents), 0o644); err != nil {
			return written, err
		}
		written = append(written, target)
		g.logger.WithField("path", target).Info("Stub published")
	}
	return written, nil
}
