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
	"embed"
	"io/fs"
	"path"
)

const (
	RepositoryStub = "repository.stub"
	InterfaceStub  = "interface.stub"
)

//go:embed stubs/*.stub
var embeddedStubs embed.FS

// StubNames lists the stubs shipped with the generator.
func StubNames() []string {
	return []string{RepositoryStub, InterfaceStub}
}

// DefaultStub returns the contents of an embedded stub.
func DefaultStub(name string) (string, error) {
	b, err := fs.ReadFile(embeddedStubs, path.Join("stubs", name))
	if err != nil {
		return "", err
	}
	return string(b), nil
}
