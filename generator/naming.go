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
	"strings"

	"github.com/iancoleman/strcase"
	"github.com/jinzhu/inflection"
)

// SingularClassName turns a model name such as "users" or "blog_posts" into
// the exported Go type name "User" or "BlogPost".
func SingularClassName(modelName string) string {
	name := strings.TrimSpace(modelName)
	if name == "" {
		return ""
	}
	return strcase.ToCamel(inflection.Singular(name))
}

// FileBaseName returns the snake_case file prefix for a class name.
func FileBaseName(className string) string {
	return strcase.ToSnake(className)
}

// packageName derives a Go package identifier from the last element of dir.
func packageName(dir string) string {
	dir = strings.TrimRight(strings.ReplaceAll(dir, "\\", "/"), "/")
	if i := strings.LastIndex(dir, "/"); i >= 0 {
		dir = dir[i+1:]
	}
	var b strings.Builder
	for _, r := range strings.ToLower(dir) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9' && b.Len() > 0) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
