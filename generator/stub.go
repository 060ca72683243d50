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
	"regexp"
	"sort"
	"strings"
)

// Variables maps placeholder keys, without the surrounding '$', to values.
type Variables map[string]string

var placeholderPattern = regexp.MustCompile(`\$[A-Z][A-Z0-9_]*\$`)

// RenderStub replaces every $KEY$ in contents with vars[KEY]. Unknown
// placeholders are left untouched.
func RenderStub(contents string, vars Variables) string {
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	pairs := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		pairs = append(pairs, "$"+k+"$", vars[k])
	}
	return strings.NewReplacer(pairs...).Replace(contents)
}

// UnresolvedPlaceholders lists the distinct placeholders still present in
// contents, in sorted order.
func UnresolvedPlaceholders(contents string) []string {
	seen := make(map[string]struct{})
	for _, m := range placeholderPattern.FindAllString(contents, -1) {
		seen[m] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for m := range seen {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}
