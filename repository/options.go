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

package repository

import (
	"strings"

	"github.com/uptrace/bun"
)

// QueryOptions narrows a select: which columns to read and which relations
// to eager load.
type QueryOptions struct {
	Columns   []string
	Relations []string
}

type Option func(*QueryOptions)

// Columns limits the selected columns. "*" selects every column.
func Columns(cols ...string) Option {
	return func(o *QueryOptions) {
		o.Columns = append(o.Columns, cols...)
	}
}

// Relations eager loads the named bun relations, e.g. "Author" or "Author.Profile".
func Relations(names ...string) Option {
	return func(o *QueryOptions) {
		o.Relations = append(o.Relations, names...)
	}
}

func newQueryOptions(opts []Option) *QueryOptions {
	o := &QueryOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

// selectColumns returns nil when every column is wanted.
func (o *QueryOptions) selectColumns() []string {
	cols := make([]string, 0, len(o.Columns))
	for _, c := range o.Columns {
		c = strings.TrimSpace(c)
		if c == "" || c == "*" {
			continue
		}
		cols = append(cols, c)
	}
	if len(cols) == 0 {
		return nil
	}
	return cols
}

func (o *QueryOptions) apply(q *bun.SelectQuery) *bun.SelectQuery {
	if cols := o.selectColumns(); cols != nil {
		q = q.Column(cols...)
	}
	for _, rel := range o.Relations {
		if rel = strings.TrimSpace(rel); rel != "" {
			q = q.Relation(rel)
		}
	}
	return q
}
