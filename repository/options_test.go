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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectColumns(t *testing.T) {
	assert.Nil(t, newQueryOptions(nil).selectColumns())
	assert.Nil(t, newQueryOptions([]Option{Columns("*")}).selectColumns())
	assert.Nil(t, newQueryOptions([]Option{Columns(" ", "*")}).selectColumns())
	assert.Equal(t, []string{"id", "title"}, newQueryOptions([]Option{Columns("id"), Columns(" title ")}).selectColumns())
}

func TestRelationsAccumulate(t *testing.T) {
	o := newQueryOptions([]Option{Relations("Author"), nil, Relations("Tags", "Author.Profile")})
	assert.Equal(t, []string{"Author", "Tags", "Author.Profile"}, o.Relations)
}
