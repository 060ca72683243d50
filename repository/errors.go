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
	"errors"
	"fmt"
)

var (
	ErrNotFound              = errors.New("record not found")
	ErrSoftDeleteUnsupported = errors.New("model does not support soft deletes")
	ErrNoPrimaryKey          = errors.New("model has no primary key")
	ErrDuplicate             = errors.New("duplicate key")
)

// NotFoundError is returned by the find-or-fail lookups. It matches
// ErrNotFound and unwraps to the driver error (usually sql.ErrNoRows).
type NotFoundError struct {
	Table string
	ID    any
	Err   error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: no record with id %v", e.Table, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}
