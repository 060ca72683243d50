// Package repository provides a generic repository abstraction built on Bun:
// list and find-or-fail lookups with column selection and eager loaded
// relations, soft delete aware trashed queries, create/update/delete,
// pagination and transaction binding.
package repository
