// Package database provides connection management for MySQL, PostgreSQL
// (lib/pq or pgx) and SQLite on top of Bun, together with table creation for
// registered models, query hooks, driver error classification, health checks
// and the logger facade used by the rest of the module.
package database
