// Package types holds the query filter, page request and pagination values
// shared by the repository and service layers.
package types
