// Package cli wires the repokit commands: make:repository, stub:publish,
// config:publish and db:check.
package cli
