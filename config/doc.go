// Package config loads repokit settings from defaults, an optional
// repokit.yaml, REPOKIT_* environment variables and command line flags.
package config
