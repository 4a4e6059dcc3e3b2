// Package config provides the memory service's configuration management:
// loading from a YAML file with environment-variable overrides, and the
// per-section defaults every other package builds on when no file or
// override is present.
package config
