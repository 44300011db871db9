// Package config loads the jobtrail settings.
//
// Settings are layered: built-in defaults, then an optional YAML file, then
// JOBTRAIL_* environment variables (a .env file is read first when present).
// Command line flags are applied by the caller on top of the result. The
// merged value is checked with struct tag validation.
package config
