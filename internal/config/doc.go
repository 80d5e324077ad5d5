// Package config handles YAML configuration loading with environment variable substitution.
//
// Configuration files support ${VAR} syntax for environment variable interpolation.
// A .env file next to the config file, when present, is loaded into the process
// environment first; variables already set in the environment win.
//
// Any validation failure wraps ErrInvalid and is fatal at startup: the process
// refuses to run with a partial or undefined (exchange, symbol) set.
package config
