// Package config loads, normalizes, and validates Clipshare configuration.
//
// Configuration comes from a TOML file (~/.config/clipshare/config.toml or a
// clipshare.toml in the working directory), with environment overrides for the
// consumer credential. Defaults live in defaults.go and the embedded
// sample_config.toml documents every knob.
package config
