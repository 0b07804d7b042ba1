// Package config provides layered configuration for clozet.
//
// Values are resolved from lowest to highest priority:
//
//  1. Built-in defaults (Default)
//  2. A configuration file (TOML with @include support, or YAML)
//  3. Environment variables prefixed with CLOZET_
//  4. Command-line overrides
//
// Each layer is read into a generic map by the loader package, the maps
// are deep-merged, and the result is decoded into a typed Config and
// validated.
//
// Example TOML file:
//
//	[worksheet]
//	title = "The Water Cycle"
//	word_bank = true
//	gap_length = 12
//
//	[ui]
//	selected = "#f5c542"
package config
