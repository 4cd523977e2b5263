// Package config loads, defaults, validates, and watches the Callisto
// configuration file.
//
// Configuration is YAML with environment variable overrides in the form
// CALLISTO_SECTION_FIELD (for example CALLISTO_AI_API_KEY). The loading
// sequence is: parse YAML, apply defaults, apply environment overrides,
// validate.
package config
