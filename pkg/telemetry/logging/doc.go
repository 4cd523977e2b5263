// Package logging builds the structured slog logger used across Callisto.
//
// The logger supports JSON and text output, configurable levels, and
// redacts sensitive attribute values (API keys, tokens) before they
// reach the output stream.
package logging
