// Package config loads, normalizes, and validates mediascribe configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// OPENAI_API_KEY and GEMINI_API_KEY. The Config type is built once at process
// start and handed to every stage constructor, so the data tree, source
// directories, extension lists, and credentials are resolved in one pass.
//
// Always obtain settings through this package so downstream code receives
// absolute paths, canonical extension lists, and clear validation errors.
package config
