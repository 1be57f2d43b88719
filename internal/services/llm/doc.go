// Package llm provides a client for OpenAI compatible chat completion APIs.
//
// Client.Complete sends a system and user prompt with per-call token and
// temperature limits and returns the reply text. The client tolerates the
// response variants seen from compatible servers (message, delta, and legacy
// text fields). Client.HealthCheck verifies the key and model with a tiny
// request. Calls are never retried; a failed request surfaces to the caller,
// which logs it and moves on.
package llm
