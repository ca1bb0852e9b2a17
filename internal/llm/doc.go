// Package llm is the AI fallback stage. It asks a language model provider
// (OpenAI or Anthropic) to read an utterance the deterministic rules could not
// resolve, then validates and coerces the JSON it returns. Calls are cached,
// rate limited and bounded by a timeout.
package llm
