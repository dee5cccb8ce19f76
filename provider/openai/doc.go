// Package openai adapts the direct OpenAI chat completions API to the
// provider gateway contract.
package openai
