// Package anthropic adapts the direct Anthropic messages API to the
// provider gateway contract.
package anthropic
