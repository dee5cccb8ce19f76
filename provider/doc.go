// Package provider defines the vendor-agnostic gateway contract for
// talking to LLM backends: an immutable provider configuration, call
// parameters, a normalized response envelope and a tagged union of
// stream events. Vendor adapters live in subpackages and normalize
// their wire formats into these types; the gateway package dispatches
// to them over the closed set of provider kinds.
package provider
