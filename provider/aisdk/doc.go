// Package aisdk routes "vendor/model" identifiers to the matching
// direct-vendor adapter, building each vendor client lazily on first
// use.
package aisdk
