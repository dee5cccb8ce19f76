// Package mastra adapts an agent backend speaking the Mastra wire
// protocol: JSON POST routes for single-shot calls and server-sent
// events on the /stream suffix for streaming ones.
package mastra
