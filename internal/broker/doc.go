// Package broker distributes session events between a conversation and
// its observers through named topics. The local broker fans events out
// in process; the NATS broker carries the same wire-tagged events
// across process boundaries.
//
// Design decisions:
//   - Context-first: all operations accept context.Context
//   - Topic-based: events are distributed through named topics
//   - Hook integration: subscribers consume events through events.Hook
//   - Explicit subscription lifecycle with cleanup
//   - Safe for concurrent publishing and subscribing
package broker
