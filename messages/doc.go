// Package messages holds the conversation model: a Message is one chat
// entry with a role, an open-ended type and plain text content, and a
// Store is the append-ordered thread the session controller writes as a
// round-trip progresses.
//
// The type space is deliberately open. TypeText is the default; hosts
// append messages of custom types (a "todo-card", a rendered diff) and
// use Fields to carry whatever the renderer needs. The store hands out
// snapshot copies so callbacks can iterate a thread while the session
// keeps appending to it.
package messages
