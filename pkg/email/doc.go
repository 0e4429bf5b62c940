// Package email provides the outbound email transport for the dispatch
// engine: a Postmark-backed sender for production, a logging dev sender
// for local development, and the bilingual HTML rendering of
// notification messages.
package email
