// Package pool runs the extracted nsig/sig decipher programs in a fixed set
// of isolated JavaScript interpreters.
//
// Each Interpreter holds two independent evaluation contexts, sig_context and
// nsig_context, so the two routines never share global state. A context's
// primary engine is goja; if goja fails to compile a freshly-extracted
// fragment (lookaround regex literals are the usual culprit) the context
// retries once against otto before giving up. Per-context caching means a
// context only re-parses a player's program the first time it sees that
// player_id; every later call against the same player_id reuses the already
// loaded runtime.
package pool
