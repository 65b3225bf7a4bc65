// Package dispatcher accepts connections on a listener, decodes framed
// requests per connection, and routes each to a handler bound to the
// daemon's shared PlayerState, InterpreterPool, and Updater.
//
// Per connection: one goroutine reads and decodes frames; each decoded
// request is handled in its own goroutine so a slow DecryptSignature call
// cannot stall GetSignatureTimestamp on the same connection. All responses
// on a connection share one write-sink serialized by a mutex, so individual
// frames never interleave, though responses may be written out of request
// order. Decode errors terminate the connection; OpUnknown requests are
// silently dropped.
package dispatcher
