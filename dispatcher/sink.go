package dispatcher

import (
	"io"
	"sync"
)

// writeSink serializes writes from concurrently-handled requests on the
// same connection so that individual response frames are never interleaved.
type writeSink struct {
	mu sync.Mutex
	w  io.Writer
}

func newWriteSink(w io.Writer) *writeSink {
	return &writeSink{w: w}
}

// write sends frame atomically. Errors are swallowed here: a write failing
// because the peer went away is indistinguishable from the read loop's own
// imminent detection of the same thing, and the read loop is what tears the
// connection down.
func (s *writeSink) write(frame []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = s.w.Write(frame)
}
