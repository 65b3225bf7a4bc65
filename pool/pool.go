package pool

import (
	"context"
	"runtime"
)

// Pool is a fixed-size set of Interpreters. Acquire blocks until one is
// free; FIFO fairness across waiters is not guaranteed.
type Pool struct {
	slots chan *Interpreter
	size  int
}

// New builds a Pool with size interpreters. size <= 0 means "use detected
// parallelism" (GOMAXPROCS, floored at 1).
func New(size int) *Pool {
	if size <= 0 {
		size = runtime.GOMAXPROCS(0)
	}
	if size < 1 {
		size = 1
	}
	p := &Pool{
		slots: make(chan *Interpreter, size),
		size:  size,
	}
	for i := 0; i < size; i++ {
		p.slots <- newInterpreter()
	}
	return p
}

// Size returns the number of interpreters in the pool.
func (p *Pool) Size() int {
	return p.size
}

// Acquire blocks until an Interpreter is available or ctx is done. The
// returned Handle must be released exactly once.
func (p *Pool) Acquire(ctx context.Context) (*Handle, error) {
	select {
	case in := <-p.slots:
		return &Handle{pool: p, interpreter: in}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Handle is a borrowed Interpreter. Release returns it to the pool; a
// Handle must not be used after Release.
type Handle struct {
	pool        *Pool
	interpreter *Interpreter
}

// Interpreter exposes the borrowed Interpreter for the duration of the
// Handle's lifetime.
func (h *Handle) Interpreter() *Interpreter {
	return h.interpreter
}

// Release returns the Interpreter to the pool. Safe to call exactly once.
func (h *Handle) Release() {
	h.pool.slots <- h.interpreter
}
