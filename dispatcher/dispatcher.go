package dispatcher

import (
	"context"
	"errors"
	"net"

	"github.com/ytsig/sighelperd/internal/logger"
	"github.com/ytsig/sighelperd/pool"
	"github.com/ytsig/sighelperd/protocol"
	"github.com/ytsig/sighelperd/sig"
)

// Dispatcher wires the protocol codec to the daemon's shared state, pool,
// and updater, and drives the accept loop.
type Dispatcher struct {
	pool    *pool.Pool
	state   *sig.State
	updater *sig.Updater
	log     *logger.ComponentLogger
}

// New builds a Dispatcher bound to the given pool, state, and updater.
func New(p *pool.Pool, state *sig.State, updater *sig.Updater) *Dispatcher {
	return &Dispatcher{
		pool:    p,
		state:   state,
		updater: updater,
		log:     logger.WithComponent(logger.ComponentDispatcher),
	}
}

// Serve accepts connections from ln until ctx is done or ln is closed,
// handling each on its own goroutine. It returns nil on a clean shutdown
// (ctx done or the listener closed) and a non-nil error otherwise.
func (d *Dispatcher) Serve(ctx context.Context, ln net.Listener) error {
	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			d.log.Error("accept failed", map[string]interface{}{"error": err.Error()})
			return err
		}
		go d.handleConn(ctx, conn)
	}
}

// handleConn reads and decodes frames from conn until a decode error or a
// read error/EOF, spawning one goroutine per decoded request.
func (d *Dispatcher) handleConn(ctx context.Context, conn net.Conn) {
	defer func() { _ = conn.Close() }()

	sink := newWriteSink(conn)
	buf := make([]byte, 0, 4096)
	chunk := make([]byte, 4096)

	for {
		n, readErr := conn.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)

			for {
				req, consumed, decErr := protocol.Decode(buf)
				if decErr != nil {
					d.log.Warn("invalid frame, closing connection", map[string]interface{}{"error": decErr.Error()})
					return
				}
				if req == nil {
					break
				}
				buf = buf[consumed:]
				go d.handleRequest(ctx, sink, req)
			}
		}
		if readErr != nil {
			return
		}
	}
}

// handleRequest routes one decoded request to its handler. OpUnknown is
// silently dropped per the wire protocol's unknown-opcode contract.
func (d *Dispatcher) handleRequest(ctx context.Context, sink *writeSink, req *protocol.Request) {
	switch req.Opcode {
	case protocol.OpForceUpdate:
		d.handleForceUpdate(ctx, sink, req.RequestID)
	case protocol.OpDecryptNSignature:
		d.handleDecryptNSignature(ctx, sink, req.RequestID, req.Signature)
	case protocol.OpDecryptSignature:
		d.handleDecryptSignature(ctx, sink, req.RequestID, req.Signature)
	case protocol.OpGetSignatureTimestamp:
		d.handleGetSignatureTimestamp(sink, req.RequestID)
	case protocol.OpPlayerStatus:
		d.handlePlayerStatus(sink, req.RequestID)
	case protocol.OpPlayerUpdateTimestamp:
		d.handlePlayerUpdateTimestamp(sink, req.RequestID)
	case protocol.OpUnknown:
	}
}
