package dispatcher

import (
	"context"
	"errors"
	"time"

	"github.com/ytsig/sighelperd/protocol"
	"github.com/ytsig/sighelperd/sig"
)

func (d *Dispatcher) handleForceUpdate(ctx context.Context, sink *writeSink, requestID uint32) {
	status := protocol.StatusUpdated
	if err := d.updater.FetchUpdate(ctx); err != nil {
		if errors.Is(err, sig.ErrPlayerAlreadyUpdated) {
			status = protocol.StatusAlreadyCurrent
		} else {
			d.log.Error("force update failed", map[string]interface{}{"error": err.Error()})
			status = protocol.StatusFailed
		}
	}
	sink.write(protocol.EncodeForceUpdate(requestID, status))
}

func (d *Dispatcher) handleDecryptNSignature(ctx context.Context, sink *writeSink, requestID uint32, n string) {
	// An empty input yields an empty output without any evaluation.
	if n == "" {
		sink.write(protocol.EncodeDecrypted(requestID, ""))
		return
	}

	snap := d.state.Snapshot()
	if !snap.HasPlayer {
		sink.write(protocol.EncodeDecrypted(requestID, ""))
		return
	}

	if h := d.updater.Helper(); h != nil {
		out, err := h.DecodeNsig(ctx, uint32(snap.PlayerID), n)
		if err != nil {
			d.log.Error("helper nsig decode failed", map[string]interface{}{"error": err.Error()})
			sink.write(protocol.EncodeDecrypted(requestID, ""))
			return
		}
		sink.write(protocol.EncodeDecrypted(requestID, out))
		return
	}

	handle, err := d.pool.Acquire(ctx)
	if err != nil {
		return
	}
	defer handle.Release()

	out, err := handle.Interpreter().DecryptNsig(snap.PlayerID, snap.NsigCode, n)
	if err != nil {
		d.log.Error("nsig evaluation failed", map[string]interface{}{"error": err.Error()})
		sink.write(protocol.EncodeDecrypted(requestID, ""))
		return
	}
	sink.write(protocol.EncodeDecrypted(requestID, out))
}

func (d *Dispatcher) handleDecryptSignature(ctx context.Context, sink *writeSink, requestID uint32, s string) {
	// An empty input yields an empty output without any evaluation.
	if s == "" {
		sink.write(protocol.EncodeDecrypted(requestID, ""))
		return
	}

	snap := d.state.Snapshot()
	if !snap.HasPlayer {
		sink.write(protocol.EncodeDecrypted(requestID, ""))
		return
	}

	if h := d.updater.Helper(); h != nil {
		out, err := h.DecodeSig(ctx, uint32(snap.PlayerID), s)
		if err != nil {
			d.log.Error("helper sig decode failed", map[string]interface{}{"error": err.Error()})
			sink.write(protocol.EncodeDecrypted(requestID, ""))
			return
		}
		sink.write(protocol.EncodeDecrypted(requestID, out))
		return
	}

	// No sig function was found for this player; pass the input through
	// unchanged rather than treating it as a failure (SPEC_FULL 4.2.2).
	if snap.SigName == "" {
		sink.write(protocol.EncodeDecrypted(requestID, s))
		return
	}

	handle, err := d.pool.Acquire(ctx)
	if err != nil {
		return
	}
	defer handle.Release()

	out, err := handle.Interpreter().DecryptSig(snap.PlayerID, snap.SigCode, snap.SigName, s)
	if err != nil {
		d.log.Error("sig evaluation failed", map[string]interface{}{"error": err.Error()})
		sink.write(protocol.EncodeDecrypted(requestID, ""))
		return
	}
	sink.write(protocol.EncodeDecrypted(requestID, out))
}

func (d *Dispatcher) handleGetSignatureTimestamp(sink *writeSink, requestID uint32) {
	snap := d.state.Snapshot()
	sink.write(protocol.EncodeSignatureTimestamp(requestID, snap.SignatureTimestamp))
}

func (d *Dispatcher) handlePlayerStatus(sink *writeSink, requestID uint32) {
	snap := d.state.Snapshot()
	sink.write(protocol.EncodePlayerStatus(requestID, snap.HasPlayer, uint32(snap.PlayerID)))
}

func (d *Dispatcher) handlePlayerUpdateTimestamp(sink *writeSink, requestID uint32) {
	snap := d.state.Snapshot()
	var seconds uint64
	if !snap.LastUpdate.IsZero() {
		if elapsed := time.Since(snap.LastUpdate); elapsed > 0 {
			seconds = uint64(elapsed.Seconds())
		}
	}
	sink.write(protocol.EncodePlayerUpdateTimestamp(requestID, seconds))
}
