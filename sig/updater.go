package sig

import (
	"context"
	"sync"

	"github.com/ytsig/sighelperd/internal/helper"
	"github.com/ytsig/sighelperd/internal/logger"
)

// Updater orchestrates fetching the current player, extracting its
// obfuscation routines, and committing them to a State.
type Updater struct {
	fetcher *Fetcher
	state   *State
	log     *logger.ComponentLogger

	// updateMu serializes an entire FetchUpdate call, not just State's own
	// internal field mutex: two concurrent ForceUpdate requests must never
	// both observe a stale player id, both fetch/extract, and both commit.
	// Held across the whole fetch-check-commit span so the second caller to
	// arrive sees the first caller's commit before deciding to fetch at all.
	updateMu sync.Mutex

	// helper, when non-nil, delegates extraction to an external process
	// instead of running the regex/brace-balanced pipeline in Extract.
	helper *helper.Client
}

// NewUpdater builds an Updater that performs extraction in-process.
func NewUpdater(fetcher *Fetcher, state *State) *Updater {
	return &Updater{
		fetcher: fetcher,
		state:   state,
		log:     logger.WithComponent(logger.ComponentUpdater),
	}
}

// WithHelper switches the updater into external-helper mode: only the
// player id and signature timestamp are recorded in State, and per-call
// decryption is delegated to h by the caller (see dispatcher).
func (u *Updater) WithHelper(h *helper.Client) *Updater {
	u.helper = h
	return u
}

// Helper returns the configured external helper, or nil if none.
func (u *Updater) Helper() *helper.Client {
	return u.helper
}

// State returns the updater's backing state, for read access by callers
// that only hold the Updater.
func (u *Updater) State() *State {
	return u.state
}

// FetchUpdate performs one update cycle: discover the current player id,
// and if it differs from the one already recorded, fetch and extract (or,
// in helper mode, fetch only the signature timestamp) and commit.
// ErrPlayerAlreadyUpdated is returned, not treated as failure, when the id
// is unchanged.
func (u *Updater) FetchUpdate(ctx context.Context) error {
	u.updateMu.Lock()
	defer u.updateMu.Unlock()

	landing, err := u.fetcher.FetchLanding(ctx)
	if err != nil {
		u.log.Error("fetch landing page failed", map[string]interface{}{"error": err.Error()})
		return err
	}

	id, err := ParsePlayerID(landing)
	if err != nil {
		u.log.Error("could not match player id", map[string]interface{}{"error": err.Error()})
		return err
	}

	if id == u.state.CurrentPlayerID() && u.state.Snapshot().HasPlayer {
		u.state.TouchLastUpdate()
		u.log.Debug("player already current", map[string]interface{}{"player_id": uint32(id)})
		return ErrPlayerAlreadyUpdated
	}

	if u.helper != nil {
		ts, err := u.helper.SignatureTimestamp(ctx, uint32(id))
		if err != nil {
			u.log.Error("helper signature timestamp failed", map[string]interface{}{"error": err.Error()})
			return NewError(ErrCodeNsigRegexFailed, "helper could not determine signature timestamp", err.Error())
		}
		u.state.Commit(id, "", "", "", ts)
		u.log.Info("player updated via helper", map[string]interface{}{"player_id": uint32(id)})
		return nil
	}

	playerJS, err := u.fetcher.FetchPlayer(ctx, id)
	if err != nil {
		u.log.Error("fetch player.js failed", map[string]interface{}{"error": err.Error()})
		return err
	}

	extracted, err := Extract(playerJS)
	if err != nil {
		u.log.Error("extraction failed", map[string]interface{}{"error": err.Error(), "player_id": uint32(id)})
		return err
	}

	u.state.Commit(id, extracted.NsigCode, extracted.SigCode, extracted.SigName, extracted.SignatureTimestamp)
	u.log.Info("player updated", map[string]interface{}{
		"player_id":           uint32(id),
		"has_sig":             extracted.SigName != "",
		"signature_timestamp": extracted.SignatureTimestamp,
	})
	return nil
}
