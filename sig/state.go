package sig

import (
	"sync"
	"time"
)

// PlayerID identifies a player release by the 8-hex-digit token embedded in
// its asset path, e.g. /s/player/0004de42/player_ias.vflset/en_US/base.js.
type PlayerID uint32

// State is the single authoritative record of the currently known player
// artifacts. It is safe for concurrent use; Commit replaces all five
// content fields as one atomic transaction.
type State struct {
	mu sync.RWMutex

	playerID           PlayerID
	hasPlayer          bool
	nsigCode           string
	sigCode            string
	sigName            string
	signatureTimestamp uint64
	lastUpdate         time.Time
}

// Snapshot is an immutable copy of State taken under its lock.
type Snapshot struct {
	PlayerID           PlayerID
	HasPlayer          bool
	NsigCode           string
	SigCode            string
	SigName            string
	SignatureTimestamp uint64
	LastUpdate         time.Time
}

// NewState returns an uninitialized State (PlayerID 0, HasPlayer false).
func NewState() *State {
	return &State{}
}

// Snapshot returns a copy of the current state.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		PlayerID:           s.playerID,
		HasPlayer:          s.hasPlayer,
		NsigCode:           s.nsigCode,
		SigCode:            s.sigCode,
		SigName:            s.sigName,
		SignatureTimestamp: s.signatureTimestamp,
		LastUpdate:         s.lastUpdate,
	}
}

// CurrentPlayerID returns just the player id, without cloning the code
// strings; callers that only need to compare ids should prefer this over
// Snapshot to keep the critical section minimal.
func (s *State) CurrentPlayerID() PlayerID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.playerID
}

// Commit atomically replaces all player artifacts and marks the state
// initialized.
func (s *State) Commit(id PlayerID, nsigCode, sigCode, sigName string, signatureTimestamp uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playerID = id
	s.nsigCode = nsigCode
	s.sigCode = sigCode
	s.sigName = sigName
	s.signatureTimestamp = signatureTimestamp
	s.hasPlayer = true
	s.lastUpdate = time.Now()
}

// TouchLastUpdate refreshes LastUpdate without altering any other field. It
// is used on the "player id unchanged" path, where an update was attempted
// but nothing needed to change.
func (s *State) TouchLastUpdate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUpdate = time.Now()
}
