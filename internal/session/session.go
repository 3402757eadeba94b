// Package session holds the per-player mutable state shared by a player's
// two Tunnels (client->server and server->client). Every field that both
// tunnel workers touch is either an atomic or guarded by its own mutex — the
// session has no single coarse lock, matching the no-per-tunnel-lock model.
package session

import (
	"io"
	"sync"
	"sync/atomic"
	"time"
)

// Dimension mirrors the world the player currently occupies.
type Dimension int8

const (
	DimensionOverworld Dimension = 0
	DimensionNether    Dimension = -1
	DimensionEnd       Dimension = 1
)

// Coordinate is a block position, used by the chest sub-protocol and block
// permission checks.
type Coordinate struct {
	X, Y, Z int32
}

// Position is the player's last-known location and orientation.
type Position struct {
	X, Y, Z, Stance float64
	Yaw, Pitch      float32
}

// EncryptionContext is satisfied by internal/crypto.Context; declared here
// (rather than imported) to avoid a session<->crypto import cycle, since
// crypto implementations may want to read session state for diagnostics.
type EncryptionContext interface {
	SetPublicKey(b []byte)
	PublicKey() []byte
	SetChallengeToken(b []byte)
	CheckChallengeToken(b []byte) bool
	EncryptChallengeToken() []byte
	SetEncryptedSharedKey(b []byte)
	EncryptedSharedKey() []byte
	EncryptedReader(r io.Reader) io.Reader
	EncryptedWriter(w io.Writer) io.Writer
}

// ChestAction records what a player is attempting on the chest they most
// recently interacted with (spec §4.3 chest sub-protocol scratch state).
type ChestAction int

const (
	ChestActionNone ChestAction = iota
	ChestActionLock
	ChestActionUnlock
)

// Session is the per-player shared mutable record. A Session outlives
// either individual Tunnel; it is created once at login and closed once at
// disconnect.
type Session struct {
	EntityID int32

	nameMu sync.RWMutex
	name   string
	guest  bool

	dimension atomic.Int32 // Dimension

	posMu sync.RWMutex
	pos   Position

	muted atomic.Bool
	group atomic.Pointer[string]

	robot   atomic.Bool
	god     atomic.Bool
	ignores atomic.Bool // ignoresChestLocks
	instant atomic.Bool // instantDestroyEnabled

	kickMu     sync.Mutex
	kicked     bool
	kickReason string

	lastRead atomic.Int64 // unix nanoseconds

	inboundMu sync.Mutex
	inbound   []string // chat destined for the client, drained by server->client tunnel

	forwardMu sync.Mutex
	forward   []string // chat destined for the server, drained by client->server tunnel

	chestMu       sync.Mutex
	openingChest  *Coordinate
	placingChest  *Coordinate
	chestAction   ChestAction
	nextChestName *string

	destroyedBlocks atomic.Int64
	placedBlocks    atomic.Int64

	ClientEncryption EncryptionContext
	ServerEncryption EncryptionContext

	ip string
}

// New creates a Session for a freshly accepted connection. The name is not
// final until the handshake (opcode 0x02) succeeds.
func New(ip string) *Session {
	s := &Session{ip: ip}
	s.lastRead.Store(time.Now().UnixNano())
	return s
}

// IPAddress returns the client's address, used for pending-auth lookups.
func (s *Session) IPAddress() string { return s.ip }

// Name returns the player's current name (guest or authenticated).
func (s *Session) Name() string {
	s.nameMu.RLock()
	defer s.nameMu.RUnlock()
	return s.name
}

// SetName sets the player's final name. Per the handshake invariant, this
// must only be called once per connection.
func (s *Session) SetName(name string) {
	s.nameMu.Lock()
	s.name = name
	s.nameMu.Unlock()
}

// SetGuest marks the session as a guest login.
func (s *Session) SetGuest(guest bool) {
	s.nameMu.Lock()
	s.guest = guest
	s.nameMu.Unlock()
}

// IsGuest reports whether the player logged in as a guest.
func (s *Session) IsGuest() bool {
	s.nameMu.RLock()
	defer s.nameMu.RUnlock()
	return s.guest
}

// SetDimension records the player's current dimension.
func (s *Session) SetDimension(d Dimension) { s.dimension.Store(int32(d)) }

// Dimension returns the player's current dimension.
func (s *Session) Dimension() Dimension { return Dimension(s.dimension.Load()) }

// UpdatePosition records a new position (x, y, z, stance).
func (s *Session) UpdatePosition(x, y, z, stance float64) {
	s.posMu.Lock()
	s.pos.X, s.pos.Y, s.pos.Z, s.pos.Stance = x, y, z, stance
	s.posMu.Unlock()
}

// UpdateLook records a new look direction.
func (s *Session) UpdateLook(yaw, pitch float32) {
	s.posMu.Lock()
	s.pos.Yaw, s.pos.Pitch = yaw, pitch
	s.posMu.Unlock()
}

// Position returns a copy of the player's last-known position.
func (s *Session) Position() Position {
	s.posMu.RLock()
	defer s.posMu.RUnlock()
	return s.pos
}

// SetMuted sets the mute flag.
func (s *Session) SetMuted(v bool) { s.muted.Store(v) }

// IsMuted reports whether the player is muted.
func (s *Session) IsMuted() bool { return s.muted.Load() }

// SetGroup sets the player's permission group name.
func (s *Session) SetGroup(name string) { s.group.Store(&name) }

// Group returns the player's permission group name, or "" if unset.
func (s *Session) Group() string {
	p := s.group.Load()
	if p == nil {
		return ""
	}
	return *p
}

// SetRobot marks the session as a robot (a server-list ping connection that
// timed out before completing login). Robots are excluded from the idle
// watchdog.
func (s *Session) SetRobot(v bool) { s.robot.Store(v) }

// IsRobot reports whether the session is a robot.
func (s *Session) IsRobot() bool { return s.robot.Load() }

// SetGodMode toggles the target-immunity shield checked by the use-entity hook.
func (s *Session) SetGodMode(v bool) { s.god.Store(v) }

// GodModeEnabled reports whether the player is shielded from use-entity interactions.
func (s *Session) GodModeEnabled() bool { return s.god.Load() }

// SetIgnoresChestLocks toggles whether the player bypasses chest-lock checks.
func (s *Session) SetIgnoresChestLocks(v bool) { s.ignores.Store(v) }

// IgnoresChestLocks reports whether the player bypasses chest-lock checks.
func (s *Session) IgnoresChestLocks() bool { return s.ignores.Load() }

// SetInstantDestroy toggles whether the player's digging finish is
// immediately re-emitted with the destroyed-block status, skipping the
// upstream server's normal dig-speed timing.
func (s *Session) SetInstantDestroy(v bool) { s.instant.Store(v) }

// InstantDestroyEnabled reports whether instant destroy is enabled.
func (s *Session) InstantDestroyEnabled() bool { return s.instant.Load() }

// Kick flags the session for disconnection with reason. Only the first call
// takes effect; later calls are no-ops, matching the original's
// single-reason kick semantics.
func (s *Session) Kick(reason string) {
	s.kickMu.Lock()
	if !s.kicked {
		s.kicked = true
		s.kickReason = reason
	}
	s.kickMu.Unlock()
}

// IsKicked reports whether the session has been flagged for disconnection.
func (s *Session) IsKicked() bool {
	s.kickMu.Lock()
	defer s.kickMu.Unlock()
	return s.kicked
}

// KickReason returns the reason passed to Kick, if any.
func (s *Session) KickReason() string {
	s.kickMu.Lock()
	defer s.kickMu.Unlock()
	return s.kickReason
}

// Touch records the current time as the last successful packet read,
// resetting the idle watchdog.
func (s *Session) Touch() { s.lastRead.Store(time.Now().UnixNano()) }

// IsActive reports whether the session has read a packet within the idle
// window, or is a robot (robots are excluded from the idle watchdog).
func (s *Session) IsActive(idle time.Duration) bool {
	if s.IsRobot() {
		return true
	}
	last := time.Unix(0, s.lastRead.Load())
	return time.Since(last) < idle
}

// EnqueueInbound queues a chat message for delivery to the client. Safe for
// concurrent callers; drained only by the server->client tunnel.
func (s *Session) EnqueueInbound(msg string) {
	s.inboundMu.Lock()
	s.inbound = append(s.inbound, msg)
	s.inboundMu.Unlock()
}

// DrainInbound returns and clears all queued inbound chat messages.
func (s *Session) DrainInbound() []string {
	s.inboundMu.Lock()
	defer s.inboundMu.Unlock()
	if len(s.inbound) == 0 {
		return nil
	}
	out := s.inbound
	s.inbound = nil
	return out
}

// EnqueueForward queues a chat message for delivery to the server. Safe for
// concurrent callers; drained only by the client->server tunnel.
func (s *Session) EnqueueForward(msg string) {
	s.forwardMu.Lock()
	s.forward = append(s.forward, msg)
	s.forwardMu.Unlock()
}

// DrainForward returns and clears all queued forward chat messages.
func (s *Session) DrainForward() []string {
	s.forwardMu.Lock()
	defer s.forwardMu.Unlock()
	if len(s.forward) == 0 {
		return nil
	}
	out := s.forward
	s.forward = nil
	return out
}

// OpenedChest returns the coordinate of the chest the player currently has
// open, if any.
func (s *Session) OpenedChest() *Coordinate {
	s.chestMu.Lock()
	defer s.chestMu.Unlock()
	return s.openingChest
}

// SetOpenedChest records the coordinate of the chest the player is opening.
func (s *Session) SetOpenedChest(c *Coordinate) {
	s.chestMu.Lock()
	s.openingChest = c
	s.chestMu.Unlock()
}

// PlacingChest returns the coordinate of the chest block the player just
// placed but has not yet seen confirmed via a block-change packet.
func (s *Session) PlacingChest() *Coordinate {
	s.chestMu.Lock()
	defer s.chestMu.Unlock()
	return s.placingChest
}

// SetPlacingChest records the coordinate of a chest placement awaiting
// confirmation.
func (s *Session) SetPlacingChest(c *Coordinate) {
	s.chestMu.Lock()
	s.placingChest = c
	s.chestMu.Unlock()
}

// PlacedChest reports whether coord matches the pending chest placement and,
// if so, clears it — a one-shot check-and-clear used by the block-change hook.
func (s *Session) PlacedChest(coord Coordinate) bool {
	s.chestMu.Lock()
	defer s.chestMu.Unlock()
	if s.placingChest == nil || *s.placingChest != coord {
		return false
	}
	s.placingChest = nil
	return true
}

// SetChestAction records whether the player is attempting to lock or unlock
// the chest they currently have open.
func (s *Session) SetChestAction(a ChestAction) {
	s.chestMu.Lock()
	s.chestAction = a
	s.chestMu.Unlock()
}

// GetChestAction returns the player's currently attempted chest action.
func (s *Session) GetChestAction() ChestAction {
	s.chestMu.Lock()
	defer s.chestMu.Unlock()
	return s.chestAction
}

// SetNextChestName records the display name to apply to the next chest lock
// the player is granted.
func (s *Session) SetNextChestName(name *string) {
	s.chestMu.Lock()
	s.nextChestName = name
	s.chestMu.Unlock()
}

// NextChestName returns the display name queued for the next chest lock.
func (s *Session) NextChestName() *string {
	s.chestMu.Lock()
	defer s.chestMu.Unlock()
	return s.nextChestName
}

// DestroyedBlock increments the player's destroyed-block counter.
func (s *Session) DestroyedBlock() { s.destroyedBlocks.Add(1) }

// DestroyedBlocks returns the player's destroyed-block counter.
func (s *Session) DestroyedBlocks() int64 { return s.destroyedBlocks.Load() }

// PlacedBlock increments the player's placed-block counter.
func (s *Session) PlacedBlock() { s.placedBlocks.Add(1) }

// PlacedBlocks returns the player's placed-block counter.
func (s *Session) PlacedBlocks() int64 { return s.placedBlocks.Load() }
