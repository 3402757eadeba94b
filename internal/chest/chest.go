// Package chest implements the ChestRegistry collaborator: a persistent map
// from world coordinate to an optional lock, plus the adjacency relation
// double chests share. The registry itself is a collaborator interface per
// the spec's scope — persistent data stores for chest ownership are
// explicitly out of scope for the interceptor's design — so this package
// ships only a small, file-backed reference implementation good enough to
// exercise the chest sub-protocol end-to-end in tests.
package chest

import "github.com/vibeproxy/tunnel/internal/session"

// Coordinate is a block position.
type Coordinate = session.Coordinate

// Chest is a registered chest: either merely "open" (known, unlocked) or
// locked to an owner with a display name.
type Chest struct {
	Coord  Coordinate
	Owner  string
	Name   string
	Locked bool
}

// Registry is the ChestRegistry collaborator interface (spec §3, §6).
type Registry interface {
	IsChest(c Coordinate) bool
	IsLocked(c Coordinate) bool
	CanOpen(player string, c Coordinate) bool
	Adjacent(c Coordinate) *Chest
	ChestName(c Coordinate) string

	AddOpen(c Coordinate) error
	GiveLock(owner string, c Coordinate, name string) error
	Release(c Coordinate) error
	Unlock(c Coordinate) error
	Rename(c Coordinate, name string) error
}
