package tunnel

import (
	"io"

	"github.com/vibeproxy/tunnel/internal/config"
	"github.com/vibeproxy/tunnel/internal/grammar"
	"github.com/vibeproxy/tunnel/internal/session"
	"github.com/vibeproxy/tunnel/internal/wire"
)

// blockDestroyedStatus is the digging-status value meaning "finished
// destroying the block", per the grammar's status enum.
const blockDestroyedStatus = int8(2)

// dropItemDiggingStatus is the synthetic digging status this proxy emits to
// resync a client's held-item state after silently dropping a block
// placement (spec.md's scenario S5).
const dropItemDiggingStatus = int8(4)

// chestItemID is the item id that places a chest block.
const chestItemID = int16(54)

// handlePlayerDigging enforces block-use/destroy permissions and chest-lock
// protection on the client->server leg; the server->client leg carries no
// policy-relevant fields and is forwarded byte-exact.
func (t *Tunnel) handlePlayerDigging(r io.Reader, w io.Writer, opByte byte) error {
	if t.isServerTunnel {
		return t.copyFixed(r, w, opByte, 11)
	}

	status, err := wire.ReadI8(r)
	if err != nil {
		return err
	}
	x, err := wire.ReadI32(r)
	if err != nil {
		return err
	}
	y, err := wire.ReadI8(r)
	if err != nil {
		return err
	}
	z, err := wire.ReadI32(r)
	if err != nil {
		return err
	}
	face, err := wire.ReadI8(r)
	if err != nil {
		return err
	}
	coord := session.Coordinate{X: x, Y: int32(y), Z: z}

	if status == 0 || status == blockDestroyedStatus {
		if t.shared.Perm.BlockPermission(t.session, coord, -1) == config.PermissionDeny {
			if status == 0 {
				t.session.EnqueueInbound("§cYou can not use this block here!")
			} else {
				t.session.EnqueueInbound("§cYou can not destroy this block here!")
			}
			return nil
		}
	}

	locked := t.shared.Chests.IsLocked(coord)
	if locked && !t.session.IgnoresChestLocks() && !t.shared.Chests.CanOpen(t.session.Name(), coord) {
		return nil
	}

	if err := t.writeDigging(w, opByte, status, x, y, z, face); err != nil {
		return err
	}
	if t.session.InstantDestroyEnabled() {
		if err := t.writeDigging(w, opByte, blockDestroyedStatus, x, y, z, face); err != nil {
			return err
		}
	}

	if status == blockDestroyedStatus {
		if locked {
			_ = t.shared.Chests.Release(coord)
		}
		t.session.DestroyedBlock()
	}
	return nil
}

func (t *Tunnel) writeDigging(w io.Writer, opByte byte, status int8, x int32, y int8, z int32, face int8) error {
	if _, err := wire.WriteU8(w, opByte); err != nil {
		return err
	}
	if _, err := wire.WriteI8(w, status); err != nil {
		return err
	}
	if _, err := wire.WriteI32(w, x); err != nil {
		return err
	}
	if _, err := wire.WriteI8(w, y); err != nil {
		return err
	}
	if _, err := wire.WriteI32(w, z); err != nil {
		return err
	}
	_, err := wire.WriteI8(w, face)
	return err
}

// handlePlayerBlockPlacement enforces use/place permissions and
// adjacent-chest-lock protection. A denied placement is dropped and a
// synthetic digging packet resyncs the client's held item, matching the
// desync-prevention behavior the grammar's placement opcode requires.
func (t *Tunnel) handlePlayerBlockPlacement(r io.Reader, w io.Writer, opByte byte) error {
	x, err := wire.ReadI32(r)
	if err != nil {
		return err
	}
	y, err := wire.ReadI8(r)
	if err != nil {
		return err
	}
	z, err := wire.ReadI32(r)
	if err != nil {
		return err
	}
	direction, err := wire.ReadI8(r)
	if err != nil {
		return err
	}
	dropItem, err := wire.ReadI16(r)
	if err != nil {
		return err
	}

	var itemCount int8
	var uses int16
	var itemData []byte
	hasItem := dropItem != -1
	if hasItem {
		if itemCount, err = wire.ReadI8(r); err != nil {
			return err
		}
		if uses, err = wire.ReadI16(r); err != nil {
			return err
		}
		dataLength, err := wire.ReadI16(r)
		if err != nil {
			return err
		}
		if dataLength != -1 {
			itemData, err = wire.ReadSpan(r, int(dataLength))
			if err != nil {
				return err
			}
		}
	}

	cursorX, err := wire.ReadI8(r)
	if err != nil {
		return err
	}
	cursorY, err := wire.ReadI8(r)
	if err != nil {
		return err
	}
	cursorZ, err := wire.ReadI8(r)
	if err != nil {
		return err
	}

	coord := session.Coordinate{X: x, Y: int32(y), Z: z}
	write := true

	if !t.isServerTunnel && !t.shared.Chests.IsChest(coord) {
		if t.shared.Perm.BlockPermission(t.session, coord, dropItem) == config.PermissionDeny {
			if hasItem {
				t.session.EnqueueInbound("§cYou can not place this block here!")
			} else {
				t.session.EnqueueInbound("§cYou can not use this block here!")
			}
			write = false
		} else if dropItem == chestItemID {
			target := adjacentFace(coord, direction)
			adjacent := t.shared.Chests.Adjacent(target)
			if adjacent != nil && adjacent.Locked && adjacent.Owner != t.session.Name() {
				t.session.EnqueueInbound("§cThe adjacent chest is locked!")
				write = false
			} else {
				t.session.SetPlacingChest(&target)
			}
		}
	}

	if !write {
		return t.writeDigging(w, byte(grammar.PlayerDigging), dropItemDiggingStatus, x, y, z, direction)
	}

	if _, err := wire.WriteU8(w, opByte); err != nil {
		return err
	}
	if _, err := wire.WriteI32(w, x); err != nil {
		return err
	}
	if _, err := wire.WriteI8(w, y); err != nil {
		return err
	}
	if _, err := wire.WriteI32(w, z); err != nil {
		return err
	}
	if _, err := wire.WriteI8(w, direction); err != nil {
		return err
	}
	if _, err := wire.WriteI16(w, dropItem); err != nil {
		return err
	}
	if hasItem {
		if _, err := wire.WriteI8(w, itemCount); err != nil {
			return err
		}
		if _, err := wire.WriteI16(w, uses); err != nil {
			return err
		}
		if itemData != nil {
			if _, err := wire.WriteI16(w, int16(len(itemData))); err != nil {
				return err
			}
			if _, err := wire.WriteSpan(w, itemData); err != nil {
				return err
			}
		} else {
			if _, err := wire.WriteI16(w, -1); err != nil {
				return err
			}
		}
		if dropItem <= 94 && direction >= 0 {
			t.session.PlacedBlock()
		}
	}
	if _, err := wire.WriteI8(w, cursorX); err != nil {
		return err
	}
	if _, err := wire.WriteI8(w, cursorY); err != nil {
		return err
	}
	if _, err := wire.WriteI8(w, cursorZ); err != nil {
		return err
	}

	t.session.SetOpenedChest(&coord)
	return nil
}

// adjacentFace returns the coordinate of the block adjacent to coord in the
// direction the placement's face byte names.
func adjacentFace(coord session.Coordinate, direction int8) session.Coordinate {
	switch direction {
	case 0:
		coord.Y--
	case 1:
		coord.Y++
	case 2:
		coord.Z--
	case 3:
		coord.Z++
	case 4:
		coord.X--
	case 5:
		coord.X++
	}
	return coord
}

// handleBlockChange mirrors a block-change notification and, when it
// confirms a chest block at a coordinate this player is awaiting
// confirmation for, locks it via lockChest.
func (t *Tunnel) handleBlockChange(r io.Reader, w io.Writer, opByte byte) error {
	x, err := wire.ReadI32(r)
	if err != nil {
		return err
	}
	y, err := wire.ReadI8(r)
	if err != nil {
		return err
	}
	z, err := wire.ReadI32(r)
	if err != nil {
		return err
	}
	blockType, err := wire.ReadI16(r)
	if err != nil {
		return err
	}
	metadata, err := wire.ReadI8(r)
	if err != nil {
		return err
	}

	coord := session.Coordinate{X: x, Y: int32(y), Z: z}
	if blockType == chestItemID && t.session.PlacedChest(coord) {
		t.lockChest(coord)
	}

	if _, err := wire.WriteU8(w, opByte); err != nil {
		return err
	}
	if _, err := wire.WriteI32(w, x); err != nil {
		return err
	}
	if _, err := wire.WriteI8(w, y); err != nil {
		return err
	}
	if _, err := wire.WriteI32(w, z); err != nil {
		return err
	}
	if _, err := wire.WriteI16(w, blockType); err != nil {
		return err
	}
	_, err = wire.WriteI8(w, metadata)
	return err
}

// lockChest implements the chest-pairing lock transfer: a chest next to a
// locked neighbor joins that lock (same owner, same display name); otherwise
// it is locked to this player under the requested name if the player has
// asked for a lock, or registered as a single open chest.
func (t *Tunnel) lockChest(coord session.Coordinate) {
	adjacent := t.shared.Chests.Adjacent(coord)

	switch {
	case adjacent != nil && adjacent.Locked:
		_ = t.shared.Chests.GiveLock(adjacent.Owner, coord, adjacent.Name)
	case t.session.GetChestAction() == session.ChestActionLock:
		name := ""
		if next := t.session.NextChestName(); next != nil {
			name = *next
		}
		_ = t.shared.Chests.GiveLock(t.session.Name(), coord, name)
	default:
		_ = t.shared.Chests.AddOpen(coord)
	}
}

// handleOpenWindow enforces chest permissions and the lock/unlock
// sub-protocol. A denied open is rewritten to an immediate close-window
// packet rather than forwarded.
func (t *Tunnel) handleOpenWindow(r io.Reader, w io.Writer, opByte byte) error {
	windowID, err := wire.ReadI8(r)
	if err != nil {
		return err
	}
	invType, err := wire.ReadI8(r)
	if err != nil {
		return err
	}
	title, err := wire.ReadUTF16(r)
	if err != nil {
		return err
	}
	number, err := wire.ReadI8(r)
	if err != nil {
		return err
	}
	provided, err := wire.ReadBool(r)
	if err != nil {
		return err
	}
	var unknown int32
	if invType == 11 {
		if unknown, err = wire.ReadI32(r); err != nil {
			return err
		}
	}

	allow := true
	if invType == 0 {
		allow, title = t.evaluateChestOpen(title)
	}

	if !allow {
		if _, err := wire.WriteU8(w, 0x65); err != nil {
			return err
		}
		_, err := wire.WriteI8(w, windowID)
		return err
	}

	if _, err := wire.WriteU8(w, opByte); err != nil {
		return err
	}
	if _, err := wire.WriteI8(w, windowID); err != nil {
		return err
	}
	if _, err := wire.WriteI8(w, invType); err != nil {
		return err
	}
	if _, err := wire.WriteUTF16(w, title); err != nil {
		return err
	}
	if _, err := wire.WriteI8(w, number); err != nil {
		return err
	}
	if _, err := wire.WriteBool(w, provided); err != nil {
		return err
	}
	if invType == 11 {
		_, err := wire.WriteI32(w, unknown)
		return err
	}
	return nil
}

// evaluateChestOpen runs the chest-specific part of the open-window hook:
// registering a freshly seen chest, checking block permission, and
// resolving the lock/unlock action the player queued via SetChestAction.
func (t *Tunnel) evaluateChestOpen(fallbackTitle string) (allow bool, title string) {
	coord := t.session.OpenedChest()
	if coord == nil {
		return true, fallbackTitle
	}

	adjacent := t.shared.Chests.Adjacent(*coord)
	if !t.shared.Chests.IsChest(*coord) {
		if adjacent == nil {
			_ = t.shared.Chests.AddOpen(*coord)
		} else {
			_ = t.shared.Chests.GiveLock(adjacent.Owner, *coord, adjacent.Name)
		}
	}

	if t.shared.Perm.BlockPermission(t.session, *coord, -1) == config.PermissionDeny {
		t.session.EnqueueInbound("§cYou can't use chests here")
		return false, fallbackTitle
	}
	if adjacent != nil && t.shared.Perm.BlockPermission(t.session, adjacent.Coord, -1) == config.PermissionDeny {
		t.session.EnqueueInbound("§cYou can't use chests here")
		return false, fallbackTitle
	}

	canOpen := t.shared.Chests.CanOpen(t.session.Name(), *coord) || t.session.IgnoresChestLocks()
	if !canOpen {
		t.session.EnqueueInbound("§cThis chest is locked!")
		return false, fallbackTitle
	}

	if t.shared.Chests.IsLocked(*coord) {
		if t.session.GetChestAction() == session.ChestActionUnlock {
			_ = t.shared.Chests.Unlock(*coord)
			t.session.SetChestAction(session.ChestActionNone)
			t.session.EnqueueInbound("§7This chest is no longer locked!")
			return true, "Open Chest"
		}
		return true, t.shared.Chests.ChestName(*coord)
	}

	title = "Open Chest"
	if t.session.GetChestAction() == session.ChestActionLock {
		t.lockChest(*coord)
		if next := t.session.NextChestName(); next != nil && *next != "" {
			title = *next
		} else {
			title = "Locked Chest"
		}
	}
	return true, title
}

// handleCloseWindow mirrors a window close.
func (t *Tunnel) handleCloseWindow(r io.Reader, w io.Writer, opByte byte) error {
	return t.copyFixed(r, w, opByte, 1)
}
