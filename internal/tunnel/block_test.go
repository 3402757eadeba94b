package tunnel

import (
	"bytes"
	"testing"

	"github.com/vibeproxy/tunnel/internal/config"
	"github.com/vibeproxy/tunnel/internal/grammar"
	"github.com/vibeproxy/tunnel/internal/session"
	"github.com/vibeproxy/tunnel/internal/wire"
)

func diggingPacket(status int8, x int32, y int8, z int32, face int8) []byte {
	var buf bytes.Buffer
	buf.WriteByte(byte(grammar.PlayerDigging))
	_, _ = wire.WriteI8(&buf, status)
	_, _ = wire.WriteI32(&buf, x)
	_, _ = wire.WriteI8(&buf, y)
	_, _ = wire.WriteI32(&buf, z)
	_, _ = wire.WriteI8(&buf, face)
	return buf.Bytes()
}

func TestDiggingDeniedByPermissionIsDroppedWithWarning(t *testing.T) {
	h := newHarness(false, diggingPacket(blockDestroyedStatus, 1, 2, 3, 0))
	h.perm.result = config.PermissionDeny

	if err := h.dispatchAndFlush(t); err != nil {
		t.Fatalf("dispatchOne: %v", err)
	}
	if h.out.Len() != 0 {
		t.Fatalf("expected denied dig to be dropped, got %d bytes", h.out.Len())
	}
	if len(h.sess.DrainInbound()) != 1 {
		t.Fatal("expected one denial warning")
	}
}

func TestDiggingLockedChestIsDroppedSilently(t *testing.T) {
	coord := session.Coordinate{X: 1, Y: 2, Z: 3}
	h := newHarness(false, diggingPacket(blockDestroyedStatus, coord.X, int8(coord.Y), coord.Z, 0))
	if err := h.chests.GiveLock("Other", coord, "Locked Chest"); err != nil {
		t.Fatalf("GiveLock: %v", err)
	}

	if err := h.dispatchAndFlush(t); err != nil {
		t.Fatalf("dispatchOne: %v", err)
	}
	if h.out.Len() != 0 {
		t.Fatalf("expected locked-chest dig to be dropped, got %d bytes", h.out.Len())
	}
	if len(h.sess.DrainInbound()) != 0 {
		t.Fatal("a locked-chest denial is silent, unlike a permission denial")
	}
}

func TestDestroyingLockedChestReleasesIt(t *testing.T) {
	coord := session.Coordinate{X: 1, Y: 2, Z: 3}
	h := newHarness(false, diggingPacket(blockDestroyedStatus, coord.X, int8(coord.Y), coord.Z, 0))
	h.sess.SetName("Owner")
	if err := h.chests.GiveLock("Owner", coord, "My Chest"); err != nil {
		t.Fatalf("GiveLock: %v", err)
	}

	if err := h.dispatchAndFlush(t); err != nil {
		t.Fatalf("dispatchOne: %v", err)
	}
	if h.chests.IsChest(coord) {
		t.Fatal("expected the destroyed chest to be released from the registry")
	}
	if h.sess.DestroyedBlocks() != 1 {
		t.Fatalf("DestroyedBlocks = %d, want 1", h.sess.DestroyedBlocks())
	}
}

func TestInstantDestroyEmitsTwoDiggingPackets(t *testing.T) {
	h := newHarness(false, diggingPacket(blockDestroyedStatus, 1, 2, 3, 0))
	h.sess.SetInstantDestroy(true)

	if err := h.dispatchAndFlush(t); err != nil {
		t.Fatalf("dispatchOne: %v", err)
	}
	count := bytes.Count(h.out.Bytes(), []byte{byte(grammar.PlayerDigging)})
	if count != 2 {
		t.Fatalf("wrote %d digging packets, want 2 for instant destroy", count)
	}
}

func blockPlacementPacket(x int32, y int8, z int32, direction int8, dropItem int16) []byte {
	var buf bytes.Buffer
	buf.WriteByte(byte(grammar.PlayerBlockPlacement))
	_, _ = wire.WriteI32(&buf, x)
	_, _ = wire.WriteI8(&buf, y)
	_, _ = wire.WriteI32(&buf, z)
	_, _ = wire.WriteI8(&buf, direction)
	_, _ = wire.WriteI16(&buf, dropItem)
	if dropItem != -1 {
		_, _ = wire.WriteI8(&buf, 1)  // count
		_, _ = wire.WriteI16(&buf, 0) // uses
		_, _ = wire.WriteI16(&buf, -1)
	}
	_, _ = wire.WriteI8(&buf, 0)
	_, _ = wire.WriteI8(&buf, 0)
	_, _ = wire.WriteI8(&buf, 0)
	return buf.Bytes()
}

func TestBlockPlacementDeniedResyncsWithDiggingPacket(t *testing.T) {
	h := newHarness(false, blockPlacementPacket(1, 2, 3, 0, 5))
	h.perm.result = config.PermissionDeny

	if err := h.dispatchAndFlush(t); err != nil {
		t.Fatalf("dispatchOne: %v", err)
	}
	if h.out.Len() == 0 || h.out.Bytes()[0] != byte(grammar.PlayerDigging) {
		t.Fatalf("expected a resync digging packet, got %x", h.out.Bytes())
	}
}

func TestBlockPlacementAgainstLockedAdjacentChestIsDenied(t *testing.T) {
	// placement at (0,1,0) facing direction 5 (+X) targets (1,1,0); a locked
	// chest one block further at (2,1,0) is adjacent to that target.
	adjacent := session.Coordinate{X: 2, Y: 1, Z: 0}
	h := newHarness(false, blockPlacementPacket(0, 1, 0, 5, chestItemID))
	h.sess.SetName("Placer")
	if err := h.chests.GiveLock("Other", adjacent, "Locked"); err != nil {
		t.Fatalf("GiveLock: %v", err)
	}

	if err := h.dispatchAndFlush(t); err != nil {
		t.Fatalf("dispatchOne: %v", err)
	}
	if h.out.Bytes()[0] != byte(grammar.PlayerDigging) {
		t.Fatalf("expected the chest placement to be denied, got %x", h.out.Bytes())
	}
	if len(h.sess.DrainInbound()) != 1 {
		t.Fatal("expected a locked-adjacent-chest warning")
	}
}

func TestOpenWindowOnLockedChestIsRewrittenToClose(t *testing.T) {
	coord := session.Coordinate{X: 5, Y: 5, Z: 5}
	h := newHarness(true, nil)
	h.sess.SetName("Intruder")
	if err := h.chests.GiveLock("Owner", coord, "Vault"); err != nil {
		t.Fatalf("GiveLock: %v", err)
	}
	h.sess.SetOpenedChest(&coord)

	var buf bytes.Buffer
	buf.WriteByte(byte(grammar.OpenWindow))
	_, _ = wire.WriteI8(&buf, 1)
	_, _ = wire.WriteI8(&buf, 0) // chest inventory type
	_, _ = wire.WriteUTF16(&buf, "chest.default")
	_, _ = wire.WriteI8(&buf, 27)
	_, _ = wire.WriteBool(&buf, true)
	h.t.r.Reset(&buf)

	if err := h.dispatchAndFlush(t); err != nil {
		t.Fatalf("dispatchOne: %v", err)
	}
	if h.out.Bytes()[0] != byte(grammar.CloseWindow) {
		t.Fatalf("expected a close-window rewrite, got opcode 0x%02x", h.out.Bytes()[0])
	}
}
