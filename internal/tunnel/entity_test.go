package tunnel

import (
	"bytes"
	"testing"

	"github.com/vibeproxy/tunnel/internal/grammar"
	"github.com/vibeproxy/tunnel/internal/wire"
)

func useEntityPacket(user, target int32, leftClick bool) []byte {
	var buf bytes.Buffer
	buf.WriteByte(byte(grammar.UseEntity))
	_, _ = wire.WriteI32(&buf, user)
	_, _ = wire.WriteI32(&buf, target)
	_, _ = wire.WriteBool(&buf, leftClick)
	return buf.Bytes()
}

func TestUseEntityAgainstGodModeTargetIsDropped(t *testing.T) {
	h := newHarness(false, useEntityPacket(1, 42, true))
	h.sess.EntityID = 42
	h.sess.SetGodMode(true)

	if err := h.dispatchAndFlush(t); err != nil {
		t.Fatalf("dispatchOne: %v", err)
	}
	if h.out.Len() != 0 {
		t.Fatalf("expected the interaction to be dropped, got %d bytes", h.out.Len())
	}
}

func TestUseEntityAgainstOrdinaryTargetPassesThrough(t *testing.T) {
	h := newHarness(false, useEntityPacket(1, 42, true))
	h.sess.EntityID = 42

	if err := h.dispatchAndFlush(t); err != nil {
		t.Fatalf("dispatchOne: %v", err)
	}
	if !bytes.Equal(h.out.Bytes(), useEntityPacket(1, 42, true)) {
		t.Fatalf("out = %x, want an unmodified echo", h.out.Bytes())
	}
}

func namedEntitySpawnPacket(eid int32, name string) []byte {
	var buf bytes.Buffer
	buf.WriteByte(byte(grammar.NamedEntitySpawn))
	_, _ = wire.WriteI32(&buf, eid)
	_, _ = wire.WriteUTF16(&buf, name)
	for i := 0; i < 16; i++ {
		buf.WriteByte(0)
	}
	buf.WriteByte(0x7F) // empty metadata blob
	return buf.Bytes()
}

func TestNamedEntitySpawnOfBotIsSuppressedEntirely(t *testing.T) {
	h := newHarness(true, namedEntitySpawnPacket(99, "NinjaBot"))
	h.botsReg.Add("NinjaBot")

	if err := h.dispatchAndFlush(t); err != nil {
		t.Fatalf("dispatchOne: %v", err)
	}
	if h.out.Len() != 0 {
		t.Fatalf("expected a suppressed bot spawn to write nothing, got %d bytes", h.out.Len())
	}
}

func TestNamedEntitySpawnOfRealPlayerPassesThrough(t *testing.T) {
	pkt := namedEntitySpawnPacket(99, "Steve")
	h := newHarness(true, pkt)

	if err := h.dispatchAndFlush(t); err != nil {
		t.Fatalf("dispatchOne: %v", err)
	}
	if !bytes.Equal(h.out.Bytes(), pkt) {
		t.Fatalf("out = %x, want an unmodified echo of %x", h.out.Bytes(), pkt)
	}
}
