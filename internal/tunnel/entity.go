package tunnel

import (
	"io"

	"github.com/vibeproxy/tunnel/internal/wire"
)

// handleUseEntity enforces the god-mode shield: an interaction targeting a
// shielded player is dropped outright rather than forwarded, per spec.md's
// target-immunity invariant.
func (t *Tunnel) handleUseEntity(r io.Reader, w io.Writer, opByte byte) error {
	user, err := wire.ReadI32(r)
	if err != nil {
		return err
	}
	target, err := wire.ReadI32(r)
	if err != nil {
		return err
	}
	leftClick, err := wire.ReadBool(r)
	if err != nil {
		return err
	}

	if t.targetIsGodMode(target) {
		return nil // drop: shielded target never sees or processes the interaction
	}

	if _, err := wire.WriteU8(w, opByte); err != nil {
		return err
	}
	if _, err := wire.WriteI32(w, user); err != nil {
		return err
	}
	if _, err := wire.WriteI32(w, target); err != nil {
		return err
	}
	_, err = wire.WriteBool(w, leftClick)
	return err
}

// targetIsGodMode reports whether target names this tunnel's own session
// and that session has the shield enabled. Cross-player entity-id lookup
// belongs to the acceptor's player registry, out of this package's scope;
// a Tunnel can only authoritatively answer for its own player.
func (t *Tunnel) targetIsGodMode(target int32) bool {
	return target == t.session.EntityID && t.session.GodModeEnabled()
}

// handleNamedEntitySpawn suppresses the spawn of any entity whose name is
// registered as a bot, per spec.md's bot-suppression invariant: a
// suppressed spawn consumes its bytes but writes nothing.
func (t *Tunnel) handleNamedEntitySpawn(r io.Reader, w io.Writer, opByte byte) error {
	eid, err := wire.ReadI32(r)
	if err != nil {
		return err
	}
	name, err := wire.ReadUTF16(r)
	if err != nil {
		return err
	}

	if t.shared.Bots.IsBot(name) {
		if err := wire.Skip(r, t.scratch[:], 16); err != nil {
			return err
		}
		return skipMetadata(r)
	}

	if _, err := wire.WriteU8(w, opByte); err != nil {
		return err
	}
	if _, err := wire.WriteI32(w, eid); err != nil {
		return err
	}
	if _, err := wire.WriteUTF16(w, name); err != nil {
		return err
	}
	if err := wire.CopyN(r, w, t.scratch[:], 16); err != nil {
		return err
	}
	return wire.CopyMetadata(r, w)
}

// skipMetadata discards a metadata blob without writing it anywhere,
// matching the suppressed-spawn path's need to stay in sync with the
// stream without forwarding a single byte to the other side.
func skipMetadata(r io.Reader) error {
	_, err := wire.ReadMetadata(r)
	return err
}
