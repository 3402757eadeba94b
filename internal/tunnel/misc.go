package tunnel

import (
	"io"

	"github.com/vibeproxy/tunnel/internal/session"
	"github.com/vibeproxy/tunnel/internal/wire"
)

// sessionDimension narrows a raw wire dimension byte-as-int32 to the
// session's Dimension type, which is the actual range the protocol uses.
func sessionDimension(v int32) session.Dimension { return session.Dimension(int8(v)) }

// handlePlayerOnGround mirrors the on-ground ping and, on the first
// client->server 0x0A, transitions the session from InGame to welcomed:
// the configured MOTD is queued to the client, and if show_list_on_connect
// is set, so is the current player-count line.
func (t *Tunnel) handlePlayerOnGround(r io.Reader, w io.Writer, opByte byte) error {
	if err := t.copyFixed(r, w, opByte, 1); err != nil {
		return err
	}
	if !t.inGame && !t.isServerTunnel {
		t.inGame = true
		t.session.EnqueueInbound(t.shared.Translator.T(t.shared.ServerDescription))
		if t.shared.Options.GetBool("show_list_on_connect") {
			t.session.EnqueueInbound(t.shared.Translator.T("§7%d/%d players online",
				t.shared.playerCount(), t.shared.Options.GetInt("max_players")))
		}
	}
	return nil
}

// handlePlayerPosition mirrors a position update and records it on the
// session for block-permission and chest-adjacency lookups.
func (t *Tunnel) handlePlayerPosition(r io.Reader, w io.Writer, opByte byte) error {
	if _, err := wire.WriteU8(w, opByte); err != nil {
		return err
	}
	x, y, z, stance, err := t.copyPlayerLocation(r, w)
	if err != nil {
		return err
	}
	t.session.UpdatePosition(x, y, z, stance)
	return wire.CopyN(r, w, t.scratch[:], 1)
}

// handlePlayerLook mirrors a look update and records it on the session.
func (t *Tunnel) handlePlayerLook(r io.Reader, w io.Writer, opByte byte) error {
	if _, err := wire.WriteU8(w, opByte); err != nil {
		return err
	}
	yaw, pitch, err := t.copyPlayerLook(r, w)
	if err != nil {
		return err
	}
	t.session.UpdateLook(yaw, pitch)
	return wire.CopyN(r, w, t.scratch[:], 1)
}

// handlePlayerPositionLook mirrors a combined position+look update.
func (t *Tunnel) handlePlayerPositionLook(r io.Reader, w io.Writer, opByte byte) error {
	if _, err := wire.WriteU8(w, opByte); err != nil {
		return err
	}
	x, y, z, stance, err := t.copyPlayerLocation(r, w)
	if err != nil {
		return err
	}
	yaw, pitch, err := t.copyPlayerLook(r, w)
	if err != nil {
		return err
	}
	t.session.UpdatePosition(x, y, z, stance)
	t.session.UpdateLook(yaw, pitch)
	return wire.CopyN(r, w, t.scratch[:], 1)
}

// copyPlayerLocation mirrors the 4-double (x, y, stance, z) location block,
// matching the wire field order which interleaves stance before z.
func (t *Tunnel) copyPlayerLocation(r io.Reader, w io.Writer) (x, y, z, stance float64, err error) {
	if x, err = wire.ReadF64(r); err != nil {
		return
	}
	if _, err = wire.WriteF64(w, x); err != nil {
		return
	}
	if y, err = wire.ReadF64(r); err != nil {
		return
	}
	if _, err = wire.WriteF64(w, y); err != nil {
		return
	}
	if stance, err = wire.ReadF64(r); err != nil {
		return
	}
	if _, err = wire.WriteF64(w, stance); err != nil {
		return
	}
	if z, err = wire.ReadF64(r); err != nil {
		return
	}
	_, err = wire.WriteF64(w, z)
	return
}

// copyPlayerLook mirrors the 2-float (yaw, pitch) look block.
func (t *Tunnel) copyPlayerLook(r io.Reader, w io.Writer) (yaw, pitch float32, err error) {
	if yaw, err = wire.ReadF32(r); err != nil {
		return
	}
	if _, err = wire.WriteF32(w, yaw); err != nil {
		return
	}
	if pitch, err = wire.ReadF32(r); err != nil {
		return
	}
	_, err = wire.WriteF32(w, pitch)
	return
}

// handleRespawn's body differs by direction: the client's respawn request
// carries no fields at all, while the server's respawn response carries the
// new dimension plus world metadata.
func (t *Tunnel) handleRespawn(r io.Reader, w io.Writer, opByte byte) error {
	if !t.isServerTunnel {
		_, err := wire.WriteU8(w, opByte)
		return err
	}
	if _, err := wire.WriteU8(w, opByte); err != nil {
		return err
	}
	dim, err := wire.ReadI32(r)
	if err != nil {
		return err
	}
	if _, err := wire.WriteI32(w, dim); err != nil {
		return err
	}
	t.session.SetDimension(sessionDimension(dim))
	if err := wire.CopyN(r, w, t.scratch[:], 1+1+2); err != nil {
		return err
	}
	levelType, err := wire.ReadUTF16(r)
	if err != nil {
		return err
	}
	if _, err := wire.WriteUTF16(w, levelType); err != nil {
		return err
	}
	if t.shared.Options.GetBool("enable_events") {
		t.shared.Events.PlayerJoined(t.session)
	}
	return nil
}

// handleAddObjectVehicle mirrors a vehicle spawn, whose body grows an
// optional 3-short tail when the trailing flag is positive.
func (t *Tunnel) handleAddObjectVehicle(r io.Reader, w io.Writer, opByte byte) error {
	if _, err := wire.WriteU8(w, opByte); err != nil {
		return err
	}
	if err := wire.CopyN(r, w, t.scratch[:], 4+1+4+4+4+1+1); err != nil {
		return err
	}
	flag, err := wire.ReadI32(r)
	if err != nil {
		return err
	}
	if _, err := wire.WriteI32(w, flag); err != nil {
		return err
	}
	if flag > 0 {
		return wire.CopyN(r, w, t.scratch[:], 2+2+2)
	}
	return nil
}

// handleDestroyEntity mirrors the variable-length batch of destroyed entity
// ids, sized by the leading count byte.
func (t *Tunnel) handleDestroyEntity(r io.Reader, w io.Writer, opByte byte) error {
	if _, err := wire.WriteU8(w, opByte); err != nil {
		return err
	}
	count, err := wire.ReadI8(r)
	if err != nil {
		return err
	}
	if _, err := wire.WriteI8(w, count); err != nil {
		return err
	}
	if count > 0 {
		return wire.CopyN(r, w, t.scratch[:], int(count)*4)
	}
	return nil
}

// handleEntityProperties mirrors the nested property/modifier lists
// introduced alongside entity attributes.
func (t *Tunnel) handleEntityProperties(r io.Reader, w io.Writer, opByte byte) error {
	if _, err := wire.WriteU8(w, opByte); err != nil {
		return err
	}
	if err := wire.CopyN(r, w, t.scratch[:], 4); err != nil {
		return err
	}
	propCount, err := wire.ReadI32(r)
	if err != nil {
		return err
	}
	if _, err := wire.WriteI32(w, propCount); err != nil {
		return err
	}
	for i := int32(0); i < propCount; i++ {
		key, err := wire.ReadUTF16(r)
		if err != nil {
			return err
		}
		if _, err := wire.WriteUTF16(w, key); err != nil {
			return err
		}
		if err := wire.CopyN(r, w, t.scratch[:], 8); err != nil {
			return err
		}
		listLen, err := wire.ReadI16(r)
		if err != nil {
			return err
		}
		if _, err := wire.WriteI16(w, listLen); err != nil {
			return err
		}
		for j := int16(0); j < listLen; j++ {
			if err := wire.CopyN(r, w, t.scratch[:], 8+8+8+1); err != nil {
				return err
			}
		}
	}
	return nil
}

// handleChunkBulk mirrors the batched chunk-data packet, whose trailing span
// length is derived from two leading fields rather than a single one.
func (t *Tunnel) handleChunkBulk(r io.Reader, w io.Writer, opByte byte) error {
	if _, err := wire.WriteU8(w, opByte); err != nil {
		return err
	}
	chunkCount, err := wire.ReadI16(r)
	if err != nil {
		return err
	}
	if _, err := wire.WriteI16(w, chunkCount); err != nil {
		return err
	}
	dataLength, err := wire.ReadI32(r)
	if err != nil {
		return err
	}
	if _, err := wire.WriteI32(w, dataLength); err != nil {
		return err
	}
	if err := wire.CopyN(r, w, t.scratch[:], 1); err != nil {
		return err
	}
	return wire.CopyN(r, w, t.scratch[:], int(chunkCount)*12+int(dataLength))
}

// handleExplosion mirrors the explosion packet's variable-length affected
// block-record list.
func (t *Tunnel) handleExplosion(r io.Reader, w io.Writer, opByte byte) error {
	if _, err := wire.WriteU8(w, opByte); err != nil {
		return err
	}
	if err := wire.CopyN(r, w, t.scratch[:], 28); err != nil {
		return err
	}
	recordCount, err := wire.ReadI32(r)
	if err != nil {
		return err
	}
	if _, err := wire.WriteI32(w, recordCount); err != nil {
		return err
	}
	if err := wire.CopyN(r, w, t.scratch[:], int(recordCount)*3); err != nil {
		return err
	}
	return wire.CopyN(r, w, t.scratch[:], 4+4+4)
}

// handleWindowItems mirrors a full inventory window refresh: a window id
// followed by a count-prefixed item list.
func (t *Tunnel) handleWindowItems(r io.Reader, w io.Writer, opByte byte) error {
	if _, err := wire.WriteU8(w, opByte); err != nil {
		return err
	}
	if err := wire.CopyN(r, w, t.scratch[:], 1); err != nil {
		return err
	}
	count, err := wire.ReadI16(r)
	if err != nil {
		return err
	}
	if _, err := wire.WriteI16(w, count); err != nil {
		return err
	}
	for i := int16(0); i < count; i++ {
		if err := wire.CopyItem(r, w); err != nil {
			return err
		}
	}
	return nil
}

// handleUpdateSign mirrors a sign-text update's four text lines.
func (t *Tunnel) handleUpdateSign(r io.Reader, w io.Writer, opByte byte) error {
	if _, err := wire.WriteU8(w, opByte); err != nil {
		return err
	}
	if err := wire.CopyN(r, w, t.scratch[:], 4+2+4); err != nil {
		return err
	}
	for i := 0; i < 4; i++ {
		line, err := wire.ReadUTF16(r)
		if err != nil {
			return err
		}
		if _, err := wire.WriteUTF16(w, line); err != nil {
			return err
		}
	}
	return nil
}

// handleItemData mirrors a map-item render update, whose trailing span
// length is carried in its own leading short rather than an int.
func (t *Tunnel) handleItemData(r io.Reader, w io.Writer, opByte byte) error {
	if _, err := wire.WriteU8(w, opByte); err != nil {
		return err
	}
	if err := wire.CopyN(r, w, t.scratch[:], 2+2); err != nil {
		return err
	}
	length, err := wire.ReadI16(r)
	if err != nil {
		return err
	}
	if _, err := wire.WriteI16(w, length); err != nil {
		return err
	}
	return wire.CopyN(r, w, t.scratch[:], int(length))
}

// handleEntityNBTUpdate mirrors the entity-NBT packet in full, including the
// trailing flag byte before the length-prefixed NBT blob (forwarded
// byte-exact; some protocol revisions drop that byte, but this one does not).
func (t *Tunnel) handleEntityNBTUpdate(r io.Reader, w io.Writer, opByte byte) error {
	if _, err := wire.WriteU8(w, opByte); err != nil {
		return err
	}
	if err := wire.CopyN(r, w, t.scratch[:], 4+2+4+1); err != nil {
		return err
	}
	nbtLen, err := wire.ReadI16(r)
	if err != nil {
		return err
	}
	if _, err := wire.WriteI16(w, nbtLen); err != nil {
		return err
	}
	if nbtLen > 0 {
		return wire.CopyN(r, w, t.scratch[:], int(nbtLen))
	}
	return nil
}

// handleScoreboardObjectives mirrors a scoreboard objective add/remove/update.
func (t *Tunnel) handleScoreboardObjectives(r io.Reader, w io.Writer, opByte byte) error {
	if _, err := wire.WriteU8(w, opByte); err != nil {
		return err
	}
	for i := 0; i < 2; i++ {
		s, err := wire.ReadUTF16(r)
		if err != nil {
			return err
		}
		if _, err := wire.WriteUTF16(w, s); err != nil {
			return err
		}
	}
	return wire.CopyN(r, w, t.scratch[:], 1)
}

// handleUpdateScore mirrors a scoreboard score update, whose target-value
// fields are only present when the entry is not being removed.
func (t *Tunnel) handleUpdateScore(r io.Reader, w io.Writer, opByte byte) error {
	if _, err := wire.WriteU8(w, opByte); err != nil {
		return err
	}
	itemName, err := wire.ReadUTF16(r)
	if err != nil {
		return err
	}
	if _, err := wire.WriteUTF16(w, itemName); err != nil {
		return err
	}
	updateRemove, err := wire.ReadI8(r)
	if err != nil {
		return err
	}
	if _, err := wire.WriteI8(w, updateRemove); err != nil {
		return err
	}
	if updateRemove != 1 {
		scoreName, err := wire.ReadUTF16(r)
		if err != nil {
			return err
		}
		if _, err := wire.WriteUTF16(w, scoreName); err != nil {
			return err
		}
		return wire.CopyN(r, w, t.scratch[:], 4)
	}
	return nil
}

// handleTeams mirrors the scoreboard team packet, whose body shape depends
// on the mode byte: create/update (0 or 2) carries display fields, and
// create/player-add/player-remove (0, 3 or 4) carry a player-name list.
func (t *Tunnel) handleTeams(r io.Reader, w io.Writer, opByte byte) error {
	if _, err := wire.WriteU8(w, opByte); err != nil {
		return err
	}
	name, err := wire.ReadUTF16(r)
	if err != nil {
		return err
	}
	if _, err := wire.WriteUTF16(w, name); err != nil {
		return err
	}
	mode, err := wire.ReadI8(r)
	if err != nil {
		return err
	}
	if _, err := wire.WriteI8(w, mode); err != nil {
		return err
	}
	if mode == 0 || mode == 2 {
		for i := 0; i < 3; i++ {
			s, err := wire.ReadUTF16(r)
			if err != nil {
				return err
			}
			if _, err := wire.WriteUTF16(w, s); err != nil {
				return err
			}
		}
		if err := wire.CopyN(r, w, t.scratch[:], 1); err != nil {
			return err
		}
	}
	if mode == 0 || mode == 3 || mode == 4 {
		playerCount, err := wire.ReadI16(r)
		if err != nil {
			return err
		}
		if _, err := wire.WriteI16(w, playerCount); err != nil {
			return err
		}
		if playerCount != -1 {
			for i := int16(0); i < playerCount; i++ {
				s, err := wire.ReadUTF16(r)
				if err != nil {
					return err
				}
				if _, err := wire.WriteUTF16(w, s); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// handlePluginMessage mirrors a named plugin channel packet: a channel name
// followed by a short-length-prefixed raw payload.
func (t *Tunnel) handlePluginMessage(r io.Reader, w io.Writer, opByte byte) error {
	if _, err := wire.WriteU8(w, opByte); err != nil {
		return err
	}
	channel, err := wire.ReadUTF16(r)
	if err != nil {
		return err
	}
	if _, err := wire.WriteUTF16(w, channel); err != nil {
		return err
	}
	length, err := wire.ReadI16(r)
	if err != nil {
		return err
	}
	if _, err := wire.WriteI16(w, length); err != nil {
		return err
	}
	return wire.CopyN(r, w, t.scratch[:], int(length))
}
