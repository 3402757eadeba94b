package tunnel

import (
	"fmt"
	"io"

	"github.com/vibeproxy/tunnel/internal/grammar"
	"github.com/vibeproxy/tunnel/internal/tunnelerr"
	"github.com/vibeproxy/tunnel/internal/wire"
)

// dispatchOne reads and handles exactly one packet, mirroring it to the
// opposite side after whatever policy hook applies. Every case either
// writes its own framing (including the leading opcode byte) or is dropped
// outright by a hook; dispatchOne itself never writes the opcode for cases
// that delegate.
func (t *Tunnel) dispatchOne() error {
	r := t.reader()
	w := t.writer()

	opByte, err := wire.ReadU8(r)
	if err != nil {
		return err
	}
	op := grammar.Opcode(opByte)

	var dispatchErr error
	switch op {
	case grammar.KeepAlive:
		dispatchErr = t.copyFixed(r, w, opByte, 4) // int

	case grammar.Login:
		dispatchErr = t.handleLogin(r, w, opByte)

	case grammar.Handshake:
		dispatchErr = t.handleHandshake(r, w, opByte)

	case grammar.Chat:
		dispatchErr = t.handleChat(r, w, opByte)

	case grammar.TimeUpdate:
		dispatchErr = t.copyFixed(r, w, opByte, 8+8)

	case grammar.PlayerInventory:
		dispatchErr = t.copyFixed(r, w, opByte, 4+2)
		if dispatchErr == nil {
			dispatchErr = wire.CopyItem(r, w)
		}

	case grammar.SpawnPosition:
		dispatchErr = t.copyFixed(r, w, opByte, 12)
		if dispatchErr == nil && t.shared.Options.GetBool("enable_events") {
			t.shared.Events.PlayerJoined(t.session)
		}

	case grammar.UseEntity:
		dispatchErr = t.handleUseEntity(r, w, opByte)

	case grammar.UpdateHealth:
		dispatchErr = t.copyFixed(r, w, opByte, 4+2+4)

	case grammar.Respawn:
		dispatchErr = t.handleRespawn(r, w, opByte)

	case grammar.Player:
		dispatchErr = t.handlePlayerOnGround(r, w, opByte)

	case grammar.PlayerPosition:
		dispatchErr = t.handlePlayerPosition(r, w, opByte)

	case grammar.PlayerLook:
		dispatchErr = t.handlePlayerLook(r, w, opByte)

	case grammar.PlayerPositionLook:
		dispatchErr = t.handlePlayerPositionLook(r, w, opByte)

	case grammar.PlayerDigging:
		dispatchErr = t.handlePlayerDigging(r, w, opByte)

	case grammar.PlayerBlockPlacement:
		dispatchErr = t.handlePlayerBlockPlacement(r, w, opByte)

	case grammar.HoldingChange:
		dispatchErr = t.copyFixed(r, w, opByte, 2)

	case grammar.UseBed:
		dispatchErr = t.copyFixed(r, w, opByte, 14)

	case grammar.Animation:
		dispatchErr = t.copyFixed(r, w, opByte, 5)

	case grammar.EntityAction:
		dispatchErr = t.copyFixed(r, w, opByte, 4+1+4)

	case grammar.NamedEntitySpawn:
		dispatchErr = t.handleNamedEntitySpawn(r, w, opByte)

	case grammar.CollectItem:
		dispatchErr = t.copyFixed(r, w, opByte, 8)

	case grammar.AddObjectVehicle:
		dispatchErr = t.handleAddObjectVehicle(r, w, opByte)

	case grammar.MobSpawn:
		dispatchErr = t.copyFixed(r, w, opByte, 4+1+4+4+4+1+1+1+2+2+2)
		if dispatchErr == nil {
			dispatchErr = wire.CopyMetadata(r, w)
		}

	case grammar.EntityPainting:
		dispatchErr = t.copyFixedWithUTF16(r, w, opByte, 4, 4+4+4+4)

	case grammar.ExperienceOrb:
		dispatchErr = t.copyFixed(r, w, opByte, 4+4+4+4+2)

	case grammar.SteerVehicle:
		dispatchErr = t.copyFixed(r, w, opByte, 4+4+1+1)

	case grammar.EntityVelocity:
		dispatchErr = t.copyFixed(r, w, opByte, 10)

	case grammar.DestroyEntity:
		dispatchErr = t.handleDestroyEntity(r, w, opByte)

	case grammar.Entity:
		dispatchErr = t.copyFixed(r, w, opByte, 4)

	case grammar.EntityRelativeMove:
		dispatchErr = t.copyFixed(r, w, opByte, 7)

	case grammar.EntityLook:
		dispatchErr = t.copyFixed(r, w, opByte, 6)

	case grammar.EntityLookRelMove:
		dispatchErr = t.copyFixed(r, w, opByte, 9)

	case grammar.EntityTeleport:
		dispatchErr = t.copyFixed(r, w, opByte, 18)

	case grammar.EntityHeadLook:
		dispatchErr = t.copyFixed(r, w, opByte, 4+1)

	case grammar.EntityStatus:
		dispatchErr = t.copyFixed(r, w, opByte, 5)

	case grammar.AttachEntity:
		dispatchErr = t.copyFixed(r, w, opByte, 4+4+1)

	case grammar.EntityMetadata:
		dispatchErr = t.copyFixed(r, w, opByte, 4)
		if dispatchErr == nil {
			dispatchErr = wire.CopyMetadata(r, w)
		}

	case grammar.EntityEffect:
		dispatchErr = t.copyFixed(r, w, opByte, 4+1+1+2)

	case grammar.RemoveEntityEffect:
		dispatchErr = t.copyFixed(r, w, opByte, 4+1)

	case grammar.Experience:
		dispatchErr = t.copyFixed(r, w, opByte, 4+2+2)

	case grammar.EntityProperties:
		dispatchErr = t.handleEntityProperties(r, w, opByte)

	case grammar.MapChunk:
		dispatchErr = t.handleLengthPrefixedBlob(r, w, opByte, 4+4+1+2+2)

	case grammar.MultiBlockChange:
		dispatchErr = t.handleLengthPrefixedBlob(r, w, opByte, 4+4+2)

	case grammar.BlockChange:
		dispatchErr = t.handleBlockChange(r, w, opByte)

	case grammar.BlockAction:
		dispatchErr = t.copyFixed(r, w, opByte, 14)

	case grammar.MiningProgress:
		dispatchErr = t.copyFixed(r, w, opByte, 4+4+4+4+1)

	case grammar.ChunkBulk:
		dispatchErr = t.handleChunkBulk(r, w, opByte)

	case grammar.Explosion:
		dispatchErr = t.handleExplosion(r, w, opByte)

	case grammar.SoundParticleEffect:
		dispatchErr = t.copyFixed(r, w, opByte, 4+4+1+4+4+1)

	case grammar.NamedSoundEffect:
		dispatchErr = t.copyFixedWithUTF16(r, w, opByte, 0, 4+4+4+4+1)

	case grammar.Particle:
		dispatchErr = t.copyFixedWithUTF16(r, w, opByte, 0, 4*8)

	case grammar.NewInvalidState:
		dispatchErr = t.copyFixed(r, w, opByte, 2)

	case grammar.Thunderbolt:
		dispatchErr = t.copyFixed(r, w, opByte, 17)

	case grammar.OpenWindow:
		dispatchErr = t.handleOpenWindow(r, w, opByte)

	case grammar.CloseWindow:
		dispatchErr = t.handleCloseWindow(r, w, opByte)

	case grammar.WindowClick:
		dispatchErr = t.copyFixed(r, w, opByte, 1+2+1+2+1)
		if dispatchErr == nil {
			dispatchErr = wire.CopyItem(r, w)
		}

	case grammar.SetSlot:
		dispatchErr = t.copyFixed(r, w, opByte, 1+2)
		if dispatchErr == nil {
			dispatchErr = wire.CopyItem(r, w)
		}

	case grammar.WindowItems:
		dispatchErr = t.handleWindowItems(r, w, opByte)

	case grammar.UpdateWindowProperty:
		dispatchErr = t.copyFixed(r, w, opByte, 1+2+2)

	case grammar.Transaction:
		dispatchErr = t.copyFixed(r, w, opByte, 1+2+1)

	case grammar.CreativeInventoryAct:
		dispatchErr = t.copyFixed(r, w, opByte, 2)
		if dispatchErr == nil {
			dispatchErr = wire.CopyItem(r, w)
		}

	case grammar.EnchantItem:
		dispatchErr = t.copyFixed(r, w, opByte, 2)

	case grammar.UpdateSign:
		dispatchErr = t.handleUpdateSign(r, w, opByte)

	case grammar.ItemData:
		dispatchErr = t.handleItemData(r, w, opByte)

	case grammar.EntityNBTUpdate:
		dispatchErr = t.handleEntityNBTUpdate(r, w, opByte)

	case grammar.SignUnknown:
		dispatchErr = t.copyFixed(r, w, opByte, 1+4+4+4)

	case grammar.BukkitContrib:
		dispatchErr = t.handleLengthPrefixedBlob(r, w, opByte, 4)

	case grammar.IncrementStatistic:
		dispatchErr = t.copyFixed(r, w, opByte, 4+4)

	case grammar.PlayerListItem:
		dispatchErr = t.copyFixedWithUTF16(r, w, opByte, 0, 1+2)

	case grammar.PlayerAbilities:
		dispatchErr = t.copyFixed(r, w, opByte, 1+4+4)

	case grammar.TabCompletion:
		dispatchErr = t.copyFixedWithUTF16(r, w, opByte, 0, 0)

	case grammar.LocaleAndViewDistance:
		dispatchErr = t.copyFixedWithUTF16(r, w, opByte, 0, 1+1+1+1)

	case grammar.LoginAndRespawn:
		dispatchErr = t.copyFixed(r, w, opByte, 1)

	case grammar.ScoreboardObjectives:
		dispatchErr = t.handleScoreboardObjectives(r, w, opByte)

	case grammar.UpdateScore:
		dispatchErr = t.handleUpdateScore(r, w, opByte)

	case grammar.DisplayScoreboard:
		dispatchErr = t.copyFixedWithUTF16(r, w, opByte, 1, 0)

	case grammar.Teams:
		dispatchErr = t.handleTeams(r, w, opByte)

	case grammar.RedPower:
		dispatchErr = t.handleModPacket(r, w, opByte, t.handleRedPower)

	case grammar.ModLoaderMP:
		dispatchErr = t.handleModPacket(r, w, opByte, t.handleModLoaderMP)

	case grammar.PluginMessage:
		dispatchErr = t.handlePluginMessage(r, w, opByte)

	case grammar.EncryptionResponse:
		dispatchErr = t.handleEncryptionResponse(r, w, opByte)

	case grammar.EncryptionRequest:
		dispatchErr = t.handleEncryptionRequest(r, w, opByte)

	case grammar.ServerListPing:
		dispatchErr = t.copyFixed(r, w, opByte, 1)

	case grammar.Disconnect:
		dispatchErr = t.handleDisconnect(r, w, opByte)

	default:
		dispatchErr = tunnelerr.Desync("dispatch", opByte,
			fmt.Errorf("unknown opcode 0x%02x (previous: %s)", opByte, t.currentOpcode()))
	}

	if dispatchErr != nil {
		return dispatchErr
	}

	if op != grammar.KeepAlive {
		t.lastOpcode = opByte
		t.hasLastOpcode = true
	}
	return nil
}

// copyFixed writes the opcode then mirrors exactly n raw bytes, matching
// every pass-through opcode whose fields carry no policy meaning.
func (t *Tunnel) copyFixed(r io.Reader, w io.Writer, opByte byte, n int) error {
	if _, err := wire.WriteU8(w, opByte); err != nil {
		return err
	}
	return wire.CopyN(r, w, t.scratch[:], n)
}

// copyFixedWithUTF16 writes the opcode, n1 raw bytes, one UTF16 string, then
// n2 more raw bytes — the shape shared by several opcodes that sandwich a
// single string field between fixed-width ones.
func (t *Tunnel) copyFixedWithUTF16(r io.Reader, w io.Writer, opByte byte, n1, n2 int) error {
	if _, err := wire.WriteU8(w, opByte); err != nil {
		return err
	}
	if err := wire.CopyN(r, w, t.scratch[:], n1); err != nil {
		return err
	}
	s, err := wire.ReadUTF16(r)
	if err != nil {
		return err
	}
	if _, err := wire.WriteUTF16(w, s); err != nil {
		return err
	}
	return wire.CopyN(r, w, t.scratch[:], n2)
}

// handleLengthPrefixedBlob writes the opcode and n fixed bytes, then an
// int32-length-prefixed raw span whose length field is itself forwarded
// (e.g. map chunk and multi-block-change data).
func (t *Tunnel) handleLengthPrefixedBlob(r io.Reader, w io.Writer, opByte byte, n int) error {
	if _, err := wire.WriteU8(w, opByte); err != nil {
		return err
	}
	if err := wire.CopyN(r, w, t.scratch[:], n); err != nil {
		return err
	}
	length, err := wire.ReadI32(r)
	if err != nil {
		return err
	}
	if _, err := wire.WriteI32(w, length); err != nil {
		return err
	}
	return wire.CopyN(r, w, t.scratch[:], int(length))
}
