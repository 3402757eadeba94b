package tunnel

import (
	"errors"
	"io"

	"github.com/vibeproxy/tunnel/internal/tunnelerr"
	"github.com/vibeproxy/tunnel/internal/wire"
)

var errModPacketsDisabled = errors.New("tunnel: mod packets disabled")

// handleModPacket gates a mod-specific opcode behind the enable_mod_packets
// option before delegating to inner. Servers that run no mod plugins can
// disable this whole packet family rather than relay opaque bytes they have
// no policy over.
func (t *Tunnel) handleModPacket(r io.Reader, w io.Writer, opByte byte, inner func(io.Reader, io.Writer, byte) error) error {
	if !t.shared.Options.GetBool("enable_mod_packets") {
		return tunnelerr.Desync("mod-packet", opByte, errModPacketsDisabled)
	}
	return inner(r, w, opByte)
}

// handleRedPower mirrors the RedPower mod's packet: one fixed byte, three
// varint fields, then a final varint whose value is the length of the
// trailing byte span.
func (t *Tunnel) handleRedPower(r io.Reader, w io.Writer, opByte byte) error {
	if _, err := wire.WriteU8(w, opByte); err != nil {
		return err
	}
	if err := wire.CopyN(r, w, t.scratch[:], 1); err != nil {
		return err
	}
	if _, err := wire.CopyVarint(r, w); err != nil {
		return err
	}
	if _, err := wire.CopyVarint(r, w); err != nil {
		return err
	}
	if _, err := wire.CopyVarint(r, w); err != nil {
		return err
	}
	length, err := wire.CopyVarint(r, w)
	if err != nil {
		return err
	}
	return wire.CopyN(r, w, t.scratch[:], int(length))
}

// handleModLoaderMP mirrors the ModLoaderMP packet: a mod id and packet id,
// then three length-prefixed numeric arrays (ints, floats, doubles), then a
// string-count-prefixed sequence of length-prefixed byte spans.
func (t *Tunnel) handleModLoaderMP(r io.Reader, w io.Writer, opByte byte) error {
	if _, err := wire.WriteU8(w, opByte); err != nil {
		return err
	}
	if err := wire.CopyN(r, w, t.scratch[:], 4+4); err != nil { // mod id, packet id
		return err
	}

	intCount, err := wire.ReadI32(r)
	if err != nil {
		return err
	}
	if _, err := wire.WriteI32(w, intCount); err != nil {
		return err
	}
	if err := wire.CopyN(r, w, t.scratch[:], int(intCount)*4); err != nil {
		return err
	}

	floatCount, err := wire.ReadI32(r)
	if err != nil {
		return err
	}
	if _, err := wire.WriteI32(w, floatCount); err != nil {
		return err
	}
	if err := wire.CopyN(r, w, t.scratch[:], int(floatCount)*4); err != nil {
		return err
	}

	doubleCount, err := wire.ReadI32(r)
	if err != nil {
		return err
	}
	if _, err := wire.WriteI32(w, doubleCount); err != nil {
		return err
	}
	if err := wire.CopyN(r, w, t.scratch[:], int(doubleCount)*8); err != nil {
		return err
	}

	stringCount, err := wire.ReadI32(r)
	if err != nil {
		return err
	}
	if _, err := wire.WriteI32(w, stringCount); err != nil {
		return err
	}
	for i := int32(0); i < stringCount; i++ {
		length, err := wire.ReadI32(r)
		if err != nil {
			return err
		}
		if _, err := wire.WriteI32(w, length); err != nil {
			return err
		}
		if err := wire.CopyN(r, w, t.scratch[:], int(length)); err != nil {
			return err
		}
	}
	return nil
}
