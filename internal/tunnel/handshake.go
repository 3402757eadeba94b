package tunnel

import (
	"errors"
	"io"
	"strings"

	"github.com/vibeproxy/tunnel/internal/session"
	"github.com/vibeproxy/tunnel/internal/tunnelerr"
	"github.com/vibeproxy/tunnel/internal/wire"
)

var errGuestJoinDisallowed = errors.New("tunnel: guest join disallowed")

// handleLogin mirrors the login packet, whose body shape differs by
// direction: the client's login request carries no fields of policy
// interest, while the server's login response carries the entity id and
// dimension captured onto the session, plus a max-players byte this hook
// rewrites to the proxy's own configured cap.
func (t *Tunnel) handleLogin(r io.Reader, w io.Writer, opByte byte) error {
	if !t.isServerTunnel {
		if _, err := wire.WriteU8(w, opByte); err != nil {
			return err
		}
		if err := wire.CopyN(r, w, t.scratch[:], 4); err != nil {
			return err
		}
		levelType, err := wire.ReadUTF16(r)
		if err != nil {
			return err
		}
		if _, err := wire.WriteUTF16(w, levelType); err != nil {
			return err
		}
		return wire.CopyN(r, w, t.scratch[:], 5)
	}

	entityID, err := wire.ReadI32(r)
	if err != nil {
		return err
	}
	t.session.EntityID = entityID

	worldName, err := wire.ReadUTF16(r)
	if err != nil {
		return err
	}
	b1, err := wire.ReadI8(r)
	if err != nil {
		return err
	}
	dimension, err := wire.ReadI8(r)
	if err != nil {
		return err
	}
	t.session.SetDimension(session.Dimension(dimension))
	b2, err := wire.ReadI8(r)
	if err != nil {
		return err
	}
	if _, err := wire.ReadI8(r); err != nil { // server's own max-players byte, discarded
		return err
	}

	if _, err := wire.WriteU8(w, opByte); err != nil {
		return err
	}
	if _, err := wire.WriteI32(w, entityID); err != nil {
		return err
	}
	if _, err := wire.WriteUTF16(w, worldName); err != nil {
		return err
	}
	if _, err := wire.WriteI8(w, b1); err != nil {
		return err
	}
	if _, err := wire.WriteI8(w, dimension); err != nil {
		return err
	}
	if _, err := wire.WriteI8(w, b2); err != nil {
		return err
	}
	maxPlayers := int8(t.shared.Options.GetInt("max_players"))
	_, err = wire.WriteI8(w, maxPlayers)
	return err
}

// handleHandshake resolves the connecting player's name against the auth
// collaborator: a completed proxy-side login, a fresh guest assignment, or
// the name the client offered directly. A guest join is kicked immediately
// if guest joins are disallowed.
func (t *Tunnel) handleHandshake(r io.Reader, w io.Writer, opByte byte) error {
	version, err := wire.ReadI8(r)
	if err != nil {
		return err
	}
	rawName, err := wire.ReadUTF16(r)
	if err != nil {
		return err
	}
	secondString, err := wire.ReadUTF16(r)
	if err != nil {
		return err
	}
	thirdField, err := wire.ReadI32(r)
	if err != nil {
		return err
	}

	name := rawName
	if idx := strings.IndexByte(name, ';'); idx >= 0 {
		name = name[:idx]
	}

	if name == "Player" || !t.shared.Auth.IsMinecraftUp() {
		if req, ok := t.shared.Auth.GetAuthRequest(t.session.IPAddress()); ok && req != nil {
			if err := t.shared.Auth.CompleteLogin(req, req.Player); err != nil {
				return tunnelerr.New(tunnelerr.KindAuthFailure, "handshake", opByte, err)
			}
			t.session.SetName(req.Player)
		} else {
			t.session.SetName(t.shared.Auth.GetFreeGuestName())
			t.session.SetGuest(true)
		}
	} else {
		t.session.SetName(name)
	}

	if t.session.IsGuest() && !t.shared.Auth.AllowGuestJoin() {
		t.session.Kick("Guest logins are not allowed on this server.")
		return tunnelerr.New(tunnelerr.KindAuthFailure, "handshake", opByte, errGuestJoinDisallowed)
	}

	if _, err := wire.WriteU8(w, opByte); err != nil {
		return err
	}
	if _, err := wire.WriteI8(w, version); err != nil {
		return err
	}
	if _, err := wire.WriteUTF16(w, t.session.Name()); err != nil {
		return err
	}
	if _, err := wire.WriteUTF16(w, secondString); err != nil {
		return err
	}
	_, err = wire.WriteI32(w, thirdField)
	return err
}
