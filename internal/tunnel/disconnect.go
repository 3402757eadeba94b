package tunnel

import (
	"fmt"
	"io"
	"strings"

	"github.com/vibeproxy/tunnel/internal/wire"
)

// serverListPingReason is the §1-prefixed disconnect reason string Minecraft
// beta/1.x clients parse as a server-list ping response: five null-delimited
// fields after the marker.
const serverListPingReason = "§1\x00%d\x00%s\x00%s\x00%d\x00%d"

// handleDisconnect rewrites the server-list-ping disconnect reason with this
// proxy's own protocol version, description, and live player count, and
// flags a too-slow login handshake as a robot so the idle watchdog and
// server-list-ping identification skip it.
func (t *Tunnel) handleDisconnect(r io.Reader, w io.Writer, opByte byte) error {
	reason, err := wire.ReadUTF16(r)
	if err != nil {
		return err
	}

	if strings.HasPrefix(reason, "§1") {
		reason = fmt.Sprintf(serverListPingReason,
			t.shared.ProtocolVersion,
			t.shared.MinecraftVersion,
			t.shared.ServerDescription,
			t.shared.playerCount(),
			t.shared.Options.GetInt("max_players"))
	}

	if _, err := wire.WriteU8(w, opByte); err != nil {
		return err
	}
	if _, err := wire.WriteUTF16(w, reason); err != nil {
		return err
	}

	if strings.HasPrefix(reason, "Took too long") {
		t.session.SetRobot(true)
	}
	return nil
}
