package tunnel

import (
	"io"
	"regexp"
	"strings"

	"github.com/vibeproxy/tunnel/internal/message"
	"github.com/vibeproxy/tunnel/internal/wire"
)

// colorPattern strips section-sign color codes before running the
// console-chat heuristic below, matching the upstream server's own
// stripping before it classifies a line as console output.
var colorPattern = regexp.MustCompile(`\x{00a7}.`)

// consoleChatPattern recognizes a line that looks like a relayed server
// console message ("[Server] ...") rather than genuine player chat.
var consoleChatPattern = regexp.MustCompile(`^\[.*?\] `)

// handleChat implements the chat opcode's full policy surface: join/left
// suppression, bot filtering, and forward-loopback dropping on the
// server->client leg, mute enforcement and command dispatch on the
// client->server leg. Plain, un-prefixed client->server chat is queued onto
// the session's forward channel rather than written here directly, so the
// worker loop's end-of-iteration drain step performs the actual 0x03 write —
// matching the grounding source's player.sendMessage(...) call, which never
// touches this tunnel's writer.
func (t *Tunnel) handleChat(r io.Reader, w io.Writer, opByte byte) error {
	text, err := wire.ReadUTF16(r)
	if err != nil {
		return err
	}

	if ev, ok := message.ParseJoinLeft(text); ok {
		return t.handleJoinLeftChat(ev)
	}

	if t.isServerTunnel {
		return t.handleServerChat(w, opByte, text)
	}
	return t.handleClientChat(w, opByte, text)
}

func (t *Tunnel) handleJoinLeftChat(ev message.JoinLeftEvent) error {
	if !t.isServerTunnel {
		return nil
	}
	if t.shared.Bots.IsBot(ev.Player) {
		return nil
	}
	verb := "left"
	if ev.Joined {
		verb = "joined"
	}
	t.session.EnqueueInbound("§e" + ev.Player + " " + verb + " the game.")
	return nil
}

func (t *Tunnel) handleServerChat(w io.Writer, opByte byte, text string) error {
	if t.shared.Options.GetBool("forward_chat") && t.shared.Loopback != nil && t.shared.Loopback.WasForwarded(text) {
		return nil
	}

	if !t.shared.Options.GetBool("use_msg_formats") {
		return t.writeChat(w, opByte, text)
	}

	stripped := colorPattern.ReplaceAllString(text, "")
	if consoleChatPattern.MatchString(stripped) && !t.shared.Options.GetBool("chat_console_to_ops") {
		return nil
	}

	if t.shared.Options.GetBool("wrap_chat") {
		for _, chunk := range message.Wrap(text) {
			if err := t.writeChat(w, opByte, chunk); err != nil {
				return err
			}
		}
		return nil
	}
	return t.writeChat(w, opByte, text)
}

func (t *Tunnel) handleClientChat(w io.Writer, opByte byte, text string) error {
	if t.session.IsMuted() && !strings.HasPrefix(text, "/") && !strings.HasPrefix(text, "!") {
		t.session.EnqueueInbound("§cYou are muted! You can not talk in chat.")
		return nil
	}

	if len(text) > 0 && text[0] == t.shared.CommandPrefix {
		rewritten, ok := t.shared.Commands.Process(t.session, text)
		if !ok {
			return nil
		}
		return t.writeChat(w, opByte, rewritten)
	}

	if t.shared.Options.GetBool("enable_events") {
		t.shared.Events.ChatSent(t.session, text)
	}
	if t.shared.Options.GetBool("forward_chat") && t.shared.Loopback != nil {
		t.shared.Loopback.Mark(text)
	}
	t.session.EnqueueForward(text)
	return nil
}

func (t *Tunnel) writeChat(w io.Writer, opByte byte, text string) error {
	if _, err := wire.WriteU8(w, opByte); err != nil {
		return err
	}
	_, err := wire.WriteUTF16(w, text)
	return err
}
