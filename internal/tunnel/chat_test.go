package tunnel

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/vibeproxy/tunnel/internal/grammar"
	"github.com/vibeproxy/tunnel/internal/message"
	"github.com/vibeproxy/tunnel/internal/wire"
)

func chatPacket(text string) []byte {
	var buf bytes.Buffer
	buf.WriteByte(byte(grammar.Chat))
	_, _ = wire.WriteUTF16(&buf, text)
	return buf.Bytes()
}

func TestMutedPlayerChatIsDroppedAndWarned(t *testing.T) {
	h := newHarness(false, chatPacket("hello everyone"))
	h.sess.SetMuted(true)

	if err := h.dispatchAndFlush(t); err != nil {
		t.Fatalf("dispatchOne: %v", err)
	}
	if h.out.Len() != 0 {
		t.Fatalf("expected nothing forwarded, got %d bytes", h.out.Len())
	}
	msgs := h.sess.DrainInbound()
	if len(msgs) != 1 || !strings.Contains(msgs[0], "muted") {
		t.Fatalf("inbound = %v, want a mute warning", msgs)
	}
}

func TestMutedPlayerCanStillIssueCommands(t *testing.T) {
	h := newHarness(false, chatPacket("/help"))
	h.sess.SetMuted(true)

	if err := h.dispatchAndFlush(t); err != nil {
		t.Fatalf("dispatchOne: %v", err)
	}
	msgs := h.sess.DrainInbound()
	if len(msgs) == 0 {
		t.Fatal("expected /help to run even while muted")
	}
}

func TestPlainClientChatIsQueuedNotWrittenInline(t *testing.T) {
	h := newHarness(false, chatPacket("hi there"))

	if err := h.dispatchAndFlush(t); err != nil {
		t.Fatalf("dispatchOne: %v", err)
	}
	if h.out.Len() != 0 {
		t.Fatalf("expected no inline write for plain chat, got %d bytes", h.out.Len())
	}
	queued := h.sess.DrainForward()
	if len(queued) != 1 || queued[0] != "hi there" {
		t.Fatalf("forward queue = %v, want [hi there]", queued)
	}
}

func TestCommandPrefixSuppressesPacketWhenHandled(t *testing.T) {
	h := newHarness(false, chatPacket("/help"))

	if err := h.dispatchAndFlush(t); err != nil {
		t.Fatalf("dispatchOne: %v", err)
	}
	if h.out.Len() != 0 {
		t.Fatalf("expected /help to be fully handled, got %d bytes written", h.out.Len())
	}
	if len(h.sess.DrainInbound()) == 0 {
		t.Fatal("expected /help to enqueue its usage text")
	}
}

func TestServerChatDropsForwardedChatLoopback(t *testing.T) {
	tracker := message.NewForwardTracker(time.Minute)

	client := newHarness(false, chatPacket("hi there"))
	client.opts.bools["forward_chat"] = true
	client.t.shared.Loopback = tracker
	if err := client.dispatchAndFlush(t); err != nil {
		t.Fatalf("dispatchOne: %v", err)
	}

	server := newHarness(true, chatPacket("hi there"))
	server.opts.bools["forward_chat"] = true
	server.t.shared.Loopback = tracker
	if err := server.dispatchAndFlush(t); err != nil {
		t.Fatalf("dispatchOne: %v", err)
	}
	if server.out.Len() != 0 {
		t.Fatalf("expected the echoed message to be dropped, got %d bytes", server.out.Len())
	}
}

func TestServerChatPassesThroughWhenNotForwarded(t *testing.T) {
	tracker := message.NewForwardTracker(time.Minute)

	server := newHarness(true, chatPacket("hi there"))
	server.opts.bools["forward_chat"] = true
	server.t.shared.Loopback = tracker
	if err := server.dispatchAndFlush(t); err != nil {
		t.Fatalf("dispatchOne: %v", err)
	}
	if !bytes.Equal(server.out.Bytes(), chatPacket("hi there")) {
		t.Fatalf("out = %x, want an unmodified echo", server.out.Bytes())
	}
}

func TestServerChatSuppressesBotJoinLeftNotice(t *testing.T) {
	h := newHarness(true, chatPacket("§eNinjaBot joined the game."))
	h.botsReg.Add("NinjaBot")

	if err := h.dispatchAndFlush(t); err != nil {
		t.Fatalf("dispatchOne: %v", err)
	}
	if len(h.sess.DrainInbound()) != 0 {
		t.Fatal("expected a bot's join notice to be suppressed")
	}
}

func TestServerChatRelaysJoinNoticeForRealPlayers(t *testing.T) {
	h := newHarness(true, chatPacket("§eSteve joined the game."))

	if err := h.dispatchAndFlush(t); err != nil {
		t.Fatalf("dispatchOne: %v", err)
	}
	msgs := h.sess.DrainInbound()
	if len(msgs) != 1 || !strings.Contains(msgs[0], "Steve") {
		t.Fatalf("inbound = %v, want a Steve joined notice", msgs)
	}
}
