// Package tunnel implements the bidirectional packet-aware interceptor: the
// dispatch loop, the opcode grammar (sizes and field layouts for every
// opcode in the legacy wire protocol), the policy hooks that consult the
// collaborator graph, and the in-band transport upgrade to encryption.
//
// Modeled on the teacher's goroutine-with-polled-flag worker shape
// (pkg/server's keepAliveLoop/regenerationLoop), generalized to the two
// mirror-image directions spec.md §2 describes: one Tunnel reads from the
// client and writes to the server, the other reads from the server and
// writes to the client. A Session is shared by the pair; nothing else is.
package tunnel

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pterm/pterm"

	"github.com/vibeproxy/tunnel/internal/crypto"
	"github.com/vibeproxy/tunnel/internal/session"
	"github.com/vibeproxy/tunnel/internal/tunnelerr"
	"github.com/vibeproxy/tunnel/internal/wire"
)

// IdleWindow is the idle-watchdog threshold (spec.md §4.5, §8 invariant 10).
const IdleWindow = 30 * time.Second

// Tunnel is one direction of one player's connection.
type Tunnel struct {
	shared  *Shared
	session *session.Session

	// isServerTunnel is true for the leg that reads bytes originating from
	// the upstream server and writes them to the client. False is the
	// client->server leg.
	isServerTunnel bool

	conn io.Closer

	rawR io.Reader // underlying unbuffered source, for the crypto swap
	rawW io.Writer

	// peer is the other direction's Tunnel for the same player, set once
	// after both halves exist (spec.md §2's per-player Tunnel pair). The
	// encryption-handshake hook needs it because a single EncryptionResponse
	// packet, seen only by the client->server leg, must install the cipher
	// on both legs before either side's next read.
	peer *Tunnel

	// ioMu guards r/w against the one cross-goroutine mutation this package
	// performs: the encryption handshake swapping the peer tunnel's reader
	// and writer out from under its own worker loop.
	ioMu sync.Mutex
	r    *bufio.Reader
	w    *bufio.Writer

	run    atomic.Bool
	scratch wire.Scratch

	lastOpcode    byte
	hasLastOpcode bool
	inGame        bool

	name string

	dumpR *wire.DumpReader
	dumpW *wire.DumpWriter

	done chan struct{}
}

// New constructs a Tunnel for one direction of one player's connection.
// conn is the raw socket for this direction (client conn for a client->server
// tunnel, server conn for a server->client tunnel); it is read and written
// directly until/unless the encryption handshake swaps in cipher layers.
func New(shared *Shared, sess *session.Session, isServerTunnel bool, conn net.Conn, name string) *Tunnel {
	t := &Tunnel{
		shared:         shared,
		session:        sess,
		isServerTunnel: isServerTunnel,
		conn:           conn,
		rawR:           conn,
		rawW:           conn,
		r:              bufio.NewReader(conn),
		w:              bufio.NewWriter(conn),
		name:           name,
		done:           make(chan struct{}),
	}
	t.run.Store(true)
	if os.Getenv("EXPENSIVE_DEBUG_LOGGING") != "" {
		t.installDebugDump()
	}
	return t
}

func (t *Tunnel) debugFileNames() (in, out string) {
	if t.isServerTunnel {
		return "ServerStreamInput.debug", "ServerStreamOutput.debug"
	}
	return "PlayerStreamInput.debug", "PlayerStreamOutput.debug"
}

func (t *Tunnel) installDebugDump() {
	inName, outName := t.debugFileNames()
	inFile, err := os.Create(inName)
	if err != nil {
		pterm.Warning.Printfln("tunnel: could not open debug dump %s: %v", inName, err)
		return
	}
	outFile, err := os.Create(outName)
	if err != nil {
		pterm.Warning.Printfln("tunnel: could not open debug dump %s: %v", outName, err)
		inFile.Close()
		return
	}
	t.dumpR = wire.NewDumpReader(t.r, inFile)
	t.dumpW = wire.NewDumpWriter(t.w, outFile)
}

// SetPeer records the other direction's Tunnel for the same player. Must be
// called by the acceptor before either tunnel's Start, once both halves of
// the pair have been constructed.
func (t *Tunnel) SetPeer(peer *Tunnel) { t.peer = peer }

// reader returns the current application-facing reader: the debug-dump tee
// if enabled, otherwise the bufio.Reader directly.
func (t *Tunnel) reader() io.Reader {
	t.ioMu.Lock()
	defer t.ioMu.Unlock()
	if t.dumpR != nil {
		return t.dumpR
	}
	return t.r
}

// writer returns the current application-facing writer.
func (t *Tunnel) writer() io.Writer {
	t.ioMu.Lock()
	defer t.ioMu.Unlock()
	if t.dumpW != nil {
		return t.dumpW
	}
	return t.w
}

// Stop clears the run flag and closes the underlying connection to unblock
// a parked read, per spec.md §5's cancellation semantics.
func (t *Tunnel) Stop() {
	t.run.Store(false)
	_ = t.conn.Close()
}

// IsAlive reports whether the worker loop is still running.
func (t *Tunnel) IsAlive() bool { return t.run.Load() }

// Done returns a channel closed when the worker loop exits.
func (t *Tunnel) Done() <-chan struct{} { return t.done }

// Start runs the worker loop on the calling goroutine's caller's behalf: it
// must itself be invoked with `go t.Start()` by the acceptor, matching
// spec.md §3's constructed-and-started Tunnel lifecycle without making
// construction itself spawn a goroutine (so tests can drive Start
// synchronously).
func (t *Tunnel) Start() {
	defer close(t.done)
	defer t.run.Store(false)

	for t.run.Load() {
		t.session.Touch()

		if err := t.dispatchOne(); err != nil {
			if tunnelerr.Is(err, tunnelerr.KindAuthFailure) {
				// AuthFailure hooks set the kick reason themselves; fall
				// through to the exit drain below, which honors it.
			} else if err != io.EOF {
				pterm.Debug.Printfln("%s: dispatch error: %v", t.name, err)
			}
			break
		}

		if err := t.drainChatQueue(); err != nil {
			break
		}

		if err := t.flush(); err != nil {
			break
		}
	}

	t.exitDrain()
}

// flush flushes the current writer under ioMu, so it never races a
// concurrent cross-tunnel encryption swap.
func (t *Tunnel) flush() error {
	t.ioMu.Lock()
	defer t.ioMu.Unlock()
	return t.w.Flush()
}

// exitDrain is the guaranteed-exit clause: emit a kick packet if flagged,
// flush best-effort, release debug-dump resources.
func (t *Tunnel) exitDrain() {
	if t.session.IsKicked() {
		_, _ = wire.WriteU8(t.writer(), byte(0xFF))
		_, _ = wire.WriteUTF16(t.writer(), t.session.KickReason())
		_ = t.flush()
	}
	if t.dumpR != nil {
		_ = t.dumpR.Close()
	}
	if t.dumpW != nil {
		_ = t.dumpW.Close()
	}
}

// drainChatQueue emits every message queued for this direction as 0x03 chat
// packets, per spec.md §4.5. The server->client tunnel drains inbound; the
// client->server tunnel drains forward.
func (t *Tunnel) drainChatQueue() error {
	var msgs []string
	if t.isServerTunnel {
		msgs = t.session.DrainInbound()
	} else {
		msgs = t.session.DrainForward()
	}
	for _, msg := range msgs {
		if _, err := wire.WriteU8(t.writer(), byte(0x03)); err != nil {
			return err
		}
		if _, err := wire.WriteUTF16(t.writer(), msg); err != nil {
			return err
		}
	}
	return nil
}

// installEncryption swaps the tunnel's reader and writer to encrypted
// layers without losing buffered-but-unconsumed bytes: those are decrypted
// by the new cipher ahead of the rest of the stream (spec.md §4.4, §9).
// readCtx decrypts what this tunnel reads; writeCtx encrypts what it writes.
func (t *Tunnel) installEncryption(readCtx, writeCtx crypto.Context) error {
	t.ioMu.Lock()
	defer t.ioMu.Unlock()

	if err := t.w.Flush(); err != nil {
		return err
	}

	buffered := t.r.Buffered()
	leftover := make([]byte, buffered)
	if _, err := io.ReadFull(t.r, leftover); err != nil {
		return err
	}

	leftoverThenRaw := io.MultiReader(bytes.NewReader(leftover), t.rawR)
	t.r = bufio.NewReader(readCtx.EncryptedReader(leftoverThenRaw))
	t.w = bufio.NewWriter(writeCtx.EncryptedWriter(t.rawW))

	if t.dumpR != nil {
		t.dumpR.Rewrap(t.r)
	}
	if t.dumpW != nil {
		t.dumpW.Rewrap(t.w)
	}
	return nil
}

func (t *Tunnel) currentOpcode() string {
	if t.hasLastOpcode {
		return fmt.Sprintf("0x%02x", t.lastOpcode)
	}
	return "none"
}
