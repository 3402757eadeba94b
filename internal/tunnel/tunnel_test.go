package tunnel

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/vibeproxy/tunnel/internal/auth"
	"github.com/vibeproxy/tunnel/internal/bots"
	"github.com/vibeproxy/tunnel/internal/chest"
	"github.com/vibeproxy/tunnel/internal/command"
	"github.com/vibeproxy/tunnel/internal/config"
	"github.com/vibeproxy/tunnel/internal/crypto"
	"github.com/vibeproxy/tunnel/internal/event"
	"github.com/vibeproxy/tunnel/internal/session"
	"github.com/vibeproxy/tunnel/internal/translator"
)

// mustRSAContext creates a fresh crypto.RSAContext for tests that need a
// session.EncryptionContext but don't care about the key material itself.
func mustRSAContext() *crypto.RSAContext {
	ctx, err := crypto.NewRSAContext()
	if err != nil {
		panic(err)
	}
	return ctx
}

// fakeOptions is a map-backed config.Options for tests that need to flip
// one or two named settings without a YAML fixture.
type fakeOptions struct {
	bools   map[string]bool
	ints    map[string]int
	strings map[string]string
}

func newFakeOptions() *fakeOptions {
	return &fakeOptions{bools: map[string]bool{}, ints: map[string]int{}, strings: map[string]string{}}
}

func (f *fakeOptions) GetBool(name string) bool     { return f.bools[name] }
func (f *fakeOptions) GetInt(name string) int       { return f.ints[name] }
func (f *fakeOptions) GetString(name string) string { return f.strings[name] }

// fakePermConfig returns a fixed Permission for every call, recording the
// last coordinate and held item it was asked about.
type fakePermConfig struct {
	result      config.Permission
	lastCoord   chest.Coordinate
	lastHeldItm int16
}

func (f *fakePermConfig) BlockPermission(_ *session.Session, coord chest.Coordinate, heldItem int16) config.Permission {
	f.lastCoord = coord
	f.lastHeldItm = heldItem
	return f.result
}

// testHarness bundles a Tunnel with its input/output buffers and
// collaborators so test bodies can both drive dispatchOne and inspect the
// policy state afterward.
type testHarness struct {
	t       *Tunnel
	out     *bytes.Buffer
	opts    *fakeOptions
	perm    *fakePermConfig
	chests  *chest.MemRegistry
	botsReg *bots.MemRegistry
	authN   *auth.MemAuthenticator
	sess    *session.Session
}

func newHarness(isServerTunnel bool, input []byte) *testHarness {
	opts := newFakeOptions()
	perm := &fakePermConfig{result: config.PermissionAllow}
	chests := chest.NewMemRegistry("", nil)
	botsReg := bots.NewMemRegistry()
	authN := auth.NewMemAuthenticator(true, nil)

	shared := &Shared{
		Options:    opts,
		Perm:       perm,
		Chests:     chests,
		Bots:       botsReg,
		Auth:       authN,
		Events:     event.NoOp{},
		Commands:   command.NewBasic(nil, nil),
		Translator: translator.Identity{},

		CommandPrefix:     '/',
		ProtocolVersion:   39,
		MinecraftVersion:  "1.6.4",
		ServerDescription: "test server",
	}

	sess := session.New("127.0.0.1")
	sess.ClientEncryption = mustRSAContext()
	sess.ServerEncryption = mustRSAContext()

	out := &bytes.Buffer{}
	tun := &Tunnel{
		shared:         shared,
		session:        sess,
		isServerTunnel: isServerTunnel,
		conn:           nopCloser{},
		rawR:           bytes.NewReader(nil),
		rawW:           out,
		r:              bufio.NewReader(bytes.NewReader(input)),
		w:              bufio.NewWriter(out),
		done:           make(chan struct{}),
	}
	tun.run.Store(true)

	return &testHarness{t: tun, out: out, opts: opts, perm: perm, chests: chests, botsReg: botsReg, authN: authN, sess: sess}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// dispatchAndFlush runs one dispatch iteration and flushes the writer, so
// out.Bytes() reflects everything written.
func (h *testHarness) dispatchAndFlush(t *testing.T) error {
	err := h.t.dispatchOne()
	if ferr := h.t.w.Flush(); ferr != nil && err == nil {
		err = ferr
	}
	return err
}
