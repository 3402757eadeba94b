package tunnel

import (
	"bytes"
	"testing"

	"github.com/vibeproxy/tunnel/internal/grammar"
	"github.com/vibeproxy/tunnel/internal/wire"
)

func encryptionRequestPacket(serverID string, key, token []byte) []byte {
	var buf bytes.Buffer
	buf.WriteByte(byte(grammar.EncryptionRequest))
	_, _ = wire.WriteUTF16(&buf, serverID)
	_, _ = wire.WriteI16(&buf, int16(len(key)))
	_, _ = wire.WriteSpan(&buf, key)
	_, _ = wire.WriteI16(&buf, int16(len(token)))
	_, _ = wire.WriteSpan(&buf, token)
	return buf.Bytes()
}

func TestEncryptionRequestForwardsOwnKeyAndEchoesToken(t *testing.T) {
	upstreamKey := mustRSAContext().PublicKey()
	token := []byte("challenge-token")

	h := newHarness(true, encryptionRequestPacket("example.com", upstreamKey, token))

	if err := h.dispatchAndFlush(t); err != nil {
		t.Fatalf("dispatchOne: %v", err)
	}

	r := bytes.NewReader(h.out.Bytes())
	op, err := wire.ReadU8(r)
	if err != nil || op != byte(grammar.EncryptionRequest) {
		t.Fatalf("op = %v, err = %v", op, err)
	}
	serverID, err := wire.ReadUTF16(r)
	if err != nil {
		t.Fatalf("ReadUTF16: %v", err)
	}
	if serverID != "-" {
		t.Fatalf("serverID = %q, want - since cust-auth is off", serverID)
	}
	keyLen, _ := wire.ReadI16(r)
	key, _ := wire.ReadSpan(r, int(keyLen))
	if !bytes.Equal(key, h.sess.ClientEncryption.PublicKey()) {
		t.Fatal("expected the proxy's own client-facing public key, not the upstream one")
	}
	tokenLen, _ := wire.ReadI16(r)
	echoed, _ := wire.ReadSpan(r, int(tokenLen))
	if !bytes.Equal(echoed, token) {
		t.Fatalf("echoed token = %x, want %x", echoed, token)
	}
}

func TestEncryptionResponseRejectsInvalidChallenge(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteByte(byte(grammar.EncryptionResponse))
	_, _ = wire.WriteI16(&buf, 4)
	_, _ = wire.WriteSpan(&buf, []byte{1, 2, 3, 4})
	_, _ = wire.WriteI16(&buf, 4)
	_, _ = wire.WriteSpan(&buf, []byte{5, 6, 7, 8}) // not a valid RSA-encrypted response

	h := newHarness(false, buf.Bytes())
	h.sess.ClientEncryption.SetChallengeToken([]byte("expected-token"))

	err := h.t.dispatchOne()
	if err == nil {
		t.Fatal("expected an auth failure for a garbage challenge response")
	}
	if !h.sess.IsKicked() {
		t.Fatal("expected the session to be kicked")
	}
}
