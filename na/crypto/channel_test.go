package crypto

import (
	"bytes"
	"testing"
)

func establishedPair(t testing.TB) (*SecureChannel, *SecureChannel) {
	initiator, err := NewSecureChannelInitiator()
	if err != nil {
		t.Fatalf("NewSecureChannelInitiator: %v", err)
	}
	responder, err := NewSecureChannelResponder()
	if err != nil {
		t.Fatalf("NewSecureChannelResponder: %v", err)
	}

	// Exchange ephemeral keys
	if err := initiator.Complete(responder.LocalEphemeralPublic()); err != nil {
		t.Fatalf("initiator.Complete: %v", err)
	}
	if err := responder.Complete(initiator.LocalEphemeralPublic()); err != nil {
		t.Fatalf("responder.Complete: %v", err)
	}
	return initiator, responder
}

func TestSecureChannelRoundTrip(t *testing.T) {
	initiator, responder := establishedPair(t)

	messages := [][]byte{
		[]byte("hello from initiator"),
		[]byte("hello from responder"),
		[]byte("another message"),
	}

	// Initiator -> Responder
	for _, msg := range messages {
		ct, err := initiator.Encrypt(msg, nil)
		if err != nil {
			t.Fatalf("initiator.Encrypt: %v", err)
		}
		pt, err := responder.Decrypt(ct, nil)
		if err != nil {
			t.Fatalf("responder.Decrypt: %v", err)
		}
		if !bytes.Equal(pt, msg) {
			t.Fatalf("message mismatch")
		}
	}

	// Responder -> Initiator
	for _, msg := range messages {
		ct, err := responder.Encrypt(msg, nil)
		if err != nil {
			t.Fatalf("responder.Encrypt: %v", err)
		}
		pt, err := initiator.Decrypt(ct, nil)
		if err != nil {
			t.Fatalf("initiator.Decrypt: %v", err)
		}
		if !bytes.Equal(pt, msg) {
			t.Fatalf("message mismatch")
		}
	}

	if sent := initiator.Sent(); sent[0] != 3 {
		t.Fatalf("initiator Sent = %v", sent)
	}
}

func TestSecureChannelNoncesStartAtZero(t *testing.T) {
	initiator, _ := establishedPair(t)
	ct0, _ := initiator.Encrypt([]byte("m0"), nil)
	ct1, _ := initiator.Encrypt([]byte("m1"), nil)

	if !bytes.Equal(ct0[:12], make([]byte, 12)) {
		t.Fatalf("first nonce = %x", ct0[:12])
	}
	want := make([]byte, 12)
	want[0] = 1
	if !bytes.Equal(ct1[:12], want) {
		t.Fatalf("second nonce = %x", ct1[:12])
	}
}

func TestSecureChannelRejectsReplay(t *testing.T) {
	initiator, responder := establishedPair(t)

	ct0, _ := initiator.Encrypt([]byte("msg0"), nil)
	ct1, _ := initiator.Encrypt([]byte("msg1"), nil)

	if _, err := responder.Decrypt(ct1, nil); err != nil {
		t.Fatalf("Decrypt ct1: %v", err)
	}
	if _, err := responder.Decrypt(ct1, nil); err != ErrReplay {
		t.Fatalf("expected ErrReplay for repeated message, got %v", err)
	}
	if _, err := responder.Decrypt(ct0, nil); err != ErrReplay {
		t.Fatalf("expected ErrReplay for older message, got %v", err)
	}
}

func TestSecureChannelForgeryDoesNotAdvanceWindow(t *testing.T) {
	initiator, responder := establishedPair(t)

	ct0, _ := initiator.Encrypt([]byte("msg0"), nil)

	forged := append([]byte{}, ct0...)
	forged[11] = 0xff // claims a far-future nonce
	if _, err := responder.Decrypt(forged, nil); err != ErrDecryptionFailed {
		t.Fatalf("expected ErrDecryptionFailed, got %v", err)
	}
	if _, err := responder.Decrypt(ct0, nil); err != nil {
		t.Fatalf("genuine message rejected after forgery: %v", err)
	}
}

func TestSecureChannelRekey(t *testing.T) {
	initiator, responder := establishedPair(t)

	ct, _ := initiator.Encrypt([]byte("before"), nil)
	if _, err := responder.Decrypt(ct, nil); err != nil {
		t.Fatalf("Decrypt: %v", err)
	}

	if err := initiator.Rekey(); err != nil {
		t.Fatalf("initiator.Rekey: %v", err)
	}
	if err := responder.Rekey(); err != nil {
		t.Fatalf("responder.Rekey: %v", err)
	}
	if initiator.Epoch() != 1 || responder.Epoch() != 1 {
		t.Fatalf("unexpected epochs")
	}

	// Nonces restart at zero under the new keys.
	after, err := initiator.Encrypt([]byte("after"), nil)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if !bytes.Equal(after[:12], ct[:12]) {
		t.Fatalf("nonce did not reset")
	}
	pt, err := responder.Decrypt(after, nil)
	if err != nil {
		t.Fatalf("Decrypt after rekey: %v", err)
	}
	if string(pt) != "after" {
		t.Fatalf("unexpected plaintext %q", pt)
	}

	// The pre-rekey message no longer authenticates.
	if _, err := responder.Decrypt(ct, nil); err == nil {
		t.Fatalf("old-epoch message accepted")
	}
}

func TestSecureChannelNotEstablished(t *testing.T) {
	sc, _ := NewSecureChannelInitiator()
	if sc.IsEstablished() {
		t.Fatalf("fresh channel reported established")
	}
	if _, err := sc.Encrypt([]byte("x"), nil); err != ErrChannelNotEstablished {
		t.Fatalf("expected ErrChannelNotEstablished, got %v", err)
	}
	if _, err := sc.Decrypt(make([]byte, 40), nil); err != ErrChannelNotEstablished {
		t.Fatalf("expected ErrChannelNotEstablished, got %v", err)
	}
	if err := sc.Rekey(); err != ErrChannelNotEstablished {
		t.Fatalf("expected ErrChannelNotEstablished, got %v", err)
	}
}

func BenchmarkSecureChannelEncrypt(b *testing.B) {
	initiator, _ := establishedPair(b)

	msg := make([]byte, 1024)
	b.SetBytes(int64(len(msg)))
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_, _ = initiator.Encrypt(msg, nil)
	}
}

func BenchmarkSecureChannelDecrypt(b *testing.B) {
	initiator, responder := establishedPair(b)

	msg := make([]byte, 1024)
	var ciphertexts [][]byte
	for i := 0; i < b.N; i++ {
		ct, _ := initiator.Encrypt(msg, nil)
		ciphertexts = append(ciphertexts, ct)
	}

	b.SetBytes(int64(len(msg)))
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_, _ = responder.Decrypt(ciphertexts[i], nil)
	}
}
