package keygen

import (
	"bytes"
	"encoding/pem"
	"strings"
	"testing"

	"golang.org/x/crypto/ssh"
)

func TestGenerateED25519KeyPair(t *testing.T) {
	kp, err := GenerateED25519KeyPair("demo")
	if err != nil {
		t.Fatalf("GenerateED25519KeyPair: %v", err)
	}

	block, _ := pem.Decode(kp.PrivateKey)
	if block == nil {
		t.Fatal("private key is not PEM encoded")
	}
	if block.Type != "OPENSSH PRIVATE KEY" {
		t.Errorf("unexpected PEM type %q", block.Type)
	}
	if _, err := ssh.ParsePrivateKey(kp.PrivateKey); err != nil {
		t.Errorf("private key does not parse: %v", err)
	}

	if !strings.HasPrefix(string(kp.PublicKey), "ssh-ed25519 ") {
		t.Errorf("public key has wrong prefix: %s", kp.PublicKey)
	}
	if _, _, _, _, err := ssh.ParseAuthorizedKey(kp.PublicKey); err != nil {
		t.Errorf("public key does not parse: %v", err)
	}
}

func TestGenerateED25519KeyPairIsRandom(t *testing.T) {
	first, err := GenerateED25519KeyPair("demo")
	if err != nil {
		t.Fatal(err)
	}
	second, err := GenerateED25519KeyPair("demo")
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(first.PublicKey, second.PublicKey) {
		t.Error("two generated key pairs share a public key")
	}
}
