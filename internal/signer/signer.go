// Package signer packages oracle results into signed intent-message
// envelopes. The attestation document itself comes from the enclave
// platform; this package only covers message signing with the server's
// ephemeral keypair.
package signer

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/sakif/oracle-enclave/internal/model"
)

// Signer produces signed envelopes over oracle results.
type Signer interface {
	Sign(result model.OracleValue, timestampMS uint64, intent model.IntentScope) (*model.SignedEnvelope, error)
	PublicKeyHex() string
}

// Ed25519Signer signs intent messages with an ed25519 keypair. The signature
// covers the canonical JSON encoding of the intent message, so a verifier
// re-encodes the message and checks the signature against the public key.
type Ed25519Signer struct {
	priv ed25519.PrivateKey
}

// Generate creates a signer with a fresh ephemeral keypair, the way the
// enclave boots when no key material is configured.
func Generate() (*Ed25519Signer, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("signer: generating keypair: %w", err)
	}
	return &Ed25519Signer{priv: priv}, nil
}

// NewFromSeed creates a signer from a hex-encoded 32-byte seed.
func NewFromSeed(seedHex string) (*Ed25519Signer, error) {
	seed, err := hex.DecodeString(seedHex)
	if err != nil {
		return nil, fmt.Errorf("signer: decoding seed: %w", err)
	}
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("signer: seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	return &Ed25519Signer{priv: ed25519.NewKeyFromSeed(seed)}, nil
}

// Sign wraps result in an intent message and signs it.
func (s *Ed25519Signer) Sign(result model.OracleValue, timestampMS uint64, intent model.IntentScope) (*model.SignedEnvelope, error) {
	msg := model.IntentMessage{
		IntentScope: intent,
		TimestampMS: timestampMS,
		Data:        model.UpdateResponse{Result: result},
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("signer: encoding intent message: %w", err)
	}

	sig := ed25519.Sign(s.priv, payload)
	return &model.SignedEnvelope{
		Response:  msg,
		Signature: hex.EncodeToString(sig),
		PublicKey: s.PublicKeyHex(),
	}, nil
}

// PublicKeyHex returns the hex-encoded public key.
func (s *Ed25519Signer) PublicKeyHex() string {
	return hex.EncodeToString(s.priv.Public().(ed25519.PublicKey))
}

// Verify checks an envelope's signature against its embedded public key.
func Verify(env *model.SignedEnvelope) (bool, error) {
	pub, err := hex.DecodeString(env.PublicKey)
	if err != nil || len(pub) != ed25519.PublicKeySize {
		return false, fmt.Errorf("signer: invalid public key")
	}
	sig, err := hex.DecodeString(env.Signature)
	if err != nil {
		return false, fmt.Errorf("signer: invalid signature encoding")
	}
	payload, err := json.Marshal(env.Response)
	if err != nil {
		return false, fmt.Errorf("signer: encoding intent message: %w", err)
	}
	return ed25519.Verify(ed25519.PublicKey(pub), payload, sig), nil
}
