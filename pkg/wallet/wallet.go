// Package wallet implements a local signing backend over secp256k1 ECDSA.
//
// The transaction core treats public keys and signatures as opaque strings;
// this package is the collaborator that actually produces them. Given a
// spend's message hash (32 bytes, lowercase hex) it returns the signer's
// public key and a signature the other participants can verify out of band.
//
// Formats:
//   - Private keys: WIF (Wallet Import Format) or raw 32 bytes
//   - Public keys: lowercase hex of the 33-byte compressed point
//   - Signatures: lowercase hex of the DER-encoded ECDSA signature
package wallet

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/btcsuite/btcutil/base58"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"github.com/suffix-labs/multinote/pkg/note"
)

// Keypair holds a signer's secp256k1 private key.
type Keypair struct {
	key *secp256k1.PrivateKey
}

// Generate creates a new random keypair.
func Generate() (*Keypair, error) {
	key, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	return &Keypair{key: key}, nil
}

// FromBytes creates a keypair from a raw 32-byte private key.
func FromBytes(keyBytes []byte) (*Keypair, error) {
	if len(keyBytes) != 32 {
		return nil, fmt.Errorf("private key must be 32 bytes, got %d", len(keyBytes))
	}
	return &Keypair{key: secp256k1.PrivKeyFromBytes(keyBytes)}, nil
}

// FromWIF creates a keypair from a WIF-encoded private key.
func FromWIF(wif string) (*Keypair, error) {
	raw, err := decodeWIF(wif)
	if err != nil {
		return nil, err
	}
	return &Keypair{key: secp256k1.PrivKeyFromBytes(raw)}, nil
}

// PublicKey returns the signer identity in the core's opaque form:
// lowercase hex of the compressed public key.
func (k *Keypair) PublicKey() note.PublicKey {
	return note.PublicKey(hex.EncodeToString(k.key.PubKey().SerializeCompressed()))
}

// Bytes returns the raw 32-byte private key.
func (k *Keypair) Bytes() []byte {
	return k.key.Serialize()
}

// WIF returns the private key in Wallet Import Format. Keys in this module
// always correspond to compressed public keys, so the compression flag is
// always set.
func (k *Keypair) WIF(testnet bool) string {
	return encodeWIF(k.key.Serialize(), testnet)
}

// Sign signs a spend's message hash and returns the (pubkey, signature)
// pair the signature ledger expects. The digest must be 32 bytes of
// lowercase hex, exactly as produced by the digest engine.
func (k *Keypair) Sign(messageHash string) (note.PublicKey, note.Signature, error) {
	hash, err := decodeDigest(messageHash)
	if err != nil {
		return "", "", err
	}
	sig := ecdsa.Sign(k.key, hash)
	return k.PublicKey(), note.Signature(hex.EncodeToString(sig.Serialize())), nil
}

// Verify checks an ECDSA signature against a message hash and a public key,
// all in the opaque string forms used across the module. Returns false on
// any malformed input.
//
// The transaction core never calls this; it exists so clients can check
// collected signatures before wasting a broadcast attempt.
func Verify(pk note.PublicKey, messageHash string, sig note.Signature) bool {
	hash, err := decodeDigest(messageHash)
	if err != nil {
		return false
	}
	pkBytes, err := hex.DecodeString(string(pk))
	if err != nil || len(pkBytes) != 33 {
		return false
	}
	pubkey, err := secp256k1.ParsePubKey(pkBytes)
	if err != nil {
		return false
	}
	sigBytes, err := hex.DecodeString(string(sig))
	if err != nil {
		return false
	}
	parsed, err := ecdsa.ParseDERSignature(sigBytes)
	if err != nil {
		return false
	}
	return parsed.Verify(hash, pubkey)
}

func decodeDigest(messageHash string) ([]byte, error) {
	hash, err := hex.DecodeString(messageHash)
	if err != nil {
		return nil, fmt.Errorf("message hash is not hex: %w", err)
	}
	if len(hash) != 32 {
		return nil, fmt.Errorf("message hash must be 32 bytes, got %d", len(hash))
	}
	return hash, nil
}

// decodeWIF decodes a WIF-encoded private key.
// WIF format: version byte || private key (32 bytes) || [compression flag] || checksum (4 bytes)
func decodeWIF(wif string) ([]byte, error) {
	decoded := base58.Decode(wif)
	if len(decoded) != 37 && len(decoded) != 38 {
		return nil, errors.New("invalid WIF length")
	}

	version := decoded[0]
	if version != 0x80 && version != 0xef {
		return nil, fmt.Errorf("invalid WIF version byte: 0x%02x", version)
	}

	checksumOffset := len(decoded) - 4
	provided := decoded[checksumOffset:]
	payload := decoded[:checksumOffset]

	hash1 := sha256.Sum256(payload)
	hash2 := sha256.Sum256(hash1[:])
	for i := 0; i < 4; i++ {
		if provided[i] != hash2[i] {
			return nil, errors.New("WIF checksum mismatch")
		}
	}

	return payload[1:33], nil
}

// encodeWIF encodes a raw private key to WIF with the compression flag set.
func encodeWIF(privateKey []byte, testnet bool) string {
	version := byte(0x80) // mainnet
	if testnet {
		version = 0xef
	}

	payload := make([]byte, 0, 38)
	payload = append(payload, version)
	payload = append(payload, privateKey...)
	payload = append(payload, 0x01) // compressed

	hash1 := sha256.Sum256(payload)
	hash2 := sha256.Sum256(hash1[:])
	payload = append(payload, hash2[:4]...)

	return base58.Encode(payload)
}
