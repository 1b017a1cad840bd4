package sshkey

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"

	"golang.org/x/crypto/ssh"
)

// Key types accepted by Generate and ParsePrivateKey.
const (
	TypeRSA     = "rsa"
	TypeEd25519 = "ed25519"
)

// RSABits is the size of generated RSA keys.
const RSABits = 2048

// ErrTypeMismatch is returned when key material does not match its declared type.
var ErrTypeMismatch = errors.New("private key type does not match declared type")

// KeyPair represents an SSH key pair
type KeyPair struct {
	Type           string
	PrivateKey     string // PEM
	PublicKey      string // authorized_keys line
	Fingerprint    string // SHA256
	PrivateKeyName string // id_rsa / id_ed25519
	PublicKeyName  string // id_rsa.pub / id_ed25519.pub
}

// Generate creates a key pair of the given type.
func Generate(keyType string) (*KeyPair, error) {
	switch keyType {
	case TypeRSA:
		return GenerateRSAKeyPair(RSABits)
	case TypeEd25519:
		return GenerateEd25519KeyPair()
	default:
		return nil, fmt.Errorf("unsupported key type: %s", keyType)
	}
}

// GenerateRSAKeyPair generates an RSA key pair. The private key is written in
// the traditional PKCS#1 "RSA PRIVATE KEY" PEM format that older bank
// servers and paramiko-based tools accept.
func GenerateRSAKeyPair(bitSize int) (*KeyPair, error) {
	if bitSize < RSABits {
		bitSize = RSABits
	}

	privateKey, err := rsa.GenerateKey(rand.Reader, bitSize)
	if err != nil {
		return nil, fmt.Errorf("failed to generate private key: %w", err)
	}

	privateKeyBytes := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(privateKey),
	})

	publicKey, err := ssh.NewPublicKey(&privateKey.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("failed to generate public key: %w", err)
	}

	return &KeyPair{
		Type:           TypeRSA,
		PrivateKey:     string(privateKeyBytes),
		PublicKey:      string(ssh.MarshalAuthorizedKey(publicKey)),
		Fingerprint:    ssh.FingerprintSHA256(publicKey),
		PrivateKeyName: "id_rsa",
		PublicKeyName:  "id_rsa.pub",
	}, nil
}

// GenerateEd25519KeyPair generates an Ed25519 key pair in the OpenSSH
// private key format.
func GenerateEd25519KeyPair() (*KeyPair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate private key: %w", err)
	}

	block, err := ssh.MarshalPrivateKey(priv, "")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal private key: %w", err)
	}

	publicKey, err := ssh.NewPublicKey(pub)
	if err != nil {
		return nil, fmt.Errorf("failed to generate public key: %w", err)
	}

	return &KeyPair{
		Type:           TypeEd25519,
		PrivateKey:     string(pem.EncodeToMemory(block)),
		PublicKey:      string(ssh.MarshalAuthorizedKey(publicKey)),
		Fingerprint:    ssh.FingerprintSHA256(publicKey),
		PrivateKeyName: "id_ed25519",
		PublicKeyName:  "id_ed25519.pub",
	}, nil
}

// ParsePrivateKey parses PEM key material and checks it against the declared
// type. A mismatch is an error, never a silent fallback.
func ParsePrivateKey(keyType string, material []byte) (ssh.Signer, error) {
	if len(material) == 0 {
		return nil, errors.New("private key is empty")
	}

	signer, err := ssh.ParsePrivateKey(material)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	want := ""
	switch keyType {
	case TypeRSA:
		want = ssh.KeyAlgoRSA
	case TypeEd25519:
		want = ssh.KeyAlgoED25519
	default:
		return nil, fmt.Errorf("unsupported key type: %s", keyType)
	}

	if got := signer.PublicKey().Type(); got != want {
		return nil, fmt.Errorf("%w: declared %s, got %s", ErrTypeMismatch, keyType, got)
	}
	return signer, nil
}

// ParsePublicKey parses an OpenSSH format public key
func ParsePublicKey(publicKeyStr string) (ssh.PublicKey, error) {
	publicKey, _, _, _, err := ssh.ParseAuthorizedKey([]byte(publicKeyStr))
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}
	return publicKey, nil
}

// GetFingerprint calculates the SHA256 fingerprint of a public key
func GetFingerprint(publicKeyStr string) (string, error) {
	publicKey, err := ParsePublicKey(publicKeyStr)
	if err != nil {
		return "", err
	}
	return ssh.FingerprintSHA256(publicKey), nil
}
