package jwt

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
)

// KeyPair mantiene la clave Ed25519 del servicio. Una sola clave activa;
// la firma se hace con la privada y la verificación solo necesita la pública.
type KeyPair struct {
	Priv ed25519.PrivateKey
	Pub  ed25519.PublicKey
}

// GenerateKeyPair genera una clave Ed25519 en memoria.
func GenerateKeyPair() (*KeyPair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	return &KeyPair{Priv: priv, Pub: pub}, nil
}

// LoadKeyPair lee la pareja de claves desde archivos PEM (PKCS8 / PKIX).
func LoadKeyPair(privPath, pubPath string) (*KeyPair, error) {
	priv, err := LoadPrivateKey(privPath)
	if err != nil {
		return nil, err
	}
	pub, err := LoadPublicKey(pubPath)
	if err != nil {
		return nil, err
	}
	return &KeyPair{Priv: priv, Pub: pub}, nil
}

// LoadPrivateKey lee una clave privada Ed25519 desde un PEM PKCS8.
func LoadPrivateKey(path string) (ed25519.PrivateKey, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	block, _ := pem.Decode(b)
	if block == nil {
		return nil, fmt.Errorf("jwt: %s: no PEM block", path)
	}
	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("jwt: parse private key: %w", err)
	}
	priv, ok := key.(ed25519.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("jwt: %s: not an ed25519 key", path)
	}
	return priv, nil
}

// LoadPublicKey lee una clave pública Ed25519 desde un PEM PKIX.
func LoadPublicKey(path string) (ed25519.PublicKey, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	block, _ := pem.Decode(b)
	if block == nil {
		return nil, fmt.Errorf("jwt: %s: no PEM block", path)
	}
	key, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("jwt: parse public key: %w", err)
	}
	pub, ok := key.(ed25519.PublicKey)
	if !ok {
		return nil, fmt.Errorf("jwt: %s: not an ed25519 key", path)
	}
	return pub, nil
}

// WritePEM serializa la pareja a dos archivos PEM (cmd keys).
func (k *KeyPair) WritePEM(privPath, pubPath string) error {
	privDER, err := x509.MarshalPKCS8PrivateKey(k.Priv)
	if err != nil {
		return err
	}
	pubDER, err := x509.MarshalPKIXPublicKey(k.Pub)
	if err != nil {
		return err
	}
	privPEM := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: privDER})
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})
	if err := os.WriteFile(privPath, privPEM, 0o600); err != nil {
		return err
	}
	return os.WriteFile(pubPath, pubPEM, 0o644)
}
