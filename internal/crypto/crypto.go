package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/hkdf"
)

// EncryptedPrefix marks values stored encrypted at rest
const EncryptedPrefix = "ENC:"

const keySize = 32

// KeyManager encrypts and decrypts credentials with AES-256-GCM
type KeyManager struct {
	key []byte
}

// NewKeyManager loads the master key from keyFile, generating a random key
// on first use.
func NewKeyManager(keyFile string) (*KeyManager, error) {
	key, err := loadOrCreateKey(keyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load encryption key: %w", err)
	}
	return &KeyManager{key: key}, nil
}

// NewKeyManagerFromSecret derives the key from a shared secret, so several
// hosts can read the same settings file.
func NewKeyManagerFromSecret(secret string) *KeyManager {
	key := make([]byte, keySize)
	// A 32 byte read from HKDF-SHA256 cannot fail
	_, _ = io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte("modelcfg-settings-key-v1")), key)
	return &KeyManager{key: key}
}

func loadOrCreateKey(keyFile string) ([]byte, error) {
	data, err := os.ReadFile(keyFile)
	if err == nil {
		if len(data) != keySize {
			return nil, fmt.Errorf("key file %s has %d bytes, want %d", keyFile, len(data), keySize)
		}
		return data, nil
	}
	if !os.IsNotExist(err) {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(keyFile), 0700); err != nil {
		return nil, fmt.Errorf("failed to create key directory: %w", err)
	}

	key := make([]byte, keySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	if err := os.WriteFile(keyFile, key, 0600); err != nil {
		return nil, fmt.Errorf("failed to write key file: %w", err)
	}
	return key, nil
}

func (km *KeyManager) gcm() (cipher.AEAD, error) {
	block, err := aes.NewCipher(km.key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}

// Encrypt returns the prefixed ciphertext of plaintext. Empty stays empty.
func (km *KeyManager) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	gcm, err := km.gcm()
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	ciphertext := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return EncryptedPrefix + base64.StdEncoding.EncodeToString(ciphertext), nil
}

// Decrypt reverses Encrypt
func (km *KeyManager) Decrypt(ciphertext string) (string, error) {
	if ciphertext == "" {
		return "", nil
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(ciphertext, EncryptedPrefix))
	if err != nil {
		return "", fmt.Errorf("failed to decode ciphertext: %w", err)
	}

	gcm, err := km.gcm()
	if err != nil {
		return "", err
	}

	nonceSize := gcm.NonceSize()
	if len(decoded) < nonceSize {
		return "", fmt.Errorf("ciphertext too short")
	}

	nonce, sealed := decoded[:nonceSize], decoded[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt: %w", err)
	}

	return string(plaintext), nil
}

// DecryptIfNeeded decrypts value when it carries the encrypted prefix and
// returns it unchanged otherwise. Hand-edited plaintext files stay readable.
func (km *KeyManager) DecryptIfNeeded(value string) (string, error) {
	if !IsEncrypted(value) {
		return value, nil
	}
	return km.Decrypt(value)
}

// IsEncrypted reports whether value looks like the output of Encrypt
func IsEncrypted(value string) bool {
	if !strings.HasPrefix(value, EncryptedPrefix) {
		return false
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(value, EncryptedPrefix))
	if err != nil {
		return false
	}

	// 12-byte GCM nonce plus a 16-byte tag at minimum
	return len(decoded) >= 28
}
