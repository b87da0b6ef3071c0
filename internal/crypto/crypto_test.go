package crypto

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestKeyManager(t *testing.T) {
	km := NewKeyManagerFromSecret("test-secret")

	t.Run("Encrypt and Decrypt", func(t *testing.T) {
		testCases := []struct {
			name      string
			plaintext string
		}{
			{"Empty string", ""},
			{"Short API key", "test-123"},
			{"OpenRouter key", "sk-or-v1-0123456789abcdef0123456789abcdef"},
			{"Special characters", "test-!@#$%^&*()_+-=[]{}|;:',.<>?/~`"},
			{"Unicode characters", "test-🔑-こんにちは"},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				encrypted, err := km.Encrypt(tc.plaintext)
				if err != nil {
					t.Fatalf("Encrypt failed: %v", err)
				}

				if tc.plaintext == "" {
					if encrypted != "" {
						t.Errorf("Expected empty ciphertext for empty plaintext, got %q", encrypted)
					}
					return
				}

				if !strings.HasPrefix(encrypted, EncryptedPrefix) {
					t.Errorf("Encrypted value should have prefix %q, got %q", EncryptedPrefix, encrypted)
				}

				decrypted, err := km.Decrypt(encrypted)
				if err != nil {
					t.Fatalf("Decrypt failed: %v", err)
				}
				if decrypted != tc.plaintext {
					t.Errorf("Decrypted value %q doesn't match original %q", decrypted, tc.plaintext)
				}
			})
		}
	})

	t.Run("Random nonce", func(t *testing.T) {
		e1, _ := km.Encrypt("same")
		e2, _ := km.Encrypt("same")
		if e1 == e2 {
			t.Error("Same plaintext produced identical ciphertexts")
		}
	})

	t.Run("Invalid ciphertext", func(t *testing.T) {
		for _, invalid := range []string{"not-base64!@#$", "aGVsbG8=", EncryptedPrefix + "invalid"} {
			if _, err := km.Decrypt(invalid); err == nil {
				t.Errorf("Expected error when decrypting %q", invalid)
			}
		}
	})

	t.Run("Wrong key", func(t *testing.T) {
		encrypted, _ := km.Encrypt("secret-value")
		other := NewKeyManagerFromSecret("other-secret")
		if _, err := other.Decrypt(encrypted); err == nil {
			t.Error("Expected error when decrypting with a different key")
		}
	})
}

func TestDecryptIfNeeded(t *testing.T) {
	km := NewKeyManagerFromSecret("test-secret")

	plain, err := km.DecryptIfNeeded("sk-plaintext")
	if err != nil || plain != "sk-plaintext" {
		t.Errorf("DecryptIfNeeded(plaintext) = %q, %v", plain, err)
	}

	encrypted, _ := km.Encrypt("sk-hidden")
	got, err := km.DecryptIfNeeded(encrypted)
	if err != nil || got != "sk-hidden" {
		t.Errorf("DecryptIfNeeded(encrypted) = %q, %v", got, err)
	}
}

func TestIsEncrypted(t *testing.T) {
	km := NewKeyManagerFromSecret("test-secret")
	encrypted, _ := km.Encrypt("sk-value")

	tests := []struct {
		value string
		want  bool
	}{
		{encrypted, true},
		{"", false},
		{"sk-ant-REDACTED", false},
		{"aGVsbG8=", false},
		{EncryptedPrefix + "not-valid-base64!@#", false},
		{EncryptedPrefix + "aGVsbG8=", false},
	}

	for _, tt := range tests {
		if got := IsEncrypted(tt.value); got != tt.want {
			t.Errorf("IsEncrypted(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestNewKeyManagerKeyFile(t *testing.T) {
	keyFile := filepath.Join(t.TempDir(), ".keys", "master.key")

	km1, err := NewKeyManager(keyFile)
	if err != nil {
		t.Fatalf("NewKeyManager() error = %v", err)
	}

	info, err := os.Stat(keyFile)
	if err != nil {
		t.Fatalf("key file not created: %v", err)
	}
	if info.Size() != keySize {
		t.Errorf("key file size = %d, want %d", info.Size(), keySize)
	}

	km2, err := NewKeyManager(keyFile)
	if err != nil {
		t.Fatalf("NewKeyManager() second call error = %v", err)
	}

	encrypted, _ := km1.Encrypt("cross-manager")
	decrypted, err := km2.Decrypt(encrypted)
	if err != nil || decrypted != "cross-manager" {
		t.Errorf("cross-manager decrypt = %q, %v", decrypted, err)
	}
}

func TestNewKeyManagerRejectsTruncatedKey(t *testing.T) {
	keyFile := filepath.Join(t.TempDir(), "master.key")
	if err := os.WriteFile(keyFile, []byte("short"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := NewKeyManager(keyFile); err == nil {
		t.Error("NewKeyManager() expected error for truncated key")
	}
}

func BenchmarkEncrypt(b *testing.B) {
	km := NewKeyManagerFromSecret("bench")
	for i := 0; i < b.N; i++ {
		_, _ = km.Encrypt("sk-or-v1-benchmark-test-key-123456789")
	}
}
