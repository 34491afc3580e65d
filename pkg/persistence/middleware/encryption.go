package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/switchboard/pkg/domain"
	"github.com/aretw0/switchboard/pkg/ports"
)

// cipherPrefix marks an encrypted message text.
const cipherPrefix = "enc:v1:"

// ErrNotEncrypted is returned when a stored message lacks the cipher prefix.
var ErrNotEncrypted = errors.New("message text is not encrypted")

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new data.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys are tried in order when the active key cannot decrypt.
	FallbackKeys [][]byte
}

type encryptionMiddleware struct {
	passthrough
	config EncryptionConfig
}

// NewEncryptionMiddleware encrypts each message text with AES-GCM before saving
// and decrypts it on load. It panics if the active key is not 32 bytes.
func NewEncryptionMiddleware(config EncryptionConfig) Middleware {
	if len(config.ActiveKey) != 32 {
		panic("active key must be 32 bytes (AES-256)")
	}
	return func(next ports.ManagedRepository) ports.ManagedRepository {
		return &encryptionMiddleware{passthrough: passthrough{next: next}, config: config}
	}
}

func (m *encryptionMiddleware) Save(ctx context.Context, session *domain.AgentSession) error {
	sealed, err := rewriteTexts(session, func(text string) (string, error) {
		ciphertext, err := encrypt([]byte(text), m.config.ActiveKey)
		if err != nil {
			return "", fmt.Errorf("failed to encrypt message: %w", err)
		}
		return cipherPrefix + base64.StdEncoding.EncodeToString(ciphertext), nil
	})
	if err != nil {
		return err
	}
	return m.next.Save(ctx, sealed)
}

func (m *encryptionMiddleware) FindByID(ctx context.Context, id domain.SessionID) (*domain.AgentSession, error) {
	stored, err := m.next.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return rewriteTexts(stored, func(text string) (string, error) {
		encoded, ok := strings.CutPrefix(text, cipherPrefix)
		if !ok {
			// Fail secure: plaintext in an encrypted store is treated as tampering.
			return "", ErrNotEncrypted
		}
		ciphertext, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return "", fmt.Errorf("failed to decode ciphertext base64: %w", err)
		}
		plain, err := decryptWithRotation(ciphertext, m.config.ActiveKey, m.config.FallbackKeys)
		if err != nil {
			return "", fmt.Errorf("failed to decrypt message: %w", err)
		}
		return string(plain), nil
	})
}

func encrypt(plaintext []byte, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decryptWithRotation(ciphertext []byte, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	if plain, err := decrypt(ciphertext, activeKey); err == nil {
		return plain, nil
	}
	for _, key := range fallbackKeys {
		if plain, err := decrypt(ciphertext, key); err == nil {
			return plain, nil
		}
	}
	return nil, errors.New("decryption failed with all available keys")
}

func decrypt(ciphertext []byte, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}
	nonce, body := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, body, nil)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
