// Package credentials stores and resolves per-user provider API keys.
// Keys are encrypted with AES-256-GCM before they reach the key/value
// store, so a copied database file does not leak credentials.
package credentials

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/censeo/internal/interfaces"
)

const keyPrefix = "apikey:"

// MissingCredentialError indicates the user never stored an API key.
type MissingCredentialError struct {
	UserID string
}

func (e *MissingCredentialError) Error() string {
	return fmt.Sprintf("no provider API key stored for user %s", e.UserID)
}

// DecryptionError indicates a stored key could not be decrypted,
// usually after an encryption key rotation.
type DecryptionError struct {
	Err error
}

func (e *DecryptionError) Error() string {
	return fmt.Sprintf("failed to decrypt stored API key: %v", e.Err)
}

func (e *DecryptionError) Unwrap() error {
	return e.Err
}

// Service encrypts, stores and resolves provider API keys.
type Service struct {
	storage interfaces.KeyValueStorage
	gcm     cipher.AEAD
	logger  arbor.ILogger
}

// NewService creates a credential service. The encryption key is any
// non-empty secret; it is hashed to a 32-byte AES key.
func NewService(storage interfaces.KeyValueStorage, encryptionKey string, logger arbor.ILogger) (*Service, error) {
	if encryptionKey == "" {
		return nil, errors.New("credential encryption key is required")
	}

	hashed := sha256.Sum256([]byte(encryptionKey))
	block, err := aes.NewCipher(hashed[:])
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &Service{
		storage: storage,
		gcm:     gcm,
		logger:  logger,
	}, nil
}

// Resolve returns the decrypted API key for a user.
func (s *Service) Resolve(ctx context.Context, userID string) (string, error) {
	encrypted, err := s.storage.Get(ctx, keyPrefix+userID)
	if err != nil {
		if errors.Is(err, interfaces.ErrKeyNotFound) {
			return "", &MissingCredentialError{UserID: userID}
		}
		return "", fmt.Errorf("failed to read stored API key: %w", err)
	}

	apiKey, err := s.decrypt(encrypted)
	if err != nil {
		return "", &DecryptionError{Err: err}
	}
	return apiKey, nil
}

// Store encrypts and persists a user's API key, replacing any
// previous one.
func (s *Service) Store(ctx context.Context, userID, apiKey string) error {
	if apiKey == "" {
		return errors.New("api key is required")
	}

	encrypted, err := s.encrypt(apiKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt API key: %w", err)
	}

	if err := s.storage.Set(ctx, keyPrefix+userID, encrypted, "provider API key"); err != nil {
		return fmt.Errorf("failed to store API key: %w", err)
	}

	s.logger.Info().Str("user_id", userID).Msg("Stored provider API key")
	return nil
}

// Delete removes a user's stored API key. Deleting a key that does not
// exist is not an error.
func (s *Service) Delete(ctx context.Context, userID string) error {
	if err := s.storage.Delete(ctx, keyPrefix+userID); err != nil {
		if errors.Is(err, interfaces.ErrKeyNotFound) {
			return nil
		}
		return fmt.Errorf("failed to delete API key: %w", err)
	}

	s.logger.Info().Str("user_id", userID).Msg("Deleted provider API key")
	return nil
}

func (s *Service) encrypt(plaintext string) (string, error) {
	nonce := make([]byte, s.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	sealed := s.gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (s *Service) decrypt(encoded string) (string, error) {
	sealed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", err
	}
	if len(sealed) < s.gcm.NonceSize() {
		return "", errors.New("ciphertext too short")
	}

	nonce, ciphertext := sealed[:s.gcm.NonceSize()], sealed[s.gcm.NonceSize():]
	plaintext, err := s.gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}
