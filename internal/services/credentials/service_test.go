package credentials

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/censeo/internal/common"
	"github.com/ternarybob/censeo/internal/interfaces"
)

type memoryKVStorage struct {
	pairs map[string]string
}

func newMemoryKVStorage() *memoryKVStorage {
	return &memoryKVStorage{pairs: make(map[string]string)}
}

func (m *memoryKVStorage) Get(ctx context.Context, key string) (string, error) {
	value, ok := m.pairs[key]
	if !ok {
		return "", interfaces.ErrKeyNotFound
	}
	return value, nil
}

func (m *memoryKVStorage) GetPair(ctx context.Context, key string) (*interfaces.KeyValuePair, error) {
	value, ok := m.pairs[key]
	if !ok {
		return nil, interfaces.ErrKeyNotFound
	}
	return &interfaces.KeyValuePair{Key: key, Value: value, CreatedAt: time.Now(), UpdatedAt: time.Now()}, nil
}

func (m *memoryKVStorage) Set(ctx context.Context, key, value, description string) error {
	m.pairs[key] = value
	return nil
}

func (m *memoryKVStorage) Delete(ctx context.Context, key string) error {
	if _, ok := m.pairs[key]; !ok {
		return interfaces.ErrKeyNotFound
	}
	delete(m.pairs, key)
	return nil
}

func newTestService(t *testing.T, storage interfaces.KeyValueStorage, encryptionKey string) *Service {
	t.Helper()
	service, err := NewService(storage, encryptionKey, common.GetLogger())
	require.NoError(t, err)
	return service
}

func TestStoreAndResolve(t *testing.T) {
	storage := newMemoryKVStorage()
	service := newTestService(t, storage, "unit-test-secret")

	require.NoError(t, service.Store(context.Background(), "user_1", "provider-key-abc"))

	resolved, err := service.Resolve(context.Background(), "user_1")
	require.NoError(t, err)
	assert.Equal(t, "provider-key-abc", resolved)

	// Stored value must not be the plaintext key
	stored := storage.pairs["apikey:user_1"]
	assert.NotEmpty(t, stored)
	assert.NotContains(t, stored, "provider-key-abc")
}

func TestResolveMissingKey(t *testing.T) {
	service := newTestService(t, newMemoryKVStorage(), "unit-test-secret")

	_, err := service.Resolve(context.Background(), "user_unknown")
	require.Error(t, err)

	var missing *MissingCredentialError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "user_unknown", missing.UserID)
}

func TestResolveWithRotatedEncryptionKey(t *testing.T) {
	storage := newMemoryKVStorage()
	original := newTestService(t, storage, "original-secret")
	require.NoError(t, original.Store(context.Background(), "user_1", "provider-key-abc"))

	rotated := newTestService(t, storage, "rotated-secret")
	_, err := rotated.Resolve(context.Background(), "user_1")
	require.Error(t, err)

	var decryptErr *DecryptionError
	assert.True(t, errors.As(err, &decryptErr))
}

func TestStoreReplacesExistingKey(t *testing.T) {
	service := newTestService(t, newMemoryKVStorage(), "unit-test-secret")

	require.NoError(t, service.Store(context.Background(), "user_1", "first-key"))
	require.NoError(t, service.Store(context.Background(), "user_1", "second-key"))

	resolved, err := service.Resolve(context.Background(), "user_1")
	require.NoError(t, err)
	assert.Equal(t, "second-key", resolved)
}

func TestDeleteIsIdempotent(t *testing.T) {
	service := newTestService(t, newMemoryKVStorage(), "unit-test-secret")

	require.NoError(t, service.Store(context.Background(), "user_1", "provider-key-abc"))
	require.NoError(t, service.Delete(context.Background(), "user_1"))
	require.NoError(t, service.Delete(context.Background(), "user_1"))

	_, err := service.Resolve(context.Background(), "user_1")
	require.Error(t, err)
}

func TestNewServiceRequiresEncryptionKey(t *testing.T) {
	_, err := NewService(newMemoryKVStorage(), "", common.GetLogger())
	require.Error(t, err)
}

func TestStoreRejectsEmptyKey(t *testing.T) {
	service := newTestService(t, newMemoryKVStorage(), "unit-test-secret")
	require.Error(t, service.Store(context.Background(), "user_1", ""))
}
