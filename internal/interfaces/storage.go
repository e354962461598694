package interfaces

import (
	"context"
	"errors"
	"time"

	"github.com/ternarybob/censeo/internal/models"
)

// ErrKeyNotFound is returned when a key/value pair does not exist
var ErrKeyNotFound = errors.New("key not found")

// ErrRecordNotFound is returned when an analysis record does not exist
var ErrRecordNotFound = errors.New("analysis record not found")

// KeyValuePair represents a stored key/value entry
type KeyValuePair struct {
	Key         string    `json:"key" badgerhold:"key"`
	Value       string    `json:"value"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// KeyValueStorage - interface for key/value persistence (provider API
// keys are stored here, encrypted at rest by the credentials service)
type KeyValueStorage interface {
	Get(ctx context.Context, key string) (string, error)
	GetPair(ctx context.Context, key string) (*KeyValuePair, error)
	Set(ctx context.Context, key string, value string, description string) error
	Delete(ctx context.Context, key string) error
}

// ListRecordsOptions controls record listing
type ListRecordsOptions struct {
	Ticker string // Optional ticker filter
	Limit  int
	Offset int
}

// AnalysisStorage - interface for persisted analysis records
type AnalysisStorage interface {
	SaveRecord(ctx context.Context, record *models.AnalysisRecord) error
	GetRecord(ctx context.Context, id string) (*models.AnalysisRecord, error)
	ListRecordsByUser(ctx context.Context, userID string, opts ListRecordsOptions) ([]*models.AnalysisRecord, error)
	CountRecords(ctx context.Context) (int, error)

	// DeleteOlderThan removes records created before the cutoff and
	// returns the number deleted. Used by the retention sweep.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error)
}

// StorageManager - interface for storage backend management
type StorageManager interface {
	AnalysisStorage() AnalysisStorage
	KeyValueStorage() KeyValueStorage
	Close() error
}
