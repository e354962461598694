package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/censeo/internal/interfaces"
	"github.com/ternarybob/censeo/internal/models"
)

// AnalysisStorage implements the AnalysisStorage interface for Badger
type AnalysisStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewAnalysisStorage creates a new AnalysisStorage instance
func NewAnalysisStorage(db *BadgerDB, logger arbor.ILogger) interfaces.AnalysisStorage {
	return &AnalysisStorage{
		db:     db,
		logger: logger,
	}
}

// SaveRecord persists an analysis record
func (s *AnalysisStorage) SaveRecord(ctx context.Context, record *models.AnalysisRecord) error {
	if record == nil || record.ID == "" {
		return fmt.Errorf("record with a non-empty ID is required")
	}

	if err := s.db.Store().Upsert(record.ID, record); err != nil {
		return fmt.Errorf("failed to save analysis record: %w", err)
	}

	s.logger.Debug().
		Str("analysis_id", record.ID).
		Str("ticker", record.TickerSymbol).
		Msg("Analysis record saved")

	return nil
}

// GetRecord retrieves an analysis record by ID
func (s *AnalysisStorage) GetRecord(ctx context.Context, id string) (*models.AnalysisRecord, error) {
	var record models.AnalysisRecord
	err := s.db.Store().Get(id, &record)
	if err == badgerhold.ErrNotFound {
		return nil, interfaces.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis record: %w", err)
	}

	return &record, nil
}

// ListRecordsByUser returns a user's records, newest first, with an
// optional ticker filter and offset/limit pagination.
func (s *AnalysisStorage) ListRecordsByUser(ctx context.Context, userID string, opts interfaces.ListRecordsOptions) ([]*models.AnalysisRecord, error) {
	query := badgerhold.Where("UserID").Eq(userID).Index("UserID")
	if opts.Ticker != "" {
		query = query.And("TickerSymbol").Eq(opts.Ticker)
	}
	query = query.SortBy("CreatedAt").Reverse()
	if opts.Offset > 0 {
		query = query.Skip(opts.Offset)
	}
	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}

	var records []*models.AnalysisRecord
	if err := s.db.Store().Find(&records, query); err != nil {
		return nil, fmt.Errorf("failed to list analysis records: %w", err)
	}

	return records, nil
}

// CountRecords returns the total number of stored records
func (s *AnalysisStorage) CountRecords(ctx context.Context) (int, error) {
	count, err := s.db.Store().Count(&models.AnalysisRecord{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count analysis records: %w", err)
	}
	return int(count), nil
}

// DeleteOlderThan removes records created before the cutoff and
// returns how many were deleted.
func (s *AnalysisStorage) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	query := badgerhold.Where("CreatedAt").Lt(cutoff)

	count, err := s.db.Store().Count(&models.AnalysisRecord{}, query)
	if err != nil {
		return 0, fmt.Errorf("failed to count expired records: %w", err)
	}
	if count == 0 {
		return 0, nil
	}

	if err := s.db.Store().DeleteMatching(&models.AnalysisRecord{}, query); err != nil {
		return 0, fmt.Errorf("failed to delete expired records: %w", err)
	}

	s.logger.Info().
		Int("deleted", int(count)).
		Str("cutoff", cutoff.Format(time.RFC3339)).
		Msg("Deleted expired analysis records")

	return int(count), nil
}
