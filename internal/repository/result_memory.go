package repository

import (
	"context"
	"sync"

	"github.com/rocketscienceinc/ai-arena/internal/apperror"
	"github.com/rocketscienceinc/ai-arena/internal/entity"
)

type memoryResult struct {
	mu      sync.RWMutex
	records map[string]entity.MatchRecord
	byGame  map[string][]string
}

// NewMemoryResultRepository keeps records for the lifetime of the process.
func NewMemoryResultRepository() ResultRepository {
	return &memoryResult{
		records: make(map[string]entity.MatchRecord),
		byGame:  make(map[string][]string),
	}
}

func (that *memoryResult) Save(_ context.Context, record *entity.MatchRecord) error {
	prepare(record)

	that.mu.Lock()
	defer that.mu.Unlock()

	if _, exists := that.records[record.ID]; !exists {
		that.byGame[record.Game] = append(that.byGame[record.Game], record.ID)
	}

	that.records[record.ID] = *record

	return nil
}

func (that *memoryResult) GetByID(_ context.Context, id string) (*entity.MatchRecord, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	record, ok := that.records[id]
	if !ok {
		return nil, apperror.ErrResultNotFound
	}

	return &record, nil
}

func (that *memoryResult) ListByGame(_ context.Context, game string, limit int) ([]*entity.MatchRecord, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	ids := that.byGame[game]
	limit = normalizeLimit(limit)

	records := make([]*entity.MatchRecord, 0, min(limit, len(ids)))
	for i := len(ids) - 1; i >= 0 && len(records) < limit; i-- {
		record := that.records[ids[i]]
		records = append(records, &record)
	}

	return records, nil
}
