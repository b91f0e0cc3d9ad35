package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/ai-arena/internal/apperror"
	"github.com/rocketscienceinc/ai-arena/internal/entity"
)

const defaultListLimit = 50

// ResultRepository stores finished matches.
type ResultRepository interface {
	Save(ctx context.Context, record *entity.MatchRecord) error
	GetByID(ctx context.Context, id string) (*entity.MatchRecord, error)
	// ListByGame returns the newest records first.
	ListByGame(ctx context.Context, game string, limit int) ([]*entity.MatchRecord, error)
}

// prepare fills the id and creation time of a record that has none.
func prepare(record *entity.MatchRecord) {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}

	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}

	return limit
}

type dbResult struct {
	client *redis.Client
}

func NewResultRepository(client *redis.Client) ResultRepository {
	return &dbResult{
		client: client,
	}
}

func resultKey(id string) string {
	return "result:" + id
}

func gameResultsKey(game string) string {
	return "results:" + game
}

func (that *dbResult) Save(ctx context.Context, record *entity.MatchRecord) error {
	prepare(record)

	recordJSON, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("could not marshal result: %w", err)
	}

	pipe := that.client.TxPipeline()
	pipe.Set(ctx, resultKey(record.ID), recordJSON, 0)
	pipe.LRem(ctx, gameResultsKey(record.Game), 0, record.ID)
	pipe.LPush(ctx, gameResultsKey(record.Game), record.ID)

	if _, err = pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to set result: %w", err)
	}

	return nil
}

func (that *dbResult) GetByID(ctx context.Context, id string) (*entity.MatchRecord, error) {
	response, err := that.client.Get(ctx, resultKey(id)).Result()

	if errors.Is(err, redis.Nil) {
		return nil, apperror.ErrResultNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get result by id: %w", err)
	}

	var record entity.MatchRecord
	if err = json.Unmarshal([]byte(response), &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal result: %w", err)
	}

	return &record, nil
}

func (that *dbResult) ListByGame(ctx context.Context, game string, limit int) ([]*entity.MatchRecord, error) {
	ids, err := that.client.LRange(ctx, gameResultsKey(game), 0, int64(normalizeLimit(limit)-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}

	records := make([]*entity.MatchRecord, 0, len(ids))
	for _, id := range ids {
		record, err := that.GetByID(ctx, id)
		if errors.Is(err, apperror.ErrResultNotFound) {
			continue
		}

		if err != nil {
			return nil, err
		}

		records = append(records, record)
	}

	return records, nil
}
