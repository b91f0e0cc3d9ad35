package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/ai-arena/internal/apperror"
	"github.com/rocketscienceinc/ai-arena/internal/entity"
)

type sqliteResult struct {
	conn *sql.DB
}

// NewSQLiteResultRepository expects the matches table created by sqlite.Storage.Init.
func NewSQLiteResultRepository(conn *sql.DB) ResultRepository {
	return &sqliteResult{
		conn: conn,
	}
}

func (that *sqliteResult) Save(ctx context.Context, record *entity.MatchRecord) error {
	prepare(record)

	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("could not marshal result: %w", err)
	}

	query := `INSERT OR REPLACE INTO matches (id, game, winner, created_at, body) VALUES (?, ?, ?, ?, ?)`

	_, err = that.conn.ExecContext(ctx, query, record.ID, record.Game, record.Result.Winner, record.CreatedAt, string(body))
	if err != nil {
		return fmt.Errorf("can't save result: %w", err)
	}

	return nil
}

func (that *sqliteResult) GetByID(ctx context.Context, id string) (*entity.MatchRecord, error) {
	query := `SELECT body FROM matches WHERE id = ?`

	var body string

	err := that.conn.QueryRowContext(ctx, query, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.ErrResultNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("can't find result: %w", err)
	}

	var record entity.MatchRecord
	if err = json.Unmarshal([]byte(body), &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal result: %w", err)
	}

	return &record, nil
}

func (that *sqliteResult) ListByGame(ctx context.Context, game string, limit int) ([]*entity.MatchRecord, error) {
	query := `SELECT body FROM matches WHERE game = ? ORDER BY created_at DESC, rowid DESC LIMIT ?`

	rows, err := that.conn.QueryContext(ctx, query, game, normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("can't list results: %w", err)
	}
	defer rows.Close()

	records := make([]*entity.MatchRecord, 0)
	for rows.Next() {
		var body string
		if err = rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("can't scan result: %w", err)
		}

		var record entity.MatchRecord
		if err = json.Unmarshal([]byte(body), &record); err != nil {
			return nil, fmt.Errorf("failed to unmarshal result: %w", err)
		}

		records = append(records, &record)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("can't list results: %w", err)
	}

	return records, nil
}
