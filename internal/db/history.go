package db

import (
	"context"
	"fmt"
	"time"
)

// Generation kinds recorded in the history log.
const (
	KindMCQ    = "mcq"
	KindPoints = "points"
)

const historySchema = `
CREATE TABLE IF NOT EXISTS generation_log (
	id BIGSERIAL PRIMARY KEY,
	request_id TEXT NOT NULL,
	kind TEXT NOT NULL CHECK (kind IN ('mcq', 'points')),
	topic TEXT NOT NULL,
	item_count INT NOT NULL,
	tokens_used INT NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// GenerationRecord is one row of the generation history.
type GenerationRecord struct {
	ID         int64     `json:"id"`
	RequestID  string    `json:"request_id"`
	Kind       string    `json:"kind"`
	Topic      string    `json:"topic"`
	ItemCount  int       `json:"item_count"`
	TokensUsed int       `json:"tokens_used"`
	CreatedAt  time.Time `json:"created_at"`
}

// EnsureSchema creates the history table if it does not exist.
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.Pool.Exec(ctx, historySchema); err != nil {
		return fmt.Errorf("failed to create generation_log table: %w", err)
	}
	return nil
}

// RecordGeneration logs one completed generation.
func (db *DB) RecordGeneration(ctx context.Context, requestID, kind, topic string, itemCount, tokensUsed int) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO generation_log (request_id, kind, topic, item_count, tokens_used)
		 VALUES ($1, $2, $3, $4, $5)`,
		requestID, kind, topic, itemCount, tokensUsed)
	if err != nil {
		return fmt.Errorf("failed to record generation: %w", err)
	}
	return nil
}

// RecentGenerations returns the newest history rows, most recent first.
func (db *DB) RecentGenerations(ctx context.Context, limit int) ([]GenerationRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT id, request_id, kind, topic, item_count, tokens_used, created_at
		 FROM generation_log ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query generation_log: %w", err)
	}
	defer rows.Close()

	var records []GenerationRecord
	for rows.Next() {
		var r GenerationRecord
		if err := rows.Scan(&r.ID, &r.RequestID, &r.Kind, &r.Topic, &r.ItemCount, &r.TokensUsed, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan generation_log row: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
