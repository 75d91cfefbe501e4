package transcript

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists transcripts in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := initSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return &PostgresStore{pool: pool}, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS transcript_records (
		id TEXT PRIMARY KEY,
		conversation_id TEXT NOT NULL,
		turn_id TEXT NOT NULL,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		lang TEXT NOT NULL DEFAULT '',
		interrupted BOOLEAN NOT NULL DEFAULT FALSE,
		pii_redacted BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_transcript_conversation_created
		ON transcript_records (conversation_id, created_at);`,
}

func initSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema failed on %q: %w", stmt, err)
		}
	}
	return nil
}

func (s *PostgresStore) Save(ctx context.Context, record Record) error {
	record = withDefaults(record)
	_, err := s.pool.Exec(ctx,
		`INSERT INTO transcript_records (id, conversation_id, turn_id, role, content, lang, interrupted, pii_redacted, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		record.ID,
		record.ConversationID,
		record.TurnID,
		record.Role,
		record.Content,
		record.Lang,
		record.Interrupted,
		record.PIIRedacted,
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save transcript record: %w", err)
	}
	return nil
}

func (s *PostgresStore) Recent(ctx context.Context, conversationID string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, conversation_id, turn_id, role, content, lang, interrupted, pii_redacted, created_at
		 FROM transcript_records WHERE conversation_id=$1 ORDER BY created_at DESC LIMIT $2`,
		conversationID,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query transcript: %w", err)
	}
	defer rows.Close()

	records := make([]Record, 0, limit)
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.ConversationID, &r.TurnID, &r.Role, &r.Content, &r.Lang, &r.Interrupted, &r.PIIRedacted, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan transcript row: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transcript rows: %w", err)
	}

	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
