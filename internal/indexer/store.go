// Package indexer keeps a queryable SQLite journal of the events the arbiter
// emits, one row per event, ordered by commit.
package indexer

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"onchainavalon/internal/indexer/migrations"
)

// DefaultLimit caps GameEvents when the caller passes a non-positive limit.
const DefaultLimit = 100

// Event is one indexed game event. Height, TxIndex and EventIndex locate it in
// the chain and make re-recording a block idempotent.
type Event struct {
	Seq        uint64            `json:"seq,omitempty"`
	GameID     uint64            `json:"gameId"`
	Height     int64             `json:"height"`
	TxIndex    int               `json:"txIndex"`
	EventIndex int               `json:"eventIndex"`
	BlockTime  int64             `json:"blockTime"`
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// Store persists game events in SQLite.
type Store struct {
	sqlDB *sql.DB
}

// Open opens a SQLite event index and applies embedded migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(ctx, sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Record appends events in one transaction. Events already recorded at the
// same chain position are skipped.
func (s *Store) Record(ctx context.Context, events []Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if len(events) == 0 {
		return nil
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO game_events (
		   game_id,
		   height,
		   tx_index,
		   event_index,
		   block_time,
		   event_type,
		   attributes_json
		 ) VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (height, tx_index, event_index) DO NOTHING`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, evt := range events {
		if evt.GameID == 0 {
			return fmt.Errorf("event %q: game id is required", evt.Type)
		}
		if strings.TrimSpace(evt.Type) == "" {
			return fmt.Errorf("event type is required")
		}
		attrs := evt.Attributes
		if attrs == nil {
			attrs = map[string]string{}
		}
		attrsJSON, err := json.Marshal(attrs)
		if err != nil {
			return fmt.Errorf("encode attributes: %w", err)
		}
		if _, err := stmt.ExecContext(ctx,
			int64(evt.GameID),
			evt.Height,
			evt.TxIndex,
			evt.EventIndex,
			evt.BlockTime,
			evt.Type,
			string(attrsJSON),
		); err != nil {
			return fmt.Errorf("insert event %q: %w", evt.Type, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// GameEvents returns up to limit events of one game in commit order.
func (s *Store) GameEvents(ctx context.Context, gameID uint64, limit int) ([]Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT seq, game_id, height, tx_index, event_index, block_time, event_type, attributes_json
		 FROM game_events
		 WHERE game_id = ?
		 ORDER BY seq ASC
		 LIMIT ?`,
		int64(gameID), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query game events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var (
			evt       Event
			seq, gid  int64
			attrsJSON string
		)
		if err := rows.Scan(&seq, &gid, &evt.Height, &evt.TxIndex, &evt.EventIndex, &evt.BlockTime, &evt.Type, &attrsJSON); err != nil {
			return nil, fmt.Errorf("scan game event: %w", err)
		}
		evt.Seq = uint64(seq)
		evt.GameID = uint64(gid)
		if err := json.Unmarshal([]byte(attrsJSON), &evt.Attributes); err != nil {
			return nil, fmt.Errorf("decode attributes: %w", err)
		}
		out = append(out, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate game events: %w", err)
	}
	return out, nil
}

// LastHeight returns the highest recorded block height, or 0 for an empty index.
func (s *Store) LastHeight(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	var h sql.NullInt64
	if err := s.sqlDB.QueryRowContext(ctx, `SELECT MAX(height) FROM game_events`).Scan(&h); err != nil {
		return 0, fmt.Errorf("query last height: %w", err)
	}
	return h.Int64, nil
}
