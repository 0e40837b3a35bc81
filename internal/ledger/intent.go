package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/wardroom/messbook/internal/codec"
)

// Journal is the durable intent log for the two-phase ledger write. An
// intent is recorded before the stock mutation and marked done after the
// event append, so a crash or failure between the two writes leaves a
// visible row instead of a silent gap.
type Journal struct {
	db *sql.DB
}

// Intent is one journal row.
type Intent struct {
	ID           string     `json:"id"`
	Collection   string     `json:"collection"`
	Payload      string     `json:"payload"`
	Status       string     `json:"status"`
	CreationTime time.Time  `json:"creationTime"`
	ClosedTime   *time.Time `json:"closedTime,omitempty"`
}

const (
	statusPending = "PENDING"
	statusDone    = "DONE"
	statusFailed  = "FAILED"
)

const journalSchema = `CREATE TABLE IF NOT EXISTS LedgerIntents (
	IntentId     TEXT PRIMARY KEY,
	Collection   TEXT NOT NULL,
	Payload      TEXT NOT NULL,
	Status       TEXT NOT NULL,
	CreationTime TIMESTAMP NOT NULL,
	ClosedTime   TIMESTAMP
)`

// OpenJournal opens (or creates) the journal database at the given path and
// enables WAL journal mode.
func OpenJournal(path string) (*Journal, error) {
	// ensure parent directory exists to avoid SQLITE_CANTOPEN errors
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec(journalSchema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Journal{db: db}, nil
}

func (j *Journal) Close() error { return j.db.Close() }

// Ping verifies the journal is reachable.
func (j *Journal) Ping(ctx context.Context) error { return j.db.PingContext(ctx) }

// Begin records a pending intent for an event about to be applied.
func (j *Journal) Begin(ctx context.Context, collection string, payload codec.Record) (string, error) {
	id := uuid.New().String()
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	_, err = j.db.ExecContext(ctx,
		`INSERT INTO LedgerIntents (IntentId, Collection, Payload, Status, CreationTime) VALUES (?,?,?,?,?)`,
		id, collection, string(body), statusPending, time.Now().UTC())
	if err != nil {
		return "", err
	}
	return id, nil
}

// Complete marks an intent as fully applied.
func (j *Journal) Complete(ctx context.Context, id string) error {
	return j.close(ctx, id, statusDone)
}

// MarkFailed records that stock was mutated but the event append failed.
// Failed intents stay in the journal until an operator reconciles them.
func (j *Journal) MarkFailed(ctx context.Context, id string) error {
	return j.close(ctx, id, statusFailed)
}

func (j *Journal) close(ctx context.Context, id, status string) error {
	_, err := j.db.ExecContext(ctx,
		`UPDATE LedgerIntents SET Status = ?, ClosedTime = ? WHERE IntentId = ?`,
		status, time.Now().UTC(), id)
	return err
}

// Cancel removes an intent whose validation failed before any mutation.
func (j *Journal) Cancel(ctx context.Context, id string) error {
	_, err := j.db.ExecContext(ctx, `DELETE FROM LedgerIntents WHERE IntentId = ?`, id)
	return err
}

// Unresolved lists intents that never completed: pending rows from a crashed
// process and failed rows awaiting manual reconciliation.
func (j *Journal) Unresolved(ctx context.Context) ([]Intent, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT IntentId, Collection, Payload, Status, CreationTime, ClosedTime
		 FROM LedgerIntents WHERE Status != ? ORDER BY CreationTime`, statusDone)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []Intent
	for rows.Next() {
		var it Intent
		var closed sql.NullTime
		if err := rows.Scan(&it.ID, &it.Collection, &it.Payload, &it.Status, &it.CreationTime, &closed); err != nil {
			return nil, err
		}
		if closed.Valid {
			t := closed.Time
			it.ClosedTime = &t
		}
		out = append(out, it)
	}
	return out, rows.Err()
}
