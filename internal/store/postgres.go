package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/punchamoorthee/bankstream/internal/domain"
)

// ErrConflict signals an optimistic-concurrency failure: another writer
// appended to the stream since it was loaded. The caller must reload,
// re-replay and retry the command.
var ErrConflict = errors.New("stream revision conflict")

// Schema creates the append-only event log. One stream per account, keyed by
// (stream_name, revision); the unique event id guards against double writes.
const Schema = `
CREATE TABLE IF NOT EXISTS events (
	stream_name   TEXT        NOT NULL,
	revision      BIGINT      NOT NULL,
	event_id      UUID        NOT NULL UNIQUE,
	account_id    UUID        NOT NULL,
	event_type    TEXT        NOT NULL,
	timestamp_utc TIMESTAMPTZ NOT NULL,
	payload       JSONB       NOT NULL,
	PRIMARY KEY (stream_name, revision)
);`

// StreamName is the per-account stream identifier, normalized to lower case.
func StreamName(accountID uuid.UUID) string {
	return strings.ToLower(fmt.Sprintf("account-%s", accountID))
}

// Store persists account event streams in Postgres.
type Store struct {
	db *pgxpool.Pool
}

func NewStore(connString string) (*Store, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return &Store{db: pool}, nil
}

// NewStoreWithPool wraps an existing pool, for callers that manage their own.
func NewStoreWithPool(pool *pgxpool.Pool) *Store {
	return &Store{db: pool}
}

func (s *Store) Close() {
	s.db.Close()
}

// EnsureSchema creates the events table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, Schema)
	return err
}

// Load returns the ordered event history for an account and the current
// stream revision. A never-created account yields no events and revision 0.
func (s *Store) Load(ctx context.Context, accountID uuid.UUID) ([]domain.Event, int64, error) {
	rows, err := s.db.Query(ctx,
		"SELECT revision, event_type, payload FROM events WHERE stream_name = $1 ORDER BY revision ASC",
		StreamName(accountID))
	if err != nil {
		return nil, 0, fmt.Errorf("stream query failed: %w", err)
	}
	defer rows.Close()

	var (
		events   []domain.Event
		revision int64
	)
	for rows.Next() {
		var (
			rev       int64
			eventType string
			payload   []byte
		)
		if err := rows.Scan(&rev, &eventType, &payload); err != nil {
			return nil, 0, fmt.Errorf("stream scan failed: %w", err)
		}
		evt, err := decodeEvent(eventType, payload)
		if err != nil {
			return nil, 0, err
		}
		events = append(events, evt)
		revision = rev
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("stream read failed: %w", err)
	}
	return events, revision, nil
}

// Append writes new events after expectedRevision. Revisions are assigned
// sequentially within a transaction; a revision mismatch or a primary-key
// collision from a concurrent writer surfaces as ErrConflict.
func (s *Store) Append(ctx context.Context, accountID uuid.UUID, events []domain.Event, expectedRevision int64) error {
	if len(events) == 0 {
		return nil
	}
	stream := StreamName(accountID)

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return fmt.Errorf("tx begin failed: %w", err)
	}
	defer tx.Rollback(ctx)

	var current int64
	err = tx.QueryRow(ctx,
		"SELECT COALESCE(MAX(revision), 0) FROM events WHERE stream_name = $1",
		stream).Scan(&current)
	if err != nil {
		return fmt.Errorf("revision query failed: %w", err)
	}
	if current != expectedRevision {
		return ErrConflict
	}

	for i, evt := range events {
		payload, err := encodeEvent(evt)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO events (stream_name, revision, event_id, account_id, event_type, timestamp_utc, payload)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			stream, expectedRevision+int64(i)+1, evt.EventID(), evt.AggregateID(),
			evt.EventType(), evt.OccurredAt(), payload)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return ErrConflict
			}
			return fmt.Errorf("event insert failed: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "40001" {
			return ErrConflict
		}
		return fmt.Errorf("tx commit failed: %w", err)
	}
	return nil
}
