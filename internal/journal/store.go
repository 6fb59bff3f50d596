package journal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrClosed is returned by a Store used after Close.
var ErrClosed = errors.New("journal store closed")

// Store is a PostgreSQL-backed Recorder. Safe for concurrent use.
type Store struct {
	pool   *pgxpool.Pool
	closed atomic.Bool
}

var _ Recorder = (*Store)(nil)

// Open connects to PostgreSQL and returns a Store.
func Open(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return NewStore(pool), nil
}

// NewStore wraps an existing pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close closes the connection pool.
func (s *Store) Close() {
	if s.closed.CompareAndSwap(false, true) {
		s.pool.Close()
	}
}

// Record bulk-inserts entries with COPY.
func (s *Store) Record(ctx context.Context, entries []Entry) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if len(entries) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []any{
			e.Battle, int64(e.Tick), int64(e.Unit), string(e.Org),
			e.Source, e.Action, e.Movement, e.Detail,
		})
	}

	_, err := s.pool.CopyFrom(ctx,
		pgx.Identifier{"decisions"},
		[]string{"battle_id", "tick", "unit_id", "org", "source", "action", "movement", "detail"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("inserting %d decisions: %w", len(entries), err)
	}

	slog.Debug("journal entries recorded", "count", len(entries))
	return nil
}

// Finish stores the battle outcome. Finishing a battle twice overwrites it.
func (s *Store) Finish(ctx context.Context, o Outcome) error {
	if s.closed.Load() {
		return ErrClosed
	}
	query := `
		INSERT INTO battles (battle_id, seed, winner, ticks, decisions)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (battle_id) DO UPDATE
		SET seed = EXCLUDED.seed, winner = EXCLUDED.winner,
		    ticks = EXCLUDED.ticks, decisions = EXCLUDED.decisions
	`
	if _, err := s.pool.Exec(ctx, query, o.Battle, int64(o.Seed), string(o.Winner), int64(o.Ticks), o.Decisions); err != nil {
		return fmt.Errorf("saving outcome of battle %s: %w", o.Battle, err)
	}
	return nil
}

// Summary aggregates the journal of one battle.
type Summary struct {
	Battle    string
	Winner    string
	Decisions int
	BySource  map[string]int
}

// Summary loads decision counts per source for a battle.
// Returns nil, nil if the battle was never finished.
func (s *Store) Summary(ctx context.Context, battleID string) (*Summary, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}

	sum := Summary{Battle: battleID, BySource: make(map[string]int)}
	err := s.pool.QueryRow(ctx,
		`SELECT winner FROM battles WHERE battle_id = $1`, battleID,
	).Scan(&sum.Winner)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying battle %s: %w", battleID, err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT source, count(*) FROM decisions WHERE battle_id = $1 GROUP BY source`, battleID)
	if err != nil {
		return nil, fmt.Errorf("querying decisions of battle %s: %w", battleID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var source string
		var n int
		if err := rows.Scan(&source, &n); err != nil {
			return nil, fmt.Errorf("scanning decision count: %w", err)
		}
		sum.BySource[source] = n
		sum.Decisions += n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating decision counts: %w", err)
	}
	return &sum, nil
}
