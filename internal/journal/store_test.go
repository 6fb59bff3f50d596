package journal

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/udisondev/tacticai/internal/model"
)

// testPool is shared by every database test; nil under -short.
var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(m.Run())
	}
	os.Exit(runWithPostgres(m))
}

func runWithPostgres(m *testing.M) int {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForListeningPort("5432/tcp"),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		log.Fatalf("starting postgres container: %v", err)
	}
	defer func() {
		_ = container.Terminate(ctx)
	}()

	host, err := container.Host(ctx)
	if err != nil {
		log.Fatalf("getting container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		log.Fatalf("getting container port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())

	testPool, err = pgxpool.New(ctx, dsn)
	if err != nil {
		log.Fatalf("connecting to test db: %v", err)
	}
	defer testPool.Close()

	sqlDB, err := sql.Open("pgx", stdlib.RegisterConnConfig(testPool.Config().ConnConfig))
	if err != nil {
		log.Fatalf("opening sql.DB: %v", err)
	}
	if _, err := migrate(ctx, sqlDB); err != nil {
		log.Fatalf("running migrations: %v", err)
	}
	_ = sqlDB.Close()

	return m.Run()
}

// setupStore returns a Store over truncated tables.
func setupStore(t *testing.T) *Store {
	t.Helper()
	if testPool == nil {
		t.Skip("postgres tests are disabled in short mode")
	}
	for _, q := range []string{"TRUNCATE decisions", "TRUNCATE battles"} {
		_, err := testPool.Exec(context.Background(), q)
		require.NoError(t, err)
	}
	return NewStore(testPool)
}

func TestStoreRecordAndSummary(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	attack := model.Decision{
		Source: "vanilla",
		Action: &model.Action{Kind: model.ActionAttackWeaponUnit, TargetUnit: 2},
	}
	cover := model.Decision{
		Source:   "disposition",
		Movement: &model.Movement{Kind: model.MovementTakeCover, Tile: model.Vec3{X: 3}},
	}
	entries := []Entry{
		NewEntry("b1", 1, 1, "aliens", attack),
		NewEntry("b1", 2, 1, "aliens", attack),
		NewEntry("b1", 2, 3, "humans", cover),
		NewEntry("b2", 1, 1, "aliens", attack),
	}
	require.NoError(t, s.Record(ctx, entries))
	require.NoError(t, s.Finish(ctx, Outcome{Battle: "b1", Seed: 7, Winner: "aliens", Ticks: 300, Decisions: 3}))

	sum, err := s.Summary(ctx, "b1")
	require.NoError(t, err)
	require.NotNil(t, sum)
	assert.Equal(t, "aliens", sum.Winner)
	assert.Equal(t, 3, sum.Decisions)
	assert.Equal(t, map[string]int{"vanilla": 2, "disposition": 1}, sum.BySource)

	missing, err := s.Summary(ctx, "b2")
	require.NoError(t, err)
	assert.Nil(t, missing, "battle without outcome")
}

func TestStoreFinishTwice(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	require.NoError(t, s.Finish(ctx, Outcome{Battle: "b1", Winner: "humans"}))
	require.NoError(t, s.Finish(ctx, Outcome{Battle: "b1", Winner: "aliens"}))

	sum, err := s.Summary(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, "aliens", sum.Winner)
	assert.Zero(t, sum.Decisions)
}

func TestStoreClosed(t *testing.T) {
	if testPool == nil {
		t.Skip("postgres tests are disabled in short mode")
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), testPool.Config())
	require.NoError(t, err)
	s := NewStore(pool)
	s.Close()
	s.Close()

	ctx := context.Background()
	assert.ErrorIs(t, s.Record(ctx, []Entry{{Battle: "b"}}), ErrClosed)
	assert.ErrorIs(t, s.Finish(ctx, Outcome{Battle: "b"}), ErrClosed)
	_, err = s.Summary(ctx, "b")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestMigrateIsIdempotent(t *testing.T) {
	if testPool == nil {
		t.Skip("postgres tests are disabled in short mode")
	}
	sqlDB := stdlib.OpenDBFromPool(testPool)
	defer sqlDB.Close()

	version, err := migrate(context.Background(), sqlDB)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)
}
