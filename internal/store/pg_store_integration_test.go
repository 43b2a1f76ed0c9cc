package store

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	perrors "github.com/abgdnv/inventory/internal/errors"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const skipIntegrationTests = "INVENTORY_SKIP_INTEGRATION_TESTS"

// PgStoreSuite runs PgStore against a real PostgreSQL container.
type PgStoreSuite struct {
	suite.Suite
	pgContainer *postgres.PostgresContainer
	dbPool      *pgxpool.Pool
	store       *PgStore
	logger      *slog.Logger
	ctx         context.Context
}

func (s *PgStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	var err error
	s.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	s.pgContainer, err = postgres.Run(s.ctx,
		"postgres:17.5-alpine",
		postgres.WithDatabase("inventory"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute),
		),
		testcontainers.WithWaitStrategy(
			wait.ForListeningPort("5432/tcp"),
		),
	)
	require.NoError(s.T(), err, "Failed to run PostgreSQL container")

	connStr, err := s.pgContainer.ConnectionString(s.ctx, "sslmode=disable")
	require.NoError(s.T(), err, "Failed to get connection string from container")

	s.dbPool, err = pgxpool.New(s.ctx, connStr)
	require.NoError(s.T(), err, "Failed to create pgxpool")

	for i := range 10 {
		s.logger.Info("Pinging PostgreSQL database", "attempt", i+1)
		err = s.dbPool.Ping(s.ctx)
		if err == nil {
			break
		}
		time.Sleep(time.Second * 2)
	}
	require.NoError(s.T(), err, "Failed to connect to PostgreSQL after retries")

	wd, _ := os.Getwd()
	sourceURL := "file://" + filepath.Join(wd, "..", "..", "migrations", "postgres")
	m, err := migrate.New(sourceURL, connStr)
	require.NoError(s.T(), err, "Failed to create migrate instance")
	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		_, _ = m.Close()
		require.NoError(s.T(), err, "Failed to apply migrations")
	}

	s.store = NewPgStore(s.dbPool)
}

func (s *PgStoreSuite) TearDownSuite() {
	if s.dbPool != nil {
		s.dbPool.Close()
	}
	if s.pgContainer != nil {
		if err := s.pgContainer.Terminate(s.ctx); err != nil {
			s.logger.Warn("failed to terminate PostgreSQL container", "error", err)
		}
	}
}

func (s *PgStoreSuite) SetupTest() {
	_, err := s.dbPool.Exec(s.ctx, "TRUNCATE TABLE products")
	require.NoError(s.T(), err, "Failed to truncate products table")
}

func TestPgStoreIntegration(t *testing.T) {
	if os.Getenv(skipIntegrationTests) == "1" {
		t.Skip("Skipping integration tests based on " + skipIntegrationTests + " env var")
	}
	suite.Run(t, new(PgStoreSuite))
}

func (s *PgStoreSuite) TestSaveAndFindByID() {
	product := NewProduct(uuid.New(), "Apple Iphone 15 Pro", 599.0, 100)

	saved, err := s.store.Save(s.ctx, product)
	require.NoError(s.T(), err)
	require.Equal(s.T(), product, *saved)

	fetched, err := s.store.FindByID(s.ctx, product.ID)
	require.NoError(s.T(), err)
	require.Equal(s.T(), product, *fetched)
}

func (s *PgStoreSuite) TestSaveLongName() {
	product := NewProduct(uuid.New(), strings.Repeat("Long product name ", 40), 10, 1)

	_, err := s.store.Save(s.ctx, product)
	require.NoError(s.T(), err)

	fetched, err := s.store.FindByID(s.ctx, product.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), product.Name, fetched.Name)
}

func (s *PgStoreSuite) TestSaveOverwritesExisting() {
	id := uuid.New()
	_, err := s.store.Save(s.ctx, NewProduct(id, "Samsung Galaxy S23", 699, 50))
	require.NoError(s.T(), err)

	updated, err := s.store.Save(s.ctx, NewProduct(id, "Samsung Galaxy S23 Ultra", 799, 30))
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Samsung Galaxy S23 Ultra", updated.Name)

	all, err := s.store.FindAll(s.ctx)
	require.NoError(s.T(), err)
	require.Len(s.T(), all, 1)
	assert.Equal(s.T(), *updated, all[0])
}

func (s *PgStoreSuite) TestFindByID_NotFound() {
	_, err := s.store.FindByID(s.ctx, uuid.New())
	require.ErrorIs(s.T(), err, perrors.ErrProductNotFound)
}

func (s *PgStoreSuite) TestFindAll() {
	empty, err := s.store.FindAll(s.ctx)
	require.NoError(s.T(), err)
	require.NotNil(s.T(), empty)
	require.Empty(s.T(), empty)

	a := NewProduct(uuid.New(), "Product A", 1, 10)
	b := NewProduct(uuid.New(), "Product B", 2, 20)
	for _, p := range []Product{a, b} {
		_, err := s.store.Save(s.ctx, p)
		require.NoError(s.T(), err)
	}

	all, err := s.store.FindAll(s.ctx)
	require.NoError(s.T(), err)
	assert.ElementsMatch(s.T(), []Product{a, b}, all)
}

func (s *PgStoreSuite) TestDeleteByID() {
	created := NewProduct(uuid.New(), "OnePlus 11", 549, 25)
	_, err := s.store.Save(s.ctx, created)
	require.NoError(s.T(), err)

	require.NoError(s.T(), s.store.DeleteByID(s.ctx, created.ID))

	_, err = s.store.FindByID(s.ctx, created.ID)
	require.ErrorIs(s.T(), err, perrors.ErrProductNotFound)
}

func (s *PgStoreSuite) TestDeleteByID_Missing() {
	require.NoError(s.T(), s.store.DeleteByID(s.ctx, uuid.New()))
}

func (s *PgStoreSuite) TestPing() {
	require.NoError(s.T(), s.store.Ping(s.ctx))
}
