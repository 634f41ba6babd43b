// Package db provides the durable store for endpoints, resources,
// members and request logs.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // Register Postgres dialect
	"github.com/golang-migrate/migrate/v4"
	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	te "gitlab.com/identity-lab/scim-target-api/pkg/errors"
	"gitlab.com/identity-lab/scim-target-api/pkg/logger"
	"go.opentelemetry.io/otel"
)

const initialResourceVersion int = 1

var tracer = otel.Tracer("db")

// Key type is used for attaching state to the context
type key string

func (k key) String() string {
	return fmt.Sprintf("gitlab.com/identity-lab/scim-target-api/internal/db/dbclient %s", string(k))
}

const (
	txKey key = "tx"
)

var (
	// ErrOptimisticLockError is used for optimistic lock exceptions
	ErrOptimisticLockError = te.New(
		"resource version does not match specified version",
		te.WithErrorCode(te.EOptimisticLock),
	)
)

var (
	metadataFieldList = []interface{}{"id", "created_at", "updated_at", "version"}
	dialect           = goqu.Dialect("postgres")
)

// connection is used to represent a DB connection
type connection interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, optionsAndArgs ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, optionsAndArgs ...any) pgx.Row
}

// Client acts as a facade for the database
type Client struct {
	conn         *pgxpool.Pool
	logger       logger.Logger
	Endpoints    Endpoints
	Resources    Resources
	Members      Members
	RequestLogs  RequestLogs
	Transactions Transactions
}

// NewClient creates a new Client
func NewClient(
	ctx context.Context,
	databaseURL string,
	maxConnections int,
	autoMigrateEnabled bool,
	logger logger.Logger,
) (*Client, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse db connection URI: %w", err)
	}

	if maxConnections != 0 {
		cfg.MaxConns = int32(maxConnections)
	}

	logger.Infof("Connecting to DB (host=%s, maxConnections=%d)", cfg.ConnConfig.Host, cfg.MaxConns)

	// The database may still be starting when the server comes up.
	pool, err := retry.DoWithData(func() (*pgxpool.Pool, error) {
		return pgxpool.ConnectConfig(ctx, cfg)
	},
		retry.Context(ctx),
		retry.Attempts(5),
		retry.Delay(time.Second),
		retry.OnRetry(func(n uint, err error) {
			logger.Warnf("DB connection attempt %d failed: %v", n+1, err)
		}),
	)
	if err != nil {
		logger.Errorf("Unable to connect to DB: %v", err)
		return nil, err
	}

	logger.Infof("Successfully connected to DB %s", cfg.ConnConfig.Host)

	// Auto migrate-up the DB if enabled.
	if autoMigrateEnabled {
		logger.Info("Starting DB migrate")

		migrations, err := newMigrations(logger, cfg.ConnString())
		if err != nil {
			return nil, err
		}

		err = migrations.migrateUp()
		if err == migrate.ErrNoChange {
			logger.Info("No migration necessary since DB is already on latest version")
		} else if err != nil {
			logger.Errorf("Unable to migrate DB: %v", err)
			return nil, err
		} else {
			logger.Info("Successfully migrated DB to latest version")
		}
	}

	dbClient := &Client{
		conn:   pool,
		logger: logger,
	}

	dbClient.Endpoints = NewEndpoints(dbClient)
	dbClient.Resources = NewResources(dbClient)
	dbClient.Members = NewMembers(dbClient)
	dbClient.RequestLogs = NewRequestLogs(dbClient)
	dbClient.Transactions = NewTransactions(dbClient)

	return dbClient, nil
}

// Close will close the database connections
func (db *Client) Close(_ context.Context) {
	db.conn.Close()
}

func (db *Client) getConnection(ctx context.Context) connection {
	trx, ok := ctx.Value(txKey).(pgx.Tx)
	if !ok {
		// Return a normal DB connection if no transaction exists
		return db.conn
	}
	// Return transaction if it exists on the context
	return trx
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func isUniqueViolation(pgErr *pgconn.PgError) bool {
	return pgErr.Code == pgerrcode.UniqueViolation
}

func isForeignKeyViolation(pgErr *pgconn.PgError) bool {
	return pgErr.Code == pgerrcode.ForeignKeyViolation
}

func asPgError(err error) *pgconn.PgError {
	var pgErr *pgconn.PgError
	ok := errors.As(err, &pgErr)
	if ok {
		return pgErr
	}
	return nil
}

func newResourceID() string {
	return uuid.New().String()
}

func nullableString(val string) sql.NullString {
	return sql.NullString{
		String: val,
		Valid:  val != "",
	}
}

// Produce a rounded version of current time suitable for storing in the DB.
// Because time.Now().UTC() returns nanosecond precision but the DB stores only
// microseconds, it is necessary to round the time to the nearest microsecond
// before storing it.
func currentTime() time.Time {
	return time.Now().UTC().Round(time.Microsecond)
}
