package eventlog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/glebarez/go-sqlite"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"transferScope/internal/felt"
	"transferScope/internal/model"
)

// DriverName is the database/sql driver registered by glebarez/go-sqlite.
const DriverName = "sqlite"

// ErrContractNotFound is returned when an address has no deployed class.
var ErrContractNotFound = errors.New("contract not found")

// Config holds connection settings for the event log database.
type Config struct {
	Path         string
	MaxOpenConns int
	BusyTimeout  int
}

// Log is a read-only handle on a pathfinder style SQLite event log.
type Log struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// Open connects to the SQLite file at cfg.Path with query_only set.
func Open(ctx context.Context, cfg Config, logger *zap.Logger) (*Log, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("event log path is required")
	}
	if cfg.MaxOpenConns <= 0 {
		cfg.MaxOpenConns = 4
	}
	if cfg.BusyTimeout <= 0 {
		cfg.BusyTimeout = 5000
	}

	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(%d)&_pragma=query_only(1)", cfg.Path, cfg.BusyTimeout)
	db, err := sqlx.Open(DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open event log: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping event log: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxOpenConns)

	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("event log opened", zap.String("path", cfg.Path), zap.Int("max_open_conns", cfg.MaxOpenConns))
	return &Log{db: db, logger: logger}, nil
}

// New wraps an existing connection.
func New(db *sqlx.DB, logger *zap.Logger) *Log {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Log{db: db, logger: logger}
}

func (l *Log) Close() error {
	if l == nil || l.db == nil {
		return nil
	}
	return l.db.Close()
}

// DB exposes the underlying connection pool.
func (l *Log) DB() *sqlx.DB {
	return l.db
}

// ReadTx runs fn inside a transaction that is always rolled back.
func (l *Log) ReadTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := l.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin read tx: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			l.logger.Warn("rollback read tx failed", zap.Error(err))
		}
	}()
	return fn(tx)
}

// LatestBlock returns the highest block number that has events.
func (l *Log) LatestBlock(ctx context.Context) (model.BlockNumber, bool, error) {
	var latest sql.NullInt64
	if err := l.db.GetContext(ctx, &latest, `SELECT MAX(block_number) FROM starknet_events`); err != nil {
		return 0, false, fmt.Errorf("query latest block: %w", err)
	}
	if !latest.Valid {
		return 0, false, nil
	}
	return model.BlockNumber(latest.Int64), true, nil
}

// ClassDefinition returns the compressed class definition deployed at address.
func (l *Log) ClassDefinition(ctx context.Context, address model.ContractAddress) ([]byte, error) {
	key := address.Felt().Bytes()
	var definition []byte
	err := l.db.GetContext(ctx, &definition, `
		SELECT cc.definition
		FROM contracts AS c
		INNER JOIN contract_code AS cc ON (c.hash = cc.hash)
		WHERE c.address = ?`, key[:])
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrContractNotFound, felt.Felt(address).Hex())
		}
		return nil, fmt.Errorf("query class definition: %w", err)
	}
	return definition, nil
}
