package sink

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"net/url"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/alfredjeanlab/synth/internal/errkit"
	"github.com/alfredjeanlab/synth/internal/value"
)

//go:embed migrations/*.sql
var bookkeepingMigrations embed.FS

func init() {
	Register("postgres", openSQL("postgres"))
	Register("postgresql", openSQL("postgres"))
	Register("sqlite", openSQL("sqlite"))
}

// openSQL returns an Opener for dialect, connecting via database/sql and,
// for postgres, bootstrapping the fixed synth_runs bookkeeping table
// through golang-migrate the same way the teacher's postgres store does
// (internal/store/postgres/postgres.go). SQLite has no golang-migrate
// driver in this module's dependency set, so its bookkeeping table is
// created inline instead (see DESIGN.md).
func openSQL(dialect string) Opener {
	return func(ctx context.Context, u *url.URL) (Sink, error) {
		driverName := "postgres"
		dsn := strings.TrimPrefix(u.String(), u.Scheme+"://")
		if dialect == "sqlite" {
			driverName = "sqlite"
			dsn = u.Opaque
			if dsn == "" {
				dsn = u.Path
			}
		} else {
			dsn = u.String()
		}

		db, err := sql.Open(driverName, dsn)
		if err != nil {
			return nil, errkit.Sink("", fmt.Errorf("opening %s database: %w", dialect, err))
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, errkit.Sink("", fmt.Errorf("pinging %s database: %w", dialect, err))
		}

		if dialect == "postgres" {
			if err := runBookkeepingMigrations(db); err != nil {
				db.Close()
				return nil, errkit.Sink("", err)
			}
		} else {
			if _, err := db.ExecContext(ctx, sqliteBookkeepingDDL); err != nil {
				db.Close()
				return nil, errkit.Sink("", fmt.Errorf("bootstrapping bookkeeping table: %w", err))
			}
		}

		return &sqlSink{db: db, dialect: dialect, txs: make(map[string]*sql.Tx)}, nil
	}
}

const sqliteBookkeepingDDL = `
CREATE TABLE IF NOT EXISTS synth_runs (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	collection TEXT NOT NULL,
	record_count INTEGER NOT NULL
)`

func runBookkeepingMigrations(db *sql.DB) error {
	sourceDriver, err := iofs.New(bookkeepingMigrations, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}
	dbDriver, err := pgmigrate.WithInstance(db, &pgmigrate.Config{})
	if err != nil {
		return fmt.Errorf("create migration db driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", dbDriver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// sqlSink writes each collection's records into its own synth_<collection>
// table, one transaction per collection, committed on End.
type sqlSink struct {
	db      *sql.DB
	dialect string
	txs     map[string]*sql.Tx
	counts  map[string]int64
}

func (s *sqlSink) tableName(collection string) string {
	return "synth_" + collection
}

func (s *sqlSink) Begin(ctx context.Context, collection string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errkit.Sink(collection, fmt.Errorf("beginning transaction: %w", err))
	}

	var ddl string
	switch s.dialect {
	case "postgres":
		ddl = fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (seq BIGSERIAL PRIMARY KEY, data JSONB NOT NULL)`, s.tableName(collection))
	default:
		ddl = fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (seq INTEGER PRIMARY KEY AUTOINCREMENT, data TEXT NOT NULL)`, s.tableName(collection))
	}
	if _, err := tx.ExecContext(ctx, ddl); err != nil {
		tx.Rollback()
		return errkit.Sink(collection, fmt.Errorf("creating table: %w", err))
	}

	s.txs[collection] = tx
	if s.counts == nil {
		s.counts = make(map[string]int64)
	}
	return nil
}

func (s *sqlSink) Write(ctx context.Context, collection string, record value.Value) error {
	tx, ok := s.txs[collection]
	if !ok {
		return errkit.Sink(collection, fmt.Errorf("write before begin"))
	}
	placeholder := "$1"
	if s.dialect == "sqlite" {
		placeholder = "?"
	}
	query := fmt.Sprintf("INSERT INTO %s (data) VALUES (%s)", s.tableName(collection), placeholder)
	if _, err := tx.ExecContext(ctx, query, string(value.JSON(record))); err != nil {
		return errkit.Sink(collection, fmt.Errorf("inserting record: %w", err))
	}
	s.counts[collection]++
	return nil
}

func (s *sqlSink) End(ctx context.Context, collection string) error {
	tx, ok := s.txs[collection]
	if !ok {
		return nil
	}
	delete(s.txs, collection)
	if err := tx.Commit(); err != nil {
		return errkit.Sink(collection, fmt.Errorf("committing transaction: %w", err))
	}

	placeholder := "$1, $2"
	if s.dialect == "sqlite" {
		placeholder = "?, ?"
	}
	_, err := s.db.ExecContext(ctx,
		fmt.Sprintf("INSERT INTO synth_runs (collection, record_count) VALUES (%s)", placeholder),
		collection, s.counts[collection])
	if err != nil {
		return errkit.Sink(collection, fmt.Errorf("recording bookkeeping row: %w", err))
	}
	return nil
}

// Commit is a no-op: each collection's table is already committed in its
// own transaction on End.
func (s *sqlSink) Commit(context.Context) error { return nil }

func (s *sqlSink) Close() error {
	for _, tx := range s.txs {
		tx.Rollback()
	}
	return s.db.Close()
}
