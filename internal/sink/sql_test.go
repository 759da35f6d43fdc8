package sink

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/alfredjeanlab/synth/internal/value"
)

// newMockSink wires a sqlSink to a sqlmock connection; callers are
// responsible for calling s.Close() (with a matching mock.ExpectClose())
// since Close() is itself part of what several tests exercise.
func newMockSink(t *testing.T) (*sqlSink, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unfulfilled expectations: %v", err)
		}
	})
	return &sqlSink{db: db, dialect: "postgres", txs: make(map[string]*sql.Tx), counts: make(map[string]int64)}, mock
}

func TestSQLSinkWritesWithinATransactionPerCollection(t *testing.T) {
	s, mock := newMockSink(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS synth_widgets").WillReturnResult(sqlmock.NewResult(0, 0))
	if err := s.Begin(ctx, "widgets"); err != nil {
		t.Fatalf("Begin: %v", err)
	}

	mock.ExpectExec("INSERT INTO synth_widgets").
		WithArgs(string(value.JSON(value.NewBool(true)))).
		WillReturnResult(sqlmock.NewResult(1, 1))
	if err := s.Write(ctx, "widgets", value.NewBool(true)); err != nil {
		t.Fatalf("Write: %v", err)
	}

	mock.ExpectCommit()
	mock.ExpectExec("INSERT INTO synth_runs").
		WithArgs("widgets", int64(1)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	if err := s.End(ctx, "widgets"); err != nil {
		t.Fatalf("End: %v", err)
	}

	mock.ExpectClose()
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestSQLSinkWriteBeforeBeginErrors(t *testing.T) {
	s, mock := newMockSink(t)
	if err := s.Write(context.Background(), "widgets", value.Null); err == nil {
		t.Fatal("expected an error writing before Begin")
	}
	mock.ExpectClose()
	if err := s.db.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
