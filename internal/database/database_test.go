// internal/database/database_test.go
//
// Unit-tests for the ping retry loop and Migrate using sqlmock.
//
// Run: go test ./internal/database -v

package database

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

func TestPingWithRetry(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	mock.ExpectPing()

	if err := pingWithRetry(context.Background(), sqlx.NewDb(db, "mysql"), 3, time.Millisecond); err != nil {
		t.Fatalf("pingWithRetry: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPingWithRetryGivesUp(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	for i := 0; i < 2; i++ {
		mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	}
	if err := pingWithRetry(context.Background(), sqlx.NewDb(db, "mysql"), 2, time.Millisecond); err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
}

func TestMigrate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS users`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := Migrate(context.Background(), sqlx.NewDb(db, "mysql")); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestOptionsDefaults(t *testing.T) {
	o := Options{MaxOpen: 3}.withDefaults()
	if o.MaxOpen != 3 || o.MaxIdle != 5 || o.Retries != 5 || o.MaxLifetime != 30*time.Minute {
		t.Fatalf("defaults = %+v", o)
	}
}
