package database

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestStatements(t *testing.T) {
	stmts := Statements()
	if len(stmts) != 15 {
		t.Fatalf("expected 15 statements, got %d", len(stmts))
	}
	for _, s := range stmts {
		if !strings.HasPrefix(s, "CREATE TABLE IF NOT EXISTS") {
			t.Errorf("unexpected statement start: %.40q", s)
		}
		if strings.Contains(s, "--") {
			t.Errorf("comment leaked into statement: %.40q", s)
		}
	}
}

func TestMigrate(t *testing.T) {
	t.Run("AppliesAll", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatal(err)
		}
		defer db.Close()
		for range Statements() {
			mock.ExpectExec("CREATE TABLE IF NOT EXISTS").WillReturnResult(sqlmock.NewResult(0, 0))
		}
		n, err := Migrate(context.Background(), db)
		if err != nil {
			t.Fatalf("migrate failed: %v", err)
		}
		if n != len(Statements()) {
			t.Errorf("expected %d applied, got %d", len(Statements()), n)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Error(err)
		}
	})

	t.Run("StopsOnError", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatal(err)
		}
		defer db.Close()
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS users").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS refresh_tokens").WillReturnError(errors.New("boom"))

		n, err := Migrate(context.Background(), db)
		if err == nil || !strings.Contains(err.Error(), "statement 2") {
			t.Fatalf("expected statement 2 error, got %v", err)
		}
		if n != 1 {
			t.Errorf("expected 1 applied, got %d", n)
		}
	})
}
