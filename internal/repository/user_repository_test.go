package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/cinebook/internal/model"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	return db, mock, func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
		db.Close()
	}
}

func TestUserRepoCreate(t *testing.T) {
	t.Run("NormalizesEmail", func(t *testing.T) {
		db, mock, done := newMock(t)
		defer done()
		mock.ExpectExec("INSERT INTO users").
			WithArgs("Lan", "lan@example.com", "0901", "hash", model.RoleCustomer).
			WillReturnResult(sqlmock.NewResult(7, 1))

		id, err := NewUserRepo(db).Create(context.Background(), model.User{
			Name: " Lan ", Email: "  LAN@Example.com ", PhoneNumber: "0901", PasswordHash: "hash", Role: model.RoleCustomer,
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if id != 7 {
			t.Errorf("expected id 7, got %d", id)
		}
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		db, mock, done := newMock(t)
		defer done()
		mock.ExpectExec("INSERT INTO users").
			WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

		_, err := NewUserRepo(db).Create(context.Background(), model.User{Email: "a@b.c"})
		if !errors.Is(err, ErrEmailExists) {
			t.Fatalf("expected ErrEmailExists, got %v", err)
		}
	})
}

func TestUserRepoGet(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		db, mock, done := newMock(t)
		defer done()
		now := time.Now()
		mock.ExpectQuery("FROM users WHERE email=").
			WithArgs("lan@example.com").
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "phonenumber", "password_hash", "role", "created_at", "updated_at"}).
				AddRow(3, "Lan", "lan@example.com", "0901", "hash", "CUSTOMER", now, now))

		u, err := NewUserRepo(db).GetByEmail(context.Background(), "Lan@example.com")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if u.ID != 3 || u.PhoneNumber != "0901" {
			t.Errorf("unexpected user %+v", u)
		}
	})

	t.Run("Missing", func(t *testing.T) {
		db, mock, done := newMock(t)
		defer done()
		mock.ExpectQuery("FROM users WHERE id=").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := NewUserRepo(db).GetByID(context.Background(), 99)
		if !errors.Is(err, ErrUserNotFound) {
			t.Fatalf("expected ErrUserNotFound, got %v", err)
		}
	})
}

func TestUserRepoUpdateProfile(t *testing.T) {
	name := "Mai"
	email := "MAI@example.com"

	t.Run("OnlyProvidedFields", func(t *testing.T) {
		db, mock, done := newMock(t)
		defer done()
		mock.ExpectExec(`UPDATE users SET name=\?, email=\? WHERE id=\?`).
			WithArgs("Mai", "mai@example.com", 5).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := NewUserRepo(db).UpdateProfile(context.Background(), 5, model.ProfileUpdate{Name: &name, Email: &email})
		if err != nil {
			t.Fatalf("update: %v", err)
		}
	})

	t.Run("EmptyIsNoop", func(t *testing.T) {
		db, _, done := newMock(t)
		defer done()
		if err := NewUserRepo(db).UpdateProfile(context.Background(), 5, model.ProfileUpdate{}); err != nil {
			t.Fatalf("update: %v", err)
		}
	})

	t.Run("EmailTaken", func(t *testing.T) {
		db, mock, done := newMock(t)
		defer done()
		mock.ExpectExec("UPDATE users SET").
			WillReturnError(&mysql.MySQLError{Number: 1062})
		err := NewUserRepo(db).UpdateProfile(context.Background(), 5, model.ProfileUpdate{Email: &email})
		if !errors.Is(err, ErrEmailExists) {
			t.Fatalf("expected ErrEmailExists, got %v", err)
		}
	})

	t.Run("UnknownUser", func(t *testing.T) {
		db, mock, done := newMock(t)
		defer done()
		mock.ExpectExec("UPDATE users SET").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT 1 FROM users").WillReturnRows(sqlmock.NewRows([]string{"1"}))
		err := NewUserRepo(db).UpdateProfile(context.Background(), 5, model.ProfileUpdate{Name: &name})
		if !errors.Is(err, ErrUserNotFound) {
			t.Fatalf("expected ErrUserNotFound, got %v", err)
		}
	})
}
