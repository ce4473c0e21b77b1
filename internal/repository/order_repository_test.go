package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/cinebook/internal/model"
)

func sampleOrder() *model.Order {
	return &model.Order{
		Code: "c0ffee", UserID: 3, FilmID: 1, ShowtimeID: 11, CinemaID: 2,
		TotalPrice: 150000, PaymentMethod: "momo",
		PaidAt: time.Date(2024, 12, 1, 10, 0, 0, 0, time.UTC),
		Seats:  []string{"A1", "A2"},
	}
}

func TestOrderRepoCreate(t *testing.T) {
	t.Run("InsertsOrderAndSeats", func(t *testing.T) {
		db, mock, done := newMock(t)
		defer done()
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO orders").WillReturnResult(sqlmock.NewResult(21, 1))
		mock.ExpectExec(`INSERT INTO orderdetail \(idorder, idshowtime, seat\) VALUES \(\?, \?, \?\),\(\?, \?, \?\)`).
			WithArgs(21, 11, "A1", 21, 11, "A2").
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectCommit()

		o := sampleOrder()
		if err := NewOrderRepo(db).Create(context.Background(), o); err != nil {
			t.Fatalf("create: %v", err)
		}
		if o.ID != 21 {
			t.Errorf("expected id 21, got %d", o.ID)
		}
	})

	t.Run("RaceOnDetailInsert", func(t *testing.T) {
		db, mock, done := newMock(t)
		defer done()
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO orders").WillReturnResult(sqlmock.NewResult(21, 1))
		mock.ExpectExec("INSERT INTO orderdetail").WillReturnError(&mysql.MySQLError{Number: 1062})
		mock.ExpectRollback()

		err := NewOrderRepo(db).Create(context.Background(), sampleOrder())
		if !errors.Is(err, ErrSeatTaken) {
			t.Fatalf("expected ErrSeatTaken, got %v", err)
		}
	})

	t.Run("RetriesDeadlockOnce", func(t *testing.T) {
		db, mock, done := newMock(t)
		defer done()
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO orders").WillReturnResult(sqlmock.NewResult(21, 1))
		mock.ExpectExec("INSERT INTO orderdetail").WillReturnError(&mysql.MySQLError{Number: 1213})
		mock.ExpectRollback()
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO orders").WillReturnResult(sqlmock.NewResult(22, 1))
		mock.ExpectExec("INSERT INTO orderdetail").WithArgs(22, 11, "A1", 22, 11, "A2").
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectCommit()

		o := sampleOrder()
		if err := NewOrderRepo(db).Create(context.Background(), o); err != nil {
			t.Fatalf("create: %v", err)
		}
		if o.ID != 22 {
			t.Errorf("expected id 22, got %d", o.ID)
		}
	})

	t.Run("DeadlockAfterRetry", func(t *testing.T) {
		db, mock, done := newMock(t)
		defer done()
		for i := 0; i < 2; i++ {
			mock.ExpectBegin()
			mock.ExpectExec("INSERT INTO orders").WillReturnResult(sqlmock.NewResult(21, 1))
			mock.ExpectExec("INSERT INTO orderdetail").WillReturnError(&mysql.MySQLError{Number: 1213})
			mock.ExpectRollback()
		}

		err := NewOrderRepo(db).Create(context.Background(), sampleOrder())
		var me *mysql.MySQLError
		if !errors.As(err, &me) || me.Number != 1213 {
			t.Fatalf("expected the deadlock to surface, got %v", err)
		}
		if errors.Is(err, ErrSeatTaken) {
			t.Error("deadlock must not be reported as a sold seat")
		}
	})

	t.Run("RepeatedClientToken", func(t *testing.T) {
		db, mock, done := newMock(t)
		defer done()
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO orders").WillReturnError(&mysql.MySQLError{Number: 1062})
		mock.ExpectRollback()

		o := sampleOrder()
		tok := "tap-1"
		o.ClientToken = &tok
		err := NewOrderRepo(db).Create(context.Background(), o)
		if !errors.Is(err, ErrDuplicateOrder) {
			t.Fatalf("expected ErrDuplicateOrder, got %v", err)
		}
	})
}

var detailColumns = []string{"idorder", "code", "id", "idfilm", "idshowtime", "idcinema", "totalprice",
	"payment_method", "client_token", "paymentdate", "filmname", "type", "time", "image", "premiere",
	"namecinema", "address", "starts_at", "seats"}

func TestOrderRepoGetDetailForUser(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		db, mock, done := newMock(t)
		defer done()
		paid := time.Date(2024, 12, 1, 10, 0, 0, 0, time.UTC)
		start := time.Date(2024, 12, 2, 12, 30, 0, 0, time.UTC)
		mock.ExpectQuery(`WHERE o.idorder = \? AND o.id = \?`).
			WithArgs(21, 3).
			WillReturnRows(sqlmock.NewRows(detailColumns).AddRow(21, "c0ffee", 3, 1, 11, 2, 150000, "momo", nil, paid,
				"Mufasa", "Animation", "118 min", "m.jpg", paid, "CGV Vincom", "72 Le Thanh Ton", start, "A1,A2"))

		d, err := NewOrderRepo(db).GetDetailForUser(context.Background(), 21, 3)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if len(d.Order.Seats) != 2 || d.Order.Seats[1] != "A2" {
			t.Errorf("unexpected seats %v", d.Order.Seats)
		}
		if d.Order.ClientToken != nil {
			t.Errorf("expected nil client token")
		}
		if !d.Showtime.StartsAt.Equal(start) || d.Cinema.ID != 2 {
			t.Errorf("unexpected detail %+v", d)
		}
	})

	t.Run("OtherUser", func(t *testing.T) {
		db, mock, done := newMock(t)
		defer done()
		mock.ExpectQuery("WHERE o.idorder").WillReturnRows(sqlmock.NewRows(detailColumns))
		_, err := NewOrderRepo(db).GetDetailForUser(context.Background(), 21, 4)
		if !errors.Is(err, ErrOrderNotFound) {
			t.Fatalf("expected ErrOrderNotFound, got %v", err)
		}
	})
}

func TestOrderRepoListByUserEmpty(t *testing.T) {
	db, mock, done := newMock(t)
	defer done()
	mock.ExpectQuery("ORDER BY o.paymentdate DESC").
		WillReturnRows(sqlmock.NewRows([]string{"idorder"}))
	items, err := NewOrderRepo(db).ListByUser(context.Background(), 3)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if items == nil || len(items) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", items)
	}
}

func TestNotificationRepoMarkRead(t *testing.T) {
	t.Run("Owner", func(t *testing.T) {
		db, mock, done := newMock(t)
		defer done()
		mock.ExpectQuery("SELECT user_id FROM notifications").
			WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(3))
		mock.ExpectExec("UPDATE notifications SET is_read = 1").
			WithArgs(8).
			WillReturnResult(sqlmock.NewResult(0, 1))
		if err := NewNotificationRepo(db).MarkRead(context.Background(), 8, 3); err != nil {
			t.Fatalf("mark read: %v", err)
		}
	})

	t.Run("OtherUser", func(t *testing.T) {
		db, mock, done := newMock(t)
		defer done()
		mock.ExpectQuery("SELECT user_id FROM notifications").
			WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(4))
		err := NewNotificationRepo(db).MarkRead(context.Background(), 8, 3)
		if !errors.Is(err, ErrNotificationNotFound) {
			t.Fatalf("expected ErrNotificationNotFound, got %v", err)
		}
	})
}
