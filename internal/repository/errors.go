// Package repository holds the MySQL data access layer. Repositories return
// the sentinel values below so handlers can pick a status code without
// looking at driver errors.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrForbidden is returned when the caller touches a row owned by someone
// else. Handlers translate it into 404 so ids of other users do not leak.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a write collides with existing state.
var ErrConflict = errors.New("conflict")

var (
	ErrNotFound             = errors.New("not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrEmailExists          = errors.New("email already exists")
	ErrFilmNotFound         = errors.New("film not found")
	ErrCinemaNotFound       = errors.New("cinema not found")
	ErrShowtimeNotFound     = errors.New("showtime not found")
	ErrLayoutNotFound       = errors.New("seat layout not found")
	ErrOrderNotFound        = errors.New("order not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrSeatTaken            = errors.New("seat already sold")
	ErrTokenInvalid         = errors.New("refresh token invalid")
)

const (
	mysqlDuplicateEntry = 1062
	mysqlDeadlock       = 1213
)

// isDuplicate reports whether err is a MySQL unique key violation.
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}

// isDeadlock reports whether InnoDB picked the transaction as a deadlock
// victim. The transaction has been rolled back and may be retried.
func isDeadlock(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDeadlock
}
