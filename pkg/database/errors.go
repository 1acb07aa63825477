package database

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotReady indicates the database connection has not been established.
var ErrNotReady = errors.New("database not ready")

// Unavailable reports whether err means the database could not be reached,
// as opposed to rejecting the statement. Checkpoint reads and writes that
// fail this way can be retried once the connection recovers.
func Unavailable(err error) bool {
	if errors.Is(err, ErrNotReady) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, driver.ErrBadConn) {
		return true
	}
	var connErr *pgconn.ConnectError
	return errors.As(err, &connErr)
}

// MapHTTPStatus maps database errors to HTTP status codes: 503 when the
// database is unavailable, 500 otherwise.
func MapHTTPStatus(err error) int {
	if Unavailable(err) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
