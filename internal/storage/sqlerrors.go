package storage

import (
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// MySQL server error numbers worth another attempt.
const (
	mysqlLockWaitTimeout = 1205
	mysqlDeadlock        = 1213
	mysqlTooManyConns    = 1040
)

// serverTransient classifies errors reported by a database server. ok is
// false when err carries no server error, leaving the decision to the caller.
func serverTransient(err error) (transient, ok bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		code := pgErr.Code
		return pgerrcode.IsConnectionException(code) ||
			pgerrcode.IsTransactionRollback(code) ||
			pgerrcode.IsInsufficientResources(code) ||
			pgerrcode.IsOperatorIntervention(code), true
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case mysqlLockWaitTimeout, mysqlDeadlock, mysqlTooManyConns:
			return true, true
		}
		return false, true
	}
	return false, false
}
