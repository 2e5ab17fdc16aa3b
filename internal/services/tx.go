package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// perAttemptTimeout bounds a single transaction attempt. The timeout is
// detached from the caller's context: a client that gives up early simply
// does not learn the outcome, the transaction still commits or rolls back.
const perAttemptTimeout = 5 * time.Second

// runInTransaction executes fn in a database transaction, retrying a bounded
// number of times on serialization conflicts. On postgres each attempt runs
// at serializable isolation; sqlite serializes writers on its own.
func runInTransaction(ctx context.Context, db *gorm.DB, attempts int, fn func(tx *gorm.DB) error) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(attempt) * 10 * time.Millisecond)
		}

		attemptCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), perAttemptTimeout)
		err = db.WithContext(attemptCtx).Transaction(fn, txOptions(db)...)
		cancel()

		if err == nil || !isSerializationFailure(err) {
			return err
		}
	}

	return fmt.Errorf("%w: %v", ErrConflict, err)
}

func txOptions(db *gorm.DB) []*sql.TxOptions {
	if db.Dialector.Name() == "postgres" {
		return []*sql.TxOptions{{Isolation: sql.LevelSerializable}}
	}
	return nil
}

// isSerializationFailure reports whether err is a retryable transaction
// conflict: SQLSTATE 40001 (serialization failure) or 40P01 (deadlock) on
// postgres, writer contention on sqlite.
func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}

	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "SQLITE_BUSY")
}
