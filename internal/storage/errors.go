package storage

import (
	"database/sql"
	"errors"

	"cashflow/internal/core"

	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// translateErr maps driver-level failures onto the core error taxonomy so
// callers can use errors.Is without knowing about SQLite.
func translateErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return core.ErrNotFound
	}
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return core.ErrDuplicate
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			// Inserts and updates check the referenced category themselves,
			// so an FK violation means a delete hit rows that still
			// reference the target.
			return core.ErrInUse
		}
	}
	return err
}
