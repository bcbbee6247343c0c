package domain

import "errors"

// ErrTablesNotFound signals that the backing store has not been
// provisioned yet (undefined_table from PostgreSQL). Callers map it to
// the TABLES_NOT_FOUND response code.
var ErrTablesNotFound = errors.New("database tables not set up")
