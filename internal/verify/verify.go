// Package verify checks that rewritten SQL is accepted by a target engine.
//
// The tsql backend parses offline with a T-SQL parser and needs no
// database. The others hand the statement to a live engine without running
// it: sqlite and postgres through EXPLAIN, sqlserver under
// SET PARSEONLY ON.
package verify

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Supported dialects.
const (
	DialectTSQL      = "tsql"
	DialectSQLite    = "sqlite"
	DialectSQLServer = "sqlserver"
	DialectPostgres  = "postgres"
)

// Dialects lists every supported dialect name.
func Dialects() []string {
	return []string{DialectPostgres, DialectSQLite, DialectSQLServer, DialectTSQL}
}

// Verifier checks SQL text against one engine.
type Verifier interface {
	Dialect() string
	Verify(ctx context.Context, sql string) error
}

// Error reports SQL the engine rejected. Connection failures and other
// infrastructure problems are returned as plain errors instead.
type Error struct {
	Dialect  string
	Problems []string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s rejected SQL: %s", e.Dialect, strings.Join(e.Problems, "; "))
}

// IsVerifyError returns true if the engine rejected the SQL.
// Uses errors.As to handle wrapped errors.
func IsVerifyError(err error) bool {
	var ve *Error
	return errors.As(err, &ve)
}

// New returns the verifier for dialect. sqlserver and postgres need a DSN.
// Without one, sqlite checks syntax only, against an empty in-memory
// database. tsql ignores dsn.
func New(dialect, dsn string) (Verifier, error) {
	switch dialect {
	case DialectTSQL:
		return tsqlVerifier{}, nil
	case DialectSQLite:
		return newSQLiteVerifier(dsn), nil
	case DialectSQLServer:
		if dsn == "" {
			return nil, fmt.Errorf("dialect %s requires a DSN", dialect)
		}
		return newSQLServerVerifier(dsn), nil
	case DialectPostgres:
		if dsn == "" {
			return nil, fmt.Errorf("dialect %s requires a DSN", dialect)
		}
		return newPostgresVerifier(dsn), nil
	default:
		return nil, fmt.Errorf("unknown dialect %q (supported: %s)", dialect, strings.Join(Dialects(), ", "))
	}
}
