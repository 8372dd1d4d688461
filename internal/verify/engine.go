package verify

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	_ "github.com/microsoft/go-mssqldb"
)

// engineVerifier submits SQL to a live database without executing it.
type engineVerifier struct {
	dialect string
	driver  string
	dsn     string

	// statements wraps the SQL under test into what is sent, in order, on a
	// single connection. Only the statement at index check can fail
	// verification; errors from the others are infrastructure errors.
	statements func(sql string) []string
	check      int

	// tolerate, if set, accepts errors from the checked statement that do
	// not mean the SQL is invalid.
	tolerate func(err error) bool
}

// newSQLiteVerifier checks against dsn, or against an empty in-memory
// database when dsn is blank. The empty database has no tables, so only
// syntax is checked there and unknown tables and columns are accepted.
func newSQLiteVerifier(dsn string) *engineVerifier {
	v := &engineVerifier{
		dialect:    DialectSQLite,
		driver:     "sqlite3",
		dsn:        dsn,
		statements: func(sql string) []string { return []string{"EXPLAIN " + sql} },
	}
	if dsn == "" {
		v.dsn = ":memory:"
		v.tolerate = isSQLiteSchemaError
	}
	return v
}

// isSQLiteSchemaError reports errors raised while resolving names against
// the schema, after the statement has parsed.
func isSQLiteSchemaError(err error) bool {
	msg := err.Error()
	return strings.HasPrefix(msg, "no such table:") || strings.HasPrefix(msg, "no such column:")
}

func newPostgresVerifier(dsn string) *engineVerifier {
	return &engineVerifier{
		dialect:    DialectPostgres,
		driver:     "pgx",
		dsn:        dsn,
		statements: func(sql string) []string { return []string{"EXPLAIN " + sql} },
	}
}

// PARSEONLY is a session setting, so all three statements share one
// connection.
func newSQLServerVerifier(dsn string) *engineVerifier {
	return &engineVerifier{
		dialect: DialectSQLServer,
		driver:  "sqlserver",
		dsn:     dsn,
		statements: func(sql string) []string {
			return []string{"SET PARSEONLY ON", sql, "SET PARSEONLY OFF"}
		},
		check: 1,
	}
}

func (v *engineVerifier) Dialect() string { return v.dialect }

func (v *engineVerifier) Verify(ctx context.Context, sqlText string) error {
	db, err := sql.Open(v.driver, v.dsn)
	if err != nil {
		return fmt.Errorf("open %s: %w", v.dialect, err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	conn, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("connect %s: %w", v.dialect, err)
	}
	defer conn.Close()

	for i, stmt := range v.statements(sqlText) {
		_, err := conn.ExecContext(ctx, stmt)
		if err == nil {
			continue
		}
		if i == v.check {
			if v.tolerate != nil && v.tolerate(err) {
				continue
			}
			return &Error{Dialect: v.dialect, Problems: []string{err.Error()}}
		}
		return fmt.Errorf("%s: %w", v.dialect, err)
	}
	return nil
}
