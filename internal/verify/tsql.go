package verify

import (
	"context"

	"github.com/ha1tch/tsqlparser"
)

// tsqlVerifier parses SQL with the T-SQL grammar, offline.
type tsqlVerifier struct{}

func (tsqlVerifier) Dialect() string { return DialectTSQL }

func (tsqlVerifier) Verify(ctx context.Context, sql string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	program, problems := tsqlparser.Parse(sql)
	if len(problems) > 0 {
		return &Error{Dialect: DialectTSQL, Problems: problems}
	}
	if len(tsqlparser.NewInspector(program).FindSelectStatements()) == 0 {
		return &Error{Dialect: DialectTSQL, Problems: []string{"no SELECT statement found"}}
	}
	return nil
}
