package export

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/voltable/pkg/view"
)

// SQLiteTable is the table written by WriteSQLite
const SQLiteTable = "opportunities"

// WriteSQLite writes the view into a fresh SQLite database at path. The
// opportunities table has a position column (view order, from 0) and one
// TEXT column per exported field.
func WriteSQLite(ctx context.Context, path string, v view.View) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing database: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open sqlite database: %w", err)
	}
	defer db.Close()

	fields := Fields(v.Columns)
	cols := make([]string, len(fields))
	marks := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = quoteIdent(f) + " TEXT"
		marks[i] = "?"
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	create := fmt.Sprintf("CREATE TABLE %s (position INTEGER PRIMARY KEY, %s)",
		quoteIdent(SQLiteTable), strings.Join(cols, ", "))
	if _, err := tx.ExecContext(ctx, create); err != nil {
		return fmt.Errorf("create table: %w", err)
	}

	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = quoteIdent(f)
	}
	insert := fmt.Sprintf("INSERT INTO %s (position, %s) VALUES (?, %s)",
		quoteIdent(SQLiteTable), strings.Join(names, ", "), strings.Join(marks, ", "))
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	args := make([]any, len(fields)+1)
	for pos, r := range v.Records {
		args[0] = pos
		for i, f := range fields {
			args[i+1] = r.Value(f)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert record %d: %w", r.Index(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
