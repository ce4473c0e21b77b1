package database

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"
)

//go:embed schema.sql
var schema string

// Statements splits the embedded schema into individual statements. Lines
// starting with "--" are comments.
func Statements() []string {
	var b strings.Builder
	for _, line := range strings.Split(schema, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	var out []string
	for _, stmt := range strings.Split(b.String(), ";") {
		if s := strings.TrimSpace(stmt); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Migrate applies every schema statement. All tables use IF NOT EXISTS so
// running it twice is harmless.
func Migrate(ctx context.Context, db *sql.DB) (int, error) {
	stmts := Statements()
	for i, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return i, fmt.Errorf("statement %d: %w", i+1, err)
		}
	}
	return len(stmts), nil
}
