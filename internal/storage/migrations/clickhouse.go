package migrations

import (
	"context"
	"fmt"
	"io/fs"
	"strings"

	chstore "fypy-hub/internal/storage/clickhouse"
)

// ApplyClickhouse runs all embedded ClickHouse schema files in lexical order
// against an already-open connection. The driver does not support multiquery
// Exec, so each file is split into statements on semicolons. String literals
// in migration files must not contain semicolons.
func ApplyClickhouse(ctx context.Context, conn *chstore.Conn) error {
	files, err := listSQL(clickhouseFS, "clickhouse")
	if err != nil {
		return err
	}

	for _, file := range files {
		data, err := fs.ReadFile(clickhouseFS, "clickhouse/"+file)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", file, err)
		}
		for _, stmt := range splitStatements(string(data)) {
			if err := conn.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("apply migration %s: %w", file, err)
			}
		}
	}
	return nil
}

// splitStatements strips -- comments and blank lines, then splits on
// semicolons. Does not handle semicolons inside string literals.
func splitStatements(input string) []string {
	var kept []string
	for _, line := range strings.Split(input, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		kept = append(kept, line)
	}

	var stmts []string
	for _, part := range strings.Split(strings.Join(kept, "\n"), ";") {
		if stmt := strings.TrimSpace(part); stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}
