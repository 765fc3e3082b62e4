package store

import (
	"database/sql"
	"fmt"

	"clonekit/internal/logging"
)

// Migration adds a column that older cache databases lack.
type Migration struct {
	Table  string
	Column string
	Def    string
}

// pendingMigrations lists columns added after the first release of the
// storage table. SQLite refuses non-constant defaults on ALTER TABLE, so
// backfills run separately.
var pendingMigrations = []Migration{
	{"storage", "updated_at", "DATETIME"},
}

// RunMigrations applies schema migrations for existing databases.
func RunMigrations(db *sql.DB) (applied int, err error) {
	timer := logging.StartTimer(logging.CategoryCache, "RunMigrations")
	defer timer.Stop()

	for _, m := range pendingMigrations {
		if !tableExists(db, m.Table) {
			logging.CacheDebug("Table missing, skipping migration: %s.%s", m.Table, m.Column)
			continue
		}
		if columnExists(db, m.Table, m.Column) {
			continue
		}
		query := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", m.Table, m.Column, m.Def)
		if _, err := db.Exec(query); err != nil {
			return applied, fmt.Errorf("migration %s.%s: %w", m.Table, m.Column, err)
		}
		logging.Cache("Migration applied: added %s.%s", m.Table, m.Column)
		applied++
	}

	if applied > 0 {
		if _, err := db.Exec(`UPDATE storage SET updated_at = CURRENT_TIMESTAMP WHERE updated_at IS NULL`); err != nil {
			return applied, fmt.Errorf("backfill updated_at: %w", err)
		}
	}
	return applied, nil
}

// columnExists checks if a column exists in a table using PRAGMA table_info.
func columnExists(db *sql.DB, table, column string) bool {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		logging.CacheDebug("PRAGMA table_info(%s) failed: %v", table, err)
		return false
	}
	defer rows.Close()

	for rows.Next() {
		var cid, notnull, pk int
		var name, ctype string
		var dflt any
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			continue
		}
		if name == column {
			return true
		}
	}
	return false
}

func tableExists(db *sql.DB, table string) bool {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&count)
	if err != nil {
		logging.CacheDebug("Table existence check failed for %s: %v", table, err)
		return false
	}
	return count > 0
}
