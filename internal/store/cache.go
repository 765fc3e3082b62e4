// Package store is a small key/value storage wrapper on an embedded SQLite
// database, the persistent counterpart of a browser's local storage.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"clonekit/internal/logging"

	_ "github.com/mattn/go-sqlite3" // registers "sqlite3"
	_ "modernc.org/sqlite"          // registers "sqlite"
)

// ErrNotString is returned by Set when raw data is not a string.
var ErrNotString = errors.New("store: raw data must be a string")

// Cache stores named string entries.
//
// Usage Example:
//
//	cache, _ := store.Open("sqlite", ".clonekit/cache.db")
//	defer cache.Close()
//
//	// JSON-encode and store
//	cache.Set(ctx, "profile", map[string]any{"theme": "dark"}, false)
//
//	// Read the stored text back
//	text, ok, _ := cache.Get(ctx, "profile")
type Cache struct {
	db     *sql.DB
	mu     sync.RWMutex
	driver string
	path   string
}

// Open initializes the database at path using the given driver
// ("sqlite" or "sqlite3"). Path ":memory:" keeps everything in RAM.
func Open(driver, path string) (*Cache, error) {
	timer := logging.StartTimer(logging.CategoryCache, "store.Open")
	defer timer.Stop()

	logging.Cache("Opening cache at %s (driver %s)", path, driver)

	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			logging.Get(logging.CategoryCache).Error("Failed to create directory %s: %v", dir, err)
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open(driver, path)
	if err != nil {
		logging.Get(logging.CategoryCache).Error("Failed to open database at %s: %v", path, err)
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps :memory: databases alive and serializes writes.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logging.CacheDebug("Failed to set sqlite busy_timeout: %v", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		logging.CacheDebug("Failed to set sqlite journal_mode=WAL: %v", err)
	}

	c := &Cache{db: db, driver: driver, path: path}
	if err := c.initialize(); err != nil {
		logging.Get(logging.CategoryCache).Error("Failed to initialize schema: %v", err)
		db.Close()
		return nil, err
	}
	return c, nil
}

// initialize creates the required tables.
func (c *Cache) initialize() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS storage (
		name TEXT PRIMARY KEY,
		data TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`
	if _, err := c.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create storage table: %w", err)
	}
	if _, err := RunMigrations(c.db); err != nil {
		return err
	}
	return nil
}

// Driver returns the database driver name.
func (c *Cache) Driver() string { return c.driver }

// Path returns the database path.
func (c *Cache) Path() string { return c.path }

// Set stores data under name. Unless raw is set, data is JSON-encoded first;
// with raw, data must already be a string and is stored verbatim.
func (c *Cache) Set(ctx context.Context, name string, data any, raw bool) error {
	var text string
	if raw {
		s, ok := data.(string)
		if !ok {
			return fmt.Errorf("%s: %w", name, ErrNotString)
		}
		text = s
	} else {
		b, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", name, err)
		}
		text = string(b)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.db.ExecContext(ctx, `
		INSERT INTO storage (name, data, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(name) DO UPDATE SET data = excluded.data, updated_at = CURRENT_TIMESTAMP`,
		name, text)
	if err != nil {
		err = fmt.Errorf("failed to store %s: %w", name, err)
	}
	audit(logging.AuditCacheSet, name, err)
	if err != nil {
		return err
	}
	logging.CacheDebug("Set %s (%d bytes, raw=%v)", name, len(text), raw)
	return nil
}

// Get returns the stored text for name. ok is false when name is absent.
func (c *Cache) Get(ctx context.Context, name string) (text string, ok bool, err error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	err = c.db.QueryRowContext(ctx, `SELECT data FROM storage WHERE name = ?`, name).Scan(&text)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		err = fmt.Errorf("failed to read %s: %w", name, err)
		audit(logging.AuditCacheGet, name, err)
		return "", false, err
	}
	audit(logging.AuditCacheGet, name, nil)
	return text, true, nil
}

// GetJSON decodes the stored entry into dst.
func (c *Cache) GetJSON(ctx context.Context, name string, dst any) (bool, error) {
	text, ok, err := c.Get(ctx, name)
	if err != nil || !ok {
		return ok, err
	}
	if err := json.Unmarshal([]byte(text), dst); err != nil {
		return true, fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return true, nil
}

// Remove deletes name. Removing an absent entry is not an error.
func (c *Cache) Remove(ctx context.Context, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.db.ExecContext(ctx, `DELETE FROM storage WHERE name = ?`, name); err != nil {
		err = fmt.Errorf("failed to remove %s: %w", name, err)
		audit(logging.AuditCacheRemove, name, err)
		return err
	}
	audit(logging.AuditCacheRemove, name, nil)
	logging.CacheDebug("Removed %s", name)
	return nil
}

// Clear deletes every entry.
func (c *Cache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	res, err := c.db.ExecContext(ctx, `DELETE FROM storage`)
	if err != nil {
		err = fmt.Errorf("failed to clear storage: %w", err)
		audit(logging.AuditCacheClear, "", err)
		return err
	}
	audit(logging.AuditCacheClear, "", nil)
	n, _ := res.RowsAffected()
	logging.Cache("Cleared %d entries", n)
	return nil
}

// Keys returns all entry names in sorted order.
func (c *Cache) Keys(ctx context.Context) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rows, err := c.db.QueryContext(ctx, `SELECT name FROM storage ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		keys = append(keys, name)
	}
	return keys, rows.Err()
}

func audit(op logging.AuditEventType, name string, err error) {
	logging.AuditFor(logging.CategoryCache).CacheOp(op, name, err)
}

// Close closes the database.
func (c *Cache) Close() error {
	return c.db.Close()
}
