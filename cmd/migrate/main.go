package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
)

// Applies the SQL files under migrations/ in version order. Files are
// named NNN_description.up.sql / NNN_description.down.sql; applied
// versions are tracked in schema_migrations.

type migration struct {
	version int
	name    string
	up      string
	down    string
}

func main() {
	mode := flag.String("mode", "up", "migration mode: up or down")
	dir := flag.String("dir", "migrations", "migrations directory")
	flag.Parse()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("failed to ping database: %v", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`); err != nil {
		log.Fatalf("failed to ensure schema_migrations: %v", err)
	}

	migrations, err := loadMigrations(*dir)
	if err != nil {
		log.Fatalf("failed to load migrations: %v", err)
	}

	switch strings.ToLower(*mode) {
	case "up":
		for _, m := range migrations {
			if err := applyUp(db, m); err != nil {
				log.Fatalf("migration up failed: %v", err)
			}
		}
		log.Println("migration up completed")
	case "down":
		for i := len(migrations) - 1; i >= 0; i-- {
			if err := applyDown(db, migrations[i]); err != nil {
				log.Fatalf("migration down failed: %v", err)
			}
		}
		log.Println("migration down completed")
	default:
		log.Fatalf("unknown mode: %s", *mode)
	}
}

func loadMigrations(dir string) ([]migration, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	byVersion := make(map[int]*migration)
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}

		parts := strings.SplitN(name, "_", 2)
		if len(parts) < 2 {
			log.Printf("skip migration without version prefix: %s", name)
			continue
		}
		version, err := strconv.Atoi(parts[0])
		if err != nil {
			log.Printf("skip migration without numeric version: %s", name)
			continue
		}

		m, ok := byVersion[version]
		if !ok {
			m = &migration{version: version, name: strings.TrimSuffix(parts[1], ".sql")}
			byVersion[version] = m
		}
		path := filepath.Join(dir, name)
		if strings.HasSuffix(name, ".down.sql") {
			m.down = path
		} else {
			m.up = path
		}
	}

	out := make([]migration, 0, len(byVersion))
	for _, m := range byVersion {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].version < out[j].version })
	return out, nil
}

func applied(db *sql.DB, version int) (bool, error) {
	var exists bool
	err := db.QueryRow("SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version=$1)", version).Scan(&exists)
	return exists, err
}

func applyUp(db *sql.DB, m migration) error {
	if m.up == "" {
		return nil
	}
	done, err := applied(db, m.version)
	if err != nil || done {
		return err
	}

	log.Printf("applying %03d: %s", m.version, m.name)
	if err := execFile(db, m.up); err != nil {
		return fmt.Errorf("failed applying %s: %w", m.up, err)
	}
	_, err = db.Exec("INSERT INTO schema_migrations(version, name) VALUES($1, $2)", m.version, m.name)
	return err
}

func applyDown(db *sql.DB, m migration) error {
	if m.down == "" {
		return nil
	}
	done, err := applied(db, m.version)
	if err != nil || !done {
		return err
	}

	log.Printf("reverting %03d: %s", m.version, m.name)
	if err := execFile(db, m.down); err != nil {
		return fmt.Errorf("failed reverting %s: %w", m.down, err)
	}
	_, err = db.Exec("DELETE FROM schema_migrations WHERE version=$1", m.version)
	return err
}

func execFile(db *sql.DB, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	_, err = db.Exec(string(content))
	return err
}
