package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// Applies every .sql file in the migrations directory in name order,
// one transaction per file. Files are written to be re-runnable, so a
// full re-apply after a partial failure is safe.
func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL is required")
	}

	dir := "migrations"
	listOnly := false
	for _, a := range os.Args[1:] {
		if a == "--list" {
			listOnly = true
		} else {
			dir = a
		}
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatalf("ping: %v", err)
	}
	log.Println("Connected to database")

	if listOnly {
		if err := listTables(db); err != nil {
			log.Fatal(err)
		}
		return
	}

	applied, failed := applyDir(db, dir)
	log.Printf("Done: %d OK, %d errors", applied, failed)
	if failed > 0 {
		os.Exit(1)
	}
	if err := verifyGlobalConfig(db); err != nil {
		log.Fatalf("Post-migration check failed: %v", err)
	}
	log.Println("Migrations complete; global scoring config present")
}

func applyDir(db *sql.DB, dir string) (applied, failed int) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Fatalf("read migrations dir %s: %v", dir, err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	for _, f := range files {
		raw, err := os.ReadFile(filepath.Join(dir, f))
		if err != nil {
			log.Fatalf("read %s: %v", f, err)
		}
		stmt := strings.TrimSpace(string(raw))
		if stmt == "" {
			continue
		}
		fmt.Printf("  %s ... ", f)
		if err := applyOne(db, stmt); err != nil {
			fmt.Printf("ERROR: %v\n", err)
			failed++
			continue
		}
		fmt.Println("OK")
		applied++
	}
	return applied, failed
}

func applyOne(db *sql.DB, stmt string) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(stmt); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func listTables(db *sql.DB) error {
	rows, err := db.Query("SELECT tablename FROM pg_tables WHERE schemaname = 'public' ORDER BY tablename")
	if err != nil {
		return err
	}
	defer rows.Close()
	n := 0
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return err
		}
		fmt.Println(" ", name)
		n++
	}
	fmt.Printf("Total: %d tables\n", n)
	return rows.Err()
}

// verifyGlobalConfig confirms the seeded global scoring config row
// landed. Every scoring run resolves against it.
func verifyGlobalConfig(db *sql.DB) error {
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM scoring_configs WHERE scope = 'global'").Scan(&n); err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("no global scoring config row after migration")
	}
	return nil
}
