package main

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

func TestSeedCommand_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_PATH", path)

	for i := 0; i < 2; i++ {
		rootCmd.SetArgs([]string{"seed"})
		if err := rootCmd.Execute(); err != nil {
			t.Fatalf("run %d: seed command failed: %v", i, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	for table, want := range map[string]int{"Products": 2, "Profiles": 1} {
		var n int
		if err := db.QueryRow(`SELECT COUNT(*) FROM "` + table + `"`).Scan(&n); err != nil {
			t.Fatalf("Failed to count %s: %v", table, err)
		}
		if n != want {
			t.Errorf("Expected %d rows in %s, got %d", want, table, n)
		}
	}
}

func TestRootCommand_Subcommands(t *testing.T) {
	want := map[string]bool{"serve": false, "seed": false}
	for _, c := range rootCmd.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("Expected subcommand %q", name)
		}
	}
}
