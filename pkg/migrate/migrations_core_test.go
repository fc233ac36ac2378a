package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCoreMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_marketplace_core.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no core migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS listings",
		"CHECK (price > 0)",
		"CHECK (quantity >= 0)",
		"CHECK (original_quantity >= quantity)",
		"CHECK (units_sold >= 0)",
		"CREATE TABLE IF NOT EXISTS transactions",
		"REFERENCES listings(id)",
		"CREATE TABLE IF NOT EXISTS disputes",
		"REFERENCES transactions(id) ON DELETE CASCADE",
		"REFERENCES transactions(id) ON DELETE SET NULL",
		"CHECK (score BETWEEN 1 AND 5)",
		"UNIQUE (transaction_id, rater_id)",
		"WHERE published_at IS NULL",
		"DROP TABLE IF EXISTS listings",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
