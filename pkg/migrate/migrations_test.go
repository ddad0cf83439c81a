package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fidgetclicks/fidgetclicks-backend/pkg/migrate"
)

func TestInitMigrationContainsSchemas(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_init_catalog_and_orders.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no init migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE components",
		"CREATE TABLE keyboards",
		"CREATE TABLE orders",
		"CREATE TABLE order_items",
		"order_number BIGSERIAL UNIQUE",
		"shipping_address JSONB NOT NULL",
		"quantity INTEGER NOT NULL DEFAULT 0 CHECK (quantity >= 0)",
		"NUMERIC(12,2)",
		"-- +goose Up",
		"-- +goose Down",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestValidateDirAcceptsShippedMigrations(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("ValidateDir: %v", err)
	}
}
