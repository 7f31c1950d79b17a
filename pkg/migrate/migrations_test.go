package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/restaus/restaus-backend/pkg/migrate"
)

func readMigration(t *testing.T, pattern string) string {
	t.Helper()

	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration matching %q found", pattern)
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func TestInventoryMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_menu_catalog.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS inventories",
		"CHECK (remaining_stock >= 0)",
		"idx_inventories_menu_id ON inventories (menu_id)",
		"DROP TABLE IF EXISTS inventories",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestPaymentsMigrationEnforcesOnePaymentPerOrder(t *testing.T) {
	content := readMigration(t, "*_create_payments.sql")

	if !strings.Contains(content, "CREATE UNIQUE INDEX IF NOT EXISTS idx_payments_order_id ON payments (order_id)") {
		t.Errorf("payments migration must carry a unique index on order_id")
	}
}

func TestMigrationDirIsValid(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations dir: %v", err)
	}
}
