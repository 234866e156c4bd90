package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tiendahub/tienda-backend/pkg/migrate"
)

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration matching %s", pattern)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func TestProductsMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_products.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS products",
		"FOREIGN KEY (store_id) REFERENCES stores(id) ON DELETE CASCADE",
		"CHECK (stock_actual >= 0)",
		"CHECK (stock_min >= 0)",
		"idx_products_store_code ON products (store_id, code)",
		"DROP TABLE IF EXISTS products",
	}
	for _, check := range checks {
		if !strings.Contains(content, check) {
			t.Errorf("products migration missing %q", check)
		}
	}
}

func TestSalesMigrationCascadesLines(t *testing.T) {
	content := readMigration(t, "*_create_sales.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS sales",
		"CREATE TABLE IF NOT EXISTS sale_lines",
		"FOREIGN KEY (sale_id) REFERENCES sales(id) ON DELETE CASCADE",
		"CHECK (quantity > 0)",
		"DROP TABLE IF EXISTS sale_lines",
	}
	for _, check := range checks {
		if !strings.Contains(content, check) {
			t.Errorf("sales migration missing %q", check)
		}
	}
}

func TestPurchasesMigrationKeepsEditWindowColumns(t *testing.T) {
	content := readMigration(t, "*_create_purchases.sql")

	for _, check := range []string{"can_edit boolean NOT NULL DEFAULT true", "edit_deadline timestamptz"} {
		if !strings.Contains(content, check) {
			t.Errorf("purchases migration missing %q", check)
		}
	}
}

func TestMigrationDirValidates(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("migrations dir invalid: %v", err)
	}
}
