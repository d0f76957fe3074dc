package db

import (
	"context"
	"testing"

	"github.com/diewo77/scam-catalog/internal/config"
	"github.com/diewo77/scam-catalog/internal/logging"
	"github.com/diewo77/scam-catalog/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	d, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestMigrateCreatesTables(t *testing.T) {
	d := openTestDB(t)
	if err := Migrate(d); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	for _, table := range []string{"users", "tags", "case_tags", "profile_cases", "entitlements", "images", "custom_fields"} {
		if !d.Migrator().HasTable(table) {
			t.Errorf("missing table %s", table)
		}
	}
	// Running twice is harmless.
	if err := Migrate(d); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}

func TestSeedIdempotent(t *testing.T) {
	d := openTestDB(t)
	if err := Migrate(d); err != nil {
		t.Fatal(err)
	}
	if err := Seed(d); err != nil {
		t.Fatal(err)
	}
	if err := Seed(d); err != nil {
		t.Fatal(err)
	}
	var count int64
	d.Model(&models.FieldAccessPolicy{}).Count(&count)
	if count != int64(len(GovernedFields)) {
		t.Fatalf("expected %d policies, got %d", len(GovernedFields), count)
	}

	var phone models.FieldAccessPolicy
	if err := d.Where("entity_type = ? AND field_name = ?", "identifier", "phone").First(&phone).Error; err != nil {
		t.Fatal(err)
	}
	if phone.Tier != models.TierPremium {
		t.Errorf("phone tier = %q, want premium", phone.Tier)
	}
}

func TestSeedKeepsOperatorTier(t *testing.T) {
	d := openTestDB(t)
	if err := Migrate(d); err != nil {
		t.Fatal(err)
	}
	custom := models.FieldAccessPolicy{EntityType: "identifier", FieldName: "email", Tier: models.TierPublic}
	if err := d.Create(&custom).Error; err != nil {
		t.Fatal(err)
	}
	if err := Seed(d); err != nil {
		t.Fatal(err)
	}
	var email models.FieldAccessPolicy
	d.Where("entity_type = ? AND field_name = ?", "identifier", "email").First(&email)
	if email.Tier != models.TierPublic {
		t.Errorf("seed overwrote operator tier: %q", email.Tier)
	}
}

func TestConnectRejectsUnknownDriver(t *testing.T) {
	_, err := Connect(config.DatabaseConfig{Driver: "oracle"}, false, logging.Discard())
	if err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestConnectSQLite(t *testing.T) {
	d, err := Connect(config.DatabaseConfig{Driver: "sqlite", Path: "file:" + t.Name() + "?mode=memory&cache=shared"}, false, logging.Discard())
	if err != nil {
		t.Fatal(err)
	}
	if err := Migrate(d); err != nil {
		t.Fatal(err)
	}
}

func TestSQLiteDSNEnablesForeignKeys(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"app.db", "app.db?_foreign_keys=on"},
		{"file:x?mode=memory", "file:x?mode=memory&_foreign_keys=on"},
		{"app.db?_foreign_keys=off", "app.db?_foreign_keys=off"},
	}
	for _, tt := range tests {
		if got := sqliteDSN(tt.in); got != tt.want {
			t.Errorf("sqliteDSN(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestConnectSQLiteForeignKeysOnEveryConnection(t *testing.T) {
	d, err := Connect(config.DatabaseConfig{Driver: "sqlite", Path: "file:" + t.Name() + "?mode=memory&cache=shared"}, false, logging.Discard())
	if err != nil {
		t.Fatal(err)
	}
	sqlDB, err := d.DB()
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		conn, err := sqlDB.Conn(ctx)
		if err != nil {
			t.Fatal(err)
		}
		defer conn.Close()
		var on int
		if err := conn.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&on); err != nil {
			t.Fatal(err)
		}
		if on != 1 {
			t.Fatalf("connection %d: foreign_keys = %d", i, on)
		}
	}
}
