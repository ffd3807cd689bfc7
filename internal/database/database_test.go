package database

import (
	"testing"

	"jobboard/internal/config"
)

func TestInitDatabaseSQLiteAndMigrate(t *testing.T) {
	db, err := InitDatabase(config.DatabaseConfig{
		Driver:     config.DriverSQLite,
		SQLitePath: "file:migrate_test?mode=memory&cache=shared",
	})
	if err != nil {
		t.Fatalf("init database: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	for _, table := range []string{"company", "posting", "user", "tag", "skill_tag", "posting_tag", "contact_message"} {
		if !db.Migrator().HasTable(table) {
			t.Errorf("expected table %q to exist", table)
		}
	}
}

func TestInitDatabaseRejectsUnknownDriver(t *testing.T) {
	if _, err := InitDatabase(config.DatabaseConfig{Driver: "oracle"}); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}
