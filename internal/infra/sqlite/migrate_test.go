package sqlite

import "testing"

func TestMigrateUp_AppliesAndIsIdempotent(t *testing.T) {
	t.Parallel()

	db, err := NewDB(":memory:")
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	defer db.Close()

	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp: %v", err)
	}

	version, err := MigrationVersion(db)
	if err != nil {
		t.Fatalf("MigrationVersion: %v", err)
	}
	if version < 1 {
		t.Fatalf("version = %d, want >= 1", version)
	}

	// Second run must be a no-op.
	if err := MigrateUp(db); err != nil {
		t.Fatalf("second MigrateUp: %v", err)
	}
	again, err := MigrationVersion(db)
	if err != nil {
		t.Fatalf("MigrationVersion: %v", err)
	}
	if again != version {
		t.Errorf("version changed on rerun: %d -> %d", version, again)
	}

	// run table exists
	if _, err := db.Exec("SELECT id, source, status FROM run LIMIT 0"); err != nil {
		t.Fatalf("run table missing: %v", err)
	}
}

func TestVersionFromFilename(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		want int
	}{
		{"001_runs.up.sql", 1},
		{"042_add_index.up.sql", 42},
		{"bogus.up.sql", 0},
	}
	for _, tc := range cases {
		if got := versionFromFilename(tc.name); got != tc.want {
			t.Errorf("versionFromFilename(%q) = %d, want %d", tc.name, got, tc.want)
		}
	}
}
