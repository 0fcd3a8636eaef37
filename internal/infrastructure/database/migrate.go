package database

import (
	"fmt"

	migrate "github.com/rubenv/sql-migrate"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Migrate applies (or rolls back) the SQL migrations found in dir with
// sql-migrate. max limits the number of steps, 0 means all.
func Migrate(db *gorm.DB, dir string, direction migrate.MigrationDirection, max int, log *zap.Logger) (int, error) {
	if log == nil {
		log = zap.NewNop()
	}

	migrations := &migrate.FileMigrationSource{
		Dir: dir,
	}

	sqlDB, err := db.DB()
	if err != nil {
		return 0, fmt.Errorf("failed to get db connection during migrate: %w", err)
	}

	log.Info("🔄 Applying migrations", zap.String("dir", dir), zap.Bool("up", direction == migrate.Up))

	n, err := migrate.ExecMax(sqlDB, dialect(db), migrations, direction, max)
	if err != nil {
		return n, fmt.Errorf("failed to apply migration: %w", err)
	}

	log.Info("✅ Migrations applied", zap.Int("count", n))
	return n, nil
}

// PendingMigrations returns the ids of migrations not yet applied
func PendingMigrations(db *gorm.DB, dir string) ([]string, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get db connection: %w", err)
	}

	planned, _, err := migrate.PlanMigration(sqlDB, dialect(db), &migrate.FileMigrationSource{Dir: dir}, migrate.Up, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to plan migrations: %w", err)
	}

	ids := make([]string, 0, len(planned))
	for _, m := range planned {
		ids = append(ids, m.Id)
	}
	return ids, nil
}

// dialect maps the GORM dialector name to the sql-migrate dialect name
func dialect(db *gorm.DB) string {
	if db.Dialector.Name() == "sqlite" {
		return "sqlite3"
	}
	return db.Dialector.Name()
}
