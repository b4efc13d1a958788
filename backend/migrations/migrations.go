// Package migrations holds the versioned schema history. Versions are applied in
// order by goose and recorded in goose_db_version; new changes get a new version,
// existing ones are never edited.
package migrations

import (
	"context"
	"database/sql"
	"fmt"

	"courseplatform/backend/models"
	"courseplatform/backend/utils"

	"github.com/pressly/goose/v3"
	"gorm.io/gorm"
)

// List returns the schema history bound to db.
func List(db *gorm.DB) []*goose.Migration {
	return []*goose.Migration{
		goose.NewGoMigration(1, createTables(db, &models.User{}), dropTables(db, &models.User{})),
		goose.NewGoMigration(2,
			createTables(db, &models.Course{}, &models.Module{}, &models.Lesson{}, &models.Quiz{}, &models.QuizQuestion{}),
			dropTables(db, &models.QuizQuestion{}, &models.Quiz{}, &models.Lesson{}, &models.Module{}, &models.Course{}),
		),
		goose.NewGoMigration(3,
			createTables(db, &models.Enrollment{}, &models.Certificate{}, &models.QuizAttempt{}, &models.Transaction{}),
			dropTables(db, &models.Transaction{}, &models.QuizAttempt{}, &models.Certificate{}, &models.Enrollment{}),
		),
		goose.NewGoMigration(4,
			createTables(db, &models.CourseReview{}, &models.TeacherReview{}),
			dropTables(db, &models.TeacherReview{}, &models.CourseReview{}),
		),
	}
}

func createTables(db *gorm.DB, tables ...interface{}) *goose.GoFunc {
	return &goose.GoFunc{RunDB: func(ctx context.Context, _ *sql.DB) error {
		return db.WithContext(ctx).Migrator().AutoMigrate(tables...)
	}}
}

func dropTables(db *gorm.DB, tables ...interface{}) *goose.GoFunc {
	return &goose.GoFunc{RunDB: func(ctx context.Context, _ *sql.DB) error {
		return db.WithContext(ctx).Migrator().DropTable(tables...)
	}}
}

func NewProvider(db *gorm.DB, log *utils.Logger) (*goose.Provider, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	dialect := goose.DialectPostgres
	if db.Dialector.Name() == "sqlite" {
		dialect = goose.DialectSQLite3
	}
	return goose.NewProvider(dialect, sqlDB, nil,
		goose.WithGoMigrations(List(db)...),
		goose.WithDisableGlobalRegistry(true),
		goose.WithLogger(log),
	)
}

// Up applies every pending version. It runs once at startup before the server
// accepts traffic.
func Up(ctx context.Context, db *gorm.DB, log *utils.Logger) error {
	provider, err := NewProvider(db, log)
	if err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	for _, r := range results {
		log.Info("migration applied", "version", r.Source.Version, "duration", r.Duration.String())
	}
	return nil
}
