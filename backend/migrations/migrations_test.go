package migrations

import (
	"context"
	"path/filepath"
	"testing"

	"courseplatform/backend/models"
	"courseplatform/backend/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpCreatesSchemaAndIsRepeatable(t *testing.T) {
	db, err := utils.OpenSQLite(filepath.Join(t.TempDir(), "migrate.db"))
	require.NoError(t, err)
	log := utils.NopLogger()
	ctx := context.Background()

	require.NoError(t, Up(ctx, db, log))
	require.NoError(t, Up(ctx, db, log))

	for _, table := range []interface{}{
		&models.User{}, &models.Course{}, &models.Module{}, &models.Lesson{}, &models.Quiz{},
		&models.QuizQuestion{}, &models.Enrollment{}, &models.Certificate{}, &models.QuizAttempt{},
		&models.Transaction{}, &models.CourseReview{}, &models.TeacherReview{},
	} {
		assert.True(t, db.Migrator().HasTable(table), "%T", table)
	}

	provider, err := NewProvider(db, log)
	require.NoError(t, err)
	version, err := provider.GetDBVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(len(List(db))), version)
}

func TestDownToZeroDropsEverything(t *testing.T) {
	db, err := utils.OpenSQLite(filepath.Join(t.TempDir(), "migrate.db"))
	require.NoError(t, err)
	log := utils.NopLogger()
	ctx := context.Background()
	require.NoError(t, Up(ctx, db, log))

	provider, err := NewProvider(db, log)
	require.NoError(t, err)
	_, err = provider.DownTo(ctx, 0)
	require.NoError(t, err)

	assert.False(t, db.Migrator().HasTable(&models.Enrollment{}))
	assert.False(t, db.Migrator().HasTable(&models.User{}))
}
