package services

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"

	"courseplatform/backend/migrations"
	"courseplatform/backend/models"
	"courseplatform/backend/utils"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var userSeq atomic.Int64

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := utils.OpenSQLite(filepath.Join(t.TempDir(), "services.db"))
	require.NoError(t, err)
	require.NoError(t, migrations.Up(context.Background(), db, utils.NopLogger()))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func seedUser(t *testing.T, db *gorm.DB, role models.Role, balance float64) *models.User {
	t.Helper()
	n := userSeq.Add(1)
	user := &models.User{
		Email:        fmt.Sprintf("%s%d@example.com", role, n),
		PasswordHash: "x",
		FullName:     fmt.Sprintf("%s %d", role, n),
		Role:         role,
		Balance:      balance,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

type courseSeed struct {
	title     string
	price     float64
	category  models.Category
	published bool
	// lessons per module; each lesson lasts 30 minutes.
	modules []int
}

func seedCourse(t *testing.T, db *gorm.DB, teacherID uint, seed courseSeed) (*models.Course, []models.Lesson) {
	t.Helper()
	if seed.title == "" {
		seed.title = "Course"
	}
	if seed.category == "" {
		seed.category = models.CategoryGuitar
	}
	course := &models.Course{
		Title:       seed.title,
		Description: "About " + seed.title,
		Price:       seed.price,
		Category:    seed.category,
		Level:       models.LevelBeginner,
		IsPublished: seed.published,
		TeacherID:   teacherID,
	}
	require.NoError(t, db.Omit(clause.Associations).Create(course).Error)

	var lessons []models.Lesson
	for m, count := range seed.modules {
		module := &models.Module{CourseID: course.ID, Title: fmt.Sprintf("Module %d", m+1), Order: m + 1}
		require.NoError(t, db.Omit(clause.Associations).Create(module).Error)
		for l := 0; l < count; l++ {
			lesson := models.Lesson{
				ModuleID:        module.ID,
				Title:           fmt.Sprintf("Lesson %d.%d", m+1, l+1),
				LessonType:      models.LessonText,
				ContentText:     "text",
				DurationMinutes: 30,
				Order:           l + 1,
			}
			require.NoError(t, db.Omit(clause.Associations).Create(&lesson).Error)
			lessons = append(lessons, lesson)
		}
	}
	return course, lessons
}

func reloadUser(t *testing.T, db *gorm.DB, id uint) *models.User {
	t.Helper()
	var user models.User
	require.NoError(t, db.First(&user, id).Error)
	return &user
}

func teacherActor(u *models.User) Actor { return Actor{UserID: u.ID, Role: u.Role} }
