package repository

import (
	"fmt"
	"strings"
	"testing"

	"exam_bank_backend/internal/model"
	"exam_bank_backend/pkg/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func TestUpsertByNameCreates(t *testing.T) {
	db := newTestDB(t)
	repo := NewSubjectRepository(db)

	subject, err := repo.UpsertByName("간호학")
	require.NoError(t, err)
	assert.NotZero(t, subject.ID)
	assert.Equal(t, "간호학", subject.Name)

	var count int64
	require.NoError(t, db.Model(&model.Subject{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestUpsertByNameReturnsExisting(t *testing.T) {
	db := newTestDB(t)
	repo := NewSubjectRepository(db)

	first, err := repo.UpsertByName("간호학")
	require.NoError(t, err)

	second, err := repo.UpsertByName("간호학")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, db.Model(&model.Subject{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

// Two importers can both miss the lookup and insert the same new name; the
// losing insert must fall back to the existing row instead of erroring.
func TestUpsertByNameSurvivesInsertConflict(t *testing.T) {
	db := newTestDB(t)
	repo := NewSubjectRepository(db)

	// 다른 임포터가 먼저 삽입한 상황
	winner := model.Subject{Name: "사회복지학개론"}
	require.NoError(t, db.Create(&winner).Error)

	subject, err := repo.UpsertByName("사회복지학개론")
	require.NoError(t, err)
	assert.Equal(t, winner.ID, subject.ID)

	var count int64
	require.NoError(t, db.Model(&model.Subject{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
