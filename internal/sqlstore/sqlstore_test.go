package sqlstore

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"medrag/internal/domain"
)

func dryRunDB(t *testing.T) (*gorm.DB, *[]string) {
	t.Helper()
	db, err := gorm.Open(mysql.New(mysql.Config{
		DSN:                       "user:pass@tcp(127.0.0.1:3306)/medrag",
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		DryRun:                 true,
		DisableAutomaticPing:   true,
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	var statements []string
	err = db.Callback().Create().After("gorm:create").Register("test:capture", func(tx *gorm.DB) {
		statements = append(statements, tx.Statement.SQL.String())
	})
	require.NoError(t, err)
	return db, &statements
}

func records(n int) []domain.DatasetRecord {
	out := make([]domain.DatasetRecord, n)
	for i := range out {
		out[i] = domain.DatasetRecord{
			BookTitle:   "Nelson Textbook of Pediatrics",
			ChapterID:   "CH-0073",
			ChunkIndex:  i,
			TopicName:   "Hyponatremia",
			Content:     "Hyponatremia is common.",
			Summary:     "Hyponatremia is common.",
			MicroChunks: []string{"Hyponatremia is common."},
		}
	}
	return out
}

func TestRowsFrom(t *testing.T) {
	rows, err := RowsFrom(records(2))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 1, rows[1].ChunkIndex)
	assert.Equal(t, `["Hyponatremia is common."]`, rows[0].MicroChunks)
	assert.Equal(t, "[]", rows[0].Tables)
}

func TestInsertBatchesIntoConfiguredTable(t *testing.T) {
	db, statements := dryRunDB(t)
	s := New(db, "pediatric_chunks", 2)

	require.NoError(t, s.Insert(context.Background(), records(5)))
	require.Len(t, *statements, 3)
	for _, stmt := range *statements {
		assert.True(t, strings.HasPrefix(stmt, "INSERT INTO `pediatric_chunks`"), stmt)
		assert.Contains(t, stmt, "ON DUPLICATE KEY UPDATE")
	}
}

func TestInsertEmptyIsNoop(t *testing.T) {
	db, statements := dryRunDB(t)
	require.NoError(t, New(db, "", 0).Insert(context.Background(), nil))
	assert.Empty(t, *statements)
}

func TestOpenRejectsEmptyDSN(t *testing.T) {
	_, err := Open("")
	assert.Error(t, err)
}
