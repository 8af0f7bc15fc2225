// Package sqlstore mirrors dataset records into a MySQL table through gorm.
package sqlstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"medrag/internal/domain"
)

// ChunkRow is the relational form of a dataset record. List-valued fields
// are stored as JSON documents.
type ChunkRow struct {
	ID            uint   `gorm:"primaryKey"`
	ChapterID     string `gorm:"size:16;uniqueIndex:idx_chunk_key"`
	ChunkIndex    int    `gorm:"uniqueIndex:idx_chunk_key"`
	BookTitle     string `gorm:"size:255"`
	ChapterNumber int    `gorm:"index"`
	ChapterName   string `gorm:"size:255"`
	TopicName     string `gorm:"size:255"`
	Category      string `gorm:"size:64;index"`
	Content       string `gorm:"type:mediumtext"`
	Summary       string `gorm:"type:text"`
	TokenEstimate int
	MicroChunks   string `gorm:"type:json"`
	Tables        string `gorm:"type:json"`
}

// Open connects to MySQL without pinging; the first query establishes the
// connection.
func Open(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, errors.New("empty mysql dsn")
	}
	return gorm.Open(mysql.Open(dsn), &gorm.Config{
		DisableAutomaticPing: true,
		Logger:               logger.Default.LogMode(logger.Silent),
	})
}

// Store writes rows to one table.
type Store struct {
	db        *gorm.DB
	table     string
	batchSize int
}

func New(db *gorm.DB, table string, batchSize int) *Store {
	if table == "" {
		table = "chunks"
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Store{db: db, table: table, batchSize: batchSize}
}

// Migrate creates or updates the table schema.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Table(s.table).AutoMigrate(&ChunkRow{}); err != nil {
		return fmt.Errorf("migrate %s: %w", s.table, err)
	}
	return nil
}

// Insert upserts records keyed by chapter id and chunk index.
func (s *Store) Insert(ctx context.Context, records []domain.DatasetRecord) error {
	if len(records) == 0 {
		return nil
	}
	rows, err := RowsFrom(records)
	if err != nil {
		return err
	}
	err = s.db.WithContext(ctx).
		Table(s.table).
		Clauses(clause.OnConflict{UpdateAll: true}).
		CreateInBatches(rows, s.batchSize).Error
	if err != nil {
		return fmt.Errorf("insert into %s: %w", s.table, err)
	}
	return nil
}

// RowsFrom converts records to rows.
func RowsFrom(records []domain.DatasetRecord) ([]ChunkRow, error) {
	rows := make([]ChunkRow, 0, len(records))
	for _, r := range records {
		micro, err := jsonText(r.MicroChunks)
		if err != nil {
			return nil, err
		}
		tables, err := jsonText(r.Tables)
		if err != nil {
			return nil, err
		}
		rows = append(rows, ChunkRow{
			ChapterID:     r.ChapterID,
			ChunkIndex:    r.ChunkIndex,
			BookTitle:     r.BookTitle,
			ChapterNumber: r.ChapterNumber,
			ChapterName:   r.ChapterName,
			TopicName:     r.TopicName,
			Category:      r.Category,
			Content:       r.Content,
			Summary:       r.Summary,
			TokenEstimate: r.TokenEstimate,
			MicroChunks:   micro,
			Tables:        tables,
		})
	}
	return rows, nil
}

func jsonText[T any](v []T) (string, error) {
	if len(v) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
