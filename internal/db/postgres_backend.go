package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// collectionRecord stores one whole collection per row.
type collectionRecord struct {
	Name      string `gorm:"primaryKey;size:64"`
	Data      string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

func (collectionRecord) TableName() string {
	return "collections"
}

type PostgresBackend struct {
	db *gorm.DB
}

func NewPostgresBackend(dsn string) (*PostgresBackend, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := gdb.AutoMigrate(&collectionRecord{}); err != nil {
		return nil, fmt.Errorf("migrate collections table: %w", err)
	}
	return &PostgresBackend{db: gdb}, nil
}

func (b *PostgresBackend) Read(ctx context.Context, name string) ([]byte, error) {
	var rec collectionRecord
	err := b.db.WithContext(ctx).First(&rec, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCollectionNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(rec.Data), nil
}

func (b *PostgresBackend) Write(ctx context.Context, name string, data []byte) error {
	rec := collectionRecord{Name: name, Data: string(data), UpdatedAt: time.Now()}
	return b.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&rec).Error
}

func (b *PostgresBackend) Close() error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
