// Package store persists periodic L2 snapshots of a single symbol's book
// depth (not the whole-exchange snapshot spec.md §1 excludes) to Postgres,
// zstd-compressed.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// snapshotRecord is the row shape persisted for one symbol at one instant.
type snapshotRecord struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	Symbol    string `gorm:"index;not null"`
	TakenAt   time.Time
	StateHash int32
	Payload   []byte // zstd-compressed L2 records (asks then bids)
}

func (snapshotRecord) TableName() string { return "book_snapshots" }

// Store persists and retrieves compressed L2 snapshots.
type Store struct {
	db      *gorm.DB
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// Open connects to Postgres at dsn and migrates the snapshot table.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := db.AutoMigrate(&snapshotRecord{}); err != nil {
		return nil, fmt.Errorf("migrate book_snapshots: %w", err)
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	return &Store{db: db, encoder: enc, decoder: dec}, nil
}

// Save compresses raw (the wire-format L2 snapshot body) and inserts one
// row for symbol.
func (s *Store) Save(ctx context.Context, symbol string, stateHash int32, raw []byte) error {
	record := snapshotRecord{
		Symbol:    symbol,
		TakenAt:   time.Now(),
		StateHash: stateHash,
		Payload:   s.encoder.EncodeAll(raw, nil),
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("save snapshot for %q: %w", symbol, err)
	}
	return nil
}

// Latest returns the most recent snapshot for symbol, decompressed.
func (s *Store) Latest(ctx context.Context, symbol string) ([]byte, error) {
	var record snapshotRecord
	err := s.db.WithContext(ctx).
		Where("symbol = ?", symbol).
		Order("taken_at DESC").
		First(&record).Error
	if err != nil {
		return nil, fmt.Errorf("load latest snapshot for %q: %w", symbol, err)
	}
	raw, err := s.decoder.DecodeAll(record.Payload, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress snapshot for %q: %w", symbol, err)
	}
	return raw, nil
}

// Close releases the zstd codecs and underlying connection pool.
func (s *Store) Close() error {
	s.encoder.Close()
	s.decoder.Close()
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
