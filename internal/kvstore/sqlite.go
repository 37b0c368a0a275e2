package kvstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/MrSnakeDoc/multiverse/internal/logger"
)

// Entry is one row of the sqlite backend.
type Entry struct {
	Key       string `gorm:"column:entry_key;primaryKey;size:190;not null"`
	Value     string `gorm:"column:value;not null"`
	UpdatedAt time.Time
}

func (Entry) TableName() string {
	return "kv_entries"
}

// SQLite persists entries in a single table of a local sqlite file. It is the
// closest analogue to browser local storage: durable, single-writer, local.
type SQLite struct {
	db   *gorm.DB
	path string
}

// OpenSQLite opens (or creates) the database file and migrates the schema.
// Query errors go to log; a nil log discards them.
func OpenSQLite(path string, log logger.Logger) (*SQLite, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: newGormLog(log)})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite %s: %w", path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sqlite handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&Entry{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate sqlite schema: %w", err)
	}

	return &SQLite{db: db, path: path}, nil
}

// Path returns the database file.
func (s *SQLite) Path() string { return s.path }

func (s *SQLite) Get(ctx context.Context, key string) (string, bool, error) {
	var entry Entry
	err := s.db.WithContext(ctx).Where("entry_key = ?", key).Take(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return entry.Value, true, nil
}

func (s *SQLite) Set(ctx context.Context, key, value string) error {
	entry := Entry{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entry_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

func (s *SQLite) Delete(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Where("entry_key = ?", key).Delete(&Entry{}).Error; err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func (s *SQLite) Name() string { return "sqlite" }

func (s *SQLite) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *SQLite) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
