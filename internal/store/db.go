package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/5umitpandey/IIT-Guwahati-Encode/internal/memory"
)

// Database wraps the GORM DB handle and implements memory.Log on SQLite.
type Database struct {
	gorm *gorm.DB
	mu   sync.Mutex
}

var _ memory.Log = (*Database)(nil)

// Open initializes the SQLite-backed database at the provided path, creating
// its parent directory when needed.
func Open(path string, silent bool) (*Database, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	cfg := &gorm.Config{}
	if silent {
		cfg.Logger = logger.Default.LogMode(logger.Silent)
	}
	db, err := gorm.Open(sqlite.Open(path), cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.AutoMigrate(&AuditRecord{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	if err := db.Exec("PRAGMA journal_mode=WAL").Error; err != nil {
		logrus.WithError(err).Warn("enable WAL mode")
	}
	if err := db.Exec("PRAGMA synchronous=NORMAL").Error; err != nil {
		logrus.WithError(err).Warn("set synchronous pragma")
	}
	return &Database{gorm: db}, nil
}

// Close closes the underlying database connection.
func (d *Database) Close() error {
	if d == nil {
		return nil
	}
	sqlDB, err := d.gorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Append inserts a decision row.
func (d *Database) Append(ctx context.Context, rec memory.Record) error {
	if d == nil {
		return errors.New("database is nil")
	}
	row := AuditRecord{
		Input:      memory.Truncate(rec.Input, memory.InputLimit),
		Prefix:     memory.Truncate(rec.Input, memory.PrefixLength),
		Decision:   rec.Decision,
		RecordedAt: rec.Timestamp.UTC(),
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.gorm.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("insert audit record: %w", err)
	}
	return nil
}

// FindByPrefix returns decisions whose stored prefix occurs in input, oldest first.
func (d *Database) FindByPrefix(ctx context.Context, input string) ([]string, error) {
	if d == nil {
		return nil, errors.New("database is nil")
	}
	var decisions []string
	err := d.gorm.WithContext(ctx).
		Model(&AuditRecord{}).
		Where("instr(?, prefix) > 0", input).
		Order("id ASC").
		Pluck("decision", &decisions).Error
	if err != nil {
		return nil, fmt.Errorf("find audit records: %w", err)
	}
	return decisions, nil
}

// Records lists stored entries, newest first, up to limit (0 means all).
func (d *Database) Records(ctx context.Context, limit int) ([]memory.Record, error) {
	if d == nil {
		return nil, errors.New("database is nil")
	}
	var rows []AuditRecord
	query := d.gorm.WithContext(ctx).Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list audit records: %w", err)
	}
	out := make([]memory.Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, memory.Record{Input: row.Input, Decision: row.Decision, Timestamp: row.RecordedAt})
	}
	return out, nil
}
