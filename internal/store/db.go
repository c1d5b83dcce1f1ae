// Package store is the optional sqlite-backed persistence layer. It holds
// only the per-language label-translation cache.
package store

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Database wraps the GORM DB handle.
type Database struct {
	gorm *gorm.DB
	mu   sync.Mutex
}

// Open initializes the SQLite-backed database at the provided path.
func Open(path string, silent bool) (*Database, error) {
	cfg := &gorm.Config{}
	if silent {
		cfg.Logger = logger.Default.LogMode(logger.Silent)
	}
	db, err := gorm.Open(sqlite.Open(path), cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.AutoMigrate(&LabelSetRecord{}); err != nil {
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

// SaveLabelSet inserts or updates the cached labels for a language.
func (d *Database) SaveLabelSet(record *LabelSetRecord) error {
	if record == nil {
		return errors.New("label set is nil")
	}
	record.Language = strings.TrimSpace(record.Language)
	if record.Language == "" {
		return errors.New("label set language required")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gorm.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "language"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"decision_card",
			"verdict",
			"why_this_matters",
			"why_you_might_care",
			"confidence",
			"uncertainty",
			"better_choice_hint",
			"closure",
			"updated_at",
		}),
	}).Create(record).Error
}

// GetLabelSet loads the cached labels for a language. The second return
// value reports whether an entry exists.
func (d *Database) GetLabelSet(language string) (*LabelSetRecord, bool, error) {
	if d == nil {
		return nil, false, nil
	}
	var record LabelSetRecord
	err := d.gorm.Where("language = ?", strings.TrimSpace(language)).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &record, true, nil
}

// ListLanguages returns every language with a cached label set.
func (d *Database) ListLanguages() ([]string, error) {
	if d == nil {
		return nil, nil
	}
	var languages []string
	err := d.gorm.Model(&LabelSetRecord{}).Order("language").Pluck("language", &languages).Error
	return languages, err
}
