package database

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// MigrationTable records which schema versions have been applied.
const MigrationTable = "schema_migrations"

// MigrationRecord represents a migration record in the database
type MigrationRecord struct {
	Version   string    `gorm:"primaryKey;size:64;column:version"`
	Name      string    `gorm:"size:255;column:name"`
	AppliedAt time.Time `gorm:"column:applied_at"`
}

// Versioner manages migration version tracking
type Versioner struct {
	db    *gorm.DB
	table string
}

func NewVersioner(db *gorm.DB, tableName string) *Versioner {
	return &Versioner{
		db:    db,
		table: tableName,
	}
}

// Initialize creates the migration tracking table
func (v *Versioner) Initialize(ctx context.Context) error {
	if err := v.db.WithContext(ctx).Table(v.table).AutoMigrate(&MigrationRecord{}); err != nil {
		return fmt.Errorf("failed to create migration table: %w", err)
	}
	return nil
}

// AppliedVersions returns all applied migration versions in ascending order
func (v *Versioner) AppliedVersions(ctx context.Context) ([]string, error) {
	var records []MigrationRecord
	if err := v.db.WithContext(ctx).Table(v.table).Order("version ASC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to query applied migrations: %w", err)
	}

	versions := make([]string, len(records))
	for i, r := range records {
		versions[i] = r.Version
	}
	return versions, nil
}

func (v *Versioner) recordApplied(tx *gorm.DB, version, name string) error {
	record := MigrationRecord{
		Version:   version,
		Name:      name,
		AppliedAt: time.Now(),
	}
	if err := tx.Table(v.table).Create(&record).Error; err != nil {
		return fmt.Errorf("failed to record migration: %w", err)
	}
	return nil
}

func (v *Versioner) removeApplied(tx *gorm.DB, version string) error {
	if err := tx.Table(v.table).Where("version = ?", version).Delete(&MigrationRecord{}).Error; err != nil {
		return fmt.Errorf("failed to remove migration record: %w", err)
	}
	return nil
}
