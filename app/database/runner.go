package database

import (
	"context"
	"fmt"
	"sort"

	"gorm.io/gorm"
)

// Migration is one versioned schema step. Versions sort lexically.
type Migration struct {
	Version string
	Name    string
	Up      func(tx *gorm.DB) error
	Down    func(tx *gorm.DB) error
}

// Registry holds all registered migrations
type Registry struct {
	migrations map[string]Migration
}

func NewRegistry() *Registry {
	return &Registry{
		migrations: make(map[string]Migration),
	}
}

// Register adds m, replacing any migration with the same version.
func (r *Registry) Register(m Migration) {
	r.migrations[m.Version] = m
}

func (r *Registry) Get(version string) (Migration, bool) {
	m, ok := r.migrations[version]
	return m, ok
}

// All returns all migrations sorted by version
func (r *Registry) All() []Migration {
	migrations := make([]Migration, 0, len(r.migrations))
	for _, m := range r.migrations {
		migrations = append(migrations, m)
	}
	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return migrations
}

// Runner executes migrations. Each step and its version record share a transaction.
type Runner struct {
	db        *gorm.DB
	registry  *Registry
	versioner *Versioner
}

func NewRunner(db *gorm.DB, registry *Registry, versioner *Versioner) *Runner {
	return &Runner{
		db:        db,
		registry:  registry,
		versioner: versioner,
	}
}

// Pending returns migrations that haven't been applied
func (r *Runner) Pending(ctx context.Context) ([]Migration, error) {
	if err := r.versioner.Initialize(ctx); err != nil {
		return nil, err
	}
	applied, err := r.versioner.AppliedVersions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get applied migrations: %w", err)
	}

	appliedMap := make(map[string]bool, len(applied))
	for _, v := range applied {
		appliedMap[v] = true
	}

	var pending []Migration
	for _, m := range r.registry.All() {
		if !appliedMap[m.Version] {
			pending = append(pending, m)
		}
	}
	return pending, nil
}

// Applied returns the registered migrations recorded as applied.
func (r *Runner) Applied(ctx context.Context) ([]Migration, error) {
	if err := r.versioner.Initialize(ctx); err != nil {
		return nil, err
	}
	versions, err := r.versioner.AppliedVersions(ctx)
	if err != nil {
		return nil, err
	}

	var migrations []Migration
	for _, v := range versions {
		if m, ok := r.registry.Get(v); ok {
			migrations = append(migrations, m)
		}
	}
	return migrations, nil
}

// Migrate applies all pending migrations and returns how many ran.
func (r *Runner) Migrate(ctx context.Context) (int, error) {
	pending, err := r.Pending(ctx)
	if err != nil {
		return 0, err
	}

	for i, m := range pending {
		err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := m.Up(tx); err != nil {
				return err
			}
			return r.versioner.recordApplied(tx, m.Version, m.Name)
		})
		if err != nil {
			return i, fmt.Errorf("failed to apply migration %s: %w", m.Version, err)
		}
	}
	return len(pending), nil
}

// Rollback rolls back the last n applied migrations, newest first.
func (r *Runner) Rollback(ctx context.Context, n int) error {
	if err := r.versioner.Initialize(ctx); err != nil {
		return err
	}
	applied, err := r.versioner.AppliedVersions(ctx)
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}
	if len(applied) == 0 {
		return fmt.Errorf("no migrations to rollback")
	}
	if n > len(applied) {
		n = len(applied)
	}

	for i := len(applied) - 1; i >= len(applied)-n; i-- {
		version := applied[i]
		m, ok := r.registry.Get(version)
		if !ok {
			return fmt.Errorf("migration %s not found in registry", version)
		}

		err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := m.Down(tx); err != nil {
				return err
			}
			return r.versioner.removeApplied(tx, version)
		})
		if err != nil {
			return fmt.Errorf("failed to rollback migration %s: %w", version, err)
		}
	}
	return nil
}

// Migrate brings db up to the latest schema.
func Migrate(ctx context.Context, db *gorm.DB) (int, error) {
	return NewRunner(db, Schema, NewVersioner(db, MigrationTable)).Migrate(ctx)
}
