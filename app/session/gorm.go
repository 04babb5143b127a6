package session

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type record struct {
	SID           string    `gorm:"column:sid;primaryKey;size:64"`
	AdminID       string    `gorm:"size:36;not null"`
	AdminUsername string    `gorm:"size:50;not null"`
	ExpiresAt     time.Time `gorm:"not null;index"`
}

func (record) TableName() string { return "sessions" }

// GormStore keeps sessions in the sessions table so they survive restarts
// and are shared between instances.
type GormStore struct {
	db  *gorm.DB
	now func() time.Time
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db, now: time.Now}
}

func (s *GormStore) Get(ctx context.Context, id string) (*Session, error) {
	var rec record
	err := s.db.WithContext(ctx).Where("sid = ?", id).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if !s.now().Before(rec.ExpiresAt) {
		// Clean up expired session
		_ = s.Delete(ctx, id)
		return nil, ErrNotFound
	}

	return &Session{
		AdminID:       rec.AdminID,
		AdminUsername: rec.AdminUsername,
		ExpiresAt:     rec.ExpiresAt,
	}, nil
}

func (s *GormStore) Set(ctx context.Context, id string, sess *Session, ttl time.Duration) error {
	sess.ExpiresAt = s.now().Add(ttl)
	rec := record{
		SID:           id,
		AdminID:       sess.AdminID,
		AdminUsername: sess.AdminUsername,
		ExpiresAt:     sess.ExpiresAt,
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&rec).Error
}

func (s *GormStore) Touch(ctx context.Context, id string, ttl time.Duration) error {
	now := s.now()
	res := s.db.WithContext(ctx).Model(&record{}).
		Where("sid = ? AND expires_at > ?", id, now).
		Update("expires_at", now.Add(ttl))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Where("sid = ?", id).Delete(&record{}).Error
}

func (s *GormStore) DeleteExpired(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Where("expires_at <= ?", s.now()).Delete(&record{})
	return res.RowsAffected, res.Error
}
