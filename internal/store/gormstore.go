package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/madhava-poojari/educonnect-api/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// GormStore is the SQL-backed Repository. Postgres in production, SQLite
// for local runs and tests.
type GormStore struct {
	DB *gorm.DB
}

var _ Repository = (*GormStore)(nil)

// Dialector picks a gorm dialector from a database URL. "sqlite:" prefixed
// URLs (and bare *.db paths) open SQLite, everything else Postgres.
func Dialector(databaseURL string) gorm.Dialector {
	switch {
	case strings.HasPrefix(databaseURL, "sqlite:"):
		return sqlite.Open(strings.TrimPrefix(databaseURL, "sqlite:"))
	case strings.HasSuffix(databaseURL, ".db"):
		return sqlite.Open(databaseURL)
	default:
		return postgres.Open(databaseURL)
	}
}

func NewGormStore(databaseURL string) (*GormStore, error) {
	return OpenGormStore(Dialector(databaseURL))
}

func OpenGormStore(d gorm.Dialector) (*GormStore, error) {
	gormCfg := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	}
	db, err := gorm.Open(d, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// AutoMigrate (non-destructive: creates tables/columns/indexes)
	if err := db.Set("gorm:DisableForeignKeyConstraintWhenMigrating", true).AutoMigrate(
		&models.User{}, &models.TutorProfile{}, &models.Review{}, &models.TuitionRequest{}, &models.RefreshToken{},
	); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if d.Name() == "sqlite" {
		// one connection keeps in-memory databases shared and avoids SQLITE_BUSY
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
	}
	return &GormStore{DB: db}, nil
}

// translate maps gorm errors onto the package sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}

/* ------------------ Refresh token methods ------------------ */

func hashTokenPlain(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// SaveRefreshToken stores a token (hashed) and expiry
func (s *GormStore) SaveRefreshToken(ctx context.Context, userID, plainToken string, expiresAt time.Time) error {
	rt := models.RefreshToken{
		ID:        uuid.NewString(),
		UserID:    userID,
		TokenHash: hashTokenPlain(plainToken),
		IssuedAt:  time.Now(),
		ExpiresAt: expiresAt,
		Revoked:   false,
	}
	return translate(s.DB.WithContext(ctx).Create(&rt).Error)
}

// FindRefreshToken returns the token row (if valid and not revoked)
func (s *GormStore) FindRefreshToken(ctx context.Context, plainToken string) (*models.RefreshToken, error) {
	var rt models.RefreshToken
	if err := s.DB.WithContext(ctx).
		Where("token_hash = ? AND revoked = ? AND expires_at > ?", hashTokenPlain(plainToken), false, time.Now()).
		First(&rt).Error; err != nil {
		return nil, translate(err)
	}
	return &rt, nil
}

// RevokeRefreshToken marks token revoked
func (s *GormStore) RevokeRefreshToken(ctx context.Context, plainToken string) error {
	return s.DB.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token_hash = ?", hashTokenPlain(plainToken)).Updates(map[string]interface{}{"revoked": true}).Error
}

// RotateRefreshToken: revoke old token, create a new one
func (s *GormStore) RotateRefreshToken(ctx context.Context, oldPlain, newPlain string, newExpiry time.Time) (*models.RefreshToken, error) {
	var newRT models.RefreshToken
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var old models.RefreshToken
		if err := tx.Where("token_hash = ? AND revoked = ? AND expires_at > ?", hashTokenPlain(oldPlain), false, time.Now()).First(&old).Error; err != nil {
			return err
		}
		// revoke old; the revoked guard makes concurrent rotations lose
		res := tx.Model(&models.RefreshToken{}).Where("id = ? AND revoked = ?", old.ID, false).Update("revoked", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		newRT = models.RefreshToken{
			ID:        uuid.NewString(),
			UserID:    old.UserID,
			TokenHash: hashTokenPlain(newPlain),
			IssuedAt:  time.Now(),
			ExpiresAt: newExpiry,
		}
		return tx.Create(&newRT).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return &newRT, nil
}

/* ------------------ Helpers ------------------ */

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *GormStore) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
