package utils

import (
	"time"

	"gorm.io/gorm"

	"github.com/wanjohi/questioner/models"
)

// BlacklistStore persists revoked JWTs and answers the auth middleware's
// per-request membership checks. Redis acts as a read-through cache in front
// of the table so hot tokens avoid a DB round trip.
type BlacklistStore struct {
	db *gorm.DB
}

// NewBlacklistStore creates a store backed by the given database handle.
func NewBlacklistStore(db *gorm.DB) *BlacklistStore {
	return &BlacklistStore{db: db}
}

func blacklistKey(token string) string {
	return "blacklist:jwt:" + token
}

// Revoke records a token until its natural expiry. Revoking an already
// revoked token is a no-op.
func (s *BlacklistStore) Revoke(token string, expiresAt time.Time) error {
	row := models.TokenBlacklist{Token: token, ExpiresAt: expiresAt}
	if err := s.db.Where("token = ?", token).FirstOrCreate(&row).Error; err != nil {
		return err
	}
	if ttl := time.Until(expiresAt); ttl > 0 {
		if rc := GetRedis(); rc != nil {
			ctx, cancel := redisCtx()
			defer cancel()
			_ = rc.Set(ctx, blacklistKey(token), "1", ttl).Err()
		}
	}
	return nil
}

// IsBlacklisted reports whether a token has been revoked. The cache is
// consulted first; a DB hit repopulates it.
func (s *BlacklistStore) IsBlacklisted(token string) bool {
	if rc := GetRedis(); rc != nil {
		ctx, cancel := redisCtx()
		defer cancel()
		if n, err := rc.Exists(ctx, blacklistKey(token)).Result(); err == nil && n > 0 {
			return true
		}
	}

	var row models.TokenBlacklist
	err := s.db.Where("token = ? AND expires_at > ?", token, time.Now()).First(&row).Error
	if err != nil {
		return false
	}
	if ttl := time.Until(row.ExpiresAt); ttl > 0 {
		if rc := GetRedis(); rc != nil {
			ctx, cancel := redisCtx()
			defer cancel()
			_ = rc.Set(ctx, blacklistKey(token), "1", ttl).Err()
		}
	}
	return true
}

// StartCleaner launches a background goroutine that periodically deletes
// blacklist rows whose tokens have expired anyway. It is best-effort and
// logs failures.
func (s *BlacklistStore) StartCleaner(interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for range ticker.C {
			res := s.db.Where("expires_at <= ?", time.Now()).Delete(&models.TokenBlacklist{})
			if res.Error != nil {
				Sugar.Warnf("blacklist cleaner failed: %v", res.Error)
				continue
			}
			if res.RowsAffected > 0 {
				Sugar.Infof("blacklist cleaner removed %d expired tokens", res.RowsAffected)
			}
		}
	}()
}
