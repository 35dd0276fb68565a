package utils

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Verification token purposes.
const (
	PurposeActivation = "activation"
	PurposeReset      = "reset"
)

// DefaultTokenTTL bounds how long activation and reset links stay usable.
const DefaultTokenTTL = 24 * time.Hour

type tokenEntry struct {
	token     string
	expiresAt time.Time
}

var (
	tokenStore   = map[string]tokenEntry{}
	tokenStoreMu sync.Mutex
)

// NewVerificationToken creates a single-use token for account activation or
// password reset links.
func NewVerificationToken() string {
	return uuid.NewString()
}

func tokenKey(purpose string, userID uint) string {
	return fmt.Sprintf("verify:%s:%d", purpose, userID)
}

// SaveVerificationToken stores a token for a user with TTL. Prefer Redis;
// fallback to memory.
func SaveVerificationToken(purpose string, userID uint, token string, ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	key := tokenKey(purpose, userID)
	if rc := GetRedis(); rc != nil {
		ctx, cancel := redisCtx()
		defer cancel()
		if err := rc.Set(ctx, key, token, ttl).Err(); err == nil {
			return
		}
	}
	tokenStoreMu.Lock()
	tokenStore[key] = tokenEntry{token: token, expiresAt: time.Now().Add(ttl)}
	tokenStoreMu.Unlock()
}

// ConsumeVerificationToken checks a token and consumes it if valid. At most
// one caller can succeed per stored token.
func ConsumeVerificationToken(purpose string, userID uint, token string) bool {
	key := tokenKey(purpose, userID)
	if rc := GetRedis(); rc != nil {
		ctx, cancel := redisCtx()
		defer cancel()
		if val, err := rc.GetDel(ctx, key).Result(); err == nil {
			return val == token
		}
		// On Redis error (e.g. network), fall through to memory fallback.
	}
	tokenStoreMu.Lock()
	defer tokenStoreMu.Unlock()
	entry, ok := tokenStore[key]
	if !ok {
		return false
	}
	delete(tokenStore, key)
	if time.Now().After(entry.expiresAt) {
		return false
	}
	return entry.token == token
}

// MailCooldownTrySet sets a cooldown key before re-sending a verification
// mail. Returns true if set, false if still cooling down.
func MailCooldownTrySet(email string, cooldown time.Duration) bool {
	key := "cooldown:mail:" + email
	if rc := GetRedis(); rc != nil {
		ctx, cancel := redisCtx()
		defer cancel()
		if ok, err := rc.SetNX(ctx, key, "1", cooldown).Result(); err == nil {
			return ok
		}
	}
	tokenStoreMu.Lock()
	defer tokenStoreMu.Unlock()
	if entry, ok := tokenStore[key]; ok && time.Now().Before(entry.expiresAt) {
		return false
	}
	tokenStore[key] = tokenEntry{token: "1", expiresAt: time.Now().Add(cooldown)}
	return true
}
