package service

import (
	"errors"
	"time"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
)

// minimum freecache size is 512KB; smaller values are raised by the library
const defaultBlocklistSize = 1024 * 1024

// TokenBlocklist remembers the IDs of signed-out tokens until they expire.
type TokenBlocklist struct {
	cache *freecache.Cache
	now   Clock
}

func NewTokenBlocklist(sizeBytes int, clock Clock) *TokenBlocklist {
	if sizeBytes <= 0 {
		sizeBytes = defaultBlocklistSize
	}
	return &TokenBlocklist{
		cache: freecache.NewCache(sizeBytes),
		now:   clockOrDefault(clock),
	}
}

// Revoke blocks tokenID until expiresAt. Already expired tokens are ignored.
func (b *TokenBlocklist) Revoke(tokenID string, expiresAt time.Time) {
	ttl := int(expiresAt.Sub(b.now()).Seconds()) + 1
	if tokenID == "" || ttl <= 1 {
		return
	}
	if err := b.cache.Set([]byte(tokenID), []byte{1}, ttl); err != nil {
		log.Errorf("revoke token %s: %s", tokenID, err)
	}
}

func (b *TokenBlocklist) IsRevoked(tokenID string) bool {
	_, err := b.cache.Get([]byte(tokenID))
	if err == nil {
		return true
	}
	if !errors.Is(err, freecache.ErrNotFound) {
		log.Errorf("check revoked token %s: %s", tokenID, err)
	}
	return false
}
