package service

import (
	"context"
	"errors"
	"time"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"

	"fittrack/fitness-app/internal/repository"
)

// SetupStatusService answers "has this user finished profile setup?".
// Positive answers are cached; negative ones always go to the store.
type SetupStatusService interface {
	IsComplete(ctx context.Context, userID string) (bool, error)
	MarkComplete(userID string)
	Invalidate(userID string)
}

type setupStatusService struct {
	profiles repository.ProfileRepository
	cache    *freecache.Cache
	ttl      int
}

func NewSetupStatusService(profiles repository.ProfileRepository, sizeBytes int, ttl time.Duration) SetupStatusService {
	if sizeBytes <= 0 {
		sizeBytes = 1024 * 1024
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &setupStatusService{
		profiles: profiles,
		cache:    freecache.NewCache(sizeBytes),
		ttl:      int(ttl.Seconds()),
	}
}

func (s *setupStatusService) IsComplete(ctx context.Context, userID string) (bool, error) {
	if !IsValidUserID(userID) {
		return false, ErrInvalidUserID
	}
	if _, err := s.cache.Get([]byte(userID)); err == nil {
		return true, nil
	} else if !errors.Is(err, freecache.ErrNotFound) {
		log.Warnf("setup status cache read for %s: %s", userID, err)
	}

	exists, err := s.profiles.Exists(ctx, userID)
	if err != nil {
		return false, err
	}
	if exists {
		s.MarkComplete(userID)
	}
	return exists, nil
}

func (s *setupStatusService) MarkComplete(userID string) {
	if err := s.cache.Set([]byte(userID), []byte{1}, s.ttl); err != nil {
		log.Warnf("setup status cache write for %s: %s", userID, err)
	}
}

func (s *setupStatusService) Invalidate(userID string) {
	s.cache.Del([]byte(userID))
}
