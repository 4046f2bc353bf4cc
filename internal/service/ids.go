package service

import (
	"errors"
	"regexp"
	"time"
)

var ErrInvalidUserID = errors.New("invalid user ID format")

// userIDPattern accepts RFC 4122 UUIDs of versions 1-5.
var userIDPattern = regexp.MustCompile(`(?i)^[0-9a-f]{8}-[0-9a-f]{4}-[1-5][0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

func IsValidUserID(id string) bool {
	return userIDPattern.MatchString(id)
}

// Clock returns the current time. Services take one so tests can pin "now".
type Clock func() time.Time

func clockOrDefault(c Clock) Clock {
	if c == nil {
		return time.Now
	}
	return c
}
