package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrInvalidUUID indicates the string is not a valid UUID format
	ErrInvalidUUID = errors.New("invalid UUID format")
	// ErrNotUUIDv7 indicates the UUID is not version 7
	ErrNotUUIDv7 = errors.New("UUID must be version 7")
	// ErrFutureTimestamp indicates a timestamp is too far in the future
	ErrFutureTimestamp = errors.New("timestamp is too far in the future")
)

// MaxClockSkew is how far ahead of the server clock a client-supplied
// session ID or timestamp may be
const MaxClockSkew = time.Minute

// ValidateSessionID checks that a client-generated session ID is a UUIDv7
// whose embedded creation time is not ahead of now by more than MaxClockSkew.
func ValidateSessionID(id string, now time.Time) error {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidUUID, err)
	}

	if parsed.Version() != 7 {
		return fmt.Errorf("%w: got version %d", ErrNotUUIDv7, parsed.Version())
	}

	if created := SessionIDTime(parsed); created.After(now.Add(MaxClockSkew)) {
		return fmt.Errorf("%w: id created at %v", ErrFutureTimestamp, created.Format(time.RFC3339))
	}

	return nil
}

// SessionIDTime returns the creation time embedded in a UUIDv7
func SessionIDTime(id uuid.UUID) time.Time {
	sec, nsec := id.Time().UnixTime()
	return time.Unix(sec, nsec)
}

// NewSessionID generates a server-side session ID
func NewSessionID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate session id: %w", err)
	}
	return id.String(), nil
}
