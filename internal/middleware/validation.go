package middleware

import (
	"errors"
	"unicode/utf8"

	"github.com/google/uuid"
)

// ValidateMessageContent validates an inbound chat message.
func ValidateMessageContent(content string) error {
	if len(content) == 0 {
		return errors.New("message cannot be empty")
	}
	if len(content) > 10000 {
		return errors.New("message exceeds maximum length")
	}
	if !utf8.ValidString(content) {
		return errors.New("message must be valid UTF-8")
	}
	return nil
}

// ValidateEntryID validates a knowledge entry ID.
func ValidateEntryID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.New("invalid entry ID format")
	}
	return nil
}

// ValidateEmail performs a light shape check; the store enforces
// uniqueness.
func ValidateEmail(email string) error {
	if len(email) == 0 {
		return errors.New("email cannot be empty")
	}
	if len(email) > 254 {
		return errors.New("email exceeds maximum length")
	}
	if !utf8.ValidString(email) {
		return errors.New("email must be valid UTF-8")
	}
	return nil
}
