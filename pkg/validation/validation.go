package validation

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	// EmailRegex validates email format
	EmailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

	// UsernameRegex validates username format
	UsernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

	// StreamKeyRegex validates broadcast key format
	StreamKeyRegex = regexp.MustCompile(`^[a-f0-9]{32}$`)
)

// ValidateEmail validates an email address.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("email is required")
	}
	if len(email) > 254 {
		return fmt.Errorf("email is too long (max 254 characters)")
	}
	if !EmailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// ValidateUsername validates a username.
func ValidateUsername(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return fmt.Errorf("username is required")
	}
	if len(username) < 3 {
		return fmt.Errorf("username must be at least 3 characters")
	}
	if len(username) > 50 {
		return fmt.Errorf("username is too long (max 50 characters)")
	}
	if !UsernameRegex.MatchString(username) {
		return fmt.Errorf("username contains invalid characters (only letters, numbers, _, - allowed)")
	}
	return nil
}

// ValidateStreamKey validates the broadcast key a publisher presents.
func ValidateStreamKey(key string) error {
	if key == "" {
		return fmt.Errorf("stream key is required")
	}
	if !StreamKeyRegex.MatchString(key) {
		return fmt.Errorf("invalid stream key format")
	}
	return nil
}

// ValidateReason validates the free-text reason attached to moderation and
// control actions.
func ValidateReason(reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return fmt.Errorf("reason is required")
	}
	if len(reason) > 500 {
		return fmt.Errorf("reason is too long (max 500 characters)")
	}
	return nil
}

// ValidateSensitivity validates the moderation sensitivity level.
func ValidateSensitivity(level int) error {
	if level < 1 || level > 10 {
		return fmt.Errorf("sensitivity level must be between 1 and 10")
	}
	return nil
}
