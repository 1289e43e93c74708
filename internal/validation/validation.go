// Package validation provides input validation utilities
package validation

import (
	"fmt"
	"regexp"
)

// ValidatePassword checks if a password meets length requirements
func ValidatePassword(password string) error {
	if len(password) < 5 {
		return fmt.Errorf("password must be at least 5 characters long")
	}

	// Prevent unreasonable inputs
	if len(password) > 128 {
		return fmt.Errorf("password must not exceed 128 characters")
	}

	return nil
}

// ValidateUsername checks if a username meets requirements
func ValidateUsername(username string) error {
	if len(username) < 3 {
		return fmt.Errorf("username must be at least 3 characters long")
	}

	if len(username) > 150 {
		return fmt.Errorf("username must not exceed 150 characters")
	}

	// Only allow alphanumeric and underscores
	if !regexp.MustCompile(`^[a-zA-Z0-9_-]+$`).MatchString(username) {
		return fmt.Errorf("username can only contain letters, numbers, underscores, and hyphens")
	}

	// Cannot start or end with underscore/hyphen
	if username[0] == '_' || username[0] == '-' || username[len(username)-1] == '_' || username[len(username)-1] == '-' {
		return fmt.Errorf("username cannot start or end with underscore or hyphen")
	}

	return nil
}

// ValidateEmail checks basic email format
func ValidateEmail(email string) error {
	// Simple email validation - regex approach
	emailRegex := regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}

	if len(email) > 254 {
		return fmt.Errorf("email must not exceed 254 characters")
	}

	return nil
}
