package service

import (
	"fmt"
	"unicode"

	"github.com/chestno/chestno-api/internal/config"
)

// validatePassword applies the configured complexity rules. Every
// failure wraps ErrWeakPassword so callers can branch with errors.Is;
// the message names the first unmet rule.
func validatePassword(policy config.PasswordPolicyConfig, password string) error {
	if policy.MinLength > 0 && len([]rune(password)) < policy.MinLength {
		return fmt.Errorf("%w: at least %d characters required", ErrWeakPassword, policy.MinLength)
	}

	classes := classifyRunes(password)
	rules := []struct {
		required bool
		present  bool
		missing  string
	}{
		{policy.RequireUpper, classes.upper, "an uppercase letter"},
		{policy.RequireLower, classes.lower, "a lowercase letter"},
		{policy.RequireNumber, classes.digit, "a digit"},
		{policy.RequireSpecial, classes.special, "a special character"},
	}
	for _, rule := range rules {
		if rule.required && !rule.present {
			return fmt.Errorf("%w: %s required", ErrWeakPassword, rule.missing)
		}
	}
	return nil
}

type runeClasses struct {
	upper   bool
	lower   bool
	digit   bool
	special bool
}

func classifyRunes(s string) runeClasses {
	var c runeClasses
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			c.upper = true
		case unicode.IsLower(r):
			c.lower = true
		case unicode.IsDigit(r):
			c.digit = true
		default:
			c.special = true
		}
	}
	return c
}
