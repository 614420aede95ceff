package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/chestno/chestno-api/internal/config"
)

func TestValidatePasswordPolicy(t *testing.T) {
	full := config.PasswordPolicyConfig{
		MinLength:      8,
		RequireUpper:   true,
		RequireLower:   true,
		RequireNumber:  true,
		RequireSpecial: true,
	}

	cases := []struct {
		name     string
		policy   config.PasswordPolicyConfig
		password string
		weak     bool
		reason   string
	}{
		{"empty policy accepts anything", config.PasswordPolicyConfig{}, "", false, ""},
		{"too short", full, "Ab1!", true, "8 characters"},
		{"missing upper", full, "password1!", true, "uppercase"},
		{"missing lower", full, "PASSWORD1!", true, "lowercase"},
		{"missing digit", full, "Password!!", true, "digit"},
		{"missing special", full, "Password11", true, "special"},
		{"all rules met", full, "Password1!", false, ""},
		{"length counts runes not bytes", config.PasswordPolicyConfig{MinLength: 6}, "пароль", false, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validatePassword(tc.policy, tc.password)
			if !tc.weak {
				if err != nil {
					t.Fatalf("expected password to pass, got %v", err)
				}
				return
			}
			if !errors.Is(err, ErrWeakPassword) {
				t.Fatalf("expected weak password error, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.reason) {
				t.Fatalf("expected reason containing %q, got %q", tc.reason, err.Error())
			}
		})
	}
}
