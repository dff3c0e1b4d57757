package validator

import "testing"

func TestIsEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"demo@organization.com", true},
		{"First.Last@sub.example.org", true},
		{"no-at-sign.com", false},
		{"a@b", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			if got := IsEmail(tt.email); got != tt.want {
				t.Errorf("IsEmail(%q) = %v, want %v", tt.email, got, tt.want)
			}
		})
	}
}

func TestIsPhone(t *testing.T) {
	tests := []struct {
		phone string
		want  bool
	}{
		{"+15551234567", true},
		{"5551234", true},
		{"0551234", false},
		{"+", false},
		{"555-1234", false},
		{"12345678901234567", false},
	}

	for _, tt := range tests {
		t.Run(tt.phone, func(t *testing.T) {
			if got := IsPhone(tt.phone); got != tt.want {
				t.Errorf("IsPhone(%q) = %v, want %v", tt.phone, got, tt.want)
			}
		})
	}
}

func TestIsGuestCode(t *testing.T) {
	valid := []string{"100000", "999999", "482913"}
	invalid := []string{"12345", "1234567", "12a456", ""}

	for _, c := range valid {
		if !IsGuestCode(c) {
			t.Errorf("IsGuestCode(%q) = false, want true", c)
		}
	}
	for _, c := range invalid {
		if IsGuestCode(c) {
			t.Errorf("IsGuestCode(%q) = true, want false", c)
		}
	}
}

func TestValidateContact(t *testing.T) {
	if err := ValidateContact("", "+15551234567"); err != nil {
		t.Errorf("unexpected error for empty email: %v", err)
	}
	if err := ValidateContact("bad", "+15551234567"); err != ErrInvalidEmail {
		t.Errorf("expected ErrInvalidEmail, got %v", err)
	}
	if err := ValidateContact("guest@example.com", "abc"); err != ErrInvalidPhone {
		t.Errorf("expected ErrInvalidPhone, got %v", err)
	}
}
