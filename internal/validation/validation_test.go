package validation

import (
	"testing"

	"github.com/yanizio/apikit/internal/apperr"
)

func TestStrongPassword(t *testing.T) {
	tests := []struct {
		password string
		failures int
	}{
		{"TestPass123!", 0},
		{"short1A!", 0},
		{"", 5},
		{"alllowercase", 3},  // upper, digit, special
		{"ALLUPPER123!", 1},  // lower
		{"NoDigits!here", 1}, // digit
		{"Sh0rt!", 1},        // length
		{"NoSpecial123", 1},  // special
	}
	for _, tt := range tests {
		err := StrongPassword(tt.password)
		got := len(Messages(err))
		if got != tt.failures {
			t.Errorf("StrongPassword(%q) failures = %d (%v), want %d", tt.password, got, err, tt.failures)
		}
	}
}

func TestPasswordStrength(t *testing.T) {
	tests := []struct {
		password string
		want     string
	}{
		{"abc", "Password must be at least 8 characters long."},
		{"12345678", "Password must contain at least one letter."},
		{"abcdefgh", "Password must contain at least one digit."},
		{"abcdefg1", ""},
	}
	for _, tt := range tests {
		err := PasswordStrength(tt.password, 8)
		if tt.want == "" {
			if err != nil {
				t.Errorf("PasswordStrength(%q) = %v, want nil", tt.password, err)
			}
			continue
		}
		if err == nil || err.Error() != tt.want {
			t.Errorf("PasswordStrength(%q) = %v, want %q", tt.password, err, tt.want)
		}
	}
}

type signup struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,strong_password"`
	Name     string `json:"first_name" validate:"max=5"`
}

func TestStructCollectsFieldErrors(t *testing.T) {
	err := Struct(signup{Email: "nope", Password: "weak", Name: "toolongname"})
	e, ok := apperr.As(err)
	if !ok || e.Kind != apperr.KindValidation {
		t.Fatalf("err = %v, want validation error", err)
	}
	if got := e.Fields["email"]; len(got) != 1 || got[0] != "Enter a valid email address." {
		t.Fatalf("email = %v", got)
	}
	if got := e.Fields["password"]; len(got) != 4 {
		t.Fatalf("password = %v, want 4 messages", got)
	}
	if _, ok := e.Fields["first_name"]; !ok {
		t.Fatalf("first_name missing: %v", e.Fields)
	}
}

func TestStructRequired(t *testing.T) {
	e, _ := apperr.As(Struct(signup{}))
	if e.Fields["email"][0] != "This field is required." {
		t.Fatalf("fields = %v", e.Fields)
	}
}

func TestStructValid(t *testing.T) {
	if err := Struct(signup{Email: "a@example.com", Password: "TestPass123!"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
