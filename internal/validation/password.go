// internal/validation/password.go
//
// Password rules.
//
// Context
// -------
// Two rule sets exist.  StrongPassword is used at signup and reports every
// failed rule at once so the client can show a full checklist.
// PasswordStrength is the lighter check used by password changes; it stops
// at the first failure.
//
// Both return *Error, whose Messages slot straight into a field map for
// response.ValidationError.
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	reUpper   = regexp.MustCompile(`[A-Z]`)
	reLower   = regexp.MustCompile(`[a-z]`)
	reDigit   = regexp.MustCompile(`\d`)
	reLetter  = regexp.MustCompile(`[A-Za-z]`)
	reSpecial = regexp.MustCompile(`[!@#$%^&*()_+\-=\[\]{};':"\\|,.<>?]`)
)

// MinPasswordLength applies to StrongPassword.
const MinPasswordLength = 8

// Error lists user-facing messages for a single value.
type Error struct {
	Messages []string
}

func (e *Error) Error() string { return strings.Join(e.Messages, " ") }

// StrongPassword checks length, upper, lower, digit, and special characters.
func StrongPassword(pw string) error {
	var msgs []string
	if len(pw) < MinPasswordLength {
		msgs = append(msgs, fmt.Sprintf("Password must be at least %d characters long.", MinPasswordLength))
	}
	if !reUpper.MatchString(pw) {
		msgs = append(msgs, "Password must contain at least one uppercase letter.")
	}
	if !reLower.MatchString(pw) {
		msgs = append(msgs, "Password must contain at least one lowercase letter.")
	}
	if !reDigit.MatchString(pw) {
		msgs = append(msgs, "Password must contain at least one digit.")
	}
	if !reSpecial.MatchString(pw) {
		msgs = append(msgs, "Password must contain at least one special character.")
	}
	if len(msgs) > 0 {
		return &Error{Messages: msgs}
	}
	return nil
}

// PasswordStrength returns the first failed rule among length, letter, and
// digit.
func PasswordStrength(pw string, minLength int) error {
	if len(pw) < minLength {
		return &Error{Messages: []string{
			fmt.Sprintf("Password must be at least %d characters long.", minLength),
		}}
	}
	if !reLetter.MatchString(pw) {
		return &Error{Messages: []string{"Password must contain at least one letter."}}
	}
	if !reDigit.MatchString(pw) {
		return &Error{Messages: []string{"Password must contain at least one digit."}}
	}
	return nil
}

// Messages extracts the message list from err, or wraps err.Error().
func Messages(err error) []string {
	if err == nil {
		return nil
	}
	if e, ok := err.(*Error); ok {
		return e.Messages
	}
	return []string{err.Error()}
}
