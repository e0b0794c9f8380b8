package validation

import (
	"regexp"
	"strings"
	"unicode"
)

// Account roles. The enumeration is fixed; anything else is rejected.
const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

// Human-readable reasons returned by ValidateUserData. The wording follows
// the messages shown to end users during registration.
const (
	ReasonInvalidName     = "Name must be between 3 and 100 characters"
	ReasonInvalidEmail    = "Please provide a valid email address"
	ReasonInvalidPassword = "Password must be at least 6 characters and contain uppercase, lowercase, and number"
	ReasonPasswordTooLong = "Password must be at most 72 characters"
	ReasonInvalidRole     = "Role must be either 'student' or 'admin'"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	lowerPattern = regexp.MustCompile(`[a-z]`)
	upperPattern = regexp.MustCompile(`[A-Z]`)
	digitPattern = regexp.MustCompile(`\d`)
)

// ValidateEmail reports whether s looks like local@domain.tld: a
// non-whitespace local part, a non-whitespace domain, and at least one dot
// in the domain. It does not normalize; the store owns lowercasing.
func ValidateEmail(s string) bool {
	return emailPattern.MatchString(strings.TrimSpace(s))
}

// ValidatePassword reports whether s meets the password policy: at least 6
// characters with at least one lowercase letter, one uppercase letter, and
// one digit. There is no upper bound and no special-character requirement.
func ValidatePassword(s string) bool {
	return len(s) >= 6 &&
		lowerPattern.MatchString(s) &&
		upperPattern.MatchString(s) &&
		digitPattern.MatchString(s)
}

// ValidateName reports whether the trimmed display name is between 3 and
// 100 characters.
func ValidateName(s string) bool {
	n := len(strings.TrimSpace(s))
	return n >= 3 && n <= 100
}

// ValidateRole reports whether s is one of the fixed account roles.
func ValidateRole(s string) bool {
	return s == RoleStudent || s == RoleAdmin
}

// UserData carries the registration fields checked by ValidateUserData.
// Role is optional; the other three are required.
type UserData struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// ValidateUserData checks a complete set of registration fields and returns
// the first failing reason. The order is fixed: missing fields, then name,
// email, password, and finally role (only when a role was provided).
func ValidateUserData(data UserData) (bool, string) {
	var missing []string
	if strings.TrimSpace(data.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(data.Email) == "" {
		missing = append(missing, "email")
	}
	if data.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return false, "Missing required fields: " + strings.Join(missing, ", ")
	}

	if !ValidateName(data.Name) {
		return false, ReasonInvalidName
	}
	if !ValidateEmail(data.Email) {
		return false, ReasonInvalidEmail
	}
	if !ValidatePassword(data.Password) {
		return false, ReasonInvalidPassword
	}
	if data.Role != "" && !ValidateRole(data.Role) {
		return false, ReasonInvalidRole
	}
	return true, ""
}

// NormalizeEmail lowercases and trims an email address. This is the single
// normalization applied before storage and lookups.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// SanitizeName trims whitespace and strips control characters from a
// display name before storage.
func SanitizeName(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}
