package validation

import (
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode"
)

// Validation rule patterns
var (
	EmailPattern    = `^[A-Za-z0-9+_.-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`
	UsernamePattern = `^[a-zA-Z0-9_]{3,20}$`
	PhonePattern    = `^[0-9]{10}$`
	ZipCodePattern  = `^[0-9]{6}$`
	NamePattern     = `^[a-zA-Z\s]{2,50}$`

	PasswordMinLength = 8
	MinimumAge        = 16

	// Enrollment year window relative to the current year
	EnrollmentYearsBack  = 5
	EnrollmentYearsAhead = 2
)

// Upload limits
var (
	MaxFileSize       = int64(5 * 1024 * 1024)
	AllowedExtensions = []string{"pdf", "jpg", "jpeg", "png"}
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	Email    *regexp.Regexp
	Username *regexp.Regexp
	Phone    *regexp.Regexp
	ZipCode  *regexp.Regexp
	Name     *regexp.Regexp
}{
	Email:    regexp.MustCompile(EmailPattern),
	Username: regexp.MustCompile(UsernamePattern),
	Phone:    regexp.MustCompile(PhonePattern),
	ZipCode:  regexp.MustCompile(ZipCodePattern),
	Name:     regexp.MustCompile(NamePattern),
}

// IsValidEmail checks the email format
func IsValidEmail(email string) bool {
	return CompiledPatterns.Email.MatchString(strings.TrimSpace(email))
}

// IsValidUsername checks 3-20 characters of letters, digits and underscore
func IsValidUsername(username string) bool {
	return CompiledPatterns.Username.MatchString(username)
}

// NormalizePhone strips spaces and dashes
func NormalizePhone(phone string) string {
	return strings.NewReplacer(" ", "", "-", "").Replace(phone)
}

// IsValidPhone checks for exactly 10 digits once spaces and dashes are removed
func IsValidPhone(phone string) bool {
	return CompiledPatterns.Phone.MatchString(NormalizePhone(phone))
}

// IsValidZipCode checks for exactly 6 digits
func IsValidZipCode(zip string) bool {
	return CompiledPatterns.ZipCode.MatchString(strings.TrimSpace(zip))
}

// IsValidName checks 2-50 letters or spaces
func IsValidName(name string) bool {
	return CompiledPatterns.Name.MatchString(strings.TrimSpace(name))
}

// IsStrongPassword requires the minimum length plus an upper case letter, a lower case
// letter, a digit and a special character.
func IsStrongPassword(password string) bool {
	if len(password) < PasswordMinLength {
		return false
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, ch := range password {
		switch {
		case unicode.IsUpper(ch):
			hasUpper = true
		case unicode.IsLower(ch):
			hasLower = true
		case unicode.IsDigit(ch):
			hasDigit = true
		case unicode.IsPunct(ch) || unicode.IsSymbol(ch):
			hasSpecial = true
		}
	}
	return hasUpper && hasLower && hasDigit && hasSpecial
}

// AgeOn returns the age in whole years of someone born on dob at the given date.
func AgeOn(dob, now time.Time) int {
	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	return age
}

// IsValidDateOfBirth requires a past date and the minimum age
func IsValidDateOfBirth(dob, now time.Time) bool {
	if dob.IsZero() || dob.After(now) {
		return false
	}
	return AgeOn(dob, now) >= MinimumAge
}

// IsValidEnrollmentYear accepts years within the configured window around now
func IsValidEnrollmentYear(year int, now time.Time) bool {
	current := now.Year()
	return year >= current-EnrollmentYearsBack && year <= current+EnrollmentYearsAhead
}

// FileExtension returns the lower-case extension without the dot
func FileExtension(filename string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
}

// IsAllowedExtension checks the file extension against AllowedExtensions
func IsAllowedExtension(filename string) bool {
	ext := FileExtension(filename)
	for _, allowed := range AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// IsValidFileSize requires a non-empty file no larger than MaxFileSize
func IsValidFileSize(size int64) bool {
	return size > 0 && size <= MaxFileSize
}

// SanitizeInput trims whitespace and drops control characters
func SanitizeInput(input string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			return -1
		}
		return r
	}, input))
}
