package utils

import (
	"regexp"
)

var (
	emailPattern    = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}$`)
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.]{3,30}$`)
	otpPattern      = regexp.MustCompile(`^\d{6}$`)
)

func ValidateEmail(email string) bool {
	return len(email) <= 254 && emailPattern.MatchString(email)
}

func ValidateUsername(username string) bool {
	return usernamePattern.MatchString(username)
}

func ValidateOTP(code string) bool {
	return otpPattern.MatchString(code)
}
