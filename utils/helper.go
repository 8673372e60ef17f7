package utils

import (
	"fmt"
	"os"
	"regexp"

	"github.com/ttacon/libphonenumber"
)

// DefaultPhoneRegion is used when a candidate phone number carries no
// country prefix. Override with CANDIDATE_PHONE_REGION.
var DefaultPhoneRegion = "ET"

func init() {
	if region := os.Getenv("CANDIDATE_PHONE_REGION"); region != "" {
		DefaultPhoneRegion = region
	}
}

func IsValidEmail(email string) bool {
	// Basic email validation regex pattern
	pattern := `^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`
	regex := regexp.MustCompile(pattern)
	return regex.MatchString(email)
}

func ValidatePhoneNumber(phoneNumber, countryCode string) error {
	p, err := libphonenumber.Parse(phoneNumber, countryCode)
	if err != nil {
		return err
	}
	if !libphonenumber.IsValidNumber(p) {
		return fmt.Errorf("phone number is not valid")
	}
	return nil
}

func DereferencePtr[T any](ptr *T, def T) T {
	if ptr == nil {
		return def
	}
	return *ptr
}
