// Package fieldvalidation decides whether a raw field value conforms to a
// base field's declared data type. Results are recorded alongside the value;
// they never block ingestion.
package fieldvalidation

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/pdcommons/service/internal/domain"
)

var (
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 ().-]{5,}$`)
)

// IsValid reports whether raw conforms to the declared data type. It is a
// pure function: same inputs always yield the same result, and it never
// returns an error.
func IsValid(raw string, dataType domain.BaseFieldDataType) bool {
	switch dataType {
	case domain.BaseFieldDataTypeString:
		return true
	case domain.BaseFieldDataTypeNumber:
		_, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		return err == nil
	case domain.BaseFieldDataTypeBoolean:
		return looksLikeBool(raw)
	case domain.BaseFieldDataTypeEmail:
		return emailPattern.MatchString(strings.TrimSpace(raw))
	case domain.BaseFieldDataTypePhoneNumber:
		return phonePattern.MatchString(strings.TrimSpace(raw))
	case domain.BaseFieldDataTypeURL:
		return looksLikeURL(raw)
	default:
		return false
	}
}

func looksLikeBool(value string) bool {
	value = strings.ToLower(strings.TrimSpace(value))
	switch value {
	case "yes", "no", "y", "n":
		return true
	}
	_, err := strconv.ParseBool(value)
	return err == nil
}

func looksLikeURL(value string) bool {
	parsed, err := url.Parse(strings.TrimSpace(value))
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}
