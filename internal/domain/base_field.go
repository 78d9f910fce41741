package domain

import (
	"time"

	"github.com/google/uuid"
)

// BaseFieldDataType declares which validation rule applies to values
// collected for a base field.
type BaseFieldDataType string

const (
	BaseFieldDataTypeString      BaseFieldDataType = "string"
	BaseFieldDataTypeNumber      BaseFieldDataType = "number"
	BaseFieldDataTypePhoneNumber BaseFieldDataType = "phone_number"
	BaseFieldDataTypeEmail       BaseFieldDataType = "email"
	BaseFieldDataTypeURL         BaseFieldDataType = "url"
	BaseFieldDataTypeBoolean     BaseFieldDataType = "boolean"
)

// IsValidBaseFieldDataType reports whether the given value is a known data type.
func IsValidBaseFieldDataType(value string) bool {
	switch BaseFieldDataType(value) {
	case BaseFieldDataTypeString,
		BaseFieldDataTypeNumber,
		BaseFieldDataTypePhoneNumber,
		BaseFieldDataTypeEmail,
		BaseFieldDataTypeURL,
		BaseFieldDataTypeBoolean:
		return true
	}
	return false
}

// BaseFieldScope indicates which kind of record a base field describes.
type BaseFieldScope string

const (
	BaseFieldScopeProposal     BaseFieldScope = "proposal"
	BaseFieldScopeOrganization BaseFieldScope = "organization"
)

// IsValidBaseFieldScope reports whether the given value is a known scope.
func IsValidBaseFieldScope(value string) bool {
	switch BaseFieldScope(value) {
	case BaseFieldScopeProposal, BaseFieldScopeOrganization:
		return true
	}
	return false
}

// BaseField is a registry entry describing a canonical data column. CSV
// columns in bulk uploads must map onto base field short codes.
type BaseField struct {
	ID                 uuid.UUID         `json:"id"`
	DefaultLabel       string            `json:"defaultLabel"`
	DefaultDescription string            `json:"defaultDescription"`
	ShortCode          string            `json:"shortCode"`
	DataType           BaseFieldDataType `json:"dataType"`
	Scope              BaseFieldScope    `json:"scope"`
	CreatedAt          time.Time         `json:"createdAt"`
}
