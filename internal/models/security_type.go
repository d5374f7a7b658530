package models

// SecurityType is a shared classification for securities (e.g. "Equity",
// "Bond"). It is referenced by securities and owned by none of them.
type SecurityType struct {
	Base
	Name        string  `gorm:"size:100;not null;uniqueIndex:uq_security_types_name" json:"name" validate:"required"`
	Description *string `gorm:"size:500" json:"description,omitempty"`
}

// NewSecurityType returns an unsaved security type.
func NewSecurityType(name string, description *string) *SecurityType {
	return &SecurityType{Name: name, Description: description}
}
