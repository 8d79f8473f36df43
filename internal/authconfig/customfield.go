package authconfig

import (
	"errors"
	"strings"
)

var (
	ErrCustomFieldKey  = errors.New("authconfig: custom field key is required")
	ErrCustomFieldHint = errors.New("authconfig: custom field hint is required")
	ErrCustomFieldType = errors.New("authconfig: unknown custom field type")
)

// FieldType determina la validación del input.
type FieldType string

const (
	FieldName        FieldType = "name"
	FieldNumber      FieldType = "number"
	FieldPhoneNumber FieldType = "phone_number"
	FieldEmail       FieldType = "email"
)

// FieldStorage es dónde se guarda el valor al hacer signup.
type FieldStorage string

const (
	StorageUserMetadata FieldStorage = "user_metadata"
	StorageProfileRoot  FieldStorage = "profile_root"
)

// CustomField es un campo extra del formulario de signup.
type CustomField struct {
	Key     string       `yaml:"key" json:"key"`
	Hint    string       `yaml:"hint" json:"hint"`
	Type    FieldType    `yaml:"type" json:"type"`
	Storage FieldStorage `yaml:"storage" json:"storage,omitempty"`
}

func (f CustomField) Validate() error {
	if strings.TrimSpace(f.Key) == "" {
		return ErrCustomFieldKey
	}
	if strings.TrimSpace(f.Hint) == "" {
		return ErrCustomFieldHint
	}
	switch f.Type {
	case FieldName, FieldNumber, FieldPhoneNumber, FieldEmail:
	default:
		return ErrCustomFieldType
	}
	return nil
}

// StorageOrDefault: sin storage explícito va a user_metadata.
func (f CustomField) StorageOrDefault() FieldStorage {
	if f.Storage == "" {
		return StorageUserMetadata
	}
	return f.Storage
}
