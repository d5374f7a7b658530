package uuid

import (
	googleuuid "github.com/google/uuid"
)

// New generates a new UUIDv7. UUIDv7 is time-ordered (48-bit Unix
// millisecond prefix), so record IDs sort by creation time and index well
// as primary keys.
func New() string {
	id, err := googleuuid.NewV7()
	if err != nil {
		// Fallback to a random UUIDv4 if the entropy source fails
		return googleuuid.New().String()
	}
	return id.String()
}

// Parse validates a UUID string and returns its canonical lower-case form.
func Parse(s string) (string, error) {
	parsed, err := googleuuid.Parse(s)
	if err != nil {
		return "", err
	}
	return parsed.String(), nil
}
