package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"counselor/internal/uuid"
)

// Base carries the store-assigned identity shared by every record.
// The ID is set once on insert and never updated.
type Base struct {
	ID string `gorm:"type:uuid;primaryKey" json:"id"`
}

// BeforeCreate hook generates a UUIDv7 for new records
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New()
	}
	return nil
}

// now is the clock used by constructors. Timestamps are stored in UTC.
func now() time.Time {
	return time.Now().UTC()
}

// CalendarDate returns the date column value for the given day.
func CalendarDate(year int, month time.Month, day int) datatypes.Date {
	return datatypes.Date(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// All lists every record type in foreign-key dependency order.
func All() []interface{} {
	return []interface{}{
		&Advisor{},
		&Client{},
		&Portfolio{},
		&SecurityType{},
		&Security{},
	}
}
