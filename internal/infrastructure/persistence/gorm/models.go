// Package gorm provides GORM model definitions for the application
package gorm

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RecipeModel represents the GORM model for catalog recipes
type RecipeModel struct {
	ID      uuid.UUID `gorm:"type:char(36);primaryKey"`
	Title   string    `gorm:"type:varchar(255);not null;index"`
	Caption string    `gorm:"type:text"`
	Image   string    `gorm:"type:text"`
	URL     string    `gorm:"type:text"`

	Steps       StringSlice `gorm:"type:json"`
	Tags        StringSlice `gorm:"type:json"`
	Ingredients JSONField   `gorm:"type:json"`

	// Lowercased, whitespace-collapsed title for substring search.
	SearchableTitle string `gorm:"type:varchar(255);index"`

	UserID    *uuid.UUID `gorm:"type:char(36);index"`
	CreatedAt time.Time  `gorm:"index"`
	UpdatedAt time.Time
}

// TableName overrides the table name
func (RecipeModel) TableName() string {
	return "recipes"
}

// ConversationModel represents the GORM model for chat conversations.
// Content holds the full append-only message array as JSON, mirroring how
// the mobile app reads a conversation in one shot.
type ConversationModel struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey"`
	UserID    uuid.UUID `gorm:"type:char(36);not null;index"`
	Title     string    `gorm:"type:varchar(255);not null"`
	Content   JSONField `gorm:"type:json"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time `gorm:"index"`
}

// TableName overrides the table name
func (ConversationModel) TableName() string {
	return "conversations"
}

// ProfileModel represents the GORM model for taste preference profiles
type ProfileModel struct {
	UserID       uuid.UUID `gorm:"type:char(36);primaryKey"`
	TasteVectors JSONField `gorm:"type:json"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName overrides the table name
func (ProfileModel) TableName() string {
	return "profiles"
}

// StringSlice custom type for handling string slices in JSON
type StringSlice []string

// Scan implements the sql.Scanner interface
func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = StringSlice{}
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("cannot scan %T into StringSlice", value)
	}
}

// Value implements the driver.Valuer interface
func (s StringSlice) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// JSONField custom type for handling arbitrary JSON documents
type JSONField json.RawMessage

// Scan implements the sql.Scanner interface
func (j *JSONField) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	switch v := value.(type) {
	case []byte:
		*j = append((*j)[0:0], v...)
		return nil
	case string:
		*j = JSONField(v)
		return nil
	default:
		return fmt.Errorf("cannot scan %T into JSONField", value)
	}
}

// Value implements the driver.Valuer interface
func (j JSONField) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return string(j), nil
}
