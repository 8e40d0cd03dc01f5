package models

// CategoryOrder stores the display position of a menu category.
type CategoryOrder struct {
	ID       uint   `gorm:"primaryKey" json:"-"`
	Category string `gorm:"type:varchar(100);uniqueIndex;not null" json:"category"`
	Position int    `gorm:"not null" json:"position"`
}
