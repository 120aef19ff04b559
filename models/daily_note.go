package models

import "time"

type DailyNote struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"uniqueIndex:idx_note_user_date;not null"`
	NoteDate  time.Time `gorm:"type:date;uniqueIndex:idx_note_user_date;not null"`
	NoteText  string    `gorm:"type:text"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
