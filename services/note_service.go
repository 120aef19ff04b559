package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/GG-Muniz/FlavorLab-sub000/ledger"
	"github.com/GG-Muniz/FlavorLab-sub000/models"
)

// NoteService is a plain key-value store of one journal note per user and
// date.
type NoteService struct{ db *gorm.DB }

func NewNoteService(db *gorm.DB) *NoteService { return &NoteService{db: db} }

func toNote(n models.DailyNote) ledger.JournalNote {
	return ledger.JournalNote{
		Date:      n.NoteDate.Format(ledger.DateLayout),
		Text:      n.NoteText,
		UpdatedAt: n.UpdatedAt,
	}
}

func (s *NoteService) find(ctx context.Context, userID uint, day time.Time) (*models.DailyNote, error) {
	var n models.DailyNote
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND note_date = ?", userID, day.Format(ledger.DateLayout)).
		First(&n).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("note")
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (s *NoteService) Get(ctx context.Context, userID uint, day time.Time) (*ledger.JournalNote, error) {
	n, err := s.find(ctx, userID, day)
	if err != nil {
		return nil, err
	}
	out := toNote(*n)
	return &out, nil
}

func (s *NoteService) Save(ctx context.Context, userID uint, day time.Time, text string) (*ledger.JournalNote, error) {
	n, err := s.find(ctx, userID, day)
	if errors.Is(err, ErrNotFound) {
		n = &models.DailyNote{UserID: userID, NoteDate: day}
	} else if err != nil {
		return nil, err
	}
	n.NoteText = text
	if err := s.db.WithContext(ctx).Save(n).Error; err != nil {
		return nil, err
	}
	out := toNote(*n)
	return &out, nil
}

func (s *NoteService) Delete(ctx context.Context, userID uint, day time.Time) error {
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND note_date = ?", userID, day.Format(ledger.DateLayout)).
		Delete(&models.DailyNote{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFound("note")
	}
	return nil
}
