package ledger

import (
	"context"
	"net/http"
	"time"
)

// Journal notes are a plain key-value store keyed by date.

// GetNote returns (nil, nil) when no note exists for the date.
func (c *Client) GetNote(ctx context.Context, date time.Time) (*JournalNote, error) {
	var out JournalNote
	err := c.do(ctx, "get-note", http.MethodGet, "/notes/"+date.Format(DateLayout), nil, nil, &out)
	if IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SaveNote(ctx context.Context, date time.Time, text string) (*JournalNote, error) {
	var out JournalNote
	if err := c.do(ctx, "save-note", http.MethodPut, "/notes/"+date.Format(DateLayout), nil, SaveNoteRequest{Text: text}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteNote(ctx context.Context, date time.Time) error {
	return c.do(ctx, "delete-note", http.MethodDelete, "/notes/"+date.Format(DateLayout), nil, nil, nil)
}
