package entity

import "time"

// ActivityEntry is one row of the per-record audit trail. Entries are
// append-only and written fire-and-forget alongside store updates.
type ActivityEntry struct {
	ID           int64     `json:"id"`
	RecordID     string    `json:"record_id"`
	RecordNumber string    `json:"record_number"`
	Field        string    `json:"field"`
	OldValue     string    `json:"old_value"`
	NewValue     string    `json:"new_value"`
	Actor        string    `json:"actor"`
	Note         string    `json:"note"`
	CreatedAt    time.Time `json:"created_at"`
}
