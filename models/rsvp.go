package models

import "time"

// Rsvp records a user's attendance response for a meetup. Each responder has
// at most one row per meetup; re-submitting replaces the stored response.
type Rsvp struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Response    string    `gorm:"size:16;not null" json:"response"`
	MeetupID    uint      `gorm:"not null;uniqueIndex:idx_rsvp_meetup_responder" json:"meetup"`
	ResponderID uint      `gorm:"not null;uniqueIndex:idx_rsvp_meetup_responder" json:"responder"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RsvpSummary tallies the responses for a meetup.
type RsvpSummary struct {
	Yes   int64 `json:"yes"`
	No    int64 `json:"no"`
	Maybe int64 `json:"maybe"`
}
