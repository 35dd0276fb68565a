package models

import "time"

// Question belongs to a meetup. Title and body pairs are unique across the
// whole platform, not per meetup.
type Question struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:255;not null;uniqueIndex:idx_question_title_body" json:"title"`
	Body        string    `gorm:"size:2000;not null;uniqueIndex:idx_question_title_body" json:"body"`
	MeetupID    uint      `gorm:"index;not null" json:"meetup"`
	CreatedByID uint      `gorm:"index;not null" json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// QuestionVote keeps one signed row per (question, user). A vote of +1 is an
// upvote, -1 a downvote; switching polarity updates the row in place.
type QuestionVote struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Vote       int       `gorm:"not null" json:"vote"`
	QuestionID uint      `gorm:"not null;uniqueIndex:idx_question_vote_user" json:"question"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_question_vote_user" json:"user"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// QuestionVoteStats aggregates the votes on a question. A vote counts as an
// upvote when it is at least 1 and a downvote otherwise.
type QuestionVoteStats struct {
	Upvotes   int64 `json:"upvotes"`
	Downvotes int64 `json:"downvotes"`
	VoteScore int64 `json:"vote_score"`
}
