package models

import "time"

// Answer belongs to a question. Bodies are stored trimmed and must be unique
// across the whole platform.
type Answer struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Body       string    `gorm:"size:2000;not null;uniqueIndex" json:"body"`
	QuestionID uint      `gorm:"index;not null" json:"question"`
	CreatorID  uint      `gorm:"index;not null" json:"creator"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Answer vote types.
const (
	VoteTypeUpvote   = "upvote"
	VoteTypeDownvote = "downvote"
)

// AnswerVote records one row per (creator, answer, vote_type). Unlike
// question votes a user may hold both an upvote and a downvote row on the
// same answer; only repeating the identical vote type is rejected.
type AnswerVote struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	VoteType  string    `gorm:"size:16;not null;uniqueIndex:idx_answer_vote_creator_type" json:"vote_type"`
	AnswerID  uint      `gorm:"not null;uniqueIndex:idx_answer_vote_creator_type" json:"answer"`
	CreatorID uint      `gorm:"not null;uniqueIndex:idx_answer_vote_creator_type" json:"creator"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AnswerVoteStats aggregates the vote rows on an answer.
type AnswerVoteStats struct {
	Upvotes   int64 `json:"upvotes"`
	Downvotes int64 `json:"downvotes"`
	VoteScore int64 `json:"vote_score"`
}
