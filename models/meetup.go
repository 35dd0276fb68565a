package models

import "time"

// Meetup is an event users can ask questions about and RSVP to.
// Two meetups may not share the same title or the same body at the same
// location and scheduled date.
type Meetup struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Title         string    `gorm:"size:255;not null;uniqueIndex:idx_meetup_title_loc_date" json:"title"`
	Body          string    `gorm:"size:2000;not null;uniqueIndex:idx_meetup_body_loc_date" json:"body"`
	Location      string    `gorm:"size:255;not null;uniqueIndex:idx_meetup_title_loc_date;uniqueIndex:idx_meetup_body_loc_date" json:"location"`
	ScheduledDate time.Time `gorm:"not null;uniqueIndex:idx_meetup_title_loc_date;uniqueIndex:idx_meetup_body_loc_date" json:"scheduled_date"`
	CreatorID     uint      `gorm:"index;not null" json:"creator"`
	Tags          []Tag     `gorm:"many2many:meetup_tags;" json:"tags"`
	Images        []Image   `gorm:"many2many:meetup_images;" json:"images"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Tag is a label shared across meetups.
type Tag struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	TagName string `gorm:"size:64;uniqueIndex;not null" json:"tag_name"`
}

// Image is an external image URL attached to meetups.
type Image struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	ImageURL string `gorm:"size:512;uniqueIndex;not null" json:"image_url"`
}
