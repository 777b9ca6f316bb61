package model

import "time"

type CommentStatus string

const (
	CommentStatusPending  CommentStatus = "PENDING"
	CommentStatusApproved CommentStatus = "APPROVED"
	CommentStatusRejected CommentStatus = "REJECTED"
)

func (s CommentStatus) Valid() bool {
	switch s {
	case CommentStatusPending, CommentStatusApproved, CommentStatusRejected:
		return true
	}
	return false
}

// 承認・却下は審査待ちからのみ
func (s CommentStatus) CanTransitionTo(next CommentStatus) bool {
	return s == CommentStatusPending && (next == CommentStatusApproved || next == CommentStatusRejected)
}

const (
	MinRating = 1
	MaxRating = 5
)

type Comment struct {
	ID              int64         `gorm:"primaryKey;autoIncrement" json:"id"`
	Rating          int           `gorm:"not null" json:"rating"`
	Text            string        `gorm:"type:text;not null" json:"text"`
	Status          CommentStatus `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	RejectionReason string        `gorm:"type:varchar(500)" json:"rejection_reason,omitempty"`
	CharacterID     int64         `gorm:"not null;uniqueIndex:idx_comment_character_author" json:"character_id"`
	AuthorID        int64         `gorm:"not null;index;uniqueIndex:idx_comment_character_author" json:"author_id"`
	ReviewedByID    *int64        `json:"reviewed_by_id,omitempty"`
	ReviewedAt      *time.Time    `json:"reviewed_at,omitempty"`
	CreatedAt       time.Time     `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt       time.Time     `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// 審査結果をコメント自体に記録する
func (c *Comment) MarkReviewed(status CommentStatus, reviewerID int64, at time.Time) {
	c.Status = status
	c.ReviewedByID = &reviewerID
	c.ReviewedAt = &at
}
