package models

import "time"

// Feedback statuses. Records start as open and are moved by panel admins.
const (
	FeedbackStatusOpen     = "open"
	FeedbackStatusInReview = "in-review"
	FeedbackStatusResolved = "resolved"
)

// Feedback represents one submitted event review.
type Feedback struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	Name       string    `json:"name" gorm:"size:255;not null"`
	Email      string    `json:"email" gorm:"size:255;not null;index"`
	EventName  string    `json:"eventName" gorm:"size:255;not null;index"`
	Division   string    `json:"division" gorm:"size:50;index"`
	Rating     int       `json:"rating" gorm:"not null;index"` // 1-5
	Comment    string    `json:"comment,omitempty" gorm:"type:text"`
	Suggestion string    `json:"suggestion,omitempty" gorm:"type:text"`
	Status     string    `json:"status" gorm:"size:20;default:open;index"` // open, in-review, resolved
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ValidFeedbackStatus reports whether s is one of the known status labels.
func ValidFeedbackStatus(s string) bool {
	return s == FeedbackStatusOpen || s == FeedbackStatusInReview || s == FeedbackStatusResolved
}
