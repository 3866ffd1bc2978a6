package events

import (
	"fmt"
	"time"
)

// Event types
const (
	EventTypePageView    = "pageview"
	EventTypeCustomEvent = "custom"
)

// Event represents a tracked page view or custom event. Rows are append-only:
// created once at ingestion with a server-assigned timestamp, never updated.
type Event struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	WebsiteID    uint      `gorm:"index:idx_website_created_at;not null" json:"website_id"`
	SessionID    string    `gorm:"index;size:64" json:"session_id"`
	EventType    string    `gorm:"index;not null" json:"event_type"`
	EventName    string    `gorm:"not null" json:"event_name"`
	Path         string    `json:"path"`
	Referrer     string    `json:"referrer"`
	UserAgent    string    `json:"user_agent"`
	ScreenWidth  int       `json:"screen_width"`
	ScreenHeight int       `json:"screen_height"`
	Country      string    `json:"country"`
	City         string    `json:"city"`
	IPAddress    string    `json:"-"`
	CreatedAt    time.Time `gorm:"index:idx_website_created_at" json:"created_at"`
}

// IsPageView reports whether the event is a page view.
func (e *Event) IsPageView() bool {
	return e.EventType == EventTypePageView
}

// ValidationError represents a rejected ingestion payload. It is surfaced
// directly to the caller and never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid event: %s %s", e.Field, e.Reason)
}

// NewMissingFieldError creates a ValidationError for an absent required field.
func NewMissingFieldError(field string) *ValidationError {
	return &ValidationError{Field: field, Reason: "is required"}
}
