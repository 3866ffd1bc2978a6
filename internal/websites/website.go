package websites

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// WebsiteNotFoundError represents an error when a website is not found
type WebsiteNotFoundError struct {
	WebsiteID uint
}

func (e *WebsiteNotFoundError) Error() string {
	return fmt.Sprintf("website not found: %d", e.WebsiteID)
}

// NewWebsiteNotFoundError creates a new WebsiteNotFoundError
func NewWebsiteNotFoundError(id uint) *WebsiteNotFoundError {
	return &WebsiteNotFoundError{WebsiteID: id}
}

// Website represents a tracked website owned by a user
type Website struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Domain    string    `gorm:"index;not null" json:"domain"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// GetWebsiteByID retrieves a website by its ID
func GetWebsiteByID(db *gorm.DB, id uint) (*Website, error) {
	var website Website
	if err := db.First(&website, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewWebsiteNotFoundError(id)
		}
		return nil, fmt.Errorf("unexpected error querying website: %w", err)
	}
	return &website, nil
}

// GetWebsiteForUser retrieves a website by ID only if it is owned by the
// given user. Foreign websites are indistinguishable from missing ones.
func GetWebsiteForUser(db *gorm.DB, id, userID uint) (*Website, error) {
	var website Website
	err := db.Where("id = ? AND user_id = ?", id, userID).First(&website).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewWebsiteNotFoundError(id)
		}
		return nil, fmt.Errorf("unexpected error querying website: %w", err)
	}
	return &website, nil
}

// CreateWebsite creates a new website
func CreateWebsite(db *gorm.DB, website *Website) error {
	if website.Name == "" {
		return errors.New("website name cannot be empty")
	}
	if website.Domain == "" {
		return errors.New("website domain cannot be empty")
	}

	website.CreatedAt = time.Now().UTC()
	return db.Create(website).Error
}

// DeleteWebsite deletes a website and all its events.
func DeleteWebsite(db *gorm.DB, id uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM events WHERE website_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Delete(&Website{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// WebsiteWithStats represents a website with its total event count,
// as displayed by the dashboard website list.
type WebsiteWithStats struct {
	ID         uint      `json:"id"`
	Name       string    `json:"name"`
	Domain     string    `json:"domain"`
	CreatedAt  time.Time `json:"created_at"`
	EventCount int64     `json:"event_count"`
}

// GetWebsitesWithStats retrieves a user's websites, newest first, enriched
// with event counts.
func GetWebsitesWithStats(db *gorm.DB, userID uint) ([]WebsiteWithStats, error) {
	var all []Website
	if err := db.Where("user_id = ?", userID).Order("created_at DESC").Find(&all).Error; err != nil {
		return nil, fmt.Errorf("failed to get websites: %w", err)
	}

	result := make([]WebsiteWithStats, len(all))
	for i, website := range all {
		var eventCount int64
		err := db.Table("events").
			Where("website_id = ?", website.ID).
			Count(&eventCount).Error
		if err != nil {
			// On error, default to 0 but continue
			eventCount = 0
		}

		result[i] = WebsiteWithStats{
			ID:         website.ID,
			Name:       website.Name,
			Domain:     website.Domain,
			CreatedAt:  website.CreatedAt,
			EventCount: eventCount,
		}
	}

	return result, nil
}
