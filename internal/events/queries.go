package events

import (
	"time"

	"gorm.io/gorm"
)

// EventFilters represents filtering options for the raw event browser
type EventFilters struct {
	WebsiteID       uint
	FromDate        time.Time
	ToDate          time.Time
	PathFilter      string
	ReferrerFilter  string
	SessionFilter   string
	TypeFilter      string // "pageview" or "custom"
	EventNameFilter string
	Limit           int
	Offset          int
}

// EventsResult represents paginated events result
type EventsResult struct {
	Events []Event
	Total  int64
}

// GetFilteredEvents retrieves filtered and paginated events
func GetFilteredEvents(db *gorm.DB, filters EventFilters) (EventsResult, error) {
	query := db.Model(&Event{}).
		Where("website_id = ?", filters.WebsiteID).
		Where("created_at BETWEEN ? AND ?", filters.FromDate, filters.ToDate)

	if filters.PathFilter != "" {
		query = query.Where("path LIKE ?", "%"+filters.PathFilter+"%")
	}

	if filters.ReferrerFilter != "" {
		query = query.Where("referrer LIKE ?", "%"+filters.ReferrerFilter+"%")
	}

	if filters.SessionFilter != "" {
		query = query.Where("session_id LIKE ?", "%"+filters.SessionFilter+"%")
	}

	if filters.TypeFilter != "" {
		query = query.Where("event_type = ?", filters.TypeFilter)
	}

	if filters.EventNameFilter != "" {
		query = query.Where("event_name LIKE ?", "%"+filters.EventNameFilter+"%")
	}

	// Get total count for pagination
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return EventsResult{}, err
	}

	// Get paginated events
	var matched []Event
	if err := query.Order("created_at DESC").
		Limit(filters.Limit).
		Offset(filters.Offset).
		Find(&matched).Error; err != nil {
		return EventsResult{}, err
	}

	return EventsResult{
		Events: matched,
		Total:  total,
	}, nil
}

// GetEventsForExport retrieves events for a website within an optional date
// window, newest first, capped at limit rows.
func GetEventsForExport(db *gorm.DB, websiteID uint, from, to time.Time, limit int) ([]Event, error) {
	query := db.Model(&Event{}).Where("website_id = ?", websiteID)

	if !from.IsZero() {
		query = query.Where("created_at >= ?", from)
	}
	if !to.IsZero() {
		query = query.Where("created_at <= ?", to)
	}

	var matched []Event
	err := query.Order("created_at DESC").Limit(limit).Find(&matched).Error
	return matched, err
}

// GetRecentEvents retrieves the most recent events for a website since the
// given instant, newest first.
func GetRecentEvents(db *gorm.DB, websiteID uint, since time.Time, limit int) ([]Event, error) {
	var matched []Event
	err := db.Model(&Event{}).
		Where("website_id = ? AND created_at >= ?", websiteID, since).
		Order("created_at DESC").
		Limit(limit).
		Find(&matched).Error
	return matched, err
}

// GetEventCountInTimeRange counts events for a website in a time range
func GetEventCountInTimeRange(db *gorm.DB, websiteID uint, from, to time.Time) (int64, error) {
	var count int64
	err := db.Model(&Event{}).
		Where("website_id = ? AND created_at BETWEEN ? AND ?", websiteID, from, to).
		Count(&count).Error
	return count, err
}
