package analytics

import (
	"time"

	"gorm.io/gorm"

	"sitepulse/internal/events"
)

// RealtimeData is the live view of a website: visitors active in the last
// five minutes, visitors that appeared within the last minute, and the most
// recent events.
type RealtimeData struct {
	ActiveVisitors int            `json:"activeVisitors"`
	NewVisitors    int            `json:"newVisitors"`
	RecentEvents   []events.Event `json:"recentEvents"`
}

const (
	realtimeWindow     = 5 * time.Minute
	newVisitorWindow   = 1 * time.Minute
	realtimeScanLimit  = 50
	recentEventsInView = 10
)

// GetRealtimeData returns live visitor activity for a website.
func GetRealtimeData(db *gorm.DB, websiteID uint) (*RealtimeData, error) {
	return getRealtimeDataAt(db, websiteID, time.Now())
}

func getRealtimeDataAt(db *gorm.DB, websiteID uint, now time.Time) (*RealtimeData, error) {
	recent, err := events.GetRecentEvents(db, websiteID, now.Add(-realtimeWindow), realtimeScanLimit)
	if err != nil {
		return nil, NewStoreUnavailableError(err)
	}

	active := make(map[string]struct{})
	fresh := make(map[string]struct{})
	oneMinuteAgo := now.Add(-newVisitorWindow)

	for _, event := range recent {
		active[event.SessionID] = struct{}{}
		if !event.CreatedAt.Before(oneMinuteAgo) {
			fresh[event.SessionID] = struct{}{}
		}
	}

	visible := recent
	if len(visible) > recentEventsInView {
		visible = visible[:recentEventsInView]
	}

	return &RealtimeData{
		ActiveVisitors: len(active),
		NewVisitors:    len(fresh),
		RecentEvents:   visible,
	}, nil
}
