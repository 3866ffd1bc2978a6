package analytics

import (
	"time"

	"gorm.io/gorm"

	"sitepulse/internal/events"
	"sitepulse/internal/timeframe"
)

// VisitSeriesBucket is one time bucket of the visit series: an hour of the
// day, a day of the month, or a month of the year.
type VisitSeriesBucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// VisitSeries is the aggregate produced for the dashboard's main chart.
// Buckets always have the full cardinality for the period (24, days in
// month, or 12) with explicit zeros for empty buckets, in natural order.
type VisitSeries struct {
	TotalVisits   int                 `json:"totalVisits"`
	UniqueViewers int                 `json:"uniqueViewers"`
	Buckets       []VisitSeriesBucket `json:"buckets"`
	Period        timeframe.Period    `json:"period"`
	IncludeEvents bool                `json:"includeEvents"`
}

type visitRow struct {
	SessionID string
	CreatedAt time.Time
}

// GetVisitSeries aggregates visits for a website over the current day, month
// or year. When includeEvents is false only page views are counted; otherwise
// all event types in range are. Ownership of the website is the caller's
// concern, not checked here.
func GetVisitSeries(db *gorm.DB, websiteID uint, period timeframe.Period, includeEvents bool) (*VisitSeries, error) {
	return GetVisitSeriesAt(db, websiteID, period, includeEvents, time.Now())
}

// GetVisitSeriesAt is GetVisitSeries with an explicit current instant. The
// location of now drives both the range boundaries and bucket keys.
func GetVisitSeriesAt(db *gorm.DB, websiteID uint, period timeframe.Period, includeEvents bool, now time.Time) (*VisitSeries, error) {
	tf, err := timeframe.Resolve(period, now)
	if err != nil {
		return nil, err
	}

	// Inclusive on both ends: an event stamped exactly at start or end counts.
	query := db.Model(&events.Event{}).
		Select("session_id", "created_at").
		Where("website_id = ? AND created_at BETWEEN ? AND ?", websiteID, tf.Start, tf.End)
	if !includeEvents {
		query = query.Where("event_type = ?", events.EventTypePageView)
	}

	var rows []visitRow
	if err := query.Find(&rows).Error; err != nil {
		return nil, NewStoreUnavailableError(err)
	}

	labels := tf.BucketLabels()
	buckets := make([]VisitSeriesBucket, len(labels))
	for i, label := range labels {
		buckets[i] = VisitSeriesBucket{Label: label}
	}

	sessions := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		sessions[row.SessionID] = struct{}{}
		if idx := tf.BucketIndex(row.CreatedAt); idx >= 0 {
			buckets[idx].Count++
		}
		// Events outside the bucket set are dropped, not an error; the range
		// filter makes that unreachable in practice.
	}

	return &VisitSeries{
		TotalVisits:   len(rows),
		UniqueViewers: len(sessions),
		Buckets:       buckets,
		Period:        period,
		IncludeEvents: includeEvents,
	}, nil
}
