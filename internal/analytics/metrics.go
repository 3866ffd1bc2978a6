package analytics

import (
	"math"
	"net/url"
	"sort"
	"time"

	"gorm.io/gorm"

	"sitepulse/internal/events"
)

// TimeRange is a caller-supplied [Start, End] window for the full dashboard
// aggregation.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// PageCount is a page ranked by views.
type PageCount struct {
	Path  string `json:"path"`
	Views int    `json:"views"`
}

// ReferrerCount is a referrer hostname ranked by occurrences.
type ReferrerCount struct {
	Referrer string `json:"referrer"`
	Count    int    `json:"count"`
}

// DeviceCount is a device class with its event count.
type DeviceCount struct {
	Device string `json:"device"`
	Count  int    `json:"count"`
}

// DailyCount is a page-view count for one UTC calendar date.
type DailyCount struct {
	Date  string `json:"date"`
	Views int    `json:"views"`
}

// AnalyticsData is the full dashboard aggregate. It predates the visit
// series and remains for surfaces that still consume it.
type AnalyticsData struct {
	TotalPageViews         int             `json:"totalPageViews"`
	UniqueVisitors         int             `json:"uniqueVisitors"`
	TotalEvents            int             `json:"totalEvents"`
	BounceRate             float64         `json:"bounceRate"`
	AverageSessionDuration int             `json:"averageSessionDuration"`
	TopPages               []PageCount     `json:"topPages"`
	TopReferrers           []ReferrerCount `json:"topReferrers"`
	DeviceBreakdown        []DeviceCount   `json:"deviceBreakdown"`
	DailyPageViews         []DailyCount    `json:"dailyPageViews"`
	RealtimeVisitors       int             `json:"realtimeVisitors"`
}

// Device class boundaries by screen width, in CSS pixels.
const (
	tabletMinWidth  = 768
	desktopMinWidth = 1024
)

const topN = 10

// GetAnalyticsData computes the full dashboard aggregate for a website over
// a caller-supplied window, inclusive on both ends. The realtime visitor
// count is always relative to now, independent of the window.
func GetAnalyticsData(db *gorm.DB, websiteID uint, timeRange TimeRange) (*AnalyticsData, error) {
	return getAnalyticsDataAt(db, websiteID, timeRange, time.Now())
}

func getAnalyticsDataAt(db *gorm.DB, websiteID uint, timeRange TimeRange, now time.Time) (*AnalyticsData, error) {
	var matched []events.Event
	err := db.Model(&events.Event{}).
		Where("website_id = ? AND created_at BETWEEN ? AND ?", websiteID, timeRange.Start, timeRange.End).
		Order("created_at ASC").
		Find(&matched).Error
	if err != nil {
		return nil, NewStoreUnavailableError(err)
	}

	data := &AnalyticsData{
		TotalEvents:     len(matched),
		TopPages:        []PageCount{},
		TopReferrers:    []ReferrerCount{},
		DeviceBreakdown: []DeviceCount{},
		DailyPageViews:  []DailyCount{},
	}

	sessions := make(map[string]struct{}, len(matched))
	sessionPageViews := make(map[string]int)
	type span struct{ first, last time.Time }
	sessionSpans := make(map[string]span)

	pageCounts := newOrderedCounter()
	referrerCounts := newOrderedCounter()
	deviceCounts := newOrderedCounter()
	dailyCounts := newOrderedCounter()

	for _, event := range matched {
		sessions[event.SessionID] = struct{}{}

		if s, ok := sessionSpans[event.SessionID]; ok {
			if event.CreatedAt.Before(s.first) {
				s.first = event.CreatedAt
			}
			if event.CreatedAt.After(s.last) {
				s.last = event.CreatedAt
			}
			sessionSpans[event.SessionID] = s
		} else {
			sessionSpans[event.SessionID] = span{first: event.CreatedAt, last: event.CreatedAt}
		}

		if event.IsPageView() {
			data.TotalPageViews++
			sessionPageViews[event.SessionID]++

			path := event.Path
			if path == "" {
				path = event.EventName
			}
			pageCounts.Add(path)

			dailyCounts.Add(event.CreatedAt.UTC().Format("2006-01-02"))
		}

		if host := referrerHostname(event.Referrer); host != "" {
			referrerCounts.Add(host)
		}

		if event.ScreenWidth > 0 {
			deviceCounts.Add(classifyDevice(event.ScreenWidth))
		}
	}

	data.UniqueVisitors = len(sessions)

	singlePageSessions := 0
	for _, count := range sessionPageViews {
		if count == 1 {
			singlePageSessions++
		}
	}
	if data.UniqueVisitors > 0 {
		rate := float64(singlePageSessions) / float64(data.UniqueVisitors) * 100
		data.BounceRate = math.Round(rate*100) / 100
	}

	var totalDuration time.Duration
	for _, s := range sessionSpans {
		totalDuration += s.last.Sub(s.first)
	}
	if data.UniqueVisitors > 0 {
		data.AverageSessionDuration = int(math.Round(totalDuration.Seconds() / float64(data.UniqueVisitors)))
	}

	for _, entry := range pageCounts.Top(topN) {
		data.TopPages = append(data.TopPages, PageCount{Path: entry.Key, Views: entry.Count})
	}
	for _, entry := range referrerCounts.Top(topN) {
		data.TopReferrers = append(data.TopReferrers, ReferrerCount{Referrer: entry.Key, Count: entry.Count})
	}
	for _, entry := range deviceCounts.Entries() {
		data.DeviceBreakdown = append(data.DeviceBreakdown, DeviceCount{Device: entry.Key, Count: entry.Count})
	}

	daily := dailyCounts.Entries()
	sort.Slice(daily, func(i, j int) bool { return daily[i].Key < daily[j].Key })
	for _, entry := range daily {
		data.DailyPageViews = append(data.DailyPageViews, DailyCount{Date: entry.Key, Views: entry.Count})
	}

	realtime, err := countRealtimeVisitors(db, websiteID, now)
	if err != nil {
		return nil, err
	}
	data.RealtimeVisitors = realtime

	return data, nil
}

// countRealtimeVisitors counts distinct sessions seen in the last 5 minutes.
func countRealtimeVisitors(db *gorm.DB, websiteID uint, now time.Time) (int, error) {
	var count int64
	err := db.Model(&events.Event{}).
		Where("website_id = ? AND created_at >= ?", websiteID, now.Add(-5*time.Minute)).
		Distinct("session_id").
		Count(&count).Error
	if err != nil {
		return 0, NewStoreUnavailableError(err)
	}
	return int(count), nil
}

// referrerHostname extracts the hostname from a referrer URL. Empty or
// unparseable referrers yield "" and are excluded from the ranking, not
// counted as direct traffic.
func referrerHostname(referrer string) string {
	if referrer == "" {
		return ""
	}
	parsed, err := url.Parse(referrer)
	if err != nil {
		return ""
	}
	return parsed.Hostname()
}

func classifyDevice(screenWidth int) string {
	switch {
	case screenWidth < tabletMinWidth:
		return "Mobile"
	case screenWidth < desktopMinWidth:
		return "Tablet"
	default:
		return "Desktop"
	}
}

// orderedCounter counts occurrences by key while remembering first-encounter
// order, so rankings tie-break deterministically by insertion order.
type orderedCounter struct {
	counts map[string]int
	order  []string
}

type counterEntry struct {
	Key   string
	Count int
}

func newOrderedCounter() *orderedCounter {
	return &orderedCounter{counts: make(map[string]int)}
}

func (c *orderedCounter) Add(key string) {
	if _, seen := c.counts[key]; !seen {
		c.order = append(c.order, key)
	}
	c.counts[key]++
}

// Entries returns all entries in first-encounter order.
func (c *orderedCounter) Entries() []counterEntry {
	entries := make([]counterEntry, len(c.order))
	for i, key := range c.order {
		entries[i] = counterEntry{Key: key, Count: c.counts[key]}
	}
	return entries
}

// Top returns up to n entries sorted by count descending. The sort is
// stable over first-encounter order, which is the documented tie-break.
func (c *orderedCounter) Top(n int) []counterEntry {
	entries := c.Entries()
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}
