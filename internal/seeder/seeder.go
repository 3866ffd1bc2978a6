// Package seeder generates demo data for local development: one account, a
// couple of websites and a realistic spread of page views and custom events.
package seeder

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"sitepulse/internal/events"
	"sitepulse/internal/users"
	"sitepulse/internal/websites"
)

const (
	demoEmail    = "demo@sitepulse.local"
	demoPassword = "demo-password"
)

var demoPaths = []string{"/", "/pricing", "/blog", "/blog/launch", "/docs", "/about", "/contact"}

var demoReferrers = []string{
	"", "", "", // direct traffic dominates
	"https://www.google.com/search",
	"https://news.ycombinator.com/",
	"https://twitter.com/somebody/status/1",
	"https://duckduckgo.com/",
}

var demoCustomEvents = []string{"signup", "newsletter_subscribe", "download", "outbound_click"}

// Device profiles by screen width: phone, tablet, laptop, desktop.
var demoScreens = [][2]int{
	{390, 844},
	{820, 1180},
	{1440, 900},
	{1920, 1080},
}

var demoCountries = []string{"US", "DE", "GB", "FR", "ES", "BR", "IN", ""}

// Seeder writes demo data through the same models the server uses.
type Seeder struct {
	db         *gorm.DB
	logger     *slog.Logger
	eventCount int
}

// NewSeeder creates a seeder that writes eventCount events per website.
func NewSeeder(db *gorm.DB, logger *slog.Logger, eventCount int) *Seeder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Seeder{db: db, logger: logger, eventCount: eventCount}
}

// Run creates the demo account and websites if missing, then fills each
// website with events spread over the last 90 days.
func (s *Seeder) Run() error {
	start := time.Now()

	user, err := s.ensureDemoUser()
	if err != nil {
		return err
	}

	sites, err := s.ensureDemoWebsites(user)
	if err != nil {
		return err
	}

	for _, site := range sites {
		s.logger.Info("Seeding website",
			slog.String("domain", site.Domain),
			slog.Int("events", s.eventCount))
		if err := s.seedWebsite(site); err != nil {
			return fmt.Errorf("failed to seed %s: %w", site.Domain, err)
		}
	}

	s.logger.Info("Seeding completed",
		slog.Duration("elapsed", time.Since(start)),
		slog.String("login", demoEmail))
	return nil
}

func (s *Seeder) ensureDemoUser() (*users.User, error) {
	user, err := users.FindByEmail(s.db, demoEmail)
	if err == nil {
		return user, nil
	}

	user, err = users.CreateUser(s.db, demoEmail, "Demo User", demoPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to create demo user: %w", err)
	}
	return user, nil
}

func (s *Seeder) ensureDemoWebsites(user *users.User) ([]*websites.Website, error) {
	wanted := []struct{ name, domain string }{
		{"Demo Marketing Site", "demo.sitepulse.local"},
		{"Demo Docs", "docs.sitepulse.local"},
	}

	var result []*websites.Website
	for _, w := range wanted {
		var site websites.Website
		err := s.db.Where("domain = ? AND user_id = ?", w.domain, user.ID).First(&site).Error
		if err == nil {
			result = append(result, &site)
			continue
		}

		site = websites.Website{Name: w.name, Domain: w.domain, UserID: user.ID}
		if err := websites.CreateWebsite(s.db, &site); err != nil {
			return nil, fmt.Errorf("failed to create website %s: %w", w.domain, err)
		}
		result = append(result, &site)
	}
	return result, nil
}

func (s *Seeder) seedWebsite(site *websites.Website) error {
	now := time.Now().UTC()
	remaining := s.eventCount

	for remaining > 0 {
		// One session: a visitor landing and browsing a handful of pages.
		sessionID := uuid.NewString()
		screen := demoScreens[rand.Intn(len(demoScreens))]
		country := demoCountries[rand.Intn(len(demoCountries))]
		referrer := demoReferrers[rand.Intn(len(demoReferrers))]

		sessionStart := now.Add(-time.Duration(rand.Intn(90*24)) * time.Hour)
		pageViews := 1 + rand.Intn(5)
		if pageViews > remaining {
			pageViews = remaining
		}

		batch := make([]events.Event, 0, pageViews+1)
		for i := 0; i < pageViews; i++ {
			path := demoPaths[rand.Intn(len(demoPaths))]
			batch = append(batch, events.Event{
				WebsiteID:    site.ID,
				SessionID:    sessionID,
				EventType:    events.EventTypePageView,
				EventName:    "page_view",
				Path:         path,
				Referrer:     referrer,
				ScreenWidth:  screen[0],
				ScreenHeight: screen[1],
				Country:      country,
				CreatedAt:    sessionStart.Add(time.Duration(i*30+rand.Intn(30)) * time.Second),
			})
			referrer = "" // only the landing page carries the referrer
		}

		// Roughly one in five sessions fires a custom event.
		if rand.Intn(5) == 0 && remaining > pageViews {
			batch = append(batch, events.Event{
				WebsiteID:    site.ID,
				SessionID:    sessionID,
				EventType:    events.EventTypeCustomEvent,
				EventName:    demoCustomEvents[rand.Intn(len(demoCustomEvents))],
				ScreenWidth:  screen[0],
				ScreenHeight: screen[1],
				Country:      country,
				CreatedAt:    sessionStart.Add(time.Duration(pageViews*35) * time.Second),
			})
		}

		if err := s.db.Create(&batch).Error; err != nil {
			return fmt.Errorf("failed to insert events: %w", err)
		}
		remaining -= len(batch)
	}

	return nil
}
