package events

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"sitepulse/internal/geoip"
	"sitepulse/internal/websites"
)

// CollectEventInput defines the input required to collect an event.
type CollectEventInput struct {
	WebsiteID    uint
	SessionID    string
	EventType    string
	EventName    string
	Path         string
	Referrer     string
	UserAgent    string
	ScreenWidth  int
	ScreenHeight int
	Country      string
	City         string
	IPAddress    string
}

// CollectEvent validates the input, appends one Event row and returns it.
// The created_at timestamp is assigned here from the server clock; client
// timestamps are not trusted. Country and city fall back to a GeoIP lookup
// when the client did not supply them.
func CollectEvent(db *gorm.DB, logger *slog.Logger, geo *geoip.Resolver, input *CollectEventInput) (*Event, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	// Reject events for unregistered websites before writing anything.
	if _, err := websites.GetWebsiteByID(db, input.WebsiteID); err != nil {
		return nil, err
	}

	sessionID := input.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	country, city := input.Country, input.City
	if country == "" && input.IPAddress != "" {
		country, city = geo.Lookup(input.IPAddress)
	}

	event := &Event{
		WebsiteID:    input.WebsiteID,
		SessionID:    sessionID,
		EventType:    input.EventType,
		EventName:    input.EventName,
		Path:         input.Path,
		Referrer:     input.Referrer,
		UserAgent:    input.UserAgent,
		ScreenWidth:  input.ScreenWidth,
		ScreenHeight: input.ScreenHeight,
		Country:      country,
		City:         city,
		IPAddress:    input.IPAddress,
		CreatedAt:    time.Now().UTC(),
	}

	if err := db.Create(event).Error; err != nil {
		logger.Error("Failed to store event",
			slog.Uint64("website_id", uint64(input.WebsiteID)),
			slog.Any("error", err))
		return nil, fmt.Errorf("failed to store event: %w", err)
	}

	return event, nil
}

func validateInput(input *CollectEventInput) error {
	if input.WebsiteID == 0 {
		return NewMissingFieldError("websiteId")
	}
	if input.EventType == "" {
		return NewMissingFieldError("eventType")
	}
	if input.EventName == "" {
		return NewMissingFieldError("eventName")
	}
	if input.EventType != EventTypePageView && input.EventType != EventTypeCustomEvent {
		return &ValidationError{Field: "eventType", Reason: "must be pageview or custom"}
	}
	return nil
}
