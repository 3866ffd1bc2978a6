// Package geoip provides optional visitor geolocation from the MaxMind
// GeoLite2 city database.
package geoip

import (
	"log/slog"
	"net"
	"os"

	"github.com/oschwald/geoip2-golang"
)

// Resolver looks up country and city for an IP address. A nil reader means
// the database is not configured; lookups then return empty values.
type Resolver struct {
	reader *geoip2.Reader
	logger *slog.Logger
}

// NewResolver opens the GeoLite2 database at path. GeoIP is optional: a
// missing or unconfigured database yields a resolver that returns empty
// locations rather than an error.
func NewResolver(path string, logger *slog.Logger) *Resolver {
	r := &Resolver{logger: logger}

	if path == "" {
		logger.Debug("GeoIP database path not configured - geolocation disabled")
		return r
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		logger.Info("GeoLite2 database not found - geolocation disabled",
			slog.String("path", path),
			slog.String("hint", "Download from https://www.maxmind.com/en/geolite2/signup"))
		return r
	}

	reader, err := geoip2.Open(path)
	if err != nil {
		logger.Warn("Failed to open GeoLite2 database - geolocation disabled",
			slog.String("path", path),
			slog.Any("error", err))
		return r
	}

	logger.Info("GeoLite2 database loaded", slog.String("path", path))
	r.reader = reader
	return r
}

// Lookup returns the ISO country code and city name for an IP address.
// Unknown or unparseable addresses return empty strings.
func (r *Resolver) Lookup(ipAddress string) (country, city string) {
	if r == nil || r.reader == nil || ipAddress == "" {
		return "", ""
	}

	ip := net.ParseIP(ipAddress)
	if ip == nil {
		return "", ""
	}

	record, err := r.reader.City(ip)
	if err != nil {
		r.logger.Debug("GeoIP lookup failed", slog.String("ip", ipAddress), slog.Any("error", err))
		return "", ""
	}

	return record.Country.IsoCode, record.City.Names["en"]
}

// Close releases the underlying database reader.
func (r *Resolver) Close() error {
	if r == nil || r.reader == nil {
		return nil
	}
	return r.reader.Close()
}
