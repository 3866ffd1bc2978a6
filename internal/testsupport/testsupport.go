// Package testsupport provides shared helpers for package tests: an isolated
// in-memory database per test and constructors for common fixtures.
package testsupport

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"sitepulse/internal/events"
	"sitepulse/internal/users"
	"sitepulse/internal/websites"
)

// testDBCache caches test databases by root test name so multiple calls
// within the same test (including subtests) share the same database.
var testDBCache = make(map[string]*gorm.DB)
var testDBCacheMu sync.Mutex

func allModels() []any {
	return []any{
		&users.User{},
		&websites.Website{},
		&events.Event{},
	}
}

// SetupTestDB creates a migrated test database. Uses a named in-memory
// database with cache=shared so multiple connections within a test see the
// same data. Cleanup is registered on the test.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// Use the root test name so setup closures capturing the outer t and
	// subtests with their own t resolve to the same database.
	rootName := t.Name()
	if idx := strings.Index(rootName, "/"); idx > 0 {
		rootName = rootName[:idx]
	}

	testDBCacheMu.Lock()
	if db, exists := testDBCache[rootName]; exists {
		testDBCacheMu.Unlock()
		return db
	}
	testDBCacheMu.Unlock()

	sanitizedName := strings.ReplaceAll(rootName, "/", "_")
	dsn := fmt.Sprintf("file:test_%s_%d?mode=memory&cache=shared", sanitizedName, time.Now().UnixNano())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("testsupport: failed to open test database: %v", err)
	}

	db.Exec("PRAGMA foreign_keys = ON")

	if err := db.AutoMigrate(allModels()...); err != nil {
		t.Fatalf("testsupport: failed to migrate models: %v", err)
	}

	testDBCacheMu.Lock()
	testDBCache[rootName] = db
	testDBCacheMu.Unlock()

	t.Cleanup(func() {
		testDBCacheMu.Lock()
		delete(testDBCache, rootName)
		testDBCacheMu.Unlock()
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return db
}

// GetLogger returns a quiet logger for tests.
func GetLogger() *slog.Logger {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError})
	return slog.New(handler)
}

// CreateTestUser creates a user with a hashed password.
func CreateTestUser(t *testing.T, db *gorm.DB, email, password string) *users.User {
	t.Helper()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	require.NoError(t, err)

	user := &users.User{
		Email:             email,
		Name:              "Test User",
		EncryptedPassword: string(hashedPassword),
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateTestWebsite creates a website owned by userID, reusing an existing
// row with the same domain when present.
func CreateTestWebsite(t *testing.T, db *gorm.DB, domain string, userID uint) *websites.Website {
	t.Helper()

	var website websites.Website
	if db.Where("domain = ?", domain).First(&website).Error == nil {
		return &website
	}

	website = websites.Website{Name: domain, Domain: domain, UserID: userID}
	require.NoError(t, db.Create(&website).Error)
	return &website
}

// CreateTestEvent inserts one page view with the given session and timestamp.
func CreateTestEvent(t *testing.T, db *gorm.DB, websiteID uint, sessionID, path string, createdAt time.Time) *events.Event {
	t.Helper()

	event := &events.Event{
		WebsiteID: websiteID,
		SessionID: sessionID,
		EventType: events.EventTypePageView,
		EventName: "page_view",
		Path:      path,
		CreatedAt: createdAt,
	}
	require.NoError(t, db.Create(event).Error)
	return event
}

// CreateTestCustomEvent inserts one custom event.
func CreateTestCustomEvent(t *testing.T, db *gorm.DB, websiteID uint, sessionID, name string, createdAt time.Time) *events.Event {
	t.Helper()

	event := &events.Event{
		WebsiteID: websiteID,
		SessionID: sessionID,
		EventType: events.EventTypeCustomEvent,
		EventName: name,
		CreatedAt: createdAt,
	}
	require.NoError(t, db.Create(event).Error)
	return event
}
