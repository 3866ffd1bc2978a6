package analytics

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitepulse/internal/testsupport"
)

func TestGetRealtimeDataWindows(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	user := testsupport.CreateTestUser(t, db, "owner@example.com", "password123")
	website := testsupport.CreateTestWebsite(t, db, "site.example.com", user.ID)

	now := time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)

	// Active but not new, new, and outside the five minute window.
	testsupport.CreateTestEvent(t, db, website.ID, "s1", "/", now.Add(-3*time.Minute))
	testsupport.CreateTestEvent(t, db, website.ID, "s2", "/", now.Add(-30*time.Second))
	testsupport.CreateTestEvent(t, db, website.ID, "s3", "/", now.Add(-10*time.Minute))

	data, err := getRealtimeDataAt(db, website.ID, now)
	require.NoError(t, err)

	assert.Equal(t, 2, data.ActiveVisitors)
	assert.Equal(t, 1, data.NewVisitors)
	require.Len(t, data.RecentEvents, 2)
	assert.Equal(t, "s2", data.RecentEvents[0].SessionID, "events are newest first")
}

func TestGetRealtimeDataEmpty(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	user := testsupport.CreateTestUser(t, db, "owner@example.com", "password123")
	website := testsupport.CreateTestWebsite(t, db, "quiet.example.com", user.ID)

	data, err := getRealtimeDataAt(db, website.ID, time.Now())
	require.NoError(t, err)

	assert.Equal(t, 0, data.ActiveVisitors)
	assert.Equal(t, 0, data.NewVisitors)
	assert.Empty(t, data.RecentEvents)
}

func TestGetRealtimeDataCapsVisibleEvents(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	user := testsupport.CreateTestUser(t, db, "owner@example.com", "password123")
	website := testsupport.CreateTestWebsite(t, db, "busy.example.com", user.ID)

	now := time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 15; i++ {
		sessionID := fmt.Sprintf("s%d", i)
		testsupport.CreateTestEvent(t, db, website.ID, sessionID, "/", now.Add(-time.Duration(i)*time.Second))
	}

	data, err := getRealtimeDataAt(db, website.ID, now)
	require.NoError(t, err)

	assert.Equal(t, 15, data.ActiveVisitors)
	assert.Len(t, data.RecentEvents, 10)
}
