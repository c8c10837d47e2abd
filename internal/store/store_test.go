package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/oogunniyi/portfolio/internal/contact"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "portfolio.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func at(db *DB, ts time.Time) { db.now = func() time.Time { return ts } }

func TestHashIPIsStableAndOpaque(t *testing.T) {
	db := openTestDB(t)
	h := db.HashIP("203.0.113.7")
	assert.Len(t, h, 16)
	assert.Equal(t, h, db.HashIP("203.0.113.7"))
	assert.NotEqual(t, h, db.HashIP("203.0.113.8"))
	assert.NotContains(t, h, "203")
}

func TestTrackVisitAndStats(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	now := time.Date(2026, 10, 19, 15, 0, 0, 0, time.UTC)

	at(db, now.Add(-30*24*time.Hour))
	require.NoError(t, db.TrackVisit(ctx, "198.51.100.1", "old-agent", "/"))
	at(db, now.Add(-3*24*time.Hour))
	require.NoError(t, db.TrackVisit(ctx, "198.51.100.2", "agent", "/"))
	at(db, now.Add(-time.Hour))
	require.NoError(t, db.TrackVisit(ctx, "198.51.100.2", "agent", "/"))
	require.NoError(t, db.RecordMessage(ctx, contact.Form{Name: "Ada", Email: "ada@example.com", Message: "Hi"}, true))
	require.NoError(t, db.RecordMessage(ctx, contact.Form{Name: "Bob", Email: "bob@example.com", Message: "Yo"}, false))

	at(db, now)
	stats, err := db.Stats(ctx)
	require.NoError(t, err)

	assert.EqualValues(t, 3, stats.TotalVisitors)
	assert.EqualValues(t, 2, stats.UniqueVisitors)
	assert.EqualValues(t, 1, stats.VisitorsToday)
	assert.EqualValues(t, 2, stats.VisitorsThisWeek)
	assert.EqualValues(t, 1, stats.MessagesSent)
	assert.EqualValues(t, 1, stats.MessagesFailed)

	require.Len(t, stats.RecentVisitors, 3)
	assert.True(t, now.Add(-time.Hour).Equal(stats.RecentVisitors[0].Timestamp))
	assert.Equal(t, "old-agent", stats.RecentVisitors[2].UserAgent)

	require.Len(t, stats.RecentMessages, 2)
	assert.Equal(t, "Bob", stats.RecentMessages[0].Name)
	assert.Equal(t, StatusFailed, stats.RecentMessages[0].Status)
}

func TestPruneRemovesOldVisitors(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	now := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

	at(db, now.Add(-Retention-time.Hour))
	require.NoError(t, db.TrackVisit(ctx, "198.51.100.1", "ua", "/"))
	at(db, now.Add(-24*time.Hour))
	require.NoError(t, db.TrackVisit(ctx, "198.51.100.1", "ua", "/"))

	at(db, now)
	n, err := db.Prune(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	visitors, err := db.RecentVisitors(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, visitors, 1)
}

func TestDeleteMessage(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	require.NoError(t, db.RecordMessage(ctx, contact.Form{Name: "Ada", Email: "ada@example.com", Message: "Hi"}, true))

	msgs, err := db.Messages(ctx, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	require.NoError(t, db.DeleteMessage(ctx, msgs[0].ID))
	assert.ErrorIs(t, db.DeleteMessage(ctx, msgs[0].ID), ErrNotFound)
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portfolio.db")
	db, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, db.TrackVisit(context.Background(), "198.51.100.1", "ua", "/"))
	require.NoError(t, db.Close())

	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()
	visitors, err := db.RecentVisitors(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, visitors, 1)
}
