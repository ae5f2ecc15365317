package feeds

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeRoadmapItem(t *testing.T) {
	raw := RawRecord{
		"id":          "498123",
		"title":       "  Outlook:   suggested replies  ",
		"description": "Suggested replies come to shared mailboxes.",
		"status":      "In development",
		"tags": []any{
			map[string]any{"tagName": "Outlook"},
			map[string]any{"tagName": "Worldwide (Standard Multi-Tenant)"},
		},
		"created":  "2025-06-01T10:30:00Z",
		"modified": "2025-07-15T08:00:00Z",
	}

	rec, err := Normalize(KindRoadmap, raw)
	require.NoError(t, err)

	assert.Equal(t, KindRoadmap, rec.Kind)
	assert.Equal(t, "498123", rec.NaturalID)
	assert.Equal(t, "Outlook: suggested replies", rec.Title)
	assert.Equal(t, "Suggested replies come to shared mailboxes.", rec.Body)
	assert.Equal(t, "In development", rec.Status)
	assert.Equal(t, []string{"Outlook", "Worldwide (Standard Multi-Tenant)"}, rec.Services)
	require.NotNil(t, rec.Timestamps.Created)
	assert.Equal(t, time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC), *rec.Timestamps.Created)
	require.NotNil(t, rec.Timestamps.Modified)
}

func TestNormalizeAliasDrift(t *testing.T) {
	// The same logical fields under different naming conventions.
	raw := RawRecord{
		"Feature Id":             "498161",
		"headline":               "Teams meeting recap",
		"last_modified_dateTime": "2025-08-01",
		"affectedWorkloads":      []any{"Teams", "teams", "SharePoint"},
	}

	rec, err := Normalize(KindMessageCenter, raw)
	require.NoError(t, err)

	assert.Equal(t, "498161", rec.NaturalID)
	assert.Equal(t, "Teams meeting recap", rec.Title)
	require.NotNil(t, rec.Timestamps.Modified)

	// Case-insensitive dedupe keeps first spelling.
	assert.Equal(t, []string{"Teams", "SharePoint"}, rec.Services)
}

func TestNormalizeSeparatedListString(t *testing.T) {
	raw := RawRecord{
		"title":    "Some change",
		"services": "Exchange; Outlook, Exchange",
	}

	rec, err := Normalize(KindWeb, raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"Exchange", "Outlook"}, rec.Services)
}

func TestNormalizeFuzzyDatesKeptAsText(t *testing.T) {
	raw := RawRecord{
		"id":            "310001",
		"title":         "Copilot update",
		"targetedDates": "Q3 CY2025",
		"releaseDate":   "August 2025",
	}

	rec, err := Normalize(KindRoadmap, raw)
	require.NoError(t, err)

	assert.Nil(t, rec.Timestamps.Start)
	assert.Contains(t, rec.DateTexts, "August 2025")
	assert.Contains(t, rec.DateTexts, "Q3 CY2025")
	assert.True(t, rec.HasTimestamp())
}

func TestNormalizeRSSPubDate(t *testing.T) {
	raw := RawRecord{
		"title":   "Planner update lands",
		"guid":    "rss-1",
		"pubDate": "Fri, 01 Aug 2025 12:00:00 GMT",
	}

	rec, err := Normalize(KindWeb, raw)
	require.NoError(t, err)

	// RFC 1123 parses as a real timestamp, not leftover date text.
	require.NotNil(t, rec.Timestamps.Created)
	assert.Equal(t, time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC), *rec.Timestamps.Created)
	assert.Empty(t, rec.DateTexts)
}

func TestNormalizeIsMajor(t *testing.T) {
	raw := RawRecord{
		"title":         "Major change",
		"isMajorChange": true,
	}

	rec, err := Normalize(KindMessageCenter, raw)
	require.NoError(t, err)
	require.NotNil(t, rec.IsMajor)
	assert.True(t, *rec.IsMajor)
}

func TestNormalizeZeroWidthStripped(t *testing.T) {
	raw := RawRecord{
		"title": "Outlook\u200b suggested\ufeff replies",
	}

	rec, err := Normalize(KindRoadmap, raw)
	require.NoError(t, err)
	assert.Equal(t, "Outlook suggested replies", rec.Title)
}

func TestNormalizeRejectsUnusable(t *testing.T) {
	_, err := Normalize(KindRoadmap, RawRecord{"status": "Launched"})
	assert.ErrorIs(t, err, ErrUnusable)

	// Whitespace-only title with no id is still unusable.
	_, err = Normalize(KindRoadmap, RawRecord{"title": "   "})
	assert.ErrorIs(t, err, ErrUnusable)
}

func TestNormalizeIDOnlyIsUsable(t *testing.T) {
	rec, err := Normalize(KindMessageCenter, RawRecord{"messageId": "MC123456"})
	require.NoError(t, err)
	assert.Equal(t, "MC123456", rec.NaturalID)
	assert.Empty(t, rec.Title)
}

func TestTimestampsEarliest(t *testing.T) {
	early := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	late := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	ts := Timestamps{Modified: &late, Start: &early}
	got, ok := ts.Earliest()
	require.True(t, ok)
	assert.Equal(t, early, got)

	_, ok = Timestamps{}.Earliest()
	assert.False(t, ok)
}
