package reconcile

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/changeline/changeline/pkg/feeds"
	"github.com/changeline/changeline/pkg/match"
)

func fixedRunID() string { return "test-run" }

func newTestReconciler(t *testing.T, opts ...Option) Reconciler {
	t.Helper()
	r, err := New(append([]Option{WithRunID(fixedRunID)}, opts...)...)
	require.NoError(t, err)
	return r
}

func anchorRecord(id, title string) *feeds.Record {
	return &feeds.Record{Kind: feeds.KindRoadmap, NaturalID: id, Title: title}
}

func candidateRecord(id, title, body string) *feeds.Record {
	return &feeds.Record{Kind: feeds.KindMessageCenter, NaturalID: id, Title: title, Body: body}
}

func TestReconcileExactIDMatch(t *testing.T) {
	r := newTestReconciler(t)

	anchors := []*feeds.Record{
		anchorRecord("498123", "Outlook suggested replies for shared mailboxes"),
	}
	candidates := []*feeds.Record{
		candidateRecord("MC1", "Unrelated subject entirely",
			"This message tracks Feature ID 498123 through rollout."),
	}

	result, err := r.Reconcile(anchors, candidates, nil)
	require.NoError(t, err)

	assert.Equal(t, "test-run", result.RunID)
	require.Len(t, result.Entities, 1)

	entity := result.Entities[0]
	assert.Equal(t, "498123", entity.ID)
	assert.GreaterOrEqual(t, entity.Confidence, 70)
	require.NotNil(t, entity.Sources.MessageCenter)
	assert.Equal(t, "MC1", entity.Sources.MessageCenter.ID)
	assert.Equal(t, DefaultMessageCenterLinkBase+"MC1", entity.Sources.MessageCenter.URL)

	assert.Equal(t, 1, result.Stats.Matched)
	assert.Zero(t, result.Stats.OrphanCandidates)
}

func TestReconcileNoRecordLost(t *testing.T) {
	r := newTestReconciler(t)

	anchors := []*feeds.Record{
		anchorRecord("100001", "Teams meeting recap improvements"),
		anchorRecord("100002", "Totally unrelated roadmap item"),
	}
	candidates := []*feeds.Record{
		candidateRecord("MC10", "Teams meeting recap improvements", ""),
		candidateRecord("MC11", "Announcement nobody asked about", ""),
	}

	result, err := r.Reconcile(anchors, candidates, nil)
	require.NoError(t, err)

	// Two anchors plus one orphaned candidate.
	require.Len(t, result.Entities, 3)
	assert.Equal(t, 1, result.Stats.Matched)
	assert.Equal(t, 1, result.Stats.OrphanAnchors)
	assert.Equal(t, 1, result.Stats.OrphanCandidates)

	// Anchors first in input order, orphans after.
	assert.Equal(t, "100001", result.Entities[0].ID)
	assert.Equal(t, "100002", result.Entities[1].ID)
	assert.Equal(t, "MC:MC11", result.Entities[2].ID)
}

func TestReconcileUnmatchedAnchorConfidence(t *testing.T) {
	r := newTestReconciler(t)

	result, err := r.Reconcile([]*feeds.Record{
		anchorRecord("100003", "Lonely roadmap item"),
	}, nil, nil)
	require.NoError(t, err)

	require.Len(t, result.Entities, 1)
	assert.Zero(t, result.Entities[0].Confidence)
	require.NotNil(t, result.Entities[0].Sources.Roadmap)
	assert.Nil(t, result.Entities[0].Sources.MessageCenter)
}

func TestReconcileOrphanCandidateConfidence(t *testing.T) {
	r := newTestReconciler(t)

	cand := candidateRecord("MC20", "Standalone admin message", "")
	cand.Services = []string{"Exchange", "Outlook"}

	result, err := r.Reconcile(nil, []*feeds.Record{cand}, nil)
	require.NoError(t, err)

	require.Len(t, result.Entities, 1)
	entity := result.Entities[0]
	assert.Equal(t, "MC:MC20", entity.ID)
	assert.Equal(t, 100, entity.Confidence)
	assert.Equal(t, "Exchange", entity.Product)
}

func TestReconcileOrphanCandidateWithoutID(t *testing.T) {
	r := newTestReconciler(t)

	result, err := r.Reconcile(nil, []*feeds.Record{
		{Kind: feeds.KindMessageCenter, Title: "No id at all"},
	}, nil)
	require.NoError(t, err)

	require.Len(t, result.Entities, 1)
	assert.True(t, strings.HasPrefix(result.Entities[0].ID, "T:"))
}

func TestReconcileIDCollisionSuffix(t *testing.T) {
	r := newTestReconciler(t)

	anchors := []*feeds.Record{
		anchorRecord("200001", "First copy"),
		anchorRecord("200001", "Second copy"),
		anchorRecord("200001", "Third copy"),
	}

	result, err := r.Reconcile(anchors, nil, nil)
	require.NoError(t, err)

	require.Len(t, result.Entities, 3)
	assert.Equal(t, "200001", result.Entities[0].ID)
	assert.Equal(t, "200001-2", result.Entities[1].ID)
	assert.Equal(t, "200001-3", result.Entities[2].ID)
	assert.Equal(t, 2, result.Stats.IDCollisions)
}

func TestReconcileMergeAuthority(t *testing.T) {
	r := newTestReconciler(t)

	modified := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	major := true

	anchor := anchorRecord("300001", "Copilot summarization in Word")
	anchor.Product = "Word"
	anchor.Status = "In development"
	anchor.URL = "https://example.com/roadmap/300001"

	cand := candidateRecord("MC30", "Copilot summarization in Word", "")
	cand.Product = "Microsoft 365"
	cand.Severity = "normal"
	cand.IsMajor = &major
	cand.Summary = "Candidate summary text."
	cand.Timestamps.Modified = &modified

	result, err := r.Reconcile([]*feeds.Record{anchor}, []*feeds.Record{cand}, nil)
	require.NoError(t, err)

	require.Len(t, result.Entities, 1)
	entity := result.Entities[0]

	// Anchor wins catalog fields; candidate supplies operational fields and
	// fills gaps.
	assert.Equal(t, "Word", entity.Product)
	assert.Equal(t, "In development", entity.Status)
	assert.Equal(t, "normal", entity.Severity)
	assert.Equal(t, "Candidate summary text.", entity.Summary)
	require.NotNil(t, entity.IsMajor)
	assert.True(t, *entity.IsMajor)
	require.NotNil(t, entity.LastUpdated)
	assert.Equal(t, modified, *entity.LastUpdated)

	// Services default to the anchor product when the anchor carries no tags.
	assert.Equal(t, []string{"Word"}, entity.Services)

	require.Len(t, entity.Links, 2)
	assert.Equal(t, "Roadmap", entity.Links[0].Label)
	assert.Equal(t, "Message Center", entity.Links[1].Label)
}

func TestReconcileAttachWebHits(t *testing.T) {
	r := newTestReconciler(t)

	anchors := []*feeds.Record{
		anchorRecord("400001", "Planner premium capabilities"),
	}
	web := []*feeds.Record{
		{Kind: feeds.KindWeb, Title: "Planner update lands", URL: "https://example.com/a", Summary: "snippet"},
		{Kind: feeds.KindWeb, Title: "Planner again", URL: "https://example.com/b"},
		{Kind: feeds.KindWeb, Title: "Nothing in common", URL: "https://example.com/c"},
	}

	result, err := r.Reconcile(anchors, nil, web)
	require.NoError(t, err)

	require.Len(t, result.Entities, 1)
	entity := result.Entities[0]

	// Both overlapping hits attach as sources; web hits never create
	// entities.
	require.Len(t, entity.Sources.Web, 2)
	assert.Equal(t, "snippet", entity.Sources.Web[0].Snippet)
	assert.Equal(t, 2, result.Stats.WebHitsAttached)

	// The link label stays unique per entity.
	var webLinks int
	for _, link := range entity.Links {
		if link.Label == "Web" {
			webLinks++
		}
	}
	assert.Equal(t, 1, webLinks)
}

func TestReconcileEmptyInputs(t *testing.T) {
	r := newTestReconciler(t)

	result, err := r.Reconcile(nil, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, result.Entities)
	assert.Equal(t, "test-run", result.RunID)
}

func TestReconcileCustomLinkBase(t *testing.T) {
	r := newTestReconciler(t, WithMessageCenterLinkBase("https://portal.example.com/mc/"))

	result, err := r.Reconcile(nil, []*feeds.Record{
		candidateRecord("MC40", "Standalone", ""),
	}, nil)
	require.NoError(t, err)

	require.Len(t, result.Entities, 1)
	require.NotNil(t, result.Entities[0].Sources.MessageCenter)
	assert.Equal(t, "https://portal.example.com/mc/MC40", result.Entities[0].Sources.MessageCenter.URL)
}

func TestNewRejectsInvalidOptions(t *testing.T) {
	_, err := New(WithScoring(match.Config{MinScore: -1, ExactIDScore: 70}))
	assert.Error(t, err)

	_, err = New(WithMessageCenterLinkBase(""))
	assert.Error(t, err)

	_, err = New(WithRunID(nil))
	assert.Error(t, err)
}

func TestTitleHashIDStable(t *testing.T) {
	a := titleHashID("Some   Title Here")
	b := titleHashID("some title here")
	assert.Equal(t, a, b)
	assert.True(t, strings.HasPrefix(a, "T:"))
}
