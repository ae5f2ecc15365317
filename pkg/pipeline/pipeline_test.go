package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/changeline/changeline/pkg/feeds"
	"github.com/changeline/changeline/pkg/reconcile"
)

func roadmapRaw(id, title string) feeds.RawRecord {
	return feeds.RawRecord{"id": id, "title": title}
}

func TestRunEndToEnd(t *testing.T) {
	in := Inputs{
		Roadmap: []feeds.RawRecord{
			roadmapRaw("498123", "Outlook suggested replies for shared mailboxes"),
		},
		MessageCenter: []feeds.RawRecord{
			{
				"messageId": "MC1",
				"title":     "Admin heads-up",
				"body":      "This message tracks Feature ID 498123 through rollout.",
			},
		},
	}

	outcome, err := Run(context.Background(), in, Options{})
	require.NoError(t, err)

	result := outcome.Result
	require.Len(t, result.Entities, 1)
	assert.Equal(t, "498123", result.Entities[0].ID)
	assert.GreaterOrEqual(t, result.Entities[0].Confidence, 70)
	assert.Equal(t, 1, result.Stats.Matched)
}

func TestRunCountsDropped(t *testing.T) {
	in := Inputs{
		Roadmap: []feeds.RawRecord{
			roadmapRaw("100001", "Usable item"),
			{"status": "Launched"}, // no title, no id
		},
	}

	outcome, err := Run(context.Background(), in, Options{})
	require.NoError(t, err)

	assert.Equal(t, 1, outcome.Dropped[feeds.KindRoadmap])
	assert.Len(t, outcome.Result.Entities, 1)
}

func TestRunCountsFiltered(t *testing.T) {
	in := Inputs{
		Roadmap: []feeds.RawRecord{
			roadmapRaw("100002", "Undated item"),
		},
	}

	opts := Options{}
	opts.Window.LookbackMonths = 3

	outcome, err := Run(context.Background(), in, opts)
	require.NoError(t, err)

	assert.Equal(t, 1, outcome.Filtered[feeds.KindRoadmap])
	assert.Empty(t, outcome.Result.Entities)
}

func TestRunProductsFilter(t *testing.T) {
	in := Inputs{
		Roadmap: []feeds.RawRecord{
			roadmapRaw("100003", "Teams meeting recap improvements"),
			roadmapRaw("100004", "Exchange throttling changes"),
		},
	}

	outcome, err := Run(context.Background(), in, Options{Products: []string{"teams"}})
	require.NoError(t, err)

	require.Len(t, outcome.Result.Entities, 1)
	assert.Equal(t, "100003", outcome.Result.Entities[0].ID)
}

func TestRunOrderFirst(t *testing.T) {
	in := Inputs{
		Roadmap: []feeds.RawRecord{
			roadmapRaw("100005", "Alpha"),
			roadmapRaw("100006", "Beta"),
			roadmapRaw("100007", "Gamma"),
		},
	}

	outcome, err := Run(context.Background(), in, Options{
		OrderFirst: []string{"100007", "100006"},
	})
	require.NoError(t, err)

	ids := make([]string, 0, len(outcome.Result.Entities))
	for _, e := range outcome.Result.Entities {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"100007", "100006", "100005"}, ids)
}

func TestRunOrderFirstUnknownID(t *testing.T) {
	in := Inputs{
		Roadmap: []feeds.RawRecord{roadmapRaw("100008", "Only entity")},
	}

	outcome, err := Run(context.Background(), in, Options{
		OrderFirst: []string{"nonexistent"},
	})
	require.NoError(t, err)
	require.Len(t, outcome.Result.Entities, 1)
	assert.Equal(t, "100008", outcome.Result.Entities[0].ID)
}

func TestRunReconcilerOptions(t *testing.T) {
	in := Inputs{
		Roadmap: []feeds.RawRecord{roadmapRaw("100009", "Entity")},
	}

	outcome, err := Run(context.Background(), in, Options{
		ReconcilerOptions: []reconcile.Option{
			reconcile.WithRunID(func() string { return "pinned" }),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "pinned", outcome.Result.RunID)
}

func TestRunEmptyInputs(t *testing.T) {
	outcome, err := Run(context.Background(), Inputs{}, Options{})
	require.NoError(t, err)
	assert.Empty(t, outcome.Result.Entities)
}
