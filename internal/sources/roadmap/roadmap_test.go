package roadmap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/changeline/changeline/internal/transport"
	"github.com/changeline/changeline/pkg/feeds"
)

func TestFetchBareArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"498123","title":"Item one"},{"id":"498124","title":"Item two"}]`))
	}))
	defer srv.Close()

	src := New(transport.New(), srv.URL)
	assert.Equal(t, "roadmap", src.Name())
	assert.Equal(t, feeds.KindRoadmap, src.Kind())

	records, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "498123", records[0]["id"])
}

func TestFetchWrappedArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"features":[{"id":"498125","title":"Wrapped"}]}`))
	}))
	defer srv.Close()

	records, err := New(transport.New(), srv.URL).Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Wrapped", records[0]["title"])
}

func TestFetchBadPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"unexpected":"shape"}`))
	}))
	defer srv.Close()

	_, err := New(transport.New(), srv.URL).Fetch(context.Background())
	assert.Error(t, err)
}
