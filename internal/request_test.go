package internal

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestFeed(t *testing.T, handler http.HandlerFunc) *FeedClient {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	feed := NewFeedClient(RequestOptions{Lat: 1.35, Lon: 103.99}, nil)
	feed.baseURL = server.URL
	return feed
}

func TestFeedClientPoll(t *testing.T) {
	var requestedPath string
	feed := newTestFeed(t, func(w http.ResponseWriter, r *http.Request) {
		requestedPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(feedSample))
	})

	clock := newFakeClock()
	store := newTestStore(t, testConfig(clock), nil)

	applied, err := feed.Poll(context.Background(), store)
	if err != nil {
		t.Fatalf("Poll() failed: %v", err)
	}
	if applied != 3 || store.Len() != 3 {
		t.Errorf("applied %d updates, store holds %d tracks", applied, store.Len())
	}
	if want := "/lat/1.350000/lon/103.990000/dist/250"; requestedPath != want {
		t.Errorf("requested %s, want %s", requestedPath, want)
	}

	track, ok := store.GetTrack("76cdb1")
	if !ok || track.Tail != "9V-SMF" || track.AircraftType != "A359" {
		t.Errorf("feed metadata not applied: %+v", track)
	}
}

func TestFeedClientErrors(t *testing.T) {
	tests := []struct {
		name     string
		handler  http.HandlerFunc
		expected error
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			},
			expected: ErrNonOkResponse,
		},
		{
			name: "empty body",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
			},
			expected: ErrEmptyResponseBody,
		},
		{
			name: "html",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "text/html")
				_, _ = w.Write([]byte("<html></html>"))
			},
			expected: ErrNonJSONContent,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			feed := newTestFeed(t, test.handler)

			_, err := feed.RequestCivAircraft(context.Background(), testEpoch)
			if !errors.Is(err, test.expected) {
				t.Errorf("want %v, got %v", test.expected, err)
			}
		})
	}
}
