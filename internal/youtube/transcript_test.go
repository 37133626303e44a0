package youtube

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestVideoID(t *testing.T) {
	cases := map[string]string{
		"dQw4w9WgXcQ": "dQw4w9WgXcQ",
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ":    "dQw4w9WgXcQ",
		"https://youtu.be/dQw4w9WgXcQ":                   "dQw4w9WgXcQ",
		"https://www.youtube.com/embed/dQw4w9WgXcQ":      "dQw4w9WgXcQ",
		"https://youtube.com/watch?list=x&v=dQw4w9WgXcQ": "dQw4w9WgXcQ",
	}
	for in, want := range cases {
		got, err := VideoID(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := VideoID("https://example.com/video")
	assert.ErrorIs(t, err, ErrInvalidURL)
}

func newServer(t *testing.T, captions string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	mux.HandleFunc("/watch", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<html><title>Cell Biology &amp; You - YouTube</title><script>{"captions":%s,"videoDetails":{}}</script></html>`,
			fmt.Sprintf(captions, srv.URL))
	})
	mux.HandleFunc("/timedtext/en", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<transcript><text start="0.5" dur="2.0">Cells are the</text><text start="2.5" dur="1.5">unit of life &amp;amp; more</text></transcript>`)
	})
	mux.HandleFunc("/timedtext/de", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<transcript><text start="0" dur="1">Zellen</text></transcript>`)
	})
	t.Cleanup(srv.Close)
	return srv
}

const twoTracks = `{"playerCaptionsTracklistRenderer":{"captionTracks":[{"baseUrl":"%[1]s/timedtext/en","languageCode":"en"},{"baseUrl":"%[1]s/timedtext/de","languageCode":"de"}]}}`

func TestFetch(t *testing.T) {
	srv := newServer(t, twoTracks)
	c := New(srv.Client(), zap.NewNop())
	c.baseURL = srv.URL

	tr, err := c.Fetch(context.Background(), "https://youtu.be/dQw4w9WgXcQ", "")
	require.NoError(t, err)
	assert.Equal(t, "dQw4w9WgXcQ", tr.VideoID)
	assert.Equal(t, "Cell Biology & You", tr.Title)
	assert.Equal(t, "en", tr.Lang)
	require.Len(t, tr.Cues, 2)
	assert.Equal(t, 2.5, tr.Cues[1].Start)
	assert.Equal(t, "Cells are the unit of life & more", tr.Text())

	de, err := c.Fetch(context.Background(), "dQw4w9WgXcQ", "de")
	require.NoError(t, err)
	assert.Equal(t, "Zellen", de.Text())

	_, err = c.Fetch(context.Background(), "dQw4w9WgXcQ", "fr")
	assert.ErrorIs(t, err, ErrNoTranscript)
}

func TestFetchWithoutCaptions(t *testing.T) {
	srv := newServer(t, `{"playerCaptionsTracklistRenderer":{"captionTracks":[]}}%.0s`)
	c := New(srv.Client(), zap.NewNop())
	c.baseURL = srv.URL

	_, err := c.Fetch(context.Background(), "dQw4w9WgXcQ", "")
	assert.ErrorIs(t, err, ErrNoCaptions)
}
