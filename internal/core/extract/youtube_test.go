package extract

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okechi-dev/summarly/internal/core/errs"
	"github.com/okechi-dev/summarly/internal/core/retry"
)

func TestParseVideoID(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{"watch url", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"watch with extra params", "https://youtube.com/watch?v=dQw4w9WgXcQ&t=42s", "dQw4w9WgXcQ", false},
		{"short link", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"shorts", "https://www.youtube.com/shorts/dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"embed", "https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"mobile host", "https://m.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"not youtube", "https://vimeo.com/123456", "", true},
		{"channel page", "https://www.youtube.com/@somechannel", "", true},
		{"missing id", "https://www.youtube.com/watch", "", true},
		{"id wrong length", "https://youtu.be/short", "", true},
		{"garbage", "not a url at all", "", true},
		{"ftp scheme", "ftp://youtube.com/watch?v=dQw4w9WgXcQ", "", true},
		{"empty", "", "", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			id, err := ParseVideoID(tc.url)
			if tc.wantErr {
				assert.Equal(t, errs.InvalidSource, errs.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, id)
		})
	}
}

func TestCaptionTrackURL(t *testing.T) {
	page := []byte(`..."captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[{"baseUrl":"https:\/\/www.youtube.com\/api\/timedtext?v=abc\u0026lang=en","name":...`)
	u, ok := captionTrackURL(page)
	require.True(t, ok)
	assert.Equal(t, "https://www.youtube.com/api/timedtext?v=abc\u0026lang=en", u)

	_, ok = captionTrackURL([]byte("no captions here"))
	assert.False(t, ok)
}

func TestParseTimedText(t *testing.T) {
	raw := []byte(`<?xml version="1.0" encoding="utf-8" ?><transcript>` +
		`<text start="0.0" dur="2.5">Paris is the capital</text>` +
		`<text start="2.5" dur="2.0">of France &amp;#39;obviously&amp;#39;</text>` +
		`</transcript>`)
	text, err := parseTimedText(raw)
	require.NoError(t, err)
	assert.Contains(t, text, "Paris is the capital of France")

	_, err = parseTimedText([]byte("<transcript></transcript>"))
	assert.Error(t, err)

	_, err = parseTimedText([]byte("not xml"))
	assert.Error(t, err)
}

// fakeYouTube serves a watch page that points its caption track at the same
// test server.
func fakeYouTube(t *testing.T, withCaptions bool) (*httptest.Server, *YouTubeExtractor) {
	t.Helper()
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	mux.HandleFunc("/watch", func(w http.ResponseWriter, r *http.Request) {
		page := `<html><head><title>Intro to Chemistry - YouTube</title></head><body>`
		if withCaptions {
			page += fmt.Sprintf(`"captionTracks":[{"baseUrl":"%s/api/timedtext?v=%s"`, srv.URL, r.URL.Query().Get("v"))
		}
		page += `</body></html>`
		fmt.Fprint(w, page)
	})
	mux.HandleFunc("/api/timedtext", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<transcript><text start="0" dur="3">Atoms bond to form molecules</text></transcript>`)
	})

	ex := NewYouTubeExtractor(srv.Client())
	ex.baseURL = srv.URL
	ex.retry = fastRetry
	return srv, ex
}

// fastRetry keeps retry-path tests from sleeping through real backoffs.
var fastRetry = retry.Policy{MaxRetries: 2, InitialBackoff: time.Millisecond, Multiplier: 1}

func TestYouTubeExtract(t *testing.T) {
	_, ex := fakeYouTube(t, true)

	got, err := ex.Extract(context.Background(), "https://www.youtube.com/watch?v=dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.Equal(t, "Intro to Chemistry", got.Title)
	assert.Equal(t, "Atoms bond to form molecules", got.Text)
}

func TestYouTubeExtractNoTranscript(t *testing.T) {
	_, ex := fakeYouTube(t, false)

	_, err := ex.Extract(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
	assert.Equal(t, errs.NoTranscriptAvailable, errs.KindOf(err))
}

func TestYouTubeExtractUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // connection refused from here on

	ex := NewYouTubeExtractor(&http.Client{})
	ex.baseURL = srv.URL
	ex.retry = fastRetry

	_, err := ex.Extract(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
	assert.Equal(t, errs.SourceUnreachable, errs.KindOf(err))
}

func TestYouTubeExtractRetriesTransientFailure(t *testing.T) {
	var watchHits int32
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	mux.HandleFunc("/watch", func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&watchHits, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprintf(w, `<title>Retried - YouTube</title>"captionTracks":[{"baseUrl":"%s/api/timedtext"`, srv.URL)
	})
	mux.HandleFunc("/api/timedtext", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<transcript><text start="0" dur="3">Second try works</text></transcript>`)
	})

	ex := NewYouTubeExtractor(srv.Client())
	ex.baseURL = srv.URL
	ex.retry = fastRetry

	got, err := ex.Extract(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.Equal(t, "Second try works", got.Text)
	assert.Equal(t, int32(2), atomic.LoadInt32(&watchHits))
}

func TestYouTubeExtractRejectsBadURLBeforeNetwork(t *testing.T) {
	ex := NewYouTubeExtractor(&http.Client{})
	ex.baseURL = "http://127.0.0.1:1" // would fail if ever contacted

	_, err := ex.Extract(context.Background(), "https://example.com/watch?v=dQw4w9WgXcQ")
	assert.Equal(t, errs.InvalidSource, errs.KindOf(err))
}
