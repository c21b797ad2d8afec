package extract

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/okechi-dev/summarly/internal/core"
	"github.com/okechi-dev/summarly/internal/core/errs"
	"github.com/okechi-dev/summarly/internal/core/retry"
)

// YouTubeExtractor fetches a video's caption track and returns it as
// normalized text. It talks to YouTube the same way a browser does: the
// watch page embeds the caption track URLs in its player response.
// Transient fetch failures are retried here, at the network edge, so the
// pipeline above never has to.
type YouTubeExtractor struct {
	client  *http.Client
	retry   retry.Policy
	baseURL string // overridable for tests
}

func NewYouTubeExtractor(client *http.Client) *YouTubeExtractor {
	return &YouTubeExtractor{
		client:  client,
		retry:   retry.DefaultPolicy(),
		baseURL: "https://www.youtube.com",
	}
}

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// ParseVideoID validates rawURL and extracts the 11-character video id.
// Watch, short-link, shorts, and embed URL shapes are accepted; anything
// else fails with InvalidSource.
func ParseVideoID(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return "", errs.New(errs.InvalidSource, "not a valid URL: %q", rawURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", errs.New(errs.InvalidSource, "unsupported scheme %q", u.Scheme)
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	host = strings.TrimPrefix(host, "m.")

	var id string
	switch host {
	case "youtube.com", "youtube-nocookie.com":
		switch {
		case u.Path == "/watch":
			id = u.Query().Get("v")
		case strings.HasPrefix(u.Path, "/shorts/"):
			id = strings.TrimPrefix(u.Path, "/shorts/")
		case strings.HasPrefix(u.Path, "/embed/"):
			id = strings.TrimPrefix(u.Path, "/embed/")
		case strings.HasPrefix(u.Path, "/live/"):
			id = strings.TrimPrefix(u.Path, "/live/")
		}
	case "youtu.be":
		id = strings.TrimPrefix(u.Path, "/")
	default:
		return "", errs.New(errs.InvalidSource, "not a YouTube host: %q", u.Hostname())
	}

	id = strings.TrimSuffix(id, "/")
	if !videoIDPattern.MatchString(id) {
		return "", errs.New(errs.InvalidSource, "no video id in %q", rawURL)
	}
	return id, nil
}

// Extract fetches the caption track for the video behind rawURL.
func (e *YouTubeExtractor) Extract(ctx context.Context, rawURL string) (*core.ExtractedContent, error) {
	videoID, err := ParseVideoID(rawURL)
	if err != nil {
		return nil, err
	}

	page, err := e.get(ctx, fmt.Sprintf("%s/watch?v=%s", e.baseURL, videoID))
	if err != nil {
		return nil, err
	}

	trackURL, ok := captionTrackURL(page)
	if !ok {
		return nil, errs.New(errs.NoTranscriptAvailable, "video %s has no caption track", videoID)
	}

	rawTrack, err := e.get(ctx, trackURL)
	if err != nil {
		return nil, err
	}

	text, err := parseTimedText(rawTrack)
	if err != nil {
		return nil, errs.Wrap(errs.NoTranscriptAvailable, fmt.Errorf("caption track for %s: %w", videoID, err))
	}
	text = NormalizeText(text)
	if text == "" {
		return nil, errs.New(errs.NoTranscriptAvailable, "caption track for %s is empty", videoID)
	}

	title := videoTitle(page)
	if title == "" {
		title = "YouTube video " + videoID
	}

	return &core.ExtractedContent{Text: text, Title: title}, nil
}

func (e *YouTubeExtractor) get(ctx context.Context, u string) ([]byte, error) {
	var body []byte
	err := e.retry.Do(ctx, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return errs.Wrap(errs.InvalidSource, err)
		}
		req.Header.Set("Accept-Language", "en")

		resp, err := e.client.Do(req)
		if err != nil {
			return errs.Wrap(errs.SourceUnreachable, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return errs.New(errs.SourceUnreachable, "GET %s: status %d", u, resp.StatusCode)
		}

		body, err = io.ReadAll(io.LimitReader(resp.Body, 16<<20))
		if err != nil {
			return errs.Wrap(errs.SourceUnreachable, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

var captionTrackPattern = regexp.MustCompile(`"captionTracks":\[\{"baseUrl":"([^"]+)"`)

// captionTrackURL pulls the first caption track URL out of the watch page's
// embedded player response.
func captionTrackURL(page []byte) (string, bool) {
	m := captionTrackPattern.FindSubmatch(page)
	if m == nil {
		return "", false
	}
	u := string(m[1])
	u = strings.ReplaceAll(u, `\u0026`, "&")
	u = strings.ReplaceAll(u, `\/`, "/")
	return u, true
}

var titlePattern = regexp.MustCompile(`<title>(.*?)</title>`)

func videoTitle(page []byte) string {
	m := titlePattern.FindSubmatch(page)
	if m == nil {
		return ""
	}
	title := strings.TrimSuffix(string(m[1]), " - YouTube")
	return strings.TrimSpace(unescapeEntities(title))
}

// timedText mirrors YouTube's caption XML: <transcript><text ...>...</text>.
type timedText struct {
	XMLName xml.Name `xml:"transcript"`
	Lines   []string `xml:"text"`
}

func parseTimedText(raw []byte) (string, error) {
	var tt timedText
	if err := xml.Unmarshal(raw, &tt); err != nil {
		return "", fmt.Errorf("parse timedtext: %w", err)
	}
	if len(tt.Lines) == 0 {
		return "", fmt.Errorf("no caption segments")
	}
	// Caption payloads double-escape entities inside the XML text nodes.
	lines := make([]string, 0, len(tt.Lines))
	for _, l := range tt.Lines {
		lines = append(lines, unescapeEntities(l))
	}
	return strings.Join(lines, " "), nil
}

var entityReplacer = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
	"&apos;", "'",
)

func unescapeEntities(s string) string {
	return entityReplacer.Replace(s)
}
