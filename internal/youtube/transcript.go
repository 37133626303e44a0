// Package youtube fetches caption transcripts for lecture videos so they can
// be indexed alongside uploaded documents.
package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

var (
	ErrInvalidURL   = errors.New("invalid YouTube URL or video ID")
	ErrNoCaptions   = errors.New("no captions available")
	ErrNoTranscript = errors.New("no transcript in requested language")
)

var (
	videoIDPattern    = regexp.MustCompile(`(?:youtube\.com\/(?:[^\/]+\/.+\/|(?:v|e(?:mbed)?)\/|.*[?&]v=)|youtu\.be\/)([^"&?\/\s]{11})`)
	cuePattern        = regexp.MustCompile(`<text start="([^"]*)" dur="([^"]*)"[^>]*>([^<]*)<\/text>`)
	titlePattern      = regexp.MustCompile(`<title>(.+?) - YouTube</title>`)
	bareVideoIDFormat = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
)

// Cue is one timed caption line.
type Cue struct {
	Text     string
	Start    float64
	Duration float64
}

// Transcript is the full caption text of one video.
type Transcript struct {
	VideoID string
	Title   string
	Lang    string
	Cues    []Cue
}

// Text joins the cues into plain prose.
func (t Transcript) Text() string {
	parts := make([]string, 0, len(t.Cues))
	for _, c := range t.Cues {
		if s := strings.TrimSpace(c.Text); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// Client scrapes the watch page for caption tracks.
type Client struct {
	http    *http.Client
	baseURL string
	logger  *zap.Logger
}

// New returns a client using hc, or http.DefaultClient when hc is nil.
func New(hc *http.Client, logger *zap.Logger) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{http: hc, baseURL: "https://www.youtube.com", logger: logger}
}

// VideoID extracts the 11 character id from a URL or returns a bare id as is.
func VideoID(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if bareVideoIDFormat.MatchString(raw) {
		return raw, nil
	}
	if m := videoIDPattern.FindStringSubmatch(raw); m != nil {
		return m[1], nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidURL, raw)
}

// Fetch downloads the transcript for url. An empty lang picks the first track.
func (c *Client) Fetch(ctx context.Context, url, lang string) (Transcript, error) {
	id, err := VideoID(url)
	if err != nil {
		return Transcript{}, err
	}

	page, err := c.get(ctx, c.baseURL+"/watch?v="+id)
	if err != nil {
		return Transcript{}, fmt.Errorf("failed to fetch video page: %w", err)
	}

	t := Transcript{VideoID: id, Lang: lang}
	if m := titlePattern.FindSubmatch(page); len(m) > 1 {
		t.Title = html.UnescapeString(string(m[1]))
	}

	trackURL, trackLang, err := c.pickTrack(id, string(page), lang)
	if err != nil {
		return Transcript{}, err
	}
	t.Lang = trackLang

	body, err := c.get(ctx, trackURL)
	if err != nil {
		return Transcript{}, fmt.Errorf("failed to fetch transcript: %w", err)
	}
	for _, m := range cuePattern.FindAllStringSubmatch(string(body), -1) {
		start, _ := strconv.ParseFloat(m[1], 64)
		dur, _ := strconv.ParseFloat(m[2], 64)
		t.Cues = append(t.Cues, Cue{
			Text:     html.UnescapeString(html.UnescapeString(m[3])),
			Start:    start,
			Duration: dur,
		})
	}
	if len(t.Cues) == 0 {
		return Transcript{}, fmt.Errorf("%w for video %s", ErrNoCaptions, id)
	}
	c.logger.Info("fetched transcript", zap.String("video", id), zap.String("lang", t.Lang), zap.Int("cues", len(t.Cues)))
	return t, nil
}

func (c *Client) pickTrack(id, page, lang string) (string, string, error) {
	_, after, ok := strings.Cut(page, `"captions":`)
	if !ok {
		c.logger.Debug("captions marker missing", zap.String("video", id))
		return "", "", fmt.Errorf("%w for video %s", ErrNoCaptions, id)
	}
	end := strings.Index(after, `,"videoDetails`)
	if end < 0 {
		return "", "", fmt.Errorf("%w for video %s", ErrNoCaptions, id)
	}

	var captions struct {
		Renderer struct {
			Tracks []struct {
				BaseURL      string `json:"baseUrl"`
				LanguageCode string `json:"languageCode"`
			} `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	}
	if err := json.Unmarshal([]byte(after[:end]), &captions); err != nil {
		return "", "", fmt.Errorf("failed to parse captions data: %w", err)
	}
	tracks := captions.Renderer.Tracks
	if len(tracks) == 0 {
		return "", "", fmt.Errorf("%w for video %s", ErrNoCaptions, id)
	}
	if lang == "" {
		return tracks[0].BaseURL, tracks[0].LanguageCode, nil
	}
	for _, tr := range tracks {
		if tr.LanguageCode == lang {
			return tr.BaseURL, lang, nil
		}
	}
	return "", "", fmt.Errorf("%w: %s", ErrNoTranscript, lang)
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
