// Package notify posts Discord webhook embeds for assessment events.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	ColorSuccess = 0x00FF00
	ColorWarning = 0xFFA500
	ColorError   = 0xFF0000

	username = "LearnAssess Notifier"
)

type EmbedFooter struct {
	Text string `json:"text,omitempty"`
}

type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Timestamp   string       `json:"timestamp,omitempty"` // RFC3339
	Color       int          `json:"color,omitempty"`
	Footer      *EmbedFooter `json:"footer,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
}

// WebhookPayload is the body Discord expects.
type WebhookPayload struct {
	Username string  `json:"username,omitempty"`
	Content  string  `json:"content,omitempty"`
	Embeds   []Embed `json:"embeds"`
}

// Discord sends embeds asynchronously. A Discord with an empty webhook URL
// drops everything.
type Discord struct {
	url    string
	client *http.Client
	logger *zap.Logger
	now    func() time.Time
	wg     sync.WaitGroup
}

func NewDiscord(webhookURL string, logger *zap.Logger) *Discord {
	return &Discord{
		url:    webhookURL,
		client: &http.Client{Timeout: 5 * time.Second},
		logger: logger,
		now:    time.Now,
	}
}

// Enabled reports whether a webhook is configured.
func (d *Discord) Enabled() bool { return d != nil && d.url != "" }

// Notify queues embed for delivery and returns immediately.
func (d *Discord) Notify(embed Embed) {
	if !d.Enabled() {
		return
	}
	if embed.Timestamp == "" {
		embed.Timestamp = d.now().Format(time.RFC3339)
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), d.client.Timeout)
		defer cancel()
		if err := d.Send(ctx, embed); err != nil {
			d.logger.Error("discord notification failed", zap.String("title", embed.Title), zap.Error(err))
			return
		}
		d.logger.Debug("sent discord notification", zap.String("title", embed.Title))
	}()
}

// Wait blocks until queued notifications finish.
func (d *Discord) Wait() {
	if d != nil {
		d.wg.Wait()
	}
}

// Send posts embed synchronously.
func (d *Discord) Send(ctx context.Context, embed Embed) error {
	body, err := json.Marshal(WebhookPayload{Username: username, Embeds: []Embed{embed}})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("discord returned %d: %s", resp.StatusCode, msg)
	}
	return nil
}

// AssessmentCompleted reports a finished MCQ assessment.
func (d *Discord) AssessmentCompleted(session string, correct, total int, percent float64, difficulty string) {
	color := ColorSuccess
	if percent < 70 {
		color = ColorWarning
	}
	d.Notify(Embed{
		Title: "🏁 Assessment Completed",
		Color: color,
		Fields: []EmbedField{
			{Name: "Score", Value: fmt.Sprintf("%d / %d (%.1f%%)", correct, total, percent), Inline: true},
			{Name: "Difficulty", Value: difficulty, Inline: true},
			{Name: "Session", Value: fmt.Sprintf("`%s`", session)},
		},
		Footer: &EmbedFooter{Text: "LearnAssess"},
	})
}

// Error reports a failed request.
func (d *Discord) Error(action, path string, status int, err error) {
	d.Notify(Embed{
		Title:       fmt.Sprintf("🚨 API Error: %s", action),
		Description: fmt.Sprintf("**Error Details:**\n```%s```", err),
		Color:       ColorError,
		Fields: []EmbedField{
			{Name: "HTTP Status", Value: fmt.Sprintf("%d", status), Inline: true},
			{Name: "Path", Value: path},
		},
	})
}
