package notify

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newWebhook(t *testing.T, status int) (*httptest.Server, func() []WebhookPayload) {
	t.Helper()
	var (
		mu       sync.Mutex
		received []WebhookPayload
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p WebhookPayload
		if err := json.NewDecoder(r.Body).Decode(&p); err == nil {
			mu.Lock()
			received = append(received, p)
			mu.Unlock()
		}
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, func() []WebhookPayload {
		mu.Lock()
		defer mu.Unlock()
		return append([]WebhookPayload(nil), received...)
	}
}

func TestAssessmentCompleted(t *testing.T) {
	srv, got := newWebhook(t, http.StatusNoContent)
	d := NewDiscord(srv.URL, zap.NewNop())

	d.AssessmentCompleted("abc", 4, 5, 80, "medium")
	d.Wait()

	payloads := got()
	require.Len(t, payloads, 1)
	assert.Equal(t, username, payloads[0].Username)
	require.Len(t, payloads[0].Embeds, 1)
	e := payloads[0].Embeds[0]
	assert.Equal(t, ColorSuccess, e.Color)
	assert.NotEmpty(t, e.Timestamp)
	assert.Equal(t, "4 / 5 (80.0%)", e.Fields[0].Value)
}

func TestErrorEmbed(t *testing.T) {
	srv, got := newWebhook(t, http.StatusNoContent)
	d := NewDiscord(srv.URL, zap.NewNop())

	d.Error("Generate MCQ", "/api/mcq/start", 502, errors.New("boom"))
	d.Wait()

	payloads := got()
	require.Len(t, payloads, 1)
	assert.Equal(t, ColorError, payloads[0].Embeds[0].Color)
	assert.Contains(t, payloads[0].Embeds[0].Description, "boom")
}

func TestSendReportsStatus(t *testing.T) {
	srv, _ := newWebhook(t, http.StatusBadRequest)
	d := NewDiscord(srv.URL, zap.NewNop())
	assert.ErrorContains(t, d.Send(t.Context(), Embed{Title: "x"}), "400")
}

func TestDisabled(t *testing.T) {
	d := NewDiscord("", zap.NewNop())
	assert.False(t, d.Enabled())
	d.AssessmentCompleted("abc", 1, 1, 100, "easy")
	d.Wait()

	var nilDiscord *Discord
	nilDiscord.Notify(Embed{})
	nilDiscord.Wait()
}
