package utils

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasktracker/internal/config"
)

func newTestClient(url string) *Client {
	c := NewClient(config.MobizonConfig{APIKey: "key", SenderID: "TRACKER"}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	c.BaseURL = url
	return c
}

func TestSendSMS(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		got = map[string]string{
			"apiKey":    r.PostForm.Get("apiKey"),
			"recipient": r.PostForm.Get("recipient"),
			"text":      r.PostForm.Get("text"),
			"from":      r.PostForm.Get("from"),
		}
		_, _ = io.WriteString(w, `{"code":0,"data":{"messageId":"77"}}`)
	}))
	defer srv.Close()

	err := newTestClient(srv.URL).SendSMS(context.Background(), "+7 (701) 555-12-34", "Task 'budget' is due in 5h")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"apiKey":    "key",
		"recipient": "77015551234",
		"text":      "Task 'budget' is due in 5h",
		"from":      "TRACKER",
	}, got)
}

func TestSendSMSProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"code":3,"message":"bad recipient"}`)
	}))
	defer srv.Close()

	err := newTestClient(srv.URL).SendSMS(context.Background(), "123", "x")
	assert.ErrorContains(t, err, "bad recipient")
}

func TestSendSMSDryRunAndValidation(t *testing.T) {
	c := NewClient(config.MobizonConfig{DryRun: true}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	c.BaseURL = "http://127.0.0.1:0/unreachable"

	assert.NoError(t, c.SendSMS(context.Background(), "+1 555 0100", "hello"))
	assert.Error(t, c.SendSMS(context.Background(), "n/a", "hello"))
}
