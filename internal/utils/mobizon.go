package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tasktracker/internal/config"
)

const DefaultMobizonURL = "https://api.mobizon.kz/service/message/sendsmsmessage"

// Client sends SMS through the Mobizon HTTP API.
type Client struct {
	ApiKey  string
	Sender  string // optional sender id
	DryRun  bool
	BaseURL string

	http   *http.Client
	logger *slog.Logger
}

type SendSMSResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		MessageID string `json:"messageId"`
	} `json:"data"`
}

func NewClient(cfg config.MobizonConfig, logger *slog.Logger) *Client {
	return &Client{
		ApiKey:  cfg.APIKey,
		Sender:  cfg.SenderID,
		DryRun:  cfg.DryRun,
		BaseURL: DefaultMobizonURL,
		http:    &http.Client{Timeout: 15 * time.Second},
		logger:  logger,
	}
}

// SendSMS sends text to the given phone number. In dry-run mode the message is
// only logged.
func (c *Client) SendSMS(ctx context.Context, to, text string) error {
	to = NormalizePhone(to)
	if to == "" {
		return fmt.Errorf("send SMS: empty recipient")
	}
	if c.DryRun || c.ApiKey == "" {
		c.logger.Info("[mobizon][dry-run]", "to", to, "sender", c.Sender, "text", text)
		return nil
	}

	form := url.Values{
		"apiKey":    {c.ApiKey},
		"recipient": {to},
		"text":      {text},
	}
	if c.Sender != "" {
		form.Set("from", c.Sender)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build SMS request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send SMS request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return fmt.Errorf("read SMS response: %w", err)
	}
	var result SendSMSResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("parse response (status %d): %w", resp.StatusCode, err)
	}
	if result.Code != 0 {
		return fmt.Errorf("mobizon returned error code %d: %s", result.Code, result.Message)
	}
	c.logger.Debug("[mobizon][send] ok", "to", to, "message_id", result.Data.MessageID)
	return nil
}

// NormalizePhone strips everything but digits.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
