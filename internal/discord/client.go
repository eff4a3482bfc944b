package discord

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/LoneDev6/review-user-bot/internal/domain"
)

const (
	defaultBaseURL  = "https://discord.com/api/v10"
	httpCallTimeout = 10 * time.Second
)

// Client reads the review channel's history via the Discord REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	channelID  string
}

var _ domain.MessageSource = (*Client)(nil)

func NewClient(token, channelID string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: httpCallTimeout},
		baseURL:    defaultBaseURL,
		token:      token,
		channelID:  channelID,
	}
}

// NewClientWithBaseURL is used by tests to point the client at a stub server.
func NewClientWithBaseURL(token, channelID, baseURL string) *Client {
	c := NewClient(token, channelID)
	c.baseURL = baseURL
	return c
}

// Messages fetches up to limit messages strictly older than the before cursor,
// newest first. An empty cursor starts at the newest message.
func (c *Client) Messages(ctx context.Context, before string, limit int) ([]domain.ChannelMessage, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	if before != "" {
		query.Set("before", before)
	}

	endpoint := fmt.Sprintf("%s/channels/%s/messages?%s", c.baseURL, c.channelID, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create messages request: %w", err)
	}
	req.Header.Set("Authorization", "Bot "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch channel messages: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("discord returned status %d for channel messages", resp.StatusCode)
	}

	var messages []domain.ChannelMessage
	if err := json.NewDecoder(resp.Body).Decode(&messages); err != nil {
		return nil, fmt.Errorf("failed to decode channel messages: %w", err)
	}

	return messages, nil
}
