package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/LoneDev6/review-user-bot/internal/domain"
)

// Embed colors by rating band.
const (
	colorRed    = 0xED4245 // 1-2 stars
	colorYellow = 0xFEE75C // 3 stars
	colorGreen  = 0x57F287 // 4-5 stars
)

// WebhookNotifier broadcasts accepted reviews to the public channel through a
// Discord webhook. The ?wait=true query makes Discord return the created
// message, whose id becomes the review's natural key.
type WebhookNotifier struct {
	httpClient *http.Client
	webhookURL string
}

var _ domain.ReviewNotifier = (*WebhookNotifier)(nil)

func NewWebhookNotifier(webhookURL string) *WebhookNotifier {
	return &WebhookNotifier{
		httpClient: &http.Client{Timeout: httpCallTimeout},
		webhookURL: webhookURL,
	}
}

type webhookEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type webhookEmbed struct {
	Color  int                 `json:"color"`
	Fields []webhookEmbedField `json:"fields"`
}

type webhookPayload struct {
	Embeds []webhookEmbed `json:"embeds"`
}

type webhookMessage struct {
	ID string `json:"id"`
}

func (n *WebhookNotifier) PublishReview(ctx context.Context, sub domain.Submission) (string, error) {
	payload := webhookPayload{
		Embeds: []webhookEmbed{{
			Color: ratingColor(sub.Rating),
			Fields: []webhookEmbedField{
				{Name: "Rating", Value: fmt.Sprintf("%s (%d/5)", strings.Repeat("⭐", sub.Rating), sub.Rating), Inline: true},
				{Name: "Feedback", Value: sub.Feedback},
				{Name: "Reviewed User", Value: "<@" + sub.UserID + ">", Inline: true},
				{Name: "Reviewer", Value: "<@" + sub.AuthorID + ">", Inline: true},
			},
		}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL+"?wait=true", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("discord webhook returned status %d", resp.StatusCode)
	}

	var msg webhookMessage
	if err := json.NewDecoder(resp.Body).Decode(&msg); err != nil {
		return "", fmt.Errorf("failed to decode webhook response: %w", err)
	}
	if msg.ID == "" {
		return "", fmt.Errorf("discord webhook response carried no message id")
	}

	return msg.ID, nil
}

func ratingColor(rating int) int {
	switch {
	case rating >= 4:
		return colorGreen
	case rating == 3:
		return colorYellow
	default:
		return colorRed
	}
}
