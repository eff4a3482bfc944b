package domain

import (
	"context"
	"time"
)

// EmbedField is one name/value pair of a broadcast embed.
type EmbedField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// MessageEmbed is the structured part of a broadcast message. The review
// embed carries the Rating, Feedback, Reviewed User and Reviewer fields.
type MessageEmbed struct {
	Fields []EmbedField `json:"fields"`
}

// ChannelMessage is one historical message of the review channel, as consumed
// by the reconciliation sweep.
type ChannelMessage struct {
	ID        string         `json:"id"`
	CreatedAt time.Time      `json:"timestamp"`
	Embeds    []MessageEmbed `json:"embeds"`
}

// MessageSource pages backward through the review channel's history.
// An empty before cursor starts at the newest message; otherwise messages
// strictly older than the cursor are returned, newest first, at most limit.
type MessageSource interface {
	Messages(ctx context.Context, before string, limit int) ([]ChannelMessage, error)
}
