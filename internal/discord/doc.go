// Package discord is the platform adapter: a REST client for paging the
// review channel's message history and a webhook publisher for broadcasting
// accepted reviews.
//
// Only the two endpoints the core needs are implemented; gateway wiring,
// slash commands, and modal UI live in the bot collaborator.
package discord
