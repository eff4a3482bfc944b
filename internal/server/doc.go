// Package server exposes the HTTP API consumed by the bot collaborator:
// submission intake, leaderboard and history queries, deletion sync, health
// probes, and Prometheus metrics.
package server
