// Package app is the application layer - the only component that references
// multiple domain components. It orchestrates the submission, query, and
// deletion-sync use cases, and owns the one-shot reconciliation sweep.
package app
