// Package database provides PostgreSQL connectivity and the durable review
// repository.
//
// Uses pgx for connection pooling and tern for migrations, run under an
// advisory lock so concurrent instances don't race on schema changes.
package database
