// Package repositories implements SQLite persistence for guild settings, searches and votes.
//
// Key Implementations:
//   - [GuildRepository] : per-guild reply flags with idempotent create-if-absent
//   - [SearchRepository] : resolution history and the process-wide search counter
//   - [VoteRepository] : upvotes received by the webhook server, queried by the playlist vote gate
//
// Searches and votes store created_at as unix seconds. The search counter is a single-row table that
// [SearchRepository.Record] increments in the same transaction as the history insert.
package repositories
