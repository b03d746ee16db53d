// Package models defines the domain types shared by the link resolution pipeline, its stores and its adapters.
//
// The package contains three categories of types:
//
// 1. Link pipeline values: ephemeral, never persisted
//   - [Platform] : closed set of supported source platforms
//   - [ExtractedLink] : a URL found in a message and its platform
//   - [SongRecord] : a resolved song with per-platform equivalent links
//   - [Outcome] : the single terminal result for one extracted link
//
// 2. Persisted rows
//   - [GuildSettings] : per-guild reply flags
//   - [SearchEntry] : one successful resolution
//   - [Vote] : an upvote received by the webhook server
//
// 3. Messaging values rendered by the platform adapter
//   - [InboundMessage], [MessageRef], [Embed], [PlaylistPrompt]
package models
