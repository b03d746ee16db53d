// Package services implements the HTTP clients the bot depends on.
//
// # Song Resolution
//
// [SongsClient] resolves a streaming link into a [models.SongRecord] through the song resolution service.
// Responses are mapped onto the resolver error taxonomy:
//   - 404 or an empty record : [shared.ErrUnknownSong]
//   - 429 or an exhausted local quota : [shared.ErrBotRatelimited]
//   - anything else (network, timeout, 5xx, bad JSON) : [shared.ErrTransientFailure]
//
// The local quota is a [rate.Limiter] shared by every guild.
//
// # Linked Accounts
//
// [AccountsClient] reads a user's linked Spotify/Apple Music accounts and playlists and appends tracks.
// It authenticates with the OAuth2 client credentials grant; tokens are refreshed by [clientcredentials].
//
// Both clients are built on [APIService], a small JSON request helper.
package services
