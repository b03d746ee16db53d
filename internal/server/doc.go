// Package server exposes the bot's small HTTP surface: the bot-list vote webhook, a stats endpoint and a health probe.
//
// # Router
//
// [BasicRouter] wraps [http.ServeMux] method patterns. [Middleware] added with Use wraps
// every route registered afterwards, first added outermost.
//
// Handlers implement [Handler], which adds Routes to [http.Handler] so a handler owns its patterns.
//
// # Votes
//
// The bot-list service POSTs {"user", "type", "isWeekend"} to /votes with the shared secret in the
// Authorization header. Recorded votes unlock the "Add to Playlist" command for the configured window.
package server
