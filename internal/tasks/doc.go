// Package tasks implements the link resolution and reply pipeline and the jobs built around it.
//
// # Reply Pipeline
//
// [Pipeline.HandleMessage] takes one inbound chat message and produces exactly one [models.Outcome] per
// supported link found in it. Links are processed concurrently and independently:
//
//  1. Guild settings are read through the settings cache. A store failure abandons the link silently.
//  2. The link's platform is checked against the guild's reply flags. A denied link has no visible effect.
//  3. The song resolver is called once. No retries.
//     - success : a song embed is sent as a reply and the search counter is incremented
//     - unknown song : a ❓ reaction is added to the message
//     - rate limited : a "try again in a minute" notice is sent
//     - anything else : logged only
//
// A panic while processing one link is recovered into a [models.Skipped] outcome for that link.
//
// # Presence
//
// [PresenceRefresher] sets the bot's "listening to <n> links" status at start and on a cron schedule.
//
// # Playlist Attach
//
// [PlaylistFlow] backs the "Add to Playlist" message command: it is gated on a recent vote, resolves the
// first link of the selected message and builds one select menu per linked streaming account.
package tasks
