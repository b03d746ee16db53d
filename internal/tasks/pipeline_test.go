package tasks

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/tunelink/internal/cache"
	"github.com/desertthunder/tunelink/internal/models"
	"github.com/desertthunder/tunelink/internal/permissions"
	"github.com/desertthunder/tunelink/internal/shared"
	tt "github.com/desertthunder/tunelink/internal/testing"
)

const trackLink = "https://open.spotify.com/track/abc123"

func quietLogger() *log.Logger {
	l := shared.NewLogger(nil)
	l.SetLevel(log.FatalLevel)
	return l
}

type fixture struct {
	store     *tt.SettingsStore
	resolver  *tt.Resolver
	messenger *tt.Messenger
	counter   *tt.Counter
	pipeline  *Pipeline
}

func newFixture(flags uint64) *fixture {
	f := &fixture{
		store:     tt.NewSettingsStore(),
		resolver:  &tt.Resolver{Songs: map[string]*models.SongRecord{}, Errs: map[string]error{}},
		messenger: &tt.Messenger{},
		counter:   &tt.Counter{},
	}
	f.store.Put("g1", flags)
	settings := cache.NewSettingsCache(f.store, time.Minute, cache.WithLogger(quietLogger()))
	f.pipeline = NewPipeline(settings, f.resolver, f.messenger, f.counter, quietLogger())
	return f
}

func message(text string) models.InboundMessage {
	return models.InboundMessage{
		Text:       text,
		AuthorID:   "u1",
		AuthorName: "listener",
		Ref:        models.MessageRef{GuildID: "g1", ChannelID: "c1", MessageID: "m1"},
	}
}

func song(title string) *models.SongRecord {
	return &models.SongRecord{
		Title:  title,
		Artist: "Artist",
		Links:  map[string]string{"spotify": trackLink, "apple_music": "https://music.apple.com/x?i=1"},
	}
}

func TestPipeline(t *testing.T) {
	ctx := context.Background()

	t.Run("Enabled Link Replies", func(t *testing.T) {
		f := newFixture(uint64(permissions.ReplySpotify))
		f.resolver.Songs[trackLink] = song("Song")

		outcomes := f.pipeline.HandleMessage(ctx, message("check this out "+trackLink))

		if len(outcomes) != 1 || outcomes[0].Kind != models.Replied {
			t.Fatalf("expected one Replied outcome, got %+v", outcomes)
		}
		if outcomes[0].Song == nil || outcomes[0].Song.Title != "Song" {
			t.Errorf("expected resolved song on outcome, got %+v", outcomes[0].Song)
		}

		replies := f.messenger.Replies()
		if len(replies) != 1 {
			t.Fatalf("expected 1 reply, got %d", len(replies))
		}
		if replies[0].Embed.Title != "Song" || replies[0].Ref.MessageID != "m1" {
			t.Errorf("unexpected reply %+v", replies[0])
		}
		if replies[0].Embed.Author == nil || replies[0].Embed.Author.Name != "listener" {
			t.Errorf("expected requester on embed, got %+v", replies[0].Embed.Author)
		}

		if n, _ := f.counter.Count(ctx); n != 1 {
			t.Errorf("expected counter 1, got %d", n)
		}
		entry := f.counter.Entries()[0]
		if entry.GuildID != "g1" || entry.Platform != "spotify-track" || entry.Link != trackLink {
			t.Errorf("unexpected search entry %+v", entry)
		}
	})

	t.Run("Disabled Platform Is Silent", func(t *testing.T) {
		f := newFixture(uint64(permissions.ReplyAM))
		f.resolver.Songs[trackLink] = song("Song")

		outcomes := f.pipeline.HandleMessage(ctx, message("check this out "+trackLink))

		if len(outcomes) != 1 || outcomes[0].Kind != models.PermissionDenied {
			t.Fatalf("expected one PermissionDenied outcome, got %+v", outcomes)
		}
		if len(f.messenger.Replies()) != 0 || len(f.messenger.Reactions()) != 0 {
			t.Error("expected no messages")
		}
		if len(f.resolver.Calls()) != 0 {
			t.Errorf("expected no resolver calls, got %v", f.resolver.Calls())
		}
	})

	t.Run("Rate Limited Link Sends Notice", func(t *testing.T) {
		f := newFixture(uint64(permissions.ReplySpotify))
		f.resolver.Errs[trackLink] = shared.ErrBotRatelimited

		outcomes := f.pipeline.HandleMessage(ctx, message(trackLink))

		if len(outcomes) != 1 || outcomes[0].Kind != models.RateLimited {
			t.Fatalf("expected one RateLimited outcome, got %+v", outcomes)
		}
		replies := f.messenger.Replies()
		if len(replies) != 1 {
			t.Fatalf("expected 1 reply, got %d", len(replies))
		}
		if !strings.Contains(replies[0].Embed.Description, "Try again in a minute") {
			t.Errorf("expected retry notice, got %q", replies[0].Embed.Description)
		}
		if n, _ := f.counter.Count(ctx); n != 0 {
			t.Errorf("expected counter unchanged, got %d", n)
		}
	})

	t.Run("Unknown Link Gets Reaction", func(t *testing.T) {
		f := newFixture(uint64(permissions.ReplySpotify))

		outcomes := f.pipeline.HandleMessage(ctx, message(trackLink))

		if len(outcomes) != 1 || outcomes[0].Kind != models.NotFound {
			t.Fatalf("expected one NotFound outcome, got %+v", outcomes)
		}
		reactions := f.messenger.Reactions()
		if len(reactions) != 1 || reactions[0].Emoji != "❓" {
			t.Errorf("expected a ❓ reaction, got %+v", reactions)
		}
		if len(f.messenger.Replies()) != 0 {
			t.Error("expected no textual reply")
		}
		if n, _ := f.counter.Count(ctx); n != 0 {
			t.Errorf("expected counter unchanged, got %d", n)
		}
	})

	t.Run("Zero Links Touch Nothing", func(t *testing.T) {
		f := newFixture(uint64(permissions.All))

		for _, text := range []string{"", "hello", "https://example.com/song", "https://spotify.com/artist/1"} {
			if outcomes := f.pipeline.HandleMessage(ctx, message(text)); len(outcomes) != 0 {
				t.Errorf("expected no outcomes for %q, got %+v", text, outcomes)
			}
		}
		if f.store.Finds() != 0 || f.store.Creates() != 0 {
			t.Errorf("expected no store calls, got %d finds %d creates", f.store.Finds(), f.store.Creates())
		}
		if len(f.resolver.Calls()) != 0 {
			t.Error("expected no resolver calls")
		}
	})

	t.Run("Ignored Messages", func(t *testing.T) {
		f := newFixture(uint64(permissions.All))
		f.resolver.Songs[trackLink] = song("Song")

		bot := message(trackLink)
		bot.AuthorIsBot = true
		direct := message(trackLink)
		direct.Ref.GuildID = ""

		if got := f.pipeline.HandleMessage(ctx, bot); got != nil {
			t.Errorf("expected bot message to be ignored, got %+v", got)
		}
		if got := f.pipeline.HandleMessage(ctx, direct); got != nil {
			t.Errorf("expected direct message to be ignored, got %+v", got)
		}
		if got := f.pipeline.Handle(ctx, trackLink, models.MessageRef{}); got != nil {
			t.Errorf("expected message without guild to be ignored, got %+v", got)
		}
	})

	t.Run("Mixed Links With Isolated Failures", func(t *testing.T) {
		f := newFixture(uint64(permissions.ReplySpotify | permissions.ReplySoundcloud))

		album := "https://open.spotify.com/album/xyz"
		apple := "https://music.apple.com/us/album/a?i=9"
		cloud := "https://soundcloud.com/artist/song"
		broken := "https://open.spotify.com/track/broken"
		flaky := "https://open.spotify.com/track/flaky"

		f.resolver.Songs[trackLink] = song("Track")
		f.resolver.Songs[album] = song("Album")
		f.resolver.Songs[cloud] = song("Cloud")
		f.resolver.Panics = map[string]bool{broken: true}
		f.resolver.Errs[flaky] = shared.ErrTransientFailure

		text := strings.Join([]string{trackLink, "https://example.com", album, apple, broken, cloud, flaky}, " ")
		outcomes := f.pipeline.HandleMessage(ctx, message(text))

		want := []models.OutcomeKind{
			models.Replied,          // track
			models.Replied,          // album shares the spotify flag
			models.PermissionDenied, // apple music disabled
			models.Skipped,          // panicking resolver
			models.Replied,          // soundcloud
			models.Skipped,          // transient failure
		}
		if len(outcomes) != len(want) {
			t.Fatalf("expected %d outcomes, got %d: %+v", len(want), len(outcomes), outcomes)
		}
		for i, kind := range want {
			if outcomes[i].Kind != kind {
				t.Errorf("outcome %d (%s): expected %s, got %s", i, outcomes[i].Link.Raw, kind, outcomes[i].Kind)
			}
		}
		if !errors.Is(outcomes[5].Err, shared.ErrTransientFailure) {
			t.Errorf("expected transient error on skipped outcome, got %v", outcomes[5].Err)
		}
		if outcomes[3].Err == nil {
			t.Error("expected panic to be reported as an error")
		}

		if len(f.messenger.Replies()) != 3 {
			t.Errorf("expected 3 replies, got %d", len(f.messenger.Replies()))
		}
		if n, _ := f.counter.Count(ctx); n != 3 {
			t.Errorf("expected counter 3, got %d", n)
		}
		if f.store.Creates() != 0 {
			t.Errorf("expected existing guild row to be reused, got %d creates", f.store.Creates())
		}
	})

	t.Run("New Guild Created Once", func(t *testing.T) {
		f := newFixture(0)
		msg := message(strings.Repeat(trackLink+" ", 5))
		msg.Ref.GuildID = "fresh"

		outcomes := f.pipeline.HandleMessage(ctx, msg)

		if len(outcomes) != 5 {
			t.Fatalf("expected 5 outcomes, got %d", len(outcomes))
		}
		for _, o := range outcomes {
			if o.Kind != models.PermissionDenied {
				t.Errorf("expected default flags to deny, got %s", o.Kind)
			}
		}
		if f.store.Creates() != 1 {
			t.Errorf("expected exactly one create, got %d", f.store.Creates())
		}
	})

	t.Run("Store Unavailable Is Silent", func(t *testing.T) {
		f := newFixture(uint64(permissions.All))
		f.store.FindErr = errors.New("database is locked")

		outcomes := f.pipeline.HandleMessage(ctx, message(trackLink))

		if len(outcomes) != 1 || outcomes[0].Kind != models.Skipped {
			t.Fatalf("expected one Skipped outcome, got %+v", outcomes)
		}
		if !errors.Is(outcomes[0].Err, shared.ErrStoreUnavailable) {
			t.Errorf("expected ErrStoreUnavailable, got %v", outcomes[0].Err)
		}
		if len(f.messenger.Replies())+len(f.messenger.Reactions()) != 0 {
			t.Error("expected no user-visible effect")
		}
		if len(f.resolver.Calls()) != 0 {
			t.Error("expected no resolver calls")
		}
	})

	t.Run("Reply Failure Leaves Counter", func(t *testing.T) {
		f := newFixture(uint64(permissions.All))
		f.resolver.Songs[trackLink] = song("Song")
		f.messenger.ReplyErr = errors.New("missing permissions")

		outcomes := f.pipeline.HandleMessage(ctx, message(trackLink))

		if len(outcomes) != 1 || outcomes[0].Kind != models.Skipped {
			t.Fatalf("expected one Skipped outcome, got %+v", outcomes)
		}
		if n, _ := f.counter.Count(ctx); n != 0 {
			t.Errorf("expected counter unchanged, got %d", n)
		}
	})

	t.Run("Counter Failure Still Replied", func(t *testing.T) {
		f := newFixture(uint64(permissions.All))
		f.resolver.Songs[trackLink] = song("Song")
		f.counter.RecordErr = errors.New("disk full")

		outcomes := f.pipeline.HandleMessage(ctx, message(trackLink))

		if len(outcomes) != 1 || outcomes[0].Kind != models.Replied {
			t.Fatalf("expected one Replied outcome, got %+v", outcomes)
		}
	})

	t.Run("React Failure", func(t *testing.T) {
		f := newFixture(uint64(permissions.All))
		f.messenger.ReactErr = errors.New("unknown message")

		outcomes := f.pipeline.HandleMessage(ctx, message(trackLink))

		if len(outcomes) != 1 || outcomes[0].Kind != models.Skipped {
			t.Fatalf("expected one Skipped outcome, got %+v", outcomes)
		}
	})
}
