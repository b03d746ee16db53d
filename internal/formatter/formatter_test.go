package formatter

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/tunelink/internal/models"
)

func TestEmbeds(t *testing.T) {
	song := models.SongRecord{
		Title:     "Song One",
		Artist:    "Artist One",
		Thumbnail: "https://img/1.jpg",
		Links: map[string]string{
			"zing":        "https://zing/1",
			"soundcloud":  "https://soundcloud.com/a/1",
			"spotify":     "https://open.spotify.com/track/1",
			"apple_music": "https://music.apple.com/x?i=1",
			"bandcamp":    "https://bandcamp.com/1",
			"tidal":       "",
		},
	}

	t.Run("SongEmbed", func(t *testing.T) {
		requester := &models.EmbedAuthor{Name: "owais", IconURL: "https://avatar"}
		e := SongEmbed(song, requester)

		if e.Title != "Song One" || e.Description != "by Artist One" {
			t.Errorf("unexpected title/description %q %q", e.Title, e.Description)
		}
		if e.ThumbnailURL != song.Thumbnail {
			t.Errorf("expected thumbnail %s, got %s", song.Thumbnail, e.ThumbnailURL)
		}
		if e.Author != requester {
			t.Error("expected requester as author")
		}

		var names []string
		for _, f := range e.Fields {
			names = append(names, f.Name)
		}
		want := "Spotify,Apple Music,SoundCloud,Bandcamp,Zing"
		if got := strings.Join(names, ","); got != want {
			t.Errorf("expected fields %s, got %s", want, got)
		}
		if !strings.Contains(e.Fields[0].Value, "https://open.spotify.com/track/1") {
			t.Errorf("field should link to the platform, got %s", e.Fields[0].Value)
		}
	})

	t.Run("SongEmbed Without Links", func(t *testing.T) {
		e := SongEmbed(models.SongRecord{Title: "Lonely", Artist: "A"}, nil)
		if len(e.Fields) != 0 || e.Footer == "" {
			t.Errorf("expected no fields and a footer, got %+v", e)
		}
	})

	t.Run("RateLimitedEmbed", func(t *testing.T) {
		e := RateLimitedEmbed(nil)
		if e.Description != "The bot is currently ratelimited. Try again in a minute." {
			t.Errorf("unexpected description %q", e.Description)
		}
	})

	t.Run("PlaylistPromptEmbed", func(t *testing.T) {
		e := PlaylistPromptEmbed(song)
		if e.Author == nil || e.Author.Name != "Song One by Artist One" {
			t.Errorf("unexpected author %+v", e.Author)
		}
		if e.Color != 0x212121 {
			t.Errorf("unexpected color %x", e.Color)
		}
		if e.Footer != PlaylistFooter {
			t.Errorf("unexpected footer %q", e.Footer)
		}
	})
}

func TestTitleCase(t *testing.T) {
	tt := map[string]string{
		"apple-music": "Apple Music",
		"spotify":     "Spotify",
		"YOUTUBE mix": "Youtube Mix",
		"":            "",
	}
	for in, want := range tt {
		if got := TitleCase(in); got != want {
			t.Errorf("TitleCase(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestExporters(t *testing.T) {
	entries := []models.SearchEntry{
		{ID: "s1", GuildID: "g1", Platform: "spotify-track", Link: "https://open.spotify.com/track/1", Title: "Song, One", Artist: "Artist One", CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)},
		{ID: "s2", GuildID: "g2", Platform: "soundcloud", Link: "https://soundcloud.com/a", Title: "Song Two", Artist: "Artist Two", CreatedAt: time.Date(2024, 1, 3, 3, 4, 5, 0, time.UTC)},
	}

	t.Run("SearchesToCSV", func(t *testing.T) {
		data, err := SearchesToCSV(entries)
		if err != nil {
			t.Fatalf("SearchesToCSV failed: %v", err)
		}

		output := string(data)
		if !strings.HasPrefix(output, "ID,Time,Guild,Platform,Title,Artist,Link\n") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, `"Song, One"`) {
			t.Errorf("CSV should quote fields with commas, got: %s", output)
		}
		if !strings.Contains(output, "2024-01-02T03:04:05Z") {
			t.Errorf("CSV missing RFC3339 time, got: %s", output)
		}
		if lines := strings.Count(output, "\n"); lines != 3 {
			t.Errorf("expected 3 lines, got %d", lines)
		}
	})

	t.Run("SearchesToText", func(t *testing.T) {
		output := string(SearchesToText(entries))
		if !strings.Contains(output, "Searches: 2") {
			t.Errorf("text missing count, got: %s", output)
		}
		if !strings.Contains(output, "2. Artist Two - Song Two [soundcloud]") {
			t.Errorf("text missing second entry, got: %s", output)
		}
	})

	t.Run("StatsToText", func(t *testing.T) {
		output := string(StatsToText(7, map[string]int64{"soundcloud": 2, "spotify-track": 5}))
		if !strings.Contains(output, "Total links resolved: 7") {
			t.Errorf("stats missing total, got: %s", output)
		}
		if strings.Index(output, "spotify-track") > strings.Index(output, "soundcloud") {
			t.Errorf("expected larger platform first, got: %s", output)
		}
	})

	t.Run("WriteExport", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "searches.csv")

		if err := WriteExport(path, []byte("a"), false); err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}
		if err := WriteExport(path, []byte("b"), false); !errors.Is(err, os.ErrExist) {
			t.Errorf("expected ErrExist, got %v", err)
		}
		if err := WriteExport(path, []byte("b"), true); err != nil {
			t.Fatalf("forced WriteExport failed: %v", err)
		}
		data, _ := os.ReadFile(path)
		if string(data) != "b" {
			t.Errorf("expected overwritten content, got %q", data)
		}
	})
}
