package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/desertthunder/tunelink/internal/models"
)

// SearchesToCSV converts search history to CSV with columns: ID, Time, Guild, Platform, Title, Artist, Link
func SearchesToCSV(entries []models.SearchEntry) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Time", "Guild", "Platform", "Title", "Artist", "Link"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, e := range entries {
		record := []string{
			e.ID,
			e.CreatedAt.UTC().Format(time.RFC3339),
			e.GuildID,
			e.Platform,
			e.Title,
			e.Artist,
			e.Link,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// SearchesToText renders search history as a numbered plain text list.
func SearchesToText(entries []models.SearchEntry) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Searches: %d\n\n", len(entries)))
	for i, e := range entries {
		buf.WriteString(fmt.Sprintf("%d. %s - %s [%s] %s\n", i+1, e.Artist, e.Title, e.Platform, e.CreatedAt.Format(time.DateTime)))
	}

	return buf.Bytes()
}

// StatsToText renders the counter and per-platform totals, largest first.
func StatsToText(total int64, platforms map[string]int64) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Total links resolved: %d\n", total))
	if len(platforms) == 0 {
		return buf.Bytes()
	}

	keys := make([]string, 0, len(platforms))
	for k := range platforms {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if platforms[keys[i]] != platforms[keys[j]] {
			return platforms[keys[i]] > platforms[keys[j]]
		}
		return keys[i] < keys[j]
	})

	buf.WriteString("\nBy platform:\n")
	for _, k := range keys {
		buf.WriteString(fmt.Sprintf("  %-14s %d\n", k, platforms[k]))
	}
	return buf.Bytes()
}

// WriteExport writes data to path, refusing to overwrite unless force is set.
func WriteExport(path string, data []byte, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("file already exists at %s: %w", path, os.ErrExist)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}
	return nil
}
