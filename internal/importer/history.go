// Package importer turns CSV uploads into library writes through the
// synchronizer: a performance-history importer that matches rows to songs
// by normalized title, and a library importer that appends new songs.
package importer

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/crescendo-app/crescendo/internal/model"
)

// SongStore is the slice of the synchronizer the importers need: read the
// mirrored songs and write them back. *session.Synchronizer satisfies it.
type SongStore interface {
	Songs() []model.Song
	SetSongs(ctx context.Context, songs []model.Song)
	AddSongs(ctx context.Context, songs []model.Song)
}

// HistoryReport summarizes one history import run.
type HistoryReport struct {
	RowsTotal   int `json:"rowsTotal"`
	RowsMatched int `json:"rowsMatched"`
}

// ParsePerformedDate interprets free-text "term year" values such as
// "Spring 2024" as a calendar month approximation. Recognized season
// prefixes map to a representative month (spring→April, summer→July,
// fall/autumn→October, christmas/winter→December); anything else falls back
// to January. The day is always the 1st. It returns ok=false when the text
// does not split into exactly two tokens or the year is not an integer.
func ParsePerformedDate(performed string) (time.Time, bool) {
	parts := strings.Fields(performed)
	if len(parts) != 2 {
		return time.Time{}, false
	}
	year, err := strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, false
	}

	month := time.January
	term := strings.ToLower(parts[0])
	switch {
	case strings.HasPrefix(term, "spring"):
		month = time.April
	case strings.HasPrefix(term, "summer"):
		month = time.July
	case strings.HasPrefix(term, "fall"), strings.HasPrefix(term, "autumn"):
		month = time.October
	case strings.HasPrefix(term, "christmas"), strings.HasPrefix(term, "winter"):
		month = time.December
	}
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC), true
}

// ImportHistory reads a CSV with Song and Performed columns and applies the
// matching rows to the library. Matching is exact on the trimmed,
// case-folded title; when two songs share a normalized title the first one
// found wins. Matched rows append a {date, concertName} history entry
// unless an entry with the same literal concert name already exists — the
// same check also collapses duplicate rows within one run. Rows missing a
// field, without a match, or with an unparseable date are counted but
// otherwise skipped; they never abort the batch.
//
// All updated songs are written back in one full-replace SetSongs call.
func ImportHistory(ctx context.Context, store SongStore, r io.Reader) (HistoryReport, error) {
	rows, err := readRows(r)
	if err != nil {
		return HistoryReport{}, err
	}

	songs := store.Songs()
	byNormTitle := make(map[string]*model.Song, len(songs))
	for i := range songs {
		key := strings.ToLower(strings.TrimSpace(songs[i].Title))
		if _, exists := byNormTitle[key]; !exists {
			byNormTitle[key] = &songs[i]
		}
	}

	report := HistoryReport{RowsTotal: len(rows)}
	for _, row := range rows {
		title := strings.TrimSpace(row["Song"])
		performed := strings.TrimSpace(row["Performed"])
		if title == "" || performed == "" {
			continue
		}
		song, ok := byNormTitle[strings.ToLower(title)]
		if !ok {
			continue
		}
		report.RowsMatched++

		parsed, ok := ParsePerformedDate(performed)
		if !ok {
			continue
		}
		// The concert name stored is the literal Performed text.
		song.AppendPerformance(parsed, performed)
	}

	store.SetSongs(ctx, songs)
	return report, nil
}

// readRows parses header-keyed CSV records. Short rows are tolerated; the
// missing cells simply stay absent from the map.
func readRows(r io.Reader) ([]map[string]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows []map[string]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		row := make(map[string]string, len(header))
		empty := true
		for i, cell := range rec {
			if i >= len(header) {
				break
			}
			row[header[i]] = cell
			if strings.TrimSpace(cell) != "" {
				empty = false
			}
		}
		if !empty {
			rows = append(rows, row)
		}
	}
	return rows, nil
}
