package importer

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/crescendo-app/crescendo/internal/model"
)

// LibraryReport summarizes one library import run.
type LibraryReport struct {
	RowsTotal  int `json:"rowsTotal"`
	SongsAdded int `json:"songsAdded"`
}

// ImportLibrary reads a library CSV and appends the resulting songs through
// an upsert-only AddSongs write, leaving unrelated records alone. The title
// column may be spelled either "Title" or "Selection"; rows without a title
// are skipped. Optional columns: Composer, Copyright, Type, Lyricist,
// Arranger, Publisher, CatalogNumber, Quantity and Subtypes
// (comma-separated). Quantity defaults to 1 and never goes negative.
func ImportLibrary(ctx context.Context, store SongStore, r io.Reader) (LibraryReport, error) {
	rows, err := readRows(r)
	if err != nil {
		return LibraryReport{}, err
	}

	report := LibraryReport{RowsTotal: len(rows)}
	var songs []model.Song
	for _, row := range rows {
		title := strings.TrimSpace(row["Title"])
		if title == "" {
			title = strings.TrimSpace(row["Selection"])
		}
		if title == "" {
			continue
		}

		song := model.Song{
			ID:                 uuid.NewString(),
			Title:              title,
			Composer:           strings.TrimSpace(row["Composer"]),
			Lyricist:           strings.TrimSpace(row["Lyricist"]),
			Arranger:           strings.TrimSpace(row["Arranger"]),
			Publisher:          strings.TrimSpace(row["Publisher"]),
			Copyright:          strings.TrimSpace(row["Copyright"]),
			CatalogNumber:      strings.TrimSpace(row["CatalogNumber"]),
			Type:               strings.TrimSpace(row["Type"]),
			Quantity:           parseQuantity(row["Quantity"]),
			Subtypes:           parseSubtypes(row["Subtypes"]),
			PerformanceHistory: []model.Performance{},
		}
		songs = append(songs, song)
	}

	if len(songs) > 0 {
		store.AddSongs(ctx, songs)
	}
	report.SongsAdded = len(songs)
	return report, nil
}

func parseQuantity(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 1
	}
	return n
}

func parseSubtypes(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
