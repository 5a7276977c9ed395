package importer

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crescendo-app/crescendo/internal/model"
)

// fakeStore is an in-memory SongStore that applies writes synchronously.
type fakeStore struct {
	songs    []model.Song
	setCalls int
	addCalls int
}

func (f *fakeStore) Songs() []model.Song {
	out := make([]model.Song, len(f.songs))
	copy(out, f.songs)
	return out
}

func (f *fakeStore) SetSongs(_ context.Context, songs []model.Song) {
	f.setCalls++
	f.songs = songs
}

func (f *fakeStore) AddSongs(_ context.Context, songs []model.Song) {
	f.addCalls++
	f.songs = append(f.songs, songs...)
}

func TestParsePerformedDate(t *testing.T) {
	cases := []struct {
		in     string
		want   time.Time
		wantOk bool
	}{
		{"Spring 2024", time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC), true},
		{"Summer 2023", time.Date(2023, time.July, 1, 0, 0, 0, 0, time.UTC), true},
		{"Fall 2022", time.Date(2022, time.October, 1, 0, 0, 0, 0, time.UTC), true},
		{"Autumn 2022", time.Date(2022, time.October, 1, 0, 0, 0, 0, time.UTC), true},
		{"Christmas 2023", time.Date(2023, time.December, 1, 0, 0, 0, 0, time.UTC), true},
		{"Winter 2021", time.Date(2021, time.December, 1, 0, 0, 0, 0, time.UTC), true},
		// Unknown terms with a valid year fall back to January.
		{"Gala 2023", time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC), true},
		// Case and surrounding whitespace do not matter.
		{"  christmas   2020 ", time.Date(2020, time.December, 1, 0, 0, 0, 0, time.UTC), true},
		{"2023", time.Time{}, false},
		{"Spring twenty-four", time.Time{}, false},
		{"Spring 2024 Gala", time.Time{}, false},
		{"", time.Time{}, false},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, ok := ParsePerformedDate(tc.in)
			assert.Equal(t, tc.wantOk, ok)
			if tc.wantOk {
				assert.True(t, got.Equal(tc.want), "got %s want %s", got, tc.want)
			}
		})
	}
}

func TestImportHistoryMatchesCaseInsensitively(t *testing.T) {
	store := &fakeStore{songs: []model.Song{
		{ID: "1", Title: "Messiah", PerformanceHistory: []model.Performance{}},
	}}

	csv := "Song,Performed\nmessiah,Christmas 2023\n"
	report, err := ImportHistory(context.Background(), store, strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, HistoryReport{RowsTotal: 1, RowsMatched: 1}, report)
	assert.Equal(t, 1, store.setCalls)

	song := store.songs[0]
	require.Len(t, song.PerformanceHistory, 1)
	entry := song.PerformanceHistory[0]
	assert.Equal(t, "Christmas 2023", entry.ConcertName)
	assert.True(t, entry.Date.Equal(time.Date(2023, time.December, 1, 0, 0, 0, 0, time.UTC)))
	require.NotNil(t, song.LastPerformed)
	assert.True(t, song.LastPerformed.Equal(entry.Date))
}

func TestImportHistoryIsIdempotent(t *testing.T) {
	store := &fakeStore{songs: []model.Song{
		{ID: "1", Title: "Messiah", PerformanceHistory: []model.Performance{}},
	}}
	csv := "Song,Performed\nMessiah,Spring 2024\nMessiah,Spring 2024\n"

	report, err := ImportHistory(context.Background(), store, strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 2, report.RowsMatched, "duplicate rows still count as matched")
	require.Len(t, store.songs[0].PerformanceHistory, 1)

	// A whole second run adds nothing either.
	_, err = ImportHistory(context.Background(), store, strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, store.songs[0].PerformanceHistory, 1)
}

func TestImportHistorySkipsBadRows(t *testing.T) {
	store := &fakeStore{songs: []model.Song{
		{ID: "1", Title: "Messiah", PerformanceHistory: []model.Performance{}},
	}}
	csv := strings.Join([]string{
		"Song,Performed",
		"Unknown Song,Spring 2024", // no library match
		"Messiah,Foo",              // matched but unparseable date
		",Spring 2024",             // missing title
		"Messiah,",                 // missing date
		"",
	}, "\n")

	report, err := ImportHistory(context.Background(), store, strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 4, report.RowsTotal)
	assert.Equal(t, 1, report.RowsMatched)
	assert.Empty(t, store.songs[0].PerformanceHistory)
	assert.Nil(t, store.songs[0].LastPerformed)
}

func TestImportHistoryLastPerformedIsMax(t *testing.T) {
	store := &fakeStore{songs: []model.Song{
		{ID: "1", Title: "Messiah", PerformanceHistory: []model.Performance{}},
	}}
	csv := "Song,Performed\nMessiah,Christmas 2023\nMessiah,Spring 2021\nMessiah,Fall 2022\n"

	_, err := ImportHistory(context.Background(), store, strings.NewReader(csv))
	require.NoError(t, err)

	song := store.songs[0]
	require.Len(t, song.PerformanceHistory, 3)
	require.NotNil(t, song.LastPerformed)
	assert.True(t, song.LastPerformed.Equal(time.Date(2023, time.December, 1, 0, 0, 0, 0, time.UTC)))
}

func TestImportHistoryDuplicateTitlesFirstWins(t *testing.T) {
	store := &fakeStore{songs: []model.Song{
		{ID: "1", Title: "Messiah", PerformanceHistory: []model.Performance{}},
		{ID: "2", Title: "messiah", PerformanceHistory: []model.Performance{}},
	}}
	csv := "Song,Performed\nMESSIAH,Spring 2024\n"

	_, err := ImportHistory(context.Background(), store, strings.NewReader(csv))
	require.NoError(t, err)
	assert.Len(t, store.songs[0].PerformanceHistory, 1)
	assert.Empty(t, store.songs[1].PerformanceHistory)
}

func TestImportHistoryBadCSV(t *testing.T) {
	store := &fakeStore{}
	_, err := ImportHistory(context.Background(), store, strings.NewReader("Song,Performed\n\"unterminated\n"))
	require.Error(t, err)
	assert.Zero(t, store.setCalls)
}

func TestImportHistoryEmptyFile(t *testing.T) {
	store := &fakeStore{songs: []model.Song{{ID: "1", Title: "Messiah"}}}
	report, err := ImportHistory(context.Background(), store, strings.NewReader(""))
	require.NoError(t, err)
	assert.Zero(t, report.RowsTotal)
}
