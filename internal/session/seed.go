package session

import (
	"time"

	"github.com/crescendo-app/crescendo/internal/model"
)

// Seed datasets used to populate empty collections on first run. User ids
// are minted at signup, so the users collection seeds empty; the default
// profile below only backs the pre-auth fast first paint.

// DefaultProfile is adopted when the profile cache holds nothing yet.
var DefaultProfile = model.User{
	ID:    "default",
	Name:  "Sheryl Schnare",
	Role:  model.RoleDirector,
	Email: "sheryl.schnare@example.com",
}

var defaultUsers = []model.User{}

var defaultSongs = []model.Song{
	{
		ID:            "1",
		Title:         "Symphony No. 5",
		Composer:      "Ludwig van Beethoven",
		Copyright:     "Public Domain",
		Publisher:     "Breitkopf & Härtel",
		CatalogNumber: "Op. 67",
		Quantity:      50,
		Type:          "Orchestral",
		Subtypes:      []string{"Classical"},
		PerformanceHistory: []model.Performance{
			{Date: date(2023, time.May, 20), ConcertName: "Spring Classics"},
		},
	},
	{
		ID:            "2",
		Title:         "The Four Seasons",
		Composer:      "Antonio Vivaldi",
		Copyright:     "Public Domain",
		Publisher:     "G. Ricordi & C.",
		CatalogNumber: "Op. 8",
		Quantity:      45,
		Type:          "Orchestral",
		Subtypes:      []string{"Baroque", "Violin Concerto"},
		PerformanceHistory: []model.Performance{
			{Date: date(2022, time.December, 15), ConcertName: "Winter Baroque"},
		},
	},
	{
		ID:            "3",
		Title:         "Hallelujah Chorus",
		Composer:      "George Frideric Handel",
		Lyricist:      "Charles Jennens",
		Copyright:     "Public Domain",
		Publisher:     "Novello & Co",
		CatalogNumber: "HWV 56",
		Quantity:      60,
		Type:          "Choral",
		Subtypes:      []string{"Christmas", "Easter", "Oratorio"},
		PerformanceHistory: []model.Performance{
			{Date: date(2023, time.December, 20), ConcertName: "Annual Messiah"},
			{Date: date(2022, time.December, 21), ConcertName: "Holiday Pops"},
		},
	},
}

var defaultConcerts = []model.Concert{
	{
		ID:     "concert-1",
		Name:   "A Night at the Movies",
		Date:   date(2024, time.October, 26),
		Pieces: []model.Song{defaultSongs[0], defaultSongs[1]},
	},
	{
		ID:       "concert-2",
		Name:     "Holiday Pops",
		Date:     date(2024, time.December, 14),
		Pieces:   []model.Song{defaultSongs[2]},
		IsLocked: true,
	},
}

var defaultTaxonomy = model.Taxonomy{
	ID:       model.TaxonomyID,
	Types:    []string{"Choral", "Orchestral", "Band", "Solo", "Chamber", "Christmas"},
	Subtypes: []string{"Classical", "Baroque", "Violin Concerto", "Christmas", "Easter", "Oratorio"},
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func init() {
	// Seed songs carry history, so their derived field must honor the
	// lastPerformed invariant before they are ever written.
	for i := range defaultSongs {
		defaultSongs[i].RecomputeLastPerformed()
	}
	for i := range defaultConcerts {
		for j := range defaultConcerts[i].Pieces {
			defaultConcerts[i].Pieces[j].RecomputeLastPerformed()
		}
	}
}
