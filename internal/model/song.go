package model

import "time"

// Performance is one entry in a song's performance history: when the song
// was played and under which concert name. History is append-only; entries
// are deduplicated by concert name at import time.
type Performance struct {
	Date        time.Time `json:"date"`
	ConcertName string    `json:"concertName"`
}

// Song represents a document in the `songs` collection.
//
// Invariant: LastPerformed, when set, equals the maximum date across
// PerformanceHistory and is nil iff the history is empty. Every mutation
// that touches the history must go through AppendPerformance or call
// RecomputeLastPerformed before the document is written.
type Song struct {
	ID                 string        `json:"id"`
	Title              string        `json:"title"`
	Composer           string        `json:"composer"`
	Lyricist           string        `json:"lyricist,omitempty"`
	Arranger           string        `json:"arranger,omitempty"`
	Publisher          string        `json:"publisher,omitempty"`
	Copyright          string        `json:"copyright,omitempty"`
	CatalogNumber      string        `json:"catalogNumber,omitempty"`
	Quantity           int           `json:"quantity"`
	Type               string        `json:"type"`
	Subtypes           []string      `json:"subtypes,omitempty"`
	LastPerformed      *time.Time    `json:"lastPerformed,omitempty"`
	PerformanceHistory []Performance `json:"performanceHistory"`
}

// AppendPerformance adds a history entry unless one with the same literal
// concert name already exists. It returns true when the entry was appended.
// LastPerformed is recomputed after a successful append.
func (s *Song) AppendPerformance(date time.Time, concertName string) bool {
	for _, p := range s.PerformanceHistory {
		if p.ConcertName == concertName {
			return false
		}
	}
	s.PerformanceHistory = append(s.PerformanceHistory, Performance{Date: date, ConcertName: concertName})
	s.RecomputeLastPerformed()
	return true
}

// RecomputeLastPerformed restores the derived-field invariant: the maximum
// history date, or nil when there is no history.
func (s *Song) RecomputeLastPerformed() {
	if len(s.PerformanceHistory) == 0 {
		s.LastPerformed = nil
		return
	}
	max := s.PerformanceHistory[0].Date
	for _, p := range s.PerformanceHistory[1:] {
		if p.Date.After(max) {
			max = p.Date
		}
	}
	s.LastPerformed = &max
}
