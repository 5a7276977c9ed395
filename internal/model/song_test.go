package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendPerformanceDeduplicatesByConcertName(t *testing.T) {
	s := Song{ID: "1", Title: "Messiah", PerformanceHistory: []Performance{}}
	d1 := time.Date(2023, time.December, 1, 0, 0, 0, 0, time.UTC)

	assert.True(t, s.AppendPerformance(d1, "Christmas 2023"))
	// Same concert name again, even with a different date, is rejected.
	assert.False(t, s.AppendPerformance(d1.AddDate(1, 0, 0), "Christmas 2023"))
	require.Len(t, s.PerformanceHistory, 1)

	require.NotNil(t, s.LastPerformed)
	assert.True(t, s.LastPerformed.Equal(d1))
}

func TestRecomputeLastPerformed(t *testing.T) {
	t.Run("empty history clears the field", func(t *testing.T) {
		old := time.Now()
		s := Song{LastPerformed: &old}
		s.RecomputeLastPerformed()
		assert.Nil(t, s.LastPerformed)
	})

	t.Run("picks the maximum date", func(t *testing.T) {
		s := Song{PerformanceHistory: []Performance{
			{Date: time.Date(2022, time.October, 1, 0, 0, 0, 0, time.UTC), ConcertName: "Fall 2022"},
			{Date: time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC), ConcertName: "Spring 2024"},
			{Date: time.Date(2023, time.July, 1, 0, 0, 0, 0, time.UTC), ConcertName: "Summer 2023"},
		}}
		s.RecomputeLastPerformed()
		require.NotNil(t, s.LastPerformed)
		assert.True(t, s.LastPerformed.Equal(time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)))
	})
}

func TestValidRole(t *testing.T) {
	assert.True(t, ValidRole(RoleDirector))
	assert.True(t, ValidRole(RoleLibrarian))
	assert.True(t, ValidRole(RoleMusician))
	assert.False(t, ValidRole("ADMIN"))
	assert.False(t, ValidRole(""))
}

func TestUserSanitizedStripsPassword(t *testing.T) {
	u := User{ID: "1", Name: "Pat", Role: RoleMusician, Email: "pat@example.com", Password: "hash"}
	clean := u.Sanitized()
	assert.Empty(t, clean.Password)
	assert.Equal(t, "pat@example.com", clean.Email)
	assert.Equal(t, "hash", u.Password, "original is untouched")
}

func TestConcertEditable(t *testing.T) {
	future := time.Now().Add(24 * time.Hour)
	past := time.Now().Add(-24 * time.Hour)

	upcoming := Concert{Date: future}
	assert.True(t, upcoming.Editable())

	locked := Concert{Date: future, IsLocked: true}
	assert.False(t, locked.Editable())

	// Performed concerts freeze even without an explicit lock.
	performed := Concert{Date: past}
	assert.False(t, performed.Editable())
}
