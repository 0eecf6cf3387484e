package ops

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFind_QueryFilters(t *testing.T) {
	store := testStore(t)
	f := addClosed(t, store, "a", "coding", todayAt(8, 0), todayAt(9, 0))
	f.Description = "parser work"
	require.NoError(t, store.Update(f))
	addClosed(t, store, "b", "meeting", todayAt(9, 0), todayAt(9, 30))

	out, err := Find(store, testConfig(), FindInput{Query: "coding parser", Now: todayAt(12, 0)})
	require.NoError(t, err)
	require.Len(t, out.Facts, 1)
	require.Equal(t, "a", out.Facts[0].ID)
	require.Equal(t, 1, out.Stats.Count)
	require.Equal(t, "1:00", out.Stats.Total)
}

func TestFind_Stats(t *testing.T) {
	store := testStore(t)
	addClosed(t, store, "a", "coding", todayAt(8, 0), todayAt(9, 0))
	addClosed(t, store, "b", "coding", todayAt(9, 0), todayAt(9, 30))

	out, err := Find(store, testConfig(), FindInput{Now: todayAt(12, 0)})
	require.NoError(t, err)
	require.Equal(t, 2, out.Stats.Count)
	require.Equal(t, "1:30", out.Stats.Total)
	require.Equal(t, "0:45", out.Stats.AvgPerFact)
	require.Equal(t, "1:30", out.Stats.AvgPerDay)
}

func TestFind_OpenFactCountsElapsed(t *testing.T) {
	store := testStore(t)
	addOpen(t, store, "open", "coding", todayAt(9, 0))

	out, err := Find(store, testConfig(), FindInput{Now: todayAt(10, 0)})
	require.NoError(t, err)
	require.Equal(t, "1:00", out.Stats.Total)
}

func TestFind_WindowSpansDays(t *testing.T) {
	store := testStore(t)
	yStart := todayAt(8, 0).AddDate(0, 0, -1)
	yEnd := todayAt(9, 0).AddDate(0, 0, -1)
	addClosed(t, store, "y", "coding", yStart, yEnd)
	addClosed(t, store, "t", "coding", todayAt(8, 0), todayAt(9, 0))

	out, err := Find(store, testConfig(), FindInput{Days: 2, Now: todayAt(12, 0)})
	require.NoError(t, err)
	require.Len(t, out.Facts, 2)
	require.Equal(t, "1:00", out.Stats.AvgPerDay)

	// a one-day window only sees today
	out, err = Find(store, testConfig(), FindInput{Days: 1, Now: todayAt(12, 0)})
	require.NoError(t, err)
	require.Len(t, out.Facts, 1)
}

func TestFind_Empty(t *testing.T) {
	store := testStore(t)
	out, err := Find(store, testConfig(), FindInput{Now: todayAt(12, 0)})
	require.NoError(t, err)
	require.Empty(t, out.Facts)
	require.Equal(t, "0:00", out.Stats.Total)
	require.Empty(t, out.Stats.AvgPerFact)
}
