package ops

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hyiltiz/timetra.diary/internal/errors"
)

func TestStop_ClosesOpenFact(t *testing.T) {
	store := testStore(t)
	addOpen(t, store, "open", "coding", todayAt(9, 0))

	out, err := Stop(store, testConfig(), StopInput{
		Tags:        []string{"done"},
		Description: "wrapped up",
		Now:         todayAt(10, 30),
	})
	require.NoError(t, err)
	require.Equal(t, "1:30", out.Delta)

	stored, err := store.GetByID("open")
	require.NoError(t, err)
	require.False(t, stored.Open())
	require.Equal(t, todayAt(10, 30).Unix(), stored.EndTime.Unix())
	require.Contains(t, stored.Tags, "done")
	require.Equal(t, "(+1:30) wrapped up", stored.Description)
}

func TestStop_NothingRunning(t *testing.T) {
	store := testStore(t)
	addClosed(t, store, "prev", "coding", todayAt(8, 0), todayAt(9, 0))

	_, err := Stop(store, testConfig(), StopInput{Now: todayAt(10, 0)})
	require.True(t, errors.Is(err, errors.ErrInvalidRequest), "err = %v", err)
}

func TestStop_EmptyStore(t *testing.T) {
	store := testStore(t)
	_, err := Stop(store, testConfig(), StopInput{Now: todayAt(10, 0)})
	require.True(t, errors.Is(err, errors.ErrInvalidRequest), "err = %v", err)
}
