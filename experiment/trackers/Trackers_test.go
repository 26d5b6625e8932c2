package trackers

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/samuelfneumann/snakeql/experiment/tracker"
	ts "github.com/samuelfneumann/snakeql/timestep"
	"github.com/stretchr/testify/require"
)

func episodes() []tracker.Episode {
	return []tracker.Episode{
		{Phase: "a", Index: 0, Score: 10, Return: 3.5, Steps: 40,
			Epsilon: 0.9, End: ts.TerminalStateReached},
		{Phase: "a", Index: 1, Score: -5, Return: -12, Steps: 7,
			Epsilon: 0.8, End: ts.TerminalStateReached},
		{Phase: "b", Index: 0, Score: 30, Return: 25.25, Steps: 100,
			Epsilon: 0.5, End: ts.Cutoff},
	}
}

func TestGobTrackers(t *testing.T) {
	dir := t.TempDir()
	score := NewScore(filepath.Join(dir, "score.bin"))
	ret := NewReturn(filepath.Join(dir, "return.bin"))
	length := NewEpisodeLength(filepath.Join(dir, "sub", "length.bin"))

	for _, e := range episodes() {
		for _, tr := range []Tracker{score, ret, length} {
			tr.Track(e)
		}
	}

	for _, test := range []struct {
		tracker interface {
			Tracker
			Data() []float64
		}
		filename string
		want     []float64
	}{
		{score, "score.bin", []float64{10, -5, 30}},
		{ret, "return.bin", []float64{3.5, -12, 25.25}},
		{length, filepath.Join("sub", "length.bin"), []float64{40, 7, 100}},
	} {
		require.Equal(t, test.want, test.tracker.Data())
		require.NoError(t, test.tracker.Save())

		data, err := tracker.LoadData(filepath.Join(dir, test.filename))
		require.NoError(t, err)
		require.Equal(t, test.want, data)
	}
}

func TestLoadDataMissing(t *testing.T) {
	_, err := tracker.LoadData(filepath.Join(t.TempDir(), "nope.bin"))
	require.Error(t, err)
}

func TestBlockAverages(t *testing.T) {
	data := []float64{1, 2, 3, 4, 5, 6, 7}
	require.Equal(t, []float64{2, 5, 7}, BlockAverages(data, 3))
	require.Equal(t, data, BlockAverages(data, 1))
	require.Empty(t, BlockAverages(nil, 10))
	require.Panics(t, func() { BlockAverages(data, 0) })
}

func TestForPhase(t *testing.T) {
	score := NewScore("unused")
	filtered := tracker.ForPhase(score, "b")
	for _, e := range episodes() {
		filtered.Track(e)
	}
	require.Equal(t, []float64{30}, score.Data())
}

func TestSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs", "runs.db")
	id := uuid.New()

	s, err := OpenSQLite(path, id, "seed: 1\n")
	require.NoError(t, err)
	require.Equal(t, id, s.RunID())

	for _, e := range episodes() {
		s.Track(e)
	}
	require.NoError(t, s.Save())

	scores, err := s.Scores()
	require.NoError(t, err)
	require.Equal(t, []float64{10, -5, 30}, scores)

	s.Track(tracker.Episode{Phase: "b", Index: 1, Score: 40})
	require.NoError(t, s.Close())

	// A second run in the same database
	other, err := OpenSQLite(path, uuid.New(), "seed: 2\n")
	require.NoError(t, err)
	other.Track(tracker.Episode{Phase: "a", Index: 0, Score: 1})
	require.NoError(t, other.Close())

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	var runs int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM runs`).Scan(&runs))
	require.Equal(t, 2, runs)

	var (
		count   int
		config  string
		endType string
	)
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM episodes
		WHERE run_id = ?`, id.String()).Scan(&count))
	require.Equal(t, 4, count)
	require.NoError(t, db.QueryRow(`SELECT config FROM runs WHERE id = ?`,
		id.String()).Scan(&config))
	require.Equal(t, "seed: 1\n", config)
	require.NoError(t, db.QueryRow(`SELECT end_type FROM episodes
		WHERE run_id = ? AND phase = 'b' AND idx = 0`,
		id.String()).Scan(&endType))
	require.Equal(t, ts.Cutoff.String(), endType)
}

func TestSQLiteDuplicateEpisode(t *testing.T) {
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "runs.db"), uuid.New(),
		"")
	require.NoError(t, err)
	defer s.Close()

	e := tracker.Episode{Phase: "a", Index: 0}
	s.Track(e)
	s.Track(e)
	require.Error(t, s.Save())

	// Nothing of the failed batch was written
	scores, err := s.Scores()
	require.NoError(t, err)
	require.Empty(t, scores)
}
