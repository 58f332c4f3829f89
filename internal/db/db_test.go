package db

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/scanrig/internal/scan"
)

func testCollection(t *testing.T) *scan.Collection {
	t.Helper()
	agg := scan.NewAggregator()
	for _, row := range [][]float64{
		{10, 20, 30, 5, 45},
		{11, 21, 31, 5, 46},
	} {
		s, err := scan.ParseSample(scan.SchemaCylindrical, row)
		require.NoError(t, err)
		agg.Accept(s)
	}
	// One angle-less sample: its vertical_angle column must be NULL.
	s, err := scan.ParseSample(scan.SchemaCartesian, []float64{1, 2, 3})
	require.NoError(t, err)
	agg.Accept(s)
	return agg.Snapshot()
}

func TestRecordAndReadSession(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "scans.db")
	db, err := NewDB(dbPath)
	require.NoError(t, err)
	defer db.Close()

	started := time.Now().Add(-time.Minute).UTC().Truncate(time.Second)
	finished := time.Now().UTC().Truncate(time.Second)

	col := testCollection(t)
	sessionID, err := db.RecordSession("bench-rig", "completed", 7, started, finished, col)
	require.NoError(t, err)
	require.NotEmpty(t, sessionID)

	sessions, err := db.ListSessions()
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, sessionID, sessions[0].SessionID)
	assert.Equal(t, "bench-rig", sessions[0].Rig)
	assert.Equal(t, "completed", sessions[0].State)
	assert.Equal(t, int64(3), sessions[0].PointCount)
	assert.Equal(t, int64(7), sessions[0].LinesSkipped)

	points, err := db.SessionPoints(sessionID)
	require.NoError(t, err)
	require.Len(t, points, 3)
	assert.Equal(t, scan.CartesianPoint{X: 10, Y: 20, Z: 30}, points[0])
	assert.Equal(t, scan.CartesianPoint{X: 1, Y: 2, Z: 3}, points[2])
}

func TestNullVerticalAngle(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "scans.db")
	db, err := NewDB(dbPath)
	require.NoError(t, err)
	defer db.Close()

	col := testCollection(t)
	sessionID, err := db.RecordSession("bench-rig", "completed", 0, time.Now(), time.Now(), col)
	require.NoError(t, err)

	var nullAngles int
	err = db.QueryRow(
		`SELECT COUNT(*) FROM scan_points WHERE session_id = ? AND vertical_angle IS NULL`,
		sessionID).Scan(&nullAngles)
	require.NoError(t, err)
	assert.Equal(t, 1, nullAngles)
}

func TestMultipleSessions(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "scans.db")
	db, err := NewDB(dbPath)
	require.NoError(t, err)
	defer db.Close()

	col := testCollection(t)
	earlier := time.Now().Add(-time.Hour)
	later := time.Now()

	first, err := db.RecordSession("rig-a", "completed", 0, earlier, earlier, col)
	require.NoError(t, err)
	second, err := db.RecordSession("rig-b", "failed", 2, later, later, col)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	sessions, err := db.ListSessions()
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	// Most recent first.
	assert.Equal(t, second, sessions[0].SessionID)
	assert.Equal(t, "failed", sessions[0].State)
}
