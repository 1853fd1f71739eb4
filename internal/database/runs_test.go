package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mbetancur/basinview/internal/delineate"
	"github.com/mbetancur/basinview/internal/session"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func testRecord(id, sessionID string, createdAt time.Time) delineate.RunRecord {
	return delineate.RunRecord{
		ID:           id,
		SessionID:    sessionID,
		WatershedID:  "custom",
		Lat:          4.6,
		Lon:          -74.1,
		ArtifactPath: "/data/out/" + id + ".gpkg",
		CreatedAt:    createdAt,
	}
}

func TestRecordAndListRuns(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	area := 120.5
	base := time.Now().UTC().Truncate(time.Second)

	rec := testRecord("run-1", "sess-1", base)
	rec.KnownAreaKm2 = &area
	rec.LayerErrors = []session.LayerError{{Layer: "snapPoint", Message: "snap point layer not found"}}
	require.NoError(t, db.RecordRun(ctx, rec))
	require.NoError(t, db.RecordRun(ctx, testRecord("run-2", "sess-1", base.Add(time.Second))))
	require.NoError(t, db.RecordRun(ctx, testRecord("run-3", "sess-2", base)))

	runs, err := db.ListRuns(ctx, "sess-1", 50)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	// Newest first.
	require.Equal(t, "run-2", runs[0].ID)
	require.Equal(t, "run-1", runs[1].ID)
	require.Nil(t, runs[0].KnownAreaKm2)
	require.Empty(t, runs[0].LayerErrors)

	oldest := runs[1]
	require.Equal(t, "sess-1", oldest.SessionID)
	require.Equal(t, "custom", oldest.WatershedID)
	require.Equal(t, 4.6, oldest.Lat)
	require.Equal(t, -74.1, oldest.Lon)
	require.NotNil(t, oldest.KnownAreaKm2)
	require.Equal(t, 120.5, *oldest.KnownAreaKm2)
	require.Equal(t, "/data/out/run-1.gpkg", oldest.ArtifactPath)
	require.Len(t, oldest.LayerErrors, 1)
	require.Equal(t, "snapPoint", oldest.LayerErrors[0].Layer)
}

func TestListRunsLimit(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 5; i++ {
		rec := testRecord("run-"+string(rune('a'+i)), "sess-1", base.Add(time.Duration(i)*time.Second))
		require.NoError(t, db.RecordRun(ctx, rec))
	}

	runs, err := db.ListRuns(ctx, "sess-1", 3)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	require.Equal(t, "run-e", runs[0].ID)
}

func TestListRunsEmpty(t *testing.T) {
	db := openTestDB(t)

	runs, err := db.ListRuns(context.Background(), "nobody", 50)
	require.NoError(t, err)
	require.Empty(t, runs)
}

func TestRecordRunDuplicateID(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	rec := testRecord("run-1", "sess-1", time.Now().UTC())
	require.NoError(t, db.RecordRun(ctx, rec))
	require.Error(t, db.RecordRun(ctx, rec))
}
