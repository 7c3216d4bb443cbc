package filesystem

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/example/aide/internal/ports/secondary"
)

func TestMirrorRoundTrip(t *testing.T) {
	store := NewStore(afero.NewMemMapFs(), "/home/.aide")

	_, ok, err := store.LoadMirror()
	require.NoError(t, err)
	require.False(t, ok, "fresh store has no mirror")

	snapshot := &secondary.MirrorSnapshot{
		SyncedAt: "2026-08-23T10:00:00Z",
		Count:    1,
		Requests: []*secondary.RequestRecord{{ID: "REQ-1", Title: "Organic Bananas", Status: "new"}},
	}
	require.NoError(t, store.SaveMirror(snapshot))

	loaded, ok, err := store.LoadMirror()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, snapshot.SyncedAt, loaded.SyncedAt)
	require.Len(t, loaded.Requests, 1)
	require.Equal(t, "Organic Bananas", loaded.Requests[0].Title)
}

func TestSaveMirrorReplacesOldSnapshot(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := NewStore(fs, "/home/.aide")

	require.NoError(t, store.SaveMirror(&secondary.MirrorSnapshot{Count: 1}))
	require.NoError(t, store.SaveMirror(&secondary.MirrorSnapshot{Count: 2}))

	loaded, ok, err := store.LoadMirror()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 2, loaded.Count)

	// No temp file left behind.
	exists, err := afero.Exists(fs, filepath.Join("/home/.aide", "mirror.json.tmp"))
	require.NoError(t, err)
	require.False(t, exists)
}

func TestWriteReport(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := NewStore(fs, "/home/.aide")

	path, err := store.WriteReport("triage-2026-08-23.md", "# Friction Triage - 2026-08-23\n")
	require.NoError(t, err)
	require.Equal(t, filepath.Join("/home/.aide", "triage", "triage-2026-08-23.md"), path)

	content, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	require.Contains(t, string(content), "Friction Triage")
}
