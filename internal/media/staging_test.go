package media

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/amankumarsingh77/vidhost/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStager(t *testing.T, maxPayload int64) *Stager {
	t.Helper()
	s, err := NewStager(filepath.Join(t.TempDir(), "temp"), NewValidator(maxPayload, true))
	require.NoError(t, err)
	return s
}

func dirEntries(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestStager_Stage(t *testing.T) {
	s := newTestStager(t, 0)

	staged, err := s.Stage(context.Background(), models.RoleMedia, "Holiday.MP4", "video/mp4", bytes.NewReader(mp4Header()))
	require.NoError(t, err)

	assert.Equal(t, s.Dir(), filepath.Dir(staged.Path))
	assert.Equal(t, staged.ID+".mp4", filepath.Base(staged.Path))
	assert.Equal(t, int64(len(mp4Header())), staged.Size)
	assert.Equal(t, models.RoleMedia, staged.Role)
	assert.FileExists(t, staged.Path)

	other, err := s.Stage(context.Background(), models.RoleMedia, "Holiday.MP4", "video/mp4", bytes.NewReader(mp4Header()))
	require.NoError(t, err)
	assert.NotEqual(t, staged.Path, other.Path)
}

func TestStager_StageDropsOddExtensions(t *testing.T) {
	s := newTestStager(t, 0)

	staged, err := s.Stage(context.Background(), models.RolePoster, "cover.j p;g", "image/jpeg", bytes.NewReader(jpegHeader()))
	require.NoError(t, err)
	assert.Equal(t, staged.ID, filepath.Base(staged.Path))
}

func TestStager_StageRejectsWithoutWriting(t *testing.T) {
	tests := []struct {
		name string
		mime string
		body []byte
		max  int64
		want Code
	}{
		{name: "declared text", mime: "text/plain", body: []byte("hello"), want: CodeInvalidVideoFormat},
		{name: "content is not video", mime: "video/mp4", body: []byte("hello, not a video at all"), want: CodeInvalidVideoFormat},
		{name: "over ceiling", mime: "video/mp4", body: mp4Header(), max: 16, want: CodePayloadTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStager(t, tt.max)
			_, err := s.Stage(context.Background(), models.RoleMedia, "a.mp4", tt.mime, bytes.NewReader(tt.body))
			requireCode(t, err, tt.want)
			assert.Empty(t, dirEntries(t, s.Dir()))
		})
	}
}

func TestStager_StageCanceled(t *testing.T) {
	s := newTestStager(t, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Stage(ctx, models.RoleMedia, "a.mp4", "video/mp4", strings.NewReader("data"))
	require.Error(t, err)
	assert.Equal(t, KindCanceled, KindOf(err))
	assert.Empty(t, dirEntries(t, s.Dir()))
}

func TestStager_ReleaseIsIdempotent(t *testing.T) {
	s := newTestStager(t, 0)
	staged, err := s.Stage(context.Background(), models.RoleMedia, "a.webm", "video/mp4", bytes.NewReader(mp4Header()))
	require.NoError(t, err)

	require.NoError(t, s.Release(staged))
	assert.NoFileExists(t, staged.Path)
	assert.NoError(t, s.Release(staged))
	assert.NoError(t, s.Release(nil))
}

func TestStager_SweepStale(t *testing.T) {
	s := newTestStager(t, 0)
	old := filepath.Join(s.Dir(), "old.mp4")
	fresh := filepath.Join(s.Dir(), "fresh.mp4")
	require.NoError(t, os.WriteFile(old, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(fresh, []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(s.Dir(), "nested"), 0o755))
	past := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(old, past, past))

	removed, err := s.SweepStale(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.NoFileExists(t, old)
	assert.FileExists(t, fresh)
	assert.DirExists(t, filepath.Join(s.Dir(), "nested"))
}
