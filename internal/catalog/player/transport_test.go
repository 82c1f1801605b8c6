package player

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matvault/matvault/internal/catalog/domain"
	"github.com/matvault/matvault/internal/catalog/models"
)

func str(s string) *string { return &s }

func localVideo(t *testing.T) *models.Video {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.mp4")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	return &models.Video{Title: "clip", SourceType: domain.Local, LocalPath: &path}
}

func TestResolve(t *testing.T) {
	t.Run("streaming", func(t *testing.T) {
		v := &models.Video{SourceType: domain.Streaming, SourceURL: str("https://example.com/v")}
		ref, err := Resolve(v)
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/v", ref.URL)
		assert.Empty(t, ref.LocalPath)
	})

	t.Run("local file present", func(t *testing.T) {
		v := localVideo(t)
		ref, err := Resolve(v)
		require.NoError(t, err)
		assert.Equal(t, *v.LocalPath, ref.LocalPath)
	})

	t.Run("local file missing", func(t *testing.T) {
		missing := filepath.Join(t.TempDir(), "gone.mp4")
		v := &models.Video{SourceType: domain.Downloaded, LocalPath: &missing}
		_, err := Resolve(v)
		require.ErrorIs(t, err, models.ErrMediaNotFound)
	})

	t.Run("streaming without url", func(t *testing.T) {
		v := &models.Video{SourceType: domain.Streaming}
		_, err := Resolve(v)
		require.ErrorIs(t, err, models.ErrInvalidArgument)
	})

	t.Run("local without path", func(t *testing.T) {
		v := &models.Video{SourceType: domain.Local}
		_, err := Resolve(v)
		require.ErrorIs(t, err, models.ErrInvalidArgument)
	})
}

func TestTransport_LoadResetsState(t *testing.T) {
	tr := NewTransport()
	require.NoError(t, tr.Load(localVideo(t)))
	require.NoError(t, tr.Play())
	require.NoError(t, tr.SetRate(1.5))
	tr.OnTick(120)

	require.NoError(t, tr.Load(localVideo(t)))

	st := tr.Snapshot()
	assert.False(t, st.Playing)
	assert.Equal(t, 1.0, st.Rate)
	assert.Equal(t, 0.0, st.Position)
	assert.False(t, st.Seeking)
}

func TestTransport_PlayRequiresLoadedMedia(t *testing.T) {
	tr := NewTransport()
	require.ErrorIs(t, tr.Play(), models.ErrInvalidArgument)

	require.NoError(t, tr.Load(localVideo(t)))
	require.NoError(t, tr.Play())
	assert.True(t, tr.Snapshot().Playing)

	tr.Pause()
	assert.False(t, tr.Snapshot().Playing)
}

func TestTransport_SetRate(t *testing.T) {
	tr := NewTransport()
	require.ErrorIs(t, tr.SetRate(0), models.ErrInvalidArgument)
	require.ErrorIs(t, tr.SetRate(-1), models.ErrInvalidArgument)
	require.NoError(t, tr.SetRate(2.0))
	assert.Equal(t, 2.0, tr.Snapshot().Rate)
}

func TestTransport_TicksDroppedWhileSeeking(t *testing.T) {
	tr := NewTransport()
	require.NoError(t, tr.Load(localVideo(t)))
	require.NoError(t, tr.Play())
	tr.SetDuration(600)

	tr.OnTick(10)
	assert.Equal(t, 10.0, tr.Snapshot().Position)

	tr.BeginSeek(300)
	st := tr.Snapshot()
	assert.True(t, st.Seeking)
	assert.Equal(t, 300.0, st.Position)

	// Stale samples from before the seek must not drag the position back.
	tr.OnTick(11)
	tr.OnTick(12)
	assert.Equal(t, 300.0, tr.Snapshot().Position)

	tr.EndSeek(299.5)
	st = tr.Snapshot()
	assert.False(t, st.Seeking)
	assert.Equal(t, 299.5, st.Position)

	// Ticks flow again once the seek has landed.
	tr.OnTick(301)
	assert.Equal(t, 301.0, tr.Snapshot().Position)
}

func TestTransport_SeekTargetClamped(t *testing.T) {
	tr := NewTransport()
	require.NoError(t, tr.Load(localVideo(t)))
	tr.SetDuration(100)

	tr.BeginSeek(-5)
	assert.Equal(t, 0.0, tr.Snapshot().Position)
	tr.EndSeek(0)

	tr.BeginSeek(500)
	assert.Equal(t, 100.0, tr.Snapshot().Position)
}
