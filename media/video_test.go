package media

import (
	"context"
	"os"
	"path/filepath"
	"stagesite/config"
	"stagesite/storage"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeTool(t *testing.T, name, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0o755))
	return path
}

func stageVideo(t *testing.T) (*storage.DiskStorage, *Batch, *Upload, string) {
	t.Helper()
	root := t.TempDir()
	store, err := storage.NewDiskStorage(root)
	require.NoError(t, err)
	batch := NewBatch(store)
	video, err := batch.AddFile(fileHeaders(t, "video_file", testFile{"clip.mp4", []byte("not really a video")})[0],
		storage.DirVideos, "video", 1, time.Now(), AllowedVideo)
	require.NoError(t, err)
	return store, batch, video, root
}

func withTools(t *testing.T, ffmpeg, exiftool string) {
	oldFFmpeg, oldExif := config.FFMPEG_PATH, config.EXIFTOOL_PATH
	t.Cleanup(func() { config.FFMPEG_PATH, config.EXIFTOOL_PATH = oldFFmpeg, oldExif })
	config.FFMPEG_PATH, config.EXIFTOOL_PATH = ffmpeg, exiftool
}

func TestVideoDuration(t *testing.T) {
	_, batch, video, _ := stageVideo(t)
	defer batch.Discard()

	tests := []struct {
		name    string
		script  string
		want    int
		wantErr bool
	}{
		{"rounds up", "echo 12.6", 13, false},
		{"rounds down", "echo 7.2", 7, false},
		{"unknown", "echo -", 0, true},
		{"garbage", "echo abc", 0, true},
		{"tool fails", "exit 1", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withTools(t, "", fakeTool(t, "exiftool", tt.script))
			got, err := VideoDuration(context.Background(), video)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVideoDuration_Disabled(t *testing.T) {
	_, batch, video, _ := stageVideo(t)
	defer batch.Discard()
	withTools(t, "", "")

	_, err := VideoDuration(context.Background(), video)
	assert.ErrorIs(t, err, ErrToolMissing)
}

func TestBatch_AddPoster(t *testing.T) {
	store, batch, video, root := stageVideo(t)
	frame := filepath.Join(t.TempDir(), "frame.png")
	require.NoError(t, os.WriteFile(frame, pngBytes(t), 0o644))
	withTools(t, fakeTool(t, "ffmpeg", "cat "+frame), "")

	at := time.Date(2024, 3, 15, 10, 15, 0, 0, time.UTC)
	poster, err := batch.AddPoster(context.Background(), video, "thumb", at)
	require.NoError(t, err)
	assert.Equal(t, storage.DirThumbnails, poster.Dir)
	assert.Equal(t, "thumb_20240315_101500_000000_1.jpg", poster.Filename)
	assert.Equal(t, 2, batch.Len())

	require.NoError(t, batch.Commit())
	assert.True(t, store.Exists(poster.Path()))
	assert.Equal(t, 1, countFiles(t, filepath.Join(root, storage.DirVideos)))
}

func TestBatch_AddPosterFailures(t *testing.T) {
	tests := []struct {
		name   string
		ffmpeg func(t *testing.T) string
		is     error
	}{
		{"disabled", func(t *testing.T) string { return "" }, ErrToolMissing},
		{"missing binary", func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope") }, nil},
		{"tool fails", func(t *testing.T) string { return fakeTool(t, "ffmpeg", "exit 1") }, nil},
		{"not an image", func(t *testing.T) string { return fakeTool(t, "ffmpeg", "echo garbage") }, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, batch, video, _ := stageVideo(t)
			defer batch.Discard()
			withTools(t, tt.ffmpeg(t), "")

			poster, err := batch.AddPoster(context.Background(), video, "thumb", time.Now())
			require.Error(t, err)
			if tt.is != nil {
				assert.ErrorIs(t, err, tt.is)
			}
			assert.Nil(t, poster)
			assert.Equal(t, 1, batch.Len())
		})
	}
}
